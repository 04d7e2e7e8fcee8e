// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spike

import (
	"compress/gzip"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/emer/emergent/weights"
	"github.com/goki/ki/indent"
)

// SaveWtsCSV saves all connection weights to the given file in CSV
// format, one connection per row.  If the filename has a .gz
// extension, the output is gzip compressed.
func (nt *Network) SaveWtsCSV(filename string) error {
	fp, err := os.Create(filename)
	defer fp.Close()
	if err != nil {
		log.Println(err)
		return err
	}
	ext := filepath.Ext(filename)
	if ext == ".gz" {
		gzr := gzip.NewWriter(fp)
		defer gzr.Close()
		err = nt.WriteWtsCSV(gzr)
	} else {
		err = nt.WriteWtsCSV(fp)
	}
	if err == nil {
		nt.WtsFile = filename
	}
	return err
}

// WriteWtsCSV writes all connection weights in CSV format with a
// source_id,dest_id,weight header, in store iteration order.
func (nt *Network) WriteWtsCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"source_id", "dest_id", "weight"}); err != nil {
		return err
	}
	var werr error
	nt.Conns.Do(func(cn *Connection) bool {
		werr = cw.Write([]string{cn.Src, cn.Dst, strconv.FormatFloat(float64(cn.Weight()), 'g', weights.Prec, 32)})
		return werr == nil
	})
	if werr != nil {
		return werr
	}
	cw.Flush()
	return cw.Error()
}

// OpenWtsCSV opens connection weights from the given CSV file,
// gzip-decompressing if the filename has a .gz extension.
func (nt *Network) OpenWtsCSV(filename string) error {
	fp, err := os.Open(filename)
	defer fp.Close()
	if err != nil {
		log.Println(err)
		return err
	}
	ext := filepath.Ext(filename)
	if ext == ".gz" {
		gzr, err := gzip.NewReader(fp)
		defer gzr.Close()
		if err != nil {
			log.Println(err)
			return err
		}
		return nt.ReadWtsCSV(gzr)
	}
	return nt.ReadWtsCSV(fp)
}

// ReadWtsCSV reads connection weights in the WriteWtsCSV format,
// creating a connection per row.  Rows whose endpoints are not in the
// network are logged and skipped.
func (nt *Network) ReadWtsCSV(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	hdr, err := cr.Read()
	if err != nil {
		log.Println(err)
		return err
	}
	if hdr[0] != "source_id" || hdr[1] != "dest_id" || hdr[2] != "weight" {
		err := fmt.Errorf("ReadWtsCSV: unexpected header: %v in Network: %v", hdr, nt.Nm)
		log.Println(err)
		return err
	}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			log.Println(err)
			return err
		}
		wt, err := strconv.ParseFloat(row[2], 32)
		if err != nil {
			log.Println(err)
			return err
		}
		if nt.Neurons[row[0]] == nil || nt.Neurons[row[1]] == nil {
			log.Printf("ReadWtsCSV: Network: %v skipping row with missing endpoint: %v -> %v\n", nt.Nm, row[0], row[1])
			continue
		}
		if _, err := nt.CreateConnection(row[0], row[1], float32(wt), NoRule, 0); err != nil {
			return err
		}
	}
}

// SaveWtsJSON saves all connection weights and network metadata to
// the given file in JSON format, gzip compressed if the filename has a
// .gz extension.
func (nt *Network) SaveWtsJSON(filename string) error {
	fp, err := os.Create(filename)
	defer fp.Close()
	if err != nil {
		log.Println(err)
		return err
	}
	ext := filepath.Ext(filename)
	if ext == ".gz" {
		gzr := gzip.NewWriter(fp)
		defer gzr.Close()
		nt.WriteWtsJSON(gzr)
	} else {
		nt.WriteWtsJSON(fp)
	}
	nt.WtsFile = filename
	return nil
}

// OpenWtsJSON opens connection weights and metadata from the given
// JSON file, gzip-decompressing if the filename has a .gz extension.
func (nt *Network) OpenWtsJSON(filename string) error {
	fp, err := os.Open(filename)
	defer fp.Close()
	if err != nil {
		log.Println(err)
		return err
	}
	ext := filepath.Ext(filename)
	if ext == ".gz" {
		gzr, err := gzip.NewReader(fp)
		defer gzr.Close()
		if err != nil {
			log.Println(err)
			return err
		}
		return nt.ReadWtsJSON(gzr)
	}
	return nt.ReadWtsJSON(fp)
}

// WriteWtsJSON writes the weights from this network in a JSON text
// format.
func (nt *Network) WriteWtsJSON(w io.Writer) {
	depth := 0
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("{\n"))
	depth++
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"Network\": %q,\n", nt.Nm))) // note: can't use \n in `` so need "
	if len(nt.MetaData) > 0 {
		w.Write(indent.TabBytes(depth))
		md, _ := json.Marshal(nt.MetaData)
		w.Write([]byte("\"MetaData\": "))
		w.Write(md)
		w.Write([]byte(",\n"))
	}
	w.Write(indent.TabBytes(depth))
	nc := nt.Conns.Len()
	if nc == 0 {
		w.Write([]byte("\"Conns\": null\n"))
	} else {
		w.Write([]byte("\"Conns\": [\n"))
		depth++
		ci := 0
		nt.Conns.Do(func(cn *Connection) bool {
			w.Write(indent.TabBytes(depth))
			w.Write([]byte(fmt.Sprintf("{\"Src\": %q, \"Dst\": %q, \"Wt\": ", cn.Src, cn.Dst)))
			w.Write([]byte(strconv.FormatFloat(float64(cn.Weight()), 'g', weights.Prec, 32)))
			w.Write([]byte("}"))
			if ci == nc-1 {
				w.Write([]byte("\n"))
			} else {
				w.Write([]byte(",\n"))
			}
			ci++
			return true
		})
		depth--
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("]\n"))
	}
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("}\n"))
}

// netWtsJSON is the decoded form of the WriteWtsJSON format.
type netWtsJSON struct {
	Network  string
	MetaData map[string]string
	Conns    []struct {
		Src string
		Dst string
		Wt  float32
	}
}

// ReadWtsJSON reads network weights from the reader in the
// WriteWtsJSON format.  Reads entire file into memory before setting,
// so the network is unchanged on a decode error.
func (nt *Network) ReadWtsJSON(r io.Reader) error {
	var nw netWtsJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&nw); err != nil {
		log.Println(err)
		return err
	}
	for k, v := range nw.MetaData {
		nt.MetaData[k] = v
	}
	for _, cw := range nw.Conns {
		if nt.Neurons[cw.Src] == nil || nt.Neurons[cw.Dst] == nil {
			log.Printf("ReadWtsJSON: Network: %v skipping conn with missing endpoint: %v -> %v\n", nt.Nm, cw.Src, cw.Dst)
			continue
		}
		if _, err := nt.CreateConnection(cw.Src, cw.Dst, cw.Wt, NoRule, 0); err != nil {
			return err
		}
	}
	return nil
}
