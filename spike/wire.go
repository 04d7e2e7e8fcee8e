// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spike

import (
	"fmt"
	"log"
	"math/rand"
	"runtime"
	"sync"

	"github.com/chewxy/math32"
	"github.com/emer/emergent/erand"
	"github.com/emer/emergent/prjn"
	"github.com/emer/etable/etensor"
	"github.com/goki/ki/ints"
)

// newConn draws a connection from the pool and configures its
// endpoints, weight and plasticity.  rule NoRule with lr 0 leaves the
// pool defaults (no learning).
func (nt *Network) newConn(src, dst string, wt float32, rule PlasticityRule, lr float32) *Connection {
	cn := nt.Pool.Get()
	cn.Src = src
	cn.Dst = dst
	cn.Half = nt.HalfWts
	cn.SetWeight(wt)
	cn.Plast.Rule = rule
	if lr > 0 {
		cn.Plast.Lr = lr
	}
	return cn
}

// CreateConnection creates a directed connection between the given
// neuron ids with the given weight, drawing the object from the pool.
// rule and lr configure plasticity (NoRule, 0 for a fixed weight).
// Both endpoints must exist.  In dense mode repeated calls for the
// same pair accumulate parallel edges; in sparse mode the existing
// connection is replaced.
func (nt *Network) CreateConnection(src, dst string, wt float32, rule PlasticityRule, lr float32) (*Connection, error) {
	if _, err := nt.NeuronByIDTry(src); err != nil {
		return nil, err
	}
	if _, err := nt.NeuronByIDTry(dst); err != nil {
		return nil, err
	}
	cn := nt.newConn(src, dst, wt, rule, lr)
	if old := nt.Conns.Add(cn); old != nil {
		nt.Pool.Put(old)
	}
	return cn, nil
}

// connectParallel partitions n source rows across worker goroutines,
// each filling a worker-local connection buffer via fill, then merges
// the buffers into the store under the network lock.  Returns the
// number of connections added.
func (nt *Network) connectParallel(n int, fill func(w, st, ed int) []*Connection) int {
	nw := ints.MaxInt(ints.MinInt(runtime.NumCPU(), n), 1)
	chunk := (n + nw - 1) / nw
	bufs := make([][]*Connection, nw)
	var wg sync.WaitGroup
	for w := 0; w < nw; w++ {
		st := w * chunk
		ed := ints.MinInt(st+chunk, n)
		if st >= ed {
			continue
		}
		wg.Add(1)
		go func(w, st, ed int) {
			defer wg.Done()
			bufs[w] = fill(w, st, ed)
		}(w, st, ed)
	}
	wg.Wait()

	tot := 0
	nt.Mu.Lock()
	for _, buf := range bufs {
		for _, cn := range buf {
			if old := nt.Conns.Add(cn); old != nil {
				nt.Pool.Put(old)
			}
			tot++
		}
	}
	nt.Mu.Unlock()
	return tot
}

// ConnectByType connects every neuron of the source type to every
// neuron of the destination type at the given weight and plasticity,
// skipping self-loops, and returns the number of connections made.
// The source neurons are partitioned across worker goroutines.
func (nt *Network) ConnectByType(srcType, dstType string, wt float32, rule PlasticityRule, lr float32) (int, error) {
	sids, ok := nt.ByType[srcType]
	if !ok {
		err := fmt.Errorf("ConnectByType: no neurons of type: %v in Network: %v", srcType, nt.Nm)
		log.Println(err)
		return 0, err
	}
	dids, ok := nt.ByType[dstType]
	if !ok {
		err := fmt.Errorf("ConnectByType: no neurons of type: %v in Network: %v", dstType, nt.Nm)
		log.Println(err)
		return 0, err
	}
	n := nt.connectParallel(len(sids), func(w, st, ed int) []*Connection {
		var buf []*Connection
		for _, src := range sids[st:ed] {
			for _, dst := range dids {
				if src == dst {
					continue
				}
				buf = append(buf, nt.newConn(src, dst, wt, rule, lr))
			}
		}
		return buf
	})
	return n, nil
}

// ConnectPops connects the send population to the recv population
// following the given projection pattern, at the given weight and
// plasticity, and returns the number of connections made.  The
// receiving rows are partitioned across worker goroutines with
// worker-local buffers merged under one lock.  Self-loops are skipped
// when a population is connected to itself, and pairs whose endpoints
// are missing from the network are logged and skipped.
func (nt *Network) ConnectPops(send, recv string, pat prjn.Pattern, wt float32, rule PlasticityRule, lr float32) (int, error) {
	sp, err := nt.PopByNameTry(send)
	if err != nil {
		return 0, err
	}
	rp, err := nt.PopByNameTry(recv)
	if err != nil {
		return 0, err
	}
	nt.FunTimerStart("ConnectPops")
	defer nt.FunTimerStop("ConnectPops")

	ssh := etensor.NewShape([]int{len(sp.IDs)}, nil, nil)
	rsh := etensor.NewShape([]int{len(rp.IDs)}, nil, nil)
	_, _, cons := pat.Connect(ssh, rsh, send == recv)
	slen := ssh.Len()
	cbits := cons.Values

	n := nt.connectParallel(rsh.Len(), func(w, st, ed int) []*Connection {
		var buf []*Connection
		for ri := st; ri < ed; ri++ {
			rbi := ri * slen
			for si := 0; si < slen; si++ {
				if !cbits.Index(rbi + si) {
					continue
				}
				if sp.IDs[si] == rp.IDs[ri] {
					continue
				}
				if nt.Neurons[sp.IDs[si]] == nil || nt.Neurons[rp.IDs[ri]] == nil {
					log.Printf("ConnectPops: Network: %v skipping pair with missing endpoint: %v -> %v\n", nt.Nm, sp.IDs[si], rp.IDs[ri])
					continue
				}
				buf = append(buf, nt.newConn(sp.IDs[si], rp.IDs[ri], wt, rule, lr))
			}
		}
		return buf
	})
	return n, nil
}

// ConnectPopulations fully connects the send population to the recv
// population at the given weight and plasticity, skipping self-loops.
func (nt *Network) ConnectPopulations(send, recv string, wt float32, rule PlasticityRule, lr float32) (int, error) {
	return nt.ConnectPops(send, recv, prjn.NewFull(), wt, rule, lr)
}

// genWt draws one initial weight from the WtInit distribution using
// the given generator.
func (nt *Network) genWt(rnd *rand.Rand) float32 {
	switch nt.WtInit.Dist {
	case erand.Uniform:
		return float32(nt.WtInit.Mean + nt.WtInit.Var*(2*rnd.Float64()-1))
	case erand.Gaussian:
		return float32(rnd.NormFloat64()*nt.WtInit.Var + nt.WtInit.Mean)
	case erand.Mean:
		return float32(nt.WtInit.Mean)
	}
	return float32(nt.WtInit.Mean)
}

// ConnectPopulationsRandom wires the send population to the recv
// population with the given connection probability and plasticity,
// weights drawn from WtInit.  The source neurons are partitioned across
// worker goroutines, each with its own seeded generator and local
// connection buffer; buffers are merged into the store under one lock
// at the end.  Self-loops are skipped, and pairs whose endpoints are
// missing from the network are logged and skipped.  Returns the number
// of connections made.
func (nt *Network) ConnectPopulationsRandom(send, recv string, prob float64, seed int64, rule PlasticityRule, lr float32) (int, error) {
	sp, err := nt.PopByNameTry(send)
	if err != nil {
		return 0, err
	}
	rp, err := nt.PopByNameTry(recv)
	if err != nil {
		return 0, err
	}
	nt.FunTimerStart("ConnectRandom")
	defer nt.FunTimerStop("ConnectRandom")

	n := nt.connectParallel(len(sp.IDs), func(w, st, ed int) []*Connection {
		rnd := rand.New(rand.NewSource(seed + int64(w)))
		var buf []*Connection
		for _, src := range sp.IDs[st:ed] {
			for _, dst := range rp.IDs {
				if src == dst {
					continue
				}
				if rnd.Float64() >= prob {
					continue
				}
				if nt.Neurons[src] == nil || nt.Neurons[dst] == nil {
					log.Printf("ConnectPopulationsRandom: Network: %v skipping pair with missing endpoint: %v -> %v\n", nt.Nm, src, dst)
					continue
				}
				buf = append(buf, nt.newConn(src, dst, nt.genWt(rnd), rule, lr))
			}
		}
		return buf
	})
	return n, nil
}

// ConnectPopulationsRandomSparse wires the send population to the recv
// population with the given fixed weight, connection probability and
// plasticity, converting the store to the sparse representation first.
// Weights at or below SparsityThr in magnitude are not worth storing
// sparsely, so nothing is wired for them.  Self-loops are skipped.
// The source neurons are partitioned across worker goroutines as in
// ConnectPopulationsRandom.  Returns the number of connections made.
func (nt *Network) ConnectPopulationsRandomSparse(send, recv string, wt float32, prob float64, seed int64, rule PlasticityRule, lr float32) (int, error) {
	sp, err := nt.PopByNameTry(send)
	if err != nil {
		return 0, err
	}
	rp, err := nt.PopByNameTry(recv)
	if err != nil {
		return 0, err
	}
	if math32.Abs(wt) <= nt.SparsityThr {
		return 0, nil
	}
	nt.SetStorageMode(Sparse)
	n := nt.connectParallel(len(sp.IDs), func(w, st, ed int) []*Connection {
		rnd := rand.New(rand.NewSource(seed + int64(w)))
		var buf []*Connection
		for _, src := range sp.IDs[st:ed] {
			for _, dst := range rp.IDs {
				if src == dst {
					continue
				}
				if rnd.Float64() >= prob {
					continue
				}
				buf = append(buf, nt.newConn(src, dst, wt, rule, lr))
			}
		}
		return buf
	})
	return n, nil
}
