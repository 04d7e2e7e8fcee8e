// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spike

import (
	"sync"
	"testing"
)

func TestPoolReuse(t *testing.T) {
	cp := NewConnPool(0)
	if cp.MaxSize != ConnPoolMax {
		t.Errorf("default cap: got %v, want %v", cp.MaxSize, ConnPoolMax)
	}

	cn := cp.Get()
	cn.Src = "a"
	cn.Dst = "b"
	cn.SetWeight(0.5)
	cp.Put(cn)

	cn2 := cp.Get()
	if cn2 != cn {
		t.Errorf("free list not reused")
	}
	if cn2.Src != "" || cn2.Dst != "" || cn2.Weight() != 0 {
		t.Errorf("recycled connection not zeroed: %+v", cn2)
	}

	st := cp.Stats()
	if st.Created != 1 || st.Reused != 1 {
		t.Errorf("stats: created %v, reused %v, want 1, 1", st.Created, st.Reused)
	}
	if st.Util != 0.5 {
		t.Errorf("utilization: got %v, want 0.5", st.Util)
	}
}

func TestPoolCap(t *testing.T) {
	cp := NewConnPool(2)
	cp.Preallocate(10)
	if st := cp.Stats(); st.Size != 2 {
		t.Errorf("preallocate beyond cap: size %v, want 2", st.Size)
	}
	for i := 0; i < 5; i++ {
		cp.Put(&Connection{})
	}
	if st := cp.Stats(); st.Size != 2 {
		t.Errorf("put beyond cap: size %v, want 2", st.Size)
	}
	cp.Clear()
	if st := cp.Stats(); st.Size != 0 {
		t.Errorf("clear: size %v, want 0", st.Size)
	}
}

func TestPoolConcurrent(t *testing.T) {
	cp := NewConnPool(100)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				cn := cp.Get()
				cn.SetWeight(1)
				cp.Put(cn)
			}
		}()
	}
	wg.Wait()
	st := cp.Stats()
	if st.Size > 100 {
		t.Errorf("free list exceeded cap: %v", st.Size)
	}
}
