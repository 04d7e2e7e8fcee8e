// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spike

import (
	"sync"
)

// ConnPoolMax is the default cap on pooled connection objects.
const ConnPoolMax = 10000

// ConnPool recycles Connection objects so that heavy wiring and
// pruning churn does not allocate.  All methods are safe for
// concurrent use.
type ConnPool struct {
	Mu      sync.Mutex    `view:"-" desc:"protects the free list and counters"`
	Free    []*Connection `view:"-" desc:"recycled connections available for reuse"`
	MaxSize int           `desc:"cap on the free list -- Put beyond this discards"`
	Created int64         `desc:"total connections ever allocated by this pool"`
	Reused  int64         `desc:"total Get calls served from the free list"`
}

// NewConnPool returns a pool with the given free-list cap, or
// ConnPoolMax if maxSize <= 0.
func NewConnPool(maxSize int) *ConnPool {
	if maxSize <= 0 {
		maxSize = ConnPoolMax
	}
	return &ConnPool{MaxSize: maxSize}
}

// Get returns a zeroed connection from the free list, allocating if
// the list is empty.
func (cp *ConnPool) Get() *Connection {
	cp.Mu.Lock()
	defer cp.Mu.Unlock()
	n := len(cp.Free)
	if n == 0 {
		cp.Created++
		cn := &Connection{}
		cn.Plast.Defaults()
		return cn
	}
	cn := cp.Free[n-1]
	cp.Free[n-1] = nil
	cp.Free = cp.Free[:n-1]
	cp.Reused++
	return cn
}

// Put recycles a connection, zeroing it first.  Puts beyond the cap
// are discarded to the garbage collector.
func (cp *ConnPool) Put(cn *Connection) {
	if cn == nil {
		return
	}
	*cn = Connection{}
	cn.Plast.Defaults()
	cp.Mu.Lock()
	defer cp.Mu.Unlock()
	if len(cp.Free) >= cp.MaxSize {
		return
	}
	cp.Free = append(cp.Free, cn)
}

// Preallocate fills the free list up to n connections.
func (cp *ConnPool) Preallocate(n int) {
	cp.Mu.Lock()
	defer cp.Mu.Unlock()
	if n > cp.MaxSize {
		n = cp.MaxSize
	}
	for len(cp.Free) < n {
		cn := &Connection{}
		cn.Plast.Defaults()
		cp.Free = append(cp.Free, cn)
		cp.Created++
	}
}

// Clear drops the entire free list.
func (cp *ConnPool) Clear() {
	cp.Mu.Lock()
	defer cp.Mu.Unlock()
	cp.Free = nil
}

// PoolStats is a snapshot of pool usage.
type PoolStats struct {
	Size    int     `desc:"connections currently on the free list"`
	MaxSize int     `desc:"free list cap"`
	Created int64   `desc:"total connections ever allocated"`
	Reused  int64   `desc:"total Get calls served from the free list"`
	Util    float32 `desc:"fraction of Get calls served from the free list"`
}

// Stats returns a snapshot of pool usage.
func (cp *ConnPool) Stats() PoolStats {
	cp.Mu.Lock()
	defer cp.Mu.Unlock()
	st := PoolStats{
		Size:    len(cp.Free),
		MaxSize: cp.MaxSize,
		Created: cp.Created,
		Reused:  cp.Reused,
	}
	if tot := cp.Created + cp.Reused; tot > 0 {
		st.Util = float32(cp.Reused) / float32(tot)
	}
	return st
}
