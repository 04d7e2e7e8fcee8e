// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spike

import (
	"github.com/goki/ki/kit"
)

// StorageMode selects the connection storage representation.
type StorageMode int

//go:generate stringer -type=StorageMode

var KiT_StorageMode = kit.Enums.AddEnum(StorageModeN, kit.NotBitFlag, nil)

func (ev StorageMode) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *StorageMode) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Dense keeps connections in one insertion-ordered slice, allowing
	// parallel edges between the same pair -- best for full iteration
	// over mostly-connected nets
	Dense StorageMode = iota

	// Sparse keeps connections in a map keyed by endpoint pair with a
	// separate order list, one connection per ordered pair -- best for
	// large, sparsely connected nets
	Sparse

	StorageModeN
)

// ConnKey addresses one directed connection by its endpoint ids.
type ConnKey struct {
	Src string
	Dst string
}

// ConnStore holds all connections of a network in either dense or
// sparse representation.  Iteration order is insertion order in both
// modes.  Dense mode permits multiple parallel edges between the same
// endpoints; sparse mode holds at most one per ordered pair, so
// converting dense to sparse collapses duplicate pairs, keeping the
// most recently added connection.
type ConnStore struct {
	Mode  StorageMode             `desc:"current storage representation"`
	Conns []*Connection           `view:"-" desc:"insertion-ordered connections, parallel edges allowed (dense mode)"`
	ByKey map[ConnKey]*Connection `view:"-" desc:"connections by endpoint pair (sparse mode)"`
	Order []ConnKey               `view:"-" desc:"insertion order of keys (sparse mode)"`
}

// Init sets the storage mode and clears all connections.
func (cs *ConnStore) Init(mode StorageMode) {
	cs.Mode = mode
	cs.Conns = nil
	cs.ByKey = nil
	cs.Order = nil
	if mode == Sparse {
		cs.ByKey = make(map[ConnKey]*Connection)
	}
}

// Len returns the number of stored connections.
func (cs *ConnStore) Len() int {
	if cs.Mode == Dense {
		return len(cs.Conns)
	}
	return len(cs.ByKey)
}

// Add stores the connection.  In dense mode it is always appended, so
// repeated Adds between the same endpoints accumulate parallel edges.
// In sparse mode any existing connection between the same endpoints is
// replaced and returned for recycling (else nil).
func (cs *ConnStore) Add(cn *Connection) *Connection {
	if cs.Mode == Dense {
		cs.Conns = append(cs.Conns, cn)
		return nil
	}
	key := ConnKey{cn.Src, cn.Dst}
	if cs.ByKey == nil {
		cs.ByKey = make(map[ConnKey]*Connection)
	}
	if old, ok := cs.ByKey[key]; ok {
		cs.ByKey[key] = cn
		return old
	}
	cs.ByKey[key] = cn
	cs.Order = append(cs.Order, key)
	return nil
}

// Get returns the connection between the given endpoints, or nil.  In
// dense mode, with parallel edges present, it returns the first one in
// insertion order.
func (cs *ConnStore) Get(src, dst string) *Connection {
	if cs.Mode == Dense {
		for _, cn := range cs.Conns {
			if cn.Src == src && cn.Dst == dst {
				return cn
			}
		}
		return nil
	}
	return cs.ByKey[ConnKey{src, dst}]
}

// Del removes and returns the connection between the given endpoints,
// or nil if absent.  In dense mode, with parallel edges present, it
// removes the first one in insertion order.
func (cs *ConnStore) Del(src, dst string) *Connection {
	if cs.Mode == Dense {
		for i, cn := range cs.Conns {
			if cn.Src == src && cn.Dst == dst {
				copy(cs.Conns[i:], cs.Conns[i+1:])
				cs.Conns[len(cs.Conns)-1] = nil
				cs.Conns = cs.Conns[:len(cs.Conns)-1]
				return cn
			}
		}
		return nil
	}
	key := ConnKey{src, dst}
	cn, ok := cs.ByKey[key]
	if !ok {
		return nil
	}
	delete(cs.ByKey, key)
	for i, k := range cs.Order {
		if k == key {
			cs.Order = append(cs.Order[:i], cs.Order[i+1:]...)
			break
		}
	}
	return cn
}

// Do calls fn on every connection in insertion order, stopping early
// if fn returns false.
func (cs *ConnStore) Do(fn func(cn *Connection) bool) {
	if cs.Mode == Dense {
		for _, cn := range cs.Conns {
			if !fn(cn) {
				return
			}
		}
		return
	}
	for _, key := range cs.Order {
		if cn, ok := cs.ByKey[key]; ok {
			if !fn(cn) {
				return
			}
		}
	}
}

// SetMode converts the store to the given representation.  Converting
// dense to sparse collapses parallel edges between the same endpoints
// down to the most recently added one, returning the dropped
// connections for recycling (nil when there are no duplicates);
// otherwise the connection set is preserved exactly, same objects, same
// weights, same iteration order.
func (cs *ConnStore) SetMode(mode StorageMode) []*Connection {
	if cs.Mode == mode {
		return nil
	}
	if mode == Sparse {
		byKey := make(map[ConnKey]*Connection, len(cs.Conns))
		order := make([]ConnKey, 0, len(cs.Conns))
		var dropped []*Connection
		for _, cn := range cs.Conns {
			key := ConnKey{cn.Src, cn.Dst}
			if old, ok := byKey[key]; ok {
				dropped = append(dropped, old)
			} else {
				order = append(order, key)
			}
			byKey[key] = cn
		}
		cs.Mode = Sparse
		cs.ByKey = byKey
		cs.Order = order
		cs.Conns = nil
		return dropped
	}
	conns := make([]*Connection, 0, len(cs.ByKey))
	for _, key := range cs.Order {
		if cn, ok := cs.ByKey[key]; ok {
			conns = append(conns, cn)
		}
	}
	cs.Mode = Dense
	cs.Conns = conns
	cs.ByKey = nil
	cs.Order = nil
	return nil
}

// Prune removes all connections with absolute weight below the given
// threshold, recycling them through the pool if non-nil, and returns
// the number removed.
func (cs *ConnStore) Prune(thr float32, pool *ConnPool) int {
	weak := func(cn *Connection) bool {
		wt := cn.Weight()
		if wt < 0 {
			wt = -wt
		}
		return wt < thr
	}
	if cs.Mode == Dense {
		kept := cs.Conns[:0]
		n := 0
		for _, cn := range cs.Conns {
			if weak(cn) {
				n++
				if pool != nil {
					pool.Put(cn)
				}
				continue
			}
			kept = append(kept, cn)
		}
		for i := len(kept); i < len(cs.Conns); i++ {
			cs.Conns[i] = nil
		}
		cs.Conns = kept
		return n
	}
	var doomed []ConnKey
	cs.Do(func(cn *Connection) bool {
		if weak(cn) {
			doomed = append(doomed, ConnKey{cn.Src, cn.Dst})
		}
		return true
	})
	for _, key := range doomed {
		if cn := cs.Del(key.Src, key.Dst); cn != nil && pool != nil {
			pool.Put(cn)
		}
	}
	return len(doomed)
}
