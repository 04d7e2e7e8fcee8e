// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spike

import (
	"github.com/nsim/spike/f16"
)

// Connection is one directed synapse from a source to a destination
// neuron, addressed by their stable ids.  The weight is stored either
// at full precision or as an encoded half-precision word: in half mode
// every read and write goes through the codec, so the stored value is
// always exactly what a save / load round trip would produce.
type Connection struct {
	Src   string      `desc:"source neuron id"`
	Dst   string      `desc:"destination neuron id"`
	Wt    float32     `desc:"synaptic weight at full precision -- unused in half mode"`
	Wt16  f16.Float16 `view:"-" desc:"encoded half-precision weight -- authoritative in half mode"`
	Half  bool        `inactive:"+" desc:"if true, the weight is stored half-precision"`
	Delay float32     `desc:"conduction delay -- informational, spikes arrive on the next cycle regardless"`
	Plast PlastParams `view:"inline" desc:"plasticity rule and params for this connection"`
}

// NewConnection returns a connection between the given neuron ids with
// the given weight and default (inactive) plasticity.
func NewConnection(src, dst string, wt float32) *Connection {
	cn := &Connection{Src: src, Dst: dst}
	cn.Plast.Defaults()
	cn.SetWeight(wt)
	return cn
}

// Weight returns the current weight, decoding in half mode.
func (cn *Connection) Weight() float32 {
	if cn.Half {
		return cn.Wt16.Float32()
	}
	return cn.Wt
}

// SetWeight stores the weight, encoding in half mode.
func (cn *Connection) SetWeight(wt float32) {
	if cn.Half {
		cn.Wt16 = f16.FromFloat32(wt)
	} else {
		cn.Wt = wt
	}
}

// SetHalf switches the weight precision, converting the stored value.
// Switching to half is lossy; switching back preserves the
// half-precision value exactly.
func (cn *Connection) SetHalf(half bool) {
	if cn.Half == half {
		return
	}
	wt := cn.Weight()
	cn.Half = half
	cn.SetWeight(wt)
}

// Propagate delivers the source's spike to the destination's pending
// input, weighted.  Reads only the source's fired flag from this
// cycle, so delivery is seen by the destination on the next update.
func (cn *Connection) Propagate(src, dst Neuron) {
	if !src.HasFired() {
		return
	}
	dst.AddInput(cn.Weight())
}

// ApplyPlasticity adjusts the weight per the configured rule from the
// endpoints' spike history at the given time.
func (cn *Connection) ApplyPlasticity(src, dst *NeuronBase, tm, dt float32) {
	if cn.Plast.Rule == NoRule {
		return
	}
	cn.SetWeight(cn.Plast.Apply(cn.Weight(), src, dst, tm, dt))
}
