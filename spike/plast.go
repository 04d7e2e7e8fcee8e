// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spike

import (
	"github.com/chewxy/math32"
	"github.com/emer/etable/minmax"
	"github.com/goki/ki/kit"
)

// PlasticityRule is the local learning rule applied to a connection's
// weight after each network cycle.
type PlasticityRule int

//go:generate stringer -type=PlasticityRule

var KiT_PlasticityRule = kit.Enums.AddEnum(PlasticityRuleN, kit.NotBitFlag, nil)

func (ev PlasticityRule) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *PlasticityRule) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The plasticity rules
const (
	// NoRule leaves the weight fixed
	NoRule PlasticityRule = iota

	// STDP is spike-timing-dependent plasticity: potentiation when the
	// source spike precedes the destination spike within the pairing
	// window, depression for the reverse order
	STDP

	// BCM scales the Hebbian product by the destination activity's
	// deviation from the modification threshold, so low post activity
	// depresses and high post activity potentiates
	BCM

	// Hebbian potentiates in proportion to the product of recent source
	// and destination activity
	Hebbian

	// AntiHebbian is Hebbian with the opposite sign
	AntiHebbian

	PlasticityRuleN
)

// PlastParams govern how a connection's weight changes from the spike
// activity of its endpoints.
type PlastParams struct {
	Rule    PlasticityRule `desc:"which learning rule to apply -- NoRule leaves the weight fixed"`
	Lr      float32        `def:"0.01" desc:"learning rate multiplying every weight change"`
	TauPre  float32        `def:"20" min:"1" desc:"STDP potentiation time constant for pre-before-post pairings"`
	TauPost float32        `def:"20" min:"1" desc:"STDP depression time constant for post-before-pre pairings"`
	APlus   float32        `def:"0.1" desc:"STDP potentiation amplitude"`
	AMinus  float32        `def:"0.12" desc:"STDP depression amplitude"`
	Window  float32        `def:"0.1" desc:"STDP pairing window -- spike pairs further apart than this have no effect"`
	ActWin  float32        `def:"10" desc:"window before the current time within which a spike counts as recent activity, for the rate-based rules"`
	ActThr  float32        `def:"1" desc:"BCM modification threshold on destination activity"`
	WtRange minmax.F32     `desc:"[Defaults: 0, 1] weight clamping range applied after every change"`
}

func (pp *PlastParams) Defaults() {
	pp.Rule = NoRule
	pp.Lr = 0.01
	pp.TauPre = 20
	pp.TauPost = 20
	pp.APlus = 0.1
	pp.AMinus = 0.12
	pp.Window = 0.1
	pp.ActWin = 10
	pp.ActThr = 1
	pp.WtRange.Set(0, 1)
	pp.Update()
}

func (pp *PlastParams) Update() {
}

// WtChange returns the weight delta for the configured rule, given the
// source and destination neurons, the current time, and the step size.
func (pp *PlastParams) WtChange(src, dst *NeuronBase, tm, dt float32) float32 {
	switch pp.Rule {
	case STDP:
		return pp.stdp(src, dst)
	case BCM:
		return pp.bcm(src, dst, tm, dt)
	case Hebbian:
		return pp.hebb(src, dst, tm, dt)
	case AntiHebbian:
		return -pp.hebb(src, dst, tm, dt)
	}
	return 0
}

// Apply computes the weight change for this cycle and returns the new
// weight, clamped to WtRange.
func (pp *PlastParams) Apply(wt float32, src, dst *NeuronBase, tm, dt float32) float32 {
	dwt := pp.WtChange(src, dst, tm, dt)
	if dwt == 0 {
		return wt
	}
	return pp.WtRange.ClipVal(wt + pp.Lr*dwt)
}

// stdp pairs the endpoints' most recent spikes: positive spike-time
// difference (source first) potentiates, negative depresses.
func (pp *PlastParams) stdp(src, dst *NeuronBase) float32 {
	if len(src.SpkHist) == 0 || len(dst.SpkHist) == 0 {
		return 0
	}
	dts := dst.LastSpk - src.LastSpk
	if math32.Abs(dts) >= pp.Window {
		return 0
	}
	if dts > 0 {
		return pp.APlus * math32.Exp(-dts/pp.TauPre)
	}
	return -pp.AMinus * math32.Exp(dts/pp.TauPost)
}

// recentAct is 1 if the neuron spiked within the activity window, else 0.
func (pp *PlastParams) recentAct(nb *NeuronBase, tm float32) float32 {
	if nb.SpikedWithin(tm, pp.ActWin) {
		return 1
	}
	return 0
}

func (pp *PlastParams) hebb(src, dst *NeuronBase, tm, dt float32) float32 {
	return pp.recentAct(src, tm) * pp.recentAct(dst, tm) * dt
}

func (pp *PlastParams) bcm(src, dst *NeuronBase, tm, dt float32) float32 {
	post := pp.recentAct(dst, tm)
	return pp.recentAct(src, tm) * post * (post - pp.ActThr) * dt
}
