// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spike

import (
	"fmt"

	"github.com/goki/ki/kit"
)

// NeuronModel is the biophysical / computational variant implemented
// by a neuron instance.
type NeuronModel int

//go:generate stringer -type=NeuronModel

var KiT_NeuronModel = kit.Enums.AddEnum(NeuronModelN, kit.NotBitFlag, nil)

func (ev NeuronModel) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *NeuronModel) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The neuron model variants
const (
	// LIF is the standard leaky integrate-and-fire model:
	// explicit-Euler leak toward resting potential plus input current,
	// hard threshold, reset on spike.
	LIF NeuronModel = iota

	// AdaptiveLIF is LIF with a spike-triggered adaptation current that
	// decays exponentially and is subtracted from the input drive.
	AdaptiveLIF

	// Izhikevich is the two-variable quadratic model: v' = 0.04v^2 + 5v
	// + 140 - u + I, u' = a(bv - u), spike at v >= 30 with v <- c, u += d.
	Izhikevich

	// HodgkinHuxley is the four-variable conductance model with Na, K and
	// leak channels; spikes are upward zero crossings of the voltage.
	HodgkinHuxley

	// GRU is a gated-recurrent cell with reset / update / candidate gates
	// over a hidden vector, plus spike-driven gate gain modulation and a
	// homeostatic threshold multiplier.
	GRU

	// Attention computes scaled dot-product attention between a query
	// derived from the latest input and a rolling context of past input
	// vectors, thresholding the attention-weighted mean.
	Attention

	// Conv holds a 3-D input feature map and runs convolution, pooling
	// and activation, thresholding the mean of the resulting map with a
	// spike-history-driven threshold gain.
	Conv

	// Adaptive is the homeostatic leak cell: multiplicative leak,
	// adaptation current, and a firing threshold that adjusts to hold
	// activity near a baseline.
	Adaptive

	NeuronModelN
)

// Neuron is the interface implemented by all neuron model variants.
// The Update / Reset / AddInput / State contract is uniform across
// models; everything else lives in the embedded NeuronBase, accessible
// via AsBase.
type Neuron interface {
	// AsBase returns the common NeuronBase state for this neuron.
	AsBase() *NeuronBase

	// Model returns the model variant tag.
	Model() NeuronModel

	// Update consumes all pending input accumulated since the last call,
	// advances internal state by one integration step of size dt, and
	// decides this cycle's fired flag.  Pending input is cleared before
	// returning.
	Update(dt float32)

	// Reset restores all state to construction-time defaults.
	Reset()

	// AddInput accumulates a scalar input current for the next Update.
	// Vector-structured models broadcast the scalar into their first
	// input channel.
	AddInput(cur float32)

	// HasFired reports whether the neuron fired on the cycle just
	// computed.
	HasFired() bool

	// ClearFired clears the fired flag prior to this cycle's Update.
	ClearFired()

	// Potential returns the scalar activity readout shared by all
	// variants.
	Potential() float32

	// State serializes the full private state as an ordered sequence:
	// the 4-element base prefix [potential, fired, lastSpikeTime,
	// adaptation] followed by variant-specific extras.  The ordering
	// must exactly match between State and SetState.
	State() []float32

	// SetState restores state previously captured by State.
	SetState(st []float32) error
}

// SpikeHistoryMax is the maximum age, in simulation time units, of
// events retained in the per-neuron spike history.
const SpikeHistoryMax = 1000

// NeuronBase holds the state common to all neuron model variants.
// Specific models embed it and add their private variables.
type NeuronBase struct {
	ID    string       `desc:"stable unique id, assigned by the network at creation (type name + counter)"`
	Nm    string       `desc:"optional human-readable alias -- empty until NameNeuron is called"`
	Typ   string       `desc:"registered type name this neuron was created from"`
	Mdl   NeuronModel  `desc:"model variant tag"`
	Prms  NeuronParams `desc:"all model parameters -- each variant reads only the subset it needs"`
	Vm    float32      `desc:"scalar potential -- the unifying activity readout across all variants"`
	Fired bool         `desc:"true if the neuron fired on the cycle just computed"`
	In    float32      `view:"-" desc:"pending input current accumulated since the last Update"`
	Adapt float32      `desc:"adaptation current (adaptive variants only)"`

	LastSpk float32   `desc:"time of the most recent spike"`
	SpkHist []float32 `view:"-" desc:"recent spike times, bounded to the last SpikeHistoryMax time units"`
	Tm      float32   `view:"-" desc:"local clock, advanced by dt on every Update"`
}

// TypeName returns the parameter styling type for all neurons.
func (nb *NeuronBase) TypeName() string { return "Neuron" }

// Class returns the registered type name, for .Class param selectors.
func (nb *NeuronBase) Class() string { return nb.Typ }

// Name returns the alias if named, else the id, for #Name selectors.
func (nb *NeuronBase) Name() string {
	if nb.Nm != "" {
		return nb.Nm
	}
	return nb.ID
}

func (nb *NeuronBase) AsBase() *NeuronBase { return nb }

func (nb *NeuronBase) Model() NeuronModel { return nb.Mdl }

func (nb *NeuronBase) AddInput(cur float32) { nb.In += cur }

func (nb *NeuronBase) HasFired() bool { return nb.Fired }

func (nb *NeuronBase) ClearFired() { nb.Fired = false }

func (nb *NeuronBase) Potential() float32 { return nb.Vm }

// InitBase sets the construction-time defaults for the common state.
func (nb *NeuronBase) InitBase() {
	nb.Vm = nb.Prms.RestPot
	nb.Fired = false
	nb.In = 0
	nb.Adapt = 0
	nb.LastSpk = 0
	nb.SpkHist = nil
	nb.Tm = 0
}

// TakeInput returns the accumulated pending input and clears it --
// called exactly once at the start of each variant's Update.
func (nb *NeuronBase) TakeInput() float32 {
	in := nb.In
	nb.In = 0
	return in
}

// RecordSpike appends a spike at the given time and trims history
// entries older than SpikeHistoryMax.
func (nb *NeuronBase) RecordSpike(tm float32) {
	nb.Fired = true
	nb.LastSpk = tm
	nb.SpkHist = append(nb.SpkHist, tm)
	trim := 0
	for trim < len(nb.SpkHist) && tm-nb.SpkHist[trim] > SpikeHistoryMax {
		trim++
	}
	if trim > 0 {
		nb.SpkHist = nb.SpkHist[trim:]
	}
}

// SpikedWithin reports whether the neuron spiked within the given
// window before time tm.
func (nb *NeuronBase) SpikedWithin(tm, window float32) bool {
	return len(nb.SpkHist) > 0 && tm-nb.LastSpk <= window
}

// FiringRate returns the recent firing rate in spikes per second,
// counting history entries within the given window of the most recent
// spike (window is in the same ms-scale time units as dt).
func (nb *NeuronBase) FiringRate(window float32) float32 {
	if len(nb.SpkHist) == 0 {
		return 0
	}
	cur := nb.SpkHist[len(nb.SpkHist)-1]
	n := 0
	for _, st := range nb.SpkHist {
		if cur-st <= window {
			n++
		}
	}
	return float32(n) * 1000 / window
}

// GenNoise returns one sample of membrane noise per the Noise params,
// or 0 if noise is off.
func (nb *NeuronBase) GenNoise() float32 {
	if nb.Prms.Noise.Type == NoNoise {
		return 0
	}
	return float32(nb.Prms.Noise.Gen(-1))
}

// baseState returns the 4-element common state prefix.
func (nb *NeuronBase) baseState() []float32 {
	f := float32(0)
	if nb.Fired {
		f = 1
	}
	return []float32{nb.Vm, f, nb.LastSpk, nb.Adapt}
}

// setBaseState restores the 4-element common prefix, returning an
// error if the sequence is too short.
func (nb *NeuronBase) setBaseState(st []float32) error {
	if len(st) < 4 {
		return fmt.Errorf("spike.NeuronBase.SetState: need at least 4 values, got %d", len(st))
	}
	nb.Vm = st[0]
	nb.Fired = st[1] > 0.5
	nb.LastSpk = st[2]
	nb.Adapt = st[3]
	return nil
}

// NBaseState is the length of the common state prefix.
const NBaseState = 4
