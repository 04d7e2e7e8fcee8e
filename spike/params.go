// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spike

import (
	"fmt"

	"github.com/emer/emergent/erand"
	"github.com/goki/ki/kit"
	"github.com/nsim/spike/chans"
)

///////////////////////////////////////////////////////////////////////
//  params.go contains all neuron model parameters -- a flat record of
//  every tunable numeric field across all variants.  Each variant
//  reads only the subset it needs; unused fields are ignored.

// NeuronParams contains all the parameters for all neuron model
// variants.  Shared membrane fields are at the top level, with nested
// per-family sub-params below.
type NeuronParams struct {
	Thr      float32 `def:"-55" desc:"firing threshold potential (mV) -- shared hard-threshold condition for LIF-family and scalar-reduction models"`
	RestPot  float32 `def:"-70" desc:"resting potential (mV) -- leak target and construction-time potential"`
	ResetPot float32 `def:"-70" desc:"post-spike reset potential (mV)"`
	R        float32 `def:"10" min:"0" desc:"membrane resistance -- must be > 0"`
	C        float32 `def:"1" min:"0" desc:"membrane capacitance -- must be > 0"`
	Refract  float32 `def:"2" desc:"refractory period after a spike (time units) -- informational for LIF-family models"`

	Adapt AdaptParams  `view:"inline" desc:"spike-triggered adaptation current params (AdaptiveLIF)"`
	Izhi  IzhiParams   `view:"inline" desc:"Izhikevich two-variable model params"`
	HH    HHParams     `view:"inline" desc:"Hodgkin-Huxley conductances and reversal potentials"`
	Gate  GateParams   `view:"inline" desc:"gated-recurrent (GRU) cell params"`
	Attn  AttnParams   `view:"inline" desc:"attention cell params"`
	Conv  ConvParams   `view:"no-inline" desc:"convolutional cell geometry and operation params"`
	Homeo HomeoParams  `view:"inline" desc:"homeostatic adaptive cell params"`
	Noise NoiseParams  `view:"inline" desc:"where and how much random noise to add to the membrane potential"`
}

func (np *NeuronParams) Defaults() {
	np.Thr = -55
	np.RestPot = -70
	np.ResetPot = -70
	np.R = 10
	np.C = 1
	np.Refract = 2
	np.Adapt.Defaults()
	np.Izhi.Defaults()
	np.HH.Defaults()
	np.Gate.Defaults()
	np.Attn.Defaults()
	np.Conv.Defaults()
	np.Homeo.Defaults()
	np.Noise.Defaults()
	np.Update()
}

// Update must be called after any changes to parameters
func (np *NeuronParams) Update() {
	np.Adapt.Update()
	np.Izhi.Update()
	np.HH.Update()
	np.Gate.Update()
	np.Attn.Update()
	np.Conv.Update()
	np.Homeo.Update()
	np.Noise.Update()
}

// Validate checks the subset of parameters required by the given model
// variant, failing fast on contradictory or missing values rather than
// silently defaulting.
func (np *NeuronParams) Validate(mdl NeuronModel) error {
	switch mdl {
	case LIF, AdaptiveLIF, Adaptive:
		if np.R <= 0 {
			return fmt.Errorf("spike.NeuronParams: membrane resistance must be > 0, got %g", np.R)
		}
		if np.C <= 0 {
			return fmt.Errorf("spike.NeuronParams: membrane capacitance must be > 0, got %g", np.C)
		}
	case HodgkinHuxley:
		if np.HH.Cm <= 0 {
			return fmt.Errorf("spike.NeuronParams: HH membrane capacitance must be > 0, got %g", np.HH.Cm)
		}
	case GRU:
		if np.Gate.Hidden <= 0 {
			return fmt.Errorf("spike.NeuronParams: gated cell hidden size must be > 0, got %d", np.Gate.Hidden)
		}
	case Attention:
		if np.Attn.Heads <= 0 {
			return fmt.Errorf("spike.NeuronParams: attention head count must be > 0, got %d", np.Attn.Heads)
		}
		if np.Attn.DModel <= 0 || np.Attn.DModel%np.Attn.Heads != 0 {
			return fmt.Errorf("spike.NeuronParams: attention model width %d must be > 0 and divisible by heads %d", np.Attn.DModel, np.Attn.Heads)
		}
	case Conv:
		return np.Conv.Validate()
	}
	return nil
}

//////////////////////////////////////////////////////////////////////////////////////
//  AdaptParams

// AdaptParams govern the spike-triggered adaptation current used by
// the AdaptiveLIF model: decays exponentially with time constant Tau
// and increments by Strength on every spike.
type AdaptParams struct {
	Tau      float32 `def:"100" min:"1" desc:"adaptation current decay time constant (time units)"`
	Strength float32 `def:"0.1" desc:"adaptation current increment per spike"`
}

func (ap *AdaptParams) Update() {
}

func (ap *AdaptParams) Defaults() {
	ap.Tau = 100
	ap.Strength = 0.1
}

//////////////////////////////////////////////////////////////////////////////////////
//  IzhiParams

// IzhiParams are the four Izhikevich model constants.  Defaults are the
// regular-spiking regime.
type IzhiParams struct {
	A float32 `def:"0.02" desc:"recovery time scale"`
	B float32 `def:"0.2" desc:"recovery sensitivity to subthreshold potential"`
	C float32 `def:"-65" desc:"post-spike reset potential (mV)"`
	D float32 `def:"8" desc:"post-spike recovery increment"`
}

func (ip *IzhiParams) Update() {
}

func (ip *IzhiParams) Defaults() {
	ip.A = 0.02
	ip.B = 0.2
	ip.C = -65
	ip.D = 8
}

// VPeak is the fixed Izhikevich spike cutoff (mV).
const VPeak = 30

//////////////////////////////////////////////////////////////////////////////////////
//  HHParams

// HHParams are the Hodgkin-Huxley membrane parameters: maximal channel
// conductances, reversal potentials, and membrane capacitance.
type HHParams struct {
	Gbar chans.Chans `view:"inline" desc:"[Defaults: 120, 36, 0.3] maximal conductances for Na, K, leak channels (mS/cm^2)"`
	Erev chans.Chans `view:"inline" desc:"[Defaults: 50, -77, -54.387] reversal potentials for Na, K, leak channels (mV)"`
	Cm   float32     `def:"1" min:"0" desc:"membrane capacitance (uF/cm^2)"`
}

func (hp *HHParams) Update() {
}

func (hp *HHParams) Defaults() {
	hp.Gbar.SetAll(120, 36, 0.3)
	hp.Erev.SetAll(50, -77, -54.387)
	hp.Cm = 1
}

//////////////////////////////////////////////////////////////////////////////////////
//  GateParams

// GateParams configure the gated-recurrent cell.
type GateParams struct {
	Hidden   int     `def:"64" min:"1" desc:"hidden state vector size"`
	SpkDecay float32 `def:"0.95" desc:"per-cycle decay of the gate spike history when the cell does not fire"`
}

func (gp *GateParams) Update() {
}

func (gp *GateParams) Defaults() {
	gp.Hidden = 64
	gp.SpkDecay = 0.95
}

//////////////////////////////////////////////////////////////////////////////////////
//  AttnParams

// AttnParams configure the attention cell.
type AttnParams struct {
	Heads  int     `def:"8" min:"1" desc:"number of attention heads -- key width is DModel / Heads"`
	DModel int     `def:"512" min:"1" desc:"model width -- must be divisible by Heads"`
	Scale  float32 `def:"1" desc:"firing threshold on the attention output"`
	CtxMax int     `def:"16" desc:"maximum number of past input vectors retained in the rolling context"`
}

func (at *AttnParams) Update() {
}

func (at *AttnParams) Defaults() {
	at.Heads = 8
	at.DModel = 512
	at.Scale = 1
	at.CtxMax = 16
}

// KeyDim returns the per-head key width.
func (at *AttnParams) KeyDim() int {
	return at.DModel / at.Heads
}

//////////////////////////////////////////////////////////////////////////////////////
//  ConvParams

// PoolingKind selects the pooling operation for the convolutional cell.
type PoolingKind int

//go:generate stringer -type=PoolingKind

var KiT_PoolingKind = kit.Enums.AddEnum(PoolingKindN, kit.NotBitFlag, nil)

func (ev PoolingKind) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *PoolingKind) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// MaxPool takes the maximum within each pooling window
	MaxPool PoolingKind = iota

	// AvgPool takes the average within each pooling window
	AvgPool

	// NoPool passes the convolution output through unchanged
	NoPool

	PoolingKindN
)

// ActFunc selects the activation function for the convolutional cell.
type ActFunc int

//go:generate stringer -type=ActFunc

var KiT_ActFunc = kit.Enums.AddEnum(ActFuncN, kit.NotBitFlag, nil)

func (ev ActFunc) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *ActFunc) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Relu is max(0, x)
	Relu ActFunc = iota

	// Sigmoid is 1 / (1 + exp(-x))
	Sigmoid

	// Tanh is the hyperbolic tangent
	Tanh

	ActFuncN
)

// ConvParams configure the convolutional cell geometry and operations.
type ConvParams struct {
	Width     int         `def:"28" min:"1" desc:"input feature map width"`
	Height    int         `def:"28" min:"1" desc:"input feature map height"`
	Chans     int         `def:"1" min:"1" desc:"input channels"`
	Filters   int         `def:"32" min:"1" desc:"number of convolution filters"`
	Kernel    int         `def:"3" min:"1" desc:"square kernel size"`
	Stride    int         `def:"1" min:"1" desc:"convolution stride"`
	Pad       int         `def:"1" desc:"zero padding on each edge"`
	Pool      int         `def:"2" min:"1" desc:"pooling window size"`
	Pooling   PoolingKind `desc:"pooling operation"`
	Act       ActFunc     `desc:"activation function applied after pooling"`
	SpkDecay  float32     `def:"0.95" desc:"per-cycle decay of the per-filter spike history when the cell does not fire"`
	TempDecay float32     `def:"0.9" desc:"per-cycle decay of the temporal integration buffer"`
}

func (cp *ConvParams) Update() {
}

func (cp *ConvParams) Defaults() {
	cp.Width = 28
	cp.Height = 28
	cp.Chans = 1
	cp.Filters = 32
	cp.Kernel = 3
	cp.Stride = 1
	cp.Pad = 1
	cp.Pool = 2
	cp.Pooling = MaxPool
	cp.Act = Relu
	cp.SpkDecay = 0.95
	cp.TempDecay = 0.9
}

// Validate checks the convolution geometry for consistency.
func (cp *ConvParams) Validate() error {
	if cp.Width <= 0 || cp.Height <= 0 || cp.Chans <= 0 {
		return fmt.Errorf("spike.ConvParams: input dims must be > 0, got %d x %d x %d", cp.Chans, cp.Height, cp.Width)
	}
	if cp.Filters <= 0 || cp.Kernel <= 0 || cp.Stride <= 0 || cp.Pool <= 0 {
		return fmt.Errorf("spike.ConvParams: filters, kernel, stride, pool must all be > 0")
	}
	if cp.OutWidth() <= 0 || cp.OutHeight() <= 0 {
		return fmt.Errorf("spike.ConvParams: kernel %d with stride %d, pad %d does not fit %d x %d input", cp.Kernel, cp.Stride, cp.Pad, cp.Height, cp.Width)
	}
	return nil
}

// OutWidth returns the convolution output width.
func (cp *ConvParams) OutWidth() int {
	return (cp.Width-cp.Kernel+2*cp.Pad)/cp.Stride + 1
}

// OutHeight returns the convolution output height.
func (cp *ConvParams) OutHeight() int {
	return (cp.Height-cp.Kernel+2*cp.Pad)/cp.Stride + 1
}

//////////////////////////////////////////////////////////////////////////////////////
//  HomeoParams

// HomeoParams configure the homeostatic adaptive cell, which adjusts
// its firing threshold to hold mean activity near half the baseline
// threshold.
type HomeoParams struct {
	Rate   float32 `def:"0.1" desc:"adaptation current increment per spike, and its fractional decay rate per unit time"`
	Leak   float32 `def:"0.01" desc:"multiplicative membrane leak rate per unit time"`
	Window float32 `def:"100" min:"1" desc:"plasticity window for the mean activity estimate (time units)"`
}

func (hp *HomeoParams) Update() {
}

func (hp *HomeoParams) Defaults() {
	hp.Rate = 0.1
	hp.Leak = 0.01
	hp.Window = 100
}

//////////////////////////////////////////////////////////////////////////////////////
//  Noise

// NoiseType are different types / locations of random noise for neurons
type NoiseType int

//go:generate stringer -type=NoiseType

var KiT_NoiseType = kit.Enums.AddEnum(NoiseTypeN, kit.NotBitFlag, nil)

func (ev NoiseType) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *NoiseType) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The neuron noise types
const (
	// NoNoise means no noise added
	NoNoise NoiseType = iota

	// VmNoise means noise is added to the membrane potential after
	// integration, scaled by sqrt(dt)
	VmNoise

	NoiseTypeN
)

// NoiseParams contains parameters for membrane potential noise
type NoiseParams struct {
	erand.RndParams
	Type NoiseType `desc:"where to add processing noise"`
}

func (nn *NoiseParams) Update() {
}

func (nn *NoiseParams) Defaults() {
	nn.Type = NoNoise
	nn.Dist = erand.Gaussian
	nn.Mean = 0
	nn.Var = 0.01
}
