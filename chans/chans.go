// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package chans provides the ion channel conductances and voltage-dependent
gating kinetics for the Hodgkin-Huxley point-neuron model: sodium (Na),
potassium (K), and leak (L) channels, each with a maximal conductance and
a reversal potential, plus the standard alpha / beta rate functions
governing the m, h, n gating variables.
*/
package chans

import "github.com/chewxy/math32"

// Chans are the three Hodgkin-Huxley ion channels -- used for both
// maximal conductances (mS/cm^2) and reversal potentials (mV).
type Chans struct {
	Na float32 `desc:"sodium channels -- fast activating (m) and inactivating (h), drives the spike upstroke"`
	K  float32 `desc:"delayed-rectifier potassium channels (n gate) -- repolarizes the membrane after a spike"`
	L  float32 `desc:"passive leak channels -- determines resting behavior"`
}

// SetAll sets all the values
func (ch *Chans) SetAll(na, k, l float32) {
	ch.Na, ch.K, ch.L = na, k, l
}

// Gates are the Hodgkin-Huxley gating variables, each in [0,1].
type Gates struct {
	M float32 `def:"0.05" desc:"sodium activation gate"`
	H float32 `def:"0.6" desc:"sodium inactivation gate"`
	N float32 `def:"0.32" desc:"potassium activation gate"`
}

// Defaults sets the standard resting-state gate values at Vm = -65 mV
func (gs *Gates) Defaults() {
	gs.M = 0.05
	gs.H = 0.6
	gs.N = 0.32
}

// Update advances all three gates by one explicit-Euler step of size dt
// at the given membrane potential.
func (gs *Gates) Update(vm, dt float32) {
	gs.M += dt * (AlphaM(vm)*(1-gs.M) - BetaM(vm)*gs.M)
	gs.H += dt * (AlphaH(vm)*(1-gs.H) - BetaH(vm)*gs.H)
	gs.N += dt * (AlphaN(vm)*(1-gs.N) - BetaN(vm)*gs.N)
}

// AlphaM is the sodium activation opening rate.  The removable
// singularity at vm = -40 is replaced by its limit value.
func AlphaM(vm float32) float32 {
	if math32.Abs(vm+40) < 1e-6 {
		return 1
	}
	return 0.1 * (vm + 40) / (1 - math32.Exp(-(vm+40)/10))
}

// BetaM is the sodium activation closing rate.
func BetaM(vm float32) float32 {
	return 4 * math32.Exp(-(vm+65)/18)
}

// AlphaH is the sodium inactivation opening rate.
func AlphaH(vm float32) float32 {
	return 0.07 * math32.Exp(-(vm+65)/20)
}

// BetaH is the sodium inactivation closing rate.
func BetaH(vm float32) float32 {
	return 1 / (1 + math32.Exp(-(vm+35)/10))
}

// AlphaN is the potassium activation opening rate.  The removable
// singularity at vm = -55 is replaced by its limit value.
func AlphaN(vm float32) float32 {
	if math32.Abs(vm+55) < 1e-6 {
		return 0.1
	}
	return 0.01 * (vm + 55) / (1 - math32.Exp(-(vm+55)/10))
}

// BetaN is the potassium activation closing rate.
func BetaN(vm float32) float32 {
	return 0.125 * math32.Exp(-(vm+65)/80)
}
