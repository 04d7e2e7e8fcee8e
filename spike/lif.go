// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spike

import "github.com/chewxy/math32"

// LIFNeuron is the standard leaky integrate-and-fire model:
// C dV/dt = -(V - RestPot) / R + I, explicit Euler, with a hard
// threshold and reset.
type LIFNeuron struct {
	NeuronBase
}

func (nr *LIFNeuron) Update(dt float32) {
	in := nr.TakeInput()
	nr.Tm += dt

	leak := -(nr.Vm - nr.Prms.RestPot) / nr.Prms.R
	nr.Vm += dt * (leak + in) / nr.Prms.C

	if nr.Vm >= nr.Prms.Thr {
		nr.Vm = nr.Prms.ResetPot
		nr.RecordSpike(nr.Tm)
	} else {
		nr.Fired = false
	}

	if nr.Prms.Noise.Type == VmNoise {
		nr.Vm += nr.GenNoise() * math32.Sqrt(dt)
	}
}

func (nr *LIFNeuron) Reset() {
	nr.InitBase()
}

func (nr *LIFNeuron) State() []float32 {
	return nr.baseState()
}

func (nr *LIFNeuron) SetState(st []float32) error {
	return nr.setBaseState(st)
}

// AdaptiveLIFNeuron is LIF with a spike-triggered adaptation current:
// the current decays as exp(-dt / Adapt.Tau) every step, is subtracted
// from the input drive, and increments by Adapt.Strength on each spike.
type AdaptiveLIFNeuron struct {
	NeuronBase
}

func (nr *AdaptiveLIFNeuron) Update(dt float32) {
	in := nr.TakeInput()
	nr.Tm += dt

	nr.Adapt *= math32.Exp(-dt / nr.Prms.Adapt.Tau)

	leak := -(nr.Vm - nr.Prms.RestPot) / nr.Prms.R
	nr.Vm += dt * (leak + in - nr.Adapt) / nr.Prms.C

	if nr.Vm >= nr.Prms.Thr {
		nr.Vm = nr.Prms.ResetPot
		nr.Adapt += nr.Prms.Adapt.Strength
		nr.RecordSpike(nr.Tm)
	} else {
		nr.Fired = false
	}

	if nr.Prms.Noise.Type == VmNoise {
		nr.Vm += nr.GenNoise() * math32.Sqrt(dt)
	}
}

func (nr *AdaptiveLIFNeuron) Reset() {
	nr.InitBase()
}

// State returns the base prefix only -- the adaptation current is
// already element 3 of the prefix.
func (nr *AdaptiveLIFNeuron) State() []float32 {
	return nr.baseState()
}

func (nr *AdaptiveLIFNeuron) SetState(st []float32) error {
	return nr.setBaseState(st)
}
