// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spike

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/nsim/spike/chans"
)

// hhRestVm is the standard Hodgkin-Huxley resting potential (mV).
const hhRestVm = -65

// HodgkinHuxleyNeuron is the four-variable conductance-based model:
// membrane voltage plus sodium activation (m), sodium inactivation (h)
// and potassium activation (n) gates, each governed by the standard
// voltage-dependent rate functions in the chans package.  A spike is an
// upward zero crossing of the voltage, not a hard threshold.
type HodgkinHuxleyNeuron struct {
	NeuronBase
	Gates  chans.Gates `desc:"m, h, n gating variables"`
	LastVm float32     `desc:"voltage at the previous step, for zero-crossing detection"`
}

func (nr *HodgkinHuxleyNeuron) Update(dt float32) {
	in := nr.TakeInput()
	nr.Tm += dt
	nr.LastVm = nr.Vm
	nr.Fired = false

	hp := &nr.Prms.HH
	m3 := nr.Gates.M * nr.Gates.M * nr.Gates.M
	n2 := nr.Gates.N * nr.Gates.N
	iNa := hp.Gbar.Na * m3 * nr.Gates.H * (nr.Vm - hp.Erev.Na)
	iK := hp.Gbar.K * n2 * n2 * (nr.Vm - hp.Erev.K)
	iL := hp.Gbar.L * (nr.Vm - hp.Erev.L)

	dVm := (in - iNa - iK - iL) / hp.Cm
	nr.Gates.Update(nr.Vm, dt)
	nr.Vm += dVm * dt

	if nr.Vm > 0 && nr.LastVm <= 0 {
		nr.RecordSpike(nr.Tm)
	}

	if nr.Prms.Noise.Type == VmNoise {
		nr.Vm += nr.GenNoise() * math32.Sqrt(dt)
	}
}

func (nr *HodgkinHuxleyNeuron) Reset() {
	nr.InitBase()
	nr.Vm = hhRestVm
	nr.LastVm = hhRestVm
	nr.Gates.Defaults()
}

func (nr *HodgkinHuxleyNeuron) State() []float32 {
	return append(nr.baseState(), nr.Gates.M, nr.Gates.H, nr.Gates.N)
}

func (nr *HodgkinHuxleyNeuron) SetState(st []float32) error {
	if err := nr.setBaseState(st); err != nil {
		return err
	}
	if len(st) < NBaseState+3 {
		return fmt.Errorf("spike.HodgkinHuxleyNeuron.SetState: need %d values, got %d", NBaseState+3, len(st))
	}
	nr.Gates.M = st[NBaseState]
	nr.Gates.H = st[NBaseState+1]
	nr.Gates.N = st[NBaseState+2]
	nr.LastVm = nr.Vm
	return nil
}
