// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spike

import (
	"fmt"

	"github.com/chewxy/math32"
)

// IzhikevichNeuron is the two-variable quadratic model of Izhikevich
// (2003).  The potential is integrated in two half-steps of 0.5*dt for
// numerical stability, matching the original published method.
type IzhikevichNeuron struct {
	NeuronBase
	U float32 `desc:"membrane recovery variable"`
}

func (nr *IzhikevichNeuron) Update(dt float32) {
	in := nr.TakeInput()
	nr.Tm += dt

	hdt := 0.5 * dt
	nr.Vm += hdt * (0.04*nr.Vm*nr.Vm + 5*nr.Vm + 140 - nr.U + in)
	nr.Vm += hdt * (0.04*nr.Vm*nr.Vm + 5*nr.Vm + 140 - nr.U + in)
	nr.U += dt * nr.Prms.Izhi.A * (nr.Prms.Izhi.B*nr.Vm - nr.U)

	if nr.Vm >= VPeak {
		nr.Vm = nr.Prms.Izhi.C
		nr.U += nr.Prms.Izhi.D
		nr.RecordSpike(nr.Tm)
	} else {
		nr.Fired = false
	}

	if nr.Prms.Noise.Type == VmNoise {
		nr.Vm += nr.GenNoise() * math32.Sqrt(dt)
	}
}

func (nr *IzhikevichNeuron) Reset() {
	nr.InitBase()
	nr.Vm = nr.Prms.Izhi.C
	nr.U = nr.Prms.Izhi.B * nr.Vm
}

func (nr *IzhikevichNeuron) State() []float32 {
	return append(nr.baseState(), nr.U)
}

func (nr *IzhikevichNeuron) SetState(st []float32) error {
	if err := nr.setBaseState(st); err != nil {
		return err
	}
	if len(st) < NBaseState+1 {
		return fmt.Errorf("spike.IzhikevichNeuron.SetState: need %d values, got %d", NBaseState+1, len(st))
	}
	nr.U = st[NBaseState]
	return nil
}
