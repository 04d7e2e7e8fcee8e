// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spike

import (
	"fmt"

	"github.com/goki/mat32"
)

// homeoBufMax is the number of recent potentials retained for the
// homeostatic mean-activity estimate.
const homeoBufMax = 100

// AdaptiveNeuron is the homeostatic leak cell: a multiplicative
// membrane leak, a spike-triggered adaptation current, and a firing
// threshold that drifts to hold the mean potential near half the
// baseline threshold.
type AdaptiveNeuron struct {
	NeuronBase
	CurThr     float32   `desc:"current effective firing threshold, drifting around Prms.Thr"`
	SinceSpk   float32   `desc:"time since the last spike"`
	RecentOut  []float32 `view:"-" desc:"recent potentials for the mean-activity estimate, bounded to homeoBufMax"`
}

func (nr *AdaptiveNeuron) Update(dt float32) {
	in := nr.TakeInput()
	nr.Tm += dt
	nr.Fired = false
	nr.SinceSpk += dt

	hp := &nr.Prms.Homeo
	nr.Vm = nr.Vm*(1-hp.Leak*dt) + in
	nr.Vm -= nr.Adapt

	nr.RecentOut = append(nr.RecentOut, nr.Vm)
	if len(nr.RecentOut) > homeoBufMax {
		nr.RecentOut = nr.RecentOut[1:]
	}

	if nr.Vm > nr.CurThr {
		nr.RecordSpike(nr.Tm)
		nr.SinceSpk = 0
		nr.Vm = 0
	}

	nr.updateAdaptation(dt)
	nr.updateThreshold()

	if nr.Prms.Noise.Type == VmNoise {
		nr.Vm += nr.GenNoise() * mat32.Sqrt(dt)
	}
}

// updateAdaptation increments the adaptation current on a spike and
// decays it at a fixed 10% per time unit, never below zero.
func (nr *AdaptiveNeuron) updateAdaptation(dt float32) {
	if nr.Fired {
		nr.Adapt += nr.Prms.Homeo.Rate
	}
	nr.Adapt *= 1 - 0.1*dt
	nr.Adapt = mat32.Max(0, nr.Adapt)
}

// updateThreshold drifts the effective threshold toward holding the
// mean recent potential at half the baseline threshold, within
// [0.1, 10] x baseline.
func (nr *AdaptiveNeuron) updateThreshold() {
	if len(nr.RecentOut) < 10 {
		return
	}
	sum := float32(0)
	for _, v := range nr.RecentOut {
		sum += v
	}
	mean := sum / float32(len(nr.RecentOut))
	base := nr.Prms.Thr
	adj := -(mean - 0.5*base) * 0.01
	nr.CurThr = base + adj
	// Thr is negative, so 0.1 x baseline is the upper bound
	nr.CurThr = mat32.Min(base*0.1, nr.CurThr)
	nr.CurThr = mat32.Max(base*10, nr.CurThr)
}

func (nr *AdaptiveNeuron) Reset() {
	nr.InitBase()
	nr.Vm = 0
	nr.CurThr = nr.Prms.Thr
	nr.SinceSpk = 0
	nr.RecentOut = nil
}

// State is the base prefix (which carries the adaptation current),
// the current threshold, and the time since the last spike.
func (nr *AdaptiveNeuron) State() []float32 {
	return append(nr.baseState(), nr.CurThr, nr.SinceSpk)
}

func (nr *AdaptiveNeuron) SetState(st []float32) error {
	if err := nr.setBaseState(st); err != nil {
		return err
	}
	if len(st) < NBaseState+2 {
		return fmt.Errorf("spike.AdaptiveNeuron.SetState: need %d values, got %d", NBaseState+2, len(st))
	}
	nr.CurThr = st[NBaseState]
	nr.SinceSpk = st[NBaseState+1]
	return nil
}
