// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spike

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/emer/emergent/erand"
)

// GRUNeuron is a gated-recurrent cell: a hidden vector updated through
// reset / update / candidate gates, reduced to the scalar potential as
// the mean of the hidden state.  Recent firing modulates per-unit gate
// gains and a homeostatic multiplier on the effective threshold:
// sustained activity raises the threshold, quiescence lowers it.
type GRUNeuron struct {
	NeuronBase
	InSize int `desc:"input vector size"`

	// gate weight matrices, [hidden][in] or [hidden][hidden],
	// Xavier-initialized at construction.  not part of State.
	Wir, Whr [][]float32 `view:"-"`
	Wiz, Whz [][]float32 `view:"-"`
	Win, Whn [][]float32 `view:"-"`
	Bir, Bhr []float32   `view:"-"`
	Biz, Bhz []float32   `view:"-"`
	Bin, Bhn []float32   `view:"-"`

	Hidden  []float32 `desc:"hidden state vector"`
	RstGate []float32 `view:"-" desc:"reset gate values from the last update"`
	UpdGate []float32 `view:"-" desc:"update gate values from the last update"`
	Cand    []float32 `view:"-" desc:"candidate state from the last update"`
	InVec   []float32 `view:"-" desc:"pending input vector -- scalar AddInput goes into element 0"`

	SpkMod   []float32 `desc:"per-unit gate gain, clamped to [0.5, 2]"`
	SpkHistG []float32 `view:"-" desc:"per-unit spike history trace driving SpkMod"`
	ThrMod   float32   `desc:"homeostatic multiplier on the effective threshold, clamped to [0.7, 1.5]"`
}

// gruInSize is the default input vector size.
const gruInSize = 64

func (nr *GRUNeuron) buildGRU() {
	hid := nr.Prms.Gate.Hidden
	nr.InSize = gruInSize
	nr.Wir = xavierMat(hid, nr.InSize)
	nr.Whr = xavierMat(hid, hid)
	nr.Wiz = xavierMat(hid, nr.InSize)
	nr.Whz = xavierMat(hid, hid)
	nr.Win = xavierMat(hid, nr.InSize)
	nr.Whn = xavierMat(hid, hid)
	nr.Bir = make([]float32, hid)
	nr.Bhr = make([]float32, hid)
	nr.Biz = constVec(hid, 1) // update gate bias at 1 keeps early memory open
	nr.Bhz = constVec(hid, 1)
	nr.Bin = make([]float32, hid)
	nr.Bhn = make([]float32, hid)

	nr.Hidden = make([]float32, hid)
	nr.RstGate = make([]float32, hid)
	nr.UpdGate = make([]float32, hid)
	nr.Cand = make([]float32, hid)
	nr.InVec = make([]float32, nr.InSize)
	nr.SpkMod = constVec(hid, 1)
	nr.SpkHistG = make([]float32, hid)
	nr.ThrMod = 1
}

// xavierMat returns a rows x cols matrix drawn from a Gaussian with
// Xavier / Glorot scaling for the given fan-in + fan-out.
func xavierMat(rows, cols int) [][]float32 {
	rp := erand.RndParams{Dist: erand.Gaussian, Mean: 0, Var: float64(math32.Sqrt(2 / float32(rows+cols)))}
	m := make([][]float32, rows)
	for i := range m {
		r := make([]float32, cols)
		for j := range r {
			r[j] = float32(rp.Gen(-1))
		}
		m[i] = r
	}
	return m
}

func constVec(n int, val float32) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = val
	}
	return v
}

// AddInput broadcasts the scalar into the first input channel.
func (nr *GRUNeuron) AddInput(cur float32) {
	nr.NeuronBase.AddInput(cur)
	if len(nr.InVec) > 0 {
		nr.InVec[0] += cur
	}
}

// SetSequenceInput replaces the pending input vector, resizing the
// input weight matrices if the width changed.
func (nr *GRUNeuron) SetSequenceInput(in []float32) {
	if len(in) != nr.InSize {
		nr.InSize = len(in)
		hid := nr.Prms.Gate.Hidden
		nr.Wir = xavierMat(hid, nr.InSize)
		nr.Wiz = xavierMat(hid, nr.InSize)
		nr.Win = xavierMat(hid, nr.InSize)
		nr.InVec = make([]float32, nr.InSize)
	}
	copy(nr.InVec, in)
}

func (nr *GRUNeuron) Update(dt float32) {
	nr.TakeInput()
	nr.Tm += dt

	nr.updateSpikeGating(dt)

	hid := nr.Prms.Gate.Hidden
	for i := 0; i < hid; i++ {
		r := nr.Bir[i] + nr.Bhr[i] + dotRow(nr.Wir[i], nr.InVec) + dotRow(nr.Whr[i], nr.Hidden)
		nr.RstGate[i] = sigmoid(r)
	}
	for i := 0; i < hid; i++ {
		z := nr.Biz[i] + nr.Bhz[i] + dotRow(nr.Wiz[i], nr.InVec) + dotRow(nr.Whz[i], nr.Hidden)
		nr.UpdGate[i] = sigmoid(z)
	}
	for i := 0; i < hid; i++ {
		hc := nr.Bhn[i] + dotRow(nr.Whn[i], nr.Hidden)
		n := nr.Bin[i] + dotRow(nr.Win[i], nr.InVec) + nr.RstGate[i]*hc
		nr.Cand[i] = math32.Tanh(n)
	}
	sum := float32(0)
	for i := 0; i < hid; i++ {
		nr.Hidden[i] = (1-nr.UpdGate[i])*nr.Cand[i] + nr.UpdGate[i]*nr.Hidden[i]
		nr.RstGate[i] *= nr.SpkMod[i]
		nr.UpdGate[i] *= nr.SpkMod[i]
		nr.Cand[i] *= nr.SpkMod[i]
		sum += nr.Hidden[i]
	}
	nr.Vm = sum / float32(hid)

	effThr := nr.Prms.Thr * nr.ThrMod
	if nr.Vm > effThr {
		nr.RecordSpike(nr.Tm)
		nr.Vm = nr.Prms.ResetPot
		for i := range nr.SpkHistG {
			nr.SpkHistG[i] = 1
		}
	} else {
		nr.Fired = false
		for i := range nr.SpkHistG {
			nr.SpkHistG[i] *= nr.Prms.Gate.SpkDecay
		}
	}

	for i := range nr.InVec {
		nr.InVec[i] = 0
	}
}

// updateSpikeGating adjusts per-unit gate gains from the spike history
// traces, and the homeostatic threshold multiplier from their mean.
func (nr *GRUNeuron) updateSpikeGating(dt float32) {
	sum := float32(0)
	for i := range nr.SpkMod {
		if nr.SpkHistG[i] > 0.1 {
			nr.SpkMod[i] = math32.Min(2, nr.SpkMod[i]+0.1*dt)
		} else {
			nr.SpkMod[i] = math32.Max(0.5, nr.SpkMod[i]-0.05*dt)
		}
		sum += nr.SpkHistG[i]
	}
	avg := sum / float32(len(nr.SpkHistG))
	if avg > 0.5 {
		nr.ThrMod = math32.Min(1.5, nr.ThrMod+0.1*dt)
	} else {
		nr.ThrMod = math32.Max(0.7, nr.ThrMod-0.05*dt)
	}
}

func (nr *GRUNeuron) Reset() {
	nr.InitBase()
	nr.Vm = 0
	zeroVec(nr.Hidden)
	zeroVec(nr.RstGate)
	zeroVec(nr.UpdGate)
	zeroVec(nr.Cand)
	zeroVec(nr.InVec)
	zeroVec(nr.SpkHistG)
	for i := range nr.SpkMod {
		nr.SpkMod[i] = 1
	}
	nr.ThrMod = 1
}

func zeroVec(v []float32) {
	for i := range v {
		v[i] = 0
	}
}

func dotRow(row, v []float32) float32 {
	n := len(row)
	if len(v) < n {
		n = len(v)
	}
	s := float32(0)
	for j := 0; j < n; j++ {
		s += row[j] * v[j]
	}
	return s
}

func sigmoid(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}

// State is the base prefix, hidden vector, per-unit gate gains, and
// the threshold multiplier.  Gate weight matrices are construction-time
// parameters, not state.
func (nr *GRUNeuron) State() []float32 {
	st := nr.baseState()
	st = append(st, nr.Hidden...)
	st = append(st, nr.SpkMod...)
	st = append(st, nr.ThrMod)
	return st
}

func (nr *GRUNeuron) SetState(st []float32) error {
	if err := nr.setBaseState(st); err != nil {
		return err
	}
	hid := nr.Prms.Gate.Hidden
	want := NBaseState + 2*hid + 1
	if len(st) < want {
		return fmt.Errorf("spike.GRUNeuron.SetState: need %d values, got %d", want, len(st))
	}
	off := NBaseState
	copy(nr.Hidden, st[off:off+hid])
	off += hid
	copy(nr.SpkMod, st[off:off+hid])
	off += hid
	nr.ThrMod = st[off]
	return nil
}
