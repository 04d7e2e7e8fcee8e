// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spike

import (
	"fmt"

	"github.com/chewxy/math32"
)

// AttnNeuron computes scaled dot-product attention between a query
// derived from the latest input and a rolling context of past input
// vectors, and feeds the attention-weighted mean through the shared
// threshold / spike logic.
type AttnNeuron struct {
	NeuronBase
	Query  []float32   `desc:"query vector, length Attn.KeyDim, filled from the input buffer"`
	Ctx    [][]float32 `view:"-" desc:"rolling context of past input vectors, bounded by Attn.CtxMax"`
	AttnWts []float32  `view:"-" desc:"softmax attention weights from the last update"`
	InBuf  []float32   `view:"-" desc:"input values accumulated since the last update"`
	Out    float32     `desc:"attention-weighted mean output from the last update"`
}

// AddInput appends the scalar to the input buffer in addition to the
// base accumulation.
func (nr *AttnNeuron) AddInput(cur float32) {
	nr.NeuronBase.AddInput(cur)
	nr.InBuf = append(nr.InBuf, cur)
}

// SetContext replaces the context with the given vectors, keeping at
// most Attn.CtxMax of the most recent ones.
func (nr *AttnNeuron) SetContext(ctx [][]float32) {
	mx := nr.Prms.Attn.CtxMax
	if mx > 0 && len(ctx) > mx {
		ctx = ctx[len(ctx)-mx:]
	}
	nr.Ctx = ctx
}

// AddContext appends one vector to the rolling context.
func (nr *AttnNeuron) AddContext(vec []float32) {
	nr.Ctx = append(nr.Ctx, vec)
	mx := nr.Prms.Attn.CtxMax
	if mx > 0 && len(nr.Ctx) > mx {
		nr.Ctx = nr.Ctx[len(nr.Ctx)-mx:]
	}
}

func (nr *AttnNeuron) Update(dt float32) {
	nr.TakeInput()
	nr.Tm += dt
	nr.Fired = false

	if len(nr.Ctx) == 0 || len(nr.InBuf) == 0 {
		nr.Vm = 0
		nr.InBuf = nr.InBuf[:0]
		return
	}

	kd := nr.Prms.Attn.KeyDim()
	if len(nr.Query) != kd {
		nr.Query = make([]float32, kd)
	}
	for i := 0; i < kd; i++ {
		nr.Query[i] = nr.InBuf[i%len(nr.InBuf)]
	}

	att := nr.computeAttention(nr.Query, nr.Ctx, nr.Ctx)
	nr.Out = 0
	if len(att) > 0 {
		sum := float32(0)
		for _, v := range att {
			sum += v
		}
		nr.Out = sum / float32(len(att))
	}
	nr.Vm = nr.Out

	if nr.Vm > nr.Prms.Attn.Scale {
		nr.RecordSpike(nr.Tm)
	}

	if nr.Prms.Noise.Type == VmNoise {
		nr.Vm += nr.GenNoise() * math32.Sqrt(dt)
	}
	nr.InBuf = nr.InBuf[:0]
}

// computeAttention returns the softmax(q . k) weighted sum of values.
func (nr *AttnNeuron) computeAttention(query []float32, keys, vals [][]float32) []float32 {
	if len(keys) == 0 || len(vals) == 0 {
		return nil
	}
	scores := make([]float32, len(keys))
	for i, k := range keys {
		scores[i] = dotRow(query, k)
	}
	nr.AttnWts = softmax(scores)

	res := make([]float32, len(vals[0]))
	for i := range vals {
		if i >= len(nr.AttnWts) {
			break
		}
		for j := range vals[i] {
			if j >= len(res) {
				break
			}
			res[j] += nr.AttnWts[i] * vals[i][j]
		}
	}
	return res
}

// softmax is numerically stabilized by subtracting the max.
func softmax(x []float32) []float32 {
	if len(x) == 0 {
		return nil
	}
	mx := x[0]
	for _, v := range x[1:] {
		if v > mx {
			mx = v
		}
	}
	res := make([]float32, len(x))
	sum := float32(0)
	for i, v := range x {
		res[i] = math32.Exp(v - mx)
		sum += res[i]
	}
	if sum > 0 {
		for i := range res {
			res[i] /= sum
		}
	}
	return res
}

func (nr *AttnNeuron) Reset() {
	nr.InitBase()
	nr.Vm = 0
	nr.Query = make([]float32, nr.Prms.Attn.KeyDim())
	nr.Ctx = nil
	nr.AttnWts = nil
	nr.InBuf = nil
	nr.Out = 0
}

// State is the base prefix, the output scalar, then the query vector.
func (nr *AttnNeuron) State() []float32 {
	st := append(nr.baseState(), nr.Out)
	return append(st, nr.Query...)
}

func (nr *AttnNeuron) SetState(st []float32) error {
	if err := nr.setBaseState(st); err != nil {
		return err
	}
	kd := nr.Prms.Attn.KeyDim()
	want := NBaseState + 1 + kd
	if len(st) < want {
		return fmt.Errorf("spike.AttnNeuron.SetState: need %d values, got %d", want, len(st))
	}
	nr.Out = st[NBaseState]
	nr.Vm = st[0]
	if len(nr.Query) != kd {
		nr.Query = make([]float32, kd)
	}
	copy(nr.Query, st[NBaseState+1:NBaseState+1+kd])
	return nil
}
