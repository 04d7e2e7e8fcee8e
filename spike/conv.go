// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spike

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/emer/emergent/erand"
	"github.com/emer/etable/etensor"
)

// ConvNeuron holds a 3-D input feature map and runs convolution,
// pooling and activation over it each cycle, thresholding the mean of
// the resulting feature map.  Per-filter spike history drives a gain on
// the output map and a homeostatic multiplier on the threshold.
type ConvNeuron struct {
	NeuronBase
	InMap    *etensor.Float32 `view:"-" desc:"input feature map, [chans, height, width]"`
	Kernels  *etensor.Float32 `view:"-" desc:"convolution kernels, [filters, chans, kernel, kernel], He-initialized"`
	Biases   []float32        `view:"-" desc:"per-filter biases"`
	ConvOut  *etensor.Float32 `view:"-" desc:"convolution output, [filters, outH, outW]"`
	Final    *etensor.Float32 `view:"-" desc:"post pooling + activation output, [filters, poolH, poolW]"`
	Temporal *etensor.Float32 `view:"-" desc:"temporal integration buffer, decayed each cycle"`
	SpkMod   *etensor.Float32 `view:"-" desc:"per-cell output gain, clamped to [0.5, 2]"`

	FiltSpkHist []float32 `desc:"per-filter spike history trace"`
	ThrMod      float32   `desc:"homeostatic multiplier on the effective threshold, clamped to [0.7, 1.5]"`
}

func (nr *ConvNeuron) buildConv() {
	cp := &nr.Prms.Conv
	ow, oh := cp.OutWidth(), cp.OutHeight()
	pw, ph := nr.poolDims()
	nr.InMap = etensor.NewFloat32([]int{cp.Chans, cp.Height, cp.Width}, nil, nil)
	nr.Kernels = etensor.NewFloat32([]int{cp.Filters, cp.Chans, cp.Kernel, cp.Kernel}, nil, nil)
	nr.initKernels()
	nr.Biases = make([]float32, cp.Filters)
	nr.ConvOut = etensor.NewFloat32([]int{cp.Filters, oh, ow}, nil, nil)
	nr.Final = etensor.NewFloat32([]int{cp.Filters, ph, pw}, nil, nil)
	nr.Temporal = etensor.NewFloat32([]int{cp.Filters, ph, pw}, nil, nil)
	nr.SpkMod = etensor.NewFloat32([]int{cp.Filters, ph, pw}, nil, nil)
	for i := range nr.SpkMod.Values {
		nr.SpkMod.Values[i] = 1
	}
	nr.FiltSpkHist = make([]float32, cp.Filters)
	nr.ThrMod = 1
}

// poolDims returns the final output dims after pooling.
func (nr *ConvNeuron) poolDims() (w, h int) {
	cp := &nr.Prms.Conv
	if cp.Pooling == NoPool {
		return cp.OutWidth(), cp.OutHeight()
	}
	return cp.OutWidth() / cp.Pool, cp.OutHeight() / cp.Pool
}

// initKernels draws kernel weights from a Gaussian with He scaling for
// the kernel fan-in.
func (nr *ConvNeuron) initKernels() {
	cp := &nr.Prms.Conv
	sd := math32.Sqrt(2 / float32(cp.Kernel*cp.Kernel*cp.Chans))
	rp := erand.RndParams{Dist: erand.Gaussian, Mean: 0, Var: float64(sd)}
	for i := range nr.Kernels.Values {
		nr.Kernels.Values[i] = float32(rp.Gen(-1))
	}
}

// AddInput broadcasts the scalar into the first cell of the input map.
func (nr *ConvNeuron) AddInput(cur float32) {
	nr.NeuronBase.AddInput(cur)
	if len(nr.InMap.Values) > 0 {
		nr.InMap.Values[0] += cur
	}
}

// SetInputFeatureMap copies the given [chans, height, width] tensor as
// the input map.  The geometry must match the configured Conv params.
func (nr *ConvNeuron) SetInputFeatureMap(in *etensor.Float32) error {
	if !in.Shape.IsEqual(&nr.InMap.Shape) {
		return fmt.Errorf("spike.ConvNeuron.SetInputFeatureMap: shape %v != configured %v", in.Shape.Shp, nr.InMap.Shape.Shp)
	}
	copy(nr.InMap.Values, in.Values)
	return nil
}

func (nr *ConvNeuron) Update(dt float32) {
	nr.TakeInput()
	nr.Tm += dt

	for i := range nr.Temporal.Values {
		nr.Temporal.Values[i] *= nr.Prms.Conv.TempDecay
	}
	nr.updateSpikeGain(dt)

	nr.convolve()
	nr.poolAndActivate()

	total := float32(0)
	for i, v := range nr.Final.Values {
		v *= nr.SpkMod.Values[i]
		nr.Final.Values[i] = v
		nr.Temporal.Values[i] += v
		total += v
	}
	if n := len(nr.Final.Values); n > 0 {
		nr.Vm = total / float32(n)
	}

	effThr := nr.Prms.Thr * nr.ThrMod
	if nr.Vm > effThr {
		nr.RecordSpike(nr.Tm)
		nr.Vm = nr.Prms.ResetPot
		for i := range nr.FiltSpkHist {
			nr.FiltSpkHist[i] = 1
		}
	} else {
		nr.Fired = false
		for i := range nr.FiltSpkHist {
			nr.FiltSpkHist[i] *= nr.Prms.Conv.SpkDecay
		}
	}
}

// updateSpikeGain adjusts the per-cell output gains from each filter's
// spike history, and the threshold multiplier from their mean.
func (nr *ConvNeuron) updateSpikeGain(dt float32) {
	cp := &nr.Prms.Conv
	pw, ph := nr.poolDims()
	cells := ph * pw
	sum := float32(0)
	for f := 0; f < cp.Filters; f++ {
		act := nr.FiltSpkHist[f]
		sum += act
		for i := f * cells; i < (f+1)*cells; i++ {
			if act > 0.1 {
				nr.SpkMod.Values[i] = math32.Min(2, nr.SpkMod.Values[i]+0.1*dt)
			} else {
				nr.SpkMod.Values[i] = math32.Max(0.5, nr.SpkMod.Values[i]-0.05*dt)
			}
		}
	}
	avg := sum / float32(cp.Filters)
	if avg > 0.5 {
		nr.ThrMod = math32.Min(1.5, nr.ThrMod+0.1*dt)
	} else {
		nr.ThrMod = math32.Max(0.7, nr.ThrMod-0.05*dt)
	}
}

func (nr *ConvNeuron) convolve() {
	cp := &nr.Prms.Conv
	ow, oh := cp.OutWidth(), cp.OutHeight()
	for f := 0; f < cp.Filters; f++ {
		for y := 0; y < oh; y++ {
			for x := 0; x < ow; x++ {
				s := nr.Biases[f]
				for c := 0; c < cp.Chans; c++ {
					for ky := 0; ky < cp.Kernel; ky++ {
						iy := y*cp.Stride - cp.Pad + ky
						if iy < 0 || iy >= cp.Height {
							continue
						}
						for kx := 0; kx < cp.Kernel; kx++ {
							ix := x*cp.Stride - cp.Pad + kx
							if ix < 0 || ix >= cp.Width {
								continue
							}
							in := nr.InMap.Values[(c*cp.Height+iy)*cp.Width+ix]
							kw := nr.Kernels.Values[((f*cp.Chans+c)*cp.Kernel+ky)*cp.Kernel+kx]
							s += in * kw
						}
					}
				}
				nr.ConvOut.Values[(f*oh+y)*ow+x] = s
			}
		}
	}
}

func (nr *ConvNeuron) poolAndActivate() {
	cp := &nr.Prms.Conv
	ow, oh := cp.OutWidth(), cp.OutHeight()
	pw, ph := nr.poolDims()
	for f := 0; f < cp.Filters; f++ {
		for y := 0; y < ph; y++ {
			for x := 0; x < pw; x++ {
				var v float32
				switch cp.Pooling {
				case NoPool:
					v = nr.ConvOut.Values[(f*oh+y)*ow+x]
				case MaxPool:
					v = math32.Inf(-1)
					for py := 0; py < cp.Pool; py++ {
						cy := y*cp.Pool + py
						if cy >= oh {
							continue
						}
						for px := 0; px < cp.Pool; px++ {
							cx := x*cp.Pool + px
							if cx >= ow {
								continue
							}
							cv := nr.ConvOut.Values[(f*oh+cy)*ow+cx]
							if cv > v {
								v = cv
							}
						}
					}
				case AvgPool:
					sum := float32(0)
					n := 0
					for py := 0; py < cp.Pool; py++ {
						cy := y*cp.Pool + py
						if cy >= oh {
							continue
						}
						for px := 0; px < cp.Pool; px++ {
							cx := x*cp.Pool + px
							if cx >= ow {
								continue
							}
							sum += nr.ConvOut.Values[(f*oh+cy)*ow+cx]
							n++
						}
					}
					if n > 0 {
						v = sum / float32(n)
					}
				}
				nr.Final.Values[(f*ph+y)*pw+x] = actFun(cp.Act, v)
			}
		}
	}
}

func actFun(af ActFunc, v float32) float32 {
	switch af {
	case Relu:
		return math32.Max(0, v)
	case Sigmoid:
		return sigmoid(v)
	case Tanh:
		return math32.Tanh(v)
	}
	return v
}

func (nr *ConvNeuron) Reset() {
	nr.InitBase()
	nr.Vm = 0
	for i := range nr.InMap.Values {
		nr.InMap.Values[i] = 0
	}
	zeroVec(nr.ConvOut.Values)
	zeroVec(nr.Final.Values)
	zeroVec(nr.Temporal.Values)
	for i := range nr.SpkMod.Values {
		nr.SpkMod.Values[i] = 1
	}
	zeroVec(nr.FiltSpkHist)
	nr.ThrMod = 1
}

// State is the base prefix, per-filter spike history, the threshold
// multiplier, then the flattened final output map.
func (nr *ConvNeuron) State() []float32 {
	st := nr.baseState()
	st = append(st, nr.FiltSpkHist...)
	st = append(st, nr.ThrMod)
	st = append(st, nr.Final.Values...)
	return st
}

func (nr *ConvNeuron) SetState(st []float32) error {
	if err := nr.setBaseState(st); err != nil {
		return err
	}
	nf := len(nr.FiltSpkHist)
	want := NBaseState + nf + 1 + len(nr.Final.Values)
	if len(st) < want {
		return fmt.Errorf("spike.ConvNeuron.SetState: need %d values, got %d", want, len(st))
	}
	off := NBaseState
	copy(nr.FiltSpkHist, st[off:off+nf])
	off += nf
	nr.ThrMod = st[off]
	off++
	copy(nr.Final.Values, st[off:off+len(nr.Final.Values)])
	return nil
}
