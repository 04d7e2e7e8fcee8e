// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spike

import (
	"testing"
)

func plastPair() (src, dst *NeuronBase) {
	src = &NeuronBase{}
	src.Prms.Defaults()
	dst = &NeuronBase{}
	dst.Prms.Defaults()
	return
}

func TestSTDPOrdering(t *testing.T) {
	pp := PlastParams{}
	pp.Defaults()
	pp.Rule = STDP

	// source spike just before destination spike: potentiation
	src, dst := plastPair()
	src.RecordSpike(10.0)
	dst.RecordSpike(10.05)
	dwt := pp.WtChange(src, dst, 10.05, 0.1)
	if dwt <= 0 {
		t.Errorf("pre-before-post: got %v, want > 0", dwt)
	}

	// destination spike just before source spike: depression
	src, dst = plastPair()
	dst.RecordSpike(10.0)
	src.RecordSpike(10.05)
	dwt = pp.WtChange(src, dst, 10.05, 0.1)
	if dwt >= 0 {
		t.Errorf("post-before-pre: got %v, want < 0", dwt)
	}

	// pair outside the window: no change
	src, dst = plastPair()
	src.RecordSpike(10.0)
	dst.RecordSpike(20.0)
	if dwt = pp.WtChange(src, dst, 20, 0.1); dwt != 0 {
		t.Errorf("outside window: got %v, want 0", dwt)
	}

	// one silent endpoint: no change
	src, dst = plastPair()
	src.RecordSpike(10.0)
	if dwt = pp.WtChange(src, dst, 10, 0.1); dwt != 0 {
		t.Errorf("silent post: got %v, want 0", dwt)
	}
}

func TestSTDPClamp(t *testing.T) {
	pp := PlastParams{}
	pp.Defaults()
	pp.Rule = STDP
	pp.Lr = 100 // force the raw change past the bounds

	src, dst := plastPair()
	src.RecordSpike(10.0)
	dst.RecordSpike(10.05)
	wt := pp.Apply(0.9, src, dst, 10.05, 0.1)
	if wt != 1 {
		t.Errorf("upper clamp: got %v, want 1", wt)
	}

	src, dst = plastPair()
	dst.RecordSpike(10.0)
	src.RecordSpike(10.05)
	wt = pp.Apply(0.1, src, dst, 10.05, 0.1)
	if wt != 0 {
		t.Errorf("lower clamp: got %v, want 0", wt)
	}
}

func TestHebbianRules(t *testing.T) {
	pp := PlastParams{}
	pp.Defaults()

	src, dst := plastPair()
	src.RecordSpike(100)
	dst.RecordSpike(100)

	pp.Rule = Hebbian
	dwt := pp.WtChange(src, dst, 100, 0.1)
	CmprFloats([]float32{dwt}, []float32{0.1}, "hebbian coactive", t)

	pp.Rule = AntiHebbian
	dwt = pp.WtChange(src, dst, 100, 0.1)
	CmprFloats([]float32{dwt}, []float32{-0.1}, "anti-hebbian coactive", t)

	// inactive source: nothing happens under either rule
	src2, _ := plastPair()
	pp.Rule = Hebbian
	if dwt = pp.WtChange(src2, dst, 100, 0.1); dwt != 0 {
		t.Errorf("hebbian with silent pre: got %v, want 0", dwt)
	}
}

func TestBCMThreshold(t *testing.T) {
	pp := PlastParams{}
	pp.Defaults()
	pp.Rule = BCM

	// both active: post activity (1) equals the default threshold (1),
	// so the change is zero at the fixed point
	src, dst := plastPair()
	src.RecordSpike(100)
	dst.RecordSpike(100)
	if dwt := pp.WtChange(src, dst, 100, 0.1); dwt != 0 {
		t.Errorf("at threshold: got %v, want 0", dwt)
	}

	// lower the threshold: coactivity potentiates
	pp.ActThr = 0.5
	dwt := pp.WtChange(src, dst, 100, 0.1)
	if dwt <= 0 {
		t.Errorf("above threshold: got %v, want > 0", dwt)
	}

	// raise it: coactivity depresses
	pp.ActThr = 2
	dwt = pp.WtChange(src, dst, 100, 0.1)
	if dwt >= 0 {
		t.Errorf("below threshold: got %v, want < 0", dwt)
	}
}

func TestNoRule(t *testing.T) {
	cn := NewConnection("a", "b", 0.5)
	src, dst := plastPair()
	src.RecordSpike(10)
	dst.RecordSpike(10.01)
	cn.ApplyPlasticity(src, dst, 10.01, 0.1)
	if cn.Weight() != 0.5 {
		t.Errorf("NoRule changed weight: %v", cn.Weight())
	}
}
