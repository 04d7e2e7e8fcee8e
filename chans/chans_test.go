// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chans

import (
	"testing"

	"github.com/chewxy/math32"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = float32(1.0e-6)

func TestSingularityGuards(t *testing.T) {
	// the rate functions have removable singularities where the
	// denominator vanishes -- the guards return the limit values
	if got := AlphaM(-40); got != 1 {
		t.Errorf("AlphaM(-40): got %v, want 1", got)
	}
	if got := AlphaN(-55); got != 0.1 {
		t.Errorf("AlphaN(-55): got %v, want 0.1", got)
	}
	// and the functions are continuous through the guard points
	if dif := math32.Abs(AlphaM(-40.001) - 1); dif > 1e-3 {
		t.Errorf("AlphaM near -40 discontinuous: dif %v", dif)
	}
	if dif := math32.Abs(AlphaN(-55.001) - 0.1); dif > 1e-3 {
		t.Errorf("AlphaN near -55 discontinuous: dif %v", dif)
	}
}

func TestRestingRates(t *testing.T) {
	// classical values at the -65 mV resting potential
	vm := float32(-65)
	got := []float32{AlphaM(vm), BetaM(vm), AlphaH(vm), BetaH(vm), AlphaN(vm), BetaN(vm)}
	trg := []float32{0.22356392, 4, 0.07, 0.047425874, 0.058197670, 0.125}
	for i := range got {
		dif := math32.Abs(got[i] - trg[i])
		if dif > difTol {
			t.Errorf("rate %v: got %v, trg %v, dif %v", i, got[i], trg[i], dif)
		}
	}
}

func TestGatesEquilibrate(t *testing.T) {
	gs := Gates{}
	gs.Defaults()
	// held at rest, the gates settle near their steady-state values and
	// stay inside (0,1)
	for i := 0; i < 10000; i++ {
		gs.Update(-65, 0.01)
	}
	for _, g := range []float32{gs.M, gs.H, gs.N} {
		if g <= 0 || g >= 1 {
			t.Errorf("gate out of (0,1): %v", g)
		}
	}
	// steady state m = alpha / (alpha + beta)
	minf := AlphaM(-65) / (AlphaM(-65) + BetaM(-65))
	if dif := math32.Abs(gs.M - minf); dif > 1e-3 {
		t.Errorf("m steady state: got %v, want %v", gs.M, minf)
	}
}
