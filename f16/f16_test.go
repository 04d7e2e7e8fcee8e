// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package f16

import (
	"math"
	"testing"
)

func TestKnownEncodings(t *testing.T) {
	cases := []struct {
		in  float32
		out Float16
	}{
		{0, 0x0000},
		{1, 0x3C00},
		{-1, 0xBC00},
		{0.5, 0x3800},
		{2, 0x4000},
		{65504, 0x7BFF}, // largest finite half
	}
	for _, c := range cases {
		if got := FromFloat32(c.in); got != c.out {
			t.Errorf("FromFloat32(%v): got %#04x, want %#04x", c.in, got, c.out)
		}
	}
}

func TestTruncation(t *testing.T) {
	// encode truncates the mantissa: 0.1 maps to the next half value
	// at or below it, not the nearest
	h := FromFloat32(0.1)
	if h != 0x2E66 {
		t.Errorf("FromFloat32(0.1): got %#04x, want 0x2e66", h)
	}
	if got := h.Float32(); got != 0.0999755859375 {
		t.Errorf("decode: got %v, want 0.0999755859375", got)
	}
}

func TestOverflowUnderflow(t *testing.T) {
	if got := FromFloat32(1e5); got != 0x7C00 {
		t.Errorf("overflow: got %#04x, want 0x7c00 (+inf)", got)
	}
	if got := FromFloat32(-1e5); got != 0xFC00 {
		t.Errorf("overflow: got %#04x, want 0xfc00 (-inf)", got)
	}
	if got := FromFloat32(1e-8); got != 0x0000 {
		t.Errorf("underflow: got %#04x, want +0", got)
	}
	if got := FromFloat32(float32(-1e-8)); got != 0x8000 {
		t.Errorf("underflow: got %#04x, want -0", got)
	}
	if got := Float16(0x7C00).Float32(); !math.IsInf(float64(got), 1) {
		t.Errorf("+inf decode: got %v", got)
	}
	if got := Float16(0xFC00).Float32(); !math.IsInf(float64(got), -1) {
		t.Errorf("-inf decode: got %v", got)
	}
}

func TestNaN(t *testing.T) {
	h := FromFloat32(float32(math.NaN()))
	if h&0x7C00 != 0x7C00 || h&0x03FF == 0 {
		t.Errorf("NaN encode: got %#04x", h)
	}
	got := h.Float32()
	if got == got {
		t.Errorf("NaN decode: got %v, want NaN", got)
	}
}

func TestDenormalDecode(t *testing.T) {
	// smallest positive half denormal is 2^-24
	if got := Float16(0x0001).Float32(); got != 1.0/16777216 {
		t.Errorf("min denormal: got %v, want 2^-24", got)
	}
	// largest denormal is 1023 * 2^-24
	if got := Float16(0x03FF).Float32(); got != 1023.0/16777216 {
		t.Errorf("max denormal: got %v, want 1023 * 2^-24", got)
	}
}

func TestRoundTripStable(t *testing.T) {
	// re-encoding a decoded value always reproduces the identical bits
	for i := 0; i <= 2000; i++ {
		x := (float32(i) - 1000) * 0.017
		h := FromFloat32(x)
		h2 := FromFloat32(h.Float32())
		if h2 != h {
			t.Errorf("round trip unstable for %v: %#04x -> %#04x", x, h, h2)
		}
	}
	if h := FromFloat64(0.1); h != FromFloat32(0.1) {
		t.Errorf("FromFloat64 disagrees with FromFloat32")
	}
}
