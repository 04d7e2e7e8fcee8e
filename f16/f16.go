// Copyright (c) 2025, The NSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package f16 implements the IEEE 754 binary16 (half precision) encoding
used for compressed connection weight storage.  The conversion truncates
the mantissa on encode (no rounding), so encode / decode round-trips are
bit-reproducible: decoding an encoded value and re-encoding it always
yields the identical 16 bit pattern.
*/
package f16

import "math"

// Float16 is an IEEE 754 binary16 value stored in a uint16.
type Float16 uint16

const (
	signMask16 = 0x8000
	expMask16  = 0x7C00
	mantMask16 = 0x03FF
)

// FromFloat32 encodes a float32 into half precision, truncating the
// mantissa.  Exponent underflow produces a signed zero, overflow
// produces infinity, and NaN is preserved as a quiet NaN.
func FromFloat32(f float32) Float16 {
	bits := math.Float32bits(f)
	sign := (bits & 0x80000000) >> 16
	exp := int32((bits & 0x7F800000) >> 23)
	mant := (bits & 0x007FFFFF) >> 13

	switch {
	case exp == 0: // zero or float32 denormal: both too small for half
		return Float16(sign)
	case exp == 0xFF: // infinity or NaN
		if mant != 0 {
			return Float16(sign | expMask16 | 1)
		}
		return Float16(sign | expMask16)
	}
	exp = exp - 127 + 15
	if exp <= 0 {
		return Float16(sign) // underflow to zero
	}
	if exp >= 0x1F {
		return Float16(sign | expMask16) // overflow to infinity
	}
	return Float16(sign | uint32(exp)<<10 | mant)
}

// Float32 decodes a half precision value back to float32.
func (h Float16) Float32() float32 {
	sign := uint32(h&signMask16) << 16
	exp := uint32(h&expMask16) >> 10
	mant := uint32(h & mantMask16)

	switch {
	case exp == 0:
		if mant == 0 {
			return math.Float32frombits(sign)
		}
		// denormal: normalize into float32 range
		exp = 127 - 14
		for mant&0x400 == 0 {
			mant <<= 1
			exp--
		}
		mant &= mantMask16
	case exp == 0x1F:
		exp = 0xFF
	default:
		exp += 127 - 15
	}
	return math.Float32frombits(sign | exp<<23 | mant<<13)
}

// FromFloat64 encodes a float64 by first narrowing to float32.
func FromFloat64(f float64) Float16 {
	return FromFloat32(float32(f))
}
