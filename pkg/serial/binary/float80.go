package binary

import (
	"math"
	"math/bits"
)

const (
	float80Size = 16
	float80Bias = 16383
	float64Bias = 1023
)

// putFloat80 stores f in b using the x87 extended layout: a 64-bit
// significand with an explicit integer bit, then 15 exponent bits and the
// sign, then zero padding up to 16 bytes. Every float64 converts exactly.
func putFloat80(b []byte, f float64) {
	raw := math.Float64bits(f)
	sign := uint16(raw>>63) << 15
	exp := int(raw>>52) & 0x7FF
	frac := raw & (1<<52 - 1)

	var (
		mant uint64
		e    int
	)
	switch {
	case exp == 0x7FF:
		e = 0x7FFF
		mant = 1<<63 | frac<<11
	case exp == 0 && frac == 0:
	case exp == 0:
		m := frac << 11
		k := bits.LeadingZeros64(m)
		mant = m << k
		e = float80Bias - (float64Bias - 1) - k
	default:
		e = exp - float64Bias + float80Bias
		mant = 1<<63 | frac<<11
	}

	nativeEndian.PutUint64(b[0:8], mant)
	nativeEndian.PutUint16(b[8:10], sign|uint16(e))
	clear(b[10:float80Size])
}

// float80 decodes the layout written by putFloat80. Values outside the
// float64 range round toward zero in the significand and saturate to an
// infinity or a zero in the exponent.
func float80(b []byte) float64 {
	mant := nativeEndian.Uint64(b[0:8])
	se := nativeEndian.Uint16(b[8:10])
	neg := se&0x8000 != 0
	e := int(se & 0x7FFF)

	var sign uint64
	if neg {
		sign = 1 << 63
	}
	switch {
	case e == 0x7FFF:
		if mant<<1 == 0 {
			return math.Inf(signOf(neg))
		}
		return math.NaN()
	case mant == 0:
		return math.Float64frombits(sign)
	}

	if e == 0 {
		e = 1
	}
	k := bits.LeadingZeros64(mant)
	mant <<= k
	x := e - float80Bias - k

	switch {
	case x > float64Bias:
		return math.Inf(signOf(neg))
	case x >= 1-float64Bias:
		return math.Float64frombits(sign | uint64(x+float64Bias)<<52 | (mant<<1)>>12)
	case x < -float64Bias-52:
		return math.Float64frombits(sign)
	default:
		shift := 11 + (1 - float64Bias - x)
		return math.Float64frombits(sign | mant>>shift)
	}
}

func signOf(neg bool) int {
	if neg {
		return -1
	}
	return 1
}
