package analysis

import (
	"math"
	"math/bits"
	"math/cmplx"
)

// FFT is an iterative radix-2 transform. len(data) must be a power of two;
// use PadPow2 first otherwise.
func FFT(data []float64) []complex128 {
	n := len(data)
	out := make([]complex128, n)
	if n == 0 {
		return out
	}
	if n&(n-1) != 0 {
		panic("analysis: FFT length must be a power of two")
	}

	shift := 64 - bits.Len(uint(n-1))
	for i, v := range data {
		j := 0
		if n > 1 {
			j = int(bits.Reverse64(uint64(i)) >> shift)
		}
		out[j] = complex(v, 0)
	}

	for size := 2; size <= n; size <<= 1 {
		step := cmplx.Exp(complex(0, -2*math.Pi/float64(size)))
		for start := 0; start < n; start += size {
			w := complex(1, 0)
			for k := 0; k < size/2; k++ {
				a := out[start+k]
				b := w * out[start+k+size/2]
				out[start+k] = a + b
				out[start+k+size/2] = a - b
				w *= step
			}
		}
	}
	return out
}

// PowerSpectrum returns the magnitude of the first half of the transform.
func PowerSpectrum(data []float64) []float64 {
	spec := FFT(data)
	ps := make([]float64, len(spec)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// PadPow2 zero-pads data to the next power of two.
func PadPow2(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n <<= 1
	}
	padded := make([]float64, n)
	copy(padded, data)
	return padded
}
