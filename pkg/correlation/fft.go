package correlation

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// fftND performs an in-place N-dimensional complex FFT by transforming every
// line along each axis in turn. data is laid out with axis 0 varying fastest.
// The inverse transform is not normalized.
func fftND(data []complex128, size []int, inverse bool) {
	stride := 1
	for _, n := range size {
		if n > 1 {
			fftAxis(data, n, stride, inverse)
		}
		stride *= n
	}
}

// fftAxis transforms every line of length n whose elements are stride apart
func fftAxis(data []complex128, n, stride int, inverse bool) {
	fft := fourier.NewCmplxFFT(n)

	line := make([]complex128, n)
	out := make([]complex128, n)
	for pos := range data {
		// a line starts wherever the coordinate along this axis is zero
		if (pos/stride)%n != 0 {
			continue
		}

		for i := 0; i < n; i++ {
			line[i] = data[pos+i*stride]
		}

		if inverse {
			fft.Sequence(out, line)
		} else {
			fft.Coefficients(out, line)
		}

		for i := 0; i < n; i++ {
			data[pos+i*stride] = out[i]
		}
	}
}
