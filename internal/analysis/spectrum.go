package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// PowerSpectrum returns the magnitude of the first half of the Hann-windowed
// DFT of data. Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	buf := make([]float64, len(data))
	copy(buf, data)

	mean := 0.0
	for _, v := range buf {
		mean += v
	}
	mean /= float64(len(buf))
	for i := range buf {
		buf[i] -= mean
	}
	window.Apply(buf, window.Hann)

	spectrum := fft.FFTReal(buf)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod is the period, in steps, of the strongest non-DC component
// of data. ok is false when the signal has no such component.
func DominantPeriod(data []float64) (period float64, ok bool) {
	ps := PowerSpectrum(data)
	best, bestBin := 0.0, 0
	for k := 1; k < len(ps); k++ {
		if ps[k] > best {
			best, bestBin = ps[k], k
		}
	}
	if bestBin == 0 {
		return 0, false
	}
	return float64(len(data)) / float64(bestBin), true
}
