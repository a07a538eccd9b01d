package stats

import (
	"fmt"
	"math"

	"github.com/voicelab/pitchsense/algorithms/spectral"
)

// Method represents different computational approaches
type Method int

const (
	// Auto picks a method based on signal size
	Auto Method = iota

	// Direct time-domain calculation
	TimeDomain

	// FFT-based frequency domain (faster for large signals)
	FrequencyDomain
)

// defaultEpsilon avoids division by zero when normalizing over silent
// (all-zero) overlap windows.
const defaultEpsilon = 1e-10

// AutoCorrelation computes the normalized autocorrelation of a signal over a
// window of lags.
//
// References:
// - Rabiner, L.R. (1977). "On the use of autocorrelation analysis for pitch detection"
// - Oppenheim, A.V., Schafer, R.W. (2010). "Discrete-Time Signal Processing"
//
// Each lag is normalized by the geometric mean of the local energies of the
// two overlapping segments, bounding values to roughly [-1, 1] and removing
// the bias toward shorter lags that raw autocorrelation carries.
type AutoCorrelation struct {
	method  Method
	epsilon float64

	// Signals longer than this are routed to the FFT path under Auto
	fftThreshold int

	fft *spectral.FFT
}

// NewAutoCorrelation creates an autocorrelation calculator with default settings
func NewAutoCorrelation() *AutoCorrelation {
	return &AutoCorrelation{
		method:       Auto,
		epsilon:      defaultEpsilon,
		fftThreshold: 1024,
		fft:          spectral.NewFFT(),
	}
}

// NewAutoCorrelationWithParams creates an autocorrelation calculator with a
// fixed computational method
func NewAutoCorrelationWithParams(method Method, fftThreshold int) *AutoCorrelation {
	return &AutoCorrelation{
		method:       method,
		epsilon:      defaultEpsilon,
		fftThreshold: fftThreshold,
		fft:          spectral.NewFFT(),
	}
}

// Compute calculates the normalized autocorrelation of signal for every lag
// in [minLag, maxLag). The returned slice holds one value per lag, indexed so
// that curve[i] corresponds to lag minLag+i.
func (ac *AutoCorrelation) Compute(signal []float64, minLag, maxLag int) ([]float64, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal provided")
	}
	if minLag < 1 || minLag >= maxLag {
		return nil, fmt.Errorf("invalid lag window [%d, %d)", minLag, maxLag)
	}
	if maxLag > len(signal) {
		return nil, fmt.Errorf("lag window [%d, %d) exceeds signal length %d", minLag, maxLag, len(signal))
	}

	method := ac.method
	if method == Auto {
		if len(signal) > ac.fftThreshold {
			method = FrequencyDomain
		} else {
			method = TimeDomain
		}
	}

	switch method {
	case FrequencyDomain:
		return ac.computeFFT(signal, minLag, maxLag), nil
	default:
		return ac.computeTimeDomain(signal, minLag, maxLag), nil
	}
}

// computeTimeDomain evaluates every lag directly over its overlap window
func (ac *AutoCorrelation) computeTimeDomain(signal []float64, minLag, maxLag int) []float64 {
	curve := make([]float64, maxLag-minLag)

	for lag := minLag; lag < maxLag; lag++ {
		overlap := len(signal) - lag

		var corr, energy1, energy2 float64
		for i := 0; i < overlap; i++ {
			a := signal[i]
			b := signal[i+lag]
			corr += a * b
			energy1 += a * a
			energy2 += b * b
		}

		curve[lag-minLag] = corr / math.Sqrt(energy1*energy2+ac.epsilon)
	}

	return curve
}

// computeFFT evaluates the raw autocorrelation via the Wiener-Khinchin
// theorem and recovers the per-lag overlap energies from prefix sums, so the
// result matches the time-domain path to within float error.
func (ac *AutoCorrelation) computeFFT(signal []float64, minLag, maxLag int) []float64 {
	n := len(signal)

	// Zero-pad to at least 2n to keep the circular correlation linear
	fftSize := nextPowerOf2(2 * n)
	padded := make([]float64, fftSize)
	copy(padded, signal)

	spectrum := ac.fft.Compute(padded)

	power := make([]complex128, fftSize)
	for i, c := range spectrum {
		re := real(c)
		im := imag(c)
		power[i] = complex(re*re+im*im, 0)
	}

	rawCorr := ac.fft.ComputeInverseReal(power)

	// prefix[i] = sum of squares of signal[0:i]
	prefix := make([]float64, n+1)
	for i, v := range signal {
		prefix[i+1] = prefix[i] + v*v
	}

	curve := make([]float64, maxLag-minLag)
	for lag := minLag; lag < maxLag; lag++ {
		energy1 := prefix[n-lag]
		energy2 := prefix[n] - prefix[lag]
		curve[lag-minLag] = rawCorr[lag] / math.Sqrt(energy1*energy2+ac.epsilon)
	}

	return curve
}

// nextPowerOf2 returns the next power of 2 greater than or equal to n
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	power := 1
	for power < n {
		power *= 2
	}

	return power
}
