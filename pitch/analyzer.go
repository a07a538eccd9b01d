package pitch

import (
	"fmt"
	"math"

	"github.com/voicelab/pitchsense/algorithms/common"
	"github.com/voicelab/pitchsense/algorithms/stats"
	"github.com/voicelab/pitchsense/logging"
)

// Estimate is a binary pitch decision for one frame: either a fundamental
// frequency in Hz with Voiced set, or the zero value for "no pitch".
// Zero-value absence is the normal outcome for silence and consonants, not a
// failure.
type Estimate struct {
	Frequency float64 `json:"frequency"`
	Voiced    bool    `json:"voiced"`
}

// Analyzer extracts a single fundamental-frequency estimate from one frame of
// mono samples in [-1, 1]. It is deterministic and keeps no state across
// frames beyond reusable scratch buffers, so identical input always produces
// an identical estimate.
//
// The pipeline, each stage a hard gate:
//
//  1. Mean (DC offset) removal
//  2. RMS amplitude gate
//  3. Center-clipping at a fraction of the frame RMS
//  4. Normalized autocorrelation over the candidate period window
//  5. Strict local-maximum peak extraction
//  6. Octave-safe selection: the shortest-lag peak within the acceptance
//     band of the strongest peak wins, so a harmonic multiple of the true
//     period cannot shadow the fundamental
//  7. Correlation-strength gate
//  8. Parabolic sub-sample refinement of the selected lag
//
// References:
// - Rabiner, L.R. (1977). "On the use of autocorrelation analysis for pitch detection"
// - Sondhi, M.M. (1968). "New methods of pitch extraction"
// - Boersma, P. (1993). "Accurate short-term analysis of the fundamental frequency"
type Analyzer struct {
	cfg        Config
	profile    Profile
	acceptance float64

	autocorr *stats.AutoCorrelation
	logger   logging.Logger

	// Scratch buffer reused across frames. Frames are only read, never
	// retained; callers keep ownership of their buffers.
	work []float64
}

// NewAnalyzer creates an analyzer for the given configuration
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid detection config: %w", err)
	}

	a := &Analyzer{
		cfg:        cfg,
		profile:    cfg.profile(),
		acceptance: cfg.peakAcceptance(),
		autocorr:   stats.NewAutoCorrelation(),
		logger: logging.WithFields(logging.Fields{
			"component":   "pitch_analyzer",
			"sensitivity": cfg.Sensitivity.String(),
		}),
	}

	a.logger.Debug("analyzer configured", logging.Fields{
		"sample_rate": cfg.SampleRate,
		"min_freq":    cfg.MinFreq,
		"max_freq":    cfg.MaxFreq,
	})

	return a, nil
}

// Config returns the analyzer's configuration
func (a *Analyzer) Config() Config {
	return a.cfg
}

// Estimate analyzes one frame and returns a pitch decision. The frame must
// not be mutated concurrently with the call. An empty frame is a caller
// contract violation and returns an error; every signal-dependent rejection
// returns an unvoiced estimate instead.
func (a *Analyzer) Estimate(frame []float64) (Estimate, error) {
	if len(frame) == 0 {
		return Estimate{}, fmt.Errorf("empty frame")
	}

	// Microphone chains often carry a small DC bias; removing it keeps the
	// bias out of both the RMS gate and the correlation
	work := a.scratch(len(frame))
	mean := common.Mean(frame)
	for i, s := range frame {
		work[i] = s - mean
	}

	rms := common.RMS(work)
	if rms < a.profile.RMSThreshold {
		return Estimate{}, nil
	}

	clipped := centerClip(work, rms*a.profile.ClipPercent)

	minLag := int(float64(a.cfg.SampleRate) / a.cfg.MaxFreq)
	maxLag := int(math.Ceil(float64(a.cfg.SampleRate) / a.cfg.MinFreq))

	// Degenerate max frequency (at or above the sample rate) floors the lag
	// window at 1 instead of crashing; such lags never form local maxima.
	if minLag < 1 {
		minLag = 1
	}
	// Lags past half the frame have too few overlapping samples to trust
	if half := len(frame) / 2; maxLag > half {
		maxLag = half
	}
	if minLag >= maxLag {
		return Estimate{}, nil
	}

	curve, err := a.autocorr.Compute(clipped, minLag, maxLag)
	if err != nil {
		return Estimate{}, err
	}

	peakIdx := selectPeak(curve, a.acceptance)
	if peakIdx < 0 {
		return Estimate{}, nil
	}
	if curve[peakIdx] < a.profile.CorrThreshold {
		return Estimate{}, nil
	}

	lag := float64(minLag) + common.ParabolicPeak(curve, peakIdx)

	return Estimate{
		Frequency: float64(a.cfg.SampleRate) / lag,
		Voiced:    true,
	}, nil
}

// scratch returns the reusable working buffer resized to n
func (a *Analyzer) scratch(n int) []float64 {
	if cap(a.work) < n {
		a.work = make([]float64, n)
	}
	return a.work[:n]
}

// centerClip zeroes samples whose magnitude falls below threshold, in place.
// Suppressing the low-amplitude noise floor leaves the dominant periodic
// waveform to drive the autocorrelation.
func centerClip(work []float64, threshold float64) []float64 {
	for i, s := range work {
		if math.Abs(s) < threshold {
			work[i] = 0
		}
	}
	return work
}

// selectPeak scans the correlation curve for strict local maxima and returns
// the index of the first (shortest-lag) peak whose value falls within the
// acceptance band of the strongest peak, or -1 when the curve has no peaks.
//
// A voiced signal produces near-equal peaks at the true period and at its
// integer multiples; taking the global maximum outright risks reporting half
// the true frequency. Preferring the earliest peak that is nearly as strong
// as the best one recovers the fundamental in that case.
func selectPeak(curve []float64, acceptance float64) int {
	best := math.Inf(-1)
	found := false

	for i := 1; i < len(curve)-1; i++ {
		if curve[i] > curve[i-1] && curve[i] > curve[i+1] {
			found = true
			if curve[i] > best {
				best = curve[i]
			}
		}
	}
	if !found {
		return -1
	}

	floor := best * acceptance
	for i := 1; i < len(curve)-1; i++ {
		if curve[i] > curve[i-1] && curve[i] > curve[i+1] && curve[i] >= floor {
			return i
		}
	}

	return -1
}
