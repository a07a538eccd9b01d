package pitch

import (
	"fmt"

	"github.com/voicelab/pitchsense/logging"
)

// Cascade tries an ordered list of detection configurations against the same
// frame until one yields a voiced estimate. The usual arrangement is a narrow
// speaking-range config followed by a wider fallback; each analyzer stays
// single-shot and stateless.
type Cascade struct {
	analyzers []*Analyzer
	logger    logging.Logger
}

// NewCascade creates a cascade from configurations tried in argument order
func NewCascade(configs ...Config) (*Cascade, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("cascade requires at least one config")
	}

	analyzers := make([]*Analyzer, 0, len(configs))
	for i, cfg := range configs {
		a, err := NewAnalyzer(cfg)
		if err != nil {
			return nil, fmt.Errorf("cascade config %d: %w", i, err)
		}
		analyzers = append(analyzers, a)
	}

	return &Cascade{
		analyzers: analyzers,
		logger: logging.WithFields(logging.Fields{
			"component": "pitch_cascade",
		}),
	}, nil
}

// DefaultVoiceCascade builds the standard two-stage voice cascade: the narrow
// speaking range first, the wide range as fallback.
func DefaultVoiceCascade(sampleRate int, sensitivity Sensitivity) (*Cascade, error) {
	narrow := Config{
		SampleRate:  sampleRate,
		MinFreq:     DefaultMinFreq,
		MaxFreq:     DefaultMaxFreq,
		Sensitivity: sensitivity,
	}
	wide := Config{
		SampleRate:  sampleRate,
		MinFreq:     WideMinFreq,
		MaxFreq:     WideMaxFreq,
		Sensitivity: sensitivity,
	}
	return NewCascade(narrow, wide)
}

// Estimate runs the frame through each analyzer in order and returns the
// first voiced estimate, or an unvoiced estimate when every candidate misses.
func (c *Cascade) Estimate(frame []float64) (Estimate, error) {
	for i, a := range c.analyzers {
		est, err := a.Estimate(frame)
		if err != nil {
			return Estimate{}, err
		}
		if est.Voiced {
			if i > 0 {
				c.logger.Debug("fallback range matched", logging.Fields{
					"candidate": i,
					"frequency": est.Frequency,
					"min_freq":  a.cfg.MinFreq,
					"max_freq":  a.cfg.MaxFreq,
				})
			}
			return est, nil
		}
	}

	return Estimate{}, nil
}
