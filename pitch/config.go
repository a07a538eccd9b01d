package pitch

import (
	"fmt"
)

// Default analysis ranges for voiced speech. The narrow range covers typical
// speaking pitch; the wide range adds headroom for low male voices and raised
// female voices and is used as the cascade fallback.
const (
	DefaultMinFreq = 85.0
	DefaultMaxFreq = 400.0

	WideMinFreq = 70.0
	WideMaxFreq = 500.0

	// DefaultPeakAcceptance is the fraction of the strongest autocorrelation
	// peak that a shorter-lag peak must reach to be preferred over it.
	// Empirically chosen; see Config.PeakAcceptance to override.
	DefaultPeakAcceptance = 0.85
)

// Sensitivity selects a detection profile
type Sensitivity int

const (
	// SensitivityStandard suits line-level and desktop microphone input
	SensitivityStandard Sensitivity = iota

	// SensitivityHeightened relaxes the gates for quieter input chains,
	// typically built-in microphones on portable devices
	SensitivityHeightened
)

func (s Sensitivity) String() string {
	switch s {
	case SensitivityStandard:
		return "standard"
	case SensitivityHeightened:
		return "heightened"
	default:
		return "unknown"
	}
}

// Profile holds the tunable gate values behind a Sensitivity selector
type Profile struct {
	// RMSThreshold is the minimum frame RMS accepted as potentially voiced
	RMSThreshold float64 `json:"rms_threshold"`

	// ClipPercent scales the frame RMS into the center-clipping threshold
	ClipPercent float64 `json:"clip_percent"`

	// CorrThreshold is the minimum normalized autocorrelation of the
	// selected peak for the frame to count as periodic
	CorrThreshold float64 `json:"corr_threshold"`
}

// Profile returns the gate values for the sensitivity selector
func (s Sensitivity) Profile() Profile {
	switch s {
	case SensitivityHeightened:
		return Profile{
			RMSThreshold:  0.006,
			ClipPercent:   0.22,
			CorrThreshold: 0.75,
		}
	default:
		return Profile{
			RMSThreshold:  0.012,
			ClipPercent:   0.30,
			CorrThreshold: 0.80,
		}
	}
}

// Config holds the immutable per-analyzer detection parameters. Every call is
// fully parameterized by its analyzer's Config; there is no hidden global
// state.
type Config struct {
	// SampleRate of the input frames in Hz
	SampleRate int `json:"sample_rate"`

	// MinFreq and MaxFreq bound the search range in Hz
	MinFreq float64 `json:"min_freq"`
	MaxFreq float64 `json:"max_freq"`

	// Sensitivity selects the gate profile
	Sensitivity Sensitivity `json:"sensitivity"`

	// Profile, when non-nil, overrides the Sensitivity table
	Profile *Profile `json:"profile,omitempty"`

	// PeakAcceptance overrides DefaultPeakAcceptance when non-zero
	PeakAcceptance float64 `json:"peak_acceptance,omitempty"`
}

// DefaultConfig returns a configuration for the narrow voice range at
// standard sensitivity
func DefaultConfig(sampleRate int) Config {
	return Config{
		SampleRate:  sampleRate,
		MinFreq:     DefaultMinFreq,
		MaxFreq:     DefaultMaxFreq,
		Sensitivity: SensitivityStandard,
	}
}

// Validate reports contract violations. These indicate a programming error in
// the caller rather than a property of the audio, so they surface as errors
// instead of silently absent estimates.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.MinFreq <= 0 {
		return fmt.Errorf("min frequency must be positive, got %g", c.MinFreq)
	}
	if c.MinFreq >= c.MaxFreq {
		return fmt.Errorf("min frequency (%g) must be below max frequency (%g)", c.MinFreq, c.MaxFreq)
	}
	if c.PeakAcceptance < 0 || c.PeakAcceptance > 1 {
		return fmt.Errorf("peak acceptance must be in [0, 1], got %g", c.PeakAcceptance)
	}
	return nil
}

// profile resolves the active gate values
func (c Config) profile() Profile {
	if c.Profile != nil {
		return *c.Profile
	}
	return c.Sensitivity.Profile()
}

// peakAcceptance resolves the active acceptance band
func (c Config) peakAcceptance() float64 {
	if c.PeakAcceptance > 0 {
		return c.PeakAcceptance
	}
	return DefaultPeakAcceptance
}
