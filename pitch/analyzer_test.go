package pitch

import (
	"math"
	"testing"
)

func makeSine(freq, sampleRate, amp float64, n int) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
	}
	return samples
}

func mustAnalyzer(t *testing.T, cfg Config) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(cfg)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	return a
}

func TestEstimateSilence(t *testing.T) {
	a := mustAnalyzer(t, DefaultConfig(48000))

	est, err := a.Estimate(make([]float64, 2048))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.Voiced {
		t.Fatalf("expected unvoiced for all-zero frame, got %.2f Hz", est.Frequency)
	}
}

func TestEstimateBelowRMSGate(t *testing.T) {
	a := mustAnalyzer(t, DefaultConfig(48000))

	// RMS ~0.0035, below the standard 0.012 gate
	frame := makeSine(220, 48000, 0.005, 2048)
	est, err := a.Estimate(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.Voiced {
		t.Fatalf("expected RMS gate to reject quiet frame, got %.2f Hz", est.Frequency)
	}
}

func TestEstimateSine(t *testing.T) {
	a := mustAnalyzer(t, DefaultConfig(48000))

	target := 220.0
	frame := makeSine(target, 48000, 0.8, 4096)
	est, err := a.Estimate(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !est.Voiced {
		t.Fatalf("expected voiced estimate for clean sine")
	}
	if math.Abs(est.Frequency-target)/target > 0.01 {
		t.Fatalf("expected within 1%% of %.1f Hz, got %.2f Hz", target, est.Frequency)
	}
}

func TestEstimateVoiceScenario(t *testing.T) {
	// sampleRate=48000, range 85-400 Hz, 140 Hz sine at 0.3 RMS
	a := mustAnalyzer(t, DefaultConfig(48000))

	target := 140.0
	amp := 0.3 * math.Sqrt2
	frame := makeSine(target, 48000, amp, 4096)

	est, err := a.Estimate(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !est.Voiced {
		t.Fatalf("expected voiced estimate")
	}
	if math.Abs(est.Frequency-target) > 2.0 {
		t.Fatalf("expected %.0f Hz +/- 2 Hz, got %.2f Hz", target, est.Frequency)
	}
}

func TestEstimateOctaveSafety(t *testing.T) {
	// Fundamental plus a strong second harmonic. The autocorrelation has
	// near-equal peaks at the true period and at twice that lag; the
	// acceptance band must keep the shorter lag from losing to the multiple.
	cfg := Config{
		SampleRate:  48000,
		MinFreq:     60,
		MaxFreq:     400,
		Sensitivity: SensitivityStandard,
	}
	a := mustAnalyzer(t, cfg)

	target := 140.0
	sampleRate := 48000.0
	frame := make([]float64, 4096)
	for i := range frame {
		ti := float64(i) / sampleRate
		frame[i] = 0.5*math.Sin(2*math.Pi*target*ti) + 0.375*math.Sin(2*math.Pi*2*target*ti)
	}

	est, err := a.Estimate(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !est.Voiced {
		t.Fatalf("expected voiced estimate")
	}
	if math.Abs(est.Frequency-target)/target > 0.01 {
		t.Fatalf("expected fundamental %.0f Hz, got %.2f Hz (octave error?)", target, est.Frequency)
	}
}

func TestEstimateIdempotent(t *testing.T) {
	a := mustAnalyzer(t, DefaultConfig(48000))
	frame := makeSine(180, 48000, 0.5, 2048)

	first, err := a.Estimate(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := a.Estimate(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical results, got %+v then %+v", first, second)
	}
}

func TestEstimateHeightenedSensitivity(t *testing.T) {
	// RMS ~0.007 sits between the heightened (0.006) and standard (0.012) gates
	frame := makeSine(200, 48000, 0.01, 4096)

	standard := mustAnalyzer(t, DefaultConfig(48000))
	est, err := standard.Estimate(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.Voiced {
		t.Fatalf("expected standard profile to reject quiet frame")
	}

	cfg := DefaultConfig(48000)
	cfg.Sensitivity = SensitivityHeightened
	heightened := mustAnalyzer(t, cfg)
	est, err = heightened.Estimate(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !est.Voiced {
		t.Fatalf("expected heightened profile to accept quiet frame")
	}
}

func TestEstimateFrameAtTwiceMaxPeriod(t *testing.T) {
	// maxPeriod = ceil(48000/85) = 565; a frame of exactly 2*565 samples
	// must analyze without out-of-bounds access
	a := mustAnalyzer(t, DefaultConfig(48000))

	target := 140.0
	frame := makeSine(target, 48000, 0.5, 1130)
	est, err := a.Estimate(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !est.Voiced {
		t.Fatalf("expected voiced estimate")
	}
	if math.Abs(est.Frequency-target) > 2.0 {
		t.Fatalf("expected %.0f Hz +/- 2 Hz, got %.2f Hz", target, est.Frequency)
	}
}

func TestEstimateDegenerateMaxFrequency(t *testing.T) {
	// maxFrequency above the sample rate makes minPeriod zero; the lag
	// window is clamped instead of crashing
	cfg := Config{
		SampleRate:  8000,
		MinFreq:     100,
		MaxFreq:     16000,
		Sensitivity: SensitivityStandard,
	}
	a := mustAnalyzer(t, cfg)

	frame := makeSine(200, 8000, 0.5, 1024)
	if _, err := a.Estimate(frame); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEstimateEmptyFrame(t *testing.T) {
	a := mustAnalyzer(t, DefaultConfig(48000))
	if _, err := a.Estimate(nil); err == nil {
		t.Fatalf("expected error for empty frame")
	}
}

func TestNewAnalyzerRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"zero sample rate", Config{SampleRate: 0, MinFreq: 85, MaxFreq: 400}},
		{"negative min freq", Config{SampleRate: 48000, MinFreq: -10, MaxFreq: 400}},
		{"min above max", Config{SampleRate: 48000, MinFreq: 400, MaxFreq: 85}},
		{"acceptance above one", Config{SampleRate: 48000, MinFreq: 85, MaxFreq: 400, PeakAcceptance: 1.5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewAnalyzer(tc.cfg); err == nil {
				t.Fatalf("expected config error")
			}
		})
	}
}
