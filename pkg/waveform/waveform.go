// Package waveform implements the waveform representation (spec §6): two
// equal-length time/data arrays plus a label, a processed summary (peak,
// RMS, peak-to-peak) and a harmonic decomposition via DFT.
package waveform

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Label is the closed waveform-shape tag (spec §6).
type Label string

const (
	Triangular                           Label = "TRIANGULAR"
	Rectangular                          Label = "RECTANGULAR"
	RectangularWithDeadtime              Label = "RECTANGULAR_WITH_DEADTIME"
	FlybackPrimary                       Label = "FLYBACK_PRIMARY"
	FlybackSecondary                     Label = "FLYBACK_SECONDARY"
	FlybackSecondaryWithDeadtime         Label = "FLYBACK_SECONDARY_WITH_DEADTIME"
	SecondaryRectangular                 Label = "SECONDARY_RECTANGULAR"
	SecondaryRectangularWithDeadtime     Label = "SECONDARY_RECTANGULAR_WITH_DEADTIME"
	Sinusoidal                           Label = "SINUSOIDAL"
	Custom                               Label = "CUSTOM"
)

// Waveform is the two-array representation (spec §6). Time and Data must be
// equal length and Time strictly increasing, spanning exactly one period.
type Waveform struct {
	Time  []float64
	Data  []float64
	Label Label
}

// Validate checks the equal-length/monotonic-time invariant.
func (w Waveform) Validate() error {
	if len(w.Time) != len(w.Data) {
		return fmt.Errorf("waveform: time and data length mismatch (%d vs %d)", len(w.Time), len(w.Data))
	}
	if len(w.Time) < 2 {
		return fmt.Errorf("waveform: need at least two samples")
	}
	for i := 1; i < len(w.Time); i++ {
		if w.Time[i] <= w.Time[i-1] {
			return fmt.Errorf("waveform: time must be strictly increasing")
		}
	}
	return nil
}

// Summary is the processed summary of a waveform (spec §3's "processed
// summary" field of a signal).
type Summary struct {
	Peak       float64
	PeakToPeak float64
	RMS        float64
	Average    float64
	Frequency  float64
}

// Period returns the span the samples cover, i.e. 1/frequency when the
// array holds exactly one period.
func (w Waveform) Period() float64 {
	n := len(w.Time)
	if n < 2 {
		return 0
	}
	return w.Time[n-1] - w.Time[0]
}

// Summarize computes Summary over one period (spec §4's flux-density and
// excitation waveform consumers all need peak/RMS).
func (w Waveform) Summarize() (Summary, error) {
	if err := w.Validate(); err != nil {
		return Summary{}, err
	}
	period := w.Period()
	if period <= 0 {
		return Summary{}, fmt.Errorf("waveform: non-positive period")
	}

	min, max := w.Data[0], w.Data[0]
	var sumSquares, sum float64
	for i, v := range w.Data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		// Trapezoidal weight: interior samples count once, half-weight at
		// the open ends of the one-period window.
		weight := 1.0
		if i == 0 || i == len(w.Data)-1 {
			weight = 0.5
		}
		sumSquares += weight * v * v
		sum += weight * v
	}
	n := float64(len(w.Data) - 1)
	rms := math.Sqrt(sumSquares / n)
	avg := sum / n

	return Summary{
		Peak:       math.Max(math.Abs(min), math.Abs(max)),
		PeakToPeak: max - min,
		RMS:        rms,
		Average:    avg,
		Frequency:  1 / period,
	}, nil
}

// Harmonic is one (amplitude, phase) pair of a harmonic decomposition
// (spec §6), indexed by harmonic number (0 = DC).
type Harmonic struct {
	Number    int
	Amplitude float64
	Phase     float64 // radians
}

// Decompose computes the harmonic decomposition of a waveform via a
// discrete Fourier transform, returning harmonics 0..maxHarmonic.
func (w Waveform) Decompose(maxHarmonic int) ([]Harmonic, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	n := len(w.Data) - 1 // last sample duplicates the first for a periodic signal
	if n < 1 {
		n = len(w.Data)
	}
	if maxHarmonic >= n {
		maxHarmonic = n - 1
	}

	harmonics := make([]Harmonic, maxHarmonic+1)
	for k := 0; k <= maxHarmonic; k++ {
		var sum complex128
		for i := 0; i < n; i++ {
			angle := -2 * math.Pi * float64(k) * float64(i) / float64(n)
			sum += complex(w.Data[i], 0) * cmplx.Exp(complex(0, angle))
		}
		coeff := sum / complex(float64(n), 0)
		amplitude := 2 * cmplx.Abs(coeff)
		if k == 0 {
			amplitude = cmplx.Abs(coeff)
		}
		harmonics[k] = Harmonic{Number: k, Amplitude: amplitude, Phase: cmplx.Phase(coeff)}
	}
	return harmonics, nil
}

// AboveThreshold filters harmonics whose amplitude exceeds threshold times
// the fundamental's amplitude (spec §4.6's "configurable threshold, default
// 1% of fundamental").
func AboveThreshold(harmonics []Harmonic, threshold float64) []Harmonic {
	if len(harmonics) < 2 {
		return nil
	}
	fundamental := harmonics[1].Amplitude
	out := []Harmonic{}
	for _, h := range harmonics[1:] {
		if fundamental == 0 || h.Amplitude >= threshold*fundamental {
			out = append(out, h)
		}
	}
	return out
}
