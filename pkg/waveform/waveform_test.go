package waveform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sinusoid(amplitude, frequency float64, n int) Waveform {
	period := 1 / frequency
	time := make([]float64, n+1)
	data := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		t := period * float64(i) / float64(n)
		time[i] = t
		data[i] = amplitude * math.Sin(2*math.Pi*frequency*t)
	}
	return Waveform{Time: time, Data: data, Label: Sinusoidal}
}

func TestSummarizeSinusoid(t *testing.T) {
	w := sinusoid(10, 100e3, 256)
	s, err := w.Summarize()
	require.NoError(t, err)
	assert.InDelta(t, 10, s.Peak, 0.05)
	assert.InDelta(t, 10/math.Sqrt2, s.RMS, 0.05)
	assert.InDelta(t, 100e3, s.Frequency, 1)
}

func TestDecomposeSinusoidHasSingleFundamental(t *testing.T) {
	w := sinusoid(10, 100e3, 256)
	harmonics, err := w.Decompose(5)
	require.NoError(t, err)
	require.Len(t, harmonics, 6)

	assert.InDelta(t, 10, harmonics[1].Amplitude, 0.05)
	for _, h := range harmonics[2:] {
		assert.Less(t, h.Amplitude, 0.5)
	}
}

func TestAboveThresholdFiltersSmallHarmonics(t *testing.T) {
	harmonics := []Harmonic{
		{Number: 0, Amplitude: 0},
		{Number: 1, Amplitude: 10},
		{Number: 2, Amplitude: 0.05},
		{Number: 3, Amplitude: 2},
	}
	above := AboveThreshold(harmonics, 0.01)
	require.Len(t, above, 2)
	assert.Equal(t, 1, above[0].Number)
	assert.Equal(t, 3, above[1].Number)
}

func TestValidateRejectsMismatchedLengths(t *testing.T) {
	w := Waveform{Time: []float64{0, 1}, Data: []float64{0}}
	assert.Error(t, w.Validate())
}
