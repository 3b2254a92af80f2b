package topology

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inverterSpec() InverterSpec {
	return InverterSpec{
		DCBusVoltage:       400,
		LoadImpedance:      complex(10, 5),
		Power:              5000,
		FundamentalFreq:    60,
		SwitchingFrequency: 10e3,
		Scheme:             PWMThipwm,
		Filter:             FilterLC,
		L1:                 1e-3,
		C:                  10e-6,
		L2:                 1e-3,
	}
}

func TestDQReferenceNonZeroForPositivePower(t *testing.T) {
	vd, vq := DQReference(inverterSpec())
	assert.NotEqual(t, 0.0, vd)
	assert.NotEqual(t, 0.0, vq)
}

func TestDQToABCSumsToZero(t *testing.T) {
	a, b, c := DQToABC(100, 20, math.Pi/4)
	assert.InDelta(t, 0, a+b+c, 1e-9)
}

func TestModulatingWaveformIncludesThirdHarmonicForThipwm(t *testing.T) {
	s := inverterSpec()
	w := ModulatingWaveform(s, 0, 256)
	require.Greater(t, len(w.Data), 1)

	s.Scheme = ""
	plain := ModulatingWaveform(s, 0, 256)
	assert.NotEqual(t, w.Data[10], plain.Data[10])
}

func TestPWMGateProducesBinarySignal(t *testing.T) {
	s := inverterSpec()
	modulating := ModulatingWaveform(s, 0, 256)
	gate := PWMGate(modulating, s.SwitchingFrequency)
	for _, v := range gate.Data {
		assert.True(t, v == 0 || v == 1)
	}
}

func TestFilterImpedanceLAttenuatesWithFrequency(t *testing.T) {
	s := inverterSpec()
	s.Filter = FilterL
	low := cmplxAbs(FilterImpedance(s, 2*math.Pi*60))
	high := cmplxAbs(FilterImpedance(s, 2*math.Pi*10e3))
	assert.Greater(t, low, high)
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

func TestEvaluateFilterHarmonicsReturnsOnePerHarmonic(t *testing.T) {
	s := inverterSpec()
	leg := ModulatingWaveform(s, 0, 256)
	bundles, err := EvaluateFilterHarmonics(s, leg, 5)
	require.NoError(t, err)
	assert.Len(t, bundles, 6)
}
