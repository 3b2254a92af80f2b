package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func infineonSpec() CLLCSpec {
	return CLLCSpec{
		Vin:               750,
		Vout:              600,
		Pout:              11000,
		ResonantFrequency: 73e3,
		Q:                 0.3984,
		K:                 4.45,
	}
}

func TestDesignCLLCMatchesInfineonWorkedExample(t *testing.T) {
	d, err := DesignCLLC(infineonSpec())
	require.NoError(t, err)

	assert.InDelta(t, 1.25, d.N, 1.25*0.2)
	assert.InDelta(t, 41.45, d.Ro, 41.45*0.2)
	assert.InDelta(t, 132e-9, d.C1, 132e-9*0.2)
	assert.InDelta(t, 36e-6, d.L1, 36e-6*0.2)
	assert.InDelta(t, 160e-6, d.Lm, 160e-6*0.2)
}

func TestDesignCLLCAsymmetricAdjustsL2C2(t *testing.T) {
	sym, err := DesignCLLC(infineonSpec())
	require.NoError(t, err)

	asymSpec := infineonSpec()
	asymSpec.Asymmetric = true
	asym, err := DesignCLLC(asymSpec)
	require.NoError(t, err)

	assert.NotEqual(t, sym.L2, asym.L2)
	assert.NotEqual(t, sym.C2, asym.C2)
}

func TestDesignCLLCRejectsNonPositiveInputs(t *testing.T) {
	s := infineonSpec()
	s.Pout = 0
	_, err := DesignCLLC(s)
	var invalid InvalidDesignRequirements
	assert.ErrorAs(t, err, &invalid)
}

func TestFHAGainPeaksNearResonance(t *testing.T) {
	d, err := DesignCLLC(infineonSpec())
	require.NoError(t, err)

	atResonance := FHAGain(d, 73e3)
	farAway := FHAGain(d, 500e3)
	assert.Greater(t, atResonance, 0.0)
	assert.Greater(t, atResonance, farAway)
}

func TestGenerateCLLCOperatingPointProducesWaveforms(t *testing.T) {
	spec := infineonSpec()
	d, err := DesignCLLC(spec)
	require.NoError(t, err)

	op := GenerateCLLCOperatingPoint(d, spec, 73e3, 100e-9, 20, 64)
	assert.Greater(t, len(op.PrimaryVoltage.Data), 1)
	assert.Greater(t, len(op.ResonantCurrent.Data), 1)
	assert.Equal(t, len(op.ResonantCurrent.Data), len(op.SecondaryCurrent.Data))
}
