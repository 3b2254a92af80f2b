package topology

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flybackSpec() FlybackSpec {
	return FlybackSpec{
		VinMin:             80,
		VinMax:             380,
		Vout:               12,
		Iout:               5,
		SwitchingFrequency: 100e3,
		Efficiency:         0.85,
		MaxDutyCycle:       0.45,
		CurrentRippleRatio: 0.6,
	}
}

func TestDesignFlybackTurnsRatioMatchesWorkedExample(t *testing.T) {
	d, err := DesignFlyback(flybackSpec())
	require.NoError(t, err)
	want := 0.45 / (1 - 0.45) * (80.0 / (12 + 0.7))
	assert.InDelta(t, want, d.TurnsRatio, want*0.05)
	assert.Greater(t, d.MagnetizingInductance, 0.0)
}

func TestDesignFlybackRejectsInvalidDutyCycle(t *testing.T) {
	s := flybackSpec()
	s.MaxDutyCycle = 1.5
	_, err := DesignFlyback(s)
	var invalid InvalidDesignRequirements
	assert.ErrorAs(t, err, &invalid)
}

func TestQRMFrequencyPositive(t *testing.T) {
	s := flybackSpec()
	s.DrainSourceCapacitance = 200e-12
	d, err := DesignFlyback(s)
	require.NoError(t, err)
	f, err := QRMFrequency(d, s, s.VinMin)
	require.NoError(t, err)
	assert.Greater(t, f, 0.0)
}

func TestGenerateOperatingPointCCMProducesWaveforms(t *testing.T) {
	s := flybackSpec()
	d, err := DesignFlyback(s)
	require.NoError(t, err)

	op, err := GenerateOperatingPoint(d, s, s.VinMin, FlybackCCM, 64)
	require.NoError(t, err)
	assert.Greater(t, op.DutyCycle, 0.0)
	assert.Greater(t, len(op.PrimaryCurrent.Data), 1)
	assert.Greater(t, len(op.SecondaryCurrent.Data), 1)
	assert.Greater(t, op.SecondaryCurrent.Data[0], 0.0)
}

func TestGenerateOperatingPointDCMCurrentReachesZero(t *testing.T) {
	s := flybackSpec()
	d, err := DesignFlyback(s)
	require.NoError(t, err)

	op, err := GenerateOperatingPoint(d, s, s.VinMax, FlybackDCM, 64)
	require.NoError(t, err)
	last := op.SecondaryCurrent.Data[len(op.SecondaryCurrent.Data)-1]
	assert.InDelta(t, 0, last, 1e-6)
}

func TestGenerateOperatingPointQRMUsesSolvedFrequency(t *testing.T) {
	s := flybackSpec()
	s.DrainSourceCapacitance = 200e-12
	d, err := DesignFlyback(s)
	require.NoError(t, err)

	op, err := GenerateOperatingPoint(d, s, s.VinMin, FlybackQRM, 64)
	require.NoError(t, err)
	assert.NotEqual(t, s.SwitchingFrequency, op.Frequency)
	assert.False(t, math.IsNaN(op.Frequency))
}
