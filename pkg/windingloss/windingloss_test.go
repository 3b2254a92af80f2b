package windingloss

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmagnetics/magforge/pkg/catalog"
)

func TestOhmicBasicFormula(t *testing.T) {
	r, err := Ohmic(1.68e-8, 0.05, 20, 1e-6)
	require.NoError(t, err)
	want := 1.68e-8 * 0.05 * 20 / 1e-6
	assert.InDelta(t, want, r, want*1e-9)
}

func TestOhmicRejectsNonPositiveArea(t *testing.T) {
	_, err := Ohmic(1.68e-8, 0.05, 20, 0)
	assert.Error(t, err)
}

func TestAllTwelveSkinModelsRegistered(t *testing.T) {
	for _, name := range []string{
		"DOWELL", "WOJDA", "ALBACH", "PAYNE", "LOTFI", "KAZIMIERCZUK",
		"KUTKUT", "FERREIRA", "DIMITRAKAKIS", "WANG", "HOLGUIN", "PERRY",
	} {
		m, err := GetSkinModel(name)
		require.NoErrorf(t, err, "model %s should be registered", name)
		assert.GreaterOrEqual(t, m.Factor(1.0, 4), 1.0)
	}
}

func TestSkinFactorIsUnityAtZeroThickness(t *testing.T) {
	m, err := GetSkinModel("DOWELL")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, m.Factor(0, 1), 1e-9)
}

func TestSkinFactorGrowsWithThickness(t *testing.T) {
	m, err := GetSkinModel("DOWELL")
	require.NoError(t, err)
	low := m.Factor(0.5, 1)
	high := m.Factor(2.0, 1)
	assert.Greater(t, high, low)
}

func TestAllSixProximityModelsRegistered(t *testing.T) {
	for _, name := range []string{"ROSSMANITH", "WANG", "FERREIRA", "LAMMERANER", "ALBACH", "DOWELL"} {
		m, err := GetProximityModel(name)
		require.NoErrorf(t, err, "model %s should be registered", name)
		assert.GreaterOrEqual(t, m.Factor(1.0, 1, 4), 1.0)
	}
}

func TestProximityFactorZeroForSingleLayer(t *testing.T) {
	m, err := GetProximityModel("DOWELL")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, m.Factor(1.0, 0, 1), 1e-9)
}

func TestAllFiveFieldStrengthModelsRegistered(t *testing.T) {
	for _, name := range []string{"BINNS_LAWRENSON", "LAMMERANER", "DOWELL", "WANG", "ALBACH"} {
		m, err := GetFieldStrengthModel(name)
		require.NoErrorf(t, err, "model %s should be registered", name)
		assert.Greater(t, m.FieldStrength(10, 0.02), 0.0)
	}
}

func TestFieldStrengthZeroWindowHeightIsZero(t *testing.T) {
	m, err := GetFieldStrengthModel("DOWELL")
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.FieldStrength(10, 0))
}

func TestBothFringingModelsRegistered(t *testing.T) {
	for _, name := range []string{"ROSHEN", "ALBACH"} {
		m, err := GetFringingModel(name)
		require.NoErrorf(t, err, "model %s should be registered", name)
		adjusted := m.Adjust(100, 0.001, 0.005)
		assert.Greater(t, adjusted, 100.0)
	}
}

func TestFringingAdjustUnchangedAtZeroDistance(t *testing.T) {
	m, err := GetFringingModel("ROSHEN")
	require.NoError(t, err)
	assert.Equal(t, 100.0, m.Adjust(100, 0.001, 0))
}

func TestSkinDepthShrinksWithFrequency(t *testing.T) {
	low := SkinDepth(1.68e-8, 50e3, 4*math.Pi*1e-7)
	high := SkinDepth(1.68e-8, 500e3, 4*math.Pi*1e-7)
	assert.Greater(t, low, high)
}

func TestHarmonicLossSumsContributions(t *testing.T) {
	skin, err := GetSkinModel("DOWELL")
	require.NoError(t, err)
	loss := HarmonicLoss(0.1, []float64{1, 0.5, 0.2}, 5e-4, 2e-4, skin, 2)
	assert.Greater(t, loss, 0.0)
}

func TestUnknownSkinModel(t *testing.T) {
	_, err := GetSkinModel("BOGUS")
	var unknown catalog.UnknownEntity
	assert.ErrorAs(t, err, &unknown)
}
