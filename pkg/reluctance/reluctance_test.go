package reluctance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmagnetics/magforge/internal/consts"
	"github.com/openmagnetics/magforge/pkg/catalog"
	"github.com/openmagnetics/magforge/pkg/core"
	"github.com/openmagnetics/magforge/pkg/corepiece"
)

func TestClassicModelMatchesClosedForm(t *testing.T) {
	m, err := Get("CLASSIC")
	require.NoError(t, err)

	res, err := m.Reluctance(Params{GapLength: 0.0005, Area: 1.7e-4}, 100e3, 25)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.FringingFactor)
	assert.InDelta(t, 0.0005/(consts.Mu0*1.7e-4), res.Reluctance, 1e-3)
}

func TestFringingModelsIncreaseEffectiveAreaOverClassic(t *testing.T) {
	p := Params{GapLength: 0.001, Area: 1.7e-4, WindowHeight: 0.01}
	classic, _ := Get("CLASSIC")
	cr, _ := classic.Reluctance(p, 100e3, 25)

	for _, name := range []string{"ZHANG", "PARTRIDGE", "MUEHLETHALER", "STENGLEIN", "BALAKRISHNAN", "EFFECTIVE_AREA", "EFFECTIVE_LENGTH"} {
		model, err := Get(name)
		require.NoError(t, err)
		res, err := model.Reluctance(p, 100e3, 25)
		require.NoError(t, err)
		assert.Greaterf(t, res.FringingFactor, 1.0, "%s should report fringing > 1", name)
		assert.Lessf(t, res.Reluctance, cr.Reluctance, "%s should reduce reluctance vs CLASSIC via fringing", name)
	}
}

func TestUnknownModel(t *testing.T) {
	_, err := Get("NOT_A_MODEL")
	var unknown catalog.UnknownEntity
	assert.ErrorAs(t, err, &unknown)
}

func TestTotalReluctanceSumsCoreAndGaps(t *testing.T) {
	c := &core.Core{
		Processed: &core.ProcessedDescription{
			Columns: []corepiece.Column{
				{Type: corepiece.ColumnCentral, Area: 1.7e-4, Height: 0.02, Coordinates: [3]float64{0, 0, 0}},
			},
			Effective: corepiece.EffectiveParameters{EffectiveLength: 0.0555, EffectiveArea: 1.7e-4},
		},
		Geometry: &core.GeometricalDescription{
			Gapping: []core.ProcessedGap{
				{Type: core.GapSubtractive, Length: 0.0005, Area: 1.7e-4, DistanceClosestNormalSurface: 0.01, Column: 0},
			},
		},
	}
	material := catalog.Material{
		InitialPermeability: []catalog.TemperaturePoint{{Temperature: 25, Value: 2000}},
	}

	total, err := TotalReluctance(c, material, Default, 100e3, 25)
	require.NoError(t, err)

	coreOnly, err := CoreReluctance(0.0555, 1.7e-4, 2000)
	require.NoError(t, err)
	assert.Greater(t, total, coreOnly)
}

func TestMagnetizingInductance(t *testing.T) {
	l, err := MagnetizingInductance(10, 1e6)
	require.NoError(t, err)
	assert.InDelta(t, 100.0/1e6, l, 1e-12)
}
