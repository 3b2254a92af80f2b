package corepiece

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmagnetics/magforge/pkg/catalog"
	"github.com/openmagnetics/magforge/pkg/dimension"
)

func exactShape(family catalog.ShapeFamily, name string, dims map[string]float64) catalog.Shape {
	m := dimension.Map{}
	for letter, v := range dims {
		m[letter] = dimension.Exact(v)
	}
	return catalog.Shape{Name: name, Family: family, Dimensions: m}
}

func TestFactoryRoundCenterLeg(t *testing.T) {
	shape := exactShape(catalog.FamilyPQ, "PQ 26/20", map[string]float64{
		"A": 0.040, "B": 0.032, "C": 0.020, "D": 0.006, "E": 0.020, "F": 0.0155,
	})

	p, err := Factory(shape)
	require.NoError(t, err)
	require.Len(t, p.Columns, 3)

	var centralArea, lateralArea float64
	for _, c := range p.Columns {
		if c.Type == ColumnCentral {
			centralArea = c.Area
		} else {
			lateralArea = c.Area
		}
	}

	assert.Greater(t, p.Effective.EffectiveArea, 0.0)
	assert.Greater(t, p.Effective.EffectiveLength, 0.0)
	assert.Greater(t, p.Effective.EffectiveVolume, 0.0)
	assert.InDelta(t, lateralArea, p.Constants.MinimumArea, 1e-12)
	assert.Less(t, p.Constants.MinimumArea, centralArea)
}

func TestFactoryRectCenterLegDelegatesAcrossFamilies(t *testing.T) {
	dims := map[string]float64{
		"A": 0.040, "B": 0.032, "C": 0.012, "D": 0.006, "E": 0.020, "F": 0.0155,
	}
	eShape := exactShape(catalog.FamilyE, "E 40/16", dims)
	planarShape := exactShape(catalog.FamilyPlanarE, "PLANAR E 40", dims)

	pe, err := Factory(eShape)
	require.NoError(t, err)
	pp, err := Factory(planarShape)
	require.NoError(t, err)

	assert.Equal(t, pe.Effective, pp.Effective)
}

func TestFactoryInvalidGeometryOnOversizedCenterLeg(t *testing.T) {
	shape := exactShape(catalog.FamilyPQ, "impossible", map[string]float64{
		"A": 0.0335, "B": 0.0325, "C": 0.0201, "D": 0.0202, "E": 0.0222, "F": 0.0195,
	})

	_, err := Factory(shape)
	require.Error(t, err)
	var invalid InvalidGeometry
	assert.ErrorAs(t, err, &invalid)
}

func TestFactoryMissingDimensionIsInvalidGeometry(t *testing.T) {
	shape := exactShape(catalog.FamilyE, "incomplete", map[string]float64{
		"A": 0.040, "B": 0.032, "C": 0.012, "D": 0.006, "E": 0.020,
	})
	_, err := Factory(shape)
	require.Error(t, err)
	var invalid InvalidGeometry
	assert.ErrorAs(t, err, &invalid)
}

func TestFactoryUShapeUniformAreaIsExact(t *testing.T) {
	shape := exactShape(catalog.FamilyU, "U 30/20/8", map[string]float64{
		"A": 0.030, "B": 0.020, "C": 0.005, "D": 0.010, "H": 0.008,
	})

	p, err := Factory(shape)
	require.NoError(t, err)

	wantArea := 0.005 * 0.008
	wantLength := 0.020 + 0.010
	assert.InDelta(t, wantArea, p.Effective.EffectiveArea, 1e-12)
	assert.InDelta(t, wantLength, p.Effective.EffectiveLength, 1e-9)
	assert.InDelta(t, wantArea*wantLength, p.Effective.EffectiveVolume, 1e-12)
}

func TestFactoryToroidIsSinglePieceClosedForm(t *testing.T) {
	shape := exactShape(catalog.FamilyT, "T 20/10/8", map[string]float64{
		"A": 0.020, "B": 0.010, "C": 0.008,
	})

	p, err := Factory(shape)
	require.NoError(t, err)
	require.Len(t, p.Columns, 1)
	require.True(t, p.Window.Toroidal)

	radialThickness := (0.020 - 0.010) / 2
	wantArea := radialThickness * 0.008
	wantLength := 3.14159265358979323846 * (0.020 + 0.010) / 2

	assert.InDelta(t, wantArea, p.Effective.EffectiveArea, 1e-12)
	assert.InDelta(t, wantLength, p.Effective.EffectiveLength, 1e-9)
}

func TestFactoryUnknownFamily(t *testing.T) {
	shape := catalog.Shape{Name: "x", Family: "BOGUS", Dimensions: dimension.Map{}}
	_, err := Factory(shape)
	require.Error(t, err)
}
