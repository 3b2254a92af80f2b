package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmagnetics/magforge/pkg/dimension"
)

func pq3220() Shape {
	return Shape{
		Name:   "PQ 32/20",
		Family: FamilyPQ,
		Dimensions: dimension.Map{
			"A": dimension.Exact(0.0335),
			"B": dimension.Exact(0.0325),
			"C": dimension.Exact(0.0201),
			"D": dimension.Exact(0.0202),
			"E": dimension.Exact(0.0222),
			"F": dimension.Exact(0.0195),
		},
	}
}

func TestCatalogAddAndLookupShape(t *testing.T) {
	cat := New()
	require.NoError(t, cat.AddShape(pq3220()))

	s, err := cat.Shape("PQ 32/20")
	require.NoError(t, err)
	assert.Equal(t, FamilyPQ, s.Family)

	_, err = cat.Shape("does not exist")
	var unknown UnknownEntity
	assert.ErrorAs(t, err, &unknown)
}

func TestShapeValidateMissingDimension(t *testing.T) {
	s := pq3220()
	delete(s.Dimensions, "F")
	err := s.Validate()
	assert.Error(t, err)
}

func TestMaterialInterpolation(t *testing.T) {
	m := Material{
		Name: "N87",
		SaturationFluxDensity: []TemperaturePoint{
			{Temperature: 25, Value: 0.49},
			{Temperature: 100, Value: 0.39},
		},
	}
	v, ok := m.SaturationFluxDensityAt(62.5)
	require.True(t, ok)
	assert.InDelta(t, 0.44, v, 1e-9)
}

func TestShapeOrNameResolvesEagerlyAndCaches(t *testing.T) {
	cat := New()
	require.NoError(t, cat.AddShape(pq3220()))

	ref := ShapeOrName{Name: "PQ 32/20"}
	s, err := ref.Resolve(cat)
	require.NoError(t, err)
	assert.Equal(t, FamilyPQ, s.Family)
	require.NotNil(t, ref.Resolved)
}
