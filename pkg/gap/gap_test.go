package gap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmagnetics/magforge/pkg/core"
	"github.com/openmagnetics/magforge/pkg/corepiece"
	"github.com/openmagnetics/magforge/pkg/settings"
)

func threeColumnCore(ct core.Type) *core.Core {
	columns := []corepiece.Column{
		{Type: corepiece.ColumnCentral, Shape: corepiece.ColumnRound, Width: 0.020, Depth: 0.020, Height: 0.030, Area: 3e-4, Coordinates: [3]float64{0, 0, 0}},
		{Type: corepiece.ColumnLateral, Shape: corepiece.ColumnRectangular, Width: 0.004, Depth: 0.020, Height: 0.030, Area: 8e-5, Coordinates: [3]float64{-0.015, 0, 0}},
		{Type: corepiece.ColumnLateral, Shape: corepiece.ColumnRectangular, Width: 0.004, Depth: 0.020, Height: 0.030, Area: 8e-5, Coordinates: [3]float64{0.015, 0, 0}},
	}
	return &core.Core{
		Functional: core.FunctionalDescription{Type: ct},
		Processed:  &core.ProcessedDescription{Columns: columns},
	}
}

func testSettings() *settings.Settings {
	settings.ResetForTests()
	return settings.GetInstance()
}

func TestProcessZeroGapsBroadcastsResidual(t *testing.T) {
	c := threeColumnCore(core.TwoPieceSet)
	require.NoError(t, Process(c, testSettings()))
	require.Len(t, c.Geometry.Gapping, 3)
	for _, g := range c.Geometry.Gapping {
		assert.Equal(t, core.GapResidual, g.Type)
	}
}

func TestProcessFewerGapsBroadcastsLast(t *testing.T) {
	c := threeColumnCore(core.TwoPieceSet)
	c.Functional.Gapping = []core.FunctionalGap{
		{Type: core.GapSubtractive, Length: 0.0005},
	}
	require.NoError(t, Process(c, testSettings()))
	require.Len(t, c.Geometry.Gapping, 3)
	for _, g := range c.Geometry.Gapping {
		assert.Equal(t, core.GapSubtractive, g.Type)
		assert.InDelta(t, 0.0005, g.Length, 1e-12)
	}
}

func TestProcessOneToOneByIndex(t *testing.T) {
	c := threeColumnCore(core.TwoPieceSet)
	c.Functional.Gapping = []core.FunctionalGap{
		{Type: core.GapResidual, Length: 1e-5},
		{Type: core.GapResidual, Length: 1e-5},
		{Type: core.GapResidual, Length: 1e-5},
	}
	require.NoError(t, Process(c, testSettings()))
	require.Len(t, c.Geometry.Gapping, 3)
	for i, g := range c.Geometry.Gapping {
		assert.Equal(t, c.Processed.Columns[i].Coordinates, g.Coordinates)
	}
}

func TestProcessWindingAndReturnSplit(t *testing.T) {
	c := threeColumnCore(core.TwoPieceSet)
	c.Functional.Gapping = []core.FunctionalGap{
		{Type: core.GapSubtractive, Length: 0.001},
		{Type: core.GapResidual, Length: 1e-5},
		{Type: core.GapResidual, Length: 1e-5},
	}
	require.NoError(t, Process(c, testSettings()))
	require.Len(t, c.Geometry.Gapping, 3)

	var subtractiveCount, residualCount int
	for _, g := range c.Geometry.Gapping {
		switch g.Type {
		case core.GapSubtractive:
			subtractiveCount++
			assert.Equal(t, 0, g.Column)
		case core.GapResidual:
			residualCount++
			assert.NotEqual(t, 0, g.Column)
		}
	}
	assert.Equal(t, 1, subtractiveCount)
	assert.Equal(t, 2, residualCount)
}

func TestProcessIgnoresStaleCoordinates(t *testing.T) {
	c := threeColumnCore(core.TwoPieceSet)
	bad := [3]float64{0.999, 0, 0}
	c.Functional.Gapping = []core.FunctionalGap{
		{Type: core.GapSubtractive, Length: 0.001, Coordinates: &bad},
		{Type: core.GapResidual, Length: 1e-5},
		{Type: core.GapResidual, Length: 1e-5},
	}
	require.NoError(t, Process(c, testSettings()))
	require.Len(t, c.Geometry.Gapping, 3)

	// A stale Coordinates hint on one gap must not discard the real gap
	// data: this is the same type/length pattern as
	// TestProcessWindingAndReturnSplit and assigns identically.
	var subtractiveCount, residualCount int
	for _, g := range c.Geometry.Gapping {
		switch g.Type {
		case core.GapSubtractive:
			subtractiveCount++
			assert.InDelta(t, 0.001, g.Length, 1e-12)
			assert.Equal(t, 0, g.Column)
		case core.GapResidual:
			residualCount++
			assert.NotEqual(t, 0, g.Column)
		}
	}
	assert.Equal(t, 1, subtractiveCount)
	assert.Equal(t, 2, residualCount)
}

func TestSplitForTwoPieceSetClipsStraddlingSubtractiveGap(t *testing.T) {
	c := threeColumnCore(core.TwoPieceSet)
	c.Functional.Gapping = []core.FunctionalGap{
		{Type: core.GapSubtractive, Length: 0.010},
	}
	require.NoError(t, Process(c, testSettings()))
	require.NotEmpty(t, c.Geometry.Machining)

	var total float64
	for _, m := range c.Geometry.Machining {
		total += m.Length
	}
	// The gap broadcasts across all three columns (spec §4.3 step 2), so the
	// machined length sums to three times the single specified gap length.
	assert.InDelta(t, 0.030, total, 1e-9)
}

func TestSplitForTwoPieceSetBuildsSpacerForAdditiveGap(t *testing.T) {
	c := threeColumnCore(core.TwoPieceSet)
	c.Functional.Gapping = []core.FunctionalGap{
		{Type: core.GapAdditive, Length: 0.0003},
	}
	require.NoError(t, Process(c, testSettings()))
	require.Len(t, c.Geometry.Spacers, 3)
	assert.Greater(t, c.Geometry.Spacers[0].Width, c.Processed.Columns[0].Width)
}
