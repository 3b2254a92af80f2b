package coil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmagnetics/magforge/pkg/catalog"
	"github.com/openmagnetics/magforge/pkg/corepiece"
)

func roundWire(diameter float64) catalog.Wire {
	return catalog.Wire{
		Name:               "round",
		Type:               catalog.WireRound,
		ConductingDiameter: diameter,
		OuterDiameter:      diameter * 1.1,
	}
}

func rectWindow() corepiece.WindingWindow {
	return corepiece.WindingWindow{
		Height:      0.02,
		Width:       0.01,
		Area:        0.0002,
		Coordinates: [3]float64{0.015, 0, 0},
	}
}

func TestSectionWindowSplitsProportionally(t *testing.T) {
	ww := rectWindow()
	windings := []WindingSpec{
		{Name: "primary", Turns: 30},
		{Name: "secondary", Turns: 10},
	}
	sections, err := SectionWindow(ww, windings, 0.001)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Greater(t, sections[0].Height, sections[1].Height)
	assert.InDelta(t, 3.0, sections[0].Height/sections[1].Height, 0.1)
}

func TestSectionWindowRejectsNoWindings(t *testing.T) {
	_, err := SectionWindow(rectWindow(), nil, 0)
	assert.Error(t, err)
}

func TestSectionToroidalPartitionsAngle(t *testing.T) {
	ww := corepiece.WindingWindow{Toroidal: true, RadialHeight: 0.005, Angle: 6.0}
	windings := []WindingSpec{{Name: "primary", Turns: 20}}
	sections, err := SectionWindow(ww, windings, 0.1)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.InDelta(t, 5.9, sections[0].Width, 1e-9)
}

func TestLayerSectionPacksTurnsByPitch(t *testing.T) {
	section := Section{Winding: "primary", Coordinates: [3]float64{0.015, 0, 0}, Width: 0.008, Height: 0.018}
	wire := roundWire(0.0005)
	layers, err := LayerSection(section, wire, 60)
	require.NoError(t, err)
	assert.Greater(t, len(layers), 1)
	total := 0
	for _, l := range layers {
		total += l.Turns
	}
	assert.Equal(t, 60, total)
}

func TestLayerSectionFailsWhenWireTooLargeForSection(t *testing.T) {
	section := Section{Winding: "primary", Coordinates: [3]float64{0, 0, 0}, Width: 0.001, Height: 0.001}
	wire := roundWire(0.01)
	_, err := LayerSection(section, wire, 5)
	var fit FitFailure
	assert.ErrorAs(t, err, &fit)
}

func TestPlaceTurnsStacksAlongHeight(t *testing.T) {
	wire := roundWire(0.0005)
	layer := Layer{Section: "primary", Index: 0, Coordinates: [3]float64{0.005, 0, 0}, Turns: 3}
	turns := PlaceTurns(layer, wire, 0.05, -0.009, 0.018)
	require.Len(t, turns, 3)
	assert.Less(t, turns[0].Coordinates[1], turns[1].Coordinates[1])
	assert.Less(t, turns[1].Coordinates[1], turns[2].Coordinates[1])
}

func TestToroidalPitchAngleScalesInverselyWithRadius(t *testing.T) {
	wire := roundWire(0.0005)
	small := ToroidalPitchAngle(wire, 0.005)
	large := ToroidalPitchAngle(wire, 0.02)
	assert.Greater(t, small, large)
}

func TestCheckCollisionDetectsOverlappingRoundTurns(t *testing.T) {
	wire := roundWire(0.001)
	a := Turn{Coordinates: [3]float64{0, 0, 0}}
	b := Turn{Coordinates: [3]float64{0.0005, 0, 0}}
	assert.True(t, CheckCollision(a, b, wire, wire))

	c := Turn{Coordinates: [3]float64{0.01, 0, 0}}
	assert.False(t, CheckCollision(a, c, wire, wire))
}

func TestInsideWindowRejectsOutOfBoundsTurn(t *testing.T) {
	ww := rectWindow()
	wire := roundWire(0.0005)
	inside := Turn{Coordinates: [3]float64{0.015, 0, 0}}
	assert.True(t, InsideWindow(ww, inside, wire))

	outside := Turn{Coordinates: [3]float64{0.015, 0.02, 0}}
	assert.False(t, InsideWindow(ww, outside, wire))
}
