// Package coil synthesizes a physical winding layout from a functional
// description (spec §4.7): sectioning divides the winding window among
// windings, layering packs turns into layers within each section, and
// turn placement assigns a coordinate to every individual turn, subject
// to collision and window-bounds checks.
package coil

import (
	"math"

	"github.com/openmagnetics/magforge/pkg/catalog"
	"github.com/openmagnetics/magforge/pkg/corepiece"
)

// FitFailure is a recoverable error reporting that a winding could not be
// placed within the available winding window (spec §4.7).
type FitFailure struct {
	Reason string
}

func (e FitFailure) Error() string { return "winding does not fit: " + e.Reason }

// OrderedIsolationSide is the closed set over which side of a section a
// solid-insulation layer is inserted on, governing section ordering.
type OrderedIsolationSide string

const (
	IsolationSideTop    OrderedIsolationSide = "TOP"
	IsolationSideBottom OrderedIsolationSide = "BOTTOM"
	IsolationSideInner  OrderedIsolationSide = "INNER"
	IsolationSideOuter  OrderedIsolationSide = "OUTER"
)

// WindingSpec is one winding's request to the sectioner: how many turns,
// with which wire, possibly split into parallel strands.
type WindingSpec struct {
	Name           string
	Wire           catalog.Wire
	Turns          int
	ParallelStrands int
}

// Section is one contiguous region of the winding window assigned to a
// single winding.
type Section struct {
	Winding     string
	Coordinates [3]float64
	Width       float64
	Height      float64
}

// Layer is one pass of wound conductor within a section.
type Layer struct {
	Section     string
	Index       int
	Coordinates [3]float64
	Turns       int
}

// Turn is one placed conductor loop.
type Turn struct {
	Winding     string
	Layer       int
	Coordinates [3]float64
	// Length is the turn's conductor length (mean turn length); for a
	// toroidal winding window this already accounts for the core's
	// cross-section it must wrap.
	Length float64
}

// Coil is the fully placed winding: sections, layers and individual turns.
type Coil struct {
	Sections []Section
	Layers   []Layer
	Turns    []Turn
}

// SectionWindow partitions the winding window's height among windings
// proportional to requested turn count, in the order given (spec §4.7:
// partition window by height/width/angle with isolation-side
// constraints). insulationMargin is a total length (meters) subtracted
// from the window height to account for bobbin/solid-insulation
// thickness; it is allocated evenly between sections as spacing.
func SectionWindow(ww corepiece.WindingWindow, windings []WindingSpec, insulationMargin float64) ([]Section, error) {
	if len(windings) == 0 {
		return nil, FitFailure{Reason: "no windings requested"}
	}
	if ww.Toroidal {
		return sectionToroidal(ww, windings, insulationMargin)
	}
	return sectionRectangular(ww, windings, insulationMargin)
}

func sectionRectangular(ww corepiece.WindingWindow, windings []WindingSpec, insulationMargin float64) ([]Section, error) {
	totalTurns := 0
	for _, w := range windings {
		totalTurns += w.Turns
	}
	if totalTurns <= 0 {
		return nil, FitFailure{Reason: "total turns must be positive"}
	}

	usableHeight := ww.Height - insulationMargin
	if usableHeight <= 0 {
		return nil, FitFailure{Reason: "insulation margin consumes entire winding window height"}
	}

	sections := make([]Section, len(windings))
	y := ww.Coordinates[1] - ww.Height/2
	for i, w := range windings {
		share := float64(w.Turns) / float64(totalTurns)
		height := usableHeight * share
		sections[i] = Section{
			Winding: w.Name,
			Coordinates: [3]float64{
				ww.Coordinates[0],
				y + height/2,
				ww.Coordinates[2],
			},
			Width:  ww.Width,
			Height: height,
		}
		y += height + insulationMargin/math.Max(1, float64(len(windings)-1))
	}
	return sections, nil
}

func sectionToroidal(ww corepiece.WindingWindow, windings []WindingSpec, insulationMargin float64) ([]Section, error) {
	totalTurns := 0
	for _, w := range windings {
		totalTurns += w.Turns
	}
	if totalTurns <= 0 {
		return nil, FitFailure{Reason: "total turns must be positive"}
	}

	usableAngle := ww.Angle - insulationMargin
	if usableAngle <= 0 {
		return nil, FitFailure{Reason: "insulation margin consumes entire toroidal angle"}
	}

	sections := make([]Section, len(windings))
	angle := -ww.Angle / 2
	for i, w := range windings {
		share := float64(w.Turns) / float64(totalTurns)
		span := usableAngle * share
		sections[i] = Section{
			Winding: w.Name,
			Coordinates: [3]float64{
				angle + span/2,
				ww.RadialHeight,
				0,
			},
			Width:  span,
			Height: ww.RadialHeight,
		}
		angle += span + insulationMargin/math.Max(1, float64(len(windings)-1))
	}
	return sections, nil
}

// LayerSection packs a section's turns into layers stacked along the window
// width, one layer per pass of the available section height (spec §4.7:
// "layer thickness = wire outer dimension"). For round/litz wire the
// pitch equals the outer diameter; for rectangular/foil wire the pitch
// equals the conducting width plus coating.
func LayerSection(section Section, wire catalog.Wire, turns int) ([]Layer, error) {
	outerWidth, outerHeight := wire.OuterWidthHeight()
	if outerWidth <= 0 || outerHeight <= 0 {
		return nil, FitFailure{Reason: "wire has zero outer dimensions"}
	}

	turnsPerLayer := int(math.Floor(section.Height / outerHeight))
	if turnsPerLayer < 1 {
		return nil, FitFailure{Reason: "section height too small for a single turn"}
	}

	numLayers := int(math.Ceil(float64(turns) / float64(turnsPerLayer)))
	maxLayers := int(math.Floor(section.Width / outerWidth))
	if numLayers > maxLayers {
		return nil, FitFailure{Reason: "winding does not fit within section width"}
	}

	layers := make([]Layer, 0, numLayers)
	remaining := turns
	x := section.Coordinates[0] - section.Width/2
	for i := 0; i < numLayers; i++ {
		n := turnsPerLayer
		if remaining < n {
			n = remaining
		}
		layers = append(layers, Layer{
			Section: section.Winding,
			Index:   i,
			Coordinates: [3]float64{
				x + outerWidth/2 + float64(i)*outerWidth,
				section.Coordinates[1],
				section.Coordinates[2],
			},
			Turns: n,
		})
		remaining -= n
	}
	return layers, nil
}

// PlaceTurns assigns a coordinate to every turn within a layer, stacked
// along the section's height direction, with pitch equal to the wire's
// outer height (spec §4.7 turn placement). meanTurnLength is the
// per-turn conductor length to copy onto each Turn.
func PlaceTurns(layer Layer, wire catalog.Wire, meanTurnLength float64, sectionTop, sectionHeight float64) []Turn {
	_, outerHeight := wire.OuterWidthHeight()
	turns := make([]Turn, layer.Turns)
	y := sectionTop + outerHeight/2
	for i := range turns {
		turns[i] = Turn{
			Winding: layer.Section,
			Layer:   layer.Index,
			Coordinates: [3]float64{
				layer.Coordinates[0],
				y + float64(i)*outerHeight,
				layer.Coordinates[2],
			},
			Length: meanTurnLength,
		}
	}
	return turns
}

// ToroidalPitchAngle returns the angular pitch (radians) a turn of the
// given wire occupies at the given mean winding radius, per spec §4.7's
// toroidal variant: angle = distance / radius.
func ToroidalPitchAngle(wire catalog.Wire, radius float64) float64 {
	if radius <= 0 {
		return 0
	}
	outerWidth, _ := wire.OuterWidthHeight()
	return outerWidth / radius
}

// CheckCollision reports whether two turns' bounding circles (round/litz
// wire) or bounding rectangles (rectangular/foil wire) overlap, using
// each wire's outer dimensions as the bound (spec §4.7 collision check).
func CheckCollision(a, b Turn, wireA, wireB catalog.Wire) bool {
	aw, ah := wireA.OuterWidthHeight()
	bw, bh := wireB.OuterWidthHeight()

	dx := math.Abs(a.Coordinates[0] - b.Coordinates[0])
	dy := math.Abs(a.Coordinates[1] - b.Coordinates[1])

	aCircular := wireA.Type == catalog.WireRound || wireA.Type == catalog.WireLitz
	bCircular := wireB.Type == catalog.WireRound || wireB.Type == catalog.WireLitz
	if aCircular && bCircular {
		minDist := aw/2 + bw/2
		dist := math.Hypot(dx, dy)
		return dist < minDist
	}

	return dx < (aw+bw)/2 && dy < (ah+bh)/2
}

// InsideWindow reports whether a turn's bounding box lies fully within
// the rectangular winding window (spec §4.7 inside-window-polygon
// check). Toroidal windows are checked separately via angle bounds.
func InsideWindow(ww corepiece.WindingWindow, t Turn, wire catalog.Wire) bool {
	outerWidth, outerHeight := wire.OuterWidthHeight()
	left := ww.Coordinates[0] - ww.Width/2
	right := ww.Coordinates[0] + ww.Width/2
	bottom := ww.Coordinates[1] - ww.Height/2
	top := ww.Coordinates[1] + ww.Height/2

	return t.Coordinates[0]-outerWidth/2 >= left &&
		t.Coordinates[0]+outerWidth/2 <= right &&
		t.Coordinates[1]-outerHeight/2 >= bottom &&
		t.Coordinates[1]+outerHeight/2 <= top
}
