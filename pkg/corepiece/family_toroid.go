package corepiece

import "math"

// toroidProcessor serves the T family: a solid ring with no gapping columns
// and a toroidal (radial-height/angle) winding window variant (spec §3, §4.2).
//
// A toroid is a single piece, not a TWO_PIECE_SET, so unlike the other
// families its shape constants already describe the entire closed flux
// loop: Core must not double the effective length/volume the way it does
// for a two-piece E/ETD/U assembly.
//
//	A - outer diameter
//	B - inner diameter
//	C - height
type toroidProcessor struct{}

func (toroidProcessor) processWindingWindow(dims map[string]float64) (WindingWindow, error) {
	b := dims["B"]
	if b <= 0 {
		return WindingWindow{}, InvalidGeometry{Reason: "non-positive inner diameter"}
	}
	radius := b / 2
	return WindingWindow{
		Toroidal:     true,
		RadialHeight: radius,
		Angle:        2 * math.Pi,
		Area:         math.Pi * radius * radius,
	}, nil
}

func (toroidProcessor) processExtraData(dims map[string]float64) (ExtraData, error) {
	a := dims["A"]
	return ExtraData{Width: a, Height: a, Depth: dims["C"]}, nil
}

func (toroidProcessor) processColumns(dims map[string]float64, ww WindingWindow) ([]Column, error) {
	a, b, c := dims["A"], dims["B"], dims["C"]
	if a <= b || c <= 0 {
		return nil, InvalidGeometry{Reason: "outer diameter must exceed inner diameter"}
	}
	radialThickness := (a - b) / 2
	meanCircumference := math.Pi * (a + b) / 2
	return []Column{{
		Type:        ColumnCentral,
		Shape:       ColumnIrregular,
		Width:       radialThickness,
		Depth:       c,
		Height:      meanCircumference,
		Area:        radialThickness * c,
		Coordinates: [3]float64{0, 0, 0},
	}}, nil
}

func (toroidProcessor) shapeConstants(dims map[string]float64, columns []Column, ww WindingWindow, extra ExtraData) (ShapeConstants, error) {
	if len(columns) != 1 || columns[0].Area <= 0 {
		return ShapeConstants{}, InvalidGeometry{Reason: "non-positive ring cross-sectional area"}
	}
	ring := columns[0]
	c1 := ring.Height / ring.Area
	c2 := ring.Height / (ring.Area * ring.Area)
	return ShapeConstants{C1: c1, C2: c2, MinimumArea: ring.Area}, nil
}
