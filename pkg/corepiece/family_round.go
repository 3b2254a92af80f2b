package corepiece

import "math"

// roundCenterProcessor serves the families whose central column is round:
// ETD, ER, PM, PQ, RM. EC delegates here too with a clip-hole correction
// applied to the lateral area (the EC family machines a flat clip groove
// into the otherwise round outer shell).
//
// Uses the same dimension-letter convention as rectCenterProcessor, with C
// read as the central column's diameter rather than a rectangular width.
type roundCenterProcessor struct {
	// ClipFraction shrinks the lateral column area below 1.0 to model EC's
	// clip groove. 1.0 for every other round-center family.
	ClipFraction float64
}

func (p roundCenterProcessor) processWindingWindow(dims map[string]float64) (WindingWindow, error) {
	d, f := dims["D"], dims["F"]
	if d <= 0 || f <= 0 {
		return WindingWindow{}, InvalidGeometry{Reason: "non-positive winding window dimension"}
	}
	c := dims["C"]
	return WindingWindow{
		Height:      f,
		Width:       d,
		Area:        d * f,
		Coordinates: [3]float64{c/2 + d/2, 0, 0},
	}, nil
}

func (p roundCenterProcessor) processExtraData(dims map[string]float64) (ExtraData, error) {
	return ExtraData{Width: dims["A"], Height: dims["B"], Depth: dims["E"]}, nil
}

func (p roundCenterProcessor) processColumns(dims map[string]float64, ww WindingWindow) ([]Column, error) {
	a, b, c, e := dims["A"], dims["B"], dims["C"], dims["E"]
	lw, err := lateralWidth(dims)
	if err != nil {
		return nil, err
	}

	clip := p.ClipFraction
	if clip <= 0 {
		clip = 1.0
	}

	r := c / 2
	centralArea := math.Pi * r * r
	lateralArea := lw * e * clip

	central := Column{
		Type:        ColumnCentral,
		Shape:       ColumnRound,
		Width:       c,
		Depth:       c,
		Height:      b,
		Area:        centralArea,
		Coordinates: [3]float64{0, 0, 0},
	}
	left := Column{
		Type:        ColumnLateral,
		Shape:       ColumnRectangular,
		Width:       lw,
		Depth:       e,
		Height:      b,
		Area:        lateralArea,
		Coordinates: [3]float64{-(r + ww.Width + lw/2), 0, 0},
	}
	right := left
	right.Coordinates[0] = -left.Coordinates[0]

	_ = a
	return []Column{central, left, right}, nil
}

func (p roundCenterProcessor) shapeConstants(dims map[string]float64, columns []Column, ww WindingWindow, extra ExtraData) (ShapeConstants, error) {
	return seriesShapeConstants(dims, columns, ww)
}
