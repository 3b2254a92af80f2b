package corepiece

import "math"

// rectCenterProcessor implements familyProcessor for the "E-like" families
// whose central column is rectangular: E, EFD, EL, EP, EPX, LP, EQ, P,
// PLANAR_E, PLANAR_EL, PLANAR_ER (spec §9: these compose by delegating to
// this single implementation rather than each carrying its own geometry).
//
// Dimension-letter convention (documented here since the spec leaves the
// concrete letter semantics to the implementer):
//
//	A - overall piece width (x)
//	B - overall piece height (y), i.e. one piece's leg length
//	C - central column width (x)
//	D - winding window width (x), the gap between the central and lateral columns
//	E - overall piece depth (z)
//	F - winding window height (y)
type rectCenterProcessor struct{}

func (rectCenterProcessor) processWindingWindow(dims map[string]float64) (WindingWindow, error) {
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

func (rectCenterProcessor) processExtraData(dims map[string]float64) (ExtraData, error) {
	return ExtraData{Width: dims["A"], Height: dims["B"], Depth: dims["E"]}, nil
}

// lateralWidth computes the leftover bulk material on each side of the
// window, for a piece of total width A with central column C and window
// width D.
func lateralWidth(dims map[string]float64) (float64, error) {
	a, c, d := dims["A"], dims["C"], dims["D"]
	w := (a-c)/2 - d
	if w <= 0 {
		return 0, InvalidGeometry{Reason: "lateral column width is non-positive: check A, C, D"}
	}
	return w, nil
}

func (p rectCenterProcessor) processColumns(dims map[string]float64, ww WindingWindow) ([]Column, error) {
	return rectColumns(dims, ww, 1.0)
}

// rectColumns builds the column list for a rectangular-center-leg family.
// clipFraction shrinks the lateral column area to model EC's clip-hole
// correction (spec §9); pass 1.0 for no correction.
func rectColumns(dims map[string]float64, ww WindingWindow, clipFraction float64) ([]Column, error) {
	b, c, e := dims["B"], dims["C"], dims["E"]
	lw, err := lateralWidth(dims)
	if err != nil {
		return nil, err
	}

	centralArea := c * e
	lateralArea := lw * e * clipFraction

	central := Column{
		Type:        ColumnCentral,
		Shape:       ColumnRectangular,
		Width:       c,
		Depth:       e,
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
		Coordinates: [3]float64{-(c/2 + ww.Width + lw/2), 0, 0},
	}
	right := left
	right.Coordinates[0] = -left.Coordinates[0]

	return []Column{central, left, right}, nil
}

func (rectCenterProcessor) shapeConstants(dims map[string]float64, columns []Column, ww WindingWindow, extra ExtraData) (ShapeConstants, error) {
	return seriesShapeConstants(dims, columns, ww)
}

// seriesShapeConstants discretizes the magnetic path into segments
// (central column, window crossing, lateral return, two corner arcs - spec
// §4.2's "4-6 segments") and sums l_i/A_i, l_i/A_i^2 per segment (spec
// §4.2: C1, C2 are the integrals of path length/area along the flux path).
func seriesShapeConstants(dims map[string]float64, columns []Column, ww WindingWindow) (ShapeConstants, error) {
	var central, lateral Column
	for _, col := range columns {
		if col.Type == ColumnCentral {
			central = col
		}
	}
	lateralAreaTotal := 0.0
	for _, col := range columns {
		if col.Type == ColumnLateral {
			lateralAreaTotal += col.Area
			lateral = col
		}
	}
	if central.Area <= 0 || lateralAreaTotal <= 0 {
		return ShapeConstants{}, InvalidGeometry{Reason: "non-positive column area"}
	}

	b := central.Height
	transitionArea := (central.Area + lateralAreaTotal) / 2
	cornerRadius := ww.Width / 2
	if cornerRadius <= 0 {
		cornerRadius = 1e-6
	}

	type segment struct{ length, area float64 }
	segments := []segment{
		{length: b, area: central.Area},                    // central column
		{length: ww.Width, area: transitionArea},            // window crossing
		{length: b, area: lateralAreaTotal},                 // lateral return (parallel legs combined)
		{length: math.Pi / 2 * cornerRadius, area: lateralAreaTotal}, // top corner arc
		{length: math.Pi / 2 * cornerRadius, area: lateralAreaTotal}, // bottom corner arc
	}

	var c1, c2 float64
	for _, s := range segments {
		c1 += s.length / s.area
		c2 += s.length / (s.area * s.area)
	}

	minArea := central.Area
	if lateral.Area < minArea {
		minArea = lateral.Area
	}

	return ShapeConstants{C1: c1, C2: c2, MinimumArea: minArea}, nil
}
