package corepiece

import "github.com/openmagnetics/magforge/pkg/catalog"

// uShapeProcessor serves U, UR, UT and C: two lateral columns with no
// central column, connected by a base (spec §9, required letters A, B, C,
// D, H per catalog.RequiredLetters).
//
//	A - overall piece width (x)
//	B - overall piece height (y)
//	C - lateral column width (x)
//	D - winding window width (x), the gap between the two lateral columns
//	H - overall piece depth (z)
//
// Unlike the center-leg families, flux does not split: both legs and the
// connecting base carry the same flux in series, so the path is a single
// series loop rather than a center/lateral parallel split.
type uShapeProcessor struct{}

func (uShapeProcessor) processWindingWindow(dims map[string]float64) (WindingWindow, error) {
	d, b := dims["D"], dims["B"]
	if d <= 0 || b <= 0 {
		return WindingWindow{}, InvalidGeometry{Reason: "non-positive winding window dimension"}
	}
	c := dims["C"]
	return WindingWindow{
		Height:      b,
		Width:       d,
		Area:        d * b,
		Coordinates: [3]float64{c + d/2, 0, 0},
	}, nil
}

func (uShapeProcessor) processExtraData(dims map[string]float64) (ExtraData, error) {
	return ExtraData{Width: dims["A"], Height: dims["B"], Depth: dims["H"]}, nil
}

func (uShapeProcessor) processColumns(dims map[string]float64, ww WindingWindow) ([]Column, error) {
	c, h, b := dims["C"], dims["H"], dims["B"]
	if c <= 0 || h <= 0 {
		return nil, InvalidGeometry{Reason: "non-positive lateral column dimension"}
	}

	area := c * h
	left := Column{
		Type:        ColumnLateral,
		Shape:       ColumnRectangular,
		Width:       c,
		Depth:       h,
		Height:      b,
		Area:        area,
		Coordinates: [3]float64{-(c/2 + ww.Width/2), 0, 0},
	}
	right := left
	right.Coordinates[0] = -left.Coordinates[0]

	return []Column{left, right}, nil
}

func (uShapeProcessor) shapeConstants(dims map[string]float64, columns []Column, ww WindingWindow, extra ExtraData) (ShapeConstants, error) {
	if len(columns) != 2 {
		return ShapeConstants{}, InvalidGeometry{Reason: "u-shape expects exactly two lateral columns"}
	}
	area := columns[0].Area
	if area <= 0 {
		return ShapeConstants{}, InvalidGeometry{Reason: "non-positive column area"}
	}
	b := columns[0].Height

	type segment struct{ length, area float64 }
	segments := []segment{
		{length: b / 2, area: area}, // leg 1
		{length: ww.Width, area: area}, // base crossing
		{length: b / 2, area: area}, // leg 2
	}

	var c1, c2 float64
	for _, s := range segments {
		c1 += s.length / s.area
		c2 += s.length / (s.area * s.area)
	}

	return ShapeConstants{C1: c1, C2: c2, MinimumArea: area}, nil
}

// uShapeFamilies lists the families this file handles. Dispatch itself is
// the switch in processorFor; nothing reads this map.
var uShapeFamilies = map[catalog.ShapeFamily]bool{
	catalog.FamilyU:  true,
	catalog.FamilyUR: true,
	catalog.FamilyUT: true,
	catalog.FamilyC:  true,
}
