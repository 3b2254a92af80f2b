// Package corepiece implements the CorePiece geometry engine (spec §4.2):
// for each shape family, a concrete geometry procedure computes winding
// window, column list and magnetic shape constants (C1, C2, minimum area)
// from a flattened dimension map, dispatched through a single
// CorePiece.Factory entry point.
//
// Families that reuse another family's geometry (ER≡ETD, PLANAR_E≡E,
// EC≡ETD with a clip-hole correction) compose by delegating to a shared
// concrete processor rather than by inheritance (spec §9): there are only
// two rectangular-family processors (round center leg, rectangular center
// leg) plus a U-shape processor and a toroid processor; ShapeFamily only
// selects which one runs and with which parameters.
package corepiece

import "github.com/openmagnetics/magforge/pkg/catalog"

// ColumnType distinguishes the single central column from the surrounding
// lateral columns (spec §3).
type ColumnType int

const (
	ColumnCentral ColumnType = iota
	ColumnLateral
)

func (t ColumnType) String() string {
	if t == ColumnCentral {
		return "central"
	}
	return "lateral"
}

// ColumnShape is the cross-sectional shape of a column (spec §3).
type ColumnShape int

const (
	ColumnRectangular ColumnShape = iota
	ColumnRound
	ColumnOblong
	ColumnIrregular
)

// Column is the ColumnElement data type (spec §3). Coordinates are
// centered on the single piece being processed; Core (the assembled
// device) re-centers them on the full assembly.
type Column struct {
	Type          ColumnType
	Shape         ColumnShape
	Width         float64
	Depth         float64
	Height        float64
	Area          float64
	Coordinates   [3]float64
	MinimumWidth  *float64
}

// WindingWindow is the WindingWindowElement data type (spec §3): either a
// rectangular window (Height/Width set, Toroidal false) or a toroidal
// window (RadialHeight/Angle set, Toroidal true).
type WindingWindow struct {
	Toroidal bool

	// Rectangular variant.
	Height float64
	Width  float64

	// Toroidal variant.
	RadialHeight float64
	Angle        float64 // radians, full available angle (2*pi minus keep-out)

	Area        float64
	Coordinates [3]float64
}

// ExtraData is the piece's overall bounding dimensions (spec §4.2 step 1).
type ExtraData struct {
	Width  float64
	Height float64
	Depth  float64
}

// ShapeConstants are the magnetic shape constants C1, C2 and minimum area
// (spec §4.2): effective length = C1^2/C2, effective area = C1/C2,
// effective volume = C1^3/C2^2.
type ShapeConstants struct {
	C1          float64
	C2          float64
	MinimumArea float64
}

// EffectiveParameters are the lumped magnetic parameters derived from a
// ShapeConstants (spec glossary: Ae, le, Ve).
type EffectiveParameters struct {
	EffectiveLength float64
	EffectiveArea   float64
	EffectiveVolume float64
	MinimumArea     float64
}

// Derive computes the effective parameters from C1, C2 and minimum area.
// Per spec §4.2, a non-positive shape constant is a hard error.
func (sc ShapeConstants) Derive() (EffectiveParameters, error) {
	if sc.C1 <= 0 || sc.C2 <= 0 {
		return EffectiveParameters{}, InvalidGeometry{Reason: "non-positive shape constant"}
	}
	return EffectiveParameters{
		EffectiveLength: sc.C1 * sc.C1 / sc.C2,
		EffectiveArea:   sc.C1 / sc.C2,
		EffectiveVolume: sc.C1 * sc.C1 * sc.C1 / (sc.C2 * sc.C2),
		MinimumArea:     sc.MinimumArea,
	}, nil
}

// InvalidGeometry is the spec §7 InvalidGeometry error kind: a computed
// shape constant is non-positive, or a required dimension letter is
// missing.
type InvalidGeometry struct {
	Reason string
}

func (e InvalidGeometry) Error() string {
	return "invalid geometry: " + e.Reason
}

// Processed is the full output of CorePiece.Factory for one piece.
type Processed struct {
	Shape      catalog.Shape
	Dimensions map[string]float64 // flattened
	Window     WindingWindow
	Columns    []Column
	Extra      ExtraData
	Constants  ShapeConstants
	Effective  EffectiveParameters
}

// familyProcessor is the four-method interface spec §4.2 describes. Every
// concrete family delegates to one of a small number of implementations of
// this interface.
type familyProcessor interface {
	processWindingWindow(dims map[string]float64) (WindingWindow, error)
	processColumns(dims map[string]float64, ww WindingWindow) ([]Column, error)
	processExtraData(dims map[string]float64) (ExtraData, error)
	shapeConstants(dims map[string]float64, columns []Column, ww WindingWindow, extra ExtraData) (ShapeConstants, error)
}
