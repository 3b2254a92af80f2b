package core

import "github.com/openmagnetics/magforge/pkg/corepiece"

// GapType is the closed CoreGap type tag (spec §3).
type GapType string

const (
	GapAdditive    GapType = "ADDITIVE"
	GapSubtractive GapType = "SUBTRACTIVE"
	GapResidual    GapType = "RESIDUAL"
)

// FunctionalGap is a caller-supplied gap entry before processing (spec §3):
// only type, length and (optionally) coordinates are meaningful input;
// everything else is derived by the gap processor.
type FunctionalGap struct {
	Type        GapType
	Length      float64
	Coordinates *[3]float64 // nil means "not yet placed"
}

// ProcessedGap is a fully-specified CoreGap (spec §3, §4.3): every field is
// populated by the gap processor.
type ProcessedGap struct {
	Type                           GapType
	Length                         float64
	Coordinates                    [3]float64
	DistanceClosestNormalSurface   float64
	DistanceClosestParallelSurface float64
	Shape                          corepiece.ColumnShape
	Area                           float64
	SectionWidth                   float64
	SectionDepth                   float64

	// Column is the index into Processed.Columns this gap is attached to
	// (spec §3 invariant: "every gap is associated with exactly one
	// column").
	Column int
}

// MachiningOperation is one subtractive operation on a piece's geometry
// (spec §3 "subtractive machining operations"), produced when a SUBTRACTIVE
// gap is split across a TWO_PIECE_SET's y=0 plane (spec §4.3).
type MachiningOperation struct {
	Length      float64
	Coordinates [3]float64
}

// Spacer is an ADDITIVE gap's physical representation between the two
// halves of a TWO_PIECE_SET assembly (spec §4.3).
type Spacer struct {
	Width, Height, Depth float64
	Coordinates          [3]float64
	// ProtrudingMargin is how far the spacer extends beyond the column
	// footprint it's inserted under, as a fraction of the column's width.
	ProtrudingMargin float64
}

// PieceGeometry is one physical piece's placement within the assembly.
type PieceGeometry struct {
	Coordinates [3]float64
	RotationDeg float64
}

// GeometricalDescription is the optional per-piece rendering/machining
// description (spec §3).
type GeometricalDescription struct {
	Pieces      []PieceGeometry
	Gapping     []ProcessedGap
	Machining   []MachiningOperation
	Spacers     []Spacer
}
