// Package core implements the assembled Core device (spec §3): the
// functional description a caller supplies (shape, material, stack count,
// gapping), the processed description computed from it (columns, winding
// windows, effective parameters) and an optional geometrical description
// for rendering/machining.
package core

import (
	"fmt"

	"github.com/openmagnetics/magforge/pkg/catalog"
	"github.com/openmagnetics/magforge/pkg/corepiece"
	"github.com/openmagnetics/magforge/pkg/dimension"
)

// Type is the closed assembly-type set (spec §3).
type Type string

const (
	Toroidal      Type = "TOROIDAL"
	TwoPieceSet   Type = "TWO_PIECE_SET"
	PieceAndPlate Type = "PIECE_AND_PLATE"
	ClosedShape   Type = "CLOSED_SHAPE"
)

// FunctionalDescription is what a caller supplies to build a Core (spec §3).
type FunctionalDescription struct {
	Shape        catalog.ShapeOrName
	Material     catalog.MaterialOrName
	NumberStacks int
	Gapping      []FunctionalGap
	Type         Type
}

// ProcessedDescription is computed by Process from the functional
// description (spec §3): columns and winding windows re-centered on the
// assembled device, plus the assembled effective parameters.
type ProcessedDescription struct {
	Columns       []corepiece.Column
	WindingWindow corepiece.WindingWindow
	Effective     corepiece.EffectiveParameters
}

// Core is the assembled device (spec §3).
type Core struct {
	Functional FunctionalDescription
	Processed  *ProcessedDescription
	Geometry   *GeometricalDescription
}

// InvalidDesignRequirements is the spec §7 error kind for a Core whose
// functional description cannot be assembled (bad stack count, unknown
// type, toroid with more than one stack, etc).
type InvalidDesignRequirements struct {
	Reason string
}

func (e InvalidDesignRequirements) Error() string {
	return "invalid design requirements: " + e.Reason
}

// Process runs the assembly pipeline: resolve shape/material, run
// CorePiece.Factory on one piece, then derive the assembled processed
// description. For TWO_PIECE_SET the per-piece shape constants are halved
// (one piece is half the magnetic path) and the assembled core doubles
// them back (spec §4.2); effective area and minimum area are not doubled,
// since area does not change when two pieces are placed end to end along
// the flux path, but both (and each column's area) scale with NumberStacks.
func Process(c *Core, cat *catalog.Catalog) error {
	shape, err := c.Functional.Shape.Resolve(cat)
	if err != nil {
		return err
	}
	if _, err := c.Functional.Material.Resolve(cat); err != nil {
		return err
	}
	if c.Functional.NumberStacks <= 0 {
		return InvalidDesignRequirements{Reason: "number of stacks must be positive"}
	}

	piece, err := corepiece.Factory(shape)
	if err != nil {
		return err
	}

	constants := piece.Constants
	switch c.Functional.Type {
	case Toroidal:
		if c.Functional.NumberStacks != 1 {
			return InvalidDesignRequirements{Reason: "a toroidal core has exactly one stack"}
		}
	case TwoPieceSet, PieceAndPlate, ClosedShape:
		// Each piece in the factory output already represents one half of
		// the assembly's flux path; the assembled core's C1, C2 are double
		// the single-piece values (spec §4.2).
		constants.C1 *= 2
		constants.C2 *= 2
	default:
		return InvalidDesignRequirements{Reason: fmt.Sprintf("unknown core type %q", c.Functional.Type)}
	}

	effective, err := constants.Derive()
	if err != nil {
		return err
	}
	// Minimum area and effective area are per-unit-cross-section and do not
	// scale with the number of series pieces; only length (and therefore
	// volume) does, via C1/C2 above.
	effective.EffectiveArea = piece.Effective.EffectiveArea
	effective.MinimumArea = piece.Effective.MinimumArea

	stacks := float64(c.Functional.NumberStacks)
	effective.EffectiveArea *= stacks
	effective.MinimumArea *= stacks
	effective.EffectiveVolume = effective.EffectiveLength * effective.EffectiveArea

	columns := recenterColumns(piece.Columns, c.Functional.Type)
	for i := range columns {
		columns[i].Area *= stacks
	}

	c.Processed = &ProcessedDescription{
		Columns:       columns,
		WindingWindow: piece.Window,
		Effective:     effective,
	}
	return nil
}

// recenterColumns re-centers a single piece's column list on the assembled
// device. For a toroid the piece already spans the full assembly. For
// TWO_PIECE_SET/PIECE_AND_PLATE/CLOSED_SHAPE, the processed piece is the
// top half; it is mirrored into a y<0 bottom half by Gap processing when
// needed (spec §4.3), so Core itself only needs to expose the single
// (already-centered) column list shared by both halves.
func recenterColumns(cols []corepiece.Column, assemblyType Type) []corepiece.Column {
	out := make([]corepiece.Column, len(cols))
	copy(out, cols)
	return out
}

// Fits reports whether the assembled core's bounding box is within the
// given maximum width/height/depth (spec's supplemented "Core::fits"
// bounding-box check, SPEC_FULL.md SUPPLEMENTED FEATURES section).
func (c Core) Fits(maxWidth, maxHeight, maxDepth float64, cat *catalog.Catalog) (bool, error) {
	shape, err := c.Functional.Shape.Resolve(cat)
	if err != nil {
		return false, err
	}
	dims, err := dimension.Flatten(shape.Dimensions)
	if err != nil {
		return false, err
	}
	piece, err := corepiece.Factory(shape)
	if err != nil {
		return false, err
	}
	_ = dims
	width := piece.Extra.Width
	height := piece.Extra.Height
	depth := piece.Extra.Depth
	if c.Functional.Type == TwoPieceSet || c.Functional.Type == PieceAndPlate || c.Functional.Type == ClosedShape {
		height *= 2
	}
	return width <= maxWidth && height <= maxHeight && depth <= maxDepth, nil
}

// MaximumDimensions returns the assembled core's bounding box.
func (c Core) MaximumDimensions(cat *catalog.Catalog) (width, height, depth float64, err error) {
	shape, err := c.Functional.Shape.Resolve(cat)
	if err != nil {
		return 0, 0, 0, err
	}
	piece, err := corepiece.Factory(shape)
	if err != nil {
		return 0, 0, 0, err
	}
	height = piece.Extra.Height
	if c.Functional.Type == TwoPieceSet || c.Functional.Type == PieceAndPlate || c.Functional.Type == ClosedShape {
		height *= 2
	}
	return piece.Extra.Width, height, piece.Extra.Depth, nil
}
