// Package gap implements the gap processor (spec §4.3): given a Core with
// its functional gapping list and processed columns, it emits a
// fully-specified gapping list and, for TWO_PIECE_SET-class assemblies, the
// geometric machining operations and spacers that realize it.
package gap

import (
	"github.com/openmagnetics/magforge/pkg/core"
	"github.com/openmagnetics/magforge/pkg/settings"
)

// Process implements the five-step policy of spec §4.3 and attaches the
// result to c.Geometry.Gapping. For TWO_PIECE_SET, PIECE_AND_PLATE and
// CLOSED_SHAPE cores it also splits subtractive operations across the y=0
// plane and turns additive gaps into spacers.
//
// assign dispatches purely on gap count/type against the column count; any
// Coordinates on the functional gaps are caller-supplied hints for a prior
// run and are never consulted here, so a stale or misaligned Coordinates
// value cannot corrupt the assignment.
func Process(c *core.Core, s *settings.Settings) error {
	if c.Processed == nil {
		return core.InvalidDesignRequirements{Reason: "gap processing requires a processed core"}
	}
	columns := c.Processed.Columns
	if len(columns) == 0 {
		return core.InvalidDesignRequirements{Reason: "core has no columns to gap"}
	}

	processed := assign(c.Functional.Gapping, columns, s.ResidualGapLength)

	if c.Geometry == nil {
		c.Geometry = &core.GeometricalDescription{}
	}
	c.Geometry.Gapping = processed

	switch c.Functional.Type {
	case core.TwoPieceSet, core.PieceAndPlate, core.ClosedShape:
		splitForTwoPieceSet(c, columns, s.SpacerProtrudingMargin)
	}

	return nil
}
