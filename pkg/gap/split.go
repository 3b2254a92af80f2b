package gap

import (
	"github.com/openmagnetics/magforge/pkg/core"
	"github.com/openmagnetics/magforge/pkg/corepiece"
)

// splitForTwoPieceSet implements spec §4.3's assembled-geometry paragraph:
// SUBTRACTIVE operations that straddle the y=0 split plane are clipped into
// two half-operations with recentered coordinates and reduced length;
// ADDITIVE gaps become SPACER geometry between the two halves. RESIDUAL
// gaps are the assembly's inherent air gap and need no geometry.
func splitForTwoPieceSet(c *core.Core, columns []corepiece.Column, protrudingMargin float64) {
	var machining []core.MachiningOperation
	var spacers []core.Spacer

	for _, g := range c.Geometry.Gapping {
		switch g.Type {
		case core.GapSubtractive:
			machining = append(machining, splitSubtractive(g)...)
		case core.GapAdditive:
			col := columns[g.Column]
			spacers = append(spacers, core.Spacer{
				Width:            col.Width * (1 + protrudingMargin),
				Height:           g.Length,
				Depth:            col.Depth * (1 + protrudingMargin),
				Coordinates:      g.Coordinates,
				ProtrudingMargin: protrudingMargin,
			})
		}
	}

	c.Geometry.Machining = machining
	c.Geometry.Spacers = spacers
}

// splitSubtractive clips a subtractive gap's removed-material region
// [y-L/2, y+L/2] against the y=0 plane, returning one MachiningOperation
// per half the region actually occupies.
func splitSubtractive(g core.ProcessedGap) []core.MachiningOperation {
	y, half := g.Coordinates[1], g.Length/2
	top := clampNonNegative(y+half) - clampNonNegative(y-half)
	bottom := g.Length - top

	var out []core.MachiningOperation
	if top > 0 {
		lo, hi := maxf(0, y-half), maxf(0, y+half)
		coords := g.Coordinates
		coords[1] = (lo + hi) / 2
		out = append(out, core.MachiningOperation{Length: top, Coordinates: coords})
	}
	if bottom > 0 {
		lo, hi := minf(0, y-half), minf(0, y+half)
		coords := g.Coordinates
		coords[1] = (lo + hi) / 2
		out = append(out, core.MachiningOperation{Length: bottom, Coordinates: coords})
	}
	return out
}

func clampNonNegative(x float64) float64 { return maxf(0, x) }

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
