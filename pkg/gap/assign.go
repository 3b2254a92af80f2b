package gap

import (
	"github.com/openmagnetics/magforge/pkg/core"
	"github.com/openmagnetics/magforge/pkg/corepiece"
)

// windingColumnIndex returns the index of the column that carries the
// non-residual gaps: the single CENTRAL column, or, for U-cores without
// one, the first LATERAL column (spec §4.3 step 4).
func windingColumnIndex(columns []corepiece.Column) int {
	for i, c := range columns {
		if c.Type == corepiece.ColumnCentral {
			return i
		}
	}
	return 0
}

// assign implements steps 1-4 of the policy of spec §4.3. It dispatches on
// gap count and type only; coordinates on the functional gaps are not
// consulted here or in Process.
func assign(gaps []core.FunctionalGap, columns []corepiece.Column, residualLength float64) []core.ProcessedGap {
	switch {
	case len(gaps) == 0:
		return assignResidualEverywhere(columns, residualLength)
	case len(gaps) < len(columns):
		return assignBroadcastLast(gaps, columns)
	case len(gaps) == len(columns) && (allResidual(gaps) || allNonResidual(gaps)):
		return assignOneToOne(gaps, columns)
	default:
		return assignWindingAndReturn(gaps, columns)
	}
}

func allResidual(gaps []core.FunctionalGap) bool {
	for _, g := range gaps {
		if g.Type != core.GapResidual {
			return false
		}
	}
	return true
}

func allNonResidual(gaps []core.FunctionalGap) bool {
	for _, g := range gaps {
		if g.Type == core.GapResidual {
			return false
		}
	}
	return true
}

// placeAtColumnCenter builds a ProcessedGap centered on column's coordinates.
func placeAtColumnCenter(g core.FunctionalGap, colIndex int, column corepiece.Column) core.ProcessedGap {
	return core.ProcessedGap{
		Type:                           g.Type,
		Length:                         g.Length,
		Coordinates:                    column.Coordinates,
		DistanceClosestNormalSurface:   column.Height / 2,
		DistanceClosestParallelSurface: column.Width / 2,
		Shape:                          column.Shape,
		Area:                           column.Area,
		SectionWidth:                   column.Width,
		SectionDepth:                   column.Depth,
		Column:                         colIndex,
	}
}

func assignResidualEverywhere(columns []corepiece.Column, residualLength float64) []core.ProcessedGap {
	out := make([]core.ProcessedGap, len(columns))
	for i, col := range columns {
		out[i] = placeAtColumnCenter(core.FunctionalGap{Type: core.GapResidual, Length: residualLength}, i, col)
	}
	return out
}

func assignBroadcastLast(gaps []core.FunctionalGap, columns []corepiece.Column) []core.ProcessedGap {
	out := make([]core.ProcessedGap, len(columns))
	last := gaps[len(gaps)-1]
	for i, col := range columns {
		g := last
		if i < len(gaps) {
			g = gaps[i]
		}
		out[i] = placeAtColumnCenter(g, i, col)
	}
	return out
}

func assignOneToOne(gaps []core.FunctionalGap, columns []corepiece.Column) []core.ProcessedGap {
	out := make([]core.ProcessedGap, len(columns))
	for i, col := range columns {
		out[i] = placeAtColumnCenter(gaps[i], i, col)
	}
	return out
}

// assignWindingAndReturn implements spec §4.3 step 4: non-residual gaps go
// on the winding column, equally spaced along its height; residual gaps go
// on the return (remaining) columns, broadcasting the last if there are
// fewer residuals than return columns.
func assignWindingAndReturn(gaps []core.FunctionalGap, columns []corepiece.Column) []core.ProcessedGap {
	windingIdx := windingColumnIndex(columns)
	windingCol := columns[windingIdx]

	var nonResidual, residual []core.FunctionalGap
	for _, g := range gaps {
		if g.Type == core.GapResidual {
			residual = append(residual, g)
		} else {
			nonResidual = append(nonResidual, g)
		}
	}

	out := make([]core.ProcessedGap, 0, len(columns))

	n := len(nonResidual)
	if n > 0 {
		chunk := windingCol.Height / float64(n+1)
		offset := -chunk * float64(n-1) / 2
		for i, g := range nonResidual {
			y := offset + float64(i)*chunk
			coords := windingCol.Coordinates
			coords[1] = y
			out = append(out, core.ProcessedGap{
				Type:                           g.Type,
				Length:                         g.Length,
				Coordinates:                    coords,
				DistanceClosestNormalSurface:   windingCol.Height/2 - absf(y),
				DistanceClosestParallelSurface: windingCol.Width / 2,
				Shape:                          windingCol.Shape,
				Area:                           windingCol.Area,
				SectionWidth:                   windingCol.Width,
				SectionDepth:                   windingCol.Depth,
				Column:                         windingIdx,
			})
		}
	}

	returnIdx := 0
	for i, col := range columns {
		if i == windingIdx {
			continue
		}
		if len(residual) == 0 {
			returnIdx++
			continue
		}
		g := residual[len(residual)-1]
		if returnIdx < len(residual) {
			g = residual[returnIdx]
		}
		out = append(out, placeAtColumnCenter(g, i, col))
		returnIdx++
	}

	return out
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
