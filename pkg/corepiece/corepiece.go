package corepiece

import (
	"github.com/openmagnetics/magforge/pkg/catalog"
	"github.com/openmagnetics/magforge/pkg/dimension"
)

// processorFor returns the familyProcessor that implements shape's family
// (spec §9: families compose by delegating to one of a small number of
// concrete implementations).
func processorFor(family catalog.ShapeFamily) (familyProcessor, error) {
	switch family {
	case catalog.FamilyETD, catalog.FamilyER, catalog.FamilyPM, catalog.FamilyPQ, catalog.FamilyRM:
		return roundCenterProcessor{ClipFraction: 1.0}, nil
	case catalog.FamilyEC:
		return roundCenterProcessor{ClipFraction: 0.9}, nil
	case catalog.FamilyE, catalog.FamilyEFD, catalog.FamilyEL, catalog.FamilyEP, catalog.FamilyEPX,
		catalog.FamilyLP, catalog.FamilyEQ, catalog.FamilyP,
		catalog.FamilyPlanarE, catalog.FamilyPlanarEL, catalog.FamilyPlanarER:
		return rectCenterProcessor{}, nil
	case catalog.FamilyU, catalog.FamilyUR, catalog.FamilyUT, catalog.FamilyC:
		return uShapeProcessor{}, nil
	case catalog.FamilyT:
		return toroidProcessor{}, nil
	default:
		return nil, InvalidGeometry{Reason: "unsupported shape family " + string(family)}
	}
}

// Factory runs the fixed CorePiece processing pipeline (spec §4.2): flatten
// dimensions, then winding window, columns, extra data and shape constants
// in that order, deriving the final effective parameters from the result.
func Factory(shape catalog.Shape) (*Processed, error) {
	if err := shape.Validate(); err != nil {
		return nil, InvalidGeometry{Reason: err.Error()}
	}
	dims, err := dimension.Flatten(shape.Dimensions)
	if err != nil {
		return nil, err
	}

	proc, err := processorFor(shape.Family)
	if err != nil {
		return nil, err
	}

	ww, err := proc.processWindingWindow(dims)
	if err != nil {
		return nil, err
	}
	columns, err := proc.processColumns(dims, ww)
	if err != nil {
		return nil, err
	}
	extra, err := proc.processExtraData(dims)
	if err != nil {
		return nil, err
	}
	constants, err := proc.shapeConstants(dims, columns, ww, extra)
	if err != nil {
		return nil, err
	}
	effective, err := constants.Derive()
	if err != nil {
		return nil, err
	}

	return &Processed{
		Shape:      shape,
		Dimensions: dims,
		Window:     ww,
		Columns:    columns,
		Extra:      extra,
		Constants:  constants,
		Effective:  effective,
	}, nil
}
