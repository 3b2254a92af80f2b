// Package catalog holds the in-memory representations of the physical
// building-block catalogs this engine consumes: core shapes, core
// materials, wires, bobbins and insulation materials (spec §3). Ingesting
// vendor JSON into these types is out of scope (spec §1); callers populate
// catalogs programmatically or via their own ingestion layer and hand the
// resulting Catalog to the adviser/simulator.
package catalog

import (
	"fmt"

	"github.com/openmagnetics/magforge/pkg/dimension"
)

// ShapeFamily is the closed set of geometric core-shape families (spec §3).
type ShapeFamily string

const (
	FamilyE        ShapeFamily = "E"
	FamilyEC       ShapeFamily = "EC"
	FamilyETD      ShapeFamily = "ETD"
	FamilyER       ShapeFamily = "ER"
	FamilyEFD      ShapeFamily = "EFD"
	FamilyEL       ShapeFamily = "EL"
	FamilyEP       ShapeFamily = "EP"
	FamilyEPX      ShapeFamily = "EPX"
	FamilyLP       ShapeFamily = "LP"
	FamilyEQ       ShapeFamily = "EQ"
	FamilyP        ShapeFamily = "P"
	FamilyPlanarE  ShapeFamily = "PLANAR_E"
	FamilyPlanarEL ShapeFamily = "PLANAR_EL"
	FamilyPlanarER ShapeFamily = "PLANAR_ER"
	FamilyPM       ShapeFamily = "PM"
	FamilyPQ       ShapeFamily = "PQ"
	FamilyRM       ShapeFamily = "RM"
	FamilyU        ShapeFamily = "U"
	FamilyUR       ShapeFamily = "UR"
	FamilyUT       ShapeFamily = "UT"
	FamilyT        ShapeFamily = "T" // toroidal
	FamilyC        ShapeFamily = "C"
)

// RequiredLetters lists the dimension letters each family requires to be
// present in a Shape's Dimensions map. A family processor returns
// InvalidGeometry if any are missing (spec §7).
var RequiredLetters = map[ShapeFamily][]string{
	FamilyE:        {"A", "B", "C", "D", "E", "F"},
	FamilyEC:       {"A", "B", "C", "D", "E", "F"},
	FamilyETD:      {"A", "B", "C", "D", "E", "F"},
	FamilyER:       {"A", "B", "C", "D", "E", "F"},
	FamilyEFD:      {"A", "B", "C", "D", "E", "F", "K"},
	FamilyEL:       {"A", "B", "C", "D", "E", "F"},
	FamilyEP:       {"A", "B", "C", "D", "E", "F"},
	FamilyEPX:      {"A", "B", "C", "D", "E", "F"},
	FamilyLP:       {"A", "B", "C", "D", "E", "F"},
	FamilyEQ:       {"A", "B", "C", "D", "E", "F"},
	FamilyP:        {"A", "B", "C", "D", "E", "F"},
	FamilyPlanarE:  {"A", "B", "C", "D", "E", "F"},
	FamilyPlanarEL: {"A", "B", "C", "D", "E", "F"},
	FamilyPlanarER: {"A", "B", "C", "D", "E", "F"},
	FamilyPM:       {"A", "B", "C", "D", "E", "F"},
	FamilyPQ:       {"A", "B", "C", "D", "E", "F"},
	FamilyRM:       {"A", "B", "C", "D", "E", "F"},
	FamilyU:        {"A", "B", "C", "D", "H"},
	FamilyUR:       {"A", "B", "C", "D", "H"},
	FamilyUT:       {"A", "B", "C", "D", "H"},
	FamilyT:        {"A", "B", "C"}, // outer diameter, inner diameter, height
	FamilyC:        {"A", "B", "C", "D", "H"},
}

// Shape is the CoreShape data type (spec §3): a family tag, a subtype
// string and a dimension-letter -> dimension-with-tolerance map.
type Shape struct {
	Name       string
	Family     ShapeFamily
	Subtype    string
	Dimensions dimension.Map
}

// Validate checks that every dimension letter the family requires is
// present. Returns an error naming the missing letter when not;
// corepiece.Factory reports it as InvalidGeometry (spec §7).
func (s Shape) Validate() error {
	required, ok := RequiredLetters[s.Family]
	if !ok {
		return fmt.Errorf("catalog: unknown shape family %q", s.Family)
	}
	for _, letter := range required {
		if _, present := s.Dimensions[letter]; !present {
			return fmt.Errorf("catalog: shape %q family %s missing required dimension %q", s.Name, s.Family, letter)
		}
	}
	return nil
}

// ShapeOrName is the "shape or name" JSON union type (spec §9): it is
// resolved eagerly at ingestion to the full Shape object, while keeping the
// original name around for round-tripping.
type ShapeOrName struct {
	Name     string
	Resolved *Shape
}

// Resolve looks the name up in cat if Resolved is not already set.
func (s *ShapeOrName) Resolve(cat *Catalog) (Shape, error) {
	if s.Resolved != nil {
		return *s.Resolved, nil
	}
	shape, err := cat.Shape(s.Name)
	if err != nil {
		return Shape{}, err
	}
	s.Resolved = &shape
	return shape, nil
}
