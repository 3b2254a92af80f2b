package catalog

import "fmt"

// Catalog is the read-only, in-memory collection of all building-block
// catalogs (spec §5: "loaded at library initialization and are read-only
// thereafter"). Catalog ingestion (parsing vendor JSON) is out of scope;
// New and the Add* methods are the programmatic loading surface.
type Catalog struct {
	shapes      map[string]Shape
	materials   map[string]Material
	wires       map[string]Wire
	bobbins     map[string]Bobbin
	insulations map[string]InsulationMaterial
}

// New returns an empty Catalog ready to be populated.
func New() *Catalog {
	return &Catalog{
		shapes:      map[string]Shape{},
		materials:   map[string]Material{},
		wires:       map[string]Wire{},
		bobbins:     map[string]Bobbin{},
		insulations: map[string]InsulationMaterial{},
	}
}

// UnknownEntity is returned when a reference by name is not found in the
// catalog (spec §7).
type UnknownEntity struct {
	Kind string
	Name string
}

func (e UnknownEntity) Error() string {
	return fmt.Sprintf("catalog: unknown %s %q", e.Kind, e.Name)
}

// AddShape registers a shape, validating its required dimensions.
func (c *Catalog) AddShape(s Shape) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c.shapes[s.Name] = s
	return nil
}

// Shape looks up a shape by name.
func (c *Catalog) Shape(name string) (Shape, error) {
	s, ok := c.shapes[name]
	if !ok {
		return Shape{}, UnknownEntity{Kind: "core shape", Name: name}
	}
	return s, nil
}

// Shapes returns every registered shape, for adviser candidate enumeration.
func (c *Catalog) Shapes() []Shape {
	out := make([]Shape, 0, len(c.shapes))
	for _, s := range c.shapes {
		out = append(out, s)
	}
	return out
}

// AddMaterial registers a material.
func (c *Catalog) AddMaterial(m Material) {
	c.materials[m.Name] = m
}

// Material looks up a material by name.
func (c *Catalog) Material(name string) (Material, error) {
	m, ok := c.materials[name]
	if !ok {
		return Material{}, UnknownEntity{Kind: "core material", Name: name}
	}
	return m, nil
}

// Materials returns every registered material.
func (c *Catalog) Materials() []Material {
	out := make([]Material, 0, len(c.materials))
	for _, m := range c.materials {
		out = append(out, m)
	}
	return out
}

// MaterialsByFamily returns every registered material of the given family,
// used by the adviser's material-substitution expansion.
func (c *Catalog) MaterialsByFamily(family MaterialFamily) []Material {
	out := []Material{}
	for _, m := range c.materials {
		if m.Family == family {
			out = append(out, m)
		}
	}
	return out
}

// AddWire registers a wire.
func (c *Catalog) AddWire(w Wire) {
	c.wires[w.Name] = w
}

// Wire looks up a wire by name.
func (c *Catalog) Wire(name string) (Wire, error) {
	w, ok := c.wires[name]
	if !ok {
		return Wire{}, UnknownEntity{Kind: "wire", Name: name}
	}
	return w, nil
}

// Wires returns every registered wire.
func (c *Catalog) Wires() []Wire {
	out := make([]Wire, 0, len(c.wires))
	for _, w := range c.wires {
		out = append(out, w)
	}
	return out
}

// AddBobbin registers a bobbin.
func (c *Catalog) AddBobbin(b Bobbin) {
	c.bobbins[b.Name] = b
}

// Bobbin looks up a bobbin by name.
func (c *Catalog) Bobbin(name string) (Bobbin, error) {
	b, ok := c.bobbins[name]
	if !ok {
		return Bobbin{}, UnknownEntity{Kind: "bobbin", Name: name}
	}
	return b, nil
}

// AddInsulation registers an insulation material.
func (c *Catalog) AddInsulation(i InsulationMaterial) {
	c.insulations[i.Name] = i
}

// Insulation looks up an insulation material by name.
func (c *Catalog) Insulation(name string) (InsulationMaterial, error) {
	i, ok := c.insulations[name]
	if !ok {
		return InsulationMaterial{}, UnknownEntity{Kind: "insulation material", Name: name}
	}
	return i, nil
}
