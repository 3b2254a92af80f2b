// Package mas implements the spec §3/§6 data model for Inputs, Outputs and
// the Mas document itself: the {inputs, magnetic, outputs} triple that is
// this engine's unit of persistence and exchange (spec §3 "Mas"), grounded
// on original_source/src/constructive_models/Mas.h's three-field shape.
// JSON wire-format round-tripping is out of scope (spec §1); struct tags
// here mark the ingestion/emission boundary a caller's own serializer
// would target.
package mas

import (
	"github.com/google/uuid"

	"github.com/openmagnetics/magforge/pkg/catalog"
	"github.com/openmagnetics/magforge/pkg/core"
	"github.com/openmagnetics/magforge/pkg/waveform"
)

// IsolationSide is the closed set a winding's galvanic isolation group
// belongs to (spec §3).
type IsolationSide string

const (
	Primary   IsolationSide = "primary"
	Secondary IsolationSide = "secondary"
	Tertiary  IsolationSide = "tertiary"
)

// DesignRequirements is the abstract converter requirement set a topology
// or a caller hands the engine (spec §3): required magnetizing inductance,
// turns ratios, isolation sides and an optional topology tag.
type DesignRequirements struct {
	MagnetizingInductance DimensionRange   `json:"magnetizingInductance"`
	TurnsRatios           []DimensionRange `json:"turnsRatios"`
	IsolationSides        []IsolationSide  `json:"isolationSides"`
	Topology              string           `json:"topology,omitempty"`
}

// DimensionRange mirrors pkg/dimension.WithTolerance's {min, nom, max}
// shape without importing it directly, keeping DesignRequirements callers
// free to build these from the dimension package's own resolver at the
// ingestion boundary (spec §9 union-type note: eager resolution happens at
// ingestion, not in this package).
type DimensionRange struct {
	Minimum *float64 `json:"minimum,omitempty"`
	Nominal *float64 `json:"nominal,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`
}

// Value resolves a DimensionRange to a scalar, preferring Nominal, then
// the average of Minimum/Maximum, then whichever bound is present (spec
// §4.1's NOMINAL-preference fallback chain, specialized to this package's
// flattened DesignRequirements rather than the full dimension package
// Preference machinery, since a design requirement only ever needs its
// nominal value).
func (d DimensionRange) Value() (float64, bool) {
	if d.Nominal != nil {
		return *d.Nominal, true
	}
	if d.Minimum != nil && d.Maximum != nil {
		return (*d.Minimum + *d.Maximum) / 2, true
	}
	if d.Maximum != nil {
		return *d.Maximum, true
	}
	if d.Minimum != nil {
		return *d.Minimum, true
	}
	return 0, false
}

// Conditions are the operating-point-wide conditions (spec §3).
type Conditions struct {
	AmbientTemperature float64 `json:"ambientTemperature"`
	Cooling            string  `json:"cooling,omitempty"`
}

// Signal is a {waveform, processed summary, harmonic decomposition} triple
// (spec §3).
type Signal struct {
	Waveform   waveform.Waveform    `json:"waveform"`
	Processed  waveform.Summary     `json:"processed"`
	Harmonics  []waveform.Harmonic  `json:"harmonics"`
}

// Excitation is one winding's per-operating-point excitation (spec §3).
type Excitation struct {
	Name      string  `json:"name"`
	Frequency float64 `json:"frequency"`
	Voltage   Signal  `json:"voltage"`
	Current   Signal  `json:"current"`
}

// OperatingPoint is one evaluation condition (spec §3).
type OperatingPoint struct {
	Name        string       `json:"name,omitempty"`
	Conditions  Conditions   `json:"conditions"`
	Excitations []Excitation `json:"excitationsPerWinding"`
}

// Inputs is the Inputs data type (spec §3): DesignRequirements plus a list
// of OperatingPoints.
type Inputs struct {
	DesignRequirements DesignRequirements `json:"designRequirements"`
	OperatingPoints    []OperatingPoint   `json:"operatingPoints"`
}

// InvalidDesignRequirements is the spec §7 error kind raised at the
// Inputs-construction boundary.
type InvalidDesignRequirements struct {
	Reason string
}

func (e InvalidDesignRequirements) Error() string {
	return "invalid design requirements: " + e.Reason
}

// Validate checks the structural invariants spec §7 calls out for
// InvalidDesignRequirements: a non-empty operating-point list, and a
// consistent winding (excitation) count across every operating point —
// the spec's own resolution of its Open Question (§9) on multi-output
// Flyback voltage-count mismatches: treated as a hard error here.
func (in Inputs) Validate() error {
	if len(in.OperatingPoints) == 0 {
		return InvalidDesignRequirements{Reason: "operating point list is empty"}
	}
	windingCount := len(in.OperatingPoints[0].Excitations)
	for i, op := range in.OperatingPoints {
		if len(op.Excitations) != windingCount {
			return InvalidDesignRequirements{Reason: "mismatched winding counts across operating points"}
		}
		if len(op.Excitations) == 0 {
			return InvalidDesignRequirements{Reason: "operating point has no excitations"}
		}
		_ = i
	}
	return nil
}

// PerWindingLosses is one winding's share of the ohmic + skin + proximity
// loss breakdown (spec §3 Outputs).
type PerWindingLosses struct {
	Name             string  `json:"name"`
	OhmicLosses      float64 `json:"ohmicLosses"`
	SkinEffectLosses float64 `json:"skinEffectLosses"`
	ProximityLosses  float64 `json:"proximityLosses"`
}

// Outputs is the per-operating-point computed result set (spec §3).
type Outputs struct {
	OperatingPointName   string             `json:"operatingPointName,omitempty"`
	CoreLosses           float64            `json:"coreLosses"`
	WindingLosses         float64            `json:"windingLosses"`
	WindingLossesBreakdown []PerWindingLosses `json:"windingLossesBreakdown,omitempty"`
	MagnetizingInductance float64            `json:"magnetizingInductance"`
	LeakageInductance     float64            `json:"leakageInductance"`
	MaximumFluxDensity    float64            `json:"maximumFluxDensity"`
	TemperatureRise       float64            `json:"temperatureRise"`
	StrayCapacitance      float64            `json:"strayCapacitance"`
	Efficiency            float64            `json:"efficiency"`
}

// Mas is the canonical {inputs, magnetic, outputs} document (spec §3, §6):
// the unit of persistence and exchange. ID is the document identity, a
// random google/uuid assigned by New.
type Mas struct {
	ID       uuid.UUID `json:"-"`
	Inputs   Inputs    `json:"inputs"`
	Magnetic Magnetic  `json:"magnetic"`
	Outputs  []Outputs `json:"outputs"`
}

// Magnetic is the spec §3 Magnetic data type: a Core plus a Coil. It is
// defined here (rather than a dedicated pkg/magnetic) because nothing else
// in this module needs to import "Core + Coil" independently of the Mas
// document that carries it. pkg/simulator builds *Magnetic values; New
// wraps one in a Mas document.
type Magnetic struct {
	Core core.Core    `json:"core"`
	Coil CoilSnapshot `json:"coil"`
}

// CoilSnapshot is the serializable projection of pkg/coil.Coil this
// package carries inside a Magnetic: the per-winding functional
// description and placed turn counts. pkg/coil's Section/Layer/Turn values
// are not carried.
type CoilSnapshot struct {
	FunctionalDescription []WindingFunctionalDescription `json:"functionalDescription"`
	NumberTurnsPlaced     []int                           `json:"-"`
}

// WindingFunctionalDescription is the spec §3 CoilFunctionalDescription
// entry: per-winding name, isolation side, turns, parallels and wire.
type WindingFunctionalDescription struct {
	Name            string              `json:"name"`
	IsolationSide   IsolationSide       `json:"isolationSide"`
	NumberTurns     int                 `json:"numberTurns"`
	NumberParallels int                 `json:"numberParallels"`
	Wire            catalog.WireOrName  `json:"wire"`
}

// New allocates a fresh Mas document with a random identity.
func New(in Inputs, magnetic Magnetic) Mas {
	return Mas{ID: uuid.New(), Inputs: in, Magnetic: magnetic, Outputs: []Outputs{}}
}

// AppendOutputs is the only mutator an assembled Mas exposes post-build
// (spec §3 lifecycle: "Outputs are append-only per operating point").
func (m *Mas) AppendOutputs(o Outputs) {
	m.Outputs = append(m.Outputs, o)
}
