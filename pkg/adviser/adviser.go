// Package adviser implements the candidate-core search and scoring
// pipeline (spec §4.8): given Inputs and a catalog search mode, it builds
// and simulates a Magnetic for every candidate core, discards whatever
// fails a strictly-required filter, normalizes every surviving filter's
// raw values across the candidate set, and returns the weighted-score
// ranking. Grounded on original_source/src/advisers/CoreAdviser.h's
// mode/filter-configuration shape and MagneticFilter.h's
// evaluate_magnetic(Magnetic, Inputs) -> (satisfies, score) contract.
package adviser

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/openmagnetics/magforge/internal/consts"
	"github.com/openmagnetics/magforge/internal/obs"
	"github.com/openmagnetics/magforge/pkg/catalog"
	"github.com/openmagnetics/magforge/pkg/coil"
	"github.com/openmagnetics/magforge/pkg/core"
	"github.com/openmagnetics/magforge/pkg/mas"
	"github.com/openmagnetics/magforge/pkg/reluctance"
	"github.com/openmagnetics/magforge/pkg/settings"
	"github.com/openmagnetics/magforge/pkg/simulator"
	"github.com/openmagnetics/magforge/pkg/waveform"
	"github.com/openmagnetics/magforge/pkg/windingloss"
)

// Mode is the closed set of candidate sources (spec §4.8, CoreAdviser.h's
// CoreAdviserModes).
type Mode string

const (
	// AvailableCores restricts the sweep to catalog shape/material pairs
	// taken as already-assembled parts: no stack-count expansion.
	AvailableCores Mode = "AVAILABLE_CORES"
	// StandardCores sweeps every catalog shape/material pair and also
	// expands each into its stacked variants up to MaxStacks.
	StandardCores Mode = "STANDARD_CORES"
	// CustomCores restricts the sweep to the caller-supplied CustomCores
	// list, bypassing catalog enumeration entirely.
	CustomCores Mode = "CUSTOM_CORES"
)

// FilterKind is the closed set of scoring dimensions spec §4.8 names,
// mirrored from MagneticFilter.h's concrete subclasses plus CoreAdviser.h's
// _filterConfiguration keys.
type FilterKind string

const (
	FilterAreaProduct                   FilterKind = "AREA_PRODUCT"
	FilterEnergyStored                  FilterKind = "ENERGY_STORED"
	FilterEstimatedCost                 FilterKind = "ESTIMATED_COST"
	FilterCost                          FilterKind = "COST"
	FilterCoreAndDcLosses               FilterKind = "CORE_AND_DC_LOSSES"
	FilterCoreDcAndSkinLosses           FilterKind = "CORE_DC_AND_SKIN_LOSSES"
	FilterLosses                        FilterKind = "LOSSES"
	FilterLossesNoProximity             FilterKind = "LOSSES_NO_PROXIMITY"
	FilterDimensions                    FilterKind = "DIMENSIONS"
	FilterCoreMinimumImpedance          FilterKind = "CORE_MINIMUM_IMPEDANCE"
	FilterAreaNoParallels               FilterKind = "AREA_NO_PARALLELS"
	FilterAreaWithParallels             FilterKind = "AREA_WITH_PARALLELS"
	FilterEffectiveResistance           FilterKind = "EFFECTIVE_RESISTANCE"
	FilterProximityFactor               FilterKind = "PROXIMITY_FACTOR"
	FilterSolidInsulationRequirements   FilterKind = "SOLID_INSULATION_REQUIREMENTS"
	FilterTurnsRatios                   FilterKind = "TURNS_RATIOS"
	FilterMaximumDimensions             FilterKind = "MAXIMUM_DIMENSIONS"
	FilterSaturation                    FilterKind = "SATURATION"
	FilterDcCurrentDensity              FilterKind = "DC_CURRENT_DENSITY"
	FilterEffectiveCurrentDensity       FilterKind = "EFFECTIVE_CURRENT_DENSITY"
	FilterImpedance                     FilterKind = "IMPEDANCE"
	FilterMagnetizingInductance         FilterKind = "MAGNETIZING_INDUCTANCE"
	FilterFringingFactor                FilterKind = "FRINGING_FACTOR"
	FilterSkinLossesDensity             FilterKind = "SKIN_LOSSES_DENSITY"
	FilterVolume                        FilterKind = "VOLUME"
	FilterArea                          FilterKind = "AREA"
	FilterHeight                        FilterKind = "HEIGHT"
	FilterTemperatureRise               FilterKind = "TEMPERATURE_RISE"
	FilterMagnetomotiveForce            FilterKind = "MAGNETOMOTIVE_FORCE"
	FilterLeakageInductance             FilterKind = "LEAKAGE_INDUCTANCE"
)

// Composite names a secondary multiplier a FilterOperation applies to its
// base filter's raw value (spec §4.8's "TIMES_VOLUME"/"TIMES_TEMPERATURE_RISE"
// composite filters, e.g. LOSSES_TIMES_VOLUME).
type Composite string

const (
	CompositeNone                Composite = ""
	CompositeTimesVolume         Composite = "TIMES_VOLUME"
	CompositeTimesTemperatureRise Composite = "TIMES_TEMPERATURE_RISE"
)

// FilterOperation configures one scoring dimension: which filter, whether
// a low raw value is good (Invert) or scoring should compress a
// heavy-tailed raw value (Log), whether failing it eliminates the
// candidate outright (StrictlyRequired), its contribution to the weighted
// sum (Weight), and an optional composite multiplier (spec §4.8).
type FilterOperation struct {
	Kind             FilterKind
	Invert           bool
	Log              bool
	StrictlyRequired bool
	Weight           float64
	Composite        Composite
}

// evaluation is everything computed for one candidate core: its processed
// Core, resolved Material, assembled Magnetic and simulated Outputs, kept
// together so filter functions do not re-derive them.
type evaluation struct {
	candidate core.Core
	material  catalog.Material
	magnetic  *mas.Magnetic
	outputs   []mas.Outputs
	windings  []coil.WindingSpec
}

// Result is one ranked candidate: its assembled Magnetic, its simulated
// Outputs (one per operating point) and the weighted score it earned.
type Result struct {
	Magnetic *mas.Magnetic
	Outputs  []mas.Outputs
	Score    float64
	Raw      map[FilterKind]float64
}

// Adviser sweeps a Catalog for the Magnetic that best satisfies Inputs
// under a configured filter set (spec §4.8). Each candidate is evaluated
// by its own Simulator with fresh caches (spec §5: "one goroutine per
// candidate, each with its own private Simulator-adjacent state"); only
// the read-only Catalog and Settings are shared.
type Adviser struct {
	Catalog  *catalog.Catalog
	Settings *settings.Settings
	Mode     Mode
	Filters  []FilterOperation

	// MaxStacks bounds the stack-count expansion STANDARD_CORES performs
	// (1 means no expansion beyond the base single-stack candidate).
	MaxStacks int

	// CustomCores is consulted only when Mode is CustomCores.
	CustomCores []core.Core

	// MaxWidth/MaxHeight/MaxDepth bound the MAXIMUM_DIMENSIONS filter; a
	// zero value leaves that dimension unconstrained.
	MaxWidth, MaxHeight, MaxDepth float64

	// MinimumImpedance, if positive, is the threshold
	// CORE_MINIMUM_IMPEDANCE checks the candidate's magnetizing impedance
	// against at the first operating point's primary frequency.
	MinimumImpedance float64
}

// New returns an Adviser with no filters configured; callers append to
// Filters before calling Advise.
func New(cat *catalog.Catalog, s *settings.Settings, mode Mode) *Adviser {
	return &Adviser{Catalog: cat, Settings: s, Mode: mode, MaxStacks: 1}
}

// NoViableCandidate is returned when every candidate either fails to build
// or fails a strictly-required filter.
type NoViableCandidate struct {
	Attempted int
}

func (e NoViableCandidate) Error() string {
	return fmt.Sprintf("adviser: no viable candidate among %d attempted", e.Attempted)
}

// Advise runs the full sweep: candidate enumeration, concurrent
// build+simulate, strict-filter elimination, material-substitution
// expansion when the ferrite pool saturates, score normalization, and
// ranking. topK truncates the result; 0 returns every surviving candidate.
func (a *Adviser) Advise(in mas.Inputs, windings []coil.WindingSpec, bobbin catalog.Bobbin, topK int) ([]Result, error) {
	if len(a.Filters) == 0 {
		return nil, fmt.Errorf("adviser: no filters configured")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	cores, err := a.candidates()
	if err != nil {
		return nil, err
	}

	evals := a.evaluateAll(cores, windings, bobbin, in)

	if extra := a.expandWithPowder(cores, evals); len(extra) > 0 {
		obs.L().Debugw("expanding candidate set with powder substitution", "added", len(extra))
		evals = append(evals, a.evaluateAll(extra, windings, bobbin, in)...)
	}

	surviving := a.applyStrictFilters(evals, in)
	if len(surviving) == 0 {
		return nil, NoViableCandidate{Attempted: len(evals)}
	}

	results := a.score(surviving, in)

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// candidates enumerates the base (pre-expansion, single-stack) candidate
// set for the configured Mode.
func (a *Adviser) candidates() ([]core.Core, error) {
	if a.Mode == CustomCores {
		if len(a.CustomCores) == 0 {
			return nil, fmt.Errorf("adviser: CUSTOM_CORES mode with no CustomCores supplied")
		}
		return a.CustomCores, nil
	}

	shapes := a.Catalog.Shapes()
	materials := a.Catalog.MaterialsByFamily(catalog.MaterialFerrite)
	if len(materials) == 0 {
		materials = a.Catalog.Materials()
	}

	var out []core.Core
	for _, shape := range shapes {
		for _, material := range materials {
			base := core.Core{Functional: core.FunctionalDescription{
				Shape:        catalog.ShapeOrName{Name: shape.Name},
				Material:     catalog.MaterialOrName{Name: material.Name},
				NumberStacks: 1,
				Type:         assemblyType(shape.Family),
			}}
			out = append(out, base)

			if a.Mode == StandardCores {
				for stacks := 2; stacks <= a.MaxStacks; stacks++ {
					stacked := base
					stacked.Functional.NumberStacks = stacks
					out = append(out, stacked)
				}
			}
		}
	}
	return out, nil
}

// assemblyType picks the core.Type a bare shape family assembles into:
// toroids are single-piece, everything else in this catalog is a
// two-piece set (spec §4.2's default when a candidate does not specify
// PieceAndPlate/ClosedShape explicitly).
func assemblyType(family catalog.ShapeFamily) core.Type {
	if family == catalog.FamilyT {
		return core.Toroidal
	}
	return core.TwoPieceSet
}

// evaluateAll builds and simulates every candidate concurrently, one
// goroutine each with its own Simulator (spec §5), discarding candidates
// that fail to build or simulate (an expected outcome for geometrically
// infeasible shape/material/winding combinations, not an adviser error).
func (a *Adviser) evaluateAll(cores []core.Core, windings []coil.WindingSpec, bobbin catalog.Bobbin, in mas.Inputs) []*evaluation {
	results := make([]*evaluation, len(cores))
	g, _ := errgroup.WithContext(context.Background())
	for i, c := range cores {
		i, c := i, c
		g.Go(func() error {
			sim := simulator.New(a.Catalog, a.Settings)
			m, err := sim.BuildMagnetic(c, windings, bobbin)
			if err != nil {
				obs.L().Debugw("candidate rejected at build", "shape", c.Functional.Shape.Name, "material", c.Functional.Material.Name, "error", err)
				return nil
			}
			outputs, err := sim.SimulateAll(m, in)
			if err != nil {
				obs.L().Debugw("candidate rejected at simulate", "shape", c.Functional.Shape.Name, "material", c.Functional.Material.Name, "error", err)
				return nil
			}
			material, err := m.Core.Functional.Material.Resolve(a.Catalog)
			if err != nil {
				return nil
			}
			results[i] = &evaluation{candidate: m.Core, material: material, magnetic: m, outputs: outputs, windings: windings}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]*evaluation, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// expandWithPowder implements spec §4.8's material-substitution expansion:
// when no ferrite candidate clears the SATURATION filter (i.e. the whole
// ferrite pool saturates under the requested excitation), the sweep is
// widened to every catalog powder material on the same shapes, grounded on
// CoreAdviser.h's add_powder_materials().
func (a *Adviser) expandWithPowder(base []core.Core, evals []*evaluation) []core.Core {
	if a.Mode == CustomCores {
		return nil
	}
	anyUnsaturated := false
	for _, ev := range evals {
		if ev == nil {
			continue
		}
		if saturationRatio(ev) < 1 {
			anyUnsaturated = true
			break
		}
	}
	if anyUnsaturated || len(evals) == 0 {
		return nil
	}

	powders := a.Catalog.MaterialsByFamily(catalog.MaterialPowder)
	if len(powders) == 0 {
		return nil
	}

	seenShapes := map[string]bool{}
	var extra []core.Core
	for _, c := range base {
		if seenShapes[c.Functional.Shape.Name] {
			continue
		}
		seenShapes[c.Functional.Shape.Name] = true
		for _, m := range powders {
			extra = append(extra, core.Core{Functional: core.FunctionalDescription{
				Shape:        c.Functional.Shape,
				Material:     catalog.MaterialOrName{Name: m.Name},
				NumberStacks: 1,
				Type:         c.Functional.Type,
			}})
		}
	}
	return extra
}

// saturationRatio is the candidate's peak flux density over its material's
// saturation flux density at consts.AmbientTemperature, the same ratio the
// SATURATION filter scores.
func saturationRatio(ev *evaluation) float64 {
	if len(ev.outputs) == 0 {
		return 0
	}
	bsat, ok := ev.material.SaturationFluxDensityAt(consts.AmbientTemperature)
	if !ok || bsat <= 0 {
		return 0
	}
	return ev.outputs[0].MaximumFluxDensity / bsat
}

// applyStrictFilters drops every evaluation that fails a StrictlyRequired
// FilterOperation, short-circuiting per candidate on the first failure
// (MagneticFilter.h's evaluate_magnetic semantics).
func (a *Adviser) applyStrictFilters(evals []*evaluation, in mas.Inputs) []*evaluation {
	out := make([]*evaluation, 0, len(evals))
candidate:
	for _, ev := range evals {
		for _, op := range a.Filters {
			if !op.StrictlyRequired {
				continue
			}
			_, satisfies, err := a.filterValue(op.Kind, ev, in)
			if err != nil || !satisfies {
				continue candidate
			}
		}
		out = append(out, ev)
	}
	return out
}

// score normalizes every configured filter's raw value across the
// surviving candidate set to [0, 1] (min-max, inverted/log-compressed
// first per its FilterOperation), then combines them into one weighted
// score per candidate.
func (a *Adviser) score(evals []*evaluation, in mas.Inputs) []Result {
	raws := make([]map[FilterKind]float64, len(evals))
	for i, ev := range evals {
		raws[i] = map[FilterKind]float64{}
		for _, op := range a.Filters {
			v, _, err := a.filterValue(op.Kind, ev, in)
			if err != nil {
				v = math.Inf(1)
			}
			if op.Invert && v != 0 {
				v = 1 / v
			}
			if op.Log {
				v = math.Log1p(math.Abs(v))
			}
			switch op.Composite {
			case CompositeTimesVolume:
				v *= ev.candidate.Processed.Effective.EffectiveVolume
			case CompositeTimesTemperatureRise:
				if len(ev.outputs) > 0 {
					v *= ev.outputs[0].TemperatureRise
				}
			}
			raws[i][op.Kind] = v
		}
	}

	normalized := make([]map[FilterKind]float64, len(evals))
	for i := range evals {
		normalized[i] = map[FilterKind]float64{}
	}
	for _, op := range a.Filters {
		min, max := math.Inf(1), math.Inf(-1)
		for i := range evals {
			v := raws[i][op.Kind]
			if math.IsInf(v, 0) {
				continue
			}
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		for i := range evals {
			v := raws[i][op.Kind]
			switch {
			case math.IsInf(v, 0):
				normalized[i][op.Kind] = 0
			case max <= min:
				normalized[i][op.Kind] = 1
			default:
				normalized[i][op.Kind] = (v - min) / (max - min)
			}
		}
	}

	totalWeight := 0.0
	for _, op := range a.Filters {
		totalWeight += op.Weight
	}
	if totalWeight <= 0 {
		totalWeight = 1
	}

	out := make([]Result, len(evals))
	for i, ev := range evals {
		score := 0.0
		for _, op := range a.Filters {
			score += op.Weight * normalized[i][op.Kind]
		}
		out[i] = Result{Magnetic: ev.magnetic, Outputs: ev.outputs, Score: score / totalWeight, Raw: raws[i]}
	}
	return out
}

// filterValue computes one FilterKind's raw value for a candidate, and
// whether it satisfies the filter's pass/fail criterion (meaningful only
// for StrictlyRequired filters; scoring-only filters always report true).
func (a *Adviser) filterValue(kind FilterKind, ev *evaluation, in mas.Inputs) (float64, bool, error) {
	c := ev.candidate
	if c.Processed == nil {
		return 0, false, fmt.Errorf("adviser: candidate core is not processed")
	}
	out := firstOutputs(ev.outputs)
	primaryOp, primaryExc, haveOp := firstExcitation(in)

	switch kind {
	case FilterAreaProduct:
		wa := c.Processed.WindingWindow.Area
		if wa <= 0 {
			wa = c.Processed.WindingWindow.Height * c.Processed.WindingWindow.Width
		}
		return c.Processed.Effective.EffectiveArea * wa, true, nil

	case FilterEnergyStored:
		if !haveOp {
			return 0, true, nil
		}
		ipk := peak(primaryExc.Current.Waveform)
		return 0.5 * out.MagnetizingInductance * ipk * ipk, true, nil

	case FilterCost:
		return costMassProxy(ev.material, c.Processed.Effective.EffectiveVolume), true, nil

	case FilterEstimatedCost:
		return costMassProxy(ev.material, c.Processed.Effective.EffectiveVolume) + copperCostProxy(ev), true, nil

	case FilterCoreAndDcLosses:
		total := out.CoreLosses
		for _, w := range out.WindingLossesBreakdown {
			total += w.OhmicLosses
		}
		return total, true, nil

	case FilterCoreDcAndSkinLosses:
		total := out.CoreLosses
		for _, w := range out.WindingLossesBreakdown {
			total += w.OhmicLosses + w.SkinEffectLosses
		}
		return total, true, nil

	case FilterLosses, FilterLossesNoProximity:
		// This engine's winding-loss breakdown does not carry a separate
		// proximity term (spec §4.6 note), so LOSSES_NO_PROXIMITY equals
		// LOSSES here.
		return out.CoreLosses + out.WindingLosses, true, nil

	case FilterDimensions:
		w, h, d, err := c.MaximumDimensions(a.Catalog)
		if err != nil {
			return 0, false, err
		}
		return w * h * d, true, nil

	case FilterMaximumDimensions:
		if a.MaxWidth <= 0 && a.MaxHeight <= 0 && a.MaxDepth <= 0 {
			return 0, true, nil
		}
		fits, err := c.Fits(a.MaxWidth, a.MaxHeight, a.MaxDepth, a.Catalog)
		if err != nil {
			return 0, false, err
		}
		raw := 0.0
		if !fits {
			raw = 1
		}
		return raw, fits, nil

	case FilterCoreMinimumImpedance:
		z := impedance(out.MagnetizingInductance, primaryExc.Frequency)
		satisfies := a.MinimumImpedance <= 0 || z >= a.MinimumImpedance
		return z, satisfies, nil

	case FilterImpedance:
		return impedance(out.MagnetizingInductance, primaryExc.Frequency), true, nil

	case FilterAreaNoParallels, FilterAreaWithParallels:
		required := 0.0
		for _, w := range ev.windings {
			parallels := w.ParallelStrands
			if kind == FilterAreaNoParallels || parallels < 1 {
				parallels = 1
			}
			required += w.Wire.ConductingArea() * float64(w.Turns*parallels)
		}
		wa := c.Processed.WindingWindow.Area
		if wa <= 0 {
			wa = c.Processed.WindingWindow.Height * c.Processed.WindingWindow.Width
		}
		if wa <= 0 {
			return math.Inf(1), false, nil
		}
		ratio := required / wa
		return ratio, ratio <= 1, nil

	case FilterEffectiveResistance:
		if len(ev.windings) == 0 || !haveOp {
			return 1, true, nil
		}
		wire := ev.windings[0].Wire
		_, thickness := wire.OuterWidthHeight()
		skinDepth := windingloss.SkinDepth(1/wire.Conductivity(), primaryExc.Frequency, 1)
		skin, err := windingloss.GetSkinModel(a.Settings.SkinEffectModel)
		if err != nil {
			return 0, false, err
		}
		h := thickness / math.Max(skinDepth, 1e-12)
		return skin.Factor(h, 1), true, nil

	case FilterProximityFactor:
		if len(ev.windings) == 0 || !haveOp {
			return 1, true, nil
		}
		wire := ev.windings[0].Wire
		_, thickness := wire.OuterWidthHeight()
		skinDepth := windingloss.SkinDepth(1/wire.Conductivity(), primaryExc.Frequency, 1)
		prox, err := windingloss.GetProximityModel(a.Settings.ProximityModel)
		if err != nil {
			return 0, false, err
		}
		h := thickness / math.Max(skinDepth, 1e-12)
		return prox.Factor(h, 0, 1), true, nil

	case FilterSolidInsulationRequirements:
		required := len(in.DesignRequirements.IsolationSides)
		satisfies := required == 0 || required == len(ev.windings)
		raw := 0.0
		if !satisfies {
			raw = 1
		}
		return raw, satisfies, nil

	case FilterTurnsRatios:
		return turnsRatioError(ev, in)

	case FilterSaturation:
		ratio := saturationRatio(ev)
		return ratio, ratio < 1, nil

	case FilterDcCurrentDensity:
		if len(ev.windings) == 0 || !haveOp {
			return 0, true, nil
		}
		wire := ev.windings[0].Wire
		irms := rms(primaryExc.Current.Waveform)
		if wire.ConductingArea() <= 0 {
			return math.Inf(1), false, nil
		}
		return irms / wire.ConductingArea(), true, nil

	case FilterEffectiveCurrentDensity:
		if len(ev.windings) == 0 || !haveOp {
			return 0, true, nil
		}
		wire := ev.windings[0].Wire
		irms := rms(primaryExc.Current.Waveform)
		_, thickness := wire.OuterWidthHeight()
		skinDepth := windingloss.SkinDepth(1/wire.Conductivity(), primaryExc.Frequency, 1)
		effectiveArea := wire.ConductingArea()
		if skinDepth < thickness/2 {
			// current is confined to the outer skinDepth shell.
			effectiveArea = math.Pi * (math.Pow(thickness/2, 2) - math.Pow(thickness/2-skinDepth, 2))
		}
		if effectiveArea <= 0 {
			return math.Inf(1), false, nil
		}
		return irms / effectiveArea, true, nil

	case FilterMagnetizingInductance:
		target, ok := in.DesignRequirements.MagnetizingInductance.Value()
		if !ok || target <= 0 {
			return 0, true, nil
		}
		return math.Abs(out.MagnetizingInductance-target) / target, true, nil

	case FilterFringingFactor:
		return averageFringingFactor(&c, ev.material, a.Settings, primaryOp)

	case FilterSkinLossesDensity:
		ve := c.Processed.Effective.EffectiveVolume
		if ve <= 0 {
			return 0, true, nil
		}
		total := 0.0
		for _, w := range out.WindingLossesBreakdown {
			total += w.SkinEffectLosses
		}
		return total / ve, true, nil

	case FilterVolume:
		return c.Processed.Effective.EffectiveVolume, true, nil

	case FilterArea:
		return c.Processed.Effective.EffectiveArea, true, nil

	case FilterHeight:
		return c.Processed.WindingWindow.Height, true, nil

	case FilterTemperatureRise:
		return out.TemperatureRise, true, nil

	case FilterMagnetomotiveForce:
		if len(ev.magnetic.Coil.FunctionalDescription) == 0 || !haveOp {
			return 0, true, nil
		}
		primary := ev.magnetic.Coil.FunctionalDescription[0]
		turns := float64(primary.NumberTurns * maxInt(1, primary.NumberParallels))
		return turns * peak(primaryExc.Current.Waveform), true, nil

	case FilterLeakageInductance:
		return out.LeakageInductance, true, nil

	default:
		return 0, false, catalog.UnknownEntity{Kind: "adviser filter", Name: string(kind)}
	}
}

func firstOutputs(outputs []mas.Outputs) mas.Outputs {
	if len(outputs) == 0 {
		return mas.Outputs{}
	}
	return outputs[0]
}

func firstExcitation(in mas.Inputs) (mas.OperatingPoint, mas.Excitation, bool) {
	if len(in.OperatingPoints) == 0 || len(in.OperatingPoints[0].Excitations) == 0 {
		return mas.OperatingPoint{}, mas.Excitation{}, false
	}
	return in.OperatingPoints[0], in.OperatingPoints[0].Excitations[0], true
}

func peak(w waveform.Waveform) float64 {
	s, err := w.Summarize()
	if err != nil {
		return 0
	}
	return s.Peak
}

func rms(w waveform.Waveform) float64 {
	s, err := w.Summarize()
	if err != nil {
		return 0
	}
	return s.RMS
}

func impedance(inductance, frequency float64) float64 {
	return 2 * math.Pi * frequency * inductance
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// costMassProxy is a relative-cost unit proportional to core mass (density
// * effective volume), a vendor-price-free proxy: this engine's catalog
// (spec §1) carries physical properties, not pricing data, so COST and
// ESTIMATED_COST score on the dimension a catalog actually has. Computed
// in github.com/shopspring/decimal to keep the quantity's rounding
// behavior independent of the rest of the floating-point pipeline,
// matching how the engine's monetary fields would be represented if a
// pricing catalog were wired in.
func costMassProxy(material catalog.Material, effectiveVolume float64) float64 {
	density := decimal.NewFromFloat(material.Density)
	volume := decimal.NewFromFloat(effectiveVolume)
	mass := density.Mul(volume)
	f, _ := mass.Float64()
	return f
}

// copperCostProxy adds a copper-mass proxy (conductor volume * copper
// density) on top of costMassProxy's core-material term, the difference
// between COST (core only) and ESTIMATED_COST (core plus windings).
func copperCostProxy(ev *evaluation) float64 {
	const copperDensity = 8960.0 // kg/m^3
	turnLength := 0.0
	if ev.candidate.Processed != nil {
		turnLength = windingMeanLength(ev.candidate)
	}
	total := decimal.Zero
	for _, w := range ev.windings {
		volume := w.Wire.ConductingArea() * turnLength * float64(w.Turns*maxInt(1, w.ParallelStrands))
		total = total.Add(decimal.NewFromFloat(volume).Mul(decimal.NewFromFloat(copperDensity)))
	}
	f, _ := total.Float64()
	return f
}

func windingMeanLength(c core.Core) float64 {
	if len(c.Processed.Columns) == 0 {
		return 0
	}
	col := c.Processed.Columns[0]
	return 2 * (col.Width + col.Depth)
}

// turnsRatioError returns the largest relative error between a requested
// turns ratio and the ratio actually achieved by the placed windings
// (spec §4.8 TURNS_RATIOS), comparing winding i+1 against the reference
// (first) winding for each configured DesignRequirements.TurnsRatios
// entry.
func turnsRatioError(ev *evaluation, in mas.Inputs) (float64, bool, error) {
	windings := ev.magnetic.Coil.FunctionalDescription
	if len(windings) == 0 || windings[0].NumberTurns == 0 {
		return 0, true, nil
	}
	maxErr := 0.0
	for i, want := range in.DesignRequirements.TurnsRatios {
		idx := i + 1
		if idx >= len(windings) || windings[idx].NumberTurns == 0 {
			continue
		}
		target, ok := want.Value()
		if !ok || target == 0 {
			continue
		}
		achieved := float64(windings[0].NumberTurns) / float64(windings[idx].NumberTurns)
		relErr := math.Abs(achieved-target) / target
		if relErr > maxErr {
			maxErr = relErr
		}
	}
	return maxErr, true, nil
}

// averageFringingFactor recomputes the configured reluctance model's
// fringing factor for every non-residual gap and averages it, giving the
// FRINGING_FACTOR filter a single scalar per candidate.
func averageFringingFactor(c *core.Core, material catalog.Material, s *settings.Settings, op mas.OperatingPoint) (float64, bool, error) {
	if c.Geometry == nil || len(c.Geometry.Gapping) == 0 {
		return 1, true, nil
	}
	model, err := reluctance.Get(s.ReluctanceModel)
	if err != nil {
		return 0, false, err
	}
	var total float64
	var count int
	for _, g := range c.Geometry.Gapping {
		if g.Length <= 0 || g.Type == core.GapResidual {
			continue
		}
		res, err := model.Reluctance(reluctance.Params{GapLength: g.Length, Area: g.Area, WindowHeight: g.DistanceClosestNormalSurface}, 0, op.Conditions.AmbientTemperature)
		if err != nil {
			return 0, false, err
		}
		total += res.FringingFactor
		count++
	}
	if count == 0 {
		return 1, true, nil
	}
	return total / float64(count), true, nil
}
