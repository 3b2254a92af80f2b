// Package simulator implements the orchestration layer spec §5/§9
// describe: Core -> Magnetic -> Outputs per operating point, plus the two
// caches (reference -> Magnetic, reference -> stored-energy scalar) that
// sit in front of the expensive per-core computations. Grounded on
// original_source/src/support/Cache.h's two-level, explicit-clear, no-LRU
// cache and spec §5's "batch sizes are bounded" rationale for skipping
// eviction policy.
package simulator

import (
	"fmt"
	"math"

	"github.com/openmagnetics/magforge/internal/obs"
	"github.com/openmagnetics/magforge/pkg/catalog"
	"github.com/openmagnetics/magforge/pkg/coil"
	"github.com/openmagnetics/magforge/pkg/core"
	"github.com/openmagnetics/magforge/pkg/coreloss"
	"github.com/openmagnetics/magforge/pkg/corepiece"
	"github.com/openmagnetics/magforge/pkg/gap"
	"github.com/openmagnetics/magforge/pkg/mas"
	"github.com/openmagnetics/magforge/pkg/reluctance"
	"github.com/openmagnetics/magforge/pkg/settings"
	"github.com/openmagnetics/magforge/pkg/waveform"
	"github.com/openmagnetics/magforge/pkg/windingloss"
)

// MagneticsCache maps a core's canonical reference string to a fully
// assembled Magnetic (spec §5, §9). It is not thread-safe: callers sharing
// one cache across goroutines synchronize externally, matching the
// original's documented contract.
type MagneticsCache struct {
	entries map[string]*mas.Magnetic
}

// NewMagneticsCache returns an empty cache.
func NewMagneticsCache() *MagneticsCache {
	return &MagneticsCache{entries: map[string]*mas.Magnetic{}}
}

// Get returns the cached Magnetic for reference, if present.
func (c *MagneticsCache) Get(reference string) (*mas.Magnetic, bool) {
	m, ok := c.entries[reference]
	return m, ok
}

// Put stores a Magnetic under reference.
func (c *MagneticsCache) Put(reference string, m *mas.Magnetic) {
	c.entries[reference] = m
}

// Clear evicts every entry (spec §9: "Eviction is by explicit clear; there
// is no automatic LRU").
func (c *MagneticsCache) Clear() {
	c.entries = map[string]*mas.Magnetic{}
}

// energyKey is the cache key for stored energy: reference plus the (T, f)
// pair the energy was computed at (spec §5: "the operating point's
// (frequency, temperature) when energy is cached").
type energyKey struct {
	Reference   string
	Temperature float64
	Frequency   float64
}

// EnergyCache maps (reference, T, f) to a stored-energy scalar (joules).
// Not thread-safe, same contract as MagneticsCache.
type EnergyCache struct {
	entries map[energyKey]float64
}

// NewEnergyCache returns an empty cache.
func NewEnergyCache() *EnergyCache {
	return &EnergyCache{entries: map[energyKey]float64{}}
}

func (c *EnergyCache) Get(reference string, temperature, frequency float64) (float64, bool) {
	v, ok := c.entries[energyKey{reference, temperature, frequency}]
	return v, ok
}

func (c *EnergyCache) Put(reference string, temperature, frequency float64, energy float64) {
	c.entries[energyKey{reference, temperature, frequency}] = energy
}

func (c *EnergyCache) Clear() {
	c.entries = map[energyKey]float64{}
}

// Simulator orchestrates building a Magnetic from a Core and evaluating it
// across operating points. It is single-threaded and cooperative within
// one design session (spec §5); parallelism belongs to the adviser, one
// goroutine per candidate, each with its own private Simulator-adjacent
// state sharing only the read-only Catalog.
type Simulator struct {
	Catalog  *catalog.Catalog
	Settings *settings.Settings

	Magnetics *MagneticsCache
	Energy    *EnergyCache
}

// New returns a Simulator with fresh caches.
func New(cat *catalog.Catalog, s *settings.Settings) *Simulator {
	return &Simulator{
		Catalog:   cat,
		Settings:  s,
		Magnetics: NewMagneticsCache(),
		Energy:    NewEnergyCache(),
	}
}

// Reference returns the canonical cache key for a core's functional
// description: shape name, material name and stack count, which together
// determine every downstream computation the caches memoize.
func Reference(c core.Core) string {
	return fmt.Sprintf("%s|%s|%d|%s", c.Functional.Shape.Name, c.Functional.Material.Name, c.Functional.NumberStacks, c.Functional.Type)
}

// BuildMagnetic runs the full Core -> processed Core -> gapped Core ->
// Coil pipeline for one candidate core and winding spec, consulting and
// populating the MagneticsCache by reference.
func (s *Simulator) BuildMagnetic(c core.Core, windings []coil.WindingSpec, bobbin catalog.Bobbin) (*mas.Magnetic, error) {
	reference := Reference(c)
	if cached, ok := s.Magnetics.Get(reference); ok {
		return cached, nil
	}

	if err := core.Process(&c, s.Catalog); err != nil {
		return nil, err
	}
	if err := gap.Process(&c, s.Settings); err != nil {
		return nil, err
	}

	insulationMargin := 2 * bobbin.WallThickness
	sections, err := coil.SectionWindow(c.Processed.WindingWindow, windings, insulationMargin)
	if err != nil {
		return nil, err
	}

	turnLength := meanTurnLength(c.Processed.Columns)

	var allTurns []coil.Turn
	for i, section := range sections {
		spec := windings[i]
		totalTurns := spec.Turns * maxInt(1, spec.ParallelStrands)
		layers, err := coil.LayerSection(section, spec.Wire, totalTurns)
		if err != nil {
			return nil, err
		}
		top := section.Coordinates[1] - section.Height/2
		for _, layer := range layers {
			allTurns = append(allTurns, coil.PlaceTurns(layer, spec.Wire, turnLength, top, section.Height)...)
		}
	}

	for i := range allTurns {
		for j := i + 1; j < len(allTurns); j++ {
			wireI := windings[windingIndex(sections, allTurns[i].Winding)].Wire
			wireJ := windings[windingIndex(sections, allTurns[j].Winding)].Wire
			if coil.CheckCollision(allTurns[i], allTurns[j], wireI, wireJ) {
				return nil, coil.FitFailure{Reason: "placed turns overlap"}
			}
		}
	}

	functional := make([]mas.WindingFunctionalDescription, len(windings))
	for i, w := range windings {
		functional[i] = mas.WindingFunctionalDescription{
			Name:            w.Name,
			NumberTurns:     w.Turns,
			NumberParallels: maxInt(1, w.ParallelStrands),
			Wire:            catalog.WireOrName{Name: w.Wire.Name, Resolved: &w.Wire},
		}
	}

	m := &mas.Magnetic{
		Core: c,
		Coil: mas.CoilSnapshot{FunctionalDescription: functional},
	}
	s.Magnetics.Put(reference, m)
	obs.L().Debugw("built magnetic", "reference", reference, "turnsPlaced", len(allTurns))
	return m, nil
}

func windingIndex(sections []coil.Section, name string) int {
	for i, s := range sections {
		if s.Winding == name {
			return i
		}
	}
	return 0
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// meanTurnLength approximates the conductor length of one turn from the
// core's winding column cross-section: the central column's (or, for
// U-shapes without one, the first column's) perimeter; no bobbin wall or
// build-up thickness is added (no full 3-D piece mesh is built by this
// engine).
func meanTurnLength(columns []corepiece.Column) float64 {
	col := columns[0]
	for _, c := range columns {
		if c.Type == corepiece.ColumnCentral {
			col = c
			break
		}
	}
	if col.Shape == corepiece.ColumnRound {
		radius := col.Width / 2
		return 2 * math.Pi * radius
	}
	return 2 * (col.Width + col.Depth)
}

// FluxDensityWaveform integrates a winding's voltage waveform to produce
// its flux-density waveform, B(t) = (1/(N*Ae)) * integral(v dt), centered
// on its own mean to reject the DC offset a numerical integral
// accumulates over one period (spec §3: excitation carries voltage and
// current signals; flux density itself is an Output derived from them).
func FluxDensityWaveform(voltage waveform.Waveform, turns int, effectiveArea float64) (waveform.Waveform, error) {
	if err := voltage.Validate(); err != nil {
		return waveform.Waveform{}, err
	}
	if turns <= 0 || effectiveArea <= 0 {
		return waveform.Waveform{}, fmt.Errorf("simulator: non-positive turns or effective area")
	}
	n := len(voltage.Data)
	flux := make([]float64, n)
	acc := 0.0
	for i := 1; i < n; i++ {
		dt := voltage.Time[i] - voltage.Time[i-1]
		acc += 0.5 * (voltage.Data[i] + voltage.Data[i-1]) * dt
		flux[i] = acc / (float64(turns) * effectiveArea)
	}

	mean := 0.0
	for _, v := range flux {
		mean += v
	}
	mean /= float64(n)
	for i := range flux {
		flux[i] -= mean
	}
	flux[0] = flux[n-1] // close the periodic loop exactly, same convention voltage/current waveforms already use

	return waveform.Waveform{Time: voltage.Time, Data: flux, Label: waveform.Custom}, nil
}

// thermalRiseCelsius implements the classic McLyman surface-power-density
// empirical formula DeltaT = 450 * Psi^0.826 (Psi in mW/cm^2 of exposed
// core+coil surface), the standard closed-form temperature-rise estimate
// used throughout magnetic-component design references in lieu of a full
// thermal FEM (explicitly out of scope, spec §1).
func thermalRiseCelsius(totalLosses, width, height, depth float64) float64 {
	surfaceAreaCm2 := 2 * (width*height + height*depth + width*depth) * 1e4
	if surfaceAreaCm2 <= 0 {
		return 0
	}
	psi := (totalLosses * 1000) / surfaceAreaCm2 // mW/cm^2
	return 450 * math.Pow(psi, 0.826)
}

// Simulate evaluates one operating point against an assembled Magnetic,
// producing one Outputs entry (spec §3, §4.4-4.6). The first excitation is
// treated as the reference winding for magnetizing inductance / flux
// density (a multi-winding transformer's magnetizing branch is referred to
// the primary in this engine, matching the worked examples of spec §8).
func (s *Simulator) Simulate(m *mas.Magnetic, op mas.OperatingPoint) (mas.Outputs, error) {
	if len(op.Excitations) == 0 {
		return mas.Outputs{}, mas.InvalidDesignRequirements{Reason: "operating point has no excitations"}
	}
	c := m.Core
	if c.Processed == nil {
		return mas.Outputs{}, fmt.Errorf("simulator: magnetic's core is not processed")
	}

	material, err := c.Functional.Material.Resolve(s.Catalog)
	if err != nil {
		return mas.Outputs{}, err
	}

	primary := op.Excitations[0]
	primaryWinding := m.Coil.FunctionalDescription[0]
	effectiveTurns := float64(primaryWinding.NumberTurns * primaryWinding.NumberParallels)

	reference := Reference(c)
	var totalReluctance float64
	if cached, ok := s.Energy.Get(reference+"|reluctance", op.Conditions.AmbientTemperature, primary.Frequency); ok {
		totalReluctance = cached
	} else {
		totalReluctance, err = reluctance.TotalReluctance(&c, material, s.Settings.ReluctanceModel, primary.Frequency, op.Conditions.AmbientTemperature)
		if err != nil {
			return mas.Outputs{}, err
		}
		s.Energy.Put(reference+"|reluctance", op.Conditions.AmbientTemperature, primary.Frequency, totalReluctance)
	}

	magnetizingInductance, err := reluctance.MagnetizingInductance(effectiveTurns, totalReluctance)
	if err != nil {
		return mas.Outputs{}, err
	}

	energy := 0.5 * magnetizingInductance * math.Pow(peakOf(primary.Current.Waveform), 2)
	s.Energy.Put(reference, op.Conditions.AmbientTemperature, primary.Frequency, energy)

	fluxWaveform, err := FluxDensityWaveform(primary.Voltage.Waveform, primaryWinding.NumberTurns, c.Processed.Effective.EffectiveArea)
	if err != nil {
		return mas.Outputs{}, err
	}
	fluxSummary, err := fluxWaveform.Summarize()
	if err != nil {
		return mas.Outputs{}, err
	}

	lossModel, err := coreloss.Get(s.Settings.CoreLossesModel)
	if err != nil {
		return mas.Outputs{}, err
	}
	volumetricLosses, err := lossModel.VolumetricLosses(material, fluxWaveform, primary.Frequency, op.Conditions.AmbientTemperature)
	if err != nil {
		return mas.Outputs{}, err
	}
	coreLosses := volumetricLosses * c.Processed.Effective.EffectiveVolume

	totalWindingLosses := 0.0
	breakdown := make([]mas.PerWindingLosses, 0, len(op.Excitations))
	for i, exc := range op.Excitations {
		if i >= len(m.Coil.FunctionalDescription) {
			break
		}
		winding := m.Coil.FunctionalDescription[i]
		wire, err := winding.Wire.Resolve(s.Catalog)
		if err != nil {
			return mas.Outputs{}, err
		}
		turnLength := meanTurnLength(c.Processed.Columns)
		currentSummary, err := exc.Current.Waveform.Summarize()
		if err != nil {
			return mas.Outputs{}, err
		}
		rdc, err := windingloss.Ohmic(1/wire.Conductivity(), turnLength, winding.NumberTurns*winding.NumberParallels, wire.ConductingArea())
		if err != nil {
			return mas.Outputs{}, err
		}
		ohmic := rdc * currentSummary.RMS * currentSummary.RMS

		skinModel, err := windingloss.GetSkinModel(s.Settings.SkinEffectModel)
		if err != nil {
			return mas.Outputs{}, err
		}
		harmonics, err := exc.Current.Waveform.Decompose(16)
		if err != nil {
			return mas.Outputs{}, err
		}
		above := waveform.AboveThreshold(harmonics, s.Settings.HarmonicAmplitudeThreshold)
		currents := make([]float64, len(above))
		for j, h := range above {
			currents[j] = h.Amplitude
		}
		_, conductorThickness := wire.OuterWidthHeight()
		skinDepth := windingloss.SkinDepth(1/wire.Conductivity(), exc.Frequency, 1)
		skinLosses := windingloss.HarmonicLoss(rdc, currents, conductorThickness, skinDepth, skinModel, 1)

		totalWindingLosses += ohmic + skinLosses
		breakdown = append(breakdown, mas.PerWindingLosses{
			Name:             winding.Name,
			OhmicLosses:      ohmic,
			SkinEffectLosses: skinLosses,
		})
	}

	width, height, depth, err := c.MaximumDimensions(s.Catalog)
	if err != nil {
		return mas.Outputs{}, err
	}
	temperatureRise := thermalRiseCelsius(coreLosses+totalWindingLosses, width, height, depth)

	outputPower := outputPowerEstimate(op)
	totalLosses := coreLosses + totalWindingLosses
	efficiency := 1.0
	if outputPower+totalLosses > 0 {
		efficiency = outputPower / (outputPower + totalLosses)
	}

	return mas.Outputs{
		OperatingPointName:     op.Name,
		CoreLosses:             coreLosses,
		WindingLosses:          totalWindingLosses,
		WindingLossesBreakdown: breakdown,
		MagnetizingInductance:  magnetizingInductance,
		MaximumFluxDensity:     fluxSummary.Peak,
		TemperatureRise:        temperatureRise,
		Efficiency:             efficiency,
	}, nil
}

func peakOf(w waveform.Waveform) float64 {
	summary, err := w.Summarize()
	if err != nil {
		return 0
	}
	return summary.Peak
}

// outputPowerEstimate sums V_rms*I_rms across every non-reference
// (secondary) excitation, the simplest available proxy for delivered power
// absent a full time-domain circuit solution (which belongs to the
// external simulator pkg/spicebridge wraps, spec §1).
func outputPowerEstimate(op mas.OperatingPoint) float64 {
	if len(op.Excitations) < 2 {
		return 0
	}
	total := 0.0
	for _, exc := range op.Excitations[1:] {
		vs, err1 := exc.Voltage.Waveform.Summarize()
		is, err2 := exc.Current.Waveform.Summarize()
		if err1 != nil || err2 != nil {
			continue
		}
		total += vs.RMS * is.RMS
	}
	return total
}

// SimulateAll runs Simulate for every operating point in inputs, appending
// each result to a fresh Mas-ready Outputs slice in order (spec §3
// lifecycle: "Outputs are append-only per operating point").
func (s *Simulator) SimulateAll(m *mas.Magnetic, in mas.Inputs) ([]mas.Outputs, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	outputs := make([]mas.Outputs, 0, len(in.OperatingPoints))
	for _, op := range in.OperatingPoints {
		out, err := s.Simulate(m, op)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}
