package adviser

import (
	"math"
	"testing"

	"github.com/openmagnetics/magforge/pkg/catalog"
	"github.com/openmagnetics/magforge/pkg/coil"
	"github.com/openmagnetics/magforge/pkg/core"
	"github.com/openmagnetics/magforge/pkg/dimension"
	"github.com/openmagnetics/magforge/pkg/mas"
	"github.com/openmagnetics/magforge/pkg/settings"
	"github.com/openmagnetics/magforge/pkg/waveform"
)

func sineWaveform(peak, freq float64, n int) waveform.Waveform {
	t := make([]float64, n)
	d := make([]float64, n)
	period := 1 / freq
	for i := 0; i < n; i++ {
		t[i] = period * float64(i) / float64(n-1)
		d[i] = peak * math.Sin(2*math.Pi*freq*t[i])
	}
	return waveform.Waveform{Time: t, Data: d, Label: waveform.Sinusoidal}
}

func twoShapeCatalog() *catalog.Catalog {
	cat := catalog.New()
	_ = cat.AddShape(catalog.Shape{
		Name:   "PQ 32/20",
		Family: catalog.FamilyPQ,
		Dimensions: dimension.Map{
			"A": dimension.Exact(0.033), "B": dimension.Exact(0.0205), "C": dimension.Exact(0.0122),
			"D": dimension.Exact(0.014), "E": dimension.Exact(0.0225), "F": dimension.Exact(0.0122),
		},
	})
	_ = cat.AddShape(catalog.Shape{
		Name:   "PQ 40/40",
		Family: catalog.FamilyPQ,
		Dimensions: dimension.Map{
			"A": dimension.Exact(0.041), "B": dimension.Exact(0.0395), "C": dimension.Exact(0.0139),
			"D": dimension.Exact(0.0198), "E": dimension.Exact(0.029), "F": dimension.Exact(0.0139),
		},
	})
	cat.AddMaterial(catalog.Material{
		Name:                  "N87",
		Family:                catalog.MaterialFerrite,
		Density:               4850,
		InitialPermeability:   []catalog.TemperaturePoint{{Temperature: 25, Value: 2200}},
		SaturationFluxDensity: []catalog.TemperaturePoint{{Temperature: 25, Value: 0.49}},
		Resistivity:           []catalog.TemperaturePoint{{Temperature: 25, Value: 10}},
		SteinmetzRanges: []catalog.SteinmetzCoefficients{
			{FrequencyMin: 0, FrequencyMax: 1e9, TemperatureMin: -50, TemperatureMax: 200, Alpha: 1.3, Beta: 2.5, K: 1.0},
		},
	})
	cat.AddWire(catalog.Wire{Name: "round 1mm", Type: catalog.WireRound, ConductingDiameter: 0.001, OuterDiameter: 0.0011})
	return cat
}

func sampleInputs(freq float64) mas.Inputs {
	voltage := sineWaveform(10, freq, 64)
	current := sineWaveform(1, freq, 64)
	return mas.Inputs{
		OperatingPoints: []mas.OperatingPoint{
			{
				Name:       "op1",
				Conditions: mas.Conditions{AmbientTemperature: 25},
				Excitations: []mas.Excitation{
					{Name: "primary", Frequency: freq, Voltage: mas.Signal{Waveform: voltage}, Current: mas.Signal{Waveform: current}},
				},
			},
		},
	}
}

func TestAdviseRanksCandidates(t *testing.T) {
	settings.ResetForTests()
	cat := twoShapeCatalog()

	a := New(cat, settings.GetInstance(), StandardCores)
	a.Filters = []FilterOperation{
		{Kind: FilterLosses, Invert: true, Weight: 1},
		{Kind: FilterVolume, Invert: true, Weight: 1},
	}

	wire, err := cat.Wire("round 1mm")
	if err != nil {
		t.Fatalf("wire lookup: %v", err)
	}
	windings := []coil.WindingSpec{{Name: "primary", Wire: wire, Turns: 10, ParallelStrands: 1}}
	bobbin := catalog.Bobbin{WallThickness: 0.0005}

	results, err := a.Advise(sampleInputs(100000), windings, bobbin, 0)
	if err != nil {
		t.Fatalf("Advise: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one viable candidate")
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Fatalf("results not sorted descending at index %d: %v > %v", i, results[i].Score, results[i-1].Score)
		}
	}
}

func TestAdviseStrictFilterEliminatesAll(t *testing.T) {
	settings.ResetForTests()
	cat := twoShapeCatalog()

	a := New(cat, settings.GetInstance(), StandardCores)
	a.MaxWidth, a.MaxHeight, a.MaxDepth = 1e-6, 1e-6, 1e-6 // impossibly small
	a.Filters = []FilterOperation{
		{Kind: FilterMaximumDimensions, StrictlyRequired: true, Weight: 1},
		{Kind: FilterLosses, Invert: true, Weight: 1},
	}

	wire, _ := cat.Wire("round 1mm")
	windings := []coil.WindingSpec{{Name: "primary", Wire: wire, Turns: 10, ParallelStrands: 1}}

	_, err := a.Advise(sampleInputs(100000), windings, catalog.Bobbin{WallThickness: 0.0005}, 0)
	if _, ok := err.(NoViableCandidate); !ok {
		t.Fatalf("expected NoViableCandidate, got %v", err)
	}
}

func TestAdviseCustomCoresMode(t *testing.T) {
	settings.ResetForTests()
	cat := twoShapeCatalog()

	a := New(cat, settings.GetInstance(), CustomCores)
	a.CustomCores = []core.Core{
		{Functional: core.FunctionalDescription{
			Shape: catalog.ShapeOrName{Name: "PQ 32/20"}, Material: catalog.MaterialOrName{Name: "N87"},
			NumberStacks: 1, Type: core.TwoPieceSet,
		}},
	}
	a.Filters = []FilterOperation{{Kind: FilterVolume, Weight: 1}}

	wire, _ := cat.Wire("round 1mm")
	windings := []coil.WindingSpec{{Name: "primary", Wire: wire, Turns: 10, ParallelStrands: 1}}

	results, err := a.Advise(sampleInputs(100000), windings, catalog.Bobbin{WallThickness: 0.0005}, 1)
	if err != nil {
		t.Fatalf("Advise: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly 1 result from a single custom core, got %d", len(results))
	}
}
