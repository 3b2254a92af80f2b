package simulator

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

func testCatalog() *catalog.Catalog {
	cat := catalog.New()
	shape := catalog.Shape{
		Name:   "PQ 32/20",
		Family: catalog.FamilyPQ,
		Dimensions: dimension.Map{
			"A": dimension.Exact(0.033),
			"B": dimension.Exact(0.0205),
			"C": dimension.Exact(0.0122),
			"D": dimension.Exact(0.014),
			"E": dimension.Exact(0.0225),
			"F": dimension.Exact(0.0122),
		},
	}
	_ = cat.AddShape(shape)
	cat.AddMaterial(catalog.Material{
		Name:                 "N87",
		Family:               catalog.MaterialFerrite,
		InitialPermeability:  []catalog.TemperaturePoint{{Temperature: 25, Value: 2200}},
		SaturationFluxDensity: []catalog.TemperaturePoint{{Temperature: 25, Value: 0.49}},
		Resistivity:          []catalog.TemperaturePoint{{Temperature: 25, Value: 10}},
		SteinmetzRanges: []catalog.SteinmetzCoefficients{
			{FrequencyMin: 0, FrequencyMax: 1e9, TemperatureMin: -50, TemperatureMax: 200, Alpha: 1.3, Beta: 2.5, K: 1.0},
		},
	})
	cat.AddWire(catalog.Wire{
		Name:               "round 1mm",
		Type:               catalog.WireRound,
		ConductingDiameter: 0.001,
		OuterDiameter:      0.0011,
	})
	return cat
}

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

func TestSimulateEndToEnd(t *testing.T) {
	settings.ResetForTests()
	cat := testCatalog()
	sim := New(cat, settings.GetInstance())

	c := core.Core{
		Functional: core.FunctionalDescription{
			Shape:        catalog.ShapeOrName{Name: "PQ 32/20"},
			Material:     catalog.MaterialOrName{Name: "N87"},
			NumberStacks: 1,
			Type:         core.TwoPieceSet,
			Gapping:      []core.FunctionalGap{{Type: core.GapResidual, Length: 5e-6}},
		},
	}

	windings := []coil.WindingSpec{
		{Name: "primary", Wire: mustWire(cat, "round 1mm"), Turns: 10, ParallelStrands: 1},
	}

	m, err := sim.BuildMagnetic(c, windings, catalog.Bobbin{WallThickness: 0.0005})
	if err != nil {
		t.Fatalf("BuildMagnetic: %v", err)
	}

	freq := 100000.0
	voltage := sineWaveform(10, freq, 64)
	current := sineWaveform(1, freq, 64)

	op := mas.OperatingPoint{
		Name:       "op1",
		Conditions: mas.Conditions{AmbientTemperature: 100},
		Excitations: []mas.Excitation{
			{Name: "primary", Frequency: freq, Voltage: mas.Signal{Waveform: voltage}, Current: mas.Signal{Waveform: current}},
		},
	}

	out, err := sim.Simulate(m, op)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if out.CoreLosses <= 0 {
		t.Errorf("expected positive core losses, got %v", out.CoreLosses)
	}
	if out.MagnetizingInductance <= 0 {
		t.Errorf("expected positive magnetizing inductance, got %v", out.MagnetizingInductance)
	}
	if out.MaximumFluxDensity <= 0 {
		t.Errorf("expected positive flux density, got %v", out.MaximumFluxDensity)
	}

	// Second build must hit the MagneticsCache.
	m2, err := sim.BuildMagnetic(c, windings, catalog.Bobbin{WallThickness: 0.0005})
	if err != nil {
		t.Fatalf("BuildMagnetic (cached): %v", err)
	}
	if m2 != m {
		t.Error("expected cached Magnetic pointer to be reused")
	}
}

func mustWire(cat *catalog.Catalog, name string) catalog.Wire {
	w, err := cat.Wire(name)
	if err != nil {
		panic(err)
	}
	return w
}
