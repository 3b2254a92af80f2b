package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmagnetics/magforge/pkg/spicebridge/engine"
)

func TestBuildCLLCElementsNamesEveryFixedElement(t *testing.T) {
	spec := infineonSpec()
	d, err := DesignCLLC(spec)
	require.NoError(t, err)

	elements := BuildCLLCElements(d, spec, spec.ResonantFrequency, 220e-6)

	byName := make(map[string]bool)
	for _, e := range elements {
		byName[e.Name] = true
	}
	for _, name := range []string{
		"Vin", "L_res1", "C_res1", "Lpri", "Lsec", "Kxfmr",
		"L_res2", "C_res2", "Ds1", "Ds2", "Ds3", "Ds4", "Cout", "Rload",
	} {
		assert.True(t, byName[name], "missing fixed element %s", name)
	}
}

func TestBuildCLLCElementsCouplesTheDesignedTransformer(t *testing.T) {
	spec := infineonSpec()
	d, err := DesignCLLC(spec)
	require.NoError(t, err)

	elements := BuildCLLCElements(d, spec, spec.ResonantFrequency, 220e-6)
	for _, e := range elements {
		if e.Name == "Kxfmr" {
			require.Equal(t, []string{"Lpri", "Lsec"}, e.Nodes)
			assert.Greater(t, e.Value, 0.9)
			return
		}
	}
	t.Fatal("Kxfmr element not found")
}

func TestSimulateCLLCRunsThroughTheTransientEngine(t *testing.T) {
	spec := infineonSpec()
	d, err := DesignCLLC(spec)
	require.NoError(t, err)

	results, err := SimulateCLLC(d, spec, spec.ResonantFrequency, 220e-6, 2, 20, engine.NewEngineRunner())
	require.NoError(t, err)
	require.Contains(t, results, "TIME")
	assert.Greater(t, len(results["TIME"]), 1)
}

func TestSimulateCLLCRejectsNonPositiveFrequency(t *testing.T) {
	spec := infineonSpec()
	d, err := DesignCLLC(spec)
	require.NoError(t, err)

	_, err = SimulateCLLC(d, spec, 0, 220e-6, 2, 20, engine.NewEngineRunner())
	var invalid InvalidDesignRequirements
	assert.ErrorAs(t, err, &invalid)
}

func TestBuildFlybackElementsNamesEveryFixedElement(t *testing.T) {
	spec := flybackSpec()
	d, err := DesignFlyback(spec)
	require.NoError(t, err)

	elements := BuildFlybackElements(d, spec, spec.VinMin, spec.MaxDutyCycle, 470e-6)

	byName := make(map[string]bool)
	for _, e := range elements {
		byName[e.Name] = true
	}
	for _, name := range []string{
		"Vin", "Lpri", "Msw", "Vgate", "Lsec", "Kxfmr", "Dout", "Cout", "Rload",
	} {
		assert.True(t, byName[name], "missing fixed element %s", name)
	}
}

func TestBuildFlybackElementsUsesMosfetSwitchModel(t *testing.T) {
	spec := flybackSpec()
	d, err := DesignFlyback(spec)
	require.NoError(t, err)

	elements := BuildFlybackElements(d, spec, spec.VinMin, spec.MaxDutyCycle, 470e-6)
	for _, e := range elements {
		if e.Name == "Msw" {
			assert.Equal(t, "M", e.Type)
			assert.Equal(t, flybackSwitchModel.Name, e.Params["model"])
			return
		}
	}
	t.Fatal("Msw element not found")
}

func TestSimulateFlybackRunsThroughTheTransientEngine(t *testing.T) {
	spec := flybackSpec()
	d, err := DesignFlyback(spec)
	require.NoError(t, err)

	results, err := SimulateFlyback(d, spec, spec.VinMin, spec.MaxDutyCycle, 470e-6, 2, 20, engine.NewEngineRunner())
	require.NoError(t, err)
	require.Contains(t, results, "TIME")
	assert.Greater(t, len(results["TIME"]), 1)
}

func TestSimulateFlybackRejectsInvalidDutyCycle(t *testing.T) {
	spec := flybackSpec()
	d, err := DesignFlyback(spec)
	require.NoError(t, err)

	_, err = SimulateFlyback(d, spec, spec.VinMin, 1.5, 470e-6, 2, 20, engine.NewEngineRunner())
	var invalid InvalidDesignRequirements
	assert.ErrorAs(t, err, &invalid)
}
