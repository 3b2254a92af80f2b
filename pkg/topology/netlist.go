package topology

import (
	"fmt"
	"math"

	"github.com/openmagnetics/magforge/pkg/spicebridge/device"
	"github.com/openmagnetics/magforge/pkg/spicebridge/engine"
	"github.com/openmagnetics/magforge/pkg/spicebridge/netlist"
)

// element-naming convention shared by every topology's netlist builder:
// the primary voltage source is always Vin, the resonant tank is
// L_res1/C_res1 (primary) and L_res2/C_res2 (secondary), the transformer
// windings are Lpri/Lsec coupled by Kxfmr, and the secondary rectifier is
// the full bridge Ds1..Ds4 feeding Cout/Rload.
const (
	nodeVinP  = "vin_p"
	nodeVinN  = "0"
	nodePriA  = "pri_a"
	nodeSecP  = "sec_p"
	nodeSecN  = "sec_n"
	nodeRectA = "rect_a"
	nodeOut   = "vout"
)

// BuildCLLCElements lowers a resonant-tank design and its switching
// frequency into the netlist element list a Runner can simulate: a
// sinusoidal primary source at the switching frequency (the
// first-harmonic approximation of the primary half-bridge's square wave,
// the same approximation FHAGain already uses), the series resonant tank,
// the coupled transformer windings, the secondary resonant tank and a
// full-bridge rectifier into Cout/Rload.
func BuildCLLCElements(d CLLCDesign, s CLLCSpec, frequency float64, outputCapacitance float64) []netlist.Element {
	vinAmplitude := 4 / math.Pi * s.Vin // fundamental of a +/-Vin square wave
	rload := s.Vout * s.Vout / s.Pout

	return []netlist.Element{
		{Type: "V", Name: "Vin", Nodes: []string{nodeVinP, nodeVinN}, Value: 0,
			Params: map[string]string{"type": "sin", "sin": fmt.Sprintf("0 %g %g 0", vinAmplitude, frequency)}},
		{Type: "L", Name: "L_res1", Nodes: []string{nodeVinP, "res1_mid"}, Value: d.L1},
		{Type: "C", Name: "C_res1", Nodes: []string{"res1_mid", nodePriA}, Value: d.C1},
		{Type: "L", Name: "Lpri", Nodes: []string{nodePriA, nodeVinN}, Value: d.Lm},
		{Type: "L", Name: "Lsec", Nodes: []string{nodeSecP, nodeSecN}, Value: d.Lm / (d.N * d.N)},
		{Type: "K", Name: "Kxfmr", Nodes: []string{"Lpri", "Lsec"}, Value: nearUnityCoupling},
		{Type: "L", Name: "L_res2", Nodes: []string{nodeSecP, "res2_mid"}, Value: d.L2},
		{Type: "C", Name: "C_res2", Nodes: []string{"res2_mid", nodeRectA}, Value: d.C2},
		{Type: "D", Name: "Ds1", Nodes: []string{nodeRectA, nodeOut}},
		{Type: "D", Name: "Ds2", Nodes: []string{nodeVinN, nodeRectA}},
		{Type: "D", Name: "Ds3", Nodes: []string{nodeSecN, nodeOut}},
		{Type: "D", Name: "Ds4", Nodes: []string{nodeVinN, nodeSecN}},
		{Type: "C", Name: "Cout", Nodes: []string{nodeOut, nodeVinN}, Value: outputCapacitance},
		{Type: "R", Name: "Rload", Nodes: []string{nodeOut, nodeVinN}, Value: rload},
	}
}

// nearUnityCoupling is the K element's coefficient: the design procedure
// in DesignCLLC already folds the tank's leakage into L1/L2 explicitly,
// so Lpri/Lsec themselves are modeled as a near-ideal transformer.
const nearUnityCoupling = 0.999

// flybackSwitchModel is the primary switch's .model card: a generic
// power MOSFET with a low VTO/on-resistance profile, overriding just
// enough of device.Mosfet's silicon-signal-level defaults (VTO=0.7V,
// KP=2e-5) to behave like a hard-switched power device. Levels 2/3
// parameters are left at their defaults (unused at Level 1).
var flybackSwitchModel = device.ModelParam{
	Type: "M",
	Name: "SW_NMOS",
	Params: map[string]float64{
		"level":  1,
		"vto":    2.0,
		"kp":     20.0,
		"lambda": 0.001,
	},
}

// BuildFlybackElements lowers a flyback design and one operating point's
// duty cycle/frequency into the netlist element list a Runner can
// simulate: a hard-switched primary MOSFET (gate driven by a PULSE
// source at the switching frequency) in series with the magnetizing
// inductance, the secondary winding coupled through Kxfmr, and a
// half-wave rectifier into Cout/Rload.
//
// The coupled-inductor device models magnitude coupling only, not
// winding dot polarity, so energy transfer here is continuous rather
// than the real flyback's switch-off-triggered transfer; this is an
// acknowledged simplification of the same kind as BuildCLLCElements'
// first-harmonic source.
func BuildFlybackElements(design FlybackDesign, s FlybackSpec, vin float64, dutyCycle float64, outputCapacitance float64) []netlist.Element {
	period := 1 / s.SwitchingFrequency
	onTime := dutyCycle * period
	rload := s.Vout / s.Iout

	return []netlist.Element{
		{Type: "V", Name: "Vin", Nodes: []string{nodeVinP, nodeVinN}, Value: vin,
			Params: map[string]string{"type": "dc"}},
		{Type: "L", Name: "Lpri", Nodes: []string{nodeVinP, "sw_d"}, Value: design.MagnetizingInductance},
		{Type: "M", Name: "Msw", Nodes: []string{"sw_d", "sw_g", nodeVinN, nodeVinN}, Value: 0,
			Params: map[string]string{"model": flybackSwitchModel.Name}},
		{Type: "V", Name: "Vgate", Nodes: []string{"sw_g", nodeVinN}, Value: 0,
			Params: map[string]string{"type": "pulse", "pulse": fmt.Sprintf("0 10 0 %g %g %g %g", onTime/100, onTime/100, onTime, period)}},
		{Type: "L", Name: "Lsec", Nodes: []string{nodeSecP, nodeVinN}, Value: design.MagnetizingInductance / (design.TurnsRatio * design.TurnsRatio)},
		{Type: "K", Name: "Kxfmr", Nodes: []string{"Lpri", "Lsec"}, Value: nearUnityCoupling},
		{Type: "D", Name: "Dout", Nodes: []string{nodeSecP, nodeOut}},
		{Type: "C", Name: "Cout", Nodes: []string{nodeOut, nodeVinN}, Value: outputCapacitance},
		{Type: "R", Name: "Rload", Nodes: []string{nodeOut, nodeVinN}, Value: rload},
	}
}

// SimulateFlyback runs BuildFlybackElements' netlist through runner over
// [0, periods/frequency] at the requested number of steps per period and
// returns the raw transient results, exercising the MOSFET switch model
// the design-calculation path (QRMFrequency) only reasons about
// analytically.
func SimulateFlyback(design FlybackDesign, s FlybackSpec, vin float64, dutyCycle float64, outputCapacitance float64, periods int, stepsPerPeriod int, runner engine.Runner) (map[string][]float64, error) {
	if s.SwitchingFrequency <= 0 {
		return nil, InvalidDesignRequirements{Reason: "switching frequency must be positive"}
	}
	if dutyCycle <= 0 || dutyCycle >= 1 {
		return nil, InvalidDesignRequirements{Reason: "duty cycle must be in (0,1)"}
	}
	if periods <= 0 {
		periods = 20
	}
	if stepsPerPeriod <= 0 {
		stepsPerPeriod = 200
	}

	elements := BuildFlybackElements(design, s, vin, dutyCycle, outputCapacitance)
	models := map[string]device.ModelParam{flybackSwitchModel.Name: flybackSwitchModel}
	period := 1 / s.SwitchingFrequency
	tStop := float64(periods) * period
	tStep := period / float64(stepsPerPeriod)

	results, err := runner.Run(elements, models, 0, tStop, tStep)
	if err != nil {
		return nil, fmt.Errorf("simulate flyback: %w", err)
	}
	return results, nil
}

// SimulateCLLC runs BuildCLLCElements' netlist through runner over
// [0, periods/frequency] at the requested number of steps per period and
// returns the raw transient results (V(vout), I(Lpri), ...).
func SimulateCLLC(d CLLCDesign, s CLLCSpec, frequency float64, outputCapacitance float64, periods int, stepsPerPeriod int, runner engine.Runner) (map[string][]float64, error) {
	if frequency <= 0 {
		return nil, InvalidDesignRequirements{Reason: "frequency must be positive"}
	}
	if periods <= 0 {
		periods = 20
	}
	if stepsPerPeriod <= 0 {
		stepsPerPeriod = 200
	}

	elements := BuildCLLCElements(d, s, frequency, outputCapacitance)
	period := 1 / frequency
	tStop := float64(periods) * period
	tStep := period / float64(stepsPerPeriod)

	results, err := runner.Run(elements, map[string]device.ModelParam{}, 0, tStop, tStep)
	if err != nil {
		return nil, fmt.Errorf("simulate CLLC: %w", err)
	}
	return results, nil
}
