package topology

import (
	"math"
	"math/cmplx"

	"github.com/openmagnetics/magforge/pkg/waveform"
)

// PWMScheme selects the modulation scheme used to compare the dq-derived
// abc reference against the carrier (spec §4.9).
type PWMScheme string

const (
	PWMThipwm PWMScheme = "THIPWM"
	PWMSvpwm  PWMScheme = "SVPWM"
)

// FilterTopology is the closed set of output filter structures the
// Inverter evaluates per-harmonic (spec §4.9).
type FilterTopology string

const (
	FilterL   FilterTopology = "L"
	FilterLC  FilterTopology = "LC"
	FilterLCL FilterTopology = "LCL"
)

// InverterSpec is the three-phase inverter's functional description.
type InverterSpec struct {
	DCBusVoltage       float64
	LoadImpedance      complex128
	Power              float64
	FundamentalFreq    float64
	SwitchingFrequency float64
	Scheme             PWMScheme
	Filter             FilterTopology
	L1, C, L2          float64 // filter component values, as applicable
}

// DQReference computes the d/q axis voltage reference magnitudes from
// requested active/reactive power and load impedance, using the standard
// power-invariant park transform relation P = (3/2)(vd id + vq iq) with
// the load current derived from V/Z (spec §4.9: "computes dq reference
// from load impedance and power").
func DQReference(s InverterSpec) (vd, vq float64) {
	if s.LoadImpedance == 0 {
		return 0, 0
	}
	iMag := s.Power / (1.5 * s.DCBusVoltage)
	current := complex(iMag, 0)
	v := current * s.LoadImpedance
	return real(v), imag(v)
}

// DQToABC transforms a (vd, vq) pair into three-phase instantaneous
// values at electrical angle theta (radians), via the inverse Park
// transform.
func DQToABC(vd, vq, theta float64) (a, b, c float64) {
	a = vd*math.Cos(theta) - vq*math.Sin(theta)
	b = vd*math.Cos(theta-2*math.Pi/3) - vq*math.Sin(theta-2*math.Pi/3)
	c = vd*math.Cos(theta+2*math.Pi/3) - vq*math.Sin(theta+2*math.Pi/3)
	return
}

// thirdHarmonicInjection adds the standard 1/6 third-harmonic term used
// by THIPWM to extend the linear modulation range.
func thirdHarmonicInjection(theta float64, amplitude float64) float64 {
	return amplitude / 6 * math.Sin(3*theta)
}

// ModulatingWaveform builds one phase's modulating reference over a
// fundamental period, applying third-harmonic injection for THIPWM (SVPWM
// is approximated by the same injection, the two schemes sharing identical
// third-harmonic content in the two-level case) (spec §4.9).
func ModulatingWaveform(s InverterSpec, phaseOffset float64, samples int) waveform.Waveform {
	if samples < 8 {
		samples = 256
	}
	vd, vq := DQReference(s)
	amplitude := math.Hypot(vd, vq)
	period := 1 / s.FundamentalFreq

	time := make([]float64, samples+1)
	data := make([]float64, samples+1)
	for i := 0; i <= samples; i++ {
		t := period * float64(i) / float64(samples)
		theta := 2*math.Pi*s.FundamentalFreq*t + phaseOffset
		time[i] = t
		v := amplitude * math.Sin(theta)
		if s.Scheme == PWMThipwm || s.Scheme == PWMSvpwm {
			v += thirdHarmonicInjection(theta, amplitude)
		}
		data[i] = v
	}
	return waveform.Waveform{Time: time, Data: data, Label: waveform.Custom}
}

// PWMGate compares a modulating waveform against a triangular carrier at
// the switching frequency, returning a {0,1} gate signal waveform (spec
// §4.9: "compares against a carrier to produce PWM gates").
func PWMGate(modulating waveform.Waveform, carrierFrequency float64) waveform.Waveform {
	carrierPeriod := 1 / carrierFrequency
	data := make([]float64, len(modulating.Time))
	for i, t := range modulating.Time {
		phase := math.Mod(t, carrierPeriod) / carrierPeriod
		carrier := 4*math.Abs(phase-0.5) - 1
		if modulating.Data[i] > carrier {
			data[i] = 1
		} else {
			data[i] = 0
		}
	}
	return waveform.Waveform{Time: modulating.Time, Data: data, Label: waveform.Rectangular}
}

// FilterImpedance evaluates the chosen filter topology's transfer
// impedance (output voltage / inverter-leg voltage) at angular frequency
// omega, treating the load as the terminating impedance (spec §4.9:
// "evaluates the filter topology (L/LC/LCL) per-harmonic").
func FilterImpedance(s InverterSpec, omega float64) complex128 {
	j := complex(0, 1)
	zLoad := s.LoadImpedance

	switch s.Filter {
	case FilterL:
		zL1 := j * complex(omega*s.L1, 0)
		return zLoad / (zLoad + zL1)
	case FilterLC:
		zL1 := j * complex(omega*s.L1, 0)
		zC := 1 / (j * complex(omega*s.C, 0))
		zCLoad := parallel(zC, zLoad)
		return zCLoad / (zCLoad + zL1)
	case FilterLCL:
		zL1 := j * complex(omega*s.L1, 0)
		zC := 1 / (j * complex(omega*s.C, 0))
		zL2 := j * complex(omega*s.L2, 0)
		zBranch := parallel(zC, zL2+zLoad)
		vMid := zBranch / (zBranch + zL1)
		divider := zLoad / (zL2 + zLoad)
		return vMid * divider
	default:
		return 1
	}
}

func parallel(a, b complex128) complex128 {
	if a+b == 0 {
		return 0
	}
	return a * b / (a + b)
}

// HarmonicBundle is the per-harmonic voltage/current result of evaluating
// a filter against a set of modulating-waveform harmonics.
type HarmonicBundle struct {
	Number  int
	Voltage complex128
	Current complex128
}

// EvaluateFilterHarmonics applies FilterImpedance to every harmonic of the
// given leg-voltage waveform, returning per-harmonic voltage and current
// bundles (spec §4.9).
func EvaluateFilterHarmonics(s InverterSpec, legVoltage waveform.Waveform, maxHarmonic int) ([]HarmonicBundle, error) {
	harmonics, err := legVoltage.Decompose(maxHarmonic)
	if err != nil {
		return nil, err
	}
	bundles := make([]HarmonicBundle, len(harmonics))
	for i, h := range harmonics {
		omega := 2 * math.Pi * float64(h.Number) * s.FundamentalFreq
		gain := complex(1, 0)
		if omega > 0 {
			gain = FilterImpedance(s, omega)
		}
		vPhasor := cmplx.Rect(h.Amplitude, h.Phase) * gain
		var current complex128
		if s.LoadImpedance != 0 {
			current = vPhasor / s.LoadImpedance
		}
		bundles[i] = HarmonicBundle{Number: h.Number, Voltage: vPhasor, Current: current}
	}
	return bundles, nil
}
