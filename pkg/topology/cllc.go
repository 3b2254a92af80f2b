package topology

import (
	"math"
	"math/cmplx"

	"github.com/openmagnetics/magforge/pkg/waveform"
)

// CLLCSpec is the Infineon-style bidirectional resonant converter design
// request (spec §4.9 worked example).
type CLLCSpec struct {
	Vin              float64
	Vout             float64
	Pout             float64
	ResonantFrequency float64 // fr, Hz
	Q                float64
	K                float64 // Lm/L1
	Asymmetric       bool
}

// CLLCDesign holds the eleven-step Infineon design procedure's derived
// component values (spec §4.9).
type CLLCDesign struct {
	N  float64 // turns ratio Vin/Vout
	Ro float64
	C1 float64
	L1 float64
	Lm float64
	L2 float64
	C2 float64
}

// DesignCLLC implements the Infineon CLLC design procedure (spec §4.9):
// n = Vin/Vout, Ro = 8n²/π² · Vout²/Pout, C1 = 1/(2πQ·fr·Ro),
// L1 = 1/((2π fr)² C1), Lm = k·L1, L2 = a·L1/n², C2 = n²·b·C1, with
// a=b=1 for the symmetric tank and a=0.95, b=1.052 for the asymmetric
// tank.
func DesignCLLC(s CLLCSpec) (CLLCDesign, error) {
	if s.Vin <= 0 || s.Vout <= 0 || s.Pout <= 0 || s.ResonantFrequency <= 0 {
		return CLLCDesign{}, InvalidDesignRequirements{Reason: "Vin, Vout, Pout and resonant frequency must be positive"}
	}
	if s.Q <= 0 || s.K <= 0 {
		return CLLCDesign{}, InvalidDesignRequirements{Reason: "Q and k must be positive"}
	}

	n := s.Vin / s.Vout
	ro := 8 * n * n / (math.Pi * math.Pi) * s.Vout * s.Vout / s.Pout
	c1 := 1 / (2 * math.Pi * s.Q * s.ResonantFrequency * ro)
	omega := 2 * math.Pi * s.ResonantFrequency
	l1 := 1 / (omega * omega * c1)
	lm := s.K * l1

	a, b := 1.0, 1.0
	if s.Asymmetric {
		a, b = 0.95, 1.052
	}
	l2 := a * l1 / (n * n)
	c2 := n * n * b * c1

	return CLLCDesign{N: n, Ro: ro, C1: c1, L1: l1, Lm: lm, L2: l2, C2: c2}, nil
}

// FHAGain evaluates the first-harmonic-approximation voltage transfer
// function |Zm·Ro / (Z1·Zm + Z1·Z2 + Z1·Ro + Zm·Z2 + Zm·Ro)| at the given
// switching frequency (spec §4.9). Z1 is the primary resonant tank
// impedance (L1 series with C1), Zm is the magnetizing branch, Z2 is the
// secondary tank referred through n² (L2 series with C2).
func FHAGain(d CLLCDesign, frequency float64) float64 {
	omega := 2 * math.Pi * frequency
	j := complex(0, 1)

	z1 := j*complex(omega*d.L1, 0) + 1/(j*complex(omega*d.C1, 0))
	zm := j * complex(omega*d.Lm, 0)
	z2 := j*complex(omega*d.L2, 0) + 1/(j*complex(omega*d.C2, 0))
	ro := complex(d.Ro, 0)

	numerator := zm * ro
	denominator := z1*zm + z1*z2 + z1*ro + zm*z2 + zm*ro
	if cmplx.Abs(denominator) == 0 {
		return 0
	}
	return cmplx.Abs(numerator / denominator)
}

// CLLCOperatingPoint holds the analytical primary/secondary waveforms
// for one switching frequency: a bipolar rectangular primary voltage
// with dead time, a sinusoidal resonant current plus a triangular
// magnetizing current, and a secondary current scaled by the turns
// ratio (spec §4.9).
type CLLCOperatingPoint struct {
	Frequency       float64
	Gain            float64
	PrimaryVoltage  waveform.Waveform
	ResonantCurrent waveform.Waveform
	SecondaryCurrent waveform.Waveform
}

// GenerateCLLCOperatingPoint synthesizes one switching-frequency operating
// point's waveforms from the resonant-tank design (spec §4.9).
func GenerateCLLCOperatingPoint(d CLLCDesign, s CLLCSpec, frequency float64, deadTime float64, resonantCurrentPeak float64, samples int) CLLCOperatingPoint {
	if samples < 8 {
		samples = 128
	}
	period := 1 / frequency
	time := make([]float64, samples+1)
	voltage := make([]float64, samples+1)
	resonant := make([]float64, samples+1)
	secondary := make([]float64, samples+1)

	gain := FHAGain(d, frequency)
	magnetizingPeak := s.Vin * period / (8 * d.Lm)

	for i := 0; i <= samples; i++ {
		t := period * float64(i) / float64(samples)
		time[i] = t
		phase := 2 * math.Pi * t / period

		v := s.Vin
		frac := math.Mod(t, period) / period
		if frac < deadTime/period || (frac > 0.5 && frac < 0.5+deadTime/period) {
			v = 0
		} else if frac >= 0.5 {
			v = -s.Vin
		}
		voltage[i] = v

		ires := resonantCurrentPeak * math.Sin(phase)
		imag := magnetizingPeak * triangleWave(phase)
		resonant[i] = ires + imag
		secondary[i] = d.N * ires
	}

	return CLLCOperatingPoint{
		Frequency:        frequency,
		Gain:             gain,
		PrimaryVoltage:   waveform.Waveform{Time: time, Data: voltage, Label: waveform.RectangularWithDeadtime},
		ResonantCurrent:  waveform.Waveform{Time: time, Data: resonant, Label: waveform.Sinusoidal},
		SecondaryCurrent: waveform.Waveform{Time: time, Data: secondary, Label: waveform.SecondaryRectangular},
	}
}

// triangleWave returns a unit-amplitude symmetric triangle wave of phase
// (radians, period 2*pi).
func triangleWave(phase float64) float64 {
	x := math.Mod(phase, 2*math.Pi) / (2 * math.Pi)
	if x < 0 {
		x += 1
	}
	return 4*math.Abs(x-0.5) - 1
}
