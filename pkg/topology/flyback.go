// Package topology implements the converter-topology waveform generators
// (spec §4.9): Flyback, CLLC resonant, and three-phase Inverter.
package topology

import (
	"math"

	"github.com/openmagnetics/magforge/pkg/waveform"
)

// FlybackMode is the closed set of flyback operating modes (spec §4.9).
type FlybackMode string

const (
	FlybackCCM FlybackMode = "CCM"
	FlybackDCM FlybackMode = "DCM"
	FlybackQRM FlybackMode = "QRM"
	FlybackBMO FlybackMode = "BMO"
)

// FlybackSpec is the functional description of a flyback design point
// (spec §4.9 worked example: Vin range, Vout/Iout, switching frequency,
// efficiency, max duty cycle, current ripple ratio).
type FlybackSpec struct {
	VinMin             float64
	VinMax             float64
	Vout               float64
	Iout               float64
	SwitchingFrequency float64
	Efficiency         float64
	MaxDutyCycle       float64
	CurrentRippleRatio float64
	DiodeForwardDrop   float64 // defaults to 0.7V if zero

	// QRM-only: total drain-source parasitic capacitance used to solve
	// the resonant ringing frequency.
	DrainSourceCapacitance float64
}

func (s FlybackSpec) diodeDrop() float64 {
	if s.DiodeForwardDrop > 0 {
		return s.DiodeForwardDrop
	}
	return 0.7
}

// FlybackDesign is the derived electrical design: turns ratio and
// magnetizing inductance, chosen from the spec's constraints (spec §4.9).
type FlybackDesign struct {
	TurnsRatio           float64
	MagnetizingInductance float64
}

// InvalidDesignRequirements reports that a topology spec cannot be
// satisfied with a physically consistent design.
type InvalidDesignRequirements struct {
	Reason string
}

func (e InvalidDesignRequirements) Error() string {
	return "invalid design requirements: " + e.Reason
}

// DesignFlyback chooses the turns ratio from the max duty cycle / max
// drain-source voltage constraint (n = D_max/(1-D_max) * Vin_min/(Vout+Vf))
// and the magnetizing inductance from the requested current ripple ratio
// at minimum input voltage (spec §4.9).
func DesignFlyback(s FlybackSpec) (FlybackDesign, error) {
	if s.MaxDutyCycle <= 0 || s.MaxDutyCycle >= 1 {
		return FlybackDesign{}, InvalidDesignRequirements{Reason: "max duty cycle must be in (0,1)"}
	}
	if s.VinMin <= 0 || s.Vout <= 0 || s.Iout <= 0 || s.SwitchingFrequency <= 0 {
		return FlybackDesign{}, InvalidDesignRequirements{Reason: "Vin, Vout, Iout and switching frequency must be positive"}
	}

	n := (s.MaxDutyCycle / (1 - s.MaxDutyCycle)) * (s.VinMin / (s.Vout + s.diodeDrop()))

	ipk := s.Iout * n / s.MaxDutyCycle * (1 + s.CurrentRippleRatio/2)
	ripple := s.CurrentRippleRatio * ipk
	if ripple <= 0 {
		return FlybackDesign{}, InvalidDesignRequirements{Reason: "current ripple ratio must be positive"}
	}
	period := 1 / s.SwitchingFrequency
	lm := s.VinMin * s.MaxDutyCycle * period / ripple

	return FlybackDesign{TurnsRatio: n, MagnetizingInductance: lm}, nil
}

// QRMFrequency solves the quasi-resonant switching frequency from the
// closed form relating the off-time ringing between the magnetizing
// inductance and the total drain-source parasitic capacitance (spec
// §4.9): the MOSFET turns on at the first valley of the drain-source
// ringing, half a ringing period after the secondary current reaches
// zero.
func QRMFrequency(design FlybackDesign, spec FlybackSpec, vin float64) (float64, error) {
	if design.MagnetizingInductance <= 0 || spec.DrainSourceCapacitance <= 0 {
		return 0, InvalidDesignRequirements{Reason: "magnetizing inductance and drain-source capacitance must be positive"}
	}
	ipk := spec.Iout * design.TurnsRatio / spec.MaxDutyCycle * (1 + spec.CurrentRippleRatio/2)
	ton := design.MagnetizingInductance * ipk / vin
	toff := design.MagnetizingInductance * ipk / (design.TurnsRatio * (spec.Vout + spec.diodeDrop()))
	tring := math.Pi * math.Sqrt(design.MagnetizingInductance*spec.DrainSourceCapacitance)
	period := ton + toff + tring/2
	if period <= 0 {
		return 0, InvalidDesignRequirements{Reason: "degenerate QRM period"}
	}
	return 1 / period, nil
}

// FlybackOperatingPoint is one {Vin, mode} combination's derived duty
// cycle, peak current, and primary/secondary waveforms.
type FlybackOperatingPoint struct {
	Vin              float64
	Mode             FlybackMode
	DutyCycle        float64
	Frequency        float64
	PeakCurrent      float64
	PrimaryCurrent   waveform.Waveform
	SecondaryCurrent waveform.Waveform
}

// GenerateOperatingPoint builds the primary/secondary current waveforms
// for one input-voltage tier and mode (spec §4.9: triangular-with-dead-
// time for CCM/QRM/BMO, continuous-ramp-to-zero for DCM; secondary is a
// mirror image scaled by the turns ratio).
func GenerateOperatingPoint(design FlybackDesign, spec FlybackSpec, vin float64, mode FlybackMode, samples int) (FlybackOperatingPoint, error) {
	if samples < 4 {
		samples = 64
	}
	d := spec.MaxDutyCycle * vin / spec.VinMax
	if mode == FlybackBMO || mode == FlybackQRM {
		d = spec.MaxDutyCycle
	}
	freq := spec.SwitchingFrequency
	if mode == FlybackQRM {
		f, err := QRMFrequency(design, spec, vin)
		if err != nil {
			return FlybackOperatingPoint{}, err
		}
		freq = f
	}

	period := 1 / freq
	ton := d * period

	ipk := vin * ton / design.MagnetizingInductance

	primaryTime := make([]float64, 0, samples)
	primaryData := make([]float64, 0, samples)
	secondaryTime := make([]float64, 0, samples)
	secondaryData := make([]float64, 0, samples)

	primaryOnSamples := int(float64(samples) * d)
	if primaryOnSamples < 1 {
		primaryOnSamples = 1
	}
	for i := 0; i <= primaryOnSamples; i++ {
		t := ton * float64(i) / float64(primaryOnSamples)
		primaryTime = append(primaryTime, t)
		primaryData = append(primaryData, vin*t/design.MagnetizingInductance)
	}

	toffEnd := period
	secStart := ipk * design.TurnsRatio
	switch mode {
	case FlybackDCM:
		// current ramps to zero before the end of the switching period.
		tzero := secStart * design.MagnetizingInductance / (design.TurnsRatio * design.TurnsRatio * (spec.Vout + spec.diodeDrop()))
		toffEnd = ton + tzero
	}
	offSamples := samples - primaryOnSamples
	if offSamples < 1 {
		offSamples = 1
	}
	secondaryRate := secStart / (toffEnd - ton)
	for i := 0; i <= offSamples; i++ {
		t := ton + (toffEnd-ton)*float64(i)/float64(offSamples)
		secondaryTime = append(secondaryTime, t)
		val := secStart - secondaryRate*(t-ton)
		if val < 0 {
			val = 0
		}
		secondaryData = append(secondaryData, val)
	}
	if toffEnd < period {
		secondaryTime = append(secondaryTime, period)
		secondaryData = append(secondaryData, 0)
	}

	primary := waveform.Waveform{Time: primaryTime, Data: primaryData, Label: waveform.FlybackPrimary}
	secondary := waveform.Waveform{Time: secondaryTime, Data: secondaryData, Label: waveform.FlybackSecondary}

	return FlybackOperatingPoint{
		Vin:              vin,
		Mode:             mode,
		DutyCycle:        d,
		Frequency:        freq,
		PeakCurrent:      ipk,
		PrimaryCurrent:   primary,
		SecondaryCurrent: secondary,
	}, nil
}
