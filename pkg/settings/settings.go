// Package settings holds the process-wide Settings singleton: default model
// selectors for reluctance, core losses, skin effect, proximity effect and
// field strength, plus solver tolerances. It is written once at process
// init (or explicitly via Configure) and read everywhere; concurrent writes
// are undefined, matching the original spec's documented contract (§9).
package settings

import (
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Settings is the process-wide, read-mostly configuration object.
type Settings struct {
	ReluctanceModel    string
	CoreLossesModel    string
	SkinEffectModel    string
	ProximityModel     string
	FieldStrengthModel string
	FringingEffectModel string

	HarmonicAmplitudeThreshold float64 // fraction of fundamental, default 0.01
	SolverTolerance            float64
	SolverMaxIterFactor        int // maxfev = factor * (n+1)

	AmbientTemperature float64

	// ResidualGapLength is the system-wide RESIDUAL gap length (meters)
	// assumed at every column of an otherwise-ungapped core (spec §4.3
	// policy step 1).
	ResidualGapLength float64

	// SpacerProtrudingMargin is the fraction by which an ADDITIVE gap's
	// spacer geometry extends beyond the column footprint it sits under
	// (spec §4.3).
	SpacerProtrudingMargin float64
}

func defaults() Settings {
	return Settings{
		ReluctanceModel:            "ZHANG",
		CoreLossesModel:            "IGSE",
		SkinEffectModel:            "DOWELL",
		ProximityModel:             "ROSSMANITH",
		FieldStrengthModel:         "DOWELL",
		FringingEffectModel:        "ROSHEN",
		HarmonicAmplitudeThreshold: 0.01,
		SolverTolerance:            1e-9,
		SolverMaxIterFactor:        200,
		AmbientTemperature:         25.0,
		ResidualGapLength:          1e-5,
		SpacerProtrudingMargin:     0.1,
	}
}

var (
	mu       sync.RWMutex
	instance *Settings
)

// GetInstance returns the process-wide Settings, initializing it from viper
// (env prefix MAGFORGE_, optional ./magforge.yaml) the first time it is
// called.
func GetInstance() *Settings {
	mu.Lock()
	defer mu.Unlock()
	if instance == nil {
		instance = load()
	}
	return instance
}

// Configure replaces the process-wide Settings outright. Intended for
// programmatic callers (the adviser, the CLI) that resolve configuration
// themselves rather than relying on viper's search path.
func Configure(s Settings) {
	mu.Lock()
	defer mu.Unlock()
	instance = &s
}

// ResetForTests restores the default Settings. Tests that mutate the
// singleton must call this in a defer to avoid leaking state across test
// cases.
func ResetForTests() {
	mu.Lock()
	defer mu.Unlock()
	d := defaults()
	instance = &d
}

func load() *Settings {
	v := viper.New()
	v.SetEnvPrefix("MAGFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("magforge")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	d := defaults()
	v.SetDefault("reluctance_model", d.ReluctanceModel)
	v.SetDefault("core_losses_model", d.CoreLossesModel)
	v.SetDefault("skin_effect_model", d.SkinEffectModel)
	v.SetDefault("proximity_model", d.ProximityModel)
	v.SetDefault("field_strength_model", d.FieldStrengthModel)
	v.SetDefault("fringing_effect_model", d.FringingEffectModel)
	v.SetDefault("harmonic_amplitude_threshold", d.HarmonicAmplitudeThreshold)
	v.SetDefault("solver_tolerance", d.SolverTolerance)
	v.SetDefault("solver_max_iter_factor", d.SolverMaxIterFactor)
	v.SetDefault("ambient_temperature", d.AmbientTemperature)
	v.SetDefault("residual_gap_length", d.ResidualGapLength)
	v.SetDefault("spacer_protruding_margin", d.SpacerProtrudingMargin)

	// A missing config file is not an error: the defaults above stand.
	_ = v.ReadInConfig()

	return &Settings{
		ReluctanceModel:            v.GetString("reluctance_model"),
		CoreLossesModel:            v.GetString("core_losses_model"),
		SkinEffectModel:            v.GetString("skin_effect_model"),
		ProximityModel:             v.GetString("proximity_model"),
		FieldStrengthModel:         v.GetString("field_strength_model"),
		FringingEffectModel:        v.GetString("fringing_effect_model"),
		HarmonicAmplitudeThreshold: v.GetFloat64("harmonic_amplitude_threshold"),
		SolverTolerance:            v.GetFloat64("solver_tolerance"),
		SolverMaxIterFactor:        v.GetInt("solver_max_iter_factor"),
		AmbientTemperature:         v.GetFloat64("ambient_temperature"),
		ResidualGapLength:          v.GetFloat64("residual_gap_length"),
		SpacerProtrudingMargin:     v.GetFloat64("spacer_protruding_margin"),
	}
}
