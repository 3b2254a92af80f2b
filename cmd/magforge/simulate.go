package main

import (
	"github.com/spf13/cobra"

	"github.com/openmagnetics/magforge/pkg/spicebridge/engine"
	"github.com/openmagnetics/magforge/pkg/topology"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Cross-check an analytical design against the transient circuit engine",
}

func init() {
	simulateCmd.AddCommand(simulateCLLCCmd, simulateFlybackCmd)
	rootCmd.AddCommand(simulateCmd)
}

// cllcSimulationRequest is the simulate subcommand's JSON input: the same
// spec design accepts plus the transient-run parameters SimulateCLLC needs.
type cllcSimulationRequest struct {
	Spec              topology.CLLCSpec `json:"spec"`
	Frequency         float64           `json:"frequency"`
	OutputCapacitance float64           `json:"outputCapacitance"`
	Periods           int               `json:"periods"`
	StepsPerPeriod    int               `json:"stepsPerPeriod"`
}

var simulateCLLCCmd = &cobra.Command{
	Use:   "cllc",
	Short: "Build a CLLC tank's netlist and run it through the transient engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req cllcSimulationRequest
		if err := readSpec(&req); err != nil {
			return err
		}
		design, err := topology.DesignCLLC(req.Spec)
		if err != nil {
			return err
		}
		frequency := req.Frequency
		if frequency <= 0 {
			frequency = req.Spec.ResonantFrequency
		}
		results, err := topology.SimulateCLLC(design, req.Spec, frequency, req.OutputCapacitance, req.Periods, req.StepsPerPeriod, engine.NewEngineRunner())
		if err != nil {
			return err
		}
		return printJSON(results)
	},
}

// flybackSimulationRequest is the simulate subcommand's JSON input: the
// design spec plus the operating point and transient-run parameters
// SimulateFlyback needs.
type flybackSimulationRequest struct {
	Spec              topology.FlybackSpec `json:"spec"`
	Vin               float64              `json:"vin"`
	DutyCycle         float64              `json:"dutyCycle"`
	OutputCapacitance float64              `json:"outputCapacitance"`
	Periods           int                  `json:"periods"`
	StepsPerPeriod    int                  `json:"stepsPerPeriod"`
}

var simulateFlybackCmd = &cobra.Command{
	Use:   "flyback",
	Short: "Build a flyback's hard-switched MOSFET netlist and run it through the transient engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req flybackSimulationRequest
		if err := readSpec(&req); err != nil {
			return err
		}
		design, err := topology.DesignFlyback(req.Spec)
		if err != nil {
			return err
		}
		vin := req.Vin
		if vin <= 0 {
			vin = req.Spec.VinMin
		}
		dutyCycle := req.DutyCycle
		if dutyCycle <= 0 {
			dutyCycle = req.Spec.MaxDutyCycle
		}
		results, err := topology.SimulateFlyback(design, req.Spec, vin, dutyCycle, req.OutputCapacitance, req.Periods, req.StepsPerPeriod, engine.NewEngineRunner())
		if err != nil {
			return err
		}
		return printJSON(results)
	},
}
