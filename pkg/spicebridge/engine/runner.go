// Package engine drives the spicebridge transient engine end to end from
// an in-memory netlist, so a caller that has already built an []netlist.Element
// slice (rather than SPICE deck text) can run a transient analysis and get
// results back without writing anything to disk.
package engine

import (
	"fmt"

	"github.com/openmagnetics/magforge/pkg/spicebridge/analysis"
	circuit "github.com/openmagnetics/magforge/pkg/spicebridge/circuitsim"
	"github.com/openmagnetics/magforge/pkg/spicebridge/device"
	"github.com/openmagnetics/magforge/pkg/spicebridge/netlist"
)

// Runner executes a netlist element list as a transient analysis and
// returns its results keyed by SPICE-style variable name (V(node),
// I(branch), TIME). Callers hold a Runner rather than a concrete type so
// a topology can be simulated either by this in-repo engine or by a
// subprocess-based ngspice runner without changing call sites.
type Runner interface {
	Run(elements []netlist.Element, models map[string]device.ModelParam, tStart, tStop, tStep float64) (map[string][]float64, error)
}

// EngineRunner is the Runner backed directly by this module's own
// circuitsim/analysis packages, the same pipeline cmd/magforge's netlist
// subcommand runs against deck text parsed by netlist.Parse.
type EngineRunner struct{}

// NewEngineRunner returns a Runner that drives the in-repo engine.
func NewEngineRunner() *EngineRunner { return &EngineRunner{} }

func (r *EngineRunner) Run(elements []netlist.Element, models map[string]device.ModelParam, tStart, tStop, tStep float64) (map[string][]float64, error) {
	if tStop <= tStart || tStep <= 0 {
		return nil, fmt.Errorf("engine runner: invalid time span [%g, %g] step %g", tStart, tStop, tStep)
	}

	ckt := circuit.NewWithComplex("", false)
	if models != nil {
		ckt.SetModels(models)
	}
	if err := ckt.AssignNodeBranchMaps(elements); err != nil {
		return nil, fmt.Errorf("engine runner: %w", err)
	}
	ckt.CreateMatrix()
	if err := ckt.SetupDevices(elements); err != nil {
		return nil, fmt.Errorf("engine runner: %w", err)
	}

	analyzer := analysis.NewTransient(tStart, tStop, tStep, tStep, false)
	if err := analyzer.Setup(ckt); err != nil {
		return nil, fmt.Errorf("engine runner: transient setup: %w", err)
	}
	if err := analyzer.Execute(); err != nil {
		return nil, fmt.Errorf("engine runner: transient execute: %w", err)
	}
	return analyzer.GetResults(), nil
}
