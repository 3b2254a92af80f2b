// Command magforge is the CLI surface over this module's design,
// simulation and circuit-level engines: design subcommands turn a
// topology's functional spec into its derived electrical design, and the
// netlist subcommand drives the transient engine directly from a SPICE
// deck, the same job the teacher's standalone `spice` binary did.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "magforge",
	Short: "Magnetic component design and circuit-simulation engine",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
