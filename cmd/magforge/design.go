package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/openmagnetics/magforge/pkg/topology"
)

var designCmd = &cobra.Command{
	Use:   "design",
	Short: "Derive a converter topology's electrical design from its functional spec",
}

var designFile string

func init() {
	designCmd.PersistentFlags().StringVarP(&designFile, "file", "f", "", "JSON spec file (defaults to stdin)")
	designCmd.AddCommand(designFlybackCmd, designCLLCCmd)
	rootCmd.AddCommand(designCmd)
}

func readSpec(v any) error {
	var r io.Reader = os.Stdin
	if designFile != "" {
		f, err := os.Open(designFile)
		if err != nil {
			return fmt.Errorf("opening spec file: %w", err)
		}
		defer f.Close()
		r = f
	}
	return json.NewDecoder(r).Decode(v)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var designFlybackCmd = &cobra.Command{
	Use:   "flyback",
	Short: "Design a flyback transformer from a topology.FlybackSpec",
	RunE: func(cmd *cobra.Command, args []string) error {
		var spec topology.FlybackSpec
		if err := readSpec(&spec); err != nil {
			return err
		}
		design, err := topology.DesignFlyback(spec)
		if err != nil {
			return err
		}
		return printJSON(design)
	},
}

var designCLLCCmd = &cobra.Command{
	Use:   "cllc",
	Short: "Design a CLLC resonant tank from a topology.CLLCSpec",
	RunE: func(cmd *cobra.Command, args []string) error {
		var spec topology.CLLCSpec
		if err := readSpec(&spec); err != nil {
			return err
		}
		design, err := topology.DesignCLLC(spec)
		if err != nil {
			return err
		}
		return printJSON(design)
	},
}
