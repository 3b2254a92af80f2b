package main

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openmagnetics/magforge/pkg/spicebridge/analysis"
	circuit "github.com/openmagnetics/magforge/pkg/spicebridge/circuitsim"
	"github.com/openmagnetics/magforge/pkg/spicebridge/netlist"
	"github.com/openmagnetics/magforge/pkg/spicebridge/util"
)

var netlistVerbose bool

var netlistCmd = &cobra.Command{
	Use:   "netlist <file>",
	Short: "Run a SPICE-style deck through the transient/AC/DC/OP engine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if netlistVerbose {
			return runNetlistVerbose(args[0])
		}
		return runNetlist(args[0])
	},
}

func init() {
	netlistCmd.Flags().BoolVarP(&netlistVerbose, "verbose", "v", false, "print parsed elements, node mapping and matrix contributions")
	rootCmd.AddCommand(netlistCmd)
}

func buildAnalyzer(ckt *netlist.Circuit) (analysis.Analysis, error) {
	switch ckt.Analysis {
	case netlist.AnalysisOP:
		return analysis.NewOP(), nil
	case netlist.AnalysisTRAN:
		p := ckt.TranParam
		return analysis.NewTransient(p.TStart, p.TStop, p.TStep, p.TMax, p.UIC), nil
	case netlist.AnalysisAC:
		p := ckt.ACParam
		return analysis.NewAC(p.FStart, p.FStop, p.Points, p.Sweep), nil
	case netlist.AnalysisDC:
		p := ckt.DCParam
		if p.Source2 != "" {
			return analysis.NewDCSweep(
				[]string{p.Source1, p.Source2},
				[]float64{p.Start1, p.Start2},
				[]float64{p.Stop1, p.Stop2},
				[]float64{p.Increment1, p.Increment2},
			), nil
		}
		return analysis.NewDCSweep(
			[]string{p.Source1},
			[]float64{p.Start1},
			[]float64{p.Stop1},
			[]float64{p.Increment1},
		), nil
	}
	return nil, fmt.Errorf("unsupported analysis type")
}

func runNetlist(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading netlist file: %w", err)
	}

	ckt, err := netlist.Parse(string(content))
	if err != nil {
		return fmt.Errorf("parsing netlist: %w", err)
	}

	isComplex := ckt.Analysis == netlist.AnalysisAC
	ckt2 := circuit.NewWithComplex(ckt.Title, isComplex)
	if err := ckt2.AssignNodeBranchMaps(ckt.Elements); err != nil {
		return fmt.Errorf("creating circuit mappings: %w", err)
	}
	ckt2.CreateMatrix()
	if err := ckt2.SetupDevices(ckt.Elements); err != nil {
		return fmt.Errorf("setting up devices: %w", err)
	}

	analyzer, err := buildAnalyzer(ckt)
	if err != nil {
		return err
	}
	if err := analyzer.Setup(ckt2); err != nil {
		return fmt.Errorf("analysis setup failed: %w", err)
	}
	if err := analyzer.Execute(); err != nil {
		return fmt.Errorf("analysis execution failed: %w", err)
	}
	printResults(analyzer.GetResults())
	return nil
}

func runNetlistVerbose(path string) error {
	fmt.Printf("\n[1] Reading netlist file: %s\n", path)
	content, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Error reading netlist file: %v", err)
	}
	fmt.Printf("File contents:\n%s\n", string(content))

	fmt.Println("\n[2] Parsing netlist")
	ckt, err := netlist.Parse(string(content))
	if err != nil {
		log.Fatalf("Error parsing netlist: %v", err)
	}
	fmt.Printf("Analysis type: %v\n", ckt.Analysis)
	fmt.Printf("Circuit elements: %d\n", len(ckt.Elements))
	for i, elem := range ckt.Elements {
		fmt.Printf("Element %d: %s (type: %s, nodes: %v)\n", i, elem.Name, elem.Type, elem.Nodes)
	}

	fmt.Println("\n[3] Creating circuit structure")
	isComplex := ckt.Analysis == netlist.AnalysisAC
	ckt2 := circuit.NewWithComplex(ckt.Title, isComplex)
	if err := ckt2.AssignNodeBranchMaps(ckt.Elements); err != nil {
		log.Fatalf("Error creating circuit mappings: %v", err)
	}
	ckt2.CreateMatrix()

	fmt.Println("\n=== Circuit Element Details ===")
	nodeMap := ckt2.GetNodeMap()
	branchMap := ckt2.GetBranchMap()
	for i, elem := range ckt.Elements {
		fmt.Printf("\nElement %d: %s\n", i, elem.Name)
		fmt.Printf("Type: %s\n", elem.Type)
		fmt.Printf("Nodes: %v\n", elem.Nodes)

		if elem.Type == "K" {
			fmt.Println("Coupled inductors (not circuit nodes):", elem.Nodes)
			continue
		}

		fmt.Printf("Node mapping:\n")
		for j, nodeName := range elem.Nodes {
			if nodeName == "0" || nodeName == "gnd" {
				fmt.Printf("  Node %d: %s -> Ground (0)\n", j, nodeName)
			} else {
				fmt.Printf("  Node %d: %s -> %d\n", j, nodeName, nodeMap[nodeName])
			}
		}

		if elem.Type == "V" {
			branchIdx := branchMap[elem.Name]
			fmt.Printf("Branch index: %d\n", branchIdx)
		}

		if elem.Type == "R" {
			conductance := 1.0 / elem.Value
			fmt.Printf("Resistance: %g ohm\n", elem.Value)
			fmt.Printf("Conductance: %g Mho\n", conductance)
		}
	}

	if err := ckt2.SetupDevices(ckt.Elements); err != nil {
		log.Fatalf("Error setting up devices: %v", err)
	}
	ckt2.GetMatrix().PrintSystem()

	fmt.Println("\n[4] Setting up analyzer")
	analyzer, err := buildAnalyzer(ckt)
	if err != nil {
		log.Fatal(err)
	}
	if err := analyzer.Setup(ckt2); err != nil {
		log.Fatalf("Analysis setup failed: %v", err)
	}
	fmt.Println("Analyzer setup completed")

	fmt.Println("\n[5] Executing analysis")
	if err := analyzer.Execute(); err != nil {
		log.Fatalf("Analysis execution failed: %v", err)
	}

	fmt.Println("\n[6] Analysis completed - Results:")
	printResults(analyzer.GetResults())
	return nil
}

func printResults(results map[string][]float64) {
	fmt.Println("\nAnalysis Results:")
	fmt.Println("================")

	if freqs, isAC := results["FREQ"]; isAC {
		fmt.Printf("\nAC Analysis Results (%d frequency points):\n", len(freqs))
		fmt.Println("Frequency      Node Voltages (Magnitude/Phase)        Branch Currents (Magnitude/Phase)")
		fmt.Println("-----------------------------------------------------------------------------")

		var voltageNames, currentNames []string
		for name := range results {
			if strings.HasSuffix(name, "_MAG") {
				baseName := strings.TrimSuffix(name, "_MAG")
				if strings.HasPrefix(baseName, "V(") {
					voltageNames = append(voltageNames, baseName)
				} else if strings.HasPrefix(baseName, "I(") {
					currentNames = append(currentNames, baseName)
				}
			}
		}
		sort.Strings(voltageNames)
		sort.Strings(currentNames)

		for i, freq := range freqs {
			fmt.Printf("%-13s", util.FormatFrequency(freq))
			for _, name := range voltageNames {
				if mag, ok := results[name+"_MAG"]; ok {
					if phase, ok := results[name+"_PHASE"]; ok {
						fmt.Printf("%s=%s<%sdeg  ", name, util.FormatMagnitude(mag[i]), util.FormatPhase(phase[i]))
					}
				}
			}
			for _, name := range currentNames {
				if mag, ok := results[name+"_MAG"]; ok {
					if phase, ok := results[name+"_PHASE"]; ok {
						fmt.Printf("%s=%s<%sdeg  ", name, util.FormatMagnitude(mag[i]), util.FormatPhase(phase[i]))
					}
				}
			}
			fmt.Println()
		}
		return
	}

	if sweep1, isDC := results["SWEEP1"]; isDC {
		fmt.Printf("\nDC Sweep Analysis Results (%d points):\n", len(sweep1))
		fmt.Println("Sweep Values    Node Voltages        Branch Currents")
		fmt.Println("------------------------------------------------")

		var voltageNames, currentNames []string
		for name := range results {
			if name == "SWEEP1" || name == "SWEEP2" {
				continue
			}
			if strings.HasPrefix(name, "V(") {
				voltageNames = append(voltageNames, name)
			} else if strings.HasPrefix(name, "I(") {
				currentNames = append(currentNames, name)
			}
		}
		sort.Strings(voltageNames)
		sort.Strings(currentNames)

		_, hasNested := results["SWEEP2"]
		for i := range sweep1 {
			if hasNested {
				sweep2 := results["SWEEP2"]
				fmt.Printf("V1=%-9s V2=%-9s  ", util.FormatValueFactor(sweep1[i], "V"), util.FormatValueFactor(sweep2[i], "V"))
			} else {
				fmt.Printf("V=%-9s  ", util.FormatValueFactor(sweep1[i], "V"))
			}
			for _, name := range voltageNames {
				if values, ok := results[name]; ok {
					fmt.Printf("%s=%s  ", name, util.FormatValueFactor(values[i], "V"))
				}
			}
			for _, name := range currentNames {
				if values, ok := results[name]; ok {
					fmt.Printf("%s=%s  ", name, util.FormatValueFactor(values[i], "A"))
				}
			}
			fmt.Println()
		}
		return
	}

	if len(results["TIME"]) <= 1 {
		fmt.Println("\nNode Voltages:")
		for name, values := range results {
			if strings.HasPrefix(name, "V(") {
				fmt.Printf("%s = %s\n", name, util.FormatValueFactor(values[0], "V"))
			}
		}
		fmt.Println("\nBranch Currents:")
		for name, values := range results {
			if strings.HasPrefix(name, "I(") {
				fmt.Printf("%s = %s\n", name, util.FormatValueFactor(values[0], "A"))
			}
		}
		return
	}

	times := results["TIME"]
	fmt.Printf("\nTransient Analysis Results (%d time points):\n", len(times))
	fmt.Println("Time        Node Voltages        Branch Currents")
	fmt.Println("------------------------------------------------")

	var voltageNames, currentNames []string
	for name := range results {
		if name == "TIME" {
			continue
		}
		if strings.HasPrefix(name, "V(") {
			voltageNames = append(voltageNames, name)
		} else if strings.HasPrefix(name, "I(") {
			currentNames = append(currentNames, name)
		}
	}
	sort.Strings(voltageNames)
	sort.Strings(currentNames)

	for i, t := range times {
		fmt.Printf("%9s  ", util.FormatValueFactor(t, "s"))
		for _, name := range voltageNames {
			if values, ok := results[name]; ok {
				fmt.Printf("%s=%s  ", name, util.FormatValueFactor(values[i], "V"))
			}
		}
		for _, name := range currentNames {
			if values, ok := results[name]; ok {
				fmt.Printf("%s=%s  ", name, util.FormatValueFactor(values[i], "A"))
			}
		}
		fmt.Println()
	}
}
