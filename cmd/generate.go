package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/psrt-sim/psrt-sim/sim/workload"
)

var genSpec = workload.DefaultGeneratorSpec(42)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a random workload spec",
	Long:  "Generate a reproducible random workload and write it as YAML to stdout for piping into `psrt-sim run --workload`.",
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := workload.Generate(genSpec)
		if err != nil {
			logrus.Fatalf("Workload generation failed: %v", err)
		}
		if err := writeSpec(os.Stdout, spec); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// --- psrt-sim preset ---

var listPresets bool

var presetCmd = &cobra.Command{
	Use:   "preset [name]",
	Short: "Print a built-in workload preset as YAML",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if listPresets {
			for _, name := range workload.PresetNames() {
				fmt.Println(name)
			}
			return
		}
		name := "default"
		if len(args) == 1 {
			name = args[0]
		}
		spec, err := workload.Preset(name)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := writeSpec(os.Stdout, spec); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// writeSpec marshals a WorkloadSpec to YAML and writes it to w.
func writeSpec(w io.Writer, spec *workload.WorkloadSpec) error {
	data, err := spec.Marshal()
	if err != nil {
		return fmt.Errorf("YAML marshal failed: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func init() {
	generateCmd.Flags().Int64Var(&genSpec.Seed, "seed", genSpec.Seed, "Seed for random workload generation")
	generateCmd.Flags().IntVar(&genSpec.NumProcesses, "num-processes", genSpec.NumProcesses, "Number of processes")
	generateCmd.Flags().Int64Var(&genSpec.MaxArrival, "max-arrival", genSpec.MaxArrival, "Latest arrival tick")
	generateCmd.Flags().Int64Var(&genSpec.CPUMin, "cpu-min", genSpec.CPUMin, "Min CPU burst")
	generateCmd.Flags().Int64Var(&genSpec.CPUMax, "cpu-max", genSpec.CPUMax, "Max CPU burst")
	generateCmd.Flags().Int64Var(&genSpec.IOMin, "io-min", genSpec.IOMin, "Min IO burst")
	generateCmd.Flags().Int64Var(&genSpec.IOMax, "io-max", genSpec.IOMax, "Max IO burst")
	generateCmd.Flags().IntVar(&genSpec.MaxIOBursts, "max-io-bursts", genSpec.MaxIOBursts, "Max IO bursts per process (0 = CPU-only)")

	presetCmd.Flags().BoolVar(&listPresets, "list", false, "List preset names")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(presetCmd)
}
