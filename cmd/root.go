package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	sim "github.com/psrt-sim/psrt-sim/sim"
	"github.com/psrt-sim/psrt-sim/sim/trace"
	"github.com/psrt-sim/psrt-sim/sim/workload"
)

var (
	// CLI flags for the run command
	workloadPaths []string // Workload YAML files, each simulated independently
	presetFlag    string   // Built-in workload preset
	logLevel      string   // Log verbosity level
	traceLevel    string   // Step trace level (none, steps)
	outputFormat  string   // Report format (table, json, yaml)
	runID         string   // Run identifier; generated when empty
	parallelRuns  int      // Max workloads simulated concurrently
	showProgress  bool     // Progress bar on stderr for multi-workload runs
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "psrt-sim",
	Short: "Preemptive shortest-remaining-time CPU scheduling simulator with IO bursts",
}

// namedWorkload is one simulation input with the label used in reports.
type namedWorkload struct {
	Name  string
	Specs []sim.ProcessSpec
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the PSRT-IO simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel(logLevel)

		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s (valid: none, steps)", traceLevel)
		}
		if !isValidFormat(outputFormat) {
			logrus.Fatalf("Invalid output format: %s (valid: %s)", outputFormat, strings.Join(validFormats, ", "))
		}

		workloads, err := collectWorkloads(workloadPaths, presetFlag)
		if err != nil {
			logrus.Fatalf("Failed to load workloads: %v", err)
		}

		var bar *progressbar.ProgressBar
		if showProgress && len(workloads) > 1 {
			bar = newProgressBar(len(workloads))
		}

		results, err := runWorkloads(cmd.Context(), workloads, trace.TraceLevel(traceLevel), runID, parallelRuns, bar)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		if err := writeReport(os.Stdout, outputFormat, workloads, results); err != nil {
			logrus.Fatalf("Failed to write report: %v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// setLogLevel parses and applies a logrus level, exiting on invalid input.
func setLogLevel(s string) {
	level, err := logrus.ParseLevel(s)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", s)
	}
	logrus.SetLevel(level)
}

// collectWorkloads loads every workload file, or the named preset when no
// file is given. With neither, the default preset is used.
func collectWorkloads(paths []string, preset string) ([]namedWorkload, error) {
	if len(paths) == 0 {
		if preset == "" {
			preset = "default"
		}
		ws, err := workload.Preset(preset)
		if err != nil {
			return nil, err
		}
		return toNamed([]string{"preset:" + preset}, []*workload.WorkloadSpec{ws})
	}
	if preset != "" {
		return nil, fmt.Errorf("--preset and --workload are mutually exclusive")
	}

	specs := make([]*workload.WorkloadSpec, 0, len(paths))
	for _, path := range paths {
		ws, err := workload.LoadWorkloadSpec(path)
		if err != nil {
			return nil, err
		}
		specs = append(specs, ws)
	}
	return toNamed(paths, specs)
}

func toNamed(names []string, specs []*workload.WorkloadSpec) ([]namedWorkload, error) {
	out := make([]namedWorkload, len(specs))
	for i, ws := range specs {
		if err := ws.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", names[i], err)
		}
		ps, err := ws.ProcessSpecs()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", names[i], err)
		}
		out[i] = namedWorkload{Name: names[i], Specs: ps}
	}
	return out, nil
}

// runWorkloads simulates each workload on its own Simulator, at most
// parallel at a time. Results are returned in input order. The first
// failing run cancels the ones not yet started.
func runWorkloads(ctx context.Context, workloads []namedWorkload, level trace.TraceLevel, id string, parallel int, bar *progressbar.ProgressBar) ([]*sim.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if parallel < 1 {
		parallel = 1
	}
	results := make([]*sim.Result, len(workloads))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, wl := range workloads {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cfg := sim.NewSimConfig(level)
			cfg.RunID = runIDFor(id, i, len(workloads))
			res, err := sim.Simulate(wl.Specs, cfg)
			if err != nil {
				return fmt.Errorf("%s: %w", wl.Name, err)
			}
			results[i] = res
			logrus.Debugf("workload %s finished as run %s", wl.Name, res.RunID)
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// runIDFor derives per-workload run IDs from a user-supplied base.
func runIDFor(base string, idx, total int) string {
	if base == "" || total == 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, idx+1)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringArrayVar(&workloadPaths, "workload", nil, "Path to workload YAML file (can be repeated)")
	runCmd.Flags().StringVar(&presetFlag, "preset", "", "Built-in workload preset (default, io, preempt); used when no --workload is given")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&traceLevel, "trace", "steps", "Step trace level (none, steps)")
	runCmd.Flags().StringVar(&outputFormat, "format", "table", "Report format (table, json, yaml)")
	runCmd.Flags().StringVar(&runID, "run-id", "", "Run identifier stamped on reports (generated when empty)")
	runCmd.Flags().IntVar(&parallelRuns, "parallel", 4, "Max workloads simulated concurrently")
	runCmd.Flags().BoolVar(&showProgress, "progress", false, "Show a progress bar on stderr when running several workloads")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
