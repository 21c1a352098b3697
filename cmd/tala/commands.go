package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dexterpante/scheduler/internal/config"
	"github.com/dexterpante/scheduler/internal/logger"
)

// --- Global Command Variables ---
var (
	configPath   string
	solverName   string
	noPrecheck   bool
	solveOut     string
	benchmarkOut string

	cfg        *config.Config
	baseLogger *zap.Logger

	rootCmd = &cobra.Command{
		Use:   "tala",
		Short: "Teacher and classroom allocation for secondary schools",
		Long: `tala builds a weekly timetable that covers every class section with a qualified
teacher and a room, preferring teachers whose major matches the subject, then audits
the result and scores the school's readiness.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if baseLogger != nil {
				_ = baseLogger.Sync()
			}
		},
	}

	// --- Solving ---
	solveCmd = &cobra.Command{
		Use:   "solve [input file]",
		Short: "Solves a JSON or YAML model input and prints the run as JSON",
		Long: `Solves the model input and prints the run as JSON. The process exits with 10 when an
optimal schedule was found, 20 when the model is infeasible and 15 when the solver answer
failed verification.`,
		Args: cobra.ExactArgs(1),
		RunE: runSolve, // Defined in cmd_solve.go
	}

	// --- Simulation ---
	simulateCmd = &cobra.Command{
		Use:   "simulate",
		Short: "Projects a learning outcome score from school conditions",
		RunE:  runSimulate, // Defined in cmd_simulate.go
	}

	// --- HTTP API ---
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serves the scheduling API over HTTP",
		RunE:  runServe, // Defined in cmd_serve.go
	}

	// --- Benchmark ---
	benchmarkCmd = &cobra.Command{
		Use:   "benchmark [input directory]",
		Short: "Solves every input of a directory with every selected solver and writes a CSV report",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBenchmark, // Defined in cmd_benchmark.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&solverName, "solver", "", fmt.Sprintf("Solver to use, one of %s; overrides the configuration", strings.Join(solverNames(), ", ")))
	rootCmd.PersistentFlags().BoolVar(&noPrecheck, "no-precheck", false, "Skip the matching-based feasibility precheck")

	solveCmd.Flags().StringVarP(&solveOut, "out", "o", "", "File where the run is written; if empty, it is written to the standard output")

	addSimulationFlags(simulateCmd.Flags())

	benchmarkCmd.Flags().StringSlice("solvers", nil, "Solvers to benchmark; every supported solver when empty")
	benchmarkCmd.Flags().StringVarP(&benchmarkOut, "out", "o", "benchmark_results.csv", "CSV report path")

	rootCmd.AddCommand(solveCmd, simulateCmd, serveCmd, benchmarkCmd)
}

// setup loads the configuration, applies flag overrides and builds the logger
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if solverName != "" {
		loaded.Solver.Name = strings.ToLower(solverName)
	}
	if noPrecheck {
		loaded.Solver.Precheck = false
	}

	built, err := logger.New(loaded)
	if err != nil {
		return fmt.Errorf("cannot build logger: %w", err)
	}

	cfg, baseLogger = loaded, built
	return nil
}
