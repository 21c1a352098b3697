package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dexterpante/scheduler/internal/config"
	"github.com/dexterpante/scheduler/pkg/model"
)

const defaultBenchmarkDirectory = "testdata/benchmark"

type ResultType int

const (
	solved ResultType = iota
	infeasible
	unverified
	failed
)

var resultTypes = map[ResultType]string{
	solved:     "solved",
	infeasible: "infeasible",
	unverified: "unverified",
	failed:     "failed",
}

type TestMetadata struct {
	Name        string
	Teachers    int
	Rooms       int
	Sections    int
	Occurrences int
}

type BenchmarkResult struct {
	Solver      string
	Test        TestMetadata
	Duration    int64 // Milliseconds
	Variables   uint64
	Constraints uint64
	Objective   int64
	Result      ResultType
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	directory := defaultBenchmarkDirectory
	if len(args) == 1 {
		directory = args[0]
	}

	solvers, _ := cmd.Flags().GetStringSlice("solvers")
	if len(solvers) == 0 {
		solvers = solverNames()
	}
	if unknown, ok := lo.Find(solvers, func(solver string) bool { return !lo.HasKey(solverFactories, solver) }); ok {
		return fmt.Errorf("%v is not a valid solver", unknown)
	}

	tests, inputs, err := getTests(directory, cfg.Policy)
	if err != nil {
		return err
	}
	results := benchmark(tests, inputs, solvers, cfg.Solver.Precheck, baseLogger)

	file, err := os.Create(benchmarkOut)
	if err != nil {
		return fmt.Errorf("cannot create CSV file: %w", err)
	}
	defer file.Close()
	return toCsv(file, results)
}

// getTests loads every JSON and YAML input of directory, sorted by file name
func getTests(directory string, policy config.PolicyConfig) ([]TestMetadata, []model.ModelInput, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read directory: %w", err)
	}

	tests := make([]TestMetadata, 0, len(entries))
	inputs := make([]model.ModelInput, 0, len(entries))
	for _, entry := range entries {
		extension := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || !slices.Contains([]string{".json", ".yaml", ".yml"}, extension) {
			continue
		}

		filename := filepath.Join(directory, entry.Name())
		input, err := model.InputFromFile(filename)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot parse input file %v: %w", filename, err)
		}
		input = input.WithPolicyDefaults(policy.MaxPerDay, policy.MaxPerWeek, policy.Shifts)

		tests = append(tests, TestMetadata{
			Name:        filename,
			Teachers:    len(input.Teachers),
			Rooms:       len(input.Rooms),
			Sections:    len(input.Sections),
			Occurrences: lo.SumBy(input.Sections, func(section model.ClassSection) int { return section.OccurrencesPerWeek }),
		})
		inputs = append(inputs, input)
	}
	return tests, inputs, nil
}

// benchmark solves every input with every solver, bypassing the memo so each pair is timed
func benchmark(tests []TestMetadata, inputs []model.ModelInput, solvers []string, precheck bool, l *zap.Logger) []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(tests)*len(solvers))

	for i, test := range tests {
		for _, solver := range solvers {
			l.Info("benchmarking", zap.String("test", test.Name), zap.String("solver", solver))
			timetabler := model.NewIlpTimetabler(solverFactories[solver](""), precheck)

			start := time.Now()
			result, err := timetabler.Build(inputs[i])
			duration := time.Since(start).Milliseconds()

			benchmarkResult := BenchmarkResult{
				Solver:      solver,
				Test:        test,
				Duration:    duration,
				Variables:   result.Variables,
				Constraints: result.Constraints,
				Objective:   result.Objective,
			}
			switch {
			case errors.Is(err, model.ErrUnverifiedSchedule):
				benchmarkResult.Result = unverified
			case err != nil:
				l.Warn("benchmark run failed", zap.String("test", test.Name), zap.String("solver", solver), zap.Error(err))
				benchmarkResult.Result = failed
			case !result.Feasible():
				benchmarkResult.Result = infeasible
			default:
				benchmarkResult.Result = solved
			}
			results = append(results, benchmarkResult)
		}
	}
	return results
}

func toCsv(w io.Writer, results []BenchmarkResult) error {
	writer := csv.NewWriter(w)

	header := []string{"Solver", "Test", "Teachers", "Rooms", "Sections", "Occurrences", "Duration(ms)", "Variables", "Constraints", "Objective", "Result"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("cannot write CSV header: %w", err)
	}

	for _, result := range results {
		record := []string{
			result.Solver,
			result.Test.Name,
			fmt.Sprintf("%d", result.Test.Teachers),
			fmt.Sprintf("%d", result.Test.Rooms),
			fmt.Sprintf("%d", result.Test.Sections),
			fmt.Sprintf("%d", result.Test.Occurrences),
			fmt.Sprintf("%d", result.Duration),
			fmt.Sprintf("%d", result.Variables),
			fmt.Sprintf("%d", result.Constraints),
			fmt.Sprintf("%d", result.Objective),
			resultTypes[result.Result],
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("cannot write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
