package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dexterpante/scheduler/internal/config"
	"github.com/dexterpante/scheduler/pkg/ilp"
	"github.com/dexterpante/scheduler/pkg/model"
)

const benchmarkDirectory = "../../testdata/benchmark"

var policy = config.PolicyConfig{MaxPerDay: 6, MaxPerWeek: 30, Shifts: 1}

func withPartitionSolver(t *testing.T) {
	t.Helper()
	previous := solverFactories
	solverFactories = map[string]func(string) ilp.ILPSolver{
		"partition": func(string) ilp.ILPSolver { return ilp.NewPartitionSolver() },
	}
	t.Cleanup(func() { solverFactories = previous })
}

func testConfig() *config.Config {
	return &config.Config{
		Solver:     config.SolverConfig{Name: "partition", Precheck: true},
		Cache:      config.CacheConfig{Backend: config.CacheMemory},
		Policy:     policy,
		Simulation: config.SimulationConfig{Baseline: 60, ClassSize: 45},
	}
}

func TestNewTimetabler(t *testing.T) {
	withPartitionSolver(t)

	_, err := newTimetabler(config.SolverConfig{Name: "partition"})
	assert.NoError(t, err)

	_, err = newTimetabler(config.SolverConfig{Name: "kissat"})
	assert.ErrorContains(t, err, "allowed values are: partition")
}

func TestSolve(t *testing.T) {
	//** Arrange
	withPartitionSolver(t)
	a, err := newApp(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	//** Act
	run, err := solve(context.Background(), a.pipeline, filepath.Join(benchmarkDirectory, "junior_high.json"))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, writeRun(&out, "", run))

	//** Assert
	assert.Equal(t, model.StatusOptimal, run.Result.Status)
	assert.Equal(t, int64(1), run.Result.Objective) // Filipino is only covered through a minor
	assert.Len(t, run.Result.Schedule, 6)
	assert.Equal(t, 4, run.Input.MaxPerDay) // File limits win over the policy defaults
	assert.Contains(t, out.String(), `"status": "optimal"`)
}

func TestSolveMissingFile(t *testing.T) {
	withPartitionSolver(t)
	a, err := newApp(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	_, err = solve(context.Background(), a.pipeline, filepath.Join(benchmarkDirectory, "missing.json"))

	assert.ErrorContains(t, err, "cannot parse input file")
}

func TestSimulationRequest(t *testing.T) {
	//** Arrange
	withPartitionSolver(t)
	flags := pflag.NewFlagSet("simulate", pflag.ContinueOnError)
	addSimulationFlags(flags)
	require.NoError(t, flags.Parse([]string{"--class-size", "55", "--shifts", "2"}))

	//** Act
	request, err := simulationRequest(flags)

	//** Assert
	require.NoError(t, err)
	require.NotNil(t, request.ClassSize)
	assert.Equal(t, 55.0, *request.ClassSize)
	require.NotNil(t, request.Shifts)
	assert.Equal(t, 2, *request.Shifts)
	assert.Nil(t, request.Baseline) // Unset flags leave the seeded values alone
	assert.Nil(t, request.NonSpecialist)
	assert.Nil(t, request.Overload)

	a, err := newApp(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()
	projection, err := a.pipeline.Simulate(request)
	require.NoError(t, err)

	var out bytes.Buffer
	printProjection(&out, projection)
	assert.Contains(t, out.String(), "55.00")
}

func TestBenchmark(t *testing.T) {
	//** Arrange
	withPartitionSolver(t)
	tests, inputs, err := getTests(benchmarkDirectory, policy)
	require.NoError(t, err)

	//** Act
	results := benchmark(tests, inputs, []string{"partition"}, true, zap.NewNop())
	var out bytes.Buffer
	require.NoError(t, toCsv(&out, results))

	//** Assert
	require.Len(t, results, 3)
	outcomes := map[string]string{}
	for _, result := range results {
		outcomes[filepath.Base(result.Test.Name)] = resultTypes[result.Result]
	}
	assert.Equal(t, map[string]string{
		"junior_high.json":   "solved",
		"no_specialist.json": "infeasible",
		"senior_high.yaml":   "solved",
	}, outcomes)

	records, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "Solver", records[0][0])
	assert.Equal(t, "partition", records[1][0])
}

func TestExitCode(t *testing.T) {
	var err error = exitCode(exitInfeasible)

	assert.EqualError(t, err, "exit status 20")
}
