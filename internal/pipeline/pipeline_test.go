package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dexterpante/scheduler/internal/cache"
	"github.com/dexterpante/scheduler/internal/config"
	"github.com/dexterpante/scheduler/internal/metrics"
	"github.com/dexterpante/scheduler/pkg/ilp"
	"github.com/dexterpante/scheduler/pkg/model"
	"github.com/dexterpante/scheduler/pkg/readiness"
)

// Counts the builds reaching the wrapped timetabler
type countingTimetabler struct {
	model.Timetabler
	builds atomic.Int32
}

func (timetabler *countingTimetabler) Build(input model.ModelInput) (model.Result, error) {
	timetabler.builds.Add(1)
	return timetabler.Timetabler.Build(input)
}

func sampleInput() model.ModelInput {
	return model.ModelInput{
		Teachers: []model.Teacher{
			{Id: "T1", Major: "Math", Minor: "Science"},
			{Id: "T2", Major: "English"},
		},
		Rooms: []model.Room{{Id: "R1", Capacity: 40}, {Id: "R2", Capacity: 40}},
		Sections: []model.ClassSection{
			{Id: "G7-A", Subject: "Math", OccurrencesPerWeek: 2, Duration: 1},
			{Id: "G7-B", Subject: "Science", OccurrencesPerWeek: 1, Duration: 1},
			{Id: "G7-C", Subject: "English", OccurrencesPerWeek: 2, Duration: 1},
		},
	}
}

func newPipeline(store cache.Store) (*Pipeline, *countingTimetabler) {
	timetabler := &countingTimetabler{Timetabler: model.NewIlpTimetabler(ilp.NewPartitionSolver(), true)}
	return New(timetabler, Options{
		Solver:     "partition",
		Store:      store,
		Metrics:    metrics.New(),
		Policy:     config.PolicyConfig{MaxPerDay: 6, MaxPerWeek: 30, Shifts: 1},
		Simulation: config.SimulationConfig{Baseline: 60, ClassSize: 45},
	}), timetabler
}

func TestRun(t *testing.T) {
	//** Arrange
	pipeline, timetabler := newPipeline(cache.NewMemoryStore(0))

	//** Act
	run, err := pipeline.Run(context.Background(), sampleInput())

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, model.StatusOptimal, run.Result.Status)
	assert.Equal(t, int64(1), run.Result.Objective) // G7-B is only covered through T1's minor
	assert.Len(t, run.Result.Schedule, 5)
	assert.Equal(t, 6, run.Input.MaxPerDay) // Policy defaults applied
	assert.True(t, timetabler.Verify(run.Result.Schedule, run.Input))

	require.NotNil(t, run.Diagnostics)
	assert.Empty(t, run.Diagnostics.NonSpecialist)
	require.NotNil(t, run.SRI)
	assert.Equal(t, 100.0, *run.SRI)
	assert.NotEmpty(t, run.Id)
	assert.False(t, run.Cached)

	latest, ok := pipeline.Latest()
	require.True(t, ok)
	assert.Equal(t, run.Id, latest.Id)
}

func TestRunIsMemoized(t *testing.T) {
	//** Arrange
	pipeline, timetabler := newPipeline(cache.NewMemoryStore(0))
	first, err := pipeline.Run(context.Background(), sampleInput())
	require.NoError(t, err)

	//** Act
	second, err := pipeline.Run(context.Background(), sampleInput())
	require.NoError(t, err)

	changed := sampleInput()
	changed.MaxPerWeek = 29
	third, err := pipeline.Run(context.Background(), changed)
	require.NoError(t, err)

	//** Assert
	assert.Equal(t, int32(2), timetabler.builds.Load())
	assert.True(t, second.Cached)
	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, first.Result.Objective, second.Result.Objective)
	assert.Equal(t, first.Diagnostics, second.Diagnostics)
	assert.NotEqual(t, first.Key, third.Key) // Any input change reaches the key
}

func TestRunIsDeterministic(t *testing.T) {
	// Two pipelines without a shared memo solve the same input twice
	first, _ := newPipeline(cache.NewMemoryStore(0))
	second, _ := newPipeline(cache.NewMemoryStore(0))

	firstRun, err := first.Run(context.Background(), sampleInput())
	require.NoError(t, err)
	secondRun, err := second.Run(context.Background(), sampleInput())
	require.NoError(t, err)

	assert.Equal(t, firstRun.Result.Objective, secondRun.Result.Objective)
	assert.Equal(t, firstRun.Diagnostics, secondRun.Diagnostics)
	assert.Equal(t, firstRun.Key, secondRun.Key)
}

func TestRunDeduplicatesConcurrentRequests(t *testing.T) {
	pipeline, timetabler := newPipeline(cache.NewMemoryStore(0))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := pipeline.Run(context.Background(), sampleInput())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Shared in flight or served from the memo afterwards
	assert.Equal(t, int32(1), timetabler.builds.Load())
}

func TestRunInfeasible(t *testing.T) {
	pipeline, _ := newPipeline(cache.NewMemoryStore(0))
	input := sampleInput()
	input.Sections = append(input.Sections, model.ClassSection{Id: "G7-D", Subject: "Filipino", OccurrencesPerWeek: 1, Duration: 1})

	run, err := pipeline.Run(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, model.StatusInfeasible, run.Result.Status)
	assert.Nil(t, run.Result.Schedule)
	assert.Nil(t, run.Diagnostics)
	assert.Nil(t, run.SRI)
}

func TestRunRejectsMalformedInput(t *testing.T) {
	pipeline, timetabler := newPipeline(nil)
	input := sampleInput()
	input.Sections[0].OccurrencesPerWeek = 0

	_, err := pipeline.Run(context.Background(), input)

	assert.True(t, model.IsValidationError(err))
	assert.Zero(t, timetabler.builds.Load())
	_, ok := pipeline.Latest()
	assert.False(t, ok)
}

func TestKey(t *testing.T) {
	input := sampleInput()

	first, err := Key(input, "cbc")
	require.NoError(t, err)
	second, err := Key(input, "highs")
	require.NoError(t, err)
	again, err := Key(sampleInput(), "cbc")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, first, again)
}

func TestSimulate(t *testing.T) {
	t.Run("Without runs", func(t *testing.T) {
		pipeline, _ := newPipeline(nil)

		projection, err := pipeline.Simulate(SimulationRequest{})

		require.NoError(t, err)
		assert.Equal(t, 60.0, projection.Score)
	})

	t.Run("Seeded from the latest run", func(t *testing.T) {
		//** Arrange
		pipeline, _ := newPipeline(nil)
		input := sampleInput()
		input.Shifts = 2
		_, err := pipeline.Run(context.Background(), input)
		require.NoError(t, err)
		classSize := 55.0

		//** Act
		projection, err := pipeline.Simulate(SimulationRequest{ClassSize: &classSize})

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, 2, projection.Input.Shifts)
		assert.Zero(t, projection.Input.NonSpecialist)
		assert.InDelta(t, 55.0, projection.Score, 1e-9) // 60 - 3 (class size) - 2 (shifts)
	})

	t.Run("Invalid override", func(t *testing.T) {
		pipeline, _ := newPipeline(nil)
		shifts := 7

		_, err := pipeline.Simulate(SimulationRequest{Shifts: &shifts})

		assert.ErrorIs(t, err, readiness.ErrInvalidSimulation)
	})
}
