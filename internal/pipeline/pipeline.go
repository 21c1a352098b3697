package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/hashstructure/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dexterpante/scheduler/internal/cache"
	"github.com/dexterpante/scheduler/internal/config"
	"github.com/dexterpante/scheduler/internal/metrics"
	"github.com/dexterpante/scheduler/pkg/diagnostics"
	"github.com/dexterpante/scheduler/pkg/model"
	"github.com/dexterpante/scheduler/pkg/readiness"
)

// Run is one completed unit of work: the solve, its diagnostics and readiness score
type Run struct {
	Id          string              `json:"id"`
	Key         string              `json:"key"`
	Solver      string              `json:"solver"`
	Input       model.ModelInput    `json:"input"`
	Result      model.Result        `json:"result"`
	Diagnostics *diagnostics.Report `json:"diagnostics,omitempty"` // nil when infeasible
	SRI         *float64            `json:"sri,omitempty"`
	StartedAt   time.Time           `json:"started_at"`
	Elapsed     time.Duration       `json:"elapsed"`
	Cached      bool                `json:"cached"`
}

type Pipeline struct {
	timetabler model.Timetabler
	solver     string
	store      cache.Store
	logger     *zap.Logger
	metrics    *metrics.Metrics
	policy     config.PolicyConfig
	simulation config.SimulationConfig

	mu     sync.Mutex // At most one solve is active
	group  singleflight.Group
	latest atomic.Pointer[Run]
}

type Options struct {
	Solver     string
	Store      cache.Store // Optional, runs are not memoized without one
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
	Policy     config.PolicyConfig
	Simulation config.SimulationConfig
}

func New(timetabler model.Timetabler, options Options) *Pipeline {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := options.Store
	if store == nil {
		store = cache.NewMemoryStore(0)
	}

	return &Pipeline{
		timetabler: timetabler,
		solver:     options.Solver,
		store:      store,
		logger:     logger,
		metrics:    options.Metrics,
		policy:     options.Policy,
		simulation: options.Simulation,
	}
}

// Key identifies a run by every parameter that shapes the model and by the solver answering it
func Key(input model.ModelInput, solver string) (string, error) {
	hash, err := hashstructure.Hash(struct {
		Input  model.ModelInput
		Solver string
	}{input, solver}, hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("cannot hash model input: %w", err)
	}
	return fmt.Sprintf("%s-%016x", solver, hash), nil
}

// Run builds, solves and audits a schedule, or serves it from the memo. Concurrent identical requests share one solve
func (pipeline *Pipeline) Run(ctx context.Context, input model.ModelInput) (*Run, error) {
	input = input.WithPolicyDefaults(pipeline.policy.MaxPerDay, pipeline.policy.MaxPerWeek, pipeline.policy.Shifts)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	key, err := Key(input, pipeline.solver)
	if err != nil {
		return nil, err
	}

	value, err, _ := pipeline.group.Do(key, func() (any, error) {
		return pipeline.run(ctx, key, input)
	})
	if err != nil {
		return nil, err
	}
	return value.(*Run), nil
}

func (pipeline *Pipeline) run(ctx context.Context, key string, input model.ModelInput) (*Run, error) {
	if run, ok := pipeline.lookup(ctx, key); ok {
		pipeline.latest.Store(run)
		return run, nil
	}

	pipeline.mu.Lock()
	defer pipeline.mu.Unlock()

	start := time.Now()
	result, err := pipeline.timetabler.Build(input)
	elapsed := time.Since(start)
	if err != nil {
		pipeline.logger.Error("run failed", zap.String("key", key), zap.Duration("elapsed", elapsed), zap.Error(err))
		return nil, err
	}

	run := &Run{
		Id:        uuid.NewString(),
		Key:       key,
		Solver:    pipeline.solver,
		Input:     input,
		Result:    result,
		StartedAt: start,
		Elapsed:   elapsed,
	}
	if result.Feasible() {
		report := diagnostics.Analyze(result.Schedule, input)
		sri := readiness.ScoreReport(report)
		run.Diagnostics, run.SRI = &report, &sri
		pipeline.metrics.SetSRI(sri)
	}
	pipeline.metrics.ObserveSolve(pipeline.solver, string(result.Status), elapsed, result.Variables)

	pipeline.remember(ctx, run)
	pipeline.latest.Store(run)

	pipeline.logger.Info("run completed",
		zap.String("run_id", run.Id),
		zap.String("key", key),
		zap.String("status", string(result.Status)),
		zap.Int64("objective", result.Objective),
		zap.Uint64("variables", result.Variables),
		zap.Uint64("constraints", result.Constraints),
		zap.Duration("elapsed", elapsed),
		zap.String("reason", result.Reason),
	)
	return run, nil
}

func (pipeline *Pipeline) lookup(ctx context.Context, key string) (*Run, bool) {
	value, ok, err := pipeline.store.Get(ctx, key)
	if err != nil {
		pipeline.logger.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	pipeline.metrics.ObserveCache(ok)
	if !ok {
		return nil, false
	}

	var run Run
	if err := json.Unmarshal(value, &run); err != nil {
		pipeline.logger.Warn("cannot decode cached run", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	run.Cached = true
	pipeline.logger.Debug("run served from cache", zap.String("run_id", run.Id), zap.String("key", key))
	return &run, true
}

func (pipeline *Pipeline) remember(ctx context.Context, run *Run) {
	value, err := json.Marshal(run)
	if err != nil {
		pipeline.logger.Warn("cannot encode run", zap.String("run_id", run.Id), zap.Error(err))
		return
	}
	if err := pipeline.store.Set(ctx, run.Key, value); err != nil {
		pipeline.logger.Warn("cache store failed", zap.String("run_id", run.Id), zap.Error(err))
	}
}

// Latest returns the most recent completed run, never one in progress
func (pipeline *Pipeline) Latest() (*Run, bool) {
	run := pipeline.latest.Load()
	return run, run != nil
}
