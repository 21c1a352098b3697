package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/dexterpante/scheduler/internal/cache"
	"github.com/dexterpante/scheduler/internal/config"
	"github.com/dexterpante/scheduler/internal/metrics"
	"github.com/dexterpante/scheduler/internal/pipeline"
	"github.com/dexterpante/scheduler/pkg/ilp"
	"github.com/dexterpante/scheduler/pkg/model"
)

var solverFactories = ilp.Solvers

func solverNames() []string {
	names := lo.Keys(solverFactories)
	slices.Sort(names)
	return names
}

func newTimetabler(solver config.SolverConfig) (model.Timetabler, error) {
	factory, ok := solverFactories[solver.Name]
	if !ok {
		return nil, fmt.Errorf("%q is not a valid solver, allowed values are: %s", solver.Name, strings.Join(solverNames(), ", "))
	}
	return model.NewIlpTimetabler(factory(solver.Path), solver.Precheck), nil
}

// app holds the long-lived dependencies shared by the commands
type app struct {
	store    cache.Store
	metrics  *metrics.Metrics
	pipeline *pipeline.Pipeline
}

func newApp(ctx context.Context, cfg *config.Config, l *zap.Logger) (*app, error) {
	timetabler, err := newTimetabler(cfg.Solver)
	if err != nil {
		return nil, err
	}

	store, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s cache: %w", cfg.Cache.Backend, err)
	}

	m := metrics.New()
	return &app{
		store:   store,
		metrics: m,
		pipeline: pipeline.New(timetabler, pipeline.Options{
			Solver:     cfg.Solver.Name,
			Store:      store,
			Logger:     l,
			Metrics:    m,
			Policy:     cfg.Policy,
			Simulation: cfg.Simulation,
		}),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
