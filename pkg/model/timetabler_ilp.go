package model

import (
	"fmt"

	"github.com/dexterpante/scheduler/pkg/ilp"
)

type ilpTimetabler struct {
	solver   ilp.ILPSolver
	precheck bool
}

// NewIlpTimetabler builds the pruned binary model and hands it to solver. With precheck enabled, instances that cannot
// be feasible by counting or matching arguments are answered without calling the solver
func NewIlpTimetabler(solver ilp.ILPSolver, precheck bool) Timetabler {
	return &ilpTimetabler{
		solver:   solver,
		precheck: precheck,
	}
}

func (timetabler *ilpTimetabler) Build(modelInput ModelInput) (Result, error) {
	//** Validate input
	if err := modelInput.Validate(); err != nil {
		return Result{}, err
	}

	// Nothing to schedule
	if len(modelInput.Sections) == 0 {
		return Result{Status: StatusOptimal, Schedule: Schedule{}}, nil
	}

	//** Initialize dependencies
	evaluator := newPredicateEvaluator(modelInput)
	indexer := buildVariables(modelInput, evaluator)
	state := constraintState{
		evaluator:  evaluator,
		indexer:    indexer,
		modelInput: modelInput,
	}

	//** Rule out structurally infeasible instances
	if reason, ok := uncoveredOccurrence(state); !ok {
		return Result{Status: StatusInfeasible, Variables: indexer.Variables(), Reason: reason}, nil
	}
	if timetabler.precheck {
		if reason, ok := precheck(state); !ok {
			return Result{Status: StatusInfeasible, Variables: indexer.Variables(), Reason: reason}, nil
		}
	}

	//** Build ILP
	instance := buildIlp(indexer.Variables(), []func(state constraintState) []ilp.Constraint{
		coverageConstraints,
		teacherConstraints,
		roomConstraints,
		dailyLoadConstraints,
		weeklyLoadConstraints,
	}, state)

	//** Solve
	solution, err := timetabler.solver.Solve(instance)
	if err != nil {
		return Result{}, fmt.Errorf("cannot solve model: %w", err)
	}
	result := Result{
		Variables:   instance.Variables,
		Constraints: uint64(len(instance.Constraints)),
	}
	if solution == nil {
		result.Status = StatusInfeasible
		result.Reason = "the solver proved the model infeasible"
		return result, nil
	}

	//** Extract and check the schedule
	schedule := extractSchedule(solution, indexer, modelInput)
	if !verify(schedule, modelInput) {
		return Result{}, ErrUnverifiedSchedule
	}

	result.Status = StatusOptimal
	result.Schedule = schedule
	result.Objective = instance.Evaluate(solution)
	return result, nil
}

func (timetabler *ilpTimetabler) Verify(schedule Schedule, modelInput ModelInput) bool {
	return verify(schedule, modelInput)
}
