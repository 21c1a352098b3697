package pipeline

import (
	"github.com/dexterpante/scheduler/pkg/readiness"
)

// SimulationRequest overrides the parameters it sets; the rest are seeded from the latest run and the configuration
type SimulationRequest struct {
	Baseline      *float64 `json:"baseline"`
	ClassSize     *float64 `json:"class_size"`
	NonSpecialist *float64 `json:"pct_non_specialist"`
	Overload      *float64 `json:"pct_overload"`
	Shifts        *int     `json:"shifts"`
}

func (pipeline *Pipeline) Simulate(request SimulationRequest) (readiness.Projection, error) {
	input := readiness.SimulationInput{
		Baseline:  pipeline.simulation.Baseline,
		ClassSize: pipeline.simulation.ClassSize,
		Shifts:    pipeline.policy.Shifts,
	}
	if run, ok := pipeline.Latest(); ok {
		input.Shifts = run.Input.Shifts
		if run.Diagnostics != nil {
			input = readiness.SeedSimulation(*run.Diagnostics, run.Input.Shifts, input.Baseline, input.ClassSize)
		}
	}

	if request.Baseline != nil {
		input.Baseline = *request.Baseline
	}
	if request.ClassSize != nil {
		input.ClassSize = *request.ClassSize
	}
	if request.NonSpecialist != nil {
		input.NonSpecialist = *request.NonSpecialist
	}
	if request.Overload != nil {
		input.Overload = *request.Overload
	}
	if request.Shifts != nil {
		input.Shifts = *request.Shifts
	}

	if err := input.Validate(); err != nil {
		return readiness.Projection{}, err
	}
	return readiness.Simulate(input), nil
}
