package readiness

import (
	"errors"
	"fmt"

	"github.com/dexterpante/scheduler/pkg/diagnostics"

	"github.com/go-playground/validator/v10"
)

const (
	classSizeThreshold = 45.0
	classSizeStep      = 5.0
	classSizePoints    = 1.5
	specializationStep = 10.0
	specializationCost = 3.0
	overloadStep       = 5.0
	overloadPoints     = 0.5
	shiftPoints        = 2.0
)

// SimulationInput holds the policy and resource parameters of an outcome projection
type SimulationInput struct {
	Baseline      float64 `json:"baseline" validate:"gte=0,lte=100"`
	ClassSize     float64 `json:"class_size" validate:"gte=1"`
	NonSpecialist float64 `json:"pct_non_specialist" validate:"gte=0,lte=100"`
	Overload      float64 `json:"pct_overload" validate:"gte=0,lte=100"`
	Shifts        int     `json:"shifts" validate:"oneof=1 2 3"`
}

var ErrInvalidSimulation = errors.New("invalid simulation input")

var validate = validator.New(validator.WithRequiredStructEnabled())

func (input SimulationInput) Validate() error {
	if err := validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSimulation, err)
	}
	return nil
}

// Projection breaks the projected score into its independent penalties
type Projection struct {
	Input                 SimulationInput `json:"input"`
	ClassSizePenalty      float64         `json:"class_size_penalty"`
	SpecializationPenalty float64         `json:"specialization_penalty"`
	OverloadPenalty       float64         `json:"overload_penalty"`
	ShiftPenalty          float64         `json:"shift_penalty"`
	Score                 float64         `json:"score"`
	Narrative             []string        `json:"narrative"`
}

// Simulate projects an achievement score from baseline by subtracting additive penalties, floored at 0
func Simulate(input SimulationInput) Projection {
	projection := Projection{Input: input}

	if input.ClassSize > classSizeThreshold {
		projection.ClassSizePenalty = ((input.ClassSize - classSizeThreshold) / classSizeStep) * classSizePoints
	}
	projection.SpecializationPenalty = (input.NonSpecialist / specializationStep) * specializationCost
	projection.OverloadPenalty = (input.Overload / overloadStep) * overloadPoints
	if input.Shifts > 1 {
		projection.ShiftPenalty = float64(input.Shifts-1) * shiftPoints
	}

	score := input.Baseline - projection.ClassSizePenalty - projection.SpecializationPenalty - projection.OverloadPenalty - projection.ShiftPenalty
	projection.Score = max(score, 0)
	projection.Narrative = narrative(projection)
	return projection
}

func narrative(projection Projection) []string {
	input := projection.Input
	return []string{
		fmt.Sprintf("Class size %g: -%.2f (%.1f points for every %g students above %g)", input.ClassSize, projection.ClassSizePenalty, classSizePoints, classSizeStep, classSizeThreshold),
		fmt.Sprintf("Non-specialist assignments %g%%: -%.2f (%g points for every %g%%)", input.NonSpecialist, projection.SpecializationPenalty, specializationCost, specializationStep),
		fmt.Sprintf("Overloaded teachers %g%%: -%.2f (%g points for every %g%%)", input.Overload, projection.OverloadPenalty, overloadPoints, overloadStep),
		fmt.Sprintf("Shifts %d: -%.2f (%g points for each shift beyond the first)", input.Shifts, projection.ShiftPenalty, shiftPoints),
		fmt.Sprintf("Projected score: %.2f from a baseline of %g", projection.Score, input.Baseline),
	}
}

// SeedSimulation derives the schedule-dependent parameters from a diagnostics report. An empty schedule seeds no
// non-specialist share
func SeedSimulation(report diagnostics.Report, shifts int, baseline, classSize float64) SimulationInput {
	input := SimulationInput{
		Baseline:  baseline,
		ClassSize: classSize,
		Overload:  report.Percentages.TeacherOverload,
		Shifts:    shifts,
	}
	if report.TotalAssignments > 0 {
		input.NonSpecialist = 100 - report.Percentages.Specialist
	}
	return input
}
