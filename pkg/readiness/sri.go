package readiness

import (
	"errors"
	"fmt"
	"math"

	"github.com/dexterpante/scheduler/pkg/diagnostics"

	"github.com/samber/lo"
)

var ErrInvalidWeights = errors.New("weights must be non-negative and sum to 1")

// Weights of the School Readiness Index components
type Weights struct {
	Specialist      float64 `json:"specialist" mapstructure:"specialist"`
	TeacherOverload float64 `json:"teacher_overload" mapstructure:"teacher_overload"`
	RoomOverload    float64 `json:"room_overload" mapstructure:"room_overload"`
	UnmetSections   float64 `json:"unmet_sections" mapstructure:"unmet_sections"`
}

var DefaultWeights = Weights{
	Specialist:      0.4,
	TeacherOverload: 0.2,
	RoomOverload:    0.2,
	UnmetSections:   0.2,
}

func (weights Weights) Validate() error {
	values := []float64{weights.Specialist, weights.TeacherOverload, weights.RoomOverload, weights.UnmetSections}
	if lo.SomeBy(values, func(value float64) bool { return value < 0 }) {
		return fmt.Errorf("%w: got %+v", ErrInvalidWeights, weights)
	}
	if math.Abs(lo.Sum(values)-1) > 1e-9 {
		return fmt.Errorf("%w: got a sum of %v", ErrInvalidWeights, lo.Sum(values))
	}
	return nil
}

// ComputeSRI scores readiness on a 0-100 scale with the default weights. Inputs are percentages
func ComputeSRI(specialist, teacherOverload, roomOverload, unmetSections float64) float64 {
	sri, _ := ComputeWeightedSRI(DefaultWeights, specialist, teacherOverload, roomOverload, unmetSections)
	return sri
}

// ComputeWeightedSRI clamps every percentage to [0, 100] and rounds the result to 2 decimals
func ComputeWeightedSRI(weights Weights, specialist, teacherOverload, roomOverload, unmetSections float64) (float64, error) {
	if err := weights.Validate(); err != nil {
		return 0, err
	}

	clamp := func(percentage float64) float64 { return lo.Clamp(percentage, 0, 100) }
	sri := weights.Specialist*clamp(specialist) +
		weights.TeacherOverload*(100-clamp(teacherOverload)) +
		weights.RoomOverload*(100-clamp(roomOverload)) +
		weights.UnmetSections*(100-clamp(unmetSections))

	return round2(sri), nil
}

// ScoreReport computes the SRI of a diagnostics report with the default weights
func ScoreReport(report diagnostics.Report) float64 {
	percentages := report.Percentages
	return ComputeSRI(percentages.Specialist, percentages.TeacherOverload, percentages.RoomOverload, percentages.UnmetSections)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
