package model

import "slices"

type predicateEvaluator interface {
	// Checks whether the teacher's major or minor matches the section's subject
	Qualified(teacher, section int) bool

	// Checks whether the teacher's major matches the section's subject
	Specialist(teacher, section int) bool

	// Checks whether the period lies within the configured shifts
	Eligible(period int) bool

	// Objective cost of the teacher teaching the section: 0 for a major match, 1 otherwise
	Cost(teacher, section int) int64
}

type standardPredicateEvaluator struct {
	modelInput ModelInput
	eligible   []bool
}

func newPredicateEvaluator(modelInput ModelInput) predicateEvaluator {
	eligible := make([]bool, len(Periods))
	for period := range Periods {
		eligible[period] = slices.Contains(AllowedPeriods(modelInput.Shifts), period)
	}

	return &standardPredicateEvaluator{
		modelInput: modelInput,
		eligible:   eligible,
	}
}

func (evaluator *standardPredicateEvaluator) Qualified(teacher, section int) bool {
	return Qualified(evaluator.modelInput.Teachers[teacher], evaluator.modelInput.Sections[section].Subject)
}

func (evaluator *standardPredicateEvaluator) Specialist(teacher, section int) bool {
	return Specialist(evaluator.modelInput.Teachers[teacher], evaluator.modelInput.Sections[section].Subject)
}

func (evaluator *standardPredicateEvaluator) Eligible(period int) bool {
	return period >= 0 && period < len(evaluator.eligible) && evaluator.eligible[period]
}

func (evaluator *standardPredicateEvaluator) Cost(teacher, section int) int64 {
	if evaluator.Specialist(teacher, section) {
		return 0
	}
	return 1
}

// Qualified reports whether the teacher may teach subject. Empty strings never match
func Qualified(teacher Teacher, subject string) bool {
	return subject != "" && (subject == teacher.Major || subject == teacher.Minor)
}

// Specialist reports whether subject is the teacher's major
func Specialist(teacher Teacher, subject string) bool {
	return subject != "" && subject == teacher.Major
}
