package model

import (
	"fmt"

	"github.com/dexterpante/scheduler/pkg/ilp"
)

type constraintState struct {
	evaluator  predicateEvaluator
	indexer    indexer
	modelInput ModelInput
}

// Groups the variables' terms by key, keeping keys in order of first appearance so the emitted model is deterministic
func groupTerms[K comparable](variables []variable, key func(variable) K, coefficient func(variable) int64) ([]K, map[K][]ilp.Term) {
	keys := make([]K, 0)
	groups := make(map[K][]ilp.Term)

	for position, variable := range variables {
		k := key(variable)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], ilp.Term{Variable: uint64(position + 1), Coefficient: coefficient(variable)})
	}

	return keys, groups
}

func unit(variable) int64 { return 1 }

func sumCoefficients(terms []ilp.Term) int64 {
	total := int64(0)
	for _, term := range terms {
		total += term.Coefficient
	}
	return total
}

// Every occurrence of every section is taught exactly once. An occurrence without candidates yields an empty row, which makes the model infeasible
func coverageConstraints(state constraintState) []ilp.Constraint {
	_, groups := groupTerms(state.indexer.All(),
		func(variable variable) [2]int { return [2]int{variable.section, variable.occurrence} },
		unit,
	)

	constraints := make([]ilp.Constraint, 0)
	for section, classSection := range state.modelInput.Sections {
		for occurrence := range classSection.OccurrencesPerWeek {
			constraints = append(constraints, ilp.Constraint{
				Name:  fmt.Sprintf("cover_%s_%d", classSection.Id, occurrence+1),
				Terms: groups[[2]int{section, occurrence}],
				Sense: ilp.Equal,
				Bound: 1,
			})
		}
	}
	return constraints
}

// A teacher teaches at most one occurrence per day and period
func teacherConstraints(state constraintState) []ilp.Constraint {
	keys, groups := groupTerms(state.indexer.All(),
		func(variable variable) [3]int { return [3]int{variable.teacher, variable.day, variable.period} },
		unit,
	)

	constraints := make([]ilp.Constraint, 0)
	for _, key := range keys {
		// A single binary term never exceeds 1
		if len(groups[key]) < 2 {
			continue
		}
		constraints = append(constraints, ilp.Constraint{
			Name:  fmt.Sprintf("teacher_%s_%s_%d", state.modelInput.Teachers[key[0]].Id, Days[key[1]], key[2]),
			Terms: groups[key],
			Sense: ilp.LessOrEqual,
			Bound: 1,
		})
	}
	return constraints
}

// A room hosts at most one occurrence per day and period
func roomConstraints(state constraintState) []ilp.Constraint {
	keys, groups := groupTerms(state.indexer.All(),
		func(variable variable) [3]int { return [3]int{variable.room, variable.day, variable.period} },
		unit,
	)

	constraints := make([]ilp.Constraint, 0)
	for _, key := range keys {
		if len(groups[key]) < 2 {
			continue
		}
		constraints = append(constraints, ilp.Constraint{
			Name:  fmt.Sprintf("room_%s_%s_%d", state.modelInput.Rooms[key[0]].Id, Days[key[1]], key[2]),
			Terms: groups[key],
			Sense: ilp.LessOrEqual,
			Bound: 1,
		})
	}
	return constraints
}

// Duration-weighted load of a teacher on a day stays within max_per_day
func dailyLoadConstraints(state constraintState) []ilp.Constraint {
	keys, groups := groupTerms(state.indexer.All(),
		func(variable variable) [2]int { return [2]int{variable.teacher, variable.day} },
		func(variable variable) int64 { return int64(state.modelInput.Sections[variable.section].Duration) },
	)

	bound := int64(state.modelInput.MaxPerDay)
	constraints := make([]ilp.Constraint, 0)
	for _, key := range keys {
		// Rows whose full sum fits the bound are always satisfied
		if sumCoefficients(groups[key]) <= bound {
			continue
		}
		constraints = append(constraints, ilp.Constraint{
			Name:  fmt.Sprintf("daily_%s_%s", state.modelInput.Teachers[key[0]].Id, Days[key[1]]),
			Terms: groups[key],
			Sense: ilp.LessOrEqual,
			Bound: bound,
		})
	}
	return constraints
}

// Duration-weighted load of a teacher over the week stays within max_per_week
func weeklyLoadConstraints(state constraintState) []ilp.Constraint {
	keys, groups := groupTerms(state.indexer.All(),
		func(variable variable) int { return variable.teacher },
		func(variable variable) int64 { return int64(state.modelInput.Sections[variable.section].Duration) },
	)

	bound := int64(state.modelInput.MaxPerWeek)
	constraints := make([]ilp.Constraint, 0)
	for _, key := range keys {
		if sumCoefficients(groups[key]) <= bound {
			continue
		}
		constraints = append(constraints, ilp.Constraint{
			Name:  fmt.Sprintf("weekly_%s", state.modelInput.Teachers[key].Id),
			Terms: groups[key],
			Sense: ilp.LessOrEqual,
			Bound: bound,
		})
	}
	return constraints
}

// Minimizes the number of minor-only assignments
func objective(state constraintState) []ilp.Term {
	terms := make([]ilp.Term, 0)
	for position, variable := range state.indexer.All() {
		if cost := state.evaluator.Cost(variable.teacher, variable.section); cost != 0 {
			terms = append(terms, ilp.Term{Variable: uint64(position + 1), Coefficient: cost})
		}
	}
	return terms
}
