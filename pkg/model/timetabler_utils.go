package model

import (
	"fmt"

	"github.com/dexterpante/scheduler/pkg/ilp"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

// Matching precheck is skipped above this many candidate edges
const precheckEdgeLimit = 2_000_000

func verify(schedule Schedule, modelInput ModelInput) bool {
	//** Initialize dependencies
	evaluator := newPredicateEvaluator(modelInput)
	teachers := lo.SliceToMap(lo.Range(len(modelInput.Teachers)), func(i int) (string, int) { return modelInput.Teachers[i].Id, i })
	sections := lo.SliceToMap(lo.Range(len(modelInput.Sections)), func(i int) (string, int) { return modelInput.Sections[i].Id, i })
	rooms := lo.SliceToMap(lo.Range(len(modelInput.Rooms)), func(i int) (string, int) { return modelInput.Rooms[i].Id, i })

	teacherAssistance := make(map[[3]int]bool)
	roomAssistance := make(map[[3]int]bool)
	occurrenceTaught := make(map[[2]int]bool)
	dailyLoad := make(map[[2]int]int)
	weeklyLoad := make(map[int]int)

	for _, assignment := range schedule {
		teacher, teacherOk := teachers[assignment.Teacher]
		section, sectionOk := sections[assignment.Section]
		room, roomOk := rooms[assignment.Room]
		if !teacherOk || !sectionOk || !roomOk {
			return false
		}
		classSection := modelInput.Sections[section]
		day, period, occurrence := assignment.DayIndex, assignment.PeriodIndex, assignment.Occurrence-1

		// Check that:
		// - Day and period exist in the calendar and the period is within the shifts
		// - Teacher is qualified for the section's subject
		// - Assignment carries the section's subject and duration
		// - Occurrence exists and is taught only once
		// - Teacher and room are not already busy in the day and period
		if day < 0 || day >= len(Days) || Days[day] != assignment.Day ||
			!evaluator.Eligible(period) || Periods[period] != assignment.Period ||
			!evaluator.Qualified(teacher, section) ||
			assignment.Subject != classSection.Subject ||
			assignment.Duration != classSection.Duration ||
			occurrence < 0 || occurrence >= classSection.OccurrencesPerWeek ||
			occurrenceTaught[[2]int{section, occurrence}] ||
			teacherAssistance[[3]int{teacher, day, period}] ||
			roomAssistance[[3]int{room, day, period}] {
			return false
		}

		teacherAssistance[[3]int{teacher, day, period}] = true // Store teacher assistance
		roomAssistance[[3]int{room, day, period}] = true       // Store room assistance
		occurrenceTaught[[2]int{section, occurrence}] = true   // Store occurrence taught
		dailyLoad[[2]int{teacher, day}] += classSection.Duration
		weeklyLoad[teacher] += classSection.Duration
	}

	// Check load limits
	if lo.SomeBy(lo.Values(dailyLoad), func(load int) bool { return load > modelInput.MaxPerDay }) ||
		lo.SomeBy(lo.Values(weeklyLoad), func(load int) bool { return load > modelInput.MaxPerWeek }) {
		return false
	}

	// Check that every occurrence of every section is taught
	return len(occurrenceTaught) == totalOccurrences(modelInput)
}

func totalOccurrences(modelInput ModelInput) int {
	return lo.SumBy(modelInput.Sections, func(section ClassSection) int { return section.OccurrencesPerWeek })
}

// Generates the constraint families concurrently and assembles them in the given order
func buildIlp(variables uint64, constraints []func(state constraintState) []ilp.Constraint, state constraintState) ilp.ILP {
	type generated struct {
		position    int
		constraints []ilp.Constraint
	}

	constraintsChannel := make(chan generated) // Channel to collect constraints

	// Execute constraints functions on different goroutines to improve performance
	for position, constraint := range constraints {
		go func(position int, constraint func(state constraintState) []ilp.Constraint) {
			constraintsChannel <- generated{position: position, constraints: constraint(state)}
		}(position, constraint)
	}

	// Collect generated constraints
	families := make([][]ilp.Constraint, len(constraints))
	for range constraints {
		family := <-constraintsChannel
		families[family.position] = family.constraints
	}
	close(constraintsChannel)

	return ilp.ILP{
		Variables:   variables,
		Objective:   objective(state),
		Constraints: lo.Flatten(families),
	}
}

// Reports the first section occurrence that no variable can cover
func uncoveredOccurrence(state constraintState) (string, bool) {
	covered := make(map[int]bool)
	for _, variable := range state.indexer.All() {
		covered[variable.section] = true
	}

	for section, classSection := range state.modelInput.Sections {
		if covered[section] {
			continue
		}
		if len(state.modelInput.Rooms) == 0 {
			return "no room is available to host the sections", false
		}
		return fmt.Sprintf("no teacher is qualified to teach %s (section %s)", classSection.Subject, classSection.Id), false
	}
	return "", true
}

// Sound necessary conditions: any instance rejected here has no feasible schedule
func precheck(state constraintState) (string, bool) {
	modelInput := state.modelInput
	allowed := len(AllowedPeriods(modelInput.Shifts))
	occurrences := totalOccurrences(modelInput)

	//** Counting arguments
	if roomSlots := len(modelInput.Rooms) * len(Days) * allowed; occurrences > roomSlots {
		return fmt.Sprintf("%d section occurrences exceed the %d available room slots", occurrences, roomSlots), false
	}
	for _, section := range modelInput.Sections {
		if section.Duration > modelInput.MaxPerDay || section.Duration > modelInput.MaxPerWeek {
			return fmt.Sprintf("section %s lasts %d, above the load limits (%d per day, %d per week)", section.Id, section.Duration, modelInput.MaxPerDay, modelInput.MaxPerWeek), false
		}
	}

	//** Matching argument
	// Occurrences on the left, teacher slots on the right: a teacher can take at most as many occurrences as its
	// periods and load limits allow when every occurrence lasts as little as its shortest qualified section
	left := make([]any, 0, occurrences)
	for section, classSection := range modelInput.Sections {
		for occurrence := range classSection.OccurrencesPerWeek {
			left = append(left, [2]int{section, occurrence})
		}
	}
	right := make([]any, 0)
	for teacher := range modelInput.Teachers {
		for slot := range teacherCapacity(state, teacher, allowed) {
			right = append(right, [2]int{teacher, slot})
		}
	}
	if len(left)*len(right) > precheckEdgeLimit {
		return "", true
	}

	neighbours := func(occurrenceAny any, slotAny any) (bool, error) {
		occurrence, slot := occurrenceAny.([2]int), slotAny.([2]int)
		return state.evaluator.Qualified(slot[0], occurrence[0]), nil
	}

	graph, err := bipartitegraph.NewBipartiteGraph(left, right, neighbours)
	if err != nil {
		// The matching is only an early exit, the solver still decides
		return "", true
	}

	if matching := graph.LargestMatching(); len(matching) < len(left) {
		return fmt.Sprintf("only %d of %d section occurrences can be matched to a qualified teacher within the load limits", len(matching), len(left)), false
	}
	return "", true
}

// Upper bound on the occurrences a teacher can take in a week
func teacherCapacity(state constraintState, teacher int, allowed int) int {
	durations := lo.FilterMap(state.modelInput.Sections, func(section ClassSection, index int) (int, bool) {
		return section.Duration, state.evaluator.Qualified(teacher, index)
	})
	if len(durations) == 0 {
		return 0
	}

	shortest := lo.Min(durations)
	perDay := min(allowed, state.modelInput.MaxPerDay/shortest)
	return min(len(Days)*perDay, state.modelInput.MaxPerWeek/shortest)
}
