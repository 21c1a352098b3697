package model

import (
	"cmp"
	"slices"

	"github.com/dexterpante/scheduler/pkg/ilp"
)

type Assignment struct {
	Teacher     string `json:"teacher"`
	Section     string `json:"section"`
	Subject     string `json:"subject"`
	Room        string `json:"room"`
	Day         string `json:"day"`
	Period      string `json:"period"`
	DayIndex    int    `json:"day_index"`
	PeriodIndex int    `json:"period_index"`
	Occurrence  int    `json:"occurrence"` // 1-based
	Duration    int    `json:"duration"`
}

type Schedule []Assignment

// Keeps the positive literals and maps them back onto the input
func extractSchedule(solution ilp.Solution, indexer indexer, modelInput ModelInput) Schedule {
	schedule := make(Schedule, 0)
	for _, literal := range solution {
		if literal <= 0 {
			continue
		}

		variable := indexer.Attributes(uint64(literal))
		section := modelInput.Sections[variable.section]
		schedule = append(schedule, Assignment{
			Teacher:     modelInput.Teachers[variable.teacher].Id,
			Section:     section.Id,
			Subject:     section.Subject,
			Room:        modelInput.Rooms[variable.room].Id,
			Day:         Days[variable.day],
			Period:      Periods[variable.period],
			DayIndex:    variable.day,
			PeriodIndex: variable.period,
			Occurrence:  variable.occurrence + 1,
			Duration:    section.Duration,
		})
	}

	sortSchedule(schedule)
	return schedule
}

// Orders by day, period, room and teacher
func sortSchedule(schedule Schedule) {
	slices.SortStableFunc(schedule, func(a, b Assignment) int {
		return cmp.Or(
			cmp.Compare(a.DayIndex, b.DayIndex),
			cmp.Compare(a.PeriodIndex, b.PeriodIndex),
			cmp.Compare(a.Room, b.Room),
			cmp.Compare(a.Teacher, b.Teacher),
		)
	})
}

// ForTeacher returns the teacher's assignments, keeping the schedule order
func (schedule Schedule) ForTeacher(teacher string) Schedule {
	filtered := make(Schedule, 0)
	for _, assignment := range schedule {
		if assignment.Teacher == teacher {
			filtered = append(filtered, assignment)
		}
	}
	return filtered
}
