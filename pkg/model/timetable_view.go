package model

import "fmt"

// ShiftTimetable is a period by day grid of one shift; empty cells are free periods
type ShiftTimetable struct {
	Shift   string     `json:"shift"`
	Periods []string   `json:"periods"`
	Days    []string   `json:"days"`
	Cells   [][]string `json:"cells"` // Cells[period][day]
}

// TeacherTimetable splits the teacher's assignments into one grid per shift
func TeacherTimetable(schedule Schedule, teacher string, shifts int) []ShiftTimetable {
	ranges := ShiftRanges[shifts]
	labels := ShiftLabels[shifts]

	timetables := make([]ShiftTimetable, len(ranges))
	for shift, shiftRange := range ranges {
		periods := Periods[shiftRange[0] : shiftRange[1]+1]
		cells := make([][]string, len(periods))
		for i := range cells {
			cells[i] = make([]string, len(Days))
		}
		timetables[shift] = ShiftTimetable{
			Shift:   labels[shift],
			Periods: periods,
			Days:    Days,
			Cells:   cells,
		}
	}

	for _, assignment := range schedule.ForTeacher(teacher) {
		shift, ok := ShiftOf(shifts, assignment.PeriodIndex)
		if !ok || assignment.DayIndex < 0 || assignment.DayIndex >= len(Days) {
			continue
		}
		row := assignment.PeriodIndex - ranges[shift][0]
		timetables[shift].Cells[row][assignment.DayIndex] = fmt.Sprintf("%s\n(%s)\nRoom: %s", assignment.Subject, assignment.Section, assignment.Room)
	}

	return timetables
}
