package model

import (
	"fmt"
	"slices"
)

var Days = []string{"Mon", "Tue", "Wed", "Thu", "Fri"}

var Periods = func() []string {
	periods := make([]string, 0, 10)
	for hour := 7; hour < 17; hour++ {
		periods = append(periods, fmt.Sprintf("%02d:00-%02d:00", hour, hour+1))
	}
	return periods
}()

// ShiftRanges holds, per shift count, the inclusive period ranges of each shift
var ShiftRanges = map[int][][2]int{
	1: {{0, 9}},
	2: {{0, 4}, {5, 9}},
	3: {{0, 2}, {3, 6}, {7, 9}},
}

var ShiftLabels = map[int][]string{
	1: {"Whole Day"},
	2: {"Morning", "Afternoon"},
	3: {"Morning", "Afternoon", "Evening"},
}

// AllowedPeriods returns the sorted union of the periods covered by the shift policy
func AllowedPeriods(shifts int) []int {
	allowed := make([]int, 0, len(Periods))
	for _, shiftRange := range ShiftRanges[shifts] {
		for period := shiftRange[0]; period <= shiftRange[1]; period++ {
			if !slices.Contains(allowed, period) {
				allowed = append(allowed, period)
			}
		}
	}
	slices.Sort(allowed)
	return allowed
}

// ShiftOf returns the position of the shift covering period, if any
func ShiftOf(shifts, period int) (int, bool) {
	for shift, shiftRange := range ShiftRanges[shifts] {
		if period >= shiftRange[0] && period <= shiftRange[1] {
			return shift, true
		}
	}
	return 0, false
}
