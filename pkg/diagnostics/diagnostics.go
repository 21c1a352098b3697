package diagnostics

import (
	"cmp"
	"slices"

	"github.com/dexterpante/scheduler/pkg/model"

	"github.com/samber/lo"
)

const (
	RecommendSpecialists = "Hire or reassign teachers with the required specializations."
	RecommendTeacherLoad = "Reduce teacher loads or split sections."
	RecommendClassrooms  = "Add more classrooms or implement shifting."
	RecommendTeachers    = "Consider merging sections or hiring more teachers."
	RecommendRooms       = "Consider merging sections or adding more rooms."
	RecommendShifts      = "Consider increasing the number of shifts to maximize room and teacher utilization."
	RecommendNothing     = "No major issues detected. Schedule is feasible."
)

// Load is a resource whose booking count went past its limit
type Load struct {
	Id    string `json:"id"`
	Count int    `json:"count"`
	Limit int    `json:"limit"`
}

// CapacityBalance compares the number of sections against teachers and rooms
type CapacityBalance struct {
	Sections        int `json:"sections"`
	Teachers        int `json:"teachers"`
	Rooms           int `json:"rooms"`
	TeacherShortage int `json:"teacher_shortage"` // Sections beyond the number of teachers
	RoomShortage    int `json:"room_shortage"`
	TeacherSurplus  int `json:"teacher_surplus"` // Teachers beyond the number of sections
	RoomSurplus     int `json:"room_surplus"`
}

func (balance CapacityBalance) Short() bool {
	return balance.TeacherShortage > 0 || balance.RoomShortage > 0
}

type UnmetSection struct {
	Section   string `json:"section"`
	Required  int    `json:"required"`
	Scheduled int    `json:"scheduled"`
}

// SubjectLoad is one row of the ESF-7 summary
type SubjectLoad struct {
	Teacher     string `json:"teacher"`
	Subject     string `json:"subject"`
	Assignments int    `json:"assignments"`
}

// Percentages are on a 0-100 scale and fall back to 0 on an empty denominator
type Percentages struct {
	Specialist      float64 `json:"specialist"` // Assignments taught by a qualified teacher (major or minor)
	NonSpecialist   float64 `json:"non_specialist"`
	MajorMatch      float64 `json:"major_match"`
	TeacherOverload float64 `json:"teacher_overload"`
	RoomOverload    float64 `json:"room_overload"`
	UnmetSections   float64 `json:"unmet_sections"`
}

type Report struct {
	TotalAssignments   int             `json:"total_assignments"`
	NonSpecialist      model.Schedule  `json:"non_specialist"`
	OverloadedTeachers []Load          `json:"overloaded_teachers"`
	OverloadedRooms    []Load          `json:"overloaded_rooms"`
	Capacity           CapacityBalance `json:"capacity"`
	UnmetSections      []UnmetSection  `json:"unmet_sections"`
	Percentages        Percentages     `json:"percentages"`
	Recommendations    []string        `json:"recommendations"`
	Esf7               []SubjectLoad   `json:"esf7"`
	// Rough learning-outcome reduction attributed to non-specialist teaching, in percent
	EstimatedOutcomeReduction float64 `json:"estimated_outcome_reduction"`
}

// Analyze audits a schedule against the input it was built from. It is pure and safe on empty schedules
func Analyze(schedule model.Schedule, modelInput model.ModelInput) Report {
	report := Report{
		TotalAssignments:   len(schedule),
		NonSpecialist:      nonSpecialist(schedule, modelInput),
		OverloadedTeachers: overloadedTeachers(schedule, modelInput),
		OverloadedRooms:    overloadedRooms(schedule, modelInput),
		Capacity:           capacityBalance(modelInput),
		UnmetSections:      unmetSections(schedule, modelInput),
		Esf7:               esf7(schedule),
	}

	majorMatches := lo.CountBy(schedule, func(assignment model.Assignment) bool {
		teacher, ok := findTeacher(modelInput, assignment.Teacher)
		return ok && model.Specialist(teacher, assignment.Subject)
	})

	report.Percentages = Percentages{
		NonSpecialist:   percentage(len(report.NonSpecialist), len(schedule)),
		MajorMatch:      percentage(majorMatches, len(schedule)),
		TeacherOverload: percentage(len(report.OverloadedTeachers), len(modelInput.Teachers)),
		RoomOverload:    percentage(len(report.OverloadedRooms), len(modelInput.Rooms)),
		UnmetSections:   percentage(len(report.UnmetSections), len(modelInput.Sections)),
	}
	if len(schedule) > 0 {
		report.Percentages.Specialist = 100 * (1 - float64(len(report.NonSpecialist))/float64(len(schedule)))
	}

	report.EstimatedOutcomeReduction = report.Percentages.NonSpecialist / 2
	report.Recommendations = recommendations(report, modelInput.Shifts)
	return report
}

func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}

func findTeacher(modelInput model.ModelInput, id string) (model.Teacher, bool) {
	return lo.Find(modelInput.Teachers, func(teacher model.Teacher) bool { return teacher.Id == id })
}

// Assignments whose subject is neither the teacher's major nor minor. Unknown teachers count as non-specialists
func nonSpecialist(schedule model.Schedule, modelInput model.ModelInput) model.Schedule {
	return lo.Filter(schedule, func(assignment model.Assignment, _ int) bool {
		teacher, ok := findTeacher(modelInput, assignment.Teacher)
		return !ok || !model.Qualified(teacher, assignment.Subject)
	})
}

// Teachers with more assignments than max_per_week. This counts occurrences while the model bounds
// duration-weighted load; since the count never exceeds the weighted load, solved schedules never trip it
func overloadedTeachers(schedule model.Schedule, modelInput model.ModelInput) []Load {
	counts := lo.CountValuesBy(schedule, func(assignment model.Assignment) string { return assignment.Teacher })

	overloaded := make([]Load, 0)
	for teacher, count := range counts {
		if count > modelInput.MaxPerWeek {
			overloaded = append(overloaded, Load{Id: teacher, Count: count, Limit: modelInput.MaxPerWeek})
		}
	}
	slices.SortFunc(overloaded, func(a, b Load) int { return cmp.Compare(a.Id, b.Id) })
	return overloaded
}

// Rooms booked more times than their capacity, which is read as a ceiling on bookings rather than seats
func overloadedRooms(schedule model.Schedule, modelInput model.ModelInput) []Load {
	counts := lo.CountValuesBy(schedule, func(assignment model.Assignment) string { return assignment.Room })

	overloaded := make([]Load, 0)
	for _, room := range modelInput.Rooms {
		if counts[room.Id] > room.Capacity {
			overloaded = append(overloaded, Load{Id: room.Id, Count: counts[room.Id], Limit: room.Capacity})
		}
	}
	return overloaded
}

func capacityBalance(modelInput model.ModelInput) CapacityBalance {
	sections, teachers, rooms := len(modelInput.Sections), len(modelInput.Teachers), len(modelInput.Rooms)
	return CapacityBalance{
		Sections:        sections,
		Teachers:        teachers,
		Rooms:           rooms,
		TeacherShortage: max(sections-teachers, 0),
		RoomShortage:    max(sections-rooms, 0),
		TeacherSurplus:  max(teachers-sections, 0),
		RoomSurplus:     max(rooms-sections, 0),
	}
}

func unmetSections(schedule model.Schedule, modelInput model.ModelInput) []UnmetSection {
	scheduled := lo.CountValuesBy(schedule, func(assignment model.Assignment) string { return assignment.Section })

	unmet := make([]UnmetSection, 0)
	for _, section := range modelInput.Sections {
		if scheduled[section.Id] < section.OccurrencesPerWeek {
			unmet = append(unmet, UnmetSection{Section: section.Id, Required: section.OccurrencesPerWeek, Scheduled: scheduled[section.Id]})
		}
	}
	return unmet
}

// Assignment counts per teacher and subject, sorted by both
func esf7(schedule model.Schedule) []SubjectLoad {
	counts := lo.CountValuesBy(schedule, func(assignment model.Assignment) [2]string {
		return [2]string{assignment.Teacher, assignment.Subject}
	})

	rows := lo.MapToSlice(counts, func(key [2]string, count int) SubjectLoad {
		return SubjectLoad{Teacher: key[0], Subject: key[1], Assignments: count}
	})
	slices.SortFunc(rows, func(a, b SubjectLoad) int {
		return cmp.Or(cmp.Compare(a.Teacher, b.Teacher), cmp.Compare(a.Subject, b.Subject))
	})
	return rows
}

type rule struct {
	fires          bool
	recommendation string
}

// Rules fire in a fixed order; the fallback only appears when none does
func recommendations(report Report, shifts int) []string {
	rules := []rule{
		{len(report.NonSpecialist) > 0, RecommendSpecialists},
		{len(report.OverloadedTeachers) > 0, RecommendTeacherLoad},
		{len(report.OverloadedRooms) > 0, RecommendClassrooms},
		{report.Capacity.TeacherShortage > 0, RecommendTeachers},
		{report.Capacity.RoomShortage > 0, RecommendRooms},
		{shifts == 1 && report.Capacity.Short(), RecommendShifts},
	}

	recommendations := lo.FilterMap(rules, func(rule rule, _ int) (string, bool) {
		return rule.recommendation, rule.fires
	})
	if len(recommendations) == 0 {
		return []string{RecommendNothing}
	}
	return recommendations
}
