package diagnostics

import (
	"testing"

	"github.com/dexterpante/scheduler/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput() model.ModelInput {
	return model.ModelInput{
		Teachers: []model.Teacher{
			{Id: "T1", Major: "Math", Minor: "Science"},
			{Id: "T2", Major: "English"},
		},
		Rooms: []model.Room{{Id: "R1", Capacity: 2}, {Id: "R2", Capacity: 5}},
		Sections: []model.ClassSection{
			{Id: "G7-A", Subject: "Math", OccurrencesPerWeek: 2, Duration: 1},
			{Id: "G7-B", Subject: "Science", OccurrencesPerWeek: 1, Duration: 1},
			{Id: "G7-C", Subject: "English", OccurrencesPerWeek: 1, Duration: 1},
		},
		MaxPerDay:  6,
		MaxPerWeek: 2,
		Shifts:     1,
	}
}

func assignment(teacher, section, subject, room string, day, period, occurrence int) model.Assignment {
	return model.Assignment{
		Teacher:     teacher,
		Section:     section,
		Subject:     subject,
		Room:        room,
		Day:         model.Days[day],
		Period:      model.Periods[period],
		DayIndex:    day,
		PeriodIndex: period,
		Occurrence:  occurrence,
		Duration:    1,
	}
}

func sampleSchedule() model.Schedule {
	return model.Schedule{
		assignment("T1", "G7-A", "Math", "R1", 0, 0, 1),
		assignment("T1", "G7-A", "Math", "R1", 1, 0, 2),
		assignment("T1", "G7-B", "Science", "R1", 2, 0, 1),
		assignment("T2", "G7-B", "Music", "R2", 3, 0, 1), // Not qualified
	}
}

func TestAnalyze(t *testing.T) {
	//** Arrange
	input := sampleInput()
	schedule := sampleSchedule()

	//** Act
	report := Analyze(schedule, input)

	//** Assert
	assert.Equal(t, 4, report.TotalAssignments)
	require.Len(t, report.NonSpecialist, 1)
	assert.Equal(t, "T2", report.NonSpecialist[0].Teacher)
	assert.Equal(t, []Load{{Id: "T1", Count: 3, Limit: 2}}, report.OverloadedTeachers)
	assert.Equal(t, []Load{{Id: "R1", Count: 3, Limit: 2}}, report.OverloadedRooms)
	assert.Equal(t, CapacityBalance{Sections: 3, Teachers: 2, Rooms: 2, TeacherShortage: 1, RoomShortage: 1}, report.Capacity)
	assert.Equal(t, []UnmetSection{{Section: "G7-C", Required: 1, Scheduled: 0}}, report.UnmetSections)

	assert.InDelta(t, 75, report.Percentages.Specialist, 1e-9)
	assert.InDelta(t, 25, report.Percentages.NonSpecialist, 1e-9)
	assert.InDelta(t, 50, report.Percentages.MajorMatch, 1e-9)
	assert.InDelta(t, 50, report.Percentages.TeacherOverload, 1e-9)
	assert.InDelta(t, 50, report.Percentages.RoomOverload, 1e-9)
	assert.InDelta(t, 100.0/3, report.Percentages.UnmetSections, 1e-9)
	assert.InDelta(t, 12.5, report.EstimatedOutcomeReduction, 1e-9)

	assert.Equal(t, []string{
		RecommendSpecialists,
		RecommendTeacherLoad,
		RecommendClassrooms,
		RecommendTeachers,
		RecommendRooms,
		RecommendShifts,
	}, report.Recommendations)

	assert.Equal(t, []SubjectLoad{
		{Teacher: "T1", Subject: "Math", Assignments: 2},
		{Teacher: "T1", Subject: "Science", Assignments: 1},
		{Teacher: "T2", Subject: "Music", Assignments: 1},
	}, report.Esf7)
}

func TestAnalyzeEmptySchedule(t *testing.T) {
	report := Analyze(model.Schedule{}, model.ModelInput{Shifts: 1})

	assert.Zero(t, report.TotalAssignments)
	assert.Equal(t, Percentages{}, report.Percentages)
	assert.Empty(t, report.NonSpecialist)
	assert.Empty(t, report.Esf7)
	assert.Equal(t, []string{RecommendNothing}, report.Recommendations)
}

func TestAnalyzeShiftRecommendation(t *testing.T) {
	input := sampleInput()
	input.Shifts = 2

	report := Analyze(model.Schedule{}, input)

	assert.NotContains(t, report.Recommendations, RecommendShifts)
	assert.Contains(t, report.Recommendations, RecommendTeachers)
}

func TestAnalyzeUnknownTeacher(t *testing.T) {
	schedule := model.Schedule{assignment("T9", "G7-A", "Math", "R2", 0, 0, 1)}

	report := Analyze(schedule, sampleInput())

	assert.Len(t, report.NonSpecialist, 1)
	assert.Zero(t, report.Percentages.MajorMatch)
}

func TestAnalyzeIsMonotonic(t *testing.T) {
	schedule := sampleSchedule()
	previousTeachers, previousRooms := 0, 0

	// Lowering the thresholds never reduces the number of overloaded resources
	for limit := 10; limit >= 0; limit-- {
		input := sampleInput()
		input.MaxPerWeek = limit
		for i := range input.Rooms {
			input.Rooms[i].Capacity = limit
		}

		report := Analyze(schedule, input)

		assert.GreaterOrEqual(t, len(report.OverloadedTeachers), previousTeachers)
		assert.GreaterOrEqual(t, len(report.OverloadedRooms), previousRooms)
		previousTeachers, previousRooms = len(report.OverloadedTeachers), len(report.OverloadedRooms)
	}
	assert.Equal(t, 2, previousTeachers)
	assert.Equal(t, 2, previousRooms)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	assert.Equal(t, Analyze(sampleSchedule(), sampleInput()), Analyze(sampleSchedule(), sampleInput()))
}
