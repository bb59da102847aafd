package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSemester(t *testing.T, number, planned int, start, end *time.Time, modules ...*CourseModule) *Semester {
	t.Helper()
	semester, err := NewSemester(number, planned, start, end, modules)
	require.NoError(t, err)
	return semester
}

func mustProgram(t *testing.T, totalCredits int, start time.Time, semesters ...*Semester) *Program {
	t.Helper()
	program, err := NewProgram("B.Sc. Software Engineering", DegreeBachelor, StudyModelPartTimeI, totalCredits, 36, start, semesters)
	require.NoError(t, err)
	return program
}

func passedModule(t *testing.T, code string, credits int, grade float64) *CourseModule {
	t.Helper()
	return mustModule(t, code, credits, mustAttempt(t, code+"-a1", nil, 1, gradePtr(grade)))
}

func openModule(t *testing.T, code string, credits int, examDate *time.Time) *CourseModule {
	t.Helper()
	return mustModule(t, code, credits, mustAttempt(t, code+"-a1", examDate, 1, nil))
}

func TestNewSemesterRejectsInvariantViolations(t *testing.T) {
	_, err := NewSemester(0, 30, nil, nil, nil)
	require.Error(t, err)

	_, err = NewSemester(1, 0, nil, nil, nil)
	require.Error(t, err)

	_, err = NewSemester(1, 30, dayPtr(2024, time.July, 1), dayPtr(2024, time.January, 1), nil)
	require.Error(t, err)
}

func TestNewProgramRejectsInvariantViolations(t *testing.T) {
	semester := mustSemester(t, 1, 30, nil, nil)

	_, err := NewProgram("p", DegreeBachelor, StudyModelFullTime, 0, 36, day(2024, time.January, 1), []*Semester{semester})
	require.Error(t, err)

	_, err = NewProgram("p", DegreeBachelor, StudyModelFullTime, 180, 0, day(2024, time.January, 1), []*Semester{semester})
	require.Error(t, err)

	_, err = NewProgram("p", DegreeBachelor, StudyModelFullTime, 180, 36, day(2024, time.January, 1), nil)
	require.Error(t, err)
}

func TestSemesterEarnedCreditsSumsPassedModules(t *testing.T) {
	semester := mustSemester(t, 1, 30, nil, nil,
		passedModule(t, "M1", 5, 2.0),
		openModule(t, "M2", 10, nil),
		passedModule(t, "M3", 8, 3.3),
	)
	assert.Equal(t, 13, semester.EarnedCredits())
}

func TestProgressPercentAllowsZeroAndOverHundred(t *testing.T) {
	empty := mustProgram(t, 100, day(2024, time.January, 1),
		mustSemester(t, 1, 30, nil, nil, openModule(t, "M1", 5, nil)))
	assert.Equal(t, 0.0, empty.ProgressPercent())

	over := mustProgram(t, 100, day(2024, time.January, 1),
		mustSemester(t, 1, 30, nil, nil,
			passedModule(t, "M1", 90, 2.0),
			passedModule(t, "M2", 60, 2.0),
		))
	assert.InDelta(t, 150.0, over.ProgressPercent(), 1e-9)
}

func TestWeightedAverageGrade(t *testing.T) {
	program := mustProgram(t, 180, day(2024, time.January, 1),
		mustSemester(t, 1, 30, nil, nil,
			passedModule(t, "M1", 5, 2.0),
			passedModule(t, "M2", 10, 3.0),
			openModule(t, "M3", 5, nil),
		))
	avg := program.WeightedAverageGrade()
	require.NotNil(t, avg)
	assert.InDelta(t, (5*2.0+10*3.0)/15.0, *avg, 1e-9)
}

func TestWeightedAverageGradeNilWithoutPassedModules(t *testing.T) {
	program := mustProgram(t, 180, day(2024, time.January, 1),
		mustSemester(t, 1, 30, nil, nil, openModule(t, "M1", 5, nil)))
	assert.Nil(t, program.WeightedAverageGrade())
}

func TestTargetCreditsInterpolatesWithinSemester(t *testing.T) {
	program := mustProgram(t, 180, day(2024, time.January, 1),
		mustSemester(t, 1, 30, dayPtr(2024, time.January, 1), dayPtr(2024, time.July, 1),
			openModule(t, "M1", 5, nil)))

	// 91 of 182 days elapsed, exactly half the semester span.
	assert.Equal(t, 15, program.TargetCreditsAsOf(day(2024, time.April, 1)))
	assert.Equal(t, 30, program.TargetCreditsAsOf(day(2024, time.July, 1)))
	assert.Equal(t, 30, program.TargetCreditsAsOf(day(2025, time.January, 1)))
}

func TestTargetCreditsFallbackWithoutSemesterDates(t *testing.T) {
	program := mustProgram(t, 180, day(2024, time.January, 1),
		mustSemester(t, 1, 30, nil, nil),
		mustSemester(t, 2, 30, nil, nil),
		mustSemester(t, 3, 25, nil, nil),
		mustSemester(t, 4, 25, nil, nil),
		mustSemester(t, 5, 35, nil, nil),
		mustSemester(t, 6, 35, nil, nil),
	)
	// 36 months / 6 semesters = 6 months per semester; 12 elapsed months
	// approximate two completed semesters.
	assert.Equal(t, 60, program.TargetCreditsAsOf(day(2025, time.January, 1)))
	assert.Equal(t, 0, program.TargetCreditsAsOf(day(2024, time.March, 1)))
	// Elapsed months cap at the total semester count.
	assert.Equal(t, 180, program.TargetCreditsAsOf(day(2034, time.January, 1)))
}

func TestTargetCreditsBeforeAllSemestersUsesFallback(t *testing.T) {
	// The precise per-semester sum is exactly zero because the reference date
	// precedes every semester start, which also activates the months-based
	// fallback even though semester dates exist.
	program, err := NewProgram("p", DegreeBachelor, StudyModelFullTime, 60, 12, day(2023, time.January, 1), []*Semester{
		mustSemester(t, 1, 30, dayPtr(2024, time.June, 1), dayPtr(2024, time.December, 1)),
		mustSemester(t, 2, 30, dayPtr(2024, time.December, 2), dayPtr(2025, time.June, 1)),
	})
	require.NoError(t, err)

	assert.Equal(t, 60, program.TargetCreditsAsOf(day(2024, time.January, 1)))
}

func TestDeviationFromTargetIsSigned(t *testing.T) {
	program := mustProgram(t, 180, day(2024, time.January, 1),
		mustSemester(t, 1, 30, dayPtr(2024, time.January, 1), dayPtr(2024, time.July, 1),
			passedModule(t, "M1", 10, 2.0)))

	// Halfway through the semester 15 credits are due, 10 are earned.
	assert.Equal(t, -5, program.DeviationFromTarget(day(2024, time.April, 1)))
}

func TestCurrentSemesterNumber(t *testing.T) {
	program := mustProgram(t, 180, day(2024, time.January, 1),
		mustSemester(t, 1, 30, nil, nil, passedModule(t, "M1", 5, 2.0)),
		mustSemester(t, 2, 30, nil, nil, openModule(t, "M2", 5, nil)),
		mustSemester(t, 3, 30, nil, nil, passedModule(t, "M3", 5, 2.0)),
	)
	assert.Equal(t, 3, program.CurrentSemesterNumber())

	fresh := mustProgram(t, 180, day(2024, time.January, 1),
		mustSemester(t, 1, 30, nil, nil, openModule(t, "M1", 5, nil)))
	assert.Equal(t, 1, fresh.CurrentSemesterNumber())
}

func TestCountModulesAboveGradeTarget(t *testing.T) {
	program := mustProgram(t, 180, day(2024, time.January, 1),
		mustSemester(t, 1, 30, nil, nil,
			passedModule(t, "M1", 5, 2.5),
			passedModule(t, "M2", 5, 2.6),
			passedModule(t, "M3", 5, 3.9),
			openModule(t, "M4", 5, nil),
		))
	// Strictly worse than target only.
	assert.Equal(t, 2, program.CountModulesAboveGradeTarget(2.5))
}

func TestCriticalModulesHorizon(t *testing.T) {
	asOf := day(2024, time.March, 1)
	program := mustProgram(t, 180, asOf,
		mustSemester(t, 1, 30, nil, nil,
			openModule(t, "OVERDUE", 5, dayPtr(2023, time.June, 1)),
			openModule(t, "SOON", 5, dayPtr(2024, time.April, 1)),
			openModule(t, "FAR", 5, dayPtr(2024, time.May, 30)),
			openModule(t, "UNDATED", 5, nil),
			passedModule(t, "DONE", 5, 1.7),
		))

	critical := program.CriticalModules(asOf, 60)
	require.Len(t, critical, 2)
	assert.Equal(t, "OVERDUE", critical[0].Code)
	assert.Equal(t, "SOON", critical[1].Code)
}

func TestCriticalModulesOverdueIgnoresHorizon(t *testing.T) {
	asOf := day(2024, time.March, 1)
	program := mustProgram(t, 180, asOf,
		mustSemester(t, 1, 30, nil, nil,
			openModule(t, "OLD", 5, dayPtr(2020, time.January, 1))))

	critical := program.CriticalModules(asOf, 60)
	require.Len(t, critical, 1)
	assert.Equal(t, "OLD", critical[0].Code)
}
