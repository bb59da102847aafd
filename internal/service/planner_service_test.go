package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbecker-dev/study-dashboard/internal/models"
	appErrors "github.com/mbecker-dev/study-dashboard/pkg/errors"
)

func TestRecordGradeSetsAndClears(t *testing.T) {
	module := buildModule(t, "M1", 5, buildAttempt(t, "a1", nil, 1, nil))
	svc := NewPlannerService(nil, nil)

	attempt, err := svc.RecordGrade(module, RecordGradeRequest{Attempt: 1, Grade: gradePtr(1.7)})
	require.NoError(t, err)
	require.NotNil(t, attempt.Grade)
	assert.InDelta(t, 1.7, *attempt.Grade, 1e-9)

	attempt, err = svc.RecordGrade(module, RecordGradeRequest{Attempt: 1, Grade: nil})
	require.NoError(t, err)
	assert.Nil(t, attempt.Grade)
}

func TestRecordGradeRejectsOutOfRange(t *testing.T) {
	module := buildModule(t, "M1", 5, buildAttempt(t, "a1", nil, 1, nil))
	svc := NewPlannerService(nil, nil)

	_, err := svc.RecordGrade(module, RecordGradeRequest{Attempt: 1, Grade: gradePtr(5.5)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, module.Attempts[0].Grade)

	_, err = svc.RecordGrade(module, RecordGradeRequest{Attempt: 4, Grade: gradePtr(2.0)})
	require.Error(t, err)
}

func TestScheduleExamSetsAndClearsDate(t *testing.T) {
	module := buildModule(t, "M1", 5, buildAttempt(t, "a1", nil, 1, nil))
	svc := NewPlannerService(nil, nil)

	date := day(2024, time.June, 1)
	attempt, err := svc.ScheduleExam(module, ScheduleExamRequest{Attempt: 1, Date: &date})
	require.NoError(t, err)
	require.NotNil(t, attempt.Date)
	assert.True(t, attempt.Date.Equal(date))

	attempt, err = svc.ScheduleExam(module, ScheduleExamRequest{Attempt: 1, Date: nil})
	require.NoError(t, err)
	assert.Nil(t, attempt.Date)
}

func TestFindOrCreateAttemptReturnsExisting(t *testing.T) {
	existing := buildAttempt(t, "a1", nil, 1, gradePtr(4.7))
	module := buildModule(t, "M1", 5, existing)
	svc := NewPlannerService(nil, nil)

	attempt, err := svc.FindOrCreateAttempt(module, 1)
	require.NoError(t, err)
	assert.Same(t, existing, attempt)
	assert.Len(t, module.Attempts, 1)
}

func TestFindOrCreateAttemptCreatesAndSorts(t *testing.T) {
	first, err := models.NewExamAttempt("a2", models.ExamTypeOralExam, nil, 2, nil)
	require.NoError(t, err)
	module, err := models.NewCourseModule("M1", "t", 5, 1, []*models.ExamAttempt{first})
	require.NoError(t, err)

	svc := NewPlannerService(nil, nil)
	attempt, err := svc.FindOrCreateAttempt(module, 1)
	require.NoError(t, err)

	// New attempts inherit the exam type of the lowest-numbered attempt and
	// start ungraded and undated.
	assert.Equal(t, models.ExamTypeOralExam, attempt.Type)
	assert.Equal(t, "M1-A1", attempt.ID)
	assert.Nil(t, attempt.Grade)
	assert.Nil(t, attempt.Date)

	require.Len(t, module.Attempts, 2)
	assert.Equal(t, 1, module.Attempts[0].Number)
	assert.Equal(t, 2, module.Attempts[1].Number)
}

func TestFindOrCreateAttemptEnforcesCap(t *testing.T) {
	module := buildModule(t, "M1", 5,
		buildAttempt(t, "a1", nil, 1, gradePtr(4.7)),
		buildAttempt(t, "a2", nil, 1, gradePtr(4.7)),
		buildAttempt(t, "a3", nil, 2, gradePtr(4.7)),
	)
	svc := NewPlannerService(nil, nil)

	_, err := svc.FindOrCreateAttempt(module, 3)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAttemptLimit.Code, appErrors.FromError(err).Code)
}

func TestFindModulesByCodeReturnsAllMatches(t *testing.T) {
	program := buildProgram(t,
		buildSemester(t, 1, 30,
			buildModule(t, "DUP", 5, buildAttempt(t, "a1", nil, 1, nil)),
			buildModule(t, "OTHER", 5, buildAttempt(t, "b1", nil, 1, nil)),
		),
		buildSemester(t, 2, 30,
			buildModule(t, "DUP", 5, buildAttempt(t, "c1", nil, 1, nil)),
		),
	)
	svc := NewPlannerService(nil, nil)

	matches := svc.FindModulesByCode(program, " DUP ")
	assert.Len(t, matches, 2)
	assert.Empty(t, svc.FindModulesByCode(program, "MISSING"))
}
