package models

import (
	"fmt"
	"sort"
	"time"

	appErrors "github.com/mbecker-dev/study-dashboard/pkg/errors"
)

// ModuleStatus is derived from the module's exam attempts.
type ModuleStatus string

const (
	ModuleStatusPlanned    ModuleStatus = "PLANNED"
	ModuleStatusInProgress ModuleStatus = "IN_PROGRESS"
	ModuleStatusCompleted  ModuleStatus = "COMPLETED"
)

// CourseModule is a course unit with a fixed credit value and 1..3 exam attempts.
// Module codes may repeat across a program; callers disambiguate when needed.
// The module grade is the grade of the first passing attempt, never an average.
type CourseModule struct {
	Code                string         `json:"code"`
	Title               string         `json:"title"`
	Credits             int            `json:"credits"`
	RecommendedSemester int            `json:"recommended_semester"`
	Attempts            []*ExamAttempt `json:"attempts"`
}

// NewCourseModule validates invariants and constructs a module.
// Duplicate attempt numbers are tolerated (inconsistent but non-fatal data);
// HasDuplicateAttemptNumbers exposes them for diagnostics.
func NewCourseModule(code, title string, credits, recommendedSemester int, attempts []*ExamAttempt) (*CourseModule, error) {
	if credits <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("module credits must be > 0, got %d", credits))
	}
	if recommendedSemester < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("recommended semester must be >= 1, got %d", recommendedSemester))
	}
	if len(attempts) < 1 || len(attempts) > MaxAttemptNumber {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("a module must have 1..%d exam attempts, got %d", MaxAttemptNumber, len(attempts)))
	}
	return &CourseModule{
		Code:                code,
		Title:               title,
		Credits:             credits,
		RecommendedSemester: recommendedSemester,
		Attempts:            attempts,
	}, nil
}

// Passed reports whether any attempt has a passing grade.
func (m *CourseModule) Passed() bool {
	for _, a := range m.Attempts {
		if a.Passed() {
			return true
		}
	}
	return false
}

// Grade returns the grade of the lowest-numbered passing attempt, or nil if
// the module was never passed. Later passes are ignored.
func (m *CourseModule) Grade() *float64 {
	var best *ExamAttempt
	for _, a := range m.Attempts {
		if !a.Passed() {
			continue
		}
		if best == nil || a.Number < best.Number {
			best = a
		}
	}
	if best == nil {
		return nil
	}
	return best.Grade
}

// Status derives the module status as of the reference date.
func (m *CourseModule) Status(asOf time.Time) ModuleStatus {
	if m.Passed() {
		return ModuleStatusCompleted
	}
	for _, a := range m.Attempts {
		switch a.Status(asOf) {
		case ExamStatusPlanned, ExamStatusRegistered, ExamStatusOverdue, ExamStatusFailed:
			return ModuleStatusInProgress
		}
	}
	return ModuleStatusPlanned
}

// NextRelevantExam returns the attempt the student should act on next:
// the earliest overdue ungraded attempt if any, else the earliest upcoming
// dated ungraded attempt, else nil. Undated attempts are never returned.
func (m *CourseModule) NextRelevantExam(asOf time.Time) *ExamAttempt {
	day := DayOf(asOf)

	var open []*ExamAttempt
	for _, a := range m.Attempts {
		if a.Grade == nil {
			open = append(open, a)
		}
	}
	if len(open) == 0 {
		return nil
	}

	var overdue []*ExamAttempt
	for _, a := range open {
		if a.Date != nil && DayOf(*a.Date).Before(day) {
			overdue = append(overdue, a)
		}
	}
	if len(overdue) > 0 {
		sort.SliceStable(overdue, func(i, j int) bool {
			return overdue[i].Date.Before(*overdue[j].Date)
		})
		return overdue[0]
	}

	var upcoming []*ExamAttempt
	for _, a := range open {
		if a.Date != nil && !DayOf(*a.Date).Before(day) {
			upcoming = append(upcoming, a)
		}
	}
	if len(upcoming) > 0 {
		sort.SliceStable(upcoming, func(i, j int) bool {
			return upcoming[i].Date.Before(*upcoming[j].Date)
		})
		return upcoming[0]
	}

	return nil
}

// FindAttempt returns the attempt with the given number, or nil.
func (m *CourseModule) FindAttempt(number int) *ExamAttempt {
	for _, a := range m.Attempts {
		if a.Number == number {
			return a
		}
	}
	return nil
}

// SortAttempts orders the attempt list by ascending attempt number.
func (m *CourseModule) SortAttempts() {
	sort.SliceStable(m.Attempts, func(i, j int) bool {
		return m.Attempts[i].Number < m.Attempts[j].Number
	})
}

// HasDuplicateAttemptNumbers reports whether two attempts share a number.
func (m *CourseModule) HasDuplicateAttemptNumbers() bool {
	seen := make(map[int]struct{}, len(m.Attempts))
	for _, a := range m.Attempts {
		if _, ok := seen[a.Number]; ok {
			return true
		}
		seen[a.Number] = struct{}{}
	}
	return false
}
