package models

import (
	"fmt"
	"time"

	appErrors "github.com/mbecker-dev/study-dashboard/pkg/errors"
)

// ExamType enumerates the assessment kinds recognized by the domain.
// Unknown textual values from collaborators map to ExamTypeOther.
type ExamType string

const (
	ExamTypeWrittenExam         ExamType = "WRITTEN_EXAM"
	ExamTypeTermPaper           ExamType = "TERM_PAPER"
	ExamTypeProject             ExamType = "PROJECT"
	ExamTypeOralExam            ExamType = "ORAL_EXAM"
	ExamTypeAdvancedWorkbook    ExamType = "ADVANCED_WORKBOOK"
	ExamTypePortfolio           ExamType = "PORTFOLIO"
	ExamTypeProjectReport       ExamType = "PROJECT_REPORT"
	ExamTypeSeminarPaper        ExamType = "SEMINAR_PAPER"
	ExamTypeCaseStudy           ExamType = "CASE_STUDY"
	ExamTypeThesis              ExamType = "THESIS"
	ExamTypeColloquium          ExamType = "COLLOQUIUM"
	ExamTypeProjectPresentation ExamType = "PROJECT_PRESENTATION"
	ExamTypeOther               ExamType = "OTHER"
)

// ExamStatus is derived from grade and date against a reference date.
// It is never stored.
type ExamStatus string

const (
	ExamStatusPlanned    ExamStatus = "PLANNED"
	ExamStatusRegistered ExamStatus = "REGISTERED"
	ExamStatusPassed     ExamStatus = "PASSED"
	ExamStatusFailed     ExamStatus = "FAILED"
	ExamStatusOverdue    ExamStatus = "OVERDUE"
)

// Grade bounds. Lower is better; a grade passes strictly below PassingGradeLimit.
const (
	GradeBest         = 1.0
	GradeWorst        = 5.0
	PassingGradeLimit = 4.0
)

const (
	// MinAttemptNumber and MaxAttemptNumber bound exam attempt numbering.
	MinAttemptNumber = 1
	MaxAttemptNumber = 3
)

// ExamAttempt is one attempt (1 of up to 3) at passing a module's assessment.
// Date and Grade are optional; status is always recomputed.
type ExamAttempt struct {
	ID     string     `json:"id"`
	Type   ExamType   `json:"type"`
	Date   *time.Time `json:"date,omitempty"`
	Number int        `json:"number"`
	Grade  *float64   `json:"grade,omitempty"`
}

// NewExamAttempt validates invariants and constructs an attempt.
func NewExamAttempt(id string, examType ExamType, date *time.Time, number int, grade *float64) (*ExamAttempt, error) {
	if number < MinAttemptNumber || number > MaxAttemptNumber {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("attempt number must be in range %d..%d, got %d", MinAttemptNumber, MaxAttemptNumber, number))
	}
	if grade != nil && (*grade < GradeBest || *grade > GradeWorst) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("grade must be in range %.1f..%.1f, got %.1f", GradeBest, GradeWorst, *grade))
	}
	return &ExamAttempt{ID: id, Type: examType, Date: date, Number: number, Grade: grade}, nil
}

// Passed reports whether the attempt has a passing grade.
func (a *ExamAttempt) Passed() bool {
	return a.Grade != nil && *a.Grade < PassingGradeLimit
}

// Status derives the exam status as of the reference date.
func (a *ExamAttempt) Status(asOf time.Time) ExamStatus {
	if a.Grade != nil {
		if *a.Grade < PassingGradeLimit {
			return ExamStatusPassed
		}
		return ExamStatusFailed
	}
	if a.Date == nil {
		return ExamStatusPlanned
	}
	if DayOf(*a.Date).Before(DayOf(asOf)) {
		return ExamStatusOverdue
	}
	return ExamStatusRegistered
}

// SetGrade sets or clears (nil) the grade after validating the range.
func (a *ExamAttempt) SetGrade(grade *float64) error {
	if grade != nil && (*grade < GradeBest || *grade > GradeWorst) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("grade must be in range %.1f..%.1f, got %.1f", GradeBest, GradeWorst, *grade))
	}
	a.Grade = grade
	return nil
}

// SetDate sets or clears (nil) the scheduled exam date.
func (a *ExamAttempt) SetDate(date *time.Time) {
	a.Date = date
}

// DayOf truncates a timestamp to its UTC calendar day. All temporal status
// derivation compares calendar days, not instants.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from a to b (negative when b is earlier).
func DaysBetween(a, b time.Time) int {
	return int(DayOf(b).Sub(DayOf(a)).Hours() / 24)
}
