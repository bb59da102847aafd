package models

import (
	"fmt"
	"time"

	appErrors "github.com/mbecker-dev/study-dashboard/pkg/errors"
)

// Semester is a time-boxed subdivision of a program with a planned credit
// target. Start and end dates are optional; when both are set they feed the
// precise target-credit interpolation.
type Semester struct {
	Number         int            `json:"number"`
	PlannedCredits int            `json:"planned_credits"`
	StartDate      *time.Time     `json:"start_date,omitempty"`
	EndDate        *time.Time     `json:"end_date,omitempty"`
	Modules        []*CourseModule `json:"modules"`
}

// NewSemester validates invariants and constructs a semester.
func NewSemester(number, plannedCredits int, startDate, endDate *time.Time, modules []*CourseModule) (*Semester, error) {
	if number < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("semester number must be >= 1, got %d", number))
	}
	if plannedCredits <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("semester planned credits must be > 0, got %d", plannedCredits))
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("semester end date (%s) must not precede start date (%s)",
			endDate.Format("2006-01-02"), startDate.Format("2006-01-02")))
	}
	return &Semester{
		Number:         number,
		PlannedCredits: plannedCredits,
		StartDate:      startDate,
		EndDate:        endDate,
		Modules:        modules,
	}, nil
}

// EarnedCredits sums the credits of all passed modules in the semester.
func (s *Semester) EarnedCredits() int {
	total := 0
	for _, m := range s.Modules {
		if m.Passed() {
			total += m.Credits
		}
	}
	return total
}
