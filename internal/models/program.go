package models

import (
	"fmt"
	"math"
	"time"

	appErrors "github.com/mbecker-dev/study-dashboard/pkg/errors"
)

// DegreeType represents the degree awarded by a program.
type DegreeType string

const (
	DegreeBachelor DegreeType = "BACHELOR"
	DegreeMaster   DegreeType = "MASTER"
)

// StudyModel represents the enrollment model of a program.
type StudyModel string

const (
	StudyModelFullTime   StudyModel = "FULL_TIME"
	StudyModelPartTimeI  StudyModel = "PART_TIME_I"
	StudyModelPartTimeII StudyModel = "PART_TIME_II"
)

// Program is the full degree curriculum instance being tracked. It owns its
// semesters exclusively and carries all program-level KPI derivations.
type Program struct {
	Name           string      `json:"name"`
	Degree         DegreeType  `json:"degree"`
	StudyModel     StudyModel  `json:"study_model"`
	TotalCredits   int         `json:"total_credits"`
	DurationMonths int         `json:"duration_months"`
	StartDate      time.Time   `json:"start_date"`
	Semesters      []*Semester `json:"semesters"`
}

// NewProgram validates invariants and constructs a program.
func NewProgram(name string, degree DegreeType, studyModel StudyModel, totalCredits, durationMonths int, startDate time.Time, semesters []*Semester) (*Program, error) {
	if totalCredits <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("program total credits must be > 0, got %d", totalCredits))
	}
	if durationMonths <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("program duration in months must be > 0, got %d", durationMonths))
	}
	if len(semesters) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a program must contain at least one semester")
	}
	return &Program{
		Name:           name,
		Degree:         degree,
		StudyModel:     studyModel,
		TotalCredits:   totalCredits,
		DurationMonths: durationMonths,
		StartDate:      startDate,
		Semesters:      semesters,
	}, nil
}

// AllModules returns every module across all semesters in program iteration order.
func (p *Program) AllModules() []*CourseModule {
	var modules []*CourseModule
	for _, s := range p.Semesters {
		modules = append(modules, s.Modules...)
	}
	return modules
}

// EarnedCredits sums the credits of all passed modules, program-wide.
func (p *Program) EarnedCredits() int {
	total := 0
	for _, m := range p.AllModules() {
		if m.Passed() {
			total += m.Credits
		}
	}
	return total
}

// ProgressPercent is earned credits relative to the program's total target.
// The result may exceed 100.
func (p *Program) ProgressPercent() float64 {
	if p.TotalCredits == 0 {
		return 0.0
	}
	return float64(p.EarnedCredits()) / float64(p.TotalCredits) * 100.0
}

// WeightedAverageGrade is the credit-weighted average over all modules with
// a recorded grade, or nil when no module has passed.
func (p *Program) WeightedAverageGrade() *float64 {
	var sumCredits, sumWeighted float64
	for _, m := range p.AllModules() {
		grade := m.Grade()
		if grade == nil {
			continue
		}
		sumCredits += float64(m.Credits)
		sumWeighted += float64(m.Credits) * *grade
	}
	if sumCredits == 0 {
		return nil
	}
	avg := sumWeighted / sumCredits
	return &avg
}

// TargetCreditsAsOf computes the planned credits that should be earned by the
// given date. Semesters with both dates set contribute linearly over their
// span. When that precise sum is exactly zero the nominal-duration fallback
// estimates completed semesters from elapsed months instead; this includes
// the case where the reference date precedes every semester start.
func (p *Program) TargetCreditsAsOf(date time.Time) int {
	day := DayOf(date)
	target := 0.0

	for _, s := range p.Semesters {
		if s.StartDate == nil || s.EndDate == nil {
			continue
		}
		start := DayOf(*s.StartDate)
		end := DayOf(*s.EndDate)

		switch {
		case !day.Before(end):
			target += float64(s.PlannedCredits)
		case !day.After(start):
			// nothing due before the semester starts
		default:
			totalDays := DaysBetween(start, end)
			if totalDays <= 0 {
				totalDays = 1
			}
			fraction := float64(DaysBetween(start, day)) / float64(totalDays)
			fraction = math.Max(0.0, math.Min(1.0, fraction))
			target += float64(s.PlannedCredits) * fraction
		}
	}

	if target == 0.0 {
		monthsPerSemester := float64(p.DurationMonths) / float64(len(p.Semesters))
		monthsElapsed := (day.Year()-p.StartDate.Year())*12 + int(day.Month()) - int(p.StartDate.Month())
		if monthsElapsed < 0 {
			monthsElapsed = 0
		}
		approxSemesters := int(float64(monthsElapsed) / monthsPerSemester)
		if approxSemesters > len(p.Semesters) {
			approxSemesters = len(p.Semesters)
		}
		for _, s := range p.Semesters[:approxSemesters] {
			target += float64(s.PlannedCredits)
		}
	}

	return int(math.Round(target))
}

// DeviationFromTarget is earned minus target credits; positive means ahead of schedule.
func (p *Program) DeviationFromTarget(date time.Time) int {
	return p.EarnedCredits() - p.TargetCreditsAsOf(date)
}

// CurrentSemesterNumber is the highest semester number with positive earned
// credits, or 1 when nothing has been earned yet.
func (p *Program) CurrentSemesterNumber() int {
	current := 1
	for _, s := range p.Semesters {
		if s.EarnedCredits() > 0 && s.Number > current {
			current = s.Number
		}
	}
	return current
}

// CountModulesAboveGradeTarget counts modules whose recorded grade is
// numerically worse (greater) than the target grade.
func (p *Program) CountModulesAboveGradeTarget(targetGrade float64) int {
	count := 0
	for _, m := range p.AllModules() {
		if grade := m.Grade(); grade != nil && *grade > targetGrade {
			count++
		}
	}
	return count
}

// CriticalModules returns the non-completed modules whose next relevant exam
// is overdue or due within horizonDays (inclusive), in program iteration order.
func (p *Program) CriticalModules(asOf time.Time, horizonDays int) []*CourseModule {
	var critical []*CourseModule
	for _, m := range p.AllModules() {
		if m.Passed() {
			continue
		}
		next := m.NextRelevantExam(asOf)
		if next == nil || next.Date == nil {
			continue
		}
		delta := DaysBetween(asOf, *next.Date)
		if next.Status(asOf) == ExamStatusOverdue || (delta >= 0 && delta <= horizonDays) {
			critical = append(critical, m)
		}
	}
	return critical
}
