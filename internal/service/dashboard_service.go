package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mbecker-dev/study-dashboard/internal/dto"
	"github.com/mbecker-dev/study-dashboard/internal/models"
)

const dateLayout = "2006-01-02"

// DashboardServiceConfig tunes KPI computation.
type DashboardServiceConfig struct {
	TargetGrade   float64
	HorizonDays   int
	CriticalLimit int
}

// DashboardService builds read-only dashboard snapshots from a program graph.
// It has no mutation authority.
type DashboardService struct {
	logger *zap.Logger
	cfg    DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(cfg DashboardServiceConfig, logger *zap.Logger) *DashboardService {
	if cfg.TargetGrade <= 0 {
		cfg.TargetGrade = 2.5
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = 60
	}
	if cfg.CriticalLimit <= 0 {
		cfg.CriticalLimit = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		logger: logger,
		cfg:    cfg,
	}
}

// Snapshot assembles the complete dashboard state for the program as of the
// reference date.
func (s *DashboardService) Snapshot(program *models.Program, asOf time.Time) *dto.DashboardSnapshot {
	snapshot := &dto.DashboardSnapshot{
		ProgramName:     program.Name,
		StudyModelText:  fmt.Sprintf("%s, %d months", studyModelLabel(program.StudyModel), program.DurationMonths),
		DurationMonths:  program.DurationMonths,
		StartDate:       program.StartDate,
		CurrentSemester: program.CurrentSemesterNumber(),
		TotalSemesters:  len(program.Semesters),
		TotalCredits:    program.TotalCredits,
		TargetGrade:     s.cfg.TargetGrade,
	}

	snapshot.EarnedCredits = program.EarnedCredits()
	snapshot.ProgressPercent = program.ProgressPercent()
	snapshot.TargetCredits = program.TargetCreditsAsOf(asOf)
	snapshot.Deviation = program.DeviationFromTarget(asOf)

	snapshot.AverageGrade = program.WeightedAverageGrade()
	snapshot.ModulesAboveTargetGrade = program.CountModulesAboveGradeTarget(s.cfg.TargetGrade)

	snapshot.OpenExams, snapshot.OverdueExams = s.countExams(program, asOf)

	entries := s.CriticalEntries(program, asOf)
	if len(entries) > s.cfg.CriticalLimit {
		entries = entries[:s.cfg.CriticalLimit]
	}
	snapshot.CriticalEntries = entries

	snapshot.SemesterRows = s.semesterRows(program)

	s.logger.Debug("dashboard snapshot built",
		zap.String("program", program.Name),
		zap.Time("asOf", asOf),
		zap.Int("criticalEntries", len(snapshot.CriticalEntries)),
	)
	return snapshot
}

// countExams tallies ungraded attempts program-wide. An ungraded overdue
// attempt counts as both open and overdue; ungraded planned or registered
// attempts count as open only. Graded attempts are excluded entirely.
func (s *DashboardService) countExams(program *models.Program, asOf time.Time) (open, overdue int) {
	for _, m := range program.AllModules() {
		for _, a := range m.Attempts {
			if a.Grade != nil {
				continue
			}
			switch a.Status(asOf) {
			case models.ExamStatusOverdue:
				overdue++
				open++
			case models.ExamStatusPlanned, models.ExamStatusRegistered:
				open++
			}
		}
	}
	return open, overdue
}

// CriticalEntries lists every non-completed module with a defined next
// relevant exam, ordered overdue first (earliest date), then dated upcoming
// entries by date, then undated entries last. The caller truncates.
func (s *DashboardService) CriticalEntries(program *models.Program, asOf time.Time) []dto.CriticalEntry {
	var entries []dto.CriticalEntry

	for _, m := range program.AllModules() {
		if m.Passed() {
			continue
		}
		next := m.NextRelevantExam(asOf)
		if next == nil {
			continue
		}
		status := next.Status(asOf)
		isOverdue := status == models.ExamStatusOverdue

		entries = append(entries, dto.CriticalEntry{
			ModuleCode: m.Code,
			Title:      m.Title,
			StatusText: criticalStatusText(next, status, asOf),
			ExamDate:   next.Date,
			Overdue:    isOverdue,
		})
	}

	sortCriticalEntries(entries)
	return entries
}

func sortCriticalEntries(entries []dto.CriticalEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ri, di := criticalSortKey(entries[i])
		rj, dj := criticalSortKey(entries[j])
		if ri != rj {
			return ri < rj
		}
		return di.Before(dj)
	})
}

// criticalSortKey ranks overdue entries first, dated entries second and
// undated entries last; within a rank the date decides.
func criticalSortKey(e dto.CriticalEntry) (int, time.Time) {
	if e.ExamDate == nil {
		return 2, maxDate()
	}
	if e.Overdue {
		return 0, *e.ExamDate
	}
	return 1, *e.ExamDate
}

func maxDate() time.Time {
	return time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
}

func criticalStatusText(next *models.ExamAttempt, status models.ExamStatus, asOf time.Time) string {
	dateText := "-"
	if next.Date != nil {
		dateText = next.Date.Format(dateLayout)
	}

	switch {
	case status == models.ExamStatusOverdue:
		return fmt.Sprintf("exam overdue (planned: %s)", dateText)
	case status == models.ExamStatusRegistered && next.Date != nil:
		days := models.DaysBetween(asOf, *next.Date)
		switch days {
		case 0:
			return fmt.Sprintf("exam TODAY: %s", dateText)
		case 1:
			return fmt.Sprintf("exam TOMORROW: %s", dateText)
		default:
			return fmt.Sprintf("exam in %d days: %s", days, dateText)
		}
	case status == models.ExamStatusRegistered:
		return fmt.Sprintf("exam upcoming: %s", dateText)
	default:
		return fmt.Sprintf("exam planned: %s", dateText)
	}
}

// semesterRows builds one plan-comparison row per semester.
func (s *DashboardService) semesterRows(program *models.Program) []dto.SemesterRow {
	rows := make([]dto.SemesterRow, 0, len(program.Semesters))
	for _, sem := range program.Semesters {
		earned := sem.EarnedCredits()
		planned := sem.PlannedCredits

		var statusText string
		switch {
		case earned > planned:
			statusText = "over plan"
		case earned == planned:
			statusText = "on plan"
		default:
			statusText = fmt.Sprintf("under plan (-%d credits)", planned-earned)
		}

		rows = append(rows, dto.SemesterRow{
			Number:         sem.Number,
			PlannedCredits: planned,
			EarnedCredits:  earned,
			StatusText:     statusText,
		})
	}
	return rows
}

func studyModelLabel(model models.StudyModel) string {
	switch model {
	case models.StudyModelFullTime:
		return "full-time"
	case models.StudyModelPartTimeI:
		return "part-time I"
	case models.StudyModelPartTimeII:
		return "part-time II"
	default:
		return strings.ToLower(string(model))
	}
}
