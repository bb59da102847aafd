package dto

import "time"

// DashboardSnapshot captures the aggregated study progress payload consumed
// by the presentation layer. It is a read-only value; nothing in it mutates
// the program graph.
type DashboardSnapshot struct {
	ProgramName     string    `json:"programName"`
	StudyModelText  string    `json:"studyModelText"`
	DurationMonths  int       `json:"durationMonths"`
	StartDate       time.Time `json:"startDate"`
	CurrentSemester int       `json:"currentSemester"`
	TotalSemesters  int       `json:"totalSemesters"`
	TotalCredits    int       `json:"totalCredits"`
	TargetGrade     float64   `json:"targetGrade"`

	EarnedCredits   int     `json:"earnedCredits"`
	ProgressPercent float64 `json:"progressPercent"`
	TargetCredits   int     `json:"targetCredits"`
	Deviation       int     `json:"deviation"`

	AverageGrade            *float64 `json:"averageGrade,omitempty"`
	ModulesAboveTargetGrade int      `json:"modulesAboveTargetGrade"`

	OpenExams    int `json:"openExams"`
	OverdueExams int `json:"overdueExams"`

	CriticalEntries []CriticalEntry `json:"criticalEntries"`
	SemesterRows    []SemesterRow   `json:"semesterRows"`
}

// CriticalEntry flags a non-completed module whose next relevant exam needs attention.
type CriticalEntry struct {
	ModuleCode string     `json:"moduleCode"`
	Title      string     `json:"title"`
	StatusText string     `json:"statusText"`
	ExamDate   *time.Time `json:"examDate,omitempty"`
	Overdue    bool       `json:"overdue"`
}

// SemesterRow is one line of the per-semester plan comparison table.
type SemesterRow struct {
	Number         int    `json:"number"`
	PlannedCredits int    `json:"plannedCredits"`
	EarnedCredits  int    `json:"earnedCredits"`
	StatusText     string `json:"statusText"`
}
