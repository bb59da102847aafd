package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mbecker-dev/study-dashboard/internal/dto"
	"github.com/mbecker-dev/study-dashboard/internal/models"
)

const dateLayout = "2006-01-02"

// View renders the dashboard and reads user input from the terminal.
type View struct {
	out io.Writer
	in  *bufio.Reader
}

// NewView constructs a View over the given streams.
func NewView(in io.Reader, out io.Writer) *View {
	return &View{out: out, in: bufio.NewReader(in)}
}

// Prompt prints a label and returns the trimmed input line. The boolean
// turns false once the input stream is exhausted.
func (v *View) Prompt(label string) (string, bool) {
	fmt.Fprint(v.out, label)
	line, err := v.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}

// Message prints a single line.
func (v *View) Message(text string) {
	fmt.Fprintln(v.out, text)
}

// RenderMenu prints the main menu.
func (v *View) RenderMenu() {
	fmt.Fprint(v.out, `
=== STUDY DASHBOARD ===
 1) Show dashboard
 2) List modules
 3) Open exams
 4) Record grade
 5) Plan exam date
 6) Export overview
 7) Save
 0) Quit
`)
}

// RenderDashboard prints the full KPI snapshot.
func (v *View) RenderDashboard(s *dto.DashboardSnapshot) {
	line := strings.Repeat("=", 62)

	fmt.Fprintln(v.out, line)
	fmt.Fprintf(v.out, "  %s\n", s.ProgramName)
	fmt.Fprintf(v.out, "  %s | start %s | semester %d of %d\n",
		s.StudyModelText, s.StartDate.Format(dateLayout), s.CurrentSemester, s.TotalSemesters)
	fmt.Fprintln(v.out, line)

	fmt.Fprintln(v.out, "PROGRESS")
	fmt.Fprintf(v.out, "  credits:   %d / %d (%.1f%%)\n", s.EarnedCredits, s.TotalCredits, s.ProgressPercent)
	fmt.Fprintf(v.out, "  target:    %d credits by today\n", s.TargetCredits)
	fmt.Fprintf(v.out, "  deviation: %+d credits\n", s.Deviation)

	fmt.Fprintln(v.out, "GRADES")
	if s.AverageGrade != nil {
		fmt.Fprintf(v.out, "  weighted average: %.2f (target %.1f)\n", *s.AverageGrade, s.TargetGrade)
	} else {
		fmt.Fprintf(v.out, "  weighted average: - (target %.1f)\n", s.TargetGrade)
	}
	fmt.Fprintf(v.out, "  modules above target grade: %d\n", s.ModulesAboveTargetGrade)

	fmt.Fprintln(v.out, "EXAMS")
	fmt.Fprintf(v.out, "  open: %d | overdue: %d\n", s.OpenExams, s.OverdueExams)

	if len(s.CriticalEntries) > 0 {
		fmt.Fprintln(v.out, "CRITICAL MODULES")
		// Display trims the snapshot's 10 entries down to 8 lines.
		limit := len(s.CriticalEntries)
		if limit > 8 {
			limit = 8
		}
		for _, e := range s.CriticalEntries[:limit] {
			marker := " "
			if e.Overdue {
				marker = "!"
			}
			fmt.Fprintf(v.out, "  %s %-14s %-34s %s\n", marker, e.ModuleCode, truncate(e.Title, 34), e.StatusText)
		}
	}

	fmt.Fprintln(v.out, "SEMESTERS")
	fmt.Fprintf(v.out, "  %-4s %8s %8s  %s\n", "nr", "planned", "earned", "status")
	for _, row := range s.SemesterRows {
		fmt.Fprintf(v.out, "  %-4d %8d %8d  %s\n", row.Number, row.PlannedCredits, row.EarnedCredits, row.StatusText)
	}
	fmt.Fprintln(v.out, line)
}

// RenderModules prints every module with derived status and grade.
func (v *View) RenderModules(program *models.Program, asOf time.Time) {
	fmt.Fprintln(v.out, "\n=== ALL MODULES ===")
	for _, sem := range program.Semesters {
		for _, m := range sem.Modules {
			grade := "-"
			if g := m.Grade(); g != nil {
				grade = fmt.Sprintf("%.1f", *g)
			}
			fmt.Fprintf(v.out, "  sem %d | %-14s | %-36s | %2d cr | %-11s | grade %s\n",
				sem.Number, m.Code, truncate(m.Title, 36), m.Credits, m.Status(asOf), grade)
		}
	}
	fmt.Fprintln(v.out, "")
}

// RenderOpenExams prints every ungraded exam attempt.
func (v *View) RenderOpenExams(program *models.Program, asOf time.Time) {
	fmt.Fprintln(v.out, "\n=== OPEN EXAMS ===")
	found := false
	for _, m := range program.AllModules() {
		for _, a := range m.Attempts {
			if a.Grade != nil {
				continue
			}
			date := "-"
			if a.Date != nil {
				date = a.Date.Format(dateLayout)
			}
			fmt.Fprintf(v.out, "  %-14s | %-36s | attempt %d | %-10s | %s\n",
				m.Code, truncate(m.Title, 36), a.Number, date, a.Status(asOf))
			found = true
		}
	}
	if !found {
		fmt.Fprintln(v.out, "  no open exams")
	}
	fmt.Fprintln(v.out, "")
}

// truncate shortens to max runes; byte slicing would split multi-byte titles.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
