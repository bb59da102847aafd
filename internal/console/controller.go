package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mbecker-dev/study-dashboard/internal/models"
	"github.com/mbecker-dev/study-dashboard/internal/repository"
	"github.com/mbecker-dev/study-dashboard/internal/service"
)

// Controller drives the interactive session: it loads the program graph,
// dispatches menu choices to the services and persists mutations back.
type Controller struct {
	repo      repository.ProgramRepository
	dashboard *service.DashboardService
	planner   *service.PlannerService
	exports   *service.ExportService
	view      *View
	logger    *zap.Logger

	program *models.Program
	asOf    time.Time
	dirty   bool
}

// NewController wires the session dependencies.
func NewController(repo repository.ProgramRepository, dashboard *service.DashboardService, planner *service.PlannerService, exports *service.ExportService, view *View, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		repo:      repo,
		dashboard: dashboard,
		planner:   planner,
		exports:   exports,
		view:      view,
		logger:    logger,
		asOf:      time.Now(),
	}
}

// Run loads the data, optionally overrides the reference date and enters the
// menu loop until the user quits.
func (c *Controller) Run(ctx context.Context) error {
	program, err := c.repo.Load(ctx)
	if err != nil {
		c.view.Message(fmt.Sprintf("ERROR loading study data: %v", err))
		return err
	}
	c.program = program

	if raw, ok := c.view.Prompt("Reference date (YYYY-MM-DD, empty = today): "); ok && raw != "" {
		if parsed, ok := parseUserDate(raw); ok {
			c.asOf = parsed
		} else {
			c.view.Message("Invalid date, using today.")
		}
	}

	c.view.Message(fmt.Sprintf("Study dashboard started (%s).", c.program.Name))

	for {
		c.view.RenderMenu()
		choice, ok := c.view.Prompt("Choice: ")
		if !ok {
			// Exhausted input (closed terminal, piped file) ends the session.
			c.quit(ctx)
			return nil
		}
		switch choice {
		case "1":
			c.showDashboard()
		case "2":
			c.view.RenderModules(c.program, c.asOf)
		case "3":
			c.view.RenderOpenExams(c.program, c.asOf)
		case "4":
			c.recordGrade(ctx)
		case "5":
			c.planExamDate(ctx)
		case "6":
			c.exportOverview()
		case "7":
			c.save(ctx)
		case "0":
			c.quit(ctx)
			return nil
		default:
			c.view.Message("Invalid choice.")
		}
	}
}

func (c *Controller) showDashboard() {
	snapshot := c.dashboard.Snapshot(c.program, c.asOf)
	c.view.RenderDashboard(snapshot)
}

func (c *Controller) recordGrade(ctx context.Context) {
	module := c.selectModule()
	if module == nil {
		return
	}
	attemptNumber, ok := c.promptAttempt()
	if !ok {
		return
	}

	raw, ok := c.view.Prompt(fmt.Sprintf("Grade (%.1f..%.1f) - empty clears: ", models.GradeBest, models.GradeWorst))
	if !ok {
		return
	}
	var grade *float64
	if raw != "" {
		value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil {
			c.view.Message("Invalid grade (must be a number).")
			return
		}
		grade = &value
	}

	attempt, err := c.planner.RecordGrade(module, service.RecordGradeRequest{Attempt: attemptNumber, Grade: grade})
	if err != nil {
		c.view.Message(fmt.Sprintf("Rejected: %v", err))
		return
	}
	if grade == nil {
		c.view.Message("Grade cleared.")
	} else {
		result := "failed"
		if attempt.Passed() {
			result = "passed"
		}
		c.view.Message(fmt.Sprintf("Grade recorded: %.1f (%s)", *grade, result))
	}
	c.dirty = true
	c.autoSave(ctx)
}

func (c *Controller) planExamDate(ctx context.Context) {
	module := c.selectModule()
	if module == nil {
		return
	}
	attemptNumber, ok := c.promptAttempt()
	if !ok {
		return
	}

	raw, ok := c.view.Prompt("Exam date (YYYY-MM-DD or DD.MM.YYYY) - empty clears: ")
	if !ok {
		return
	}
	var date *time.Time
	if raw != "" {
		parsed, ok := parseUserDate(raw)
		if !ok {
			c.view.Message("Invalid date (use YYYY-MM-DD or DD.MM.YYYY).")
			return
		}
		date = &parsed
	}

	if _, err := c.planner.ScheduleExam(module, service.ScheduleExamRequest{Attempt: attemptNumber, Date: date}); err != nil {
		c.view.Message(fmt.Sprintf("Rejected: %v", err))
		return
	}
	if date == nil {
		c.view.Message("Exam date cleared.")
	} else {
		c.view.Message(fmt.Sprintf("Exam date set: %s", date.Format(dateLayout)))
	}
	c.dirty = true
	c.autoSave(ctx)
}

func (c *Controller) exportOverview() {
	answer, ok := c.view.Prompt("Format (csv/pdf, default csv): ")
	if !ok {
		return
	}
	format := service.ExportFormatCSV
	if strings.EqualFold(answer, "pdf") {
		format = service.ExportFormatPDF
	}

	modulesPath, err := c.exports.ModuleOverview(c.program, c.asOf, format)
	if err != nil {
		c.view.Message(fmt.Sprintf("Export failed: %v", err))
		return
	}
	semestersPath, err := c.exports.SemesterSummary(c.program, format)
	if err != nil {
		c.view.Message(fmt.Sprintf("Export failed: %v", err))
		return
	}
	c.view.Message(fmt.Sprintf("Exported: %s and %s", modulesPath, semestersPath))
}

func (c *Controller) save(ctx context.Context) {
	if err := c.repo.Save(ctx, c.program); err != nil {
		c.view.Message(fmt.Sprintf("ERROR saving: %v", err))
		return
	}
	c.dirty = false
	c.view.Message("Data saved.")
}

// autoSave persists after a successful mutation so the user cannot forget.
// Failures are logged but do not interrupt the session.
func (c *Controller) autoSave(ctx context.Context) {
	if !c.dirty {
		return
	}
	if err := c.repo.Save(ctx, c.program); err != nil {
		c.logger.Warn("auto-save failed", zap.Error(err))
		return
	}
	c.dirty = false
}

func (c *Controller) quit(ctx context.Context) {
	if c.dirty {
		answer, ok := c.view.Prompt("Unsaved changes! Save now? (y/n): ")
		if !ok {
			c.view.Message("Bye.")
			return
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			c.save(ctx)
		}
	}
	c.view.Message("Bye.")
}

// selectModule prompts for a code and disambiguates duplicate matches.
func (c *Controller) selectModule() *models.CourseModule {
	code, ok := c.view.Prompt("Module code: ")
	if !ok || code == "" {
		return nil
	}
	matches := c.planner.FindModulesByCode(c.program, code)
	if len(matches) == 0 {
		c.view.Message("Module not found.")
		return nil
	}
	if len(matches) == 1 {
		return matches[0]
	}

	c.view.Message(fmt.Sprintf("Multiple modules with code %q:", matches[0].Code))
	for i, m := range matches {
		c.view.Message(fmt.Sprintf("  %d) %s (semester %d, %d credits)", i+1, m.Title, m.RecommendedSemester, m.Credits))
	}
	raw, ok := c.view.Prompt(fmt.Sprintf("Pick module (1-%d, 0 = cancel): ", len(matches)))
	if !ok {
		return nil
	}
	choice, err := strconv.Atoi(raw)
	if err != nil || choice < 0 || choice > len(matches) {
		c.view.Message("Invalid choice.")
		return nil
	}
	if choice == 0 {
		return nil
	}
	return matches[choice-1]
}

func (c *Controller) promptAttempt() (int, bool) {
	raw, ok := c.view.Prompt(fmt.Sprintf("Attempt (%d..%d): ", models.MinAttemptNumber, models.MaxAttemptNumber))
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.view.Message("Invalid attempt number (must be a number).")
		return 0, false
	}
	if n < models.MinAttemptNumber || n > models.MaxAttemptNumber {
		c.view.Message("Attempt must be 1, 2 or 3.")
		return 0, false
	}
	return n, true
}

func parseUserDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{dateLayout, "02.01.2006"} {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
