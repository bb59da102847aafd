package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mbecker-dev/study-dashboard/internal/models"
	appErrors "github.com/mbecker-dev/study-dashboard/pkg/errors"
)

// RecordGradeRequest sets or clears (nil) the grade of an exam attempt.
type RecordGradeRequest struct {
	Attempt int      `validate:"required,min=1,max=3"`
	Grade   *float64 `validate:"omitempty,min=1,max=5"`
}

// ScheduleExamRequest sets or clears (nil) the scheduled date of an exam attempt.
type ScheduleExamRequest struct {
	Attempt int `validate:"required,min=1,max=3"`
	Date    *time.Time
}

// PlannerService carries the editing operations on the program graph: grade
// entry, exam scheduling and attempt creation. Status is never stored, so
// callers simply re-derive it after a mutation.
type PlannerService struct {
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPlannerService constructs a PlannerService.
func NewPlannerService(validate *validator.Validate, logger *zap.Logger) *PlannerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlannerService{validator: validate, logger: logger}
}

// RecordGrade resolves (or creates) the attempt and applies the grade.
// A nil grade clears the recorded grade.
func (s *PlannerService) RecordGrade(module *models.CourseModule, req RecordGradeRequest) (*models.ExamAttempt, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid grade request")
	}
	attempt, err := s.FindOrCreateAttempt(module, req.Attempt)
	if err != nil {
		return nil, err
	}
	if err := attempt.SetGrade(req.Grade); err != nil {
		return nil, err
	}
	s.logger.Info("grade recorded",
		zap.String("module", module.Code),
		zap.Int("attempt", attempt.Number),
		zap.Bool("cleared", req.Grade == nil),
	)
	return attempt, nil
}

// ScheduleExam resolves (or creates) the attempt and applies the date.
// A nil date clears the scheduled date.
func (s *PlannerService) ScheduleExam(module *models.CourseModule, req ScheduleExamRequest) (*models.ExamAttempt, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid schedule request")
	}
	attempt, err := s.FindOrCreateAttempt(module, req.Attempt)
	if err != nil {
		return nil, err
	}
	attempt.SetDate(req.Date)
	s.logger.Info("exam scheduled",
		zap.String("module", module.Code),
		zap.Int("attempt", attempt.Number),
		zap.Bool("cleared", req.Date == nil),
	)
	return attempt, nil
}

// FindOrCreateAttempt returns the attempt with the given number. When it does
// not exist and the module is below the 3-attempt cap, a new ungraded,
// undated attempt is created reusing the exam type of the lowest-numbered
// existing attempt, appended and the attempt list re-sorted by number.
// Requesting a fourth attempt yields ErrAttemptLimit.
func (s *PlannerService) FindOrCreateAttempt(module *models.CourseModule, number int) (*models.ExamAttempt, error) {
	if number < models.MinAttemptNumber || number > models.MaxAttemptNumber {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("attempt number must be %d..%d, got %d", models.MinAttemptNumber, models.MaxAttemptNumber, number))
	}
	if existing := module.FindAttempt(number); existing != nil {
		return existing, nil
	}
	if len(module.Attempts) >= models.MaxAttemptNumber {
		return nil, appErrors.Clone(appErrors.ErrAttemptLimit, "")
	}

	base := module.Attempts[0]
	for _, a := range module.Attempts {
		if a.Number < base.Number {
			base = a
		}
	}
	examType := base.Type
	if examType == "" {
		examType = models.ExamTypeOther
	}

	attempt, err := models.NewExamAttempt(fmt.Sprintf("%s-A%d", module.Code, number), examType, nil, number, nil)
	if err != nil {
		return nil, err
	}
	module.Attempts = append(module.Attempts, attempt)
	module.SortAttempts()

	s.logger.Info("exam attempt created",
		zap.String("module", module.Code),
		zap.Int("attempt", number),
		zap.String("type", string(examType)),
	)
	return attempt, nil
}

// FindModulesByCode returns every module matching the code. Duplicate codes
// are tolerated data; disambiguation is the caller's concern.
func (s *PlannerService) FindModulesByCode(program *models.Program, code string) []*models.CourseModule {
	needle := strings.TrimSpace(code)
	var matches []*models.CourseModule
	for _, m := range program.AllModules() {
		if strings.TrimSpace(m.Code) == needle {
			matches = append(matches, m)
		}
	}
	return matches
}
