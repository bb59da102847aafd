package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mbecker-dev/study-dashboard/internal/models"
	appErrors "github.com/mbecker-dev/study-dashboard/pkg/errors"
)

const dateLayout = "2006-01-02"

// ProgramRepository is the load/save contract the core depends on. The
// collaborator supplies a fully constructed, invariant-satisfying program
// graph or signals a load failure with a diagnostic reason.
type ProgramRepository interface {
	Load(ctx context.Context) (*models.Program, error)
	Save(ctx context.Context, program *models.Program) error
}

type fileReadWriter interface {
	Read(path string) ([]byte, error)
	WriteAtomic(path string, data []byte) error
}

// JSONProgramRepository persists the whole program graph as one indented
// JSON document. Enum parsing is tolerant: unrecognized values fall back to
// defaults instead of failing the load.
type JSONProgramRepository struct {
	path      string
	files     fileReadWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewJSONProgramRepository constructs a file-backed repository.
func NewJSONProgramRepository(path string, files fileReadWriter, validate *validator.Validate, logger *zap.Logger) *JSONProgramRepository {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONProgramRepository{path: path, files: files, validator: validate, logger: logger}
}

type programRecord struct {
	Name           string           `json:"name" validate:"required"`
	Degree         string           `json:"degree"`
	StudyModel     string           `json:"study_model"`
	TotalCredits   int              `json:"total_credits" validate:"required,gt=0"`
	DurationMonths int              `json:"duration_months" validate:"required,gt=0"`
	StartDate      string           `json:"start_date" validate:"required"`
	Semesters      []semesterRecord `json:"semesters" validate:"required,min=1,dive"`
}

type semesterRecord struct {
	Number         int            `json:"number" validate:"required,gte=1"`
	PlannedCredits int            `json:"planned_credits" validate:"required,gt=0"`
	StartDate      *string        `json:"start_date,omitempty"`
	EndDate        *string        `json:"end_date,omitempty"`
	Modules        []moduleRecord `json:"modules" validate:"dive"`
}

type moduleRecord struct {
	Code                string          `json:"code" validate:"required"`
	Title               string          `json:"title" validate:"required"`
	Credits             int             `json:"credits" validate:"required,gt=0"`
	RecommendedSemester int             `json:"recommended_semester" validate:"required,gte=1"`
	Attempts            []attemptRecord `json:"attempts" validate:"required,min=1,max=3,dive"`
}

type attemptRecord struct {
	ID     string   `json:"id"`
	Type   string   `json:"type"`
	Date   *string  `json:"date,omitempty"`
	Number int      `json:"number" validate:"required,min=1,max=3"`
	Grade  *float64 `json:"grade,omitempty" validate:"omitempty,min=1,max=5"`
}

// Load reads and decodes the data file into a validated program graph.
func (r *JSONProgramRepository) Load(ctx context.Context) (*models.Program, error) {
	_ = ctx

	raw, err := r.files.Read(r.path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrLoadFailed.Code, "read study data")
	}

	var record programRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrLoadFailed.Code, "decode study data")
	}
	if err := r.validator.Struct(record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrLoadFailed.Code, "invalid study data")
	}

	program, err := r.buildProgram(record)
	if err != nil {
		return nil, err
	}

	r.reportDiagnostics(program)
	return program, nil
}

// Save encodes the program graph and replaces the data file atomically.
func (r *JSONProgramRepository) Save(ctx context.Context, program *models.Program) error {
	_ = ctx

	record := programToRecord(program)
	raw, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrSaveFailed.Code, "encode study data")
	}
	if err := r.files.WriteAtomic(r.path, raw); err != nil {
		return appErrors.Wrap(err, appErrors.ErrSaveFailed.Code, "write study data")
	}
	return nil
}

func (r *JSONProgramRepository) buildProgram(record programRecord) (*models.Program, error) {
	startDate, err := parseDate(record.StartDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrLoadFailed.Code, "invalid program start date")
	}

	semesters := make([]*models.Semester, 0, len(record.Semesters))
	for _, sr := range record.Semesters {
		semester, err := r.buildSemester(sr)
		if err != nil {
			return nil, err
		}
		semesters = append(semesters, semester)
	}

	return models.NewProgram(
		record.Name,
		parseDegree(record.Degree),
		parseStudyModel(record.StudyModel),
		record.TotalCredits,
		record.DurationMonths,
		startDate,
		semesters,
	)
}

func (r *JSONProgramRepository) buildSemester(record semesterRecord) (*models.Semester, error) {
	start, err := parseOptionalDate(record.StartDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrLoadFailed.Code, "invalid semester start date")
	}
	end, err := parseOptionalDate(record.EndDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrLoadFailed.Code, "invalid semester end date")
	}

	modules := make([]*models.CourseModule, 0, len(record.Modules))
	for _, mr := range record.Modules {
		module, err := r.buildModule(mr)
		if err != nil {
			return nil, err
		}
		modules = append(modules, module)
	}

	return models.NewSemester(record.Number, record.PlannedCredits, start, end, modules)
}

func (r *JSONProgramRepository) buildModule(record moduleRecord) (*models.CourseModule, error) {
	attempts := make([]*models.ExamAttempt, 0, len(record.Attempts))
	for _, ar := range record.Attempts {
		date, err := parseOptionalDate(ar.Date)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrLoadFailed.Code, "invalid exam date")
		}
		id := strings.TrimSpace(ar.ID)
		if id == "" {
			id = uuid.NewString()
		}
		attempt, err := models.NewExamAttempt(id, parseExamType(ar.Type), date, ar.Number, ar.Grade)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}

	return models.NewCourseModule(
		strings.TrimSpace(record.Code),
		record.Title,
		record.Credits,
		record.RecommendedSemester,
		attempts,
	)
}

// reportDiagnostics surfaces tolerated inconsistencies without failing the load.
func (r *JSONProgramRepository) reportDiagnostics(program *models.Program) {
	codes := make(map[string]int)
	for _, m := range program.AllModules() {
		codes[m.Code]++
		if m.HasDuplicateAttemptNumbers() {
			r.logger.Warn("module has duplicate attempt numbers", zap.String("module", m.Code))
		}
	}
	for code, count := range codes {
		if count > 1 {
			r.logger.Warn("duplicate module code", zap.String("code", code), zap.Int("count", count))
		}
	}
}

func programToRecord(program *models.Program) programRecord {
	record := programRecord{
		Name:           program.Name,
		Degree:         string(program.Degree),
		StudyModel:     string(program.StudyModel),
		TotalCredits:   program.TotalCredits,
		DurationMonths: program.DurationMonths,
		StartDate:      program.StartDate.Format(dateLayout),
	}
	for _, s := range program.Semesters {
		sr := semesterRecord{
			Number:         s.Number,
			PlannedCredits: s.PlannedCredits,
			StartDate:      formatOptionalDate(s.StartDate),
			EndDate:        formatOptionalDate(s.EndDate),
		}
		for _, m := range s.Modules {
			mr := moduleRecord{
				Code:                m.Code,
				Title:               m.Title,
				Credits:             m.Credits,
				RecommendedSemester: m.RecommendedSemester,
			}
			for _, a := range m.Attempts {
				mr.Attempts = append(mr.Attempts, attemptRecord{
					ID:     a.ID,
					Type:   string(a.Type),
					Date:   formatOptionalDate(a.Date),
					Number: a.Number,
					Grade:  a.Grade,
				})
			}
			sr.Modules = append(sr.Modules, mr)
		}
		record.Semesters = append(record.Semesters, sr)
	}
	return record
}

func parseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, strings.TrimSpace(raw), time.UTC)
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := parseDate(*raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// normalizeEnum strips separators and lowercases, so "WrittenExam",
// "written_exam" and "WRITTEN-EXAM" all match.
func normalizeEnum(raw string) string {
	replacer := strings.NewReplacer("_", "", "-", "", " ", "")
	return strings.ToLower(replacer.Replace(strings.TrimSpace(raw)))
}

func parseDegree(raw string) models.DegreeType {
	switch normalizeEnum(raw) {
	case "master", "msc", "ma":
		return models.DegreeMaster
	case "bachelor", "bsc", "ba":
		return models.DegreeBachelor
	default:
		return models.DegreeBachelor
	}
}

func parseStudyModel(raw string) models.StudyModel {
	switch normalizeEnum(raw) {
	case "fulltime":
		return models.StudyModelFullTime
	case "parttimeii", "parttime2":
		return models.StudyModelPartTimeII
	case "parttimei", "parttime1", "parttime":
		return models.StudyModelPartTimeI
	default:
		return models.StudyModelPartTimeI
	}
}

func parseExamType(raw string) models.ExamType {
	known := []models.ExamType{
		models.ExamTypeWrittenExam,
		models.ExamTypeTermPaper,
		models.ExamTypeProject,
		models.ExamTypeOralExam,
		models.ExamTypeAdvancedWorkbook,
		models.ExamTypePortfolio,
		models.ExamTypeProjectReport,
		models.ExamTypeSeminarPaper,
		models.ExamTypeCaseStudy,
		models.ExamTypeThesis,
		models.ExamTypeColloquium,
		models.ExamTypeProjectPresentation,
		models.ExamTypeOther,
	}
	needle := normalizeEnum(raw)
	for _, t := range known {
		if normalizeEnum(string(t)) == needle {
			return t
		}
	}
	return models.ExamTypeOther
}
