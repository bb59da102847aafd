package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mbecker-dev/study-dashboard/internal/models"
	"github.com/mbecker-dev/study-dashboard/pkg/export"
)

// ExportFormat selects the rendered output format.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type exportStorage interface {
	Save(filename string, data []byte) (string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders program overviews into files.
type ExportService struct {
	storage exportStorage
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(storage exportStorage, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		storage: storage,
		csv:     csv,
		pdf:     pdf,
		logger:  logger,
		now:     time.Now,
	}
}

// ModuleOverview renders one row per module with status and grade as of the
// reference date and stores the result. It returns the stored path.
func (s *ExportService) ModuleOverview(program *models.Program, asOf time.Time, format ExportFormat) (string, error) {
	dataset := s.ModuleOverviewDataset(program, asOf)
	return s.render("modules", program.Name+" - modules", dataset, format)
}

// SemesterSummary renders the per-semester plan comparison and stores the
// result. It returns the stored path.
func (s *ExportService) SemesterSummary(program *models.Program, format ExportFormat) (string, error) {
	dataset := s.SemesterSummaryDataset(program)
	return s.render("semesters", program.Name+" - semesters", dataset, format)
}

// ModuleOverviewDataset builds the tabular module overview.
func (s *ExportService) ModuleOverviewDataset(program *models.Program, asOf time.Time) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"Semester", "Code", "Title", "Credits", "Status", "Grade"},
	}
	for _, sem := range program.Semesters {
		for _, m := range sem.Modules {
			grade := "-"
			if g := m.Grade(); g != nil {
				grade = fmt.Sprintf("%.1f", *g)
			}
			dataset.Rows = append(dataset.Rows, []string{
				strconv.Itoa(sem.Number),
				m.Code,
				m.Title,
				strconv.Itoa(m.Credits),
				string(m.Status(asOf)),
				grade,
			})
		}
	}
	return dataset
}

// SemesterSummaryDataset builds the tabular semester plan comparison.
func (s *ExportService) SemesterSummaryDataset(program *models.Program) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"Semester", "Planned", "Earned"},
	}
	for _, sem := range program.Semesters {
		dataset.Rows = append(dataset.Rows, []string{
			strconv.Itoa(sem.Number),
			strconv.Itoa(sem.PlannedCredits),
			strconv.Itoa(sem.EarnedCredits()),
		})
	}
	return dataset
}

func (s *ExportService) render(kind, title string, dataset export.Dataset, format ExportFormat) (string, error) {
	var payload []byte
	var err error
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s_%s.%s", kind, s.now().UTC().Format("20060102_150405"), strings.ToLower(string(format)))
	path, err := s.storage.Save(filename, payload)
	if err != nil {
		return "", err
	}
	s.logger.Info("export written", zap.String("kind", kind), zap.String("path", path))
	return path, nil
}
