package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockExportStorage struct {
	filename string
	data     []byte
	err      error
}

func (m *mockExportStorage) Save(filename string, data []byte) (string, error) {
	m.filename = filename
	m.data = data
	if m.err != nil {
		return "", m.err
	}
	return "/exports/" + filename, nil
}

func TestModuleOverviewDataset(t *testing.T) {
	asOf := day(2024, time.March, 1)
	program := buildProgram(t,
		buildSemester(t, 1, 30,
			buildModule(t, "M1", 5, buildAttempt(t, "a1", nil, 1, gradePtr(2.3))),
			buildModule(t, "M2", 10, buildAttempt(t, "a2", dayPtr(2024, time.June, 1), 1, nil)),
		),
	)
	svc := NewExportService(&mockExportStorage{}, nil, nil, nil)

	dataset := svc.ModuleOverviewDataset(program, asOf)
	assert.Equal(t, []string{"Semester", "Code", "Title", "Credits", "Status", "Grade"}, dataset.Headers)
	require.Len(t, dataset.Rows, 2)
	assert.Equal(t, []string{"1", "M1", "Title of M1", "5", "COMPLETED", "2.3"}, dataset.Rows[0])
	assert.Equal(t, []string{"1", "M2", "Title of M2", "10", "IN_PROGRESS", "-"}, dataset.Rows[1])
}

func TestSemesterSummaryDataset(t *testing.T) {
	program := buildProgram(t,
		buildSemester(t, 1, 30, buildModule(t, "M1", 5, buildAttempt(t, "a1", nil, 1, gradePtr(2.3)))),
		buildSemester(t, 2, 25),
	)
	svc := NewExportService(&mockExportStorage{}, nil, nil, nil)

	dataset := svc.SemesterSummaryDataset(program)
	assert.Equal(t, []string{"Semester", "Planned", "Earned"}, dataset.Headers)
	require.Len(t, dataset.Rows, 2)
	assert.Equal(t, []string{"1", "30", "5"}, dataset.Rows[0])
	assert.Equal(t, []string{"2", "25", "0"}, dataset.Rows[1])
}

func TestModuleOverviewWritesCSV(t *testing.T) {
	asOf := day(2024, time.March, 1)
	program := buildProgram(t,
		buildSemester(t, 1, 30,
			buildModule(t, "M1", 5, buildAttempt(t, "a1", nil, 1, gradePtr(2.3)))),
	)
	storage := &mockExportStorage{}
	svc := NewExportService(storage, nil, nil, nil)
	svc.now = func() time.Time { return day(2024, time.March, 1) }

	path, err := svc.ModuleOverview(program, asOf, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "/exports/modules_20240301_000000.csv", path)
	assert.Equal(t, "modules_20240301_000000.csv", storage.filename)

	lines := strings.Split(strings.TrimSpace(string(storage.data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Semester,Code,Title,Credits,Status,Grade", lines[0])
	assert.Equal(t, "1,M1,Title of M1,5,COMPLETED,2.3", lines[1])
}

func TestSemesterSummaryWritesPDF(t *testing.T) {
	program := buildProgram(t,
		buildSemester(t, 1, 30, buildModule(t, "M1", 5, buildAttempt(t, "a1", nil, 1, gradePtr(2.3)))),
	)
	storage := &mockExportStorage{}
	svc := NewExportService(storage, nil, nil, nil)
	svc.now = func() time.Time { return day(2024, time.March, 1) }

	path, err := svc.SemesterSummary(program, ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "/exports/semesters_20240301_000000.pdf", path)
	assert.True(t, strings.HasPrefix(string(storage.data), "%PDF"))
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	program := buildProgram(t,
		buildSemester(t, 1, 30, buildModule(t, "M1", 5, buildAttempt(t, "a1", nil, 1, nil))),
	)
	svc := NewExportService(&mockExportStorage{}, nil, nil, nil)

	_, err := svc.ModuleOverview(program, day(2024, time.March, 1), ExportFormat("xlsx"))
	require.Error(t, err)
}
