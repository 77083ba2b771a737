package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/ocean-chem/longhurst-cli/internal/assign"
	"github.com/ocean-chem/longhurst-cli/internal/model"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteAssignmentsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	assignments := []model.Assignment{
		{Lat: 45.5, Lon: -30, Outcome: model.AssignmentMatched, Code: "NADR", Num: 4},
		{Lat: -60, Lon: 0, Outcome: model.AssignmentMatched, Code: "BPLR", Num: 0},
		{Lat: 0, Lon: 0, Outcome: model.AssignmentNoMatch},
		{Lat: 10, Lon: 10, Outcome: model.AssignmentAmbiguous, AmbiguousCodes: []string{"ETRA", "GUIN"}},
		{Lat: 70, Lon: 70, Outcome: model.AssignmentFailed, Err: "unknown province code"},
	}
	require.NoError(t, WriteAssignmentsCSV(path, assignments))

	rows := readCSV(t, path)
	require.Len(t, rows, 6)
	assert.Equal(t, assignmentColumns, rows[0])
	assert.Equal(t, []string{"45.5", "-30", "matched", "NADR", "4", "", ""}, rows[1])

	// Zero is a real MarineRegions-style number, not an empty cell.
	assert.Equal(t, "0", rows[2][4])

	assert.Equal(t, []string{"0", "0", "no_match", "", "", "", ""}, rows[3])
	assert.Equal(t, "ETRA;GUIN", rows[4][5])
	assert.Equal(t, "unknown province code", rows[5][6])
}

func TestWriteGridCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.csv")

	grid := &assign.Grid{
		Lats: []float64{-10, 10},
		Lons: []float64{-20, 0, 20},
	}
	assignments := []model.Assignment{
		{Outcome: model.AssignmentMatched, Num: 4},
		{Outcome: model.AssignmentNoMatch},
		{Outcome: model.AssignmentMatched, Num: 0},
		{Outcome: model.AssignmentAmbiguous},
		{Outcome: model.AssignmentMatched, Num: 17},
		{Outcome: model.AssignmentFailed},
	}
	require.NoError(t, WriteGridCSV(path, grid, assignments))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"lat", "-20", "0", "20"}, rows[0])
	assert.Equal(t, []string{"-10", "4", "NaN", "0"}, rows[1])
	assert.Equal(t, []string{"10", "NaN", "17", "NaN"}, rows[2])
}

func TestWriteGridCSVSizeMismatch(t *testing.T) {
	grid := &assign.Grid{Lats: []float64{0}, Lons: []float64{0, 1}}
	err := WriteGridCSV(filepath.Join(t.TempDir(), "grid.csv"), grid, make([]model.Assignment, 3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 cells but 3 assignments")
}

func TestWriteSummaryXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.xlsx")

	run := &model.Run{
		ID:        "run-1",
		Kind:      model.RunKindBatch,
		Source:    "longhurst.xml",
		Registry:  "longhurst",
		Status:    model.RunStatusComplete,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	summary := &model.Summary{
		Total:          10,
		Matched:        8,
		NoMatch:        1,
		Ambiguous:      1,
		CodeCounts:     map[string]int{"NADR": 5, "SPSG": 3},
		AmbiguousCodes: []string{"ETRA", "GUIN"},
	}
	require.NoError(t, WriteSummaryXLSX(path, run, summary))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)

	summarySheet, ok := f.Sheet["Summary"]
	require.True(t, ok)
	assert.Equal(t, "Run ID", summarySheet.Rows[0].Cells[0].String())
	assert.Equal(t, "run-1", summarySheet.Rows[0].Cells[1].String())

	provSheet, ok := f.Sheet["Provinces"]
	require.True(t, ok)
	require.True(t, len(provSheet.Rows) >= 3)
	assert.Equal(t, "NADR", provSheet.Rows[1].Cells[0].String())
	assert.Equal(t, "N.AtlanticDriftProvince(WWDR)", provSheet.Rows[1].Cells[1].String())
	assert.Equal(t, "5", provSheet.Rows[1].Cells[2].String())
	assert.Equal(t, "SPSG", provSheet.Rows[2].Cells[0].String())
}
