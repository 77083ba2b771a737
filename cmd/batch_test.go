package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/ocean-chem/longhurst-cli/internal/model"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "obs.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadObservationsCSV(t *testing.T) {
	path := writeTempCSV(t, "station,latitude,longitude\nA,45.5,-30.25\nB,-25,-130\n")

	obs, err := readObservations(context.Background(), path, "latitude", "longitude")
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, model.Observation{Lat: 45.5, Lon: -30.25}, obs[0])
	assert.Equal(t, model.Observation{Lat: -25, Lon: -130}, obs[1])
}

func TestReadObservationsCSVHeaderCase(t *testing.T) {
	path := writeTempCSV(t, "Latitude, Longitude\n10,20\n")

	obs, err := readObservations(context.Background(), path, "latitude", "longitude")
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, model.Observation{Lat: 10, Lon: 20}, obs[0])
}

func TestReadObservationsCSVEmptyInput(t *testing.T) {
	path := writeTempCSV(t, "")

	_, err := readObservations(context.Background(), path, "latitude", "longitude")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestReadObservationsCSVMissingColumn(t *testing.T) {
	path := writeTempCSV(t, "lat,lng\n1,2\n")

	_, err := readObservations(context.Background(), path, "latitude", "longitude")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `latitude column "latitude" not found`)
}

func TestReadObservationsCSVBadValue(t *testing.T) {
	path := writeTempCSV(t, "latitude,longitude\n45,-30\nnorth,-30\n")

	_, err := readObservations(context.Background(), path, "latitude", "longitude")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), `"north"`)
}

func TestReadObservationsXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obs.xlsx")

	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet("Observations")
	require.NoError(t, err)
	header := sheet.AddRow()
	header.AddCell().SetString("latitude")
	header.AddCell().SetString("longitude")
	row := sheet.AddRow()
	row.AddCell().SetString("45.5")
	row.AddCell().SetString("-30.25")
	require.NoError(t, wb.Save(path))

	obs, err := readObservations(context.Background(), path, "latitude", "longitude")
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, model.Observation{Lat: 45.5, Lon: -30.25}, obs[0])
}

func TestCoordColumns(t *testing.T) {
	latIdx, lonIdx, err := coordColumns([]string{"id", "Longitude", "Latitude"}, "latitude", "longitude")
	require.NoError(t, err)
	assert.Equal(t, 2, latIdx)
	assert.Equal(t, 1, lonIdx)

	_, _, err = coordColumns([]string{"latitude"}, "latitude", "longitude")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `longitude column "longitude" not found`)
}

func TestParseObservationShortRow(t *testing.T) {
	_, err := parseObservation([]string{"45"}, 0, 1, 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 7 has 1 columns")
}
