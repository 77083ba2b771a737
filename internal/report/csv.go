// Package report writes classification results as long-form CSV tables,
// wide raster grids, and XLSX summary workbooks.
package report

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ocean-chem/longhurst-cli/internal/assign"
	"github.com/ocean-chem/longhurst-cli/internal/model"
)

// assignmentColumns defines the ordered long-form CSV output columns.
var assignmentColumns = []string{
	"lat",
	"lon",
	"outcome",
	"province_code",
	"province_num",
	"ambiguous_codes",
	"error",
}

// WriteAssignmentsCSV writes assignments as a long-form CSV file, one row
// per observation in input order.
func WriteAssignmentsCSV(path string, assignments []model.Assignment) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "report: create csv file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(assignmentColumns); err != nil {
		return eris.Wrap(err, "report: write header")
	}

	for _, a := range assignments {
		if err := w.Write(buildAssignmentRow(a)); err != nil {
			return eris.Wrap(err, "report: write row")
		}
	}

	return w.Error()
}

// buildAssignmentRow maps an Assignment to a long-form CSV row.
func buildAssignmentRow(a model.Assignment) []string {
	num := ""
	if a.Outcome == model.AssignmentMatched {
		num = strconv.Itoa(a.Num)
	}
	return []string{
		formatCoord(a.Lat),
		formatCoord(a.Lon),
		string(a.Outcome),
		a.Code,
		num,
		strings.Join(a.AmbiguousCodes, ";"),
		a.Err,
	}
}

// WriteGridCSV writes a gridded run as a wide raster: one row per
// latitude band, one column per longitude, cell values are province
// numbers. Cells with no single province are written as NaN so the
// raster loads cleanly into numeric analysis tools.
func WriteGridCSV(path string, grid *assign.Grid, assignments []model.Assignment) error {
	if len(assignments) != len(grid.Lats)*len(grid.Lons) {
		return eris.Errorf("report: grid has %d cells but %d assignments",
			len(grid.Lats)*len(grid.Lons), len(assignments))
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "report: create grid file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := make([]string, 0, len(grid.Lons)+1)
	header = append(header, "lat")
	for _, lon := range grid.Lons {
		header = append(header, formatCoord(lon))
	}
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "report: write grid header")
	}

	for i, lat := range grid.Lats {
		row := make([]string, 0, len(grid.Lons)+1)
		row = append(row, formatCoord(lat))
		for j := range grid.Lons {
			a := assignments[i*len(grid.Lons)+j]
			if a.Outcome == model.AssignmentMatched {
				row = append(row, strconv.Itoa(a.Num))
			} else {
				row = append(row, "NaN")
			}
		}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "report: write grid row")
		}
	}

	return w.Error()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
