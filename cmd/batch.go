package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ocean-chem/longhurst-cli/internal/assign"
	"github.com/ocean-chem/longhurst-cli/internal/fetcher"
	"github.com/ocean-chem/longhurst-cli/internal/longhurst"
	"github.com/ocean-chem/longhurst-cli/internal/model"
	"github.com/ocean-chem/longhurst-cli/internal/report"
)

var (
	batchInput    string
	batchOutput   string
	batchXLSXOut  string
	batchBoundary string
	batchRegistry string
	batchLatCol   string
	batchLonCol   string
	batchWorkers  int
	batchPersist  bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Assign provinces to a table of observations",
	Long: `Reads a CSV or XLSX observation table, classifies every row in
parallel, and writes a long-form CSV with outcome, province code, and
province number columns. Rows that hit registry lookup failures are
reported in the output and the summary; they never abort the batch.

Examples:
  longhurst-cli batch --input obs.csv --output assigned.csv
  longhurst-cli batch --input obs.xlsx --lat-column Latitude --lon-column Longitude --persist`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		bc := cfg.Boundary
		if batchBoundary != "" {
			bc.Path = batchBoundary
		}
		if batchRegistry != "" {
			bc.Registry = batchRegistry
		}
		latCol := batchLatCol
		if latCol == "" {
			latCol = cfg.Batch.LatColumn
		}
		lonCol := batchLonCol
		if lonCol == "" {
			lonCol = cfg.Batch.LonColumn
		}
		workers := batchWorkers
		if workers <= 0 {
			workers = cfg.Batch.Workers
		}

		obs, err := readObservations(ctx, batchInput, latCol, lonCol)
		if err != nil {
			return err
		}
		zap.L().Info("observations loaded",
			zap.String("input", batchInput),
			zap.Int("rows", len(obs)),
		)

		st, reg, err := loadBoundaryStore(bc)
		if err != nil {
			return err
		}
		engine := assign.New(longhurst.NewClassifier(st, reg), workers)

		assignments, summary, err := engine.Run(ctx, obs)
		if err != nil {
			return eris.Wrap(err, "batch: assign")
		}

		output := batchOutput
		if output == "" {
			output = "assignments.csv"
		}
		if err := report.WriteAssignmentsCSV(output, assignments); err != nil {
			return err
		}

		logSummary(summary)

		var run *model.Run
		if batchPersist {
			run, err = persistRun(ctx, model.RunKindBatch, bc, assignments, summary)
			if err != nil {
				return err
			}
		}

		if batchXLSXOut != "" {
			if run == nil {
				run = &model.Run{
					Kind:     model.RunKindBatch,
					Source:   bc.Path,
					Registry: bc.Registry,
					Status:   model.RunStatusComplete,
				}
			}
			if err := report.WriteSummaryXLSX(batchXLSXOut, run, summary); err != nil {
				return err
			}
		}

		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchInput, "input", "", "observation table (.csv or .xlsx)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "output CSV path (default assignments.csv)")
	batchCmd.Flags().StringVar(&batchXLSXOut, "xlsx-summary", "", "write an XLSX summary workbook")
	batchCmd.Flags().StringVar(&batchBoundary, "boundary", "", "boundary source path (overrides config)")
	batchCmd.Flags().StringVar(&batchRegistry, "registry", "", "numbering variant (overrides config)")
	batchCmd.Flags().StringVar(&batchLatCol, "lat-column", "", "latitude column name (overrides config)")
	batchCmd.Flags().StringVar(&batchLonCol, "lon-column", "", "longitude column name (overrides config)")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "parallel classification workers (overrides config)")
	batchCmd.Flags().BoolVar(&batchPersist, "persist", false, "record the run and assignments in the store")
	_ = batchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(batchCmd)
}

// readObservations loads lat/lon pairs from a CSV or XLSX table, located
// by column name in the header row.
func readObservations(ctx context.Context, path, latCol, lonCol string) ([]model.Observation, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readObservationsXLSX(path, latCol, lonCol)
	default:
		return readObservationsCSV(ctx, path, latCol, lonCol)
	}
}

func readObservationsCSV(ctx context.Context, path, latCol, lonCol string) ([]model.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "batch: open input")
	}
	defer f.Close()

	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, f, fetcher.CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
		TrimSpace: true,
	})

	var header []string
	select {
	case header = <-headerCh:
	case streamErr := <-errCh:
		// Stream ended before any header row; it may still be buffered.
		select {
		case header = <-headerCh:
		default:
			if streamErr != nil {
				return nil, streamErr
			}
			return nil, eris.New("batch: input has no header row")
		}
	}
	latIdx, lonIdx, err := coordColumns(header, latCol, lonCol)
	if err != nil {
		return nil, err
	}

	var obs []model.Observation
	rowNum := 1
	for row := range rowCh {
		rowNum++
		o, err := parseObservation(row, latIdx, lonIdx, rowNum)
		if err != nil {
			return nil, err
		}
		obs = append(obs, o)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	return obs, nil
}

func readObservationsXLSX(path, latCol, lonCol string) ([]model.Observation, error) {
	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, eris.New("batch: input has no header row")
	}

	latIdx, lonIdx, err := coordColumns(rows[0], latCol, lonCol)
	if err != nil {
		return nil, err
	}

	var obs []model.Observation
	for i, row := range rows[1:] {
		o, err := parseObservation(row, latIdx, lonIdx, i+2)
		if err != nil {
			return nil, err
		}
		obs = append(obs, o)
	}
	return obs, nil
}

func coordColumns(header []string, latCol, lonCol string) (int, int, error) {
	latIdx, lonIdx := -1, -1
	for i, name := range header {
		switch {
		case strings.EqualFold(strings.TrimSpace(name), latCol):
			latIdx = i
		case strings.EqualFold(strings.TrimSpace(name), lonCol):
			lonIdx = i
		}
	}
	if latIdx < 0 {
		return 0, 0, eris.Errorf("batch: latitude column %q not found in header", latCol)
	}
	if lonIdx < 0 {
		return 0, 0, eris.Errorf("batch: longitude column %q not found in header", lonCol)
	}
	return latIdx, lonIdx, nil
}

func parseObservation(row []string, latIdx, lonIdx, rowNum int) (model.Observation, error) {
	var o model.Observation
	if latIdx >= len(row) || lonIdx >= len(row) {
		return o, eris.Errorf("batch: row %d has %d columns", rowNum, len(row))
	}
	lat, err := strconv.ParseFloat(row[latIdx], 64)
	if err != nil {
		return o, eris.Wrapf(err, "batch: row %d: parse latitude %q", rowNum, row[latIdx])
	}
	lon, err := strconv.ParseFloat(row[lonIdx], 64)
	if err != nil {
		return o, eris.Wrapf(err, "batch: row %d: parse longitude %q", rowNum, row[lonIdx])
	}
	return model.Observation{Lat: lat, Lon: lon}, nil
}

func logSummary(s *model.Summary) {
	zap.L().Info("assignment complete",
		zap.Int("total", s.Total),
		zap.Int("matched", s.Matched),
		zap.Int("no_match", s.NoMatch),
		zap.Int("ambiguous", s.Ambiguous),
		zap.Int("failed", s.Failed),
	)
	if len(s.AmbiguousCodes) > 0 {
		zap.L().Info("provinces involved in ambiguous cells",
			zap.Strings("codes", s.AmbiguousCodes),
		)
	}
}
