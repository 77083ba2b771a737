package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ocean-chem/longhurst-cli/internal/assign"
	"github.com/ocean-chem/longhurst-cli/internal/longhurst"
	"github.com/ocean-chem/longhurst-cli/internal/model"
	"github.com/ocean-chem/longhurst-cli/internal/report"
)

var (
	gridResolution string
	gridOutput     string
	gridRaster     string
	gridBoundary   string
	gridRegistry   string
	gridWorkers    int
	gridPersist    bool
)

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Assign provinces to every cell of a global grid",
	Long: `Classifies the cell centers of a regular global lat/lon grid and
writes a long-form CSV plus an optional wide raster (latitude rows by
longitude columns, province numbers, NaN where no single province holds).

Examples:
  longhurst-cli grid --resolution 4x5 --output grid.csv --raster grid_raster.csv
  longhurst-cli grid --resolution 0.125x0.125 --workers 16 --persist`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		bc := cfg.Boundary
		if gridBoundary != "" {
			bc.Path = gridBoundary
		}
		if gridRegistry != "" {
			bc.Registry = gridRegistry
		}
		workers := gridWorkers
		if workers <= 0 {
			workers = cfg.Batch.Workers
		}

		g, err := assign.BuildGrid(gridResolution)
		if err != nil {
			return err
		}
		obs := g.Points()
		zap.L().Info("grid built",
			zap.String("resolution", gridResolution),
			zap.Int("lats", len(g.Lats)),
			zap.Int("lons", len(g.Lons)),
			zap.Int("cells", len(obs)),
		)

		st, reg, err := loadBoundaryStore(bc)
		if err != nil {
			return err
		}
		engine := assign.New(longhurst.NewClassifier(st, reg), workers)

		assignments, summary, err := engine.Run(ctx, obs)
		if err != nil {
			return eris.Wrap(err, "grid: assign")
		}

		output := gridOutput
		if output == "" {
			output = "grid.csv"
		}
		if err := report.WriteAssignmentsCSV(output, assignments); err != nil {
			return err
		}
		if gridRaster != "" {
			if err := report.WriteGridCSV(gridRaster, g, assignments); err != nil {
				return err
			}
		}

		logSummary(summary)

		if gridPersist {
			if _, err := persistRun(ctx, model.RunKindGrid, bc, assignments, summary); err != nil {
				return err
			}
		}

		return nil
	},
}

func init() {
	gridCmd.Flags().StringVar(&gridResolution, "resolution", "4x5", "grid resolution, latitude step x longitude step")
	gridCmd.Flags().StringVar(&gridOutput, "output", "", "long-form output CSV path (default grid.csv)")
	gridCmd.Flags().StringVar(&gridRaster, "raster", "", "wide raster CSV path")
	gridCmd.Flags().StringVar(&gridBoundary, "boundary", "", "boundary source path (overrides config)")
	gridCmd.Flags().StringVar(&gridRegistry, "registry", "", "numbering variant (overrides config)")
	gridCmd.Flags().IntVar(&gridWorkers, "workers", 0, "parallel classification workers (overrides config)")
	gridCmd.Flags().BoolVar(&gridPersist, "persist", false, "record the run and assignments in the store")
	rootCmd.AddCommand(gridCmd)
}
