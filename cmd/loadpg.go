package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ocean-chem/longhurst-cli/internal/geoload"
	"github.com/ocean-chem/longhurst-cli/internal/store"
)

var (
	loadpgBoundary string
	loadpgDBURL    string
)

var loadpgCmd = &cobra.Command{
	Use:   "loadpg",
	Short: "Load province boundaries into Postgres/PostGIS",
	Long: `Loads the configured boundary source into the longhurst.provinces
PostGIS table as MultiPolygon geometries, replacing any previous load.
The in-process classifier keeps reading the boundary file directly; this
table exists for spatial analysis alongside persisted runs.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		bc := cfg.Boundary
		if loadpgBoundary != "" {
			bc.Path = loadpgBoundary
		}
		dbURL := loadpgDBURL
		if dbURL == "" {
			dbURL = cfg.Store.DatabaseURL
		}
		if dbURL == "" {
			return eris.New("loadpg: no database URL; set store.database_url or pass --database-url")
		}

		boundaries, _, err := loadBoundaryStore(bc)
		if err != nil {
			return err
		}

		pg, err := store.NewPostgres(ctx, dbURL, nil)
		if err != nil {
			return err
		}
		defer pg.Close() //nolint:errcheck

		n, err := geoload.Load(ctx, pg.Pool(), boundaries)
		if err != nil {
			return err
		}

		zap.L().Info("boundary load complete",
			zap.String("source", bc.Path),
			zap.Int64("provinces", n),
		)
		return nil
	},
}

func init() {
	loadpgCmd.Flags().StringVar(&loadpgBoundary, "boundary", "", "boundary source path (overrides config)")
	loadpgCmd.Flags().StringVar(&loadpgDBURL, "database-url", "", "Postgres connection string (overrides config)")
	rootCmd.AddCommand(loadpgCmd)
}
