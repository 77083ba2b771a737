package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ocean-chem/longhurst-cli/internal/config"
	"github.com/ocean-chem/longhurst-cli/internal/longhurst"
	"github.com/ocean-chem/longhurst-cli/internal/model"
	"github.com/ocean-chem/longhurst-cli/internal/store"
)

// loadBoundaryStore loads the configured boundary source and resolves the
// registry variant. The --boundary and --registry flags on individual
// commands override the config file.
func loadBoundaryStore(bc config.BoundaryConfig) (*longhurst.Store, *longhurst.Registry, error) {
	if bc.Path == "" {
		return nil, nil, eris.New("no boundary source configured; set boundary.path or pass --boundary")
	}

	format := bc.Format
	if format == "" || format == "auto" {
		switch strings.ToLower(filepath.Ext(bc.Path)) {
		case ".shp":
			format = "shapefile"
		default:
			format = "gml"
		}
	}

	var (
		st  *longhurst.Store
		err error
	)
	switch format {
	case "gml":
		st, err = longhurst.LoadGML(bc.Path)
	case "shapefile":
		st, err = longhurst.LoadShapefile(bc.Path)
	default:
		return nil, nil, eris.Errorf("unknown boundary format %q", format)
	}
	if err != nil {
		return nil, nil, err
	}

	registry := bc.Registry
	if registry == "" {
		registry = "longhurst"
	}
	reg, err := longhurst.RegistryByName(registry)
	if err != nil {
		return nil, nil, err
	}

	zap.L().Debug("boundary store loaded",
		zap.String("path", bc.Path),
		zap.String("format", format),
		zap.String("registry", reg.Name()),
		zap.Int("provinces", st.Len()),
	)
	return st, reg, nil
}

// persistRun records a completed batch or grid run and its assignments.
func persistRun(ctx context.Context, kind model.RunKind, bc config.BoundaryConfig, assignments []model.Assignment, summary *model.Summary) (*model.Run, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close() //nolint:errcheck
	if err := st.Migrate(ctx); err != nil {
		return nil, err
	}

	run, err := st.CreateRun(ctx, kind, bc.Path, bc.Registry)
	if err != nil {
		return nil, err
	}
	if _, err := st.InsertAssignments(ctx, run.ID, assignments); err != nil {
		if failErr := st.FailRun(ctx, run.ID, err.Error()); failErr != nil {
			zap.L().Warn("could not mark run failed", zap.String("run", run.ID), zap.Error(failErr))
		}
		return nil, err
	}
	if err := st.CompleteRun(ctx, run.ID, summary); err != nil {
		return nil, err
	}
	run.Status = model.RunStatusComplete
	run.Summary = summary

	zap.L().Info("run persisted", zap.String("run", run.ID), zap.String("kind", string(kind)))
	return run, nil
}

// initStore opens the configured persistence backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "", "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "longhurst.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
