package geoload

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ocean-chem/longhurst-cli/internal/db"
	"github.com/ocean-chem/longhurst-cli/internal/longhurst"
)

const provincesSchema = `
CREATE SCHEMA IF NOT EXISTS longhurst;

CREATE TABLE IF NOT EXISTS longhurst.provinces (
	id       TEXT PRIMARY KEY,
	code     TEXT NOT NULL,
	name     TEXT NOT NULL,
	bbox_x1  DOUBLE PRECISION NOT NULL,
	bbox_y1  DOUBLE PRECISION NOT NULL,
	bbox_x2  DOUBLE PRECISION NOT NULL,
	bbox_y2  DOUBLE PRECISION NOT NULL,
	the_geom geometry(MultiPolygon, 4326) NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_provinces_code ON longhurst.provinces (code);
CREATE INDEX IF NOT EXISTS idx_provinces_geom ON longhurst.provinces USING GIST (the_geom);
`

var provinceColumns = []string{"id", "code", "name", "bbox_x1", "bbox_y1", "bbox_x2", "bbox_y2", "the_geom"}

// Load replaces the longhurst.provinces table contents with the given
// boundary store. Existing rows are dropped first so repeated loads of a
// refreshed boundary file stay idempotent.
func Load(ctx context.Context, pool db.Pool, store *longhurst.Store) (int64, error) {
	log := zap.L().With(zap.String("component", "geoload"))

	if _, err := pool.Exec(ctx, provincesSchema); err != nil {
		return 0, eris.Wrap(err, "geoload: create schema")
	}
	if _, err := pool.Exec(ctx, "TRUNCATE longhurst.provinces"); err != nil {
		return 0, eris.Wrap(err, "geoload: truncate provinces")
	}

	rows := make([][]any, 0, store.Len())
	var encodeErr error
	store.Each(func(b longhurst.ProvinceBoundary) {
		if encodeErr != nil {
			return
		}
		geomBytes, err := EncodeBoundary(b)
		if err != nil {
			encodeErr = err
			return
		}
		rows = append(rows, []any{
			b.ID, b.ProvCode, b.ProvName,
			b.BBox.X1, b.BBox.Y1, b.BBox.X2, b.BBox.Y2,
			geomBytes,
		})
	})
	if encodeErr != nil {
		return 0, encodeErr
	}

	n, err := db.CopyFromSchema(ctx, pool, "longhurst", "provinces", provinceColumns, rows)
	if err != nil {
		return 0, eris.Wrap(err, "geoload: copy provinces")
	}

	log.Info("provinces loaded into PostGIS", zap.Int64("rows", n))
	return n, nil
}
