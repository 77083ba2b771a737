// Package geoload loads province boundaries into PostGIS so spatial
// queries can run against them alongside the in-process classifier.
package geoload

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"go.uber.org/zap"

	"github.com/ocean-chem/longhurst-cli/internal/longhurst"
)

// EncodeBoundary converts a province boundary to EWKB bytes with SRID
// 4326. Rings are closed here when the source leaves them open, since
// PostGIS rejects unclosed linear rings; the in-process classifier keeps
// working on the raw vertex list regardless.
func EncodeBoundary(b longhurst.ProvinceBoundary) ([]byte, error) {
	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)

	for i, ring := range b.Rings {
		if len(ring) < 3 {
			zap.L().Debug("geoload: skipping degenerate ring",
				zap.String("feature", b.ID),
				zap.Int("ring", i),
				zap.Int("vertices", len(ring)),
			)
			continue
		}

		flat := make([]float64, 0, (len(ring)+1)*2)
		for _, v := range ring {
			flat = append(flat, v.Lon, v.Lat)
		}
		if ring[0] != ring[len(ring)-1] {
			flat = append(flat, ring[0].Lon, ring[0].Lat)
		}

		lr := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(lr); err != nil {
			zap.L().Debug("geoload: skipping malformed ring",
				zap.String("feature", b.ID),
				zap.Int("ring", i),
				zap.Error(err),
			)
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("geoload: skipping malformed polygon",
				zap.String("feature", b.ID),
				zap.Int("ring", i),
				zap.Error(err),
			)
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil, eris.Errorf("geoload: feature %s has no usable rings", b.ID)
	}

	data, err := ewkb.Marshal(mp, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrapf(err, "geoload: encode feature %s", b.ID)
	}
	return data, nil
}
