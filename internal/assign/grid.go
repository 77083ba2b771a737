package assign

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ocean-chem/longhurst-cli/internal/model"
)

// ErrBadResolution reports a grid resolution string that is not
// "<latstep>x<lonstep>" with positive numeric steps.
var ErrBadResolution = eris.New("assign: bad grid resolution")

// Grid is a regular global lat/lon grid described by its cell centers.
// Latitude is the outer axis so that Points walks row-major from the
// south pole, one latitude band at a time.
type Grid struct {
	Resolution string
	Lats       []float64
	Lons       []float64
}

// BuildGrid parses a resolution like "4x5", "2x2.5", "1x1" or
// "0.125x0.125" (latitude step first, then longitude step, degrees) and
// returns the global grid of cell centers: latitudes from -90+lat/2
// northward, longitudes from -180+lon/2 eastward.
func BuildGrid(resolution string) (*Grid, error) {
	parts := strings.SplitN(strings.TrimSpace(resolution), "x", 2)
	if len(parts) != 2 {
		return nil, eris.Wrapf(ErrBadResolution, "parse %q", resolution)
	}
	latStep, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, eris.Wrapf(ErrBadResolution, "parse latitude step %q", parts[0])
	}
	lonStep, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, eris.Wrapf(ErrBadResolution, "parse longitude step %q", parts[1])
	}
	if latStep <= 0 || lonStep <= 0 {
		return nil, eris.Wrapf(ErrBadResolution, "non-positive step in %q", resolution)
	}

	g := &Grid{Resolution: resolution}
	for lat := -90 + latStep/2; lat < 90; lat += latStep {
		g.Lats = append(g.Lats, lat)
	}
	for lon := -180 + lonStep/2; lon < 180; lon += lonStep {
		g.Lons = append(g.Lons, lon)
	}
	return g, nil
}

// Points flattens the grid into observations, latitude-major: all
// longitudes of the southernmost band first, then the next band, and so
// on. Assignment indexes therefore map back to the grid as
// i = latIdx*len(Lons) + lonIdx.
func (g *Grid) Points() []model.Observation {
	obs := make([]model.Observation, 0, len(g.Lats)*len(g.Lons))
	for _, lat := range g.Lats {
		for _, lon := range g.Lons {
			obs = append(obs, model.Observation{Lat: lat, Lon: lon})
		}
	}
	return obs
}
