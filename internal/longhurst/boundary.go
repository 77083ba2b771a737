// Package longhurst assigns geographic coordinates to Longhurst
// biogeographic provinces. Boundaries come from the MarineRegions
// longhurst_v4_2010 dataset, either as the GML export (longhurst.xml)
// or as the shapefile; classification uses a bounding-box pre-filter
// followed by a crossings test against each candidate's polygon rings.
package longhurst

import (
	"sort"

	"github.com/rotisserie/eris"
)

// ErrMalformedBoundary indicates the boundary source is missing required
// fields or contains non-numeric coordinate text. Load functions wrap it
// with feature context; the whole load aborts, leaving no partial store.
var ErrMalformedBoundary = eris.New("longhurst: malformed boundary source")

// Vertex is a single ring vertex in degrees.
type Vertex struct {
	Lon float64
	Lat float64
}

// BBox is the axis-aligned bounding box a boundary source declares for a
// feature. Corners are stored exactly as declared, without normalization
// or recomputation from the ring: if the declared box does not enclose
// the full ring, classification inherits that error from the upstream
// data rather than correcting it.
type BBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Contains reports whether the point lies within the box, bounds inclusive.
func (b BBox) Contains(lon, lat float64) bool {
	return lat >= b.Y1 && lat <= b.Y2 && lon >= b.X1 && lon <= b.X2
}

// ProvinceBoundary is one province's boundary record. ID is the source's
// own per-feature key (e.g. "longhurst.17") and is distinct from the
// semantic four-letter ProvCode. Rings hold the vertex sequences exactly
// as stored in the source; rings are not implicitly closed.
type ProvinceBoundary struct {
	ID       string
	ProvCode string
	ProvName string
	BBox     BBox
	Rings    [][]Vertex
}

// Store is an immutable set of province boundaries keyed by feature ID.
// It is built once by LoadGML or LoadShapefile and is read-only after
// that, so any number of classifications may run against it concurrently.
type Store struct {
	boundaries map[string]ProvinceBoundary
	ids        []string
}

// NewStore builds a store from explicit boundary records. Feature IDs
// must be unique; load functions enforce this for file sources, and the
// same rule applies to in-memory construction.
func NewStore(boundaries []ProvinceBoundary) (*Store, error) {
	m := make(map[string]ProvinceBoundary, len(boundaries))
	for _, b := range boundaries {
		if _, dup := m[b.ID]; dup {
			return nil, eris.Wrapf(ErrMalformedBoundary, "duplicate feature id %q", b.ID)
		}
		m[b.ID] = b
	}
	return newStore(m), nil
}

func newStore(boundaries map[string]ProvinceBoundary) *Store {
	ids := make([]string, 0, len(boundaries))
	for id := range boundaries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return &Store{boundaries: boundaries, ids: ids}
}

// Len returns the number of loaded boundaries.
func (s *Store) Len() int {
	return len(s.boundaries)
}

// Get returns the boundary for a feature ID.
func (s *Store) Get(id string) (ProvinceBoundary, bool) {
	b, ok := s.boundaries[id]
	return b, ok
}

// IDs returns all feature IDs in sorted order.
func (s *Store) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Each calls fn for every boundary in sorted feature-ID order.
func (s *Store) Each(fn func(ProvinceBoundary)) {
	for _, id := range s.ids {
		fn(s.boundaries[id])
	}
}
