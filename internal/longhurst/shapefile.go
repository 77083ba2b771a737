package longhurst

import (
	"fmt"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// LoadShapefile reads the longhurst_v4_2010 shapefile into a boundary
// store. Feature IDs are synthesized from record order as "longhurst.N",
// matching the GML export's fid convention. Unlike the GML path, the
// bounding box here is the shape's true extent and rings arrive closed,
// both guaranteed by the shapefile format.
func LoadShapefile(path string) (*Store, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "longhurst: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	codeIdx := fieldIndex(reader, "ProvCode")
	nameIdx := fieldIndex(reader, "ProvDescr")
	if codeIdx < 0 || nameIdx < 0 {
		return nil, eris.Wrapf(ErrMalformedBoundary, "%s: required fields ProvCode, ProvDescr not found", path)
	}

	boundaries := make(map[string]ProvinceBoundary)
	var skipped int
	for reader.Next() {
		n, shape := reader.Shape()

		code := strings.TrimSpace(reader.Attribute(codeIdx))
		name := strings.TrimSpace(reader.Attribute(nameIdx))
		if code == "" || name == "" {
			return nil, eris.Wrapf(ErrMalformedBoundary, "%s: record %d: missing ProvCode or ProvDescr", path, n)
		}

		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			skipped++
			continue
		}

		boundaries[fmt.Sprintf("longhurst.%d", n)] = ProvinceBoundary{
			ID:       fmt.Sprintf("longhurst.%d", n),
			ProvCode: code,
			ProvName: name,
			BBox: BBox{
				X1: poly.Box.MinX, Y1: poly.Box.MinY,
				X2: poly.Box.MaxX, Y2: poly.Box.MaxY,
			},
			Rings: polygonRings(poly),
		}
	}

	if skipped > 0 {
		zap.L().Debug("longhurst: skipped non-polygon shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}

	return newStore(boundaries), nil
}

// polygonRings splits a shapefile polygon's point array into its parts.
func polygonRings(p *shp.Polygon) [][]Vertex {
	rings := make([][]Vertex, 0, p.NumParts)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		ring := make([]Vertex, 0, end-start)
		for j := start; j < end; j++ {
			ring = append(ring, Vertex{Lon: p.Points[j].X, Lat: p.Points[j].Y})
		}
		rings = append(rings, ring)
	}
	return rings
}

// fieldIndex returns the index of a named attribute field, or -1.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}
