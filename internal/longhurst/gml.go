package longhurst

import (
	"encoding/xml"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// LoadGML reads a MarineRegions GML province file (longhurst.xml) into a
// boundary store.
func LoadGML(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "longhurst: open gml %s", path)
	}
	defer func() { _ = f.Close() }()

	store, err := ParseGML(f)
	if err != nil {
		return nil, eris.Wrapf(err, "longhurst: parse gml %s", path)
	}
	return store, nil
}

// gmlFeature accumulates one MarineRegions:longhurst element while the
// decoder walks the document.
type gmlFeature struct {
	fid      string
	provCode string
	provName string
	bboxRaw  string // first gml:coordinates text seen anywhere in the feature
	ringRaw  []string
}

// ParseGML decodes MarineRegions GML from r. Per feature it extracts the
// fid attribute, provcode, provdescr, the declared bounding box (the first
// coordinate string of the feature, normally the gml:boundedBy box), and
// every coordinate ring under the_geom. Any missing field or non-numeric
// coordinate aborts the parse with ErrMalformedBoundary.
func ParseGML(r io.Reader) (*Store, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "longhurst: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	boundaries := make(map[string]ProvinceBoundary)
	var cur *gmlFeature
	inGeom := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(ErrMalformedBoundary, "read token: %v", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "longhurst":
				cur = &gmlFeature{}
				for _, attr := range t.Attr {
					if attr.Name.Local == "fid" {
						cur.fid = attr.Value
					}
				}
			case "the_geom":
				if cur != nil {
					inGeom = true
				}
			case "provcode":
				if cur == nil {
					continue
				}
				if err := dec.DecodeElement(&cur.provCode, &t); err != nil {
					return nil, eris.Wrapf(ErrMalformedBoundary, "feature %s: provcode: %v", cur.fid, err)
				}
			case "provdescr":
				if cur == nil {
					continue
				}
				if err := dec.DecodeElement(&cur.provName, &t); err != nil {
					return nil, eris.Wrapf(ErrMalformedBoundary, "feature %s: provdescr: %v", cur.fid, err)
				}
			case "coordinates":
				if cur == nil {
					continue
				}
				var raw string
				if err := dec.DecodeElement(&raw, &t); err != nil {
					return nil, eris.Wrapf(ErrMalformedBoundary, "feature %s: coordinates: %v", cur.fid, err)
				}
				if cur.bboxRaw == "" {
					cur.bboxRaw = raw
				}
				if inGeom {
					cur.ringRaw = append(cur.ringRaw, raw)
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "the_geom":
				inGeom = false
			case "longhurst":
				if cur == nil {
					continue
				}
				b, err := cur.boundary()
				if err != nil {
					return nil, err
				}
				if _, exists := boundaries[b.ID]; exists {
					return nil, eris.Wrapf(ErrMalformedBoundary, "duplicate feature id %s", b.ID)
				}
				boundaries[b.ID] = b
				cur = nil
			}
		}
	}

	return newStore(boundaries), nil
}

// boundary validates and converts an accumulated feature.
func (f *gmlFeature) boundary() (ProvinceBoundary, error) {
	var zero ProvinceBoundary

	if f.fid == "" {
		return zero, eris.Wrap(ErrMalformedBoundary, "feature without fid attribute")
	}
	code := strings.TrimSpace(f.provCode)
	name := strings.TrimSpace(f.provName)
	if code == "" {
		return zero, eris.Wrapf(ErrMalformedBoundary, "feature %s: missing provcode", f.fid)
	}
	if name == "" {
		return zero, eris.Wrapf(ErrMalformedBoundary, "feature %s: missing provdescr", f.fid)
	}
	if f.bboxRaw == "" {
		return zero, eris.Wrapf(ErrMalformedBoundary, "feature %s: no coordinates", f.fid)
	}

	corners, err := parseVertices(f.bboxRaw)
	if err != nil {
		return zero, eris.Wrapf(ErrMalformedBoundary, "feature %s: bounding box: %v", f.fid, err)
	}
	if len(corners) < 2 {
		return zero, eris.Wrapf(ErrMalformedBoundary, "feature %s: bounding box has %d pairs, need 2", f.fid, len(corners))
	}

	rings := make([][]Vertex, 0, len(f.ringRaw))
	for i, raw := range f.ringRaw {
		ring, err := parseVertices(raw)
		if err != nil {
			return zero, eris.Wrapf(ErrMalformedBoundary, "feature %s: ring %d: %v", f.fid, i, err)
		}
		rings = append(rings, ring)
	}

	return ProvinceBoundary{
		ID:       f.fid,
		ProvCode: code,
		ProvName: name,
		BBox: BBox{
			X1: corners[0].Lon, Y1: corners[0].Lat,
			X2: corners[1].Lon, Y2: corners[1].Lat,
		},
		Rings: rings,
	}, nil
}

// parseVertices splits a GML coordinate string into vertices. Pairs are
// whitespace-separated, components comma-separated within a pair.
func parseVertices(s string) ([]Vertex, error) {
	fields := strings.Fields(s)
	vertices := make([]Vertex, 0, len(fields))
	for _, pair := range fields {
		parts := strings.Split(pair, ",")
		if len(parts) != 2 {
			return nil, eris.Errorf("coordinate pair %q: want lon,lat", pair)
		}
		lon, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, eris.Errorf("longitude %q is not numeric", parts[0])
		}
		lat, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, eris.Errorf("latitude %q is not numeric", parts[1])
		}
		vertices = append(vertices, Vertex{Lon: lon, Lat: lat})
	}
	return vertices, nil
}
