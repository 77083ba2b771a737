package longhurst

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestShapefile writes a minimal two-province shapefile in the
// longhurst_v4_2010 attribute layout.
func writeTestShapefile(t *testing.T, path string) {
	t.Helper()

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)

	require.NoError(t, w.SetFields([]shp.Field{
		shp.StringField("ProvCode", 10),
		shp.StringField("ProvDescr", 80),
	}))

	provinces := []struct {
		code  string
		descr string
		ring  [][]shp.Point
	}{
		{"BPLR", "BorealPolarProvince(POLR)", [][]shp.Point{
			{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 0}},
		}},
		{"ARCT", "AtlanticArcticProvince", [][]shp.Point{
			{{X: 20, Y: 20}, {X: 20, Y: 30}, {X: 30, Y: 30}, {X: 30, Y: 20}, {X: 20, Y: 20}},
		}},
	}
	for i, p := range provinces {
		poly := (*shp.Polygon)(shp.NewPolyLine(p.ring))
		w.Write(poly)
		// Real DBFs space-pad string attributes to the declared field width;
		// go-shp's writer NUL-pads instead, so pad here to match production data.
		require.NoError(t, w.WriteAttribute(i, 0, fmt.Sprintf("%-10s", p.code)))
		require.NoError(t, w.WriteAttribute(i, 1, fmt.Sprintf("%-80s", p.descr)))
	}
	w.Close()

	// go-shp v0.1.1's Create writes the DBF sidecar as "<base>dbf" (no dot)
	// while Open reads "<base>.dbf"; rename so the reader finds it.
	base := strings.TrimSuffix(path, ".shp")
	require.NoError(t, os.Rename(base+"dbf", base+".dbf"))
}

func TestLoadShapefile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "longhurst_v4.shp")
	writeTestShapefile(t, path)

	store, err := LoadShapefile(path)
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	bplr, ok := store.Get("longhurst.0")
	require.True(t, ok)
	assert.Equal(t, "BPLR", bplr.ProvCode)
	assert.Equal(t, "BorealPolarProvince(POLR)", bplr.ProvName)
	// Shapefile bounding boxes are the true shape extent.
	assert.Equal(t, BBox{X1: 0, Y1: 0, X2: 10, Y2: 10}, bplr.BBox)
	require.Len(t, bplr.Rings, 1)
	assert.Len(t, bplr.Rings[0], 5)

	arct, ok := store.Get("longhurst.1")
	require.True(t, ok)
	assert.Equal(t, "ARCT", arct.ProvCode)
}

func TestLoadShapefile_ClassifiesEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "longhurst_v4.shp")
	writeTestShapefile(t, path)

	store, err := LoadShapefile(path)
	require.NoError(t, err)

	c := NewClassifier(store, MarineRegions())

	res, err := c.Classify(5, 5)
	require.NoError(t, err)
	assert.Equal(t, OutcomeMatched, res.Outcome)
	assert.Equal(t, "BPLR", res.Code)
	assert.Equal(t, 0, res.Num)

	res, err = c.Classify(25, 25)
	require.NoError(t, err)
	assert.Equal(t, "ARCT", res.Code)

	res, err = c.Classify(-60, -60)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoMatch, res.Outcome)
}

func TestLoadShapefile_MissingFile(t *testing.T) {
	_, err := LoadShapefile(filepath.Join(t.TempDir(), "nope.shp"))
	require.Error(t, err)
}

func TestLoadShapefile_MissingAttributes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.shp")

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{shp.StringField("Unrelated", 10)}))
	poly := (*shp.Polygon)(shp.NewPolyLine([][]shp.Point{
		{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 0, Y: 0}},
	}))
	w.Write(poly)
	require.NoError(t, w.WriteAttribute(0, 0, "x"))
	w.Close()

	_, err = LoadShapefile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedBoundary)
}
