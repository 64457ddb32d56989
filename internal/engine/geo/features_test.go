package geo

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/geofilter/internal/model"
)

func TestDecodeFeatures_Format(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", `{"features": [`},
		{"not an object", `[1, 2, 3]`},
		{"no features key", `{"type": "FeatureCollection"}`},
		{"null features", `{"type": "FeatureCollection", "features": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFeatures("in.geojson", []byte(tt.content))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestLoadFeatures(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "points.geojson", `{"type": "FeatureCollection", "features": [
    {"type": "Feature", "properties": {"name": "a"}, "geometry": {"type": "Point", "coordinates": [1,2]}}
  ]}`)

	c, err := LoadFeatures(path)
	require.NoError(t, err)
	require.Len(t, c.Features, 1)
	assert.Equal(t, orb.Point{1, 2}, c.Features[0].Geometry)
	assert.Equal(t, 0, c.Features[0].Index)

	_, err = LoadFeatures(filepath.Join(dir, "missing.geojson"))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestEncode_PreservesProperties(t *testing.T) {
	src := `{"type": "FeatureCollection", "features": [
    {"type": "Feature", "properties": {"name": "Ñandú", "height": 12.50, "tags": {"a": [1, 2]}}, "geometry": {"type": "Point", "coordinates": [1,2]}}
  ]}`
	c, err := DecodeFeatures("in.geojson", []byte(src))
	require.NoError(t, err)

	out, err := Encode(c)
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, "{\n  \"type\": \"FeatureCollection\",\n  \"features\": [\n    {\n"))
	assert.True(t, strings.HasSuffix(s, "\n}\n"))
	assert.Contains(t, s, `"name": "Ñandú"`)
	assert.Contains(t, s, `"height": 12.50`)

	again, err := DecodeFeatures("out.geojson", out)
	require.NoError(t, err)
	require.Len(t, again.Features, 1)
	assert.Equal(t, c.Features[0].Properties, again.Features[0].Properties)
}

func TestEncode_Empty(t *testing.T) {
	out, err := Encode(model.Collection{})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"type\": \"FeatureCollection\",\n  \"features\": []\n}\n", string(out))
}

func TestEncode_WithoutRaw(t *testing.T) {
	c := model.Collection{Features: []model.Feature{{
		Geometry:   orb.Point{3, 4},
		Properties: geojson.Properties{"name": "built"},
	}}}

	out, err := Encode(c)
	require.NoError(t, err)

	again, err := DecodeFeatures("out.geojson", out)
	require.NoError(t, err)
	require.Len(t, again.Features, 1)
	assert.Equal(t, orb.Point{3, 4}, again.Features[0].Geometry)
	assert.Equal(t, "built", again.Features[0].Properties.MustString("name"))
}
