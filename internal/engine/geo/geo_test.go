package geo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const squareBoundary = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"name": "CR"},
      "geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]]]}
    },
    {
      "type": "Feature",
      "properties": {"name": "ignored"},
      "geometry": {"type": "Polygon", "coordinates": [[[50,50],[60,50],[60,60],[50,50]]]}
    }
  ]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func loadSquare(t *testing.T) string {
	t.Helper()
	return writeFile(t, t.TempDir(), "boundary.geojson", squareBoundary)
}
