package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/geofilter/internal/engine/storage"
	"github.com/rendis/geofilter/internal/model"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 0, exitCode(errHelp))
	assert.Equal(t, 2, exitCode(errUsage))
	assert.Equal(t, 2, exitCode(errors.Join(errUsage, errors.New("pipeline \"x\" not found"))))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
}

func TestParseArgs(t *testing.T) {
	var opts historyOptions
	assert.ErrorIs(t, parseArgs(&opts, "history", []string{"--help"}), errHelp)
	assert.ErrorIs(t, parseArgs(&opts, "history", []string{"--bogus"}), errUsage)
	assert.ErrorIs(t, parseArgs(&opts, "history", []string{"extra"}), errUsage)

	require.NoError(t, parseArgs(&opts, "history", []string{"-n", "5", "-i"}))
	assert.Equal(t, 5, opts.Limit)
	assert.True(t, opts.Interactive)
}

func TestLoadConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := loadConfig(defaultConfigFile)
	require.NoError(t, err)
	assert.Len(t, cfg.Pipelines, 2)

	_, err = loadConfig("custom.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(defaultConfigFile, []byte(`
pipelines:
  - name: only
    boundary: b.geojson
    features: f.geojson
    predicate: contains
`), 0644))
	cfg, err = loadConfig(defaultConfigFile)
	require.NoError(t, err)
	require.Len(t, cfg.Pipelines, 1)
	assert.Equal(t, "only", cfg.Pipelines[0].Name)
}

func TestRunFilter(t *testing.T) {
	dir := t.TempDir()
	boundary := filepath.Join(dir, "CR.geojson")
	features := filepath.Join(dir, "landmarks.geojson")
	ledger := filepath.Join(dir, "runs.db")

	require.NoError(t, os.WriteFile(boundary, []byte(`{"type": "FeatureCollection", "features": [
  {"type": "Feature", "properties": {}, "geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]]]}}
]}`), 0644))
	require.NoError(t, os.WriteFile(features, []byte(`{"type": "FeatureCollection", "features": [
  {"type": "Feature", "properties": {"n": 1}, "geometry": {"type": "Point", "coordinates": [5,5]}},
  {"type": "Feature", "properties": {"n": 2}, "geometry": {"type": "Point", "coordinates": [50,5]}}
]}`), 0644))

	err := runFilter([]string{"-b", boundary, "-f", features, "-k", "point-in-polygon", "-n", "test", "-l", ledger, "--log-level", "error"})
	require.NoError(t, err)

	_, err = os.Stat(storage.BackupPath(features))
	assert.NoError(t, err)

	store, err := storage.NewStore(ledger)
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "test", runs[0].Pipeline)
	assert.Equal(t, 1, runs[0].Kept)
	assert.Equal(t, 2, runs[0].Total)
}

func TestRunFilter_PredicateAliases(t *testing.T) {
	for _, k := range []string{"intersects", "intersect", "contains-point", "contains", "point-in-polygon", "Contains"} {
		var opts filterOptions
		require.NoError(t, parseArgs(&opts, "filter", []string{"-b", "b.geojson", "-f", "f.geojson", "-k", k}), k)
		assert.Equal(t, k, opts.Predicate)
	}

	err := runFilter([]string{"-b", "b.geojson", "-f", "f.geojson", "-k", "within", "--no-ledger", "--log-level", "error"})
	assert.ErrorIs(t, err, errUsage)
}

func TestRunFilter_MissingRequired(t *testing.T) {
	err := runFilter([]string{"-b", "boundary.geojson"})
	assert.ErrorIs(t, err, errUsage)
}

func TestHistoryTable(t *testing.T) {
	assert.Contains(t, historyTable(nil), "No runs recorded")

	out := historyTable([]model.Run{
		{Pipeline: "buildings", Predicate: "intersects", Total: 10, Kept: 7, Status: model.RunOK, StartedAt: time.Now(), Duration: 1200 * time.Millisecond},
		{Pipeline: "landmarks", Predicate: "contains-point", Status: model.RunFailed, StartedAt: time.Now()},
	})
	assert.Contains(t, out, "PIPELINE")
	assert.Contains(t, out, "buildings")
	assert.Contains(t, out, "7/10")
	assert.Contains(t, out, "1.2s")
	assert.Contains(t, out, "failed")
}
