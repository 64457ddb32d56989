package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/geofilter/internal/model"
)

const sample = `
ledger: /tmp/runs.db
in_place: true
pipelines:
  - name: buildings
    boundary: data/CR.geojson
    features: data/buildings.geojson
    predicate: intersects
  - name: landmarks
    boundary: data/CR.geojson
    features: data/leaf_landmarks.geojson
    backup: data/landmarks.orig.geojson
    predicate: contains-point
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geofilter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/runs.db", cfg.Ledger)
	assert.True(t, cfg.InPlace)
	require.Len(t, cfg.Pipelines, 2)
	assert.Equal(t, "landmarks", cfg.Pipelines[1].Name)
	assert.Equal(t, "data/landmarks.orig.geojson", cfg.Pipelines[1].Backup)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("pipelines: [\n"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("ledger: x\n"), 0644))
	_, err = Load(empty)
	assert.ErrorContains(t, err, "no pipelines configured")
}

func TestValidate(t *testing.T) {
	valid := Pipeline{Name: "a", Boundary: "b.geojson", Features: "f.geojson", Predicate: "intersects"}

	tests := []struct {
		name    string
		mutate  func(p *Pipeline)
		extra   []Pipeline
		wantErr string
	}{
		{name: "valid", mutate: func(p *Pipeline) {}},
		{name: "missing name", mutate: func(p *Pipeline) { p.Name = "" }, wantErr: "name is required"},
		{name: "missing boundary", mutate: func(p *Pipeline) { p.Boundary = "" }, wantErr: "boundary is required"},
		{name: "missing features", mutate: func(p *Pipeline) { p.Features = "" }, wantErr: "features is required"},
		{name: "bad predicate", mutate: func(p *Pipeline) { p.Predicate = "within" }, wantErr: "unknown predicate"},
		{name: "duplicate name", mutate: func(p *Pipeline) {}, extra: []Pipeline{valid}, wantErr: "duplicate name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			cfg := Config{Pipelines: append([]Pipeline{p}, tt.extra...)}

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	specs, err := cfg.Specs()
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, model.Intersects, specs[0].Predicate)
	assert.Equal(t, model.ContainsPoint, specs[1].Predicate)
	assert.Equal(t, specs[0].Boundary, specs[1].Boundary)
}

func TestSpecs_Selection(t *testing.T) {
	cfg := Default()

	specs, err := cfg.Specs("landmarks", "landmarks")
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "landmarks", specs[0].Name)
	assert.Equal(t, "data/leaf_landmarks.geojson", specs[0].Features)

	_, err = cfg.Specs("roads")
	assert.ErrorContains(t, err, `"roads" not found`)
}
