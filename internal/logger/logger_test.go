package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWriter_JSON(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	Logger{Level: "warn", Format: "json"}.SetupWriter(&buf)

	log.Info().Msg("hidden")
	log.Warn().Str("pipeline", "buildings").Msg("Skipping feature")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "buildings", entry["pipeline"])
	assert.Equal(t, "Skipping feature", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestSetupWriter_Text(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	Logger{Level: "bogus", NoColor: true}.SetupWriter(&buf)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	log.Info().Int("kept", 3).Msg("Features filtered")
	assert.Contains(t, buf.String(), "Features filtered")
	assert.Contains(t, buf.String(), "kept=3")
	assert.NotContains(t, buf.String(), "\x1b[")
}
