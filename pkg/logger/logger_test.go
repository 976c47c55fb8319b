package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONOutsideDevelopment(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "info", Output: &buf})

	l.Component("assets").WithRequestID("req-1").Info().Int64("tag", 100).Msg("patrimônio criado")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "assets", line["component"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, float64(100), line["tag"])
	assert.Equal(t, "info", line["level"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "warn", Output: &buf})

	l.Info().Msg("descartado")
	assert.Zero(t, buf.Len())

	l.Warn().Msg("registrado")
	assert.NotZero(t, buf.Len())
}

func TestParseLevel_Fallback(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("verboso"))
	assert.Equal(t, zerolog.DebugLevel, parseLevel(" DEBUG "))
}
