package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger-api/pkg/logger"
)

func TestNew_JSONConComponente(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Output: &buf}).Named("period")

	log.Debug().Msg("descartado")
	log.Info().Str("period_id", "p-1").Msg("periodo abierto")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "period", entry["component"])
	assert.Equal(t, "stockledger", entry["service"])
	assert.Equal(t, "p-1", entry["period_id"])
	assert.Equal(t, "periodo abierto", entry["message"])
}

func TestNew_NivelDesconocidoUsaInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "verbose", Output: &buf})

	log.Debug().Msg("no")
	assert.Zero(t, buf.Len())
	log.Warn().Msg("sí")
	assert.NotZero(t, buf.Len())
}
