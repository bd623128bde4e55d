package logger_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-series/pkg/logger"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if l == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &m))
		out = append(out, m)
	}
	return out
}

func TestFromWriter_FiltraPorNivel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.FromWriter(&buf, "warn")

	log.Info().Msg("no sale")
	log.Warn().Str("product_id", "p1").Msg("stock negativo")

	got := lines(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "warn", got[0]["level"])
	assert.Equal(t, "p1", got[0]["product_id"])
}

func TestFromWriter_NivelDesconocidoUsaInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.FromWriter(&buf, "ruidoso")

	log.Debug().Msg("no sale")
	log.Info().Msg("sale")

	assert.Len(t, lines(t, &buf), 1)
}

func TestComponent_AgregaCampo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.FromWriter(&buf, "debug").Component("conciliacion")

	log.Debug().Msg("plan calculado")

	got := lines(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "conciliacion", got[0]["component"])
}
