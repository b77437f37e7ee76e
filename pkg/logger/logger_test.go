package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")

	log.Info("dropped")
	log.With("room_id", "personal_Mina_Dojin").Warn("Broadcast skipped", "conn_id", "c1")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	require.Equal(t, "Broadcast skipped", entry["msg"])
	require.Equal(t, "personal_Mina_Dojin", entry["room_id"])
	require.Equal(t, "c1", entry["conn_id"])
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, "DEBUG", parseLevel("debug").String())
	require.Equal(t, "WARN", parseLevel("WARNING").String())
	require.Equal(t, "INFO", parseLevel("nonsense").String())
}
