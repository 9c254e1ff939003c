package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, New("debug", "text").GetLevel())
	assert.Equal(t, logrus.WarnLevel, New(" WARN ", "text").GetLevel())
	assert.Equal(t, logrus.InfoLevel, New("chatty", "text").GetLevel())
}

func TestNewJSONFormat(t *testing.T) {
	logger := New("info", "JSON")
	var buf bytes.Buffer
	logger.SetOutput(&buf)

	logger.WithField("component", "bot").Info("started")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "bot", entry["component"])
	assert.Equal(t, "started", entry["msg"])
}
