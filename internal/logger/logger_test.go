package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("debug", "json", &buf)

	log.WithField("user_id", "u1").Debug("answer recorded")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "answer recorded", entry["msg"])
	assert.Equal(t, "u1", entry["user_id"])
	assert.Equal(t, "debug", entry["level"])
}

func TestNewWithOutput_TextAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("warn", "text", &buf)

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_UnknownLevel(t *testing.T) {
	assert.Equal(t, logrus.InfoLevel, New("loud", "json").GetLevel())
}
