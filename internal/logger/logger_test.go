package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	log := newWithOutput("debug", &buf)

	Component(log, "cart").WithField("session", "s1").Info("priced")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "priced", line["message"])
	assert.Equal(t, "info", line["severity"])
	assert.Equal(t, "cart", line["component"])
	assert.Equal(t, "s1", line["session"])
	assert.Contains(t, line, "timestamp")
}

func TestNew_Level(t *testing.T) {
	assert.Equal(t, logrus.WarnLevel, New("warn").Level)
	assert.Equal(t, logrus.InfoLevel, New("loud").Level)
}
