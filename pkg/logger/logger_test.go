package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn", nil)

	log.Info("booking id=%d created", 1)
	log.Warn("slot %s conflict", "09:00")
	log.Error("failed: %v", "boom")

	out := buf.String()
	assert.NotContains(t, out, "booking id=1 created")
	assert.Contains(t, out, "slot 09:00 conflict")
	assert.Contains(t, out, "failed: boom")
}

func TestParseLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "unknown", nil)

	log.Debug("hidden")
	log.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
