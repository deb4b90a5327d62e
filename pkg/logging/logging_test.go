package logging

import (
	"bytes"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  log.Level
	}{
		{name: "info", level: "INFO", want: log.InfoLevel},
		{name: "warning", level: "WARNING", want: log.WarnLevel},
		{name: "critical", level: "CRITICAL", want: log.FatalLevel},
		{name: "notset", level: "NOTSET", want: log.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.level, "text", &bytes.Buffer{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New("info", "text", nil)
	assert.Error(t, err, "un-normalized level")

	_, err = New("INFO", "xml", nil)
	assert.Error(t, err, "unknown format")
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("DEBUG", "text", &buf)
	require.NoError(t, err)

	Component(logger, "repository").Debug("dropped document")

	out := buf.String()
	assert.Contains(t, out, "component=repository")
	assert.Contains(t, out, "level=debug")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("INFO", "json", &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
}
