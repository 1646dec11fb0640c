package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, WarnLevel, ParseLevel("warn"))
	assert.Equal(t, InfoLevel, ParseLevel(""))
	assert.Equal(t, InfoLevel, ParseLevel("verbose"))
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: InfoLevel, Output: &buf}).
		WithFields(map[string]interface{}{"component": "casebook"})

	l.Debug("row detail", "row", 3)
	l.Info("case added", "grade", 2)

	out := buf.String()
	assert.NotContains(t, out, "row detail")
	assert.Contains(t, out, "case added")
	assert.Contains(t, out, "casebook")

	buf.Reset()
	debug := NewLogger(&Config{Level: DebugLevel, Output: &buf})
	debug.Debug("row detail", "row", 3)
	assert.Contains(t, buf.String(), "row detail")
}
