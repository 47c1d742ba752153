package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel(" Warning "))
	assert.Equal(t, ERROR, ParseLevel("ERROR"))
	assert.Equal(t, INFO, ParseLevel(""))
	assert.Equal(t, INFO, ParseLevel("verbose"))
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: WARN, Output: &buf})

	l.Info("ranked %d counsellors", 3)
	assert.Empty(t, buf.String())

	l.Warn("classifier unavailable: %s", "timeout")
	assert.Contains(t, buf.String(), "classifier unavailable: timeout")
	assert.Contains(t, buf.String(), "WARN")

	buf.Reset()
	l.SetLevel(DEBUG)
	l.Debug("roster size=%d", 12)
	assert.Contains(t, buf.String(), "roster size=12")
}

func TestWithFieldsAddsContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: INFO, Output: &buf, JSON: true})

	l.WithFields(map[string]interface{}{"student_id": "s-1"}).Info("suggestions ready")
	assert.Contains(t, buf.String(), `"student_id":"s-1"`)
	assert.Contains(t, buf.String(), "suggestions ready")
}
