package services

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSuggestionReportWritesPDF(t *testing.T) {
	dir := t.TempDir()
	s := &Suggestions{Strategy: "primary", Counsellors: ranked("a", "b")}

	path, err := RenderSuggestionReport(dir, "Zoë", s, time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestRenderSuggestionReportWithoutCounsellors(t *testing.T) {
	path, err := RenderSuggestionReport(t.TempDir(), "Student", &Suggestions{}, time.Now())
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
