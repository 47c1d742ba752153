package utils

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUUID(t *testing.T) {
	assert.NoError(t, ValidateUUID("student_id", "7c9e6679-7425-40de-944b-e07fc1f90ae7"))
	assert.EqualError(t, ValidateUUID("student_id", ""), "student_id is required")
	assert.EqualError(t, ValidateUUID("student_id", "student-1"), "student_id must be a valid UUID")
}

func TestValidateOption(t *testing.T) {
	v, err := ValidateOption("q1", "anxiety", Q1Options)
	require.NoError(t, err)
	assert.Equal(t, "Anxiety", v)

	v, err = ValidateOption("q1", "", Q1Options)
	require.NoError(t, err)
	assert.Empty(t, v)

	_, err = ValidateOption("q1", "Homesickness", Q1Options)
	assert.Error(t, err)
}

func TestValidateMaxLengthCountsRunes(t *testing.T) {
	assert.NoError(t, ValidateMaxLength("q2", strings.Repeat("é", 100), 100))
	assert.Error(t, ValidateMaxLength("q2", strings.Repeat("a", 101), 100))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("appointment_date", "2026-03-09")
	require.NoError(t, err)
	assert.Equal(t, 9, d.Day())

	_, err = ParseDate("appointment_date", "09/03/2026")
	assert.Error(t, err)
	_, err = ParseDate("appointment_date", "")
	assert.Error(t, err)
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("asha.rao@uni.example"))
	assert.Error(t, ValidateEmail("asha"))
	assert.Error(t, ValidateEmail(""))
}

func TestParseIntParam(t *testing.T) {
	r := httptest.NewRequest("GET", "/counsellors/suggested?limit=7&bad=x", nil)

	n, err := ParseIntParam(r, "limit", 5)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = ParseIntParam(r, "missing", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = ParseIntParam(r, "bad", 5)
	assert.Error(t, err)
}

func TestDecodeJSONRequest(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"text":"hello"}`))
	var body struct{ Text string }
	require.NoError(t, DecodeJSONRequest(r, &body))
	assert.Equal(t, "hello", body.Text)

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{`))
	assert.Error(t, DecodeJSONRequest(r, &body))
}
