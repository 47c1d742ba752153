package db

import (
	"database/sql"
	"testing"

	"counsellor-matching/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAnswers(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want models.QuestionnaireAnswers
	}{
		{"all fields", `{"q1":"Anxiety","q2":"Stress","q3":"On-Campus"}`,
			models.QuestionnaireAnswers{Q1: "Anxiety", Q2: "Stress", Q3: "On-Campus"}},
		{"partial", `{"q3":"Off-Campus"}`, models.QuestionnaireAnswers{Q3: "Off-Campus"}},
		{"non string values ignored", `{"q1":3,"q2":["a"],"q3":null}`, models.QuestionnaireAnswers{}},
		{"unknown keys ignored", `{"q1":"Sleep","mood":"low"}`, models.QuestionnaireAnswers{Q1: "Sleep"}},
		{"malformed", `{"q1":`, models.QuestionnaireAnswers{}},
		{"not an object", `"Anxiety"`, models.QuestionnaireAnswers{}},
		{"empty", ``, models.QuestionnaireAnswers{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, decodeAnswers([]byte(tc.raw)))
		})
	}
}

func TestNullHelpers(t *testing.T) {
	assert.Nil(t, stringPtr(sql.NullString{}))
	s := stringPtr(sql.NullString{String: "On-Campus", Valid: true})
	require.NotNil(t, s)
	assert.Equal(t, "On-Campus", *s)

	assert.Nil(t, intPtr(sql.NullInt64{}))
	n := intPtr(sql.NullInt64{Int64: 7, Valid: true})
	require.NotNil(t, n)
	assert.Equal(t, 7, *n)

	assert.Nil(t, boolPtr(sql.NullBool{}))
	b := boolPtr(sql.NullBool{Bool: false, Valid: true})
	require.NotNil(t, b)
	assert.False(t, *b)

	assert.False(t, nullString("").Valid)
	assert.True(t, nullString("x").Valid)
	years := 3
	assert.Equal(t, sql.NullInt64{Int64: 3, Valid: true}, nullInt(&years))
	assert.False(t, nullInt(nil).Valid)
	assert.False(t, nullBool(nil).Valid)
	assert.False(t, nullStringPtr(nil).Valid)
}

type fakeRow struct {
	values []interface{}
}

func (f fakeRow) Scan(dest ...interface{}) error {
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = f.values[i].(string)
		case *float64:
			*p = f.values[i].(float64)
		case *sql.NullString:
			*p = f.values[i].(sql.NullString)
		case *sql.NullInt64:
			*p = f.values[i].(sql.NullInt64)
		case *sql.NullBool:
			*p = f.values[i].(sql.NullBool)
		}
	}
	return nil
}

func TestScanCounsellorKeepsNullsDistinct(t *testing.T) {
	row := fakeRow{values: []interface{}{
		"c-1",
		sql.NullString{},
		"Anxiety",
		sql.NullString{},
		450.0,
		sql.NullInt64{},
		sql.NullBool{Bool: false, Valid: true},
		sql.NullString{String: "Asha Rao", Valid: true},
	}}

	var c models.Counsellor
	var fullName sql.NullString
	require.NoError(t, scanCounsellor(row, &c, &fullName))

	assert.Equal(t, "c-1", c.ID)
	assert.Equal(t, "Anxiety", c.Specialization)
	assert.Nil(t, c.Affiliation)
	assert.Nil(t, c.ExperienceYears)
	require.NotNil(t, c.IsAvailable)
	assert.False(t, *c.IsAvailable)
	assert.Equal(t, 450.0, c.Fees)
	assert.Equal(t, "Asha Rao", fullName.String)
}
