package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEBuildsError(t *testing.T) {
	cause := New("connection refused")
	err := E(Op("db.ListRoster"), DataUnavailable, "counsellor roster query failed", cause)

	assert.Equal(t, "db.ListRoster: counsellor roster query failed: connection refused", err.Error())
	assert.Equal(t, DataUnavailable, KindOf(err))
	assert.True(t, Is(err, cause))
}

func TestKindSurvivesWrapping(t *testing.T) {
	base := NewDataUnavailableError("roster", New("timeout"))
	wrapped := fmt.Errorf("ranking: %w", base)

	assert.True(t, IsKind(wrapped, DataUnavailable))
	assert.True(t, Is(wrapped, E(DataUnavailable)))
	assert.False(t, Is(wrapped, E(NotFound)))
}

func TestEInheritsWrappedKind(t *testing.T) {
	inner := NewNotFoundError("booking not found")
	outer := E(Op("bookings.Confirm"), inner)

	assert.Equal(t, NotFound, KindOf(outer))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Other, KindOf(New("boom")))
	assert.False(t, IsKind(nil, Other))
}
