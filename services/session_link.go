package services

import (
	"strings"

	"github.com/google/uuid"
)

// SessionLinkGenerator builds meeting links of the form
// <base>/abc-defg-hij for confirmed bookings.
type SessionLinkGenerator struct {
	base string
}

func NewSessionLinkGenerator(base string) *SessionLinkGenerator {
	return &SessionLinkGenerator{base: strings.TrimRight(base, "/")}
}

// Generate returns a new unique link.
func (g *SessionLinkGenerator) Generate() string {
	return g.base + "/" + meetingCode(uuid.New())
}

// meetingCode maps the first ten bytes of id onto lowercase letters.
func meetingCode(id uuid.UUID) string {
	letters := make([]byte, 10)
	for i := range letters {
		letters[i] = 'a' + id[i]%26
	}
	return string(letters[:3]) + "-" + string(letters[3:7]) + "-" + string(letters[7:])
}
