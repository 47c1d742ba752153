package utils

// Questionnaire limits
const (
	MaxAnswerLength   = 100
	MaxFreeTextLength = 2000
)

// Q1Options are the primary concern categories offered to students.
var Q1Options = []string{"Anxiety", "Depression", "Relationships", "Academics", "Sleep", "Other"}

// Q3Options are the preferences offered for Q3. Other values up to
// MaxAnswerLength are accepted as free text.
var Q3Options = []string{"On-Campus", "Off-Campus", "Budget", "Experience"}

// Roster import headers recognised in spreadsheets, by field.
var RosterHeaders = map[string][]string{
	"name":           {"name", "full name", "counsellor", "counsellor name", "counselor name"},
	"email":          {"email", "e-mail", "email address"},
	"specialization": {"specialization", "specialisation", "speciality", "specialty", "focus"},
	"affiliation":    {"affiliation", "location", "campus"},
	"fees":           {"fees", "fee", "session fee", "price"},
	"experience":     {"experience", "experience years", "experience_years", "years of experience"},
	"available":      {"available", "is_available", "availability"},
}
