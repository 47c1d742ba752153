package models

import (
	"strings"
	"time"
)

// DefaultSpecialization is shown when a counsellor has not filled in one.
const DefaultSpecialization = "Mental Health Specialist"

// Counsellor is a counsellor's public profile as used for matching.
type Counsellor struct {
	ID              string  `json:"id"`
	ProfileID       string  `json:"profile_id,omitempty"`
	Specialization  string  `json:"specialization"`
	Affiliation     *string `json:"affiliation"`
	Fees            float64 `json:"fees"`
	ExperienceYears *int    `json:"experience_years,omitempty"`
	IsAvailable     *bool   `json:"is_available,omitempty"`
	FullName        string  `json:"-"`
	Email           string  `json:"email,omitempty"`
	Name            string  `json:"name"`
}

// DisplayName picks the full name, then "Dr. <email local part>", then a
// generic label.
func DisplayName(fullName, email string) string {
	if fullName != "" {
		return fullName
	}
	if email != "" {
		local, _, _ := strings.Cut(email, "@")
		return "Dr. " + local
	}
	return "Counsellor"
}

// Experience returns experience in years, treating an unknown value as 0.
func (c *Counsellor) Experience() int {
	if c.ExperienceYears == nil {
		return 0
	}
	return *c.ExperienceYears
}

// Available reports whether the counsellor is explicitly marked available.
func (c *Counsellor) Available() bool {
	return c.IsAvailable != nil && *c.IsAvailable
}

// AffiliationText returns the affiliation or "" when unset.
func (c *Counsellor) AffiliationText() string {
	if c.Affiliation == nil {
		return ""
	}
	return *c.Affiliation
}

// RankedCounsellor is a counsellor with the score computed for one student.
type RankedCounsellor struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Specialization  string  `json:"specialization"`
	Affiliation     *string `json:"affiliation"`
	LocationMatch   bool    `json:"location_match"`
	RankingScore    float64 `json:"ranking_score"`
	Fees            float64 `json:"fees"`
	ExperienceYears *int    `json:"experience_years"`
	IsAvailable     *bool   `json:"is_available,omitempty"`
}

// Experience returns experience in years, treating an unknown value as 0.
func (r *RankedCounsellor) Experience() int {
	if r.ExperienceYears == nil {
		return 0
	}
	return *r.ExperienceYears
}

// CounsellorImport is one row of a roster spreadsheet.
type CounsellorImport struct {
	FullName        string
	Email           string
	Specialization  string
	Affiliation     string
	Fees            float64
	ExperienceYears *int
	IsAvailable     *bool
}

// ImportResult counts what a roster import did.
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// Profile mirrors the profiles table.
type Profile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
