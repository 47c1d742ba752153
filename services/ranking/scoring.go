// Package ranking orders counsellors for a student from their latest
// questionnaire answers.
//
// Scores are weighted sums of case-insensitive substring matches between the
// answers and a counsellor's specialization text, plus a campus location bonus
// and small experience/fee adjustments. The weights and thresholds are fixed
// tuning constants; changing them changes which counsellors students see.
package ranking

import (
	"math"
	"sort"
	"strings"

	"counsellor-matching/models"
)

// Weights are the per-answer contributions to the specialization score.
type Weights struct {
	Q1    float64
	Q2    float64
	Q3    float64
	Label float64
}

var (
	// PrimaryWeights are used by the Engine.
	PrimaryWeights = Weights{Q1: 5, Q2: 3, Q3: 2, Label: 4}
	// FallbackWeights are used by the degraded Fallback strategy.
	FallbackWeights = Weights{Q1: 3, Q2: 2, Q3: 2, Label: 4}
)

const (
	locationBonus = 2.0

	seniorExperienceYears = 5
	experienceBonus       = 0.5
	highFeeThreshold      = 600.0
	highFeePenalty        = 0.25

	fallbackAvailableBonus  = 1.0
	fallbackExperienceBonus = 1.0
	fallbackFeeThreshold    = 500.0
	fallbackFeePenalty      = 0.5
)

// SpecializationScore adds the weight of every non-empty answer (and the
// classified label) that occurs in the specialization text, ignoring case.
func SpecializationScore(specialization string, answers models.QuestionnaireAnswers, label string, w Weights) float64 {
	spec := strings.ToLower(specialization)
	score := 0.0
	addIfContains := func(text string, weight float64) {
		if text == "" {
			return
		}
		if strings.Contains(spec, strings.ToLower(text)) {
			score += weight
		}
	}
	addIfContains(answers.Q1, w.Q1)
	addIfContains(answers.Q2, w.Q2)
	addIfContains(answers.Q3, w.Q3)
	addIfContains(label, w.Label)
	return score
}

// LocationScore compares the campus preference in q3 with the counsellor's
// affiliation. The on- and off-campus rules are checked independently.
func LocationScore(affiliation, q3 string) (float64, bool) {
	aff := strings.ToLower(affiliation)
	pref := strings.ToLower(q3)
	score := 0.0
	match := false
	if strings.Contains(pref, "on-campus") && strings.Contains(aff, "on") {
		score += locationBonus
		match = true
	}
	if strings.Contains(pref, "off-campus") && strings.Contains(aff, "off") {
		score += locationBonus
		match = true
	}
	return score, match
}

// SmallSignals is the experience bonus minus the high-fee penalty.
// Unknown experience counts as zero years.
func SmallSignals(fees float64, experienceYears *int) float64 {
	s := 0.0
	if experienceYears != nil && *experienceYears >= seniorExperienceYears {
		s += experienceBonus
	}
	if fees > highFeeThreshold {
		s -= highFeePenalty
	}
	return s
}

// FallbackSignals are the availability, experience and fee adjustments used
// by the fallback scorer.
func FallbackSignals(c *models.Counsellor) float64 {
	s := 0.0
	if c.Available() {
		s += fallbackAvailableBonus
	}
	if c.Experience() >= seniorExperienceYears {
		s += fallbackExperienceBonus
	}
	if c.Fees > fallbackFeeThreshold {
		s -= fallbackFeePenalty
	}
	return s
}

func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}

// ScoreRoster scores every counsellor with the primary rules and returns them
// best first. The roster is not modified.
func ScoreRoster(roster []models.Counsellor, answers models.QuestionnaireAnswers, label string) []models.RankedCounsellor {
	ranked := make([]models.RankedCounsellor, 0, len(roster))
	for i := range roster {
		c := &roster[i]
		loc, match := LocationScore(c.AffiliationText(), answers.Q3)
		score := SpecializationScore(c.Specialization, answers, label, PrimaryWeights) +
			loc +
			SmallSignals(c.Fees, c.ExperienceYears)
		ranked = append(ranked, toRanked(c, roundScore(score), match))
	}
	SortRanked(ranked)
	return ranked
}

// ScoreRosterFallback scores every counsellor with the fallback rules. There
// is no location logic and ordering is by score alone.
func ScoreRosterFallback(roster []models.Counsellor, answers models.QuestionnaireAnswers, label string) []models.RankedCounsellor {
	ranked := make([]models.RankedCounsellor, 0, len(roster))
	for i := range roster {
		c := &roster[i]
		score := SpecializationScore(c.Specialization, answers, label, FallbackWeights) + FallbackSignals(c)
		ranked = append(ranked, toRanked(c, roundScore(score), false))
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RankingScore > ranked[j].RankingScore
	})
	return ranked
}

// SortRanked orders by score descending, then experience descending, then
// fees ascending. Equal elements keep their input order.
func SortRanked(ranked []models.RankedCounsellor) {
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := &ranked[i], &ranked[j]
		if a.RankingScore != b.RankingScore {
			return a.RankingScore > b.RankingScore
		}
		if a.Experience() != b.Experience() {
			return a.Experience() > b.Experience()
		}
		return a.Fees < b.Fees
	})
}

func toRanked(c *models.Counsellor, score float64, locationMatch bool) models.RankedCounsellor {
	spec := c.Specialization
	if spec == "" {
		spec = models.DefaultSpecialization
	}
	name := c.Name
	if name == "" {
		name = models.DisplayName(c.FullName, c.Email)
	}
	return models.RankedCounsellor{
		ID:              c.ID,
		Name:            name,
		Specialization:  spec,
		Affiliation:     copyString(c.Affiliation),
		LocationMatch:   locationMatch,
		RankingScore:    score,
		Fees:            c.Fees,
		ExperienceYears: copyInt(c.ExperienceYears),
		IsAvailable:     copyBool(c.IsAvailable),
	}
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyBool(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Top returns at most n entries from the front of ranked.
func Top(ranked []models.RankedCounsellor, n int) []models.RankedCounsellor {
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}
