package services

import (
	"context"

	"counsellor-matching/errors"
	"counsellor-matching/logger"
	"counsellor-matching/models"
	"counsellor-matching/services/ranking"
)

// MaxSuggestionLimit bounds the limit a caller may ask for.
const MaxSuggestionLimit = ranking.DefaultRosterLimit

// Suggestions is a truncated ranking and the strategy that produced it.
type Suggestions struct {
	Strategy    string                    `json:"strategy"`
	Counsellors []models.RankedCounsellor `json:"counsellors"`
}

// SuggestionService ranks with the primary strategy and degrades to the
// fallback one when the roster cannot be read.
type SuggestionService struct {
	primary      ranking.Ranker
	fallback     ranking.Ranker
	defaultLimit int
	log          *logger.Logger
}

// NewSuggestionService wires the strategies. fallback may be nil.
func NewSuggestionService(primary, fallback ranking.Ranker, defaultLimit int, log *logger.Logger) *SuggestionService {
	if defaultLimit <= 0 {
		defaultLimit = 5
	}
	if log == nil {
		log = logger.Default()
	}
	return &SuggestionService{
		primary:      primary,
		fallback:     fallback,
		defaultLimit: defaultLimit,
		log:          log,
	}
}

// ResolveLimit applies the default for 0 and rejects values out of range.
func (s *SuggestionService) ResolveLimit(limit int) (int, error) {
	if limit == 0 {
		return s.defaultLimit, nil
	}
	if limit < 0 || limit > MaxSuggestionLimit {
		return 0, errors.E(errors.Invalid, "limit must be between 1 and 200")
	}
	return limit, nil
}

// Suggest returns the top counsellors for a student.
func (s *SuggestionService) Suggest(ctx context.Context, studentID string, limit int) (*Suggestions, error) {
	return s.suggest(ctx, limit, func(r ranking.Ranker) ([]models.RankedCounsellor, error) {
		return r.Rank(ctx, studentID)
	})
}

// SuggestForAnswers ranks for answers the caller already holds.
func (s *SuggestionService) SuggestForAnswers(ctx context.Context, answers models.QuestionnaireAnswers, limit int) (*Suggestions, error) {
	return s.suggest(ctx, limit, func(r ranking.Ranker) ([]models.RankedCounsellor, error) {
		return r.RankAnswers(ctx, answers)
	})
}

// Ranked returns the full, untruncated primary ranking.
func (s *SuggestionService) Ranked(ctx context.Context, studentID string) ([]models.RankedCounsellor, error) {
	return s.primary.Rank(ctx, studentID)
}

func (s *SuggestionService) suggest(ctx context.Context, limit int, rank func(ranking.Ranker) ([]models.RankedCounsellor, error)) (*Suggestions, error) {
	limit, err := s.ResolveLimit(limit)
	if err != nil {
		return nil, err
	}

	strategy := s.primary
	ranked, err := rank(strategy)
	if err != nil && errors.IsKind(err, errors.DataUnavailable) && s.fallback != nil {
		s.log.Warn("Primary ranking unavailable, using %s strategy: %v", s.fallback.Name(), err)
		strategy = s.fallback
		ranked, err = rank(strategy)
	}
	if err != nil {
		return nil, err
	}

	return &Suggestions{
		Strategy:    strategy.Name(),
		Counsellors: ranking.Top(ranked, limit),
	}, nil
}
