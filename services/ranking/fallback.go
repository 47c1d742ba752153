package ranking

import (
	"context"
	"time"

	"counsellor-matching/errors"
	"counsellor-matching/models"
)

// BasicRosterSource reads counsellors without the profile join. It is the
// data path the fallback strategy relies on.
type BasicRosterSource interface {
	ListBasicRoster(ctx context.Context) ([]models.Counsellor, error)
}

// Fallback is the degraded strategy used when the primary roster read fails.
// It scores with FallbackWeights, rewards availability and ignores location.
type Fallback struct {
	roster     BasicRosterSource
	answers    AnswersSource
	classifier Classifier
	opts       Options
}

var _ Ranker = (*Fallback)(nil)

// NewFallback wires the fallback strategy. answers and classifier may be nil.
func NewFallback(roster BasicRosterSource, answers AnswersSource, classifier Classifier, opts Options) *Fallback {
	return &Fallback{
		roster:     roster,
		answers:    answers,
		classifier: classifier,
		opts:       opts.withDefaults(),
	}
}

func (f *Fallback) Name() string { return StrategyFallback }

func (f *Fallback) Rank(ctx context.Context, studentID string) ([]models.RankedCounsellor, error) {
	var answers models.QuestionnaireAnswers
	if studentID != "" {
		answers = loadAnswers(ctx, f.answers, studentID, f.opts.Logger)
	}
	return f.RankAnswers(ctx, answers)
}

func (f *Fallback) RankAnswers(ctx context.Context, answers models.QuestionnaireAnswers) ([]models.RankedCounsellor, error) {
	const op errors.Op = "ranking.Fallback.RankAnswers"
	started := time.Now()

	roster, err := f.roster.ListBasicRoster(ctx)
	if err != nil {
		f.opts.Metrics.incFailure(StrategyFallback)
		return nil, errors.E(op, errors.DataUnavailable, "counsellor list query failed", err)
	}

	label := classifyFreeText(ctx, f.classifier, answers.FreeText, f.opts.Logger, f.opts.Metrics)
	ranked := ScoreRosterFallback(roster, answers, label)
	f.opts.Metrics.observeRanking(StrategyFallback, started)
	return ranked, nil
}
