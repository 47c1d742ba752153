package ranking

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"counsellor-matching/errors"
	"counsellor-matching/logger"
	"counsellor-matching/models"

	"golang.org/x/sync/errgroup"
)

// Strategy names reported with each ranking.
const (
	StrategyPrimary  = "primary"
	StrategyFallback = "fallback"
)

// DefaultRosterLimit caps how many counsellors one ranking reads.
const DefaultRosterLimit = 200

// minClassifiableLength is the shortest trimmed free text worth classifying.
const minClassifiableLength = 5

// RosterSource reads counsellors joined with their display names.
type RosterSource interface {
	ListRoster(ctx context.Context, limit int) ([]models.Counsellor, error)
}

// AnswersSource reads a student's most recent questionnaire answers. It
// returns nil, nil when the student never submitted one.
type AnswersSource interface {
	LatestAnswers(ctx context.Context, studentID string) (*models.QuestionnaireAnswers, error)
}

// Classifier maps free text to a topic label. An empty label means none.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Ranker is implemented by both ranking strategies.
type Ranker interface {
	Name() string
	Rank(ctx context.Context, studentID string) ([]models.RankedCounsellor, error)
	RankAnswers(ctx context.Context, answers models.QuestionnaireAnswers) ([]models.RankedCounsellor, error)
}

// Options configure an Engine or Fallback. Zero values are usable.
type Options struct {
	RosterLimit int
	Logger      *logger.Logger
	Metrics     *Metrics
}

func (o Options) withDefaults() Options {
	if o.RosterLimit <= 0 || o.RosterLimit > DefaultRosterLimit {
		o.RosterLimit = DefaultRosterLimit
	}
	if o.Logger == nil {
		o.Logger = logger.Default()
	}
	return o
}

// Engine is the primary ranking strategy.
type Engine struct {
	roster     RosterSource
	answers    AnswersSource
	classifier Classifier
	opts       Options
}

var _ Ranker = (*Engine)(nil)

// NewEngine wires the primary strategy. answers and classifier may be nil.
func NewEngine(roster RosterSource, answers AnswersSource, classifier Classifier, opts Options) *Engine {
	return &Engine{
		roster:     roster,
		answers:    answers,
		classifier: classifier,
		opts:       opts.withDefaults(),
	}
}

func (e *Engine) Name() string { return StrategyPrimary }

// Rank ranks the whole roster for studentID. An empty studentID ranks with
// empty answers. Only a roster failure is returned, as DataUnavailable.
func (e *Engine) Rank(ctx context.Context, studentID string) ([]models.RankedCounsellor, error) {
	const op errors.Op = "ranking.Engine.Rank"
	started := time.Now()

	var (
		roster  []models.Counsellor
		answers models.QuestionnaireAnswers
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := e.roster.ListRoster(gctx, e.opts.RosterLimit)
		if err != nil {
			return errors.E(op, errors.DataUnavailable, "counsellor roster query failed", err)
		}
		roster = rows
		return nil
	})
	if studentID != "" {
		g.Go(func() error {
			answers = loadAnswers(gctx, e.answers, studentID, e.opts.Logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.opts.Metrics.incFailure(StrategyPrimary)
		e.opts.Logger.Error("Ranking failed for student %q: %v", studentID, err)
		return nil, err
	}

	label := classifyFreeText(ctx, e.classifier, answers.FreeText, e.opts.Logger, e.opts.Metrics)
	ranked := ScoreRoster(roster, answers, label)
	e.opts.Metrics.observeRanking(StrategyPrimary, started)
	e.opts.Logger.Debug("Ranked %d counsellors for student %q (label=%q)", len(ranked), studentID, label)
	return ranked, nil
}

// RankAnswers ranks the roster for answers the caller already holds, such as
// a questionnaire that was just submitted.
func (e *Engine) RankAnswers(ctx context.Context, answers models.QuestionnaireAnswers) ([]models.RankedCounsellor, error) {
	const op errors.Op = "ranking.Engine.RankAnswers"
	started := time.Now()

	roster, err := e.roster.ListRoster(ctx, e.opts.RosterLimit)
	if err != nil {
		e.opts.Metrics.incFailure(StrategyPrimary)
		return nil, errors.E(op, errors.DataUnavailable, "counsellor roster query failed", err)
	}

	label := classifyFreeText(ctx, e.classifier, answers.FreeText, e.opts.Logger, e.opts.Metrics)
	ranked := ScoreRoster(roster, answers, label)
	e.opts.Metrics.observeRanking(StrategyPrimary, started)
	return ranked, nil
}

// loadAnswers never fails: a missing or unreadable questionnaire yields
// empty answers.
func loadAnswers(ctx context.Context, src AnswersSource, studentID string, log *logger.Logger) models.QuestionnaireAnswers {
	if src == nil {
		return models.QuestionnaireAnswers{}
	}
	a, err := src.LatestAnswers(ctx, studentID)
	if err != nil {
		log.Warn("Could not load questionnaire for student %q, ranking without answers: %v", studentID, err)
		return models.QuestionnaireAnswers{}
	}
	if a == nil {
		log.Debug("No questionnaire found for student %q", studentID)
		return models.QuestionnaireAnswers{}
	}
	return *a
}

// classifyFreeText returns the classifier's label for text or "" for any
// failure. Short text is not sent at all.
func classifyFreeText(ctx context.Context, c Classifier, text string, log *logger.Logger, m *Metrics) string {
	if c == nil || utf8.RuneCountInString(strings.TrimSpace(text)) < minClassifiableLength {
		m.incClassifier(OutcomeSkipped)
		return ""
	}
	label, err := c.Classify(ctx, text)
	if err != nil {
		m.incClassifier(OutcomeError)
		log.Debug("Free-text classification unavailable: %v", err)
		return ""
	}
	if label == "" {
		m.incClassifier(OutcomeNone)
		return ""
	}
	m.incClassifier(OutcomeLabel)
	return label
}
