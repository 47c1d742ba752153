package db

import (
	"context"
	"database/sql"
	"encoding/json"

	"counsellor-matching/errors"
	"counsellor-matching/models"

	"github.com/google/uuid"
)

// QuestionnaireRepository stores questionnaire submissions. It satisfies
// ranking.AnswersSource.
type QuestionnaireRepository struct {
	db *sql.DB
}

func NewQuestionnaireRepository(db *sql.DB) *QuestionnaireRepository {
	return &QuestionnaireRepository{db: db}
}

// LatestAnswers returns the most recent submission for studentID, or nil
// when there is none.
func (r *QuestionnaireRepository) LatestAnswers(ctx context.Context, studentID string) (*models.QuestionnaireAnswers, error) {
	var (
		raw      []byte
		freeText sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT answers, free_text
		FROM questionnaire_responses
		WHERE student_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, studentID).Scan(&raw, &freeText)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	answers := decodeAnswers(raw)
	answers.FreeText = freeText.String
	return &answers, nil
}

// Insert stores a submission and fills in its id and creation time.
func (r *QuestionnaireRepository) Insert(ctx context.Context, resp *models.QuestionnaireResponse) error {
	const op errors.Op = "db.QuestionnaireRepository.Insert"

	payload, err := json.Marshal(models.StoredAnswers{
		Q1: resp.Answers.Q1,
		Q2: resp.Answers.Q2,
		Q3: resp.Answers.Q3,
	})
	if err != nil {
		return errors.E(op, errors.Internal, err)
	}

	resp.ID = uuid.NewString()
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO questionnaire_responses (id, student_id, answers, free_text, created_at)
		VALUES ($1, $2, $3::jsonb, $4, NOW())
		RETURNING created_at`,
		resp.ID, resp.StudentID, payload, nullString(resp.Answers.FreeText)).Scan(&resp.CreatedAt)
	if err != nil {
		return errors.E(op, errors.Internal, "could not store questionnaire", err)
	}
	return nil
}

// decodeAnswers reads the answers document leniently: non-string values and
// unknown keys are ignored, and malformed JSON yields empty answers.
func decodeAnswers(raw []byte) models.QuestionnaireAnswers {
	var doc map[string]interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &doc) != nil {
		return models.QuestionnaireAnswers{}
	}
	text := func(key string) string {
		s, _ := doc[key].(string)
		return s
	}
	return models.QuestionnaireAnswers{
		Q1: text("q1"),
		Q2: text("q2"),
		Q3: text("q3"),
	}
}
