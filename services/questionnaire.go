package services

import (
	"context"
	"strings"

	"counsellor-matching/errors"
	"counsellor-matching/logger"
	"counsellor-matching/models"
	"counsellor-matching/utils"
)

// QuestionnaireStore persists questionnaire submissions.
type QuestionnaireStore interface {
	Insert(ctx context.Context, resp *models.QuestionnaireResponse) error
}

// SubmitQuestionnaireRequest is the body of POST /questionnaire.
type SubmitQuestionnaireRequest struct {
	StudentID string               `json:"student_id"`
	Answers   models.StoredAnswers `json:"answers"`
	FreeText  string               `json:"free_text"`
	Limit     int                  `json:"limit,omitempty"`
}

// SubmitQuestionnaireResult is what a submission returns.
type SubmitQuestionnaireResult struct {
	ResponseID  string       `json:"response_id"`
	Suggestions *Suggestions `json:"suggestions"`
}

type QuestionnaireService struct {
	store       QuestionnaireStore
	suggestions *SuggestionService
	publisher   EventPublisher
	topic       string
}

func NewQuestionnaireService(store QuestionnaireStore, suggestions *SuggestionService, publisher EventPublisher, topic string) *QuestionnaireService {
	return &QuestionnaireService{
		store:       store,
		suggestions: suggestions,
		publisher:   publisher,
		topic:       topic,
	}
}

// Validate checks the request and returns the normalised answers.
func (req *SubmitQuestionnaireRequest) Validate() (models.QuestionnaireAnswers, error) {
	var answers models.QuestionnaireAnswers

	if err := utils.ValidateUUID("student_id", req.StudentID); err != nil {
		return answers, errors.E(errors.Invalid, err.Error())
	}

	q1, err := utils.ValidateOption("answers.q1", req.Answers.Q1, utils.Q1Options)
	if err != nil {
		return answers, errors.E(errors.Invalid, err.Error())
	}

	q2 := strings.TrimSpace(req.Answers.Q2)
	q3 := strings.TrimSpace(req.Answers.Q3)
	if canonical, err := utils.ValidateOption("answers.q3", q3, utils.Q3Options); err == nil {
		q3 = canonical
	}

	checks := []struct {
		field, value string
		max          int
	}{
		{"answers.q2", q2, utils.MaxAnswerLength},
		{"answers.q3", q3, utils.MaxAnswerLength},
		{"free_text", req.FreeText, utils.MaxFreeTextLength},
	}
	for _, c := range checks {
		if err := utils.ValidateMaxLength(c.field, c.value, c.max); err != nil {
			return answers, errors.E(errors.Invalid, err.Error())
		}
	}

	return models.QuestionnaireAnswers{Q1: q1, Q2: q2, Q3: q3, FreeText: strings.TrimSpace(req.FreeText)}, nil
}

// Submit stores the questionnaire, announces it and returns suggestions
// computed from the submitted answers.
func (s *QuestionnaireService) Submit(ctx context.Context, req SubmitQuestionnaireRequest) (*SubmitQuestionnaireResult, error) {
	const op errors.Op = "services.QuestionnaireService.Submit"

	answers, err := req.Validate()
	if err != nil {
		return nil, errors.E(op, err)
	}
	limit, err := s.suggestions.ResolveLimit(req.Limit)
	if err != nil {
		return nil, errors.E(op, err)
	}

	resp := &models.QuestionnaireResponse{StudentID: req.StudentID, Answers: answers}
	if err := s.store.Insert(ctx, resp); err != nil {
		return nil, errors.E(op, err)
	}
	logger.Info("Questionnaire %s stored for student %s", resp.ID, resp.StudentID)

	publishAsync(s.publisher, s.topic, studentKey(resp.StudentID), NewQuestionnaireSubmittedEvent(resp))

	suggestions, err := s.suggestions.SuggestForAnswers(ctx, answers, limit)
	if err != nil {
		return nil, errors.E(op, err)
	}

	return &SubmitQuestionnaireResult{
		ResponseID:  resp.ID,
		Suggestions: suggestions,
	}, nil
}
