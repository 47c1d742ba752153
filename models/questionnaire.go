package models

import (
	"strings"
	"time"
)

// QuestionnaireAnswers holds a student's categorical answers and free text.
// Any field may be empty.
type QuestionnaireAnswers struct {
	Q1       string `json:"q1,omitempty"`
	Q2       string `json:"q2,omitempty"`
	Q3       string `json:"q3,omitempty"`
	FreeText string `json:"freeText,omitempty"`
}

// IsEmpty reports whether no answer was given at all.
func (a QuestionnaireAnswers) IsEmpty() bool {
	return a.Q1 == "" && a.Q2 == "" && a.Q3 == "" && strings.TrimSpace(a.FreeText) == ""
}

// QuestionnaireResponse is one stored submission.
type QuestionnaireResponse struct {
	ID        string               `json:"id"`
	StudentID string               `json:"student_id"`
	Answers   QuestionnaireAnswers `json:"answers"`
	CreatedAt time.Time            `json:"created_at"`
}

// StoredAnswers is the jsonb shape of questionnaire_responses.answers. Free
// text lives in its own column.
type StoredAnswers struct {
	Q1 string `json:"q1,omitempty"`
	Q2 string `json:"q2,omitempty"`
	Q3 string `json:"q3,omitempty"`
}
