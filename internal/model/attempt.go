package model

import (
	"time"

	"github.com/google/uuid"
)

// SubmitReason records what triggered the final submission.
type SubmitReason string

const (
	SubmitReasonUser      SubmitReason = "user"
	SubmitReasonTimeUp    SubmitReason = "timeup"
	SubmitReasonViolation SubmitReason = "violation"
)

// ScoringResult is the output of the scoring engine. Score is signed and
// never floored at zero.
type ScoringResult struct {
	Score            float64 `json:"score"`
	PositiveScore    float64 `json:"positive_score"`
	NegativeScore    float64 `json:"negative_score"`
	CorrectCount     int     `json:"correct_count"`
	WrongCount       int     `json:"wrong_count"`
	UnattemptedCount int     `json:"unattempted_count"`
	TotalQuestions   int     `json:"total_questions"`
}

// FormField is one pre-test form entry (label shown to the candidate,
// value they typed).
type FormField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Attempt is a finalized record of one candidate's completed session.
type Attempt struct {
	ID          uuid.UUID              `json:"id"`
	TestID      uuid.UUID              `json:"test_id"`
	UserID      string                 `json:"user_id"`
	Answers     map[string]AnswerValue `json:"answers"`
	Result      ScoringResult          `json:"result"`
	FormFields  []FormField            `json:"form_fields,omitempty"`
	Reason      SubmitReason           `json:"reason"`
	SubmittedAt time.Time              `json:"submitted_at"`
}

// OpenSessionRequest is the payload for opening a session. Form fields
// are collected up front when the test carries a pre-test form.
type OpenSessionRequest struct {
	FormFields []FormField `json:"form_fields" binding:"omitempty,dive"`
}

// ResumeRequest is the payload for answering a resume prompt.
type ResumeRequest struct {
	Accept bool `json:"accept"`
}

// NavigateRequest is the payload for moving to a question index.
type NavigateRequest struct {
	Index int `json:"index" binding:"min=0"`
}

// AnswerRequest is the payload for selecting an answer.
type AnswerRequest struct {
	Value AnswerValue `json:"value" binding:"required"`
}

// ViolationRequest reports an environment violation observed client-side.
// Used as a fallback when the WebSocket stream is down.
type ViolationRequest struct {
	Kind string `json:"kind" binding:"required,oneof=visibility-hidden fullscreen-lost"`
}

