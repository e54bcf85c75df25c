package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType enumerates the supported answer shapes.
type QuestionType string

const (
	QuestionTypeSingle        QuestionType = "single"
	QuestionTypeSingleAdvance QuestionType = "single-advance"
	QuestionTypeMultiple      QuestionType = "multiple"
	QuestionTypeNumerical     QuestionType = "numerical"
)

// IntegrityMode enumerates the violation escalation policies.
type IntegrityMode string

const (
	IntegrityOff            IntegrityMode = "off"
	IntegrityWarnThenSubmit IntegrityMode = "warn-then-submit"
	IntegrityStrict         IntegrityMode = "strict"
)

// TestPolicy holds per-test proctoring and availability settings.
type TestPolicy struct {
	IntegrityMode     IntegrityMode `json:"integrity_mode"`
	MaxViolations     int           `json:"max_violations"`
	RequireFullscreen bool          `json:"require_fullscreen"`
	BlockCopyPaste    bool          `json:"block_copy_paste"`
	BlockContextMenu  bool          `json:"block_context_menu"`
	ShuffleQuestions  bool          `json:"shuffle_questions"`
	ScheduledStart    *time.Time    `json:"scheduled_start,omitempty"`
	ScheduledEnd      *time.Time    `json:"scheduled_end,omitempty"`
	AttemptLimit      int           `json:"attempt_limit"` // 0 = unlimited
	PreTestForm       []string      `json:"pre_test_form,omitempty"`
	ResultVisible     bool          `json:"result_visible"`
}

// Option is a keyed answer choice (e.g. "A" .. "D").
type Option struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Question is a single test question. The shape of Correct depends on Type.
type Question struct {
	ID       string        `json:"id"`
	Type     QuestionType  `json:"type"`
	Prompt   string        `json:"prompt"`
	ImageURL string        `json:"image_url,omitempty"`
	Options  []Option      `json:"options,omitempty"`
	Correct  CorrectAnswer `json:"correct_answer"`
}

// TestDefinition is the full definition of a test as loaded from the
// Test Repository. Questions are ordered.
type TestDefinition struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	DurationMinutes  int        `json:"duration_minutes"`
	MarksPerQuestion float64    `json:"marks_per_question"`
	NegativeMarks    float64    `json:"negative_marks"`
	Policy           TestPolicy `json:"policy"`
	Questions        []Question `json:"questions"`
}

// QuestionByID returns the question with the given id, or nil.
func (t *TestDefinition) QuestionByID(id string) *Question {
	for i := range t.Questions {
		if t.Questions[i].ID == id {
			return &t.Questions[i]
		}
	}
	return nil
}

// DurationSeconds is the full allotted time of a fresh session.
func (t *TestDefinition) DurationSeconds() int {
	return t.DurationMinutes * 60
}

// QuestionForCandidate is a question stripped of its answer key,
// safe to send to a live candidate.
type QuestionForCandidate struct {
	ID       string       `json:"id"`
	Type     QuestionType `json:"type"`
	Prompt   string       `json:"prompt"`
	ImageURL string       `json:"image_url,omitempty"`
	Options  []Option     `json:"options,omitempty"`
}

// CandidatePaper is the candidate-facing view of a test.
type CandidatePaper struct {
	TestID    uuid.UUID              `json:"test_id"`
	Title     string                 `json:"title"`
	Duration  int                    `json:"duration_minutes"`
	Policy    TestPolicy             `json:"policy"`
	Questions []QuestionForCandidate `json:"questions"`
}

// Paper builds the candidate-facing view from a definition. The caller is
// responsible for applying any per-candidate question order first.
func (t *TestDefinition) Paper() *CandidatePaper {
	qs := make([]QuestionForCandidate, len(t.Questions))
	for i, q := range t.Questions {
		qs[i] = QuestionForCandidate{
			ID:       q.ID,
			Type:     q.Type,
			Prompt:   q.Prompt,
			ImageURL: q.ImageURL,
			Options:  q.Options,
		}
	}
	p := t.Policy
	return &CandidatePaper{
		TestID:    t.ID,
		Title:     t.Title,
		Duration:  t.DurationMinutes,
		Policy:    p,
		Questions: qs,
	}
}
