package session

import (
	"github.com/nirwairkumar/nkc-assess-backend/internal/model"
)

// answerStore is the typed question id → answer value mapping. It rejects
// answers for unknown questions and values whose shape does not match the
// question's type, so the invariant answers ⊆ question ids holds by
// construction.
type answerStore struct {
	byID    map[string]*model.Question
	answers map[string]model.AnswerValue
}

func newAnswerStore(def *model.TestDefinition) *answerStore {
	byID := make(map[string]*model.Question, len(def.Questions))
	for i := range def.Questions {
		byID[def.Questions[i].ID] = &def.Questions[i]
	}
	return &answerStore{
		byID:    byID,
		answers: make(map[string]model.AnswerValue),
	}
}

func (s *answerStore) set(qid string, v model.AnswerValue) error {
	q, ok := s.byID[qid]
	if !ok {
		return ErrUnknownQuestion
	}
	switch q.Type {
	case model.QuestionTypeMultiple:
		if !v.IsMulti() {
			return ErrAnswerShape
		}
	default:
		if v.IsMulti() {
			return ErrAnswerShape
		}
	}
	s.answers[qid] = v
	return nil
}

func (s *answerStore) clear(qid string) error {
	if _, ok := s.byID[qid]; !ok {
		return ErrUnknownQuestion
	}
	delete(s.answers, qid)
	return nil
}

func (s *answerStore) has(qid string) bool {
	_, ok := s.byID[qid]
	return ok
}

// snapshot returns a copy safe to hand outside the lock.
func (s *answerStore) snapshot() map[string]model.AnswerValue {
	out := make(map[string]model.AnswerValue, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// restore replaces the contents from a snapshot, dropping entries that no
// longer match a question in the definition.
func (s *answerStore) restore(answers map[string]model.AnswerValue) {
	s.answers = make(map[string]model.AnswerValue, len(answers))
	for qid, v := range answers {
		if _, ok := s.byID[qid]; ok {
			s.answers[qid] = v
		}
	}
}
