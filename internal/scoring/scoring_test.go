package scoring

import (
	"testing"

	"github.com/google/uuid"

	"github.com/nirwairkumar/nkc-assess-backend/internal/model"
)

func singleQ(id, key string) model.Question {
	return model.Question{ID: id, Type: model.QuestionTypeSingle, Correct: model.CorrectAnswer{Key: key}}
}

func multiQ(id string, keys ...string) model.Question {
	return model.Question{ID: id, Type: model.QuestionTypeMultiple, Correct: model.CorrectAnswer{Keys: keys}}
}

func rangeQ(id string, min, max float64) model.Question {
	return model.Question{ID: id, Type: model.QuestionTypeNumerical, Correct: model.CorrectAnswer{Range: &model.NumericRange{Min: min, Max: max}}}
}

func scalarQ(id, scalar string) model.Question {
	return model.Question{ID: id, Type: model.QuestionTypeNumerical, Correct: model.CorrectAnswer{Scalar: scalar}}
}

func TestEvaluateSingle(t *testing.T) {
	q := singleQ("q1", "b")

	tests := []struct {
		name string
		v    model.AnswerValue
		ok   bool
		want Verdict
	}{
		{"correct key", model.SingleAnswer("b"), true, VerdictCorrect},
		{"wrong key", model.SingleAnswer("a"), true, VerdictWrong},
		{"missing answer", model.AnswerValue{}, false, VerdictUnattempted},
		{"empty value", model.SingleAnswer(""), true, VerdictUnattempted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(&q, tt.v, tt.ok); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateMultiple(t *testing.T) {
	q := multiQ("q1", "c", "a")

	tests := []struct {
		name string
		v    model.AnswerValue
		ok   bool
		want Verdict
	}{
		{"exact set", model.MultiAnswer("a", "c"), true, VerdictCorrect},
		{"order ignored", model.MultiAnswer("c", "a"), true, VerdictCorrect},
		{"partial selection", model.MultiAnswer("a"), true, VerdictWrong},
		{"superset", model.MultiAnswer("a", "b", "c"), true, VerdictWrong},
		{"disjoint", model.MultiAnswer("b", "d"), true, VerdictWrong},
		{"empty selection is unattempted", model.MultiAnswer(), true, VerdictUnattempted},
		{"missing answer", model.AnswerValue{}, false, VerdictUnattempted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(&q, tt.v, tt.ok); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateNumericalRange(t *testing.T) {
	q := rangeQ("q1", 9.7, 9.9)

	tests := []struct {
		name  string
		value string
		want  Verdict
	}{
		{"inside range", "9.8", VerdictCorrect},
		{"lower bound inclusive", "9.7", VerdictCorrect},
		{"upper bound inclusive", "9.9", VerdictCorrect},
		{"below range", "9.69", VerdictWrong},
		{"above range", "9.91", VerdictWrong},
		{"scientific notation", "9.8e0", VerdictCorrect},
		{"unparsable", "abc", VerdictUnattempted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(&q, model.SingleAnswer(tt.value), true); got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestEvaluateNumericalScalar(t *testing.T) {
	tests := []struct {
		name   string
		scalar string
		value  string
		want   Verdict
	}{
		{"exact match", "6", "6", VerdictCorrect},
		{"within tolerance", "6", "6.00001", VerdictCorrect},
		{"outside tolerance", "6", "6.001", VerdictWrong},
		{"different representation", "0.5", "0.50000", VerdictCorrect},
		{"miss", "6", "7", VerdictWrong},
		{"unparsable key exact string match", "1/2", "1/2", VerdictCorrect},
		{"unparsable key no match unparsable entry", "1/2", "half", VerdictUnattempted},
		{"unparsable key parsable entry", "1/2", "0.5", VerdictWrong},
		{"unparsable entry", "6", "six", VerdictUnattempted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := scalarQ("q1", tt.scalar)
			if got := Evaluate(&q, model.SingleAnswer(tt.value), true); got != tt.want {
				t.Errorf("Evaluate(%q vs key %q) = %v, want %v", tt.value, tt.scalar, got, tt.want)
			}
		})
	}
}

func TestScoreAggregation(t *testing.T) {
	def := &model.TestDefinition{
		ID:               uuid.New(),
		MarksPerQuestion: 4,
		NegativeMarks:    1,
		Questions: []model.Question{
			singleQ("q1", "a"),
			singleQ("q2", "b"),
			multiQ("q3", "a", "c"),
			rangeQ("q4", 1, 2),
			scalarQ("q5", "6"),
		},
	}

	answers := map[string]model.AnswerValue{
		"q1": model.SingleAnswer("a"),      // correct  +4
		"q2": model.SingleAnswer("c"),      // wrong    -1
		"q3": model.MultiAnswer("a"),       // partial, wrong -1
		"q5": model.SingleAnswer("not-a-number"), // unattempted
		// q4 never answered                // unattempted
	}

	res := Score(def, answers)

	if res.TotalQuestions != 5 {
		t.Errorf("TotalQuestions = %d, want 5", res.TotalQuestions)
	}
	if res.CorrectCount != 1 || res.WrongCount != 2 || res.UnattemptedCount != 2 {
		t.Errorf("counts = %d/%d/%d, want 1/2/2", res.CorrectCount, res.WrongCount, res.UnattemptedCount)
	}
	if res.PositiveScore != 4 || res.NegativeScore != 2 {
		t.Errorf("positive/negative = %v/%v, want 4/2", res.PositiveScore, res.NegativeScore)
	}
	if res.Score != 2 {
		t.Errorf("Score = %v, want 2", res.Score)
	}
}

func TestScoreCanGoNegative(t *testing.T) {
	def := &model.TestDefinition{
		ID:               uuid.New(),
		MarksPerQuestion: 4,
		NegativeMarks:    1,
		Questions:        []model.Question{singleQ("q1", "a"), singleQ("q2", "a")},
	}
	answers := map[string]model.AnswerValue{
		"q1": model.SingleAnswer("b"),
		"q2": model.SingleAnswer("c"),
	}

	res := Score(def, answers)
	if res.Score != -2 {
		t.Errorf("Score = %v, want -2 (no flooring at zero)", res.Score)
	}
}

func TestScoreDeterministic(t *testing.T) {
	def := &model.TestDefinition{
		ID:               uuid.New(),
		MarksPerQuestion: 1,
		Questions: []model.Question{
			singleQ("q1", "a"), multiQ("q2", "a", "b"), rangeQ("q3", 0, 1),
		},
	}
	answers := map[string]model.AnswerValue{
		"q1": model.SingleAnswer("a"),
		"q2": model.MultiAnswer("b", "a"),
		"q3": model.SingleAnswer("0.5"),
	}

	first := Score(def, answers)
	for i := 0; i < 10; i++ {
		if got := Score(def, answers); got != first {
			t.Fatalf("run %d: Score() = %+v, want %+v", i, got, first)
		}
	}
}
