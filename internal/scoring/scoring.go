// Package scoring evaluates a finished answer set against a test
// definition. Everything here is pure: the same inputs always produce
// the same ScoringResult.
package scoring

import (
	"math"
	"strconv"

	"github.com/nirwairkumar/nkc-assess-backend/internal/model"
)

// scalarTolerance is the comparison window for legacy scalar numerical
// answer keys.
const scalarTolerance = 1e-4

// Verdict classifies a single answered question.
type Verdict int

const (
	VerdictUnattempted Verdict = iota
	VerdictCorrect
	VerdictWrong
)

// Evaluate applies the type-specific correctness rule for one question.
// A missing answer (ok == false) or an empty value is always unattempted.
func Evaluate(q *model.Question, v model.AnswerValue, ok bool) Verdict {
	if !ok || v.IsEmpty() {
		return VerdictUnattempted
	}

	switch q.Type {
	case model.QuestionTypeSingle, model.QuestionTypeSingleAdvance:
		if v.Text == q.Correct.Key {
			return VerdictCorrect
		}
		return VerdictWrong

	case model.QuestionTypeMultiple:
		return evaluateMultiple(q, v)

	case model.QuestionTypeNumerical:
		return evaluateNumerical(q, v)
	}

	return VerdictWrong
}

// evaluateMultiple compares selection and key as sorted sets. An empty
// selection never reaches this point (handled as unattempted above), and
// partial matches earn nothing.
func evaluateMultiple(q *model.Question, v model.AnswerValue) Verdict {
	key := model.MultiAnswer(q.Correct.Keys...).SortedKeys()
	sel := v.SortedKeys()
	if len(sel) != len(key) {
		return VerdictWrong
	}
	for i := range sel {
		if sel[i] != key[i] {
			return VerdictWrong
		}
	}
	return VerdictCorrect
}

// evaluateNumerical parses the entered value and compares it against the
// canonical {min,max} range or, failing that, the legacy scalar key.
//
// Unparsable input is a validation problem, not a wrong answer: it only
// counts as wrong when it parsed and missed. The exact-string fallback
// exists so legacy scalar keys like "1/2" keep grading the way they
// always did.
func evaluateNumerical(q *model.Question, v model.AnswerValue) Verdict {
	entered, enteredOK := parseFloat(v.Text)

	if r := q.Correct.Range; r != nil {
		if !enteredOK {
			return VerdictUnattempted
		}
		if entered >= r.Min && entered <= r.Max {
			return VerdictCorrect
		}
		return VerdictWrong
	}

	// Legacy scalar key (deprecated).
	scalar, scalarOK := parseFloat(q.Correct.Scalar)
	if enteredOK && scalarOK {
		if math.Abs(entered-scalar) < scalarTolerance {
			return VerdictCorrect
		}
		return VerdictWrong
	}

	// Exact-string fallback when either side does not parse.
	if v.Text == q.Correct.Scalar {
		return VerdictCorrect
	}
	if !enteredOK {
		return VerdictUnattempted
	}
	return VerdictWrong
}

// Score grades the full answer set. Every question contributes to exactly
// one of the three counters; the signed score is never floored.
func Score(def *model.TestDefinition, answers map[string]model.AnswerValue) model.ScoringResult {
	res := model.ScoringResult{TotalQuestions: len(def.Questions)}

	for i := range def.Questions {
		q := &def.Questions[i]
		v, ok := answers[q.ID]

		switch Evaluate(q, v, ok) {
		case VerdictUnattempted:
			res.UnattemptedCount++
		case VerdictCorrect:
			res.CorrectCount++
			res.Score += def.MarksPerQuestion
			res.PositiveScore += def.MarksPerQuestion
		case VerdictWrong:
			res.WrongCount++
			res.Score -= def.NegativeMarks
			res.NegativeScore += def.NegativeMarks
		}
	}

	return res
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
