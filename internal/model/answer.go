package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// NumericRange is the canonical answer key for numerical questions.
// Both bounds are inclusive.
type NumericRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// CorrectAnswer is the polymorphic answer key attached to a question.
// Accepted wire shapes:
//   - option key string        → single / single-advance
//   - array of option keys     → multiple
//   - {"min": x, "max": y}     → numerical (canonical)
//   - bare number or numeric string → numerical (legacy scalar, deprecated)
type CorrectAnswer struct {
	Key    string
	Keys   []string
	Range  *NumericRange
	Scalar string // legacy numerical key, kept as entered
}

// UnmarshalJSON decodes any of the accepted answer key shapes.
func (a *CorrectAnswer) UnmarshalJSON(data []byte) error {
	*a = CorrectAnswer{}
	trimmed := firstByte(data)

	switch trimmed {
	case '[':
		return json.Unmarshal(data, &a.Keys)
	case '{':
		var r NumericRange
		if err := json.Unmarshal(data, &r); err != nil {
			return fmt.Errorf("decode answer key range: %w", err)
		}
		a.Range = &r
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		// A quoted value serves both as an option key and, for numerical
		// questions, as the legacy scalar form.
		a.Key = s
		a.Scalar = s
		return nil
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("decode answer key: %w", err)
		}
		a.Scalar = strconv.FormatFloat(n, 'f', -1, 64)
		return nil
	}
}

// MarshalJSON re-encodes the key in its canonical shape.
func (a CorrectAnswer) MarshalJSON() ([]byte, error) {
	switch {
	case a.Range != nil:
		return json.Marshal(a.Range)
	case a.Keys != nil:
		return json.Marshal(a.Keys)
	case a.Key != "":
		return json.Marshal(a.Key)
	case a.Scalar != "":
		return json.Marshal(a.Scalar)
	default:
		return []byte("null"), nil
	}
}

// AnswerValue is a tagged union over the three answer shapes a candidate
// can produce: one option key, a set of option keys, or a raw numeric
// string. Wire shape is a JSON string or a JSON string array.
type AnswerValue struct {
	Text  string
	Keys  []string
	multi bool
}

// SingleAnswer builds an answer holding one option key (or, for numerical
// questions, the raw entered value).
func SingleAnswer(text string) AnswerValue {
	return AnswerValue{Text: text}
}

// MultiAnswer builds an answer holding a set of option keys.
func MultiAnswer(keys ...string) AnswerValue {
	return AnswerValue{Keys: keys, multi: true}
}

// IsMulti reports whether the value carries a key set.
func (v AnswerValue) IsMulti() bool { return v.multi }

// IsEmpty reports whether the value counts as unattempted.
func (v AnswerValue) IsEmpty() bool {
	if v.multi {
		return len(v.Keys) == 0
	}
	return v.Text == ""
}

// SortedKeys returns the key set in canonical sorted order.
func (v AnswerValue) SortedKeys() []string {
	out := make([]string, len(v.Keys))
	copy(out, v.Keys)
	sort.Strings(out)
	return out
}

// MarshalJSON encodes key sets as arrays and everything else as a string.
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.multi {
		return json.Marshal(v.SortedKeys())
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON sniffs the wire shape: arrays become key sets, strings
// become single values.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	*v = AnswerValue{}
	if firstByte(data) == '[' {
		v.multi = true
		return json.Unmarshal(data, &v.Keys)
	}
	return json.Unmarshal(data, &v.Text)
}

func firstByte(data []byte) byte {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}
