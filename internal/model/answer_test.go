package model

import (
	"encoding/json"
	"testing"
)

func TestCorrectAnswerUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want CorrectAnswer
	}{
		{
			name: "option key string",
			in:   `"b"`,
			want: CorrectAnswer{Key: "b", Scalar: "b"},
		},
		{
			name: "key array",
			in:   `["a","c"]`,
			want: CorrectAnswer{Keys: []string{"a", "c"}},
		},
		{
			name: "range object",
			in:   `{"min":9.7,"max":9.9}`,
			want: CorrectAnswer{Range: &NumericRange{Min: 9.7, Max: 9.9}},
		},
		{
			name: "bare number",
			in:   `6`,
			want: CorrectAnswer{Scalar: "6"},
		},
		{
			name: "bare decimal",
			in:   `0.5`,
			want: CorrectAnswer{Scalar: "0.5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got CorrectAnswer
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", tt.in, err)
			}

			if got.Key != tt.want.Key || got.Scalar != tt.want.Scalar {
				t.Errorf("got Key=%q Scalar=%q, want Key=%q Scalar=%q", got.Key, got.Scalar, tt.want.Key, tt.want.Scalar)
			}
			if len(got.Keys) != len(tt.want.Keys) {
				t.Fatalf("got %d keys, want %d", len(got.Keys), len(tt.want.Keys))
			}
			for i := range got.Keys {
				if got.Keys[i] != tt.want.Keys[i] {
					t.Errorf("Keys[%d] = %q, want %q", i, got.Keys[i], tt.want.Keys[i])
				}
			}
			if (got.Range == nil) != (tt.want.Range == nil) {
				t.Fatalf("Range presence mismatch")
			}
			if got.Range != nil && *got.Range != *tt.want.Range {
				t.Errorf("Range = %+v, want %+v", *got.Range, *tt.want.Range)
			}
		})
	}
}

func TestCorrectAnswerRoundTrip(t *testing.T) {
	// Legacy bare numbers canonicalize to a quoted scalar; everything else
	// re-encodes in its input shape.
	tests := []struct {
		in   string
		want string
	}{
		{`"b"`, `"b"`},
		{`["a","c"]`, `["a","c"]`},
		{`{"min":9.7,"max":9.9}`, `{"min":9.7,"max":9.9}`},
		{`6`, `"6"`},
	}

	for _, tt := range tests {
		var a CorrectAnswer
		if err := json.Unmarshal([]byte(tt.in), &a); err != nil {
			t.Fatalf("Unmarshal(%s) error: %v", tt.in, err)
		}
		out, err := json.Marshal(a)
		if err != nil {
			t.Fatalf("Marshal error: %v", err)
		}
		if string(out) != tt.want {
			t.Errorf("round trip of %s = %s, want %s", tt.in, out, tt.want)
		}
	}
}

func TestAnswerValueSniffing(t *testing.T) {
	var single AnswerValue
	if err := json.Unmarshal([]byte(`"b"`), &single); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if single.IsMulti() || single.Text != "b" {
		t.Errorf("got multi=%v text=%q, want single %q", single.IsMulti(), single.Text, "b")
	}

	var multi AnswerValue
	if err := json.Unmarshal([]byte(`["c","a"]`), &multi); err != nil {
		t.Fatalf("unmarshal array: %v", err)
	}
	if !multi.IsMulti() {
		t.Fatal("array input should produce a multi value")
	}
	keys := multi.SortedKeys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "c" {
		t.Errorf("SortedKeys() = %v, want [a c]", keys)
	}
}

func TestAnswerValueMarshalCanonical(t *testing.T) {
	out, err := json.Marshal(MultiAnswer("c", "a"))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `["a","c"]` {
		t.Errorf("multi marshal = %s, want sorted [\"a\",\"c\"]", out)
	}

	out, err = json.Marshal(SingleAnswer("9.8"))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `"9.8"` {
		t.Errorf("single marshal = %s, want \"9.8\"", out)
	}
}

func TestAnswerValueIsEmpty(t *testing.T) {
	if !SingleAnswer("").IsEmpty() {
		t.Error("empty text should be empty")
	}
	if !MultiAnswer().IsEmpty() {
		t.Error("empty key set should be empty")
	}
	if SingleAnswer("a").IsEmpty() || MultiAnswer("a").IsEmpty() {
		t.Error("non-empty values reported empty")
	}
}
