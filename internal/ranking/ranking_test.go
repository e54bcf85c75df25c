package ranking

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nirwairkumar/nkc-assess-backend/internal/model"
)

func attempt(name string, score float64, wrong, unattempted int, submittedAt time.Time) model.Attempt {
	return model.Attempt{
		ID:     uuid.New(),
		UserID: name,
		Result: model.ScoringResult{
			Score:            score,
			WrongCount:       wrong,
			UnattemptedCount: unattempted,
		},
		FormFields:  []model.FormField{{Label: "Full Name", Value: name}},
		SubmittedAt: submittedAt,
	}
}

func order(attempts []model.Attempt) []string {
	out := make([]string, len(attempts))
	for i, a := range attempts {
		out[i] = a.UserID
	}
	return out
}

func TestMeritPrecedence(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		in    []model.Attempt
		want  []string
	}{
		{
			name: "score descending",
			in: []model.Attempt{
				attempt("low", 10, 0, 0, base),
				attempt("high", 20, 0, 0, base),
			},
			want: []string{"high", "low"},
		},
		{
			name: "wrong count breaks score tie",
			in: []model.Attempt{
				attempt("sloppy", 20, 3, 0, base),
				attempt("clean", 20, 1, 0, base),
			},
			want: []string{"clean", "sloppy"},
		},
		{
			name: "unattempted breaks wrong tie",
			in: []model.Attempt{
				attempt("skipper", 20, 1, 4, base),
				attempt("finisher", 20, 1, 1, base),
			},
			want: []string{"finisher", "skipper"},
		},
		{
			name: "earlier submission wins full result tie",
			in: []model.Attempt{
				attempt("late", 20, 1, 1, base.Add(time.Minute)),
				attempt("early", 20, 1, 1, base),
			},
			want: []string{"early", "late"},
		},
		{
			name: "identity breaks complete tie case-insensitively",
			in: []model.Attempt{
				attempt("Zara", 20, 1, 1, base),
				attempt("alice", 20, 1, 1, base),
			},
			want: []string{"alice", "Zara"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := order(Merit(tt.in))
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("Merit() order = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestMeritIdentityFieldSelection(t *testing.T) {
	base := time.Now()

	a := attempt("x", 10, 0, 0, base)
	a.FormFields = []model.FormField{
		{Label: "Roll Number", Value: "42"},
		{Label: "Candidate Name", Value: "Bob"},
	}
	b := attempt("y", 10, 0, 0, base)
	b.FormFields = []model.FormField{
		{Label: "Roll Number", Value: "7"},
		{Label: "Candidate Name", Value: "Alice"},
	}

	// The "name" labelled field decides, not the first field.
	got := Merit([]model.Attempt{a, b})
	if got[0].UserID != "y" {
		t.Errorf("expected Alice (y) first, got %s", got[0].UserID)
	}

	// Without a name-labelled field the first field decides.
	a.FormFields = []model.FormField{{Label: "Roll Number", Value: "42"}}
	b.FormFields = []model.FormField{{Label: "Roll Number", Value: "7"}}
	got = Merit([]model.Attempt{a, b})
	if got[0].UserID != "y" {
		t.Errorf("expected roll 7 (y) first, got %s", got[0].UserID)
	}
}

func TestMeritDeterministicAndNonMutating(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	in := []model.Attempt{
		attempt("c", 15, 1, 0, base),
		attempt("a", 20, 0, 0, base),
		attempt("b", 15, 0, 2, base),
	}
	inOrder := order(in)

	first := order(Merit(in))
	for i := 0; i < 10; i++ {
		if got := order(Merit(in)); len(got) != len(first) {
			t.Fatal("length changed between runs")
		} else {
			for j := range got {
				if got[j] != first[j] {
					t.Fatalf("run %d: order %v, want %v", i, got, first)
				}
			}
		}
	}

	for i, id := range order(in) {
		if id != inOrder[i] {
			t.Fatal("Merit mutated its input slice")
		}
	}
}

func TestChronologicalLatestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	in := []model.Attempt{
		attempt("first", 0, 0, 0, base),
		attempt("third", 0, 0, 0, base.Add(2*time.Minute)),
		attempt("second", 0, 0, 0, base.Add(time.Minute)),
	}

	got := order(Chronological(in))
	want := []string{"third", "second", "first"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Chronological() order = %v, want %v", got, want)
		}
	}
}
