// Package ranking orders completed attempts for leaderboards. Both
// orderings are pure and stable: identical input always yields an
// identical output order, and the input slice is never mutated.
package ranking

import (
	"sort"
	"strings"

	"github.com/nirwairkumar/nkc-assess-backend/internal/model"
)

// Chronological returns attempts ordered by submission time, latest first.
func Chronological(attempts []model.Attempt) []model.Attempt {
	out := clone(attempts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out
}

// Merit returns attempts in leaderboard order. Precedence, in order:
// score descending, wrong count ascending, unattempted count ascending,
// submission time ascending (earlier wins), identity field ascending
// case-insensitive. Identity ties are possible (names are not unique);
// the stable sort keeps input order for full ties.
func Merit(attempts []model.Attempt) []model.Attempt {
	out := clone(attempts)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if a.Result.Score != b.Result.Score {
			return a.Result.Score > b.Result.Score
		}
		if a.Result.WrongCount != b.Result.WrongCount {
			return a.Result.WrongCount < b.Result.WrongCount
		}
		if a.Result.UnattemptedCount != b.Result.UnattemptedCount {
			return a.Result.UnattemptedCount < b.Result.UnattemptedCount
		}
		if !a.SubmittedAt.Equal(b.SubmittedAt) {
			return a.SubmittedAt.Before(b.SubmittedAt)
		}
		return identityKey(a) < identityKey(b)
	})
	return out
}

// identityKey picks the primary identity field of an attempt: the first
// pre-test form field whose label contains "name" (case-insensitive),
// else the first field. Lowercased for case-insensitive comparison.
func identityKey(a *model.Attempt) string {
	if len(a.FormFields) == 0 {
		return ""
	}
	for _, f := range a.FormFields {
		if strings.Contains(strings.ToLower(f.Label), "name") {
			return strings.ToLower(f.Value)
		}
	}
	return strings.ToLower(a.FormFields[0].Value)
}

func clone(attempts []model.Attempt) []model.Attempt {
	out := make([]model.Attempt, len(attempts))
	copy(out, attempts)
	return out
}
