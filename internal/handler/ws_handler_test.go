package handler

import (
	"testing"

	ws "github.com/nirwairkumar/nkc-assess-backend/internal/websocket"
)

func TestWarningFor(t *testing.T) {
	cases := []struct {
		name          string
		before, after int
		max           int
		wantCounted   bool
		wantCount     int
		wantRemaining int
	}{
		{name: "ignored event owes no warning", before: 0, after: 0, max: 2, wantCounted: false},
		{name: "ignored at nonzero count", before: 1, after: 1, max: 2, wantCounted: false},
		{name: "first counted violation", before: 0, after: 1, max: 2, wantCounted: true, wantCount: 1, wantRemaining: 1},
		{name: "last warning before forced submit", before: 1, after: 2, max: 2, wantCounted: true, wantCount: 2, wantRemaining: 0},
		{name: "remaining clamps at zero", before: 2, after: 3, max: 2, wantCounted: true, wantCount: 3, wantRemaining: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			warning, counted := warningFor("visibility-hidden", tc.before, tc.after, tc.max)
			if counted != tc.wantCounted {
				t.Fatalf("counted = %v, want %v", counted, tc.wantCounted)
			}
			if !counted {
				return
			}
			if warning.Event != ws.EventWarning {
				t.Errorf("event = %s, want %s", warning.Event, ws.EventWarning)
			}
			if warning.Kind != "visibility-hidden" {
				t.Errorf("kind = %s, want visibility-hidden", warning.Kind)
			}
			if warning.Count != tc.wantCount {
				t.Errorf("count = %d, want %d", warning.Count, tc.wantCount)
			}
			if warning.Remaining != tc.wantRemaining {
				t.Errorf("remaining = %d, want %d", warning.Remaining, tc.wantRemaining)
			}
		})
	}
}
