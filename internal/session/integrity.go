package session

import (
	"context"
	"time"

	"github.com/nirwairkumar/nkc-assess-backend/internal/model"
)

// ViolationKind identifies the environment event behind a violation.
type ViolationKind string

const (
	// ViolationVisibilityHidden fires when the test tab stops being the
	// visible one (tab switch, window minimize).
	ViolationVisibilityHidden ViolationKind = "visibility-hidden"
	// ViolationFullscreenLost fires when the candidate leaves fullscreen
	// while the test requires it.
	ViolationFullscreenLost ViolationKind = "fullscreen-lost"
)

// Violation is one typed environment event reported by the observer.
type Violation struct {
	Kind ViolationKind `json:"kind"`
	At   time.Time     `json:"at"`
}

// EnvironmentObserver is the injectable source of integrity events. In
// production it is fed by the WebSocket stream; tests call the controller
// directly with synthetic violations.
type EnvironmentObserver interface {
	Events() <-chan Violation
}

// ViolationSink receives every counted violation for audit persistence.
type ViolationSink interface {
	Record(ctx context.Context, userID, testID string, v Violation, count int) error
}

// integrityAction is the escalation decision for one violation.
type integrityAction int

const (
	actionIgnore integrityAction = iota
	actionWarn
	actionForceSubmit
)

// integrityMonitor applies the escalation policy. Copy/paste and
// context-menu blocking are client-enforced toggles and never reach
// here; only visibility and fullscreen events count.
type integrityMonitor struct {
	mode              model.IntegrityMode
	requireFullscreen bool
	max               int
	count             int
}

func newIntegrityMonitor(policy model.TestPolicy) *integrityMonitor {
	return &integrityMonitor{
		mode:              policy.IntegrityMode,
		requireFullscreen: policy.RequireFullscreen,
		max:               policy.MaxViolations,
	}
}

// observe counts the violation and decides the escalation. Violations up
// to and including the configured maximum warn; the one after forces
// submission. Strict mode forces on the first counted violation.
func (m *integrityMonitor) observe(v Violation) (integrityAction, int) {
	if m.mode == model.IntegrityOff {
		return actionIgnore, m.count
	}
	if v.Kind == ViolationFullscreenLost && !m.requireFullscreen {
		return actionIgnore, m.count
	}

	m.count++

	if m.mode == model.IntegrityStrict {
		return actionForceSubmit, m.count
	}
	if m.count > m.max {
		return actionForceSubmit, m.count
	}
	return actionWarn, m.count
}
