package model

import "sort"

// SessionStatus enumerates the lifecycle states of a live session.
type SessionStatus string

const (
	StatusInitializing   SessionStatus = "initializing"
	StatusAwaitingResume SessionStatus = "awaiting_resume_decision"
	StatusActive         SessionStatus = "active"
	StatusExpired        SessionStatus = "expired"
	StatusSubmitting     SessionStatus = "submitting"
	StatusSubmitted      SessionStatus = "submitted"
	StatusAborted        SessionStatus = "aborted"
)

// Final reports whether the status accepts no further transitions.
func (s SessionStatus) Final() bool {
	return s == StatusSubmitted || s == StatusAborted
}

// SessionState is a point-in-time copy of a controller's state, returned
// to clients. Mutating it has no effect on the live session.
type SessionState struct {
	CurrentQuestionIndex int                    `json:"current_question_index"`
	Answers              map[string]AnswerValue `json:"answers"`
	MarkedForReview      []string               `json:"marked_for_review"`
	Visited              []int                  `json:"visited"`
	TimeRemaining        int                    `json:"time_remaining"`
	ViolationCount       int                    `json:"violation_count"`
	Status               SessionStatus          `json:"status"`
}

// Snapshot is the durable per-device wire contract, written on every
// session mutation under the key session:{userId}:{testId}. Field names
// are fixed; changing them breaks resume for in-flight sessions.
type Snapshot struct {
	Answers              map[string]AnswerValue `json:"answers"`
	MarkedForReview      []string               `json:"markedForReview"`
	Visited              []int                  `json:"visited"`
	CurrentQuestionIndex int                    `json:"currentQuestionIndex"`
	TimeRemaining        int                    `json:"timeRemaining"`
	Timestamp            int64                  `json:"timestamp"`
}

// ResumePrompt tells the client what to offer after a snapshot was found
// at session start. When Mandatory is true the liveness marker was still
// present (same tab reloading) and only "Continue" may be offered.
type ResumePrompt struct {
	SnapshotFound bool `json:"snapshot_found"`
	Mandatory     bool `json:"mandatory"`
}

// SortedSet copies a string set into a deterministic slice.
func SortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SortedIndexSet copies an index set into a deterministic slice.
func SortedIndexSet(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
