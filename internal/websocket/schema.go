package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer    Action = "answer"
	ActionClear     Action = "clear"
	ActionMark      Action = "mark"
	ActionNavigate  Action = "navigate"
	ActionHeartbeat Action = "heartbeat"
	ActionViolation Action = "violation"
	ActionSubmit    Action = "submit"
	ActionPing      Action = "ping"
)

// RequestPayload is the superset of all client messages. The action field
// selects which of the remaining fields are meaningful.
type RequestPayload struct {
	Action Action `json:"action"`

	// answer / clear / mark
	QID string `json:"q_id,omitempty"`

	// answer: raw JSON value, string or string array depending on type
	Value string `json:"value,omitempty"`

	// navigate
	Index int `json:"index,omitempty"`

	// violation
	Kind string `json:"kind,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState   Event = "state"
	EventSaved   Event = "saved"
	EventWarning Event = "warning"
	EventGraded  Event = "graded"
	EventError   Event = "error"
	EventPong    Event = "pong"
)

// StateResponse pushes the current session state to the client.
type StateResponse struct {
	Event         Event  `json:"event"`
	Status        string `json:"status"`
	TimeRemaining int    `json:"time_remaining"`
	CurrentIndex  int    `json:"current_index"`
}

// SavedResponse acknowledges a mutation that was persisted.
type SavedResponse struct {
	Event  Event  `json:"event"`
	Status string `json:"status"`
}

// WarningResponse notifies the client of an integrity warning.
type WarningResponse struct {
	Event     Event  `json:"event"`
	Kind      string `json:"kind"`
	Count     int    `json:"count"`
	Remaining int    `json:"remaining"`
}

// GradedResponse carries the final scoring result after submission.
type GradedResponse struct {
	Event       Event   `json:"event"`
	Status      string  `json:"status"`
	Score       float64 `json:"score"`
	Correct     int     `json:"correct"`
	Wrong       int     `json:"wrong"`
	Unattempted int     `json:"unattempted"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
