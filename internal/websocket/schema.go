package websocket

import "encoding/json"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAutosave  Action = "autosave"
	ActionViolation Action = "violation"
	ActionAck       Action = "ack"
	ActionSubmit    Action = "submit"
	ActionPing      Action = "ping"
)

// RequestPayload is the single client message shape; which fields are set
// depends on Action. Answers carries the full draft for autosave, or the
// final answers for submit when the client still has unsaved changes. Kind
// names the breach for violation reports.
type RequestPayload struct {
	Action  Action          `json:"action"`
	Answers json.RawMessage `json:"answers,omitempty"`
	Kind    string          `json:"kind,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventStarted Event = "started"
	EventTick    Event = "tick"
	EventWarning Event = "warning"
	EventGraded  Event = "graded"
	EventError   Event = "error"
	EventSuccess Event = "success"
	EventPong    Event = "pong"
)

// StartedResponse confirms the attempt clock is running. Remaining is in
// seconds; -1 means the exam is unbounded.
type StartedResponse struct {
	Event     Event `json:"event"`
	Remaining int   `json:"remaining"`
}

type TickResponse struct {
	Event     Event `json:"event"`
	Remaining int   `json:"remaining"`
}

// WarningResponse tells the client to block the screen until the student
// acknowledges the violation.
type WarningResponse struct {
	Event      Event `json:"event"`
	Violations int   `json:"violations"`
	Remaining  int   `json:"remainingAllowed"`
}

// GradedResponse reports the final score. Auto marks a submission forced by
// the timer or the violation limit.
type GradedResponse struct {
	Event Event `json:"event"`
	Score int   `json:"score"`
	Total int   `json:"total"`
	Auto  bool  `json:"auto"`
}

type SuccessResponse struct {
	Event  Event  `json:"event"`
	Status string `json:"status"`
}

// ErrorResponse carries a failure to the client. Code mirrors the HTTP
// envelope's error codes so the client can branch without string-matching
// the message.
type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
