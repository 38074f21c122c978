package websocket

import "github.com/emergency0committee-hub/eec-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer   Action = "answer"
	ActionNavigate Action = "navigate"
	ActionSubmit   Action = "submit"
	ActionPing     Action = "ping"
)

// RequestPayload is the single client frame shape. Which fields matter
// depends on the action: answer reads q_id and ans, navigate reads direction
// and page, submit and ping carry the action alone.
type RequestPayload struct {
	Action     Action             `json:"action"`
	QuestionID string             `json:"q_id,omitempty"`
	Answer     *model.AnswerValue `json:"ans,omitempty"`
	Direction  string             `json:"direction,omitempty"` // next | prev | jump
	Page       int                `json:"page,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventSuccess   Event = "success"
	EventTick      Event = "tick"
	EventSubmitted Event = "submitted"
	EventPong      Event = "pong"
)

type SuccessResponse struct {
	Event  Event  `json:"event"`
	Status string `json:"status"`
	Page   int    `json:"page,omitempty"`
}

// TickResponse is pushed every second while the session runs.
type TickResponse struct {
	Event        Event  `json:"event"`
	RemainingSec int    `json:"remaining_sec"`
	Display      string `json:"display"`
}

// SubmittedResponse is pushed once, on manual submit or timer expiry.
type SubmittedResponse struct {
	Event        Event  `json:"event"`
	SubmissionID string `json:"submission_id"`
	Forced       bool   `json:"forced"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
