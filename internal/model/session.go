package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionPhase enumerates the session state machine phases.
type SessionPhase string

const (
	SessionPhaseIntro     SessionPhase = "INTRO"
	SessionPhaseInSection SessionPhase = "IN_SECTION"
	SessionPhaseSubmitted SessionPhase = "SUBMITTED"
)

// SessionSnapshot is the externally visible state of a live session, returned
// on page reload so the browser can restore answers and the countdown.
type SessionSnapshot struct {
	ID           uuid.UUID              `json:"id"`
	Phase        SessionPhase           `json:"phase"`
	Profile      Profile                `json:"profile"`
	CurrentPage  int                    `json:"current_page"`
	Answers      map[string]AnswerValue `json:"answers"`
	StartedAt    *time.Time             `json:"started_at,omitempty"`
	RemainingSec int                    `json:"remaining_sec"`
	Clock        string                 `json:"clock"` // MM:SS for display
}
