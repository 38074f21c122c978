package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// SectionKind enumerates the two question formats a section can hold.
type SectionKind string

const (
	SectionKindLikert SectionKind = "LIKERT"
	SectionKindChoice SectionKind = "CHOICE"
)

// Section is a contiguous ordered group of questions of a single kind.
// The ordered concatenation of sections defines the global question sequence.
type Section struct {
	ID       uuid.UUID   `json:"id"`
	Code     string      `json:"code"`
	Title    string      `json:"title"`
	Kind     SectionKind `json:"kind"`
	OrderNum int         `json:"order_num"`
}

// Question is a single item in the bank. Likert questions carry a RIASEC
// category letter and a finer-grained area tag; choice questions carry an
// aptitude domain, an option list, and the correct option index.
type Question struct {
	ID           uuid.UUID       `json:"id"`
	SectionID    uuid.UUID       `json:"section_id"`
	Text         string          `json:"text"`
	Kind         SectionKind     `json:"kind"`
	Category     string          `json:"category,omitempty"`
	Area         string          `json:"area,omitempty"`
	Domain       string          `json:"domain,omitempty"`
	Options      json.RawMessage `json:"options,omitempty"`
	CorrectIndex int             `json:"correct_index,omitempty"`
	OrderNum     int             `json:"order_num"`
}

// QuestionForParticipant is a question stripped of the correct option,
// cached in Redis and sent to the browser.
type QuestionForParticipant struct {
	ID       uuid.UUID       `json:"id"`
	Text     string          `json:"text"`
	Kind     SectionKind     `json:"kind"`
	Category string          `json:"category,omitempty"`
	Area     string          `json:"area,omitempty"`
	Domain   string          `json:"domain,omitempty"`
	Options  json.RawMessage `json:"options,omitempty"`
	OrderNum int             `json:"order_num"`
}

// BankSection groups participant-safe questions under their section header.
type BankSection struct {
	Section
	Questions []QuestionForParticipant `json:"questions"`
}

// BankPayload is the full questionnaire as served to a participant.
type BankPayload struct {
	Sections        []BankSection `json:"sections"`
	TotalQuestions  int           `json:"total_questions"`
	DurationMinutes int           `json:"duration_minutes"`
}

// ForParticipant strips grading data from a question.
func (q Question) ForParticipant() QuestionForParticipant {
	return QuestionForParticipant{
		ID:       q.ID,
		Text:     q.Text,
		Kind:     q.Kind,
		Category: q.Category,
		Area:     q.Area,
		Domain:   q.Domain,
		Options:  q.Options,
		OrderNum: q.OrderNum,
	}
}
