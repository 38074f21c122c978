package model

// Profile identifies the participant taking an assessment session.
type Profile struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	School string `json:"school"`
}

// StartSessionRequest is the payload for starting the test from the intro page.
// Field-level validation (lengths, email shape) is owned by the session
// engine so the same rules apply regardless of transport.
type StartSessionRequest struct {
	Name   string `json:"name" binding:"max=100"`
	Email  string `json:"email" binding:"max=255"`
	School string `json:"school" binding:"max=150"`
}

// VerifyCodeRequest is the payload for the access-code gate.
type VerifyCodeRequest struct {
	Code string `json:"code" binding:"required,max=20"`
}

// RecordAnswerRequest merges one answer into the session.
type RecordAnswerRequest struct {
	QuestionID string      `json:"question_id" binding:"required"`
	Answer     AnswerValue `json:"answer" binding:"required"`
}

// NavigateRequest moves the current page. Action is one of next, prev, jump;
// Page is only read for jump.
type NavigateRequest struct {
	Action string `json:"action" binding:"required,oneof=next prev jump"`
	Page   int    `json:"page" binding:"min=0"`
}
