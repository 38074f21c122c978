package model

import (
	"time"

	"github.com/google/uuid"
)

// AccessCode is a locally issued one-time gate code. Used flips false→true
// exactly once; a consumed code never validates again.
type AccessCode struct {
	ID        uuid.UUID  `json:"id"`
	Code      string     `json:"code"`
	CreatedAt time.Time  `json:"created_at"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// GenerateCodesRequest is the staff payload for issuing a batch of one-time codes.
type GenerateCodesRequest struct {
	Count int `json:"count" binding:"required,min=1,max=500"`
}
