package model

import "time"

// AppSetting is one portal configuration entry (key-value).
type AppSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Well-known setting keys.
const (
	SettingPortalTitle  = "portal_title"
	SettingGateRequired = "gate_required"
)

// UpdateSettingsRequest is the staff payload for bulk setting updates.
type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required"`
}
