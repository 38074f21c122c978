package model

import (
	"time"

	"github.com/google/uuid"
)

// RadarPoint is one category/score pair for the result chart.
type RadarPoint struct {
	Category string `json:"category"`
	Score    int    `json:"score"`
}

// AreaPercent is the normalized score of one interest area.
type AreaPercent struct {
	Category string  `json:"category"`
	Area     string  `json:"area"`
	Percent  float64 `json:"percent"`
}

// Submission is the finished-session record, persisted field-for-field.
type Submission struct {
	ID               uuid.UUID      `json:"id"`
	TS               time.Time      `json:"ts"`
	Name             string         `json:"name"`
	Email            string         `json:"email"`
	School           string         `json:"school"`
	Top3             []string       `json:"top3"`
	RIASEC           map[string]int `json:"riasec"`
	RadarData        []RadarPoint   `json:"radar_data"`
	AreaPercents     []AreaPercent  `json:"area_percents"`
	InterestPercents []AreaPercent  `json:"interest_percents"`
	Aptitude         map[string]int `json:"aptitude"`
	DurationSec      int            `json:"duration_sec"`
	RemainingSec     int            `json:"remaining_sec"`
	Incomplete       bool           `json:"incomplete"`
}
