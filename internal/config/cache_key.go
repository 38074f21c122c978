package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionStartKey returns the cache key for a session's start timestamp
func (r *CacheKeyStruct) SessionStartKey(sessionID string) string {
	return fmt.Sprintf("session:%s:started_at", sessionID)
}

// SessionProfileKey returns the cache key for a session's participant profile
func (r *CacheKeyStruct) SessionProfileKey(sessionID string) string {
	return fmt.Sprintf("session:%s:profile", sessionID)
}

// SessionAnswersKey returns the cache key for a session's autosaved answers
func (r *CacheKeyStruct) SessionAnswersKey(sessionID string) string {
	return fmt.Sprintf("session:%s:answers", sessionID)
}

// SessionPageKey returns the cache key for a session's current page
func (r *CacheKeyStruct) SessionPageKey(sessionID string) string {
	return fmt.Sprintf("session:%s:page", sessionID)
}

// BankPayloadKey returns the cache key for the participant-safe question bank
func (r *CacheKeyStruct) BankPayloadKey() string {
	return "bank:payload"
}

var CacheKey = NewCacheKeyStruct()
