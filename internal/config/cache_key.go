package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// CandidateLoginKey returns the cache key for a candidate's active login session.
func (r *CacheKeyStruct) CandidateLoginKey(candidateID string) string {
	return fmt.Sprintf("login:candidate:%s", candidateID)
}

// SessionDeadlineKey returns the cache key for a test session's current deadline.
func (r *CacheKeyStruct) SessionDeadlineKey(sessionID string) string {
	return fmt.Sprintf("session:%s:deadline", sessionID)
}

var CacheKey = NewCacheKeyStruct()
