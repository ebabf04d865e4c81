package models

import (
	"strings"
	"time"
)

// ProfileCacheEntry is one row of the profile cache, keyed by lowercase
// username. Entries are upserted in place, one row per username.
type ProfileCacheEntry struct {
	Username  string    `json:"username"`
	Payload   string    `json:"payload"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CacheKey normalizes a username to its case-insensitive cache identity.
func CacheKey(username string) string {
	return strings.ToLower(username)
}
