package services

import (
	"errors"
	"fmt"
	"time"
)

// ErrUserNotFound indicates GitHub reports no user with the requested login.
var ErrUserNotFound = errors.New("user not found")

// RateLimitError indicates the GitHub API quota is exhausted. Remaining and
// Reset carry the upstream quota metadata when the API exposes it.
type RateLimitError struct {
	Remaining int
	Reset     time.Time
}

func (e *RateLimitError) Error() string {
	if !e.Reset.IsZero() {
		return fmt.Sprintf("GitHub API rate limit exceeded, resets at %s", e.Reset.Format(time.RFC3339))
	}
	return "GitHub API rate limit exceeded"
}
