package ghclient

import (
	"sync"
	"time"

	"github.com/orrery-cli/orrery/internal/model"
)

// RateLimitState tracks the rate-limit budget observed on API responses.
// It is shared between the transport (writer) and the client (reader).
type RateLimitState struct {
	mu        sync.RWMutex
	limited   bool
	resetAt   time.Time
	remaining int
	limit     int
	observed  bool
}

// IsLimited returns true if we are currently rate limited.
func (s *RateLimitState) IsLimited() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.limited {
		return false
	}

	// The limit clears once the reset time passes.
	if time.Now().After(s.resetAt) {
		return false
	}

	return true
}

// SetLimited marks the budget as exhausted until resetAt.
func (s *RateLimitState) SetLimited(limited bool, resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limited = limited
	s.resetAt = resetAt
}

// Update records the rate limit headers from a response.
func (s *RateLimitState) Update(remaining, limit int, resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remaining = remaining
	s.limit = limit
	s.resetAt = resetAt
	s.observed = true

	if remaining == 0 {
		s.limited = true
	}
}

// Observed reports whether any rate-limit headers have been seen this
// session. When false, callers fall back to a conservative estimate.
func (s *RateLimitState) Observed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.observed
}

// Snapshot returns the current budget as a model value.
func (s *RateLimitState) Snapshot() model.RateLimit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.RateLimit{
		Remaining: s.remaining,
		Limit:     s.limit,
		ResetAt:   s.resetAt,
	}
}
