package ghclient

import "errors"

// ErrRateLimited is returned when the GitHub API rate limit has been
// exceeded. Callers surface it to the user and may fall back to the
// demo dataset; it is never retried automatically.
var ErrRateLimited = errors.New("rate limited")

// ErrUserNotFound is returned when the requested user does not exist.
// It is surfaced as a user-facing message with no fallback fetch.
var ErrUserNotFound = errors.New("user not found")
