package cache

import (
	"time"

	"github.com/orrery-cli/orrery/internal/model"
)

// Version should be incremented when the cache format changes
// or when the record structure changes, to invalidate old entries.
const Version = 1

// DetailFields are the measured per-repository counts persisted by the
// enrichment step.
type DetailFields struct {
	TotalCommits int `json:"totalCommits"`
	BranchCount  int `json:"branchesCount"`
	OpenPRs      int `json:"openPRs"`
	OpenIssues   int `json:"openIssues"`
}

// BasicEntry stores the raw repository list for one user.
type BasicEntry struct {
	Repos    []model.Repository `json:"repos"`
	CachedAt time.Time          `json:"cachedAt"`
	Version  int                `json:"version"`
}

// DetailEntry stores the measured counts for one repository of one user.
type DetailEntry struct {
	Detail   DetailFields `json:"detail"`
	CachedAt time.Time    `json:"cachedAt"`
	Version  int          `json:"version"`
}

// Stats contains cache statistics broken down by entry kind.
type Stats struct {
	BasicTotal  int
	BasicValid  int
	DetailTotal int
	DetailValid int
}
