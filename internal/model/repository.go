// Package model contains domain types for the orrery application.
// These types are independent of any external GitHub library.
package model

import (
	"time"
)

// Provenance records whether a metric was derived from a closed-form
// estimate or measured against the API.
type Provenance string

const (
	// ProvenanceEstimated marks counts produced by the heuristic estimator.
	ProvenanceEstimated Provenance = "estimated"
	// ProvenanceMeasured marks counts upgraded by enrichment.
	ProvenanceMeasured Provenance = "measured"
)

// ParentRef identifies the upstream repository of a fork.
type ParentRef struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// FullName returns "owner/name".
func (p ParentRef) FullName() string {
	return p.Owner + "/" + p.Name
}

// Repository is the record the whole pipeline operates on. It is created
// from a raw API response, mutated only by the enrichment step (count
// estimates upgraded to measured values), and immutable thereafter within
// one fetch cycle.
type Repository struct {
	Name  string `json:"name"`
	Owner string `json:"owner"`

	// Size metrics
	SizeKB       int `json:"size"`
	TotalCommits int `json:"totalCommits"`
	BranchCount  int `json:"branchesCount"`
	OpenPRs      int `json:"openPRs"`
	OpenIssues   int `json:"openIssues"`

	// Popularity metrics
	Stars    int `json:"stars"`
	Forks    int `json:"forks"`
	Watchers int `json:"watchers"`

	// Temporal fields
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	PushedAt  time.Time `json:"pushedAt"`

	// Classification
	Language string     `json:"language,omitempty"`
	IsFork   bool       `json:"isFork"`
	Parent   *ParentRef `json:"parent,omitempty"`

	// Derived flags
	HasRecentCommits  bool `json:"hasRecentCommits"`
	DaysSinceCreation int  `json:"daysSinceCreation"`
	LastCommitYear    int  `json:"lastCommitYear"`

	// CountProvenance tracks whether commit/branch/PR/issue counts are
	// heuristic estimates or measured values.
	CountProvenance Provenance `json:"countProvenance"`
}

// FullName returns "owner/name".
func (r *Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// AgeAt returns the repository age in whole days as of the given instant.
// Returns 0 for repositories created after that instant or lacking a
// creation date.
func (r *Repository) AgeAt(at time.Time) int {
	if r.CreatedAt.IsZero() || r.CreatedAt.After(at) {
		return 0
	}
	return int(at.Sub(r.CreatedAt).Hours() / 24)
}

// RateLimit is the rate-budget state observed on the most recent API
// response, attached to every acquisition result.
type RateLimit struct {
	Remaining int       `json:"remaining"`
	Limit     int       `json:"limit"`
	ResetAt   time.Time `json:"resetAt"`
}

// Exhausted reports whether the budget is spent. Consumers must treat
// this as a distinct signal from other fetch failures.
func (l RateLimit) Exhausted() bool {
	return l.Remaining == 0 && l.Limit > 0
}

// FilterMode selects how the temporal filter interprets the snapshot year.
type FilterMode string

const (
	// ModeAll keeps repositories created in or before the snapshot year.
	ModeAll FilterMode = "all"
	// ModeActive keeps repositories pushed to during the snapshot year.
	ModeActive FilterMode = "active"
)

// SnapshotContext drives one full recomputation pass. It is ephemeral:
// recreated whenever the user moves the timeline or toggles the filter.
type SnapshotContext struct {
	Date time.Time  `json:"date"`
	Mode FilterMode `json:"mode"`
}

// Year returns the snapshot calendar year.
func (s SnapshotContext) Year() int {
	return s.Date.Year()
}
