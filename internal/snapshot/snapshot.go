// Package snapshot selects the subset of repositories visible at a
// point in time and re-derives their time-dependent fields.
package snapshot

import (
	"time"

	"github.com/orrery-cli/orrery/internal/constants"
	"github.com/orrery-cli/orrery/internal/model"
)

// Context builds the snapshot context for a calendar year: the snapshot
// instant is the end of that year.
func Context(year int, mode model.FilterMode) model.SnapshotContext {
	return model.SnapshotContext{
		Date: time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC),
		Mode: mode,
	}
}

// Manager filters repositories against a snapshot. The last-commit-year
// lookup is memoized per record for repeated filter calls within one
// session; a Manager is not safe for concurrent use.
type Manager struct {
	lastCommitYear map[string]int
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		lastCommitYear: make(map[string]int),
	}
}

// LastCommitYear returns the calendar year of the record's last push.
// Records that were never pushed report ok=false.
func (m *Manager) LastCommitYear(r *model.Repository) (int, bool) {
	if r.PushedAt.IsZero() {
		return 0, false
	}
	key := r.FullName()
	if year, ok := m.lastCommitYear[key]; ok {
		return year, true
	}
	year := r.PushedAt.Year()
	m.lastCommitYear[key] = year
	return year, true
}

// Visible reports whether one record is visible at the snapshot year
// under the given mode:
//
//   - ModeAll keeps records created in or before the year.
//   - ModeActive keeps records whose last push happened exactly in the
//     year.
//
// Records lacking the relevant date field are excluded, never defaulted
// to visible.
func (m *Manager) Visible(r *model.Repository, year int, mode model.FilterMode) bool {
	switch mode {
	case model.ModeActive:
		pushYear, ok := m.LastCommitYear(r)
		return ok && pushYear == year
	default:
		return !r.CreatedAt.IsZero() && r.CreatedAt.Year() <= year
	}
}

// Filter returns copies of the records visible at the snapshot year.
func (m *Manager) Filter(records []model.Repository, year int, mode model.FilterMode) []model.Repository {
	visible := make([]model.Repository, 0, len(records))

	for i := range records {
		if m.Visible(&records[i], year, mode) {
			visible = append(visible, records[i])
		}
	}

	return visible
}

// Apply filters records for the snapshot and recomputes the
// time-dependent fields on the surviving copies. The input slice is not
// mutated; every snapshot change is a full recomputation pass.
//
// Recency is judged against the snapshot instant, capped at the current
// time so a current-year snapshot reflects what was actually fetched.
func (m *Manager) Apply(records []model.Repository, snap model.SnapshotContext) []model.Repository {
	visible := m.Filter(records, snap.Year(), snap.Mode)
	asOf := snap.Date
	if now := time.Now().UTC(); now.Before(asOf) {
		asOf = now
	}
	for i := range visible {
		visible[i].DaysSinceCreation = visible[i].AgeAt(snap.Date)
		visible[i].HasRecentCommits = recentAt(&visible[i], asOf)
	}
	return visible
}

func recentAt(r *model.Repository, asOf time.Time) bool {
	if r.PushedAt.IsZero() || r.PushedAt.After(asOf) {
		return false
	}
	return asOf.Sub(r.PushedAt) <= constants.RecentCommitWindowDays*24*time.Hour
}
