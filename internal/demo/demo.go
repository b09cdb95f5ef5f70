// Package demo provides the fixed fallback dataset shown when the API
// rate limit is exhausted. The records are synthetic but shaped like
// real repositories so every mapping path still exercises.
package demo

import (
	"time"

	"github.com/orrery-cli/orrery/internal/model"
)

// User is the synthetic owner of the demo dataset.
const User = "demo"

// Repositories returns a fresh copy of the demo dataset. Counts are
// marked measured so no enrichment pass is attempted against them.
func Repositories() []model.Repository {
	now := time.Now()

	mk := func(name string, created time.Time, sizeKB, commits, branches, stars, forks, openPRs, openIssues int, language string, recent bool) model.Repository {
		r := model.Repository{
			Name:             name,
			Owner:            User,
			SizeKB:           sizeKB,
			TotalCommits:     commits,
			BranchCount:      branches,
			OpenPRs:          openPRs,
			OpenIssues:       openIssues,
			Stars:            stars,
			Forks:            forks,
			Watchers:         stars,
			CreatedAt:        created,
			UpdatedAt:        now,
			PushedAt:         now.AddDate(0, 0, -3),
			Language:         language,
			HasRecentCommits: recent,
			CountProvenance:  model.ProvenanceMeasured,
		}
		if !recent {
			r.PushedAt = created.AddDate(1, 0, 0)
		}
		r.DaysSinceCreation = r.AgeAt(now)
		r.LastCommitYear = r.PushedAt.Year()
		return r
	}

	return []model.Repository{
		mk("nebula", time.Date(2016, 2, 11, 0, 0, 0, 0, time.UTC), 84211, 4120, 8, 1930, 284, 12, 53, "Go", true),
		mk("pulsar", time.Date(2018, 7, 3, 0, 0, 0, 0, time.UTC), 12030, 980, 5, 412, 61, 3, 17, "Rust", true),
		mk("quark", time.Date(2019, 11, 24, 0, 0, 0, 0, time.UTC), 3400, 260, 3, 88, 9, 1, 4, "TypeScript", true),
		mk("redshift", time.Date(2020, 5, 18, 0, 0, 0, 0, time.UTC), 960, 130, 2, 25, 2, 0, 2, "Python", false),
		mk("comet-tail", time.Date(2021, 9, 2, 0, 0, 0, 0, time.UTC), 150, 42, 1, 4, 0, 0, 1, "Shell", false),
		mk("dust-ring", time.Date(2023, 1, 27, 0, 0, 0, 0, time.UTC), 45, 18, 1, 1, 0, 0, 0, "Go", true),
	}
}
