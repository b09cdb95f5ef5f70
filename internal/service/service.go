// Package service orchestrates data flow between the GitHub API, the
// on-disk cache, and the enrichment scheduler.
package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/orrery-cli/orrery/internal/cache"
	"github.com/orrery-cli/orrery/internal/constants"
	"github.com/orrery-cli/orrery/internal/ghclient"
	"github.com/orrery-cli/orrery/internal/log"
	"github.com/orrery-cli/orrery/internal/model"
	"github.com/orrery-cli/orrery/internal/schedule"
	"github.com/orrery-cli/orrery/internal/snapshot"
)

// Options controls which records a fetch surfaces.
type Options struct {
	Year int
	Mode model.FilterMode

	// Exclude, when set, drops records whose owner/name form matches
	// before any budget is spent on them.
	Exclude func(fullName string) bool
}

// FetchResult is the outcome of a full acquisition pass.
type FetchResult struct {
	// Repositories is the subset visible at the requested snapshot,
	// with ages recomputed relative to the snapshot date.
	Repositories []model.Repository

	// AllRepositories is the full unfiltered set, used for timeline
	// navigation without refetching.
	AllRepositories []model.Repository

	// RateLimit is the budget observed at the end of the pass.
	RateLimit model.RateLimit

	// FromCache reports whether the basic list came from the cache.
	FromCache bool

	// Enrichment summarizes the detail-fetch pass, zero when nothing
	// needed enriching.
	Enrichment schedule.Result
}

// RepoService orchestrates acquisition: list, filter, merge cached
// details, enrich under budget, and write back.
type RepoService struct {
	fetcher ghclient.Fetcher
	store   cache.Storer
	sched   *schedule.Scheduler
	snaps   *snapshot.Manager

	// generation guards cache write-back: a pass that started before
	// the latest one skips its writes instead of clobbering them.
	generation atomic.Uint64
}

// New creates a RepoService. A nil store disables caching.
func New(fetcher ghclient.Fetcher, store cache.Storer, sched *schedule.Scheduler) *RepoService {
	return &RepoService{
		fetcher: fetcher,
		store:   store,
		sched:   sched,
		snaps:   snapshot.NewManager(),
	}
}

// FetchRepositories runs a full acquisition pass for user. The basic
// list is served from cache when fresh; detail counts are merged from
// cache and only the gaps are fetched, subject to the remaining rate
// budget. List-level rate limiting surfaces as ghclient.ErrRateLimited
// and an unknown user as ghclient.ErrUserNotFound; individual detail
// failures are absorbed and leave estimates in place.
func (s *RepoService) FetchRepositories(ctx context.Context, user string, opts Options) (*FetchResult, error) {
	gen := s.generation.Add(1)

	all, fromCache, err := s.basicList(ctx, user)
	if err != nil {
		return nil, err
	}

	all = dropExcluded(all, opts.Exclude)

	s.mergeCachedDetails(user, all)

	targets := s.enrichTargets(all, opts)

	remaining := constants.ConservativeRemaining
	if rl := s.fetcher.RateLimit(); s.fetcher.RateLimitObserved() {
		remaining = rl.Remaining
	}

	var enrichment schedule.Result
	if len(targets) > 0 {
		enrichment = s.sched.Run(ctx, targets, remaining, s.enrichFunc(user, gen))
	}

	result := &FetchResult{
		Repositories:    s.snaps.Apply(all, snapshot.Context(opts.Year, opts.Mode)),
		AllRepositories: all,
		RateLimit:       s.rateLimit(fromCache),
		FromCache:       fromCache,
		Enrichment:      enrichment,
	}

	return result, nil
}

// basicList returns the repository list for user, cache-first.
func (s *RepoService) basicList(ctx context.Context, user string) ([]model.Repository, bool, error) {
	if s.store != nil {
		if repos, ok := s.store.GetBasic(user); ok {
			log.Debug("basic list served from cache", "user", user, "repos", len(repos))
			return repos, true, nil
		}
	}

	repos, _, err := s.fetcher.ListRepositories(ctx, user)
	if err != nil {
		return nil, false, fmt.Errorf("listing repositories for %s: %w", user, err)
	}

	if s.store != nil {
		if err := s.store.SetBasic(user, repos); err != nil {
			log.Debug("failed to cache basic list", "user", user, "error", err)
		}
	}

	return repos, false, nil
}

// mergeCachedDetails overlays fresh detail entries onto the records,
// upgrading their provenance to measured.
func (s *RepoService) mergeCachedDetails(user string, all []model.Repository) {
	if s.store == nil {
		return
	}

	details := s.store.GetAllDetail(user)
	if len(details) == 0 {
		return
	}

	for i := range all {
		d, ok := details[all[i].Name]
		if !ok {
			continue
		}
		applyDetail(&all[i], d)
	}
}

// enrichTargets selects the records worth spending budget on: visible
// at the snapshot and either still estimated, or forks whose PR counts
// are re-verified every pass so stale fork semantics self-heal.
func (s *RepoService) enrichTargets(all []model.Repository, opts Options) []*model.Repository {
	var targets []*model.Repository

	for i := range all {
		r := &all[i]
		if !s.snaps.Visible(r, opts.Year, opts.Mode) {
			continue
		}
		if r.CountProvenance == model.ProvenanceEstimated || (r.IsFork && r.Parent != nil) {
			targets = append(targets, r)
		}
	}

	return targets
}

// enrichFunc returns the per-repository enrichment callback. Each
// metric that fetches successfully replaces its estimate; a metric
// that fails keeps the estimate and the error propagates to the
// scheduler for logging only.
func (s *RepoService) enrichFunc(user string, gen uint64) schedule.EnrichFunc {
	return func(ctx context.Context, r *model.Repository) error {
		var firstErr error

		commits, err := s.fetcher.CountCommits(ctx, r.Owner, r.Name)
		if err != nil {
			firstErr = err
		} else {
			r.TotalCommits = commits
		}

		branches, err := s.fetcher.CountBranches(ctx, r.Owner, r.Name)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
		} else {
			r.BranchCount = branches
		}

		prs, issues, err := s.fetcher.OpenIssuesAndPRs(ctx, r.Owner, r.Name)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
		} else {
			r.OpenPRs = prs
			r.OpenIssues = issues
		}

		if r.IsFork && r.Parent != nil {
			n, err := s.fetcher.ForkPRsToParent(ctx, r.Owner, r.Parent.Owner, r.Parent.Name, "")
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
			} else {
				r.OpenPRs = n
			}
		}

		if firstErr != nil {
			return firstErr
		}

		r.CountProvenance = model.ProvenanceMeasured
		s.writeBack(user, gen, r)

		return nil
	}
}

// writeBack persists measured counts unless a newer pass has started,
// in which case the stale pass drops its writes.
func (s *RepoService) writeBack(user string, gen uint64, r *model.Repository) {
	if s.store == nil {
		return
	}
	if s.generation.Load() != gen {
		log.Debug("skipping stale cache write-back", "repo", r.FullName())
		return
	}

	d := cache.DetailFields{
		TotalCommits: r.TotalCommits,
		BranchCount:  r.BranchCount,
		OpenPRs:      r.OpenPRs,
		OpenIssues:   r.OpenIssues,
	}
	if err := s.store.SetDetail(user, r.Name, d); err != nil {
		log.Debug("failed to cache details", "repo", r.FullName(), "error", err)
	}
}

// rateLimit reports the budget to surface with the result. When the
// whole pass was served from cache and no request ever went out, the
// real remaining is unknown and a conservative unauthenticated budget
// is assumed.
func (s *RepoService) rateLimit(fromCache bool) model.RateLimit {
	if s.fetcher.RateLimitObserved() {
		return s.fetcher.RateLimit()
	}
	if fromCache {
		return model.RateLimit{
			Remaining: constants.ConservativeRemaining,
			Limit:     constants.ConservativeRemaining,
		}
	}
	return s.fetcher.RateLimit()
}

// dropExcluded filters out records the caller's exclude predicate
// matches. Excluded records never reach enrichment or the scene.
func dropExcluded(all []model.Repository, exclude func(string) bool) []model.Repository {
	if exclude == nil {
		return all
	}

	kept := make([]model.Repository, 0, len(all))
	for _, r := range all {
		if exclude(r.FullName()) {
			log.Debug("dropping excluded repository", "repo", r.FullName())
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

func applyDetail(r *model.Repository, d cache.DetailFields) {
	r.TotalCommits = d.TotalCommits
	r.BranchCount = d.BranchCount
	r.OpenPRs = d.OpenPRs
	r.OpenIssues = d.OpenIssues
	r.CountProvenance = model.ProvenanceMeasured
}
