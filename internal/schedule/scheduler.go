// Package schedule paces repository enrichment against a remote rate
// budget. Work is split into fixed-size batches that run strictly
// sequentially; repositories inside one batch are enriched concurrently.
package schedule

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/orrery-cli/orrery/internal/constants"
	"github.com/orrery-cli/orrery/internal/log"
	"github.com/orrery-cli/orrery/internal/model"
)

// Config holds the pacing policy knobs.
type Config struct {
	// BatchSize is the number of repositories enriched per batch.
	BatchSize int
	// SafetyThreshold stops scheduling once the estimated remaining
	// budget is at or below this value.
	SafetyThreshold int
	// InterBatchDelay separates consecutive batches.
	InterBatchDelay time.Duration
}

// DefaultConfig returns the canonical pacing policy.
func DefaultConfig() Config {
	return Config{
		BatchSize:       constants.EnrichBatchSize,
		SafetyThreshold: constants.BudgetSafetyThreshold,
		InterBatchDelay: constants.InterBatchDelay,
	}
}

// EnrichFunc measures one repository in place. A returned error means
// the repository keeps its prior estimated values; it is never fatal to
// the run.
type EnrichFunc func(ctx context.Context, repo *model.Repository) error

// Result reports what one scheduling run accomplished.
type Result struct {
	// Processed repositories were handed to the enrich function.
	Processed int
	// Skipped repositories kept their estimated values because the
	// budget ran out first.
	Skipped int
	// Failed counts enrich calls that returned an error.
	Failed int
	// Remaining is the post-run budget estimate. It can drift from the
	// server's counter; the next list fetch re-synchronizes it.
	Remaining int
	// Batches is the number of batches executed.
	Batches int
}

// Scheduler partitions enrichment work into rate-budget-aware batches.
type Scheduler struct {
	cfg Config

	// sleep is replaced in tests to avoid real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Scheduler. Zero-valued config fields fall back to the
// canonical defaults.
func New(cfg Config) *Scheduler {
	def := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.SafetyThreshold <= 0 {
		cfg.SafetyThreshold = def.SafetyThreshold
	}
	if cfg.InterBatchDelay <= 0 {
		cfg.InterBatchDelay = def.InterBatchDelay
	}
	return &Scheduler{cfg: cfg, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// batchCost estimates the requests one batch will consume: a fixed
// per-repository cost plus one extra request per fork whose parent PR
// count is verified.
func batchCost(batch []*model.Repository) int {
	cost := 0
	for _, repo := range batch {
		cost += constants.RequestsPerRepo
		if repo.IsFork && repo.Parent != nil {
			cost += constants.RequestsPerForkParent
		}
	}
	return cost
}

// Run enriches repositories in batches until the list is exhausted, the
// budget estimate drops to the safety threshold, or the context is
// canceled. Repositories that are never reached keep their estimates.
func (s *Scheduler) Run(ctx context.Context, repos []*model.Repository, remaining int, enrich EnrichFunc) Result {
	result := Result{Remaining: remaining}
	total := len(repos)

	for start := 0; start < total; start += s.cfg.BatchSize {
		if ctx.Err() != nil {
			break
		}

		if result.Remaining <= s.cfg.SafetyThreshold {
			log.Info("stopping enrichment: rate budget low",
				"remaining", result.Remaining,
				"threshold", s.cfg.SafetyThreshold,
				"unprocessed", total-start)
			break
		}

		end := start + s.cfg.BatchSize
		if end > total {
			end = total
		}
		batch := repos[start:end]

		if result.Batches > 0 {
			if err := s.sleep(ctx, s.cfg.InterBatchDelay); err != nil {
				break
			}
		}

		log.Progress("enriching repositories %d-%d of %d", start+1, end, total)

		g, gctx := errgroup.WithContext(ctx)
		failures := make([]bool, len(batch))
		for i, repo := range batch {
			g.Go(func() error {
				if err := enrich(gctx, repo); err != nil {
					// Absorbed: the repository keeps its estimate.
					log.Warn("enrichment failed, keeping estimate",
						"repo", repo.FullName(), "error", err)
					failures[i] = true
				}
				return nil
			})
		}
		_ = g.Wait()

		for _, failed := range failures {
			if failed {
				result.Failed++
			}
		}

		result.Processed += len(batch)
		result.Remaining -= batchCost(batch)
		result.Batches++

		log.Debug("batch complete",
			"batch", result.Batches,
			"size", len(batch),
			"remaining_estimate", result.Remaining)
	}

	log.ProgressDone()
	result.Skipped = total - result.Processed
	return result
}
