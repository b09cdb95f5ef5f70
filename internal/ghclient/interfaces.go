package ghclient

import (
	"context"

	"github.com/orrery-cli/orrery/internal/model"
)

// Fetcher defines the remote metadata operations the pipeline depends
// on. This interface enables mocking the API in unit tests.
type Fetcher interface {
	// ListRepositories fetches the user's public repositories and the
	// rate-limit state observed on the response.
	ListRepositories(ctx context.Context, user string) ([]model.Repository, model.RateLimit, error)

	// Pagination-derived counts.
	CountCommits(ctx context.Context, owner, repo string) (int, error)
	CountBranches(ctx context.Context, owner, repo string) (int, error)

	// OpenIssuesAndPRs returns open PR and issue counts for a repository.
	OpenIssuesAndPRs(ctx context.Context, owner, repo string) (openPRs, openIssues int, err error)

	// ForkPRsToParent counts open PRs from a fork into its parent.
	ForkPRsToParent(ctx context.Context, forkOwner, parentOwner, parentRepo, branch string) (int, error)

	// RateLimit returns the most recently observed budget.
	RateLimit() model.RateLimit

	// RateLimitObserved reports whether budget headers were seen this
	// session.
	RateLimitObserved() bool
}

// Ensure Client implements Fetcher.
var _ Fetcher = (*Client)(nil)
