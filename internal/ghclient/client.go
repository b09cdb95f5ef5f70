// Package ghclient issues requests against the GitHub REST API and maps
// responses into domain records.
package ghclient

import (
	"context"
	"net/http"
	"strconv"
	"time"

	gh "github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/orrery-cli/orrery/internal/constants"
	"github.com/orrery-cli/orrery/internal/log"
	"github.com/orrery-cli/orrery/internal/model"
)

// rateLimitTransport wraps an http.RoundTripper to observe GitHub rate
// limit headers and short-circuit requests once the budget is spent.
type rateLimitTransport struct {
	base  http.RoundTripper
	state *RateLimitState
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.state.IsLimited() {
		return nil, ErrRateLimited
	}

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	remaining, limit, resetAt := parseRateLimitHeaders(resp)
	if remaining >= 0 && limit > 0 {
		t.state.Update(remaining, limit, resetAt)
	}

	if remaining >= 0 && remaining <= constants.RateLimitLowWatermark && remaining > 0 {
		log.Debug("rate limit low", "remaining", remaining, "resets_at", resetAt.Format(time.RFC3339))
	}

	// 403 with a zero remaining header (or 429) means the budget is gone.
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		if resp.Header.Get("X-RateLimit-Remaining") == "0" || resp.StatusCode == http.StatusTooManyRequests {
			t.state.SetLimited(true, resetAt)
			_ = resp.Body.Close()
			return nil, ErrRateLimited
		}
	}

	return resp, err
}

// parseRateLimitHeaders extracts rate limit info from response headers.
func parseRateLimitHeaders(resp *http.Response) (remaining, limit int, resetAt time.Time) {
	remaining = -1
	limit = -1

	if remainingStr := resp.Header.Get("X-RateLimit-Remaining"); remainingStr != "" {
		if rem, err := strconv.Atoi(remainingStr); err == nil {
			remaining = rem
		}
	}

	if limitStr := resp.Header.Get("X-RateLimit-Limit"); limitStr != "" {
		if lim, err := strconv.Atoi(limitStr); err == nil {
			limit = lim
		}
	}

	if resetStr := resp.Header.Get("X-RateLimit-Reset"); resetStr != "" {
		if resetTime, err := strconv.ParseInt(resetStr, 10, 64); err == nil {
			resetAt = time.Unix(resetTime, 0)
		}
	}

	return remaining, limit, resetAt
}

// Client wraps the GitHub API client. A token is optional: without one
// the client runs against the unauthenticated 60 requests/hour budget.
type Client struct {
	client *gh.Client
	state  *RateLimitState
}

// NewClient creates a client. token may be empty.
func NewClient(ctx context.Context, token string) *Client {
	state := &RateLimitState{}

	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Transport = &rateLimitTransport{base: httpClient.Transport, state: state}
	} else {
		httpClient = &http.Client{Transport: &rateLimitTransport{state: state}}
	}

	return &Client{
		client: gh.NewClient(httpClient),
		state:  state,
	}
}

// NewClientWithBase creates a client pointed at a custom API base URL.
// Tests use this with an httptest server.
func NewClientWithBase(baseURL string) (*Client, error) {
	state := &RateLimitState{}
	httpClient := &http.Client{Transport: &rateLimitTransport{state: state}}

	client, err := gh.NewClient(httpClient).WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, err
	}

	return &Client{client: client, state: state}, nil
}

// RateLimit returns the most recently observed budget.
func (c *Client) RateLimit() model.RateLimit {
	return c.state.Snapshot()
}

// RateLimitObserved reports whether any budget headers were seen.
func (c *Client) RateLimitObserved() bool {
	return c.state.Observed()
}

// RateLimits fetches the authoritative rate limit status from the API.
func (c *Client) RateLimits(ctx context.Context) (*gh.RateLimits, error) {
	limits, _, err := c.client.RateLimit.Get(ctx)
	if err != nil {
		return nil, err
	}
	return limits, nil
}

// ListRepositories fetches all public repositories for a user, newest
// activity first, along with the observed rate-limit state.
//
// A 403 with an exhausted budget maps to ErrRateLimited; a 404 maps to
// ErrUserNotFound.
func (c *Client) ListRepositories(ctx context.Context, user string) ([]model.Repository, model.RateLimit, error) {
	opts := &gh.RepositoryListOptions{
		Type: "public",
		Sort: "updated",
		ListOptions: gh.ListOptions{
			PerPage: constants.ListPerPage,
		},
	}

	var records []model.Repository

	for {
		repos, resp, err := c.client.Repositories.List(ctx, user, opts)
		if err != nil {
			return nil, c.state.Snapshot(), mapListError(err)
		}

		for _, repo := range repos {
			records = append(records, recordFromRepo(repo))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	log.Info("fetched repository list", "user", user, "count", len(records))
	return records, c.state.Snapshot(), nil
}

// mapListError translates a whole-fetch failure into the error taxonomy.
func mapListError(err error) error {
	if isRateLimitErr(err) {
		return ErrRateLimited
	}
	if httpStatus(err) == http.StatusNotFound {
		return ErrUserNotFound
	}
	return err
}

// recordFromRepo transforms a raw API repository into a domain record.
// Commit and branch counts start as closed-form estimates; enrichment
// upgrades them to measured values within the rate budget.
func recordFromRepo(repo *gh.Repository) model.Repository {
	r := model.Repository{
		Name:       repo.GetName(),
		Owner:      repo.GetOwner().GetLogin(),
		SizeKB:     repo.GetSize(),
		OpenIssues: repo.GetOpenIssuesCount(),
		Stars:      repo.GetStargazersCount(),
		Forks:      repo.GetForksCount(),
		Watchers:   repo.GetWatchersCount(),
		CreatedAt:  repo.GetCreatedAt().Time,
		UpdatedAt:  repo.GetUpdatedAt().Time,
		PushedAt:   repo.GetPushedAt().Time,
		Language:   repo.GetLanguage(),
		IsFork:     repo.GetFork(),
	}

	if parent := repo.GetParent(); parent != nil {
		r.Parent = &model.ParentRef{
			Owner: parent.GetOwner().GetLogin(),
			Name:  parent.GetName(),
		}
	}

	now := time.Now()
	r.DaysSinceCreation = r.AgeAt(now)
	if !r.PushedAt.IsZero() {
		r.LastCommitYear = r.PushedAt.Year()
		r.HasRecentCommits = now.Sub(r.PushedAt) <= constants.RecentCommitWindowDays*24*time.Hour
	}

	r.TotalCommits = EstimateCommits(r.Stars, r.Forks, r.DaysSinceCreation)
	r.BranchCount = EstimateBranches(r.Stars, r.Forks)
	r.CountProvenance = model.ProvenanceEstimated

	return r
}
