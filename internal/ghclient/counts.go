package ghclient

import (
	"context"
	"errors"
	"net/http"

	gh "github.com/google/go-github/v57/github"

	"github.com/orrery-cli/orrery/internal/constants"
)

// httpStatus extracts the HTTP status code from a go-github error, or 0.
func httpStatus(err error) int {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode
	}
	return 0
}

// isRateLimitErr reports whether an error means the budget is exhausted.
func isRateLimitErr(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var rlErr *gh.RateLimitError
	if errors.As(err, &rlErr) {
		return true
	}
	var abuseErr *gh.AbuseRateLimitError
	return errors.As(err, &abuseErr)
}

// isEmptyResource reports whether a status means the collection is empty
// or missing (404 on a deleted repo, 409 on an empty one).
func isEmptyResource(status int) bool {
	return status == http.StatusNotFound || status == http.StatusConflict
}

// countFromResponse implements the pagination counting trick: the request
// used one item per page, so the "last" page number equals the total
// count. When no pagination links came back the whole collection fit in
// the single page.
func countFromResponse(resp *gh.Response, pageLen int) int {
	if resp.LastPage > 0 {
		return resp.LastPage
	}
	return pageLen
}

// CountCommits returns the total number of commits on the default branch
// without fetching the commit list. Empty or missing repositories count
// as zero.
func (c *Client) CountCommits(ctx context.Context, owner, repo string) (int, error) {
	opts := &gh.CommitsListOptions{
		ListOptions: gh.ListOptions{PerPage: constants.CountPerPage},
	}

	commits, resp, err := c.client.Repositories.ListCommits(ctx, owner, repo, opts)
	if err != nil {
		if isEmptyResource(httpStatus(err)) {
			return 0, nil
		}
		return 0, err
	}

	return countFromResponse(resp, len(commits)), nil
}

// CountBranches returns the total number of branches. A missing or empty
// repository defaults to one, since every non-empty repository has at
// least its default branch.
func (c *Client) CountBranches(ctx context.Context, owner, repo string) (int, error) {
	opts := &gh.BranchListOptions{
		ListOptions: gh.ListOptions{PerPage: constants.CountPerPage},
	}

	branches, resp, err := c.client.Repositories.ListBranches(ctx, owner, repo, opts)
	if err != nil {
		if isEmptyResource(httpStatus(err)) {
			return 1, nil
		}
		return 0, err
	}

	count := countFromResponse(resp, len(branches))
	if count < 1 {
		count = 1
	}
	return count, nil
}

// OpenIssuesAndPRs returns open pull request and issue counts. The
// issues endpoint mixes both; a pull-request link on an entry marks it
// as a PR.
func (c *Client) OpenIssuesAndPRs(ctx context.Context, owner, repo string) (openPRs, openIssues int, err error) {
	opts := &gh.IssueListByRepoOptions{
		State: "open",
		ListOptions: gh.ListOptions{
			PerPage: constants.ListPerPage,
		},
	}

	for {
		issues, resp, err := c.client.Issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			if isEmptyResource(httpStatus(err)) {
				return 0, 0, nil
			}
			return 0, 0, err
		}

		for _, issue := range issues {
			if issue.IsPullRequest() {
				openPRs++
			} else {
				openIssues++
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return openPRs, openIssues, nil
}

// ForkPRsToParent counts open pull requests from a fork's branch into
// its parent repository.
func (c *Client) ForkPRsToParent(ctx context.Context, forkOwner, parentOwner, parentRepo, branch string) (int, error) {
	if branch == "" {
		branch = "main"
	}

	opts := &gh.PullRequestListOptions{
		State: "open",
		Head:  forkOwner + ":" + branch,
		ListOptions: gh.ListOptions{
			PerPage: constants.ListPerPage,
		},
	}

	prs, _, err := c.client.PullRequests.List(ctx, parentOwner, parentRepo, opts)
	if err != nil {
		if isEmptyResource(httpStatus(err)) {
			return 0, nil
		}
		return 0, err
	}

	return len(prs), nil
}
