package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v39/github"
	"github.com/reillywatson/prhealth/internal/cache"
	"github.com/reillywatson/prhealth/internal/scm"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

var logger = log.WithField("package", "github")

const (
	perPage = 100
	// The search API never returns more than this many results for one query.
	searchResultLimit = 1000
	fetchConcurrency  = 8
)

// Client reads pull requests and reviews for every repository of one GitHub
// owner. Repository IDs are repository names.
type Client struct {
	client *github.Client
	owner  string
	cache  cache.Cache
	kb     *cache.CacheKeyBuilder
}

var (
	_ scm.Source   = (*Client)(nil)
	_ scm.Hydrator = (*Client)(nil)
)

// NewClient creates a client for owner. baseURL is only needed for GitHub
// Enterprise and must point at the REST root (e.g. https://ghe.example.com/api/v3).
func NewClient(token, owner, baseURL string, cacheImpl cache.Cache) (*Client, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: strings.TrimSpace(token)},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	gh := github.NewClient(tc)
	if baseURL != "" {
		u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("failed to parse GitHub base URL: %w", err)
		}
		gh.BaseURL = u
	}

	return &Client{
		client: gh,
		owner:  owner,
		cache:  cacheImpl,
		kb:     cache.NewCacheKeyBuilder("github"),
	}, nil
}

// ListRepositories returns the owner's repositories. Owners that are users
// rather than organizations are listed through the user endpoint.
func (c *Client) ListRepositories(ctx context.Context) ([]scm.Repository, error) {
	var repos []scm.Repository
	opts := &github.RepositoryListByOrgOptions{ListOptions: github.ListOptions{PerPage: perPage}}
	for {
		page, resp, err := c.client.Repositories.ListByOrg(ctx, c.owner, opts)
		if err != nil {
			if isNotFound(err) && len(repos) == 0 {
				return c.listUserRepositories(ctx)
			}
			return nil, classifyError(err, "failed to list repositories")
		}
		for _, r := range page {
			repos = append(repos, toRepository(r))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return repos, nil
}

func (c *Client) listUserRepositories(ctx context.Context) ([]scm.Repository, error) {
	var repos []scm.Repository
	opts := &github.RepositoryListOptions{ListOptions: github.ListOptions{PerPage: perPage}}
	for {
		page, resp, err := c.client.Repositories.List(ctx, c.owner, opts)
		if err != nil {
			return nil, classifyError(err, "failed to list repositories")
		}
		for _, r := range page {
			repos = append(repos, toRepository(r))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return repos, nil
}

// ListPullRequestsByRepo returns the pull requests of one repository, newest
// first, covering the window opts.Skip..opts.Skip+opts.Top. Reviews are not
// fetched here; see HydratePullRequests.
func (c *Client) ListPullRequestsByRepo(ctx context.Context, repoID string, opts scm.ListOptions) ([]scm.PullRequest, error) {
	first, last := pageRange(opts)
	listOpts := &github.PullRequestListOptions{
		State:       "all",
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	out := []scm.PullRequest{}
	for page := first; page <= last; page++ {
		listOpts.Page = page
		prs, resp, err := c.client.PullRequests.List(ctx, c.owner, repoID, listOpts)
		if err != nil {
			return nil, classifyError(err, "failed to fetch pull requests for "+repoID)
		}

		reachedMin := false
		for _, pr := range prs {
			// Sorted newest first, so the first PR older than the window ends it.
			if opts.MinTime != nil && pr.GetCreatedAt().Before(*opts.MinTime) {
				reachedMin = true
				break
			}
			c.cachePullRequest(repoID, pr)
			out = append(out, toPullRequest(pr, repoID, nil))
		}

		if reachedMin || resp.NextPage == 0 {
			break
		}
	}
	return out, nil
}

// ListPullRequestsByProject searches pull requests across every repository
// of the owner. Results carry only what the search API returns; see
// HydratePullRequests.
func (c *Client) ListPullRequestsByProject(ctx context.Context, opts scm.ListOptions) ([]scm.PullRequest, error) {
	top := opts.Top
	if top <= 0 {
		top = perPage
	}

	issues, err := c.searchPullRequests(ctx, opts.MinTime, opts.Skip+top)
	if err != nil {
		return nil, err
	}

	out := []scm.PullRequest{}
	if opts.Skip >= len(issues) {
		return out, nil
	}
	for _, issue := range issues[opts.Skip:min(opts.Skip+top, len(issues))] {
		out = append(out, issueToPullRequest(issue))
	}
	return out, nil
}

// searchPullRequests collects at least want search results, newest first. A
// single query is capped at searchResultLimit results, so once a query is
// exhausted the next one is bounded above by the oldest creation time seen.
func (c *Client) searchPullRequests(ctx context.Context, minTime *time.Time, want int) ([]*github.Issue, error) {
	var (
		issues []*github.Issue
		seen   = make(map[int64]bool)
		upper  *time.Time
	)

	for {
		query := searchQuery(c.owner, minTime, upper)
		exhausted := true
		for page := 1; page <= searchResultLimit/perPage; page++ {
			result, err := c.searchPage(ctx, query, page)
			if err != nil {
				return nil, err
			}
			for _, issue := range result.Issues {
				if seen[issue.GetID()] {
					continue
				}
				seen[issue.GetID()] = true
				issues = append(issues, issue)
			}
			if len(result.Issues) < perPage {
				exhausted = false
				break
			}
			if len(issues) >= want {
				return issues, nil
			}
		}
		if !exhausted || len(issues) == 0 {
			return issues, nil
		}

		oldest := issues[len(issues)-1].GetCreatedAt()
		if upper != nil && !oldest.Before(*upper) {
			logger.WithField("created", oldest).Warnf("More than %d PRs share one creation time, search results are truncated", searchResultLimit)
			return issues, nil
		}
		logger.WithField("before", oldest).Debug("search limit reached, narrowing query")
		upper = &oldest
	}
}

func searchQuery(owner string, minTime, maxTime *time.Time) string {
	query := "is:pr user:" + owner
	switch {
	case minTime != nil && maxTime != nil:
		query += " created:" + minTime.UTC().Format(time.RFC3339) + ".." + maxTime.UTC().Format(time.RFC3339)
	case minTime != nil:
		query += " created:>=" + minTime.UTC().Format(time.RFC3339)
	case maxTime != nil:
		query += " created:<=" + maxTime.UTC().Format(time.RFC3339)
	}
	return query
}

// ListThreads returns one thread per submitted review.
func (c *Client) ListThreads(ctx context.Context, pr scm.PullRequest) ([]scm.Thread, error) {
	reviews, err := c.fetchReviews(ctx, pr.Repository.Name, pr.Number)
	if err != nil {
		return nil, err
	}
	return reviewThreads(reviews), nil
}

// HydratePullRequests fetches the full pull request and its reviews for each
// of prs, preserving order. PRs seen by ListPullRequestsByRepo come from the
// cache; search results need one extra request each.
func (c *Client) HydratePullRequests(ctx context.Context, prs []scm.PullRequest) ([]scm.PullRequest, error) {
	out := make([]scm.PullRequest, len(prs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, pr := range prs {
		i, pr := i, pr
		g.Go(func() error {
			repo := pr.Repository.Name
			full, err := c.fetchPullRequest(ctx, repo, pr.Number)
			if err != nil {
				return err
			}
			reviews, err := c.fetchReviews(ctx, repo, pr.Number)
			if err != nil {
				return err
			}
			out[i] = toPullRequest(full, repo, reviews)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.WithField("count", len(out)).Debug("hydrated pull requests")
	return out, nil
}

// pageRange translates an offset window into 1-based GitHub page numbers.
func pageRange(opts scm.ListOptions) (first, last int) {
	top := opts.Top
	if top <= 0 {
		top = perPage
	}
	first = opts.Skip/perPage + 1
	last = first + (top+perPage-1)/perPage - 1
	return first, last
}
