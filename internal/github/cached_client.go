package github

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/go-github/v39/github"
	"github.com/reillywatson/prhealth/internal/cache"
)

// Cached entries only need to survive one run, from listing through
// hydration to thread retrieval.
const (
	reviewsTTL = time.Hour
	prTTL      = time.Hour
	searchTTL  = 10 * time.Minute
)

func (c *Client) cachePullRequest(repo string, pr *github.PullRequest) {
	if err := c.cache.Set(c.kb.PRKey(c.owner, repo, pr.GetNumber()), pr, prTTL); err != nil {
		logger.WithError(err).WithField("pr", pr.GetNumber()).Warn("Failed to cache PR")
	}
}

// fetchPullRequest returns one pull request, reading through the cache.
func (c *Client) fetchPullRequest(ctx context.Context, repo string, number int) (*github.PullRequest, error) {
	var cached github.PullRequest
	if err := c.cache.Get(c.kb.PRKey(c.owner, repo, number), &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logger.WithError(err).WithField("pr", number).Warn("Cache error for PR")
	}

	pr, _, err := c.client.PullRequests.Get(ctx, c.owner, repo, number)
	if err != nil {
		return nil, classifyError(err, fmt.Sprintf("failed to fetch pull request %s#%d", repo, number))
	}
	c.cachePullRequest(repo, pr)
	return pr, nil
}

// searchPage returns one page of search results, reading through the cache.
// Later retrieval windows repeat the pages earlier ones already read.
func (c *Client) searchPage(ctx context.Context, query string, page int) (*github.IssuesSearchResult, error) {
	cacheKey := c.kb.SearchPageKey(query, page)
	var cached github.IssuesSearchResult
	if err := c.cache.Get(cacheKey, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logger.WithError(err).WithField("page", page).Warn("Cache error for search page")
	}

	result, _, err := c.client.Search.Issues(ctx, query, &github.SearchOptions{
		Sort:        "created",
		Order:       "desc",
		ListOptions: github.ListOptions{Page: page, PerPage: perPage},
	})
	if err != nil {
		return nil, classifyError(err, "failed to search pull requests")
	}

	if err := c.cache.Set(cacheKey, result, searchTTL); err != nil {
		logger.WithError(err).WithField("page", page).Warn("Failed to cache search page")
	}
	return result, nil
}

// fetchReviews returns every review on a pull request, reading through the cache.
func (c *Client) fetchReviews(ctx context.Context, repo string, number int) ([]*github.PullRequestReview, error) {
	cacheKey := c.kb.PRReviewsKey(c.owner, repo, number)
	var cached []*github.PullRequestReview
	if err := c.cache.Get(cacheKey, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logger.WithError(err).WithField("pr", number).Warn("Cache error for PR reviews")
	}

	var reviews []*github.PullRequestReview
	opts := &github.ListOptions{PerPage: perPage}
	for {
		page, resp, err := c.client.PullRequests.ListReviews(ctx, c.owner, repo, number, opts)
		if err != nil {
			return nil, classifyError(err, fmt.Sprintf("failed to fetch reviews for %s#%d", repo, number))
		}
		reviews = append(reviews, page...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if err := c.cache.Set(cacheKey, reviews, reviewsTTL); err != nil {
		logger.WithError(err).WithField("pr", number).Warn("Failed to cache PR reviews")
	}
	return reviews, nil
}
