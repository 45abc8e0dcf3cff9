package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/reillywatson/prhealth/internal/scm"
)

const (
	pageSize = 1000
	maxPages = 10
	// fallbackThreshold is the result size at which an automatic window is
	// considered too large and a narrower one is tried.
	fallbackThreshold = 500
)

// defaultWindows are tried in order when no explicit window is given. nil is
// the unbounded window; the last entry is always accepted.
var defaultWindows = []*int{nil, intPtr(365), intPtr(90)}

type retrievalResult struct {
	prs         []scm.PullRequest
	daysCovered *int
	capHit      bool
}

// fetchPRsWithFallback retrieves the working set of pull requests. An explicit
// override is a single attempt. Otherwise each window in defaultWindows is
// fetched in turn until one returns fewer than fallbackThreshold PRs or the
// final window is reached.
func (e *Engine) fetchPRsWithFallback(ctx context.Context, repoID string, daysOverride int) (retrievalResult, error) {
	windows := defaultWindows
	if daysOverride > 0 {
		windows = []*int{intPtr(daysOverride)}
	}

	var result retrievalResult
	for i, window := range windows {
		opts := scm.ListOptions{
			Status:        scm.StatusAll,
			TimeRangeType: scm.TimeRangeCreated,
		}
		if window != nil {
			minTime := e.now().Add(-time.Duration(*window) * 24 * time.Hour)
			opts.MinTime = &minTime
		}

		prs, capHit, err := e.fetchPagedPRs(ctx, repoID, opts)
		if err != nil {
			return retrievalResult{}, err
		}
		result = retrievalResult{prs: prs, capHit: capHit}
		if window != nil {
			result.daysCovered = intPtr(*window)
		}

		last := i == len(windows)-1
		if daysOverride <= 0 && len(prs) >= fallbackThreshold && !last {
			logger.WithField("window", windowLabel(window)).Infof("Got %d PRs, narrowing the time window", len(prs))
			continue
		}
		break
	}

	return result, nil
}

// fetchPagedPRs pages through one window until a short page signals the end of
// data or maxPages pages have been read.
func (e *Engine) fetchPagedPRs(ctx context.Context, repoID string, opts scm.ListOptions) ([]scm.PullRequest, bool, error) {
	var all []scm.PullRequest
	opts.Top = pageSize
	opts.Skip = 0

	for page := 0; page < maxPages; page++ {
		var (
			prs []scm.PullRequest
			err error
		)
		if repoID != "" {
			prs, err = e.source.ListPullRequestsByRepo(ctx, repoID, opts)
		} else {
			prs, err = e.source.ListPullRequestsByProject(ctx, opts)
		}
		if err != nil {
			return nil, false, err
		}

		all = append(all, prs...)
		if len(prs) < pageSize {
			return all, false, nil
		}
		opts.Skip += pageSize
	}

	return all, true, nil
}

func windowLabel(window *int) string {
	if window == nil {
		return "unbounded"
	}
	return strconv.Itoa(*window) + "d"
}

func intPtr(v int) *int {
	return &v
}
