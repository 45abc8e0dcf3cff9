package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/reillywatson/prhealth/internal/scm"
)

var baseTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// fakeSource implements scm.Source for tests.
type fakeSource struct {
	mu sync.Mutex

	repos    []scm.Repository
	reposErr error

	// prsFor returns the total number of PRs available for a window.
	prsFor  func(opts scm.ListOptions) int
	prs     []scm.PullRequest
	listErr error

	threads    map[int64][]scm.Thread
	threadErrs map[int64]error

	listCalls   []scm.ListOptions
	repoIDs     []string
	threadCalls map[int64]int
}

func (f *fakeSource) ListRepositories(ctx context.Context) ([]scm.Repository, error) {
	return f.repos, f.reposErr
}

func (f *fakeSource) ListPullRequestsByProject(ctx context.Context, opts scm.ListOptions) ([]scm.PullRequest, error) {
	return f.page("", opts)
}

func (f *fakeSource) ListPullRequestsByRepo(ctx context.Context, repoID string, opts scm.ListOptions) ([]scm.PullRequest, error) {
	return f.page(repoID, opts)
}

func (f *fakeSource) page(repoID string, opts scm.ListOptions) ([]scm.PullRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls = append(f.listCalls, opts)
	f.repoIDs = append(f.repoIDs, repoID)
	if f.listErr != nil {
		return nil, f.listErr
	}

	all := f.prs
	if f.prsFor != nil {
		all = generatePRs(f.prsFor(opts))
	}
	if opts.Skip >= len(all) {
		return []scm.PullRequest{}, nil
	}
	end := min(opts.Skip+opts.Top, len(all))
	return all[opts.Skip:end], nil
}

func (f *fakeSource) ListThreads(ctx context.Context, pr scm.PullRequest) ([]scm.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.threadCalls == nil {
		f.threadCalls = make(map[int64]int)
	}
	f.threadCalls[pr.ID]++
	if err := f.threadErrs[pr.ID]; err != nil {
		return nil, err
	}
	return f.threads[pr.ID], nil
}

func generatePRs(n int) []scm.PullRequest {
	prs := make([]scm.PullRequest, n)
	for i := range prs {
		prs[i] = scm.PullRequest{
			ID:           int64(i + 1),
			Title:        fmt.Sprintf("PR %d", i+1),
			Status:       scm.StatusCompleted,
			CreationDate: baseTime.Add(-time.Duration(i) * time.Hour),
			CreatedBy:    scm.Identity{ID: "author", DisplayName: "Author"},
			Repository:   scm.Repository{ID: "repo-1", Name: "api"},
		}
	}
	return prs
}

// windowDays converts a list request's MinTime back to a whole number of days,
// or 0 for the unbounded window.
func windowDays(opts scm.ListOptions) int {
	if opts.MinTime == nil {
		return 0
	}
	return int(baseTime.Sub(*opts.MinTime).Hours()/24 + 0.5)
}

func newTestEngine(source scm.Source) (*Engine, *[]time.Duration) {
	var sleeps []time.Duration
	e := NewEngine(source)
	e.now = func() time.Time { return baseTime }
	e.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return e, &sleeps
}

func identity(id string) scm.Identity {
	return scm.Identity{ID: id, DisplayName: "User " + id}
}

func reviewer(id string, vote int) scm.Reviewer {
	return scm.Reviewer{Identity: identity(id), Vote: vote}
}

func voteThread(voter string, published time.Time) scm.Thread {
	return scm.Thread{
		Type:            scm.ThreadTypeVoteUpdate,
		PublishedDate:   published,
		LastUpdatedDate: published,
		Comments:        []scm.Comment{{Author: identity(voter)}},
	}
}

func textThread(author string, updated time.Time) scm.Thread {
	return scm.Thread{
		Type:            "Text",
		PublishedDate:   updated,
		LastUpdatedDate: updated,
		Comments:        []scm.Comment{{Author: identity(author)}},
	}
}

func hoursAfter(h float64) time.Time {
	return baseTime.Add(time.Duration(h * float64(time.Hour)))
}

func timePtr(t time.Time) *time.Time {
	return &t
}
