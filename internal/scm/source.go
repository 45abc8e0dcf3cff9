package scm

import (
	"context"
	"time"
)

// Status filter accepted by ListPullRequests.
const StatusAll = "all"

// TimeRangeCreated filters pull requests on their creation time.
const TimeRangeCreated = "created"

// ListOptions are the query parameters for a page of pull requests.
type ListOptions struct {
	Status        string
	TimeRangeType string
	MinTime       *time.Time // nil means unbounded
	Top           int
	Skip          int
}

// Source is the set of typed read operations the metrics engine needs from a
// hosting service. Implementations return *Error for failures.
type Source interface {
	// ListRepositories returns every repository in the configured project.
	ListRepositories(ctx context.Context) ([]Repository, error)
	// ListPullRequestsByProject returns one page of pull requests across the project.
	ListPullRequestsByProject(ctx context.Context, opts ListOptions) ([]PullRequest, error)
	// ListPullRequestsByRepo returns one page of pull requests for one repository.
	ListPullRequestsByRepo(ctx context.Context, repoID string, opts ListOptions) ([]PullRequest, error)
	// ListThreads returns the discussion threads of a pull request.
	ListThreads(ctx context.Context, pr PullRequest) ([]Thread, error)
}

// Hydrator is implemented by sources whose list calls return partial pull
// requests. The engine hydrates only the pull requests it keeps, so a source
// can defer per-PR detail requests until the retrieval window is settled.
type Hydrator interface {
	// HydratePullRequests returns prs with every field filled in, in order.
	HydratePullRequests(ctx context.Context, prs []PullRequest) ([]PullRequest, error)
}
