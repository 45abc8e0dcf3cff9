package metrics

import (
	"context"
	"time"

	"github.com/reillywatson/prhealth/internal/scm"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "metrics")

const (
	// DefaultStaleDays is the staleness threshold used when the caller gives none.
	DefaultStaleDays = 3
	// HealthyReviewHours is the time-to-first-review above which a PR counts as slow.
	HealthyReviewHours = 4.0
)

// Options are the caller-supplied parameters of a run.
type Options struct {
	RepoName     string // optional, case-insensitive
	DaysOverride int    // > 0 pins the retrieval window to exactly this many days
	StaleDays    *int   // nil uses DefaultStaleDays; 0 flags every idle PR
}

// Engine computes pull request health metrics from a hosting service.
type Engine struct {
	source scm.Source
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewEngine creates an engine reading from source.
func NewEngine(source scm.Source) *Engine {
	return &Engine{
		source: source,
		now:    time.Now,
		sleep:  sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run fetches pull requests and their threads and derives every metric. It
// returns either a complete result or an *scm.Error, never both.
func (e *Engine) Run(ctx context.Context, opts Options) (*Result, error) {
	staleDays := DefaultStaleDays
	if opts.StaleDays != nil {
		staleDays = *opts.StaleDays
	}

	var repoID string
	if opts.RepoName != "" {
		logger.Info("Resolving repository name...")
		id, err := e.resolveRepository(ctx, opts.RepoName)
		if err != nil {
			return nil, err
		}
		repoID = id
	}

	logger.Info("Fetching PRs...")
	retrieved, err := e.fetchPRsWithFallback(ctx, repoID, opts.DaysOverride)
	if err != nil {
		return nil, scm.AsError(err)
	}
	prs := retrieved.prs
	logger.Infof("Fetched %d PRs.", len(prs))

	if h, ok := e.source.(scm.Hydrator); ok && len(prs) > 0 {
		logger.Info("Fetching PR details...")
		prs, err = h.HydratePullRequests(ctx, prs)
		if err != nil {
			return nil, scm.AsError(err)
		}
	}

	logger.Info("Fetching PR threads...")
	threads, err := e.fetchAllThreads(ctx, prs)
	if err != nil {
		return nil, scm.AsError(err)
	}

	now := e.now()
	distribution := reviewerDistribution(prs, threads)

	return &Result{
		Summary:              summarize(prs, retrieved, now),
		CycleTimes:           cycleTimes(prs),
		TimeToFirstReview:    timeToFirstReview(prs, threads),
		ReviewerDistribution: distribution,
		AbsentReviewers:      absentReviewers(prs, distribution),
		StalePRs:             stalePRs(prs, threads, staleDays, now),
		Bottleneck:           findBottleneck(distribution),
		Thresholds: Thresholds{
			StaleThresholdDays: staleDays,
			HealthyReviewHours: HealthyReviewHours,
		},
		Errors: []string{},
	}, nil
}

func summarize(prs []scm.PullRequest, retrieved retrievalResult, now time.Time) Summary {
	s := Summary{
		TotalPRs:    len(prs),
		RepoNames:   []string{},
		DaysCovered: retrieved.daysCovered,
		FetchedAt:   now.UTC().Format(time.RFC3339),
		CapHit:      retrieved.capHit,
	}

	seen := make(map[string]bool)
	for _, pr := range prs {
		switch pr.Status {
		case scm.StatusActive:
			s.ActivePRs++
		case scm.StatusCompleted:
			s.CompletedPRs++
		}
		name := pr.Repository.Name
		if name != "" && !seen[name] {
			seen[name] = true
			s.RepoNames = append(s.RepoNames, name)
		}
	}
	s.ReposAnalyzed = len(s.RepoNames)

	return s
}
