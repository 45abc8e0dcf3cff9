package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/reillywatson/prhealth/internal/scm"
)

// lastActivity is the latest thread update, or the creation time when the PR
// has no threads.
func lastActivity(pr scm.PullRequest, threads []scm.Thread) time.Time {
	var latest time.Time
	for _, t := range threads {
		if t.LastUpdatedDate.IsZero() {
			continue
		}
		if t.LastUpdatedDate.After(latest) {
			latest = t.LastUpdatedDate
		}
	}
	if latest.IsZero() {
		return pr.CreationDate
	}
	return latest
}

// stalePRs returns active PRs idle for more than staleDays, most stale first.
func stalePRs(prs []scm.PullRequest, threads map[int64][]scm.Thread, staleDays int, now time.Time) []StalePR {
	stale := []StalePR{}

	for _, pr := range prs {
		if pr.Status != scm.StatusActive {
			continue
		}
		idleDays := now.Sub(lastActivity(pr, threads[pr.ID])).Hours() / 24
		if idleDays <= float64(staleDays) {
			continue
		}

		stale = append(stale, StalePR{
			Title:     pr.Title,
			Repo:      orUnknown(pr.Repository.Name),
			DaysStale: int(math.Floor(idleDays)),
			CreatedBy: orUnknown(pr.CreatedBy.DisplayName),
			URL:       pr.URL,
		})
	}

	sort.SliceStable(stale, func(i, j int) bool {
		return stale[i].DaysStale > stale[j].DaysStale
	})

	return stale
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
