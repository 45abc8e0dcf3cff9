package metrics

import (
	"sort"

	"github.com/reillywatson/prhealth/internal/scm"
)

type reviewerStat struct {
	id          string
	name        string
	reviewCount int
	reviewTimes []float64
}

// countsAsReview reports whether a reviewer assignment is attributed as a review:
// not the author, a non-zero vote, and an individual rather than a team.
func countsAsReview(pr scm.PullRequest, r scm.Reviewer) bool {
	return r.ID != pr.CreatedBy.ID && r.Vote != 0 && !r.IsContainer
}

// reviewerDistribution counts reviews per reviewer and averages each reviewer's
// own first-vote latency. Sorted by review count, descending; reviewers with
// equal counts keep first-seen order.
func reviewerDistribution(prs []scm.PullRequest, threads map[int64][]scm.Thread) []ReviewerSummary {
	var order []*reviewerStat
	stats := make(map[string]*reviewerStat)

	for _, pr := range prs {
		prThreads := threads[pr.ID]
		for _, r := range pr.Reviewers {
			if !countsAsReview(pr, r) {
				continue
			}

			stat, ok := stats[r.ID]
			if !ok {
				stat = &reviewerStat{id: r.ID, name: r.DisplayName}
				stats[r.ID] = stat
				order = append(order, stat)
			}
			stat.reviewCount++

			reviewerID := r.ID
			voted, found := earliestVote(prThreads, func(voter string) bool { return voter == reviewerID })
			if !found {
				continue
			}
			if h := hoursBetween(pr.CreationDate, voted); h >= 0 {
				stat.reviewTimes = append(stat.reviewTimes, h)
			}
		}
	}

	distribution := make([]ReviewerSummary, 0, len(order))
	for _, stat := range order {
		distribution = append(distribution, ReviewerSummary{
			ID:                   stat.id,
			Name:                 stat.name,
			ReviewCount:          stat.reviewCount,
			AvgTimeToReviewHours: mean(stat.reviewTimes),
		})
	}
	sort.SliceStable(distribution, func(i, j int) bool {
		return distribution[i].ReviewCount > distribution[j].ReviewCount
	})

	return distribution
}

// absentReviewers lists PR authors who never counted as a reviewer on anyone's PR.
func absentReviewers(prs []scm.PullRequest, distribution []ReviewerSummary) []string {
	reviewed := make(map[string]bool, len(distribution))
	for _, r := range distribution {
		reviewed[r.ID] = true
	}

	var creators []string
	names := make(map[string]string)
	for _, pr := range prs {
		id := pr.CreatedBy.ID
		if id == "" {
			continue
		}
		if _, ok := names[id]; !ok {
			creators = append(creators, id)
		}
		names[id] = pr.CreatedBy.DisplayName
	}

	absent := []string{}
	for _, id := range creators {
		if !reviewed[id] && names[id] != "" {
			absent = append(absent, names[id])
		}
	}

	return absent
}
