package metrics

import (
	"time"

	"github.com/reillywatson/prhealth/internal/scm"
)

// cycleTimes measures creation-to-close for completed PRs. Negative durations
// come from clock skew or bad data and are dropped.
func cycleTimes(prs []scm.PullRequest) CycleTimes {
	hours := []float64{}
	for _, pr := range prs {
		if pr.Status != scm.StatusCompleted || pr.ClosedDate == nil {
			continue
		}
		if h := hoursBetween(pr.CreationDate, *pr.ClosedDate); h >= 0 {
			hours = append(hours, h)
		}
	}

	return CycleTimes{
		MeanHours:   mean(hours),
		MedianHours: median(hours),
		Unit:        "hours",
		PRCount:     len(hours),
	}
}

// earliestVote returns the earliest VoteUpdate thread accepted by match.
func earliestVote(threads []scm.Thread, match func(voter string) bool) (time.Time, bool) {
	var (
		earliest time.Time
		found    bool
	)
	for _, t := range threads {
		if !t.IsVoteUpdate() {
			continue
		}
		voter := t.Voter()
		if voter == "" || !match(voter) {
			continue
		}
		if !found || t.PublishedDate.Before(earliest) {
			earliest = t.PublishedDate
			found = true
		}
	}
	return earliest, found
}

// firstReviewDate is the earliest vote cast by anyone other than the author.
func firstReviewDate(threads []scm.Thread, creatorID string) (time.Time, bool) {
	return earliestVote(threads, func(voter string) bool { return voter != creatorID })
}

// timeToFirstReview measures creation-to-first-vote across all PRs. PRs with no
// qualifying vote are counted as missing; negative latencies are dropped.
func timeToFirstReview(prs []scm.PullRequest, threads map[int64][]scm.Thread) TimeToFirstReview {
	hours := []float64{}
	missing := 0

	for _, pr := range prs {
		first, ok := firstReviewDate(threads[pr.ID], pr.CreatedBy.ID)
		if !ok {
			missing++
			continue
		}
		if h := hoursBetween(pr.CreationDate, first); h >= 0 {
			hours = append(hours, h)
		}
	}

	above := 0
	for _, h := range hours {
		if h > HealthyReviewHours {
			above++
		}
	}

	return TimeToFirstReview{
		MeanHours:             mean(hours),
		MedianHours:           median(hours),
		Unit:                  "hours",
		PRCount:               len(hours),
		MissingCount:          missing,
		AboveThresholdCount:   above,
		HealthyThresholdHours: HealthyReviewHours,
	}
}
