package metrics

const (
	// minBottleneckReviews keeps reviewers with only one or two reviews out of
	// bottleneck detection.
	minBottleneckReviews = 3
	// concentrationShare is the share of all reviews above which a single
	// reviewer is considered a concentration risk.
	concentrationShare = 0.5
)

// findBottleneck picks the reviewer most holding up reviews, or nil.
func findBottleneck(distribution []ReviewerSummary) *Bottleneck {
	total := 0
	var candidates []ReviewerSummary
	for _, r := range distribution {
		total += r.ReviewCount
		if r.ReviewCount >= minBottleneckReviews {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 || total == 0 {
		return nil
	}

	var slowest *ReviewerSummary
	concentrated := &candidates[0]
	for i := range candidates {
		c := &candidates[i]
		if c.AvgTimeToReviewHours != nil && (slowest == nil || *c.AvgTimeToReviewHours > *slowest.AvgTimeToReviewHours) {
			slowest = c
		}
		if c.ReviewCount > concentrated.ReviewCount {
			concentrated = c
		}
	}
	isConcentrated := float64(concentrated.ReviewCount)/float64(total) > concentrationShare

	reviewer, kind := classifyBottleneck(slowest, concentrated, isConcentrated)
	if reviewer == nil {
		return nil
	}

	return &Bottleneck{
		Name:                 reviewer.Name,
		AvgTimeToReviewHours: reviewer.AvgTimeToReviewHours,
		ReviewShare:          float64(reviewer.ReviewCount) / float64(total),
		Type:                 kind,
	}
}

// classifyBottleneck decides between the slowest reviewer and the most
// concentrated one. When they are the same person and concentration holds the
// type is both. Otherwise the slowest reviewer wins whenever one exists, and
// the concentrated reviewer is reported only when nobody has latency data.
func classifyBottleneck(slowest, concentrated *ReviewerSummary, isConcentrated bool) (*ReviewerSummary, BottleneckType) {
	switch {
	case slowest != nil && isConcentrated && slowest.ID == concentrated.ID:
		return slowest, BottleneckBoth
	case slowest != nil:
		return slowest, BottleneckSlow
	case isConcentrated:
		return concentrated, BottleneckConcentrated
	default:
		return nil, ""
	}
}
