package metrics

// Result is the single output document of a run.
type Result struct {
	Summary              Summary           `json:"summary"`
	CycleTimes           CycleTimes        `json:"cycleTimes"`
	TimeToFirstReview    TimeToFirstReview `json:"timeToFirstReview"`
	ReviewerDistribution []ReviewerSummary `json:"reviewerDistribution"`
	AbsentReviewers      []string          `json:"absentReviewers"`
	StalePRs             []StalePR         `json:"stalePrs"`
	Bottleneck           *Bottleneck       `json:"bottleneck"`
	Thresholds           Thresholds        `json:"thresholds"`
	Errors               []string          `json:"errors"`
}

// Summary describes the working set of pull requests.
type Summary struct {
	TotalPRs      int      `json:"totalPrs"`
	ActivePRs     int      `json:"activePrs"`
	CompletedPRs  int      `json:"completedPrs"`
	ReposAnalyzed int      `json:"reposAnalyzed"`
	RepoNames     []string `json:"repoNames"`
	DaysCovered   *int     `json:"daysCovered"` // nil when no time window was applied
	FetchedAt     string   `json:"fetchedAt"`
	CapHit        bool     `json:"capHit"`
}

// CycleTimes holds creation-to-close statistics for completed pull requests.
type CycleTimes struct {
	MeanHours   *float64 `json:"meanHours"`
	MedianHours *float64 `json:"medianHours"`
	Unit        string   `json:"unit"`
	PRCount     int      `json:"prCount"`
}

// TimeToFirstReview holds creation-to-first-vote statistics.
type TimeToFirstReview struct {
	MeanHours             *float64 `json:"meanHours"`
	MedianHours           *float64 `json:"medianHours"`
	Unit                  string   `json:"unit"`
	PRCount               int      `json:"prCount"`
	MissingCount          int      `json:"missingCount"`
	AboveThresholdCount   int      `json:"aboveThresholdCount"`
	HealthyThresholdHours float64  `json:"healthyThresholdHours"`
}

// ReviewerSummary is one row of the reviewer distribution.
type ReviewerSummary struct {
	ID                   string   `json:"-"`
	Name                 string   `json:"name"`
	ReviewCount          int      `json:"reviewCount"`
	AvgTimeToReviewHours *float64 `json:"avgTimeToReviewHours"`
}

// StalePR is an active pull request without recent activity.
type StalePR struct {
	Title     string `json:"title"`
	Repo      string `json:"repo"`
	DaysStale int    `json:"daysStale"`
	CreatedBy string `json:"createdBy"`
	URL       string `json:"url"`
}

// BottleneckType classifies why a reviewer is a bottleneck.
type BottleneckType string

const (
	BottleneckSlow         BottleneckType = "slow"
	BottleneckConcentrated BottleneckType = "concentrated"
	BottleneckBoth         BottleneckType = "both"
)

// Bottleneck is the reviewer most holding up reviews.
type Bottleneck struct {
	Name                 string         `json:"name"`
	AvgTimeToReviewHours *float64       `json:"avgTimeToReviewHours"`
	ReviewShare          float64        `json:"reviewShare"`
	Type                 BottleneckType `json:"type"`
}

// Thresholds echoes the thresholds used for the run.
type Thresholds struct {
	StaleThresholdDays int     `json:"staleThresholdDays"`
	HealthyReviewHours float64 `json:"healthyReviewHours"`
}
