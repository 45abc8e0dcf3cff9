package scm

import "time"

// PR status values.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusAbandoned = "abandoned"
)

// ThreadTypeVoteUpdate marks a thread created when a reviewer casts or changes a vote.
const ThreadTypeVoteUpdate = "VoteUpdate"

// Identity is a user (or group) known to the hosting service.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// Repository is a source repository inside a project.
type Repository struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Reviewer is a reviewer assignment on a pull request.
type Reviewer struct {
	Identity
	Vote        int  `json:"vote"`        // 0 means assigned but not acted
	IsContainer bool `json:"isContainer"` // group or team reviewer
}

// PullRequest is a snapshot of a pull request as fetched once per run.
type PullRequest struct {
	ID           int64      `json:"pullRequestId"`
	Number       int        `json:"number"`
	Title        string     `json:"title"`
	Status       string     `json:"status"`
	CreationDate time.Time  `json:"creationDate"`
	ClosedDate   *time.Time `json:"closedDate,omitempty"`
	CreatedBy    Identity   `json:"createdBy"`
	Repository   Repository `json:"repository"`
	Reviewers    []Reviewer `json:"reviewers"`
	URL          string     `json:"url"`
}

// Comment is a single comment in a discussion thread.
type Comment struct {
	Author Identity `json:"author"`
}

// Thread is a discussion thread on a pull request.
type Thread struct {
	ID              int64     `json:"id"`
	Type            string    `json:"type"`
	PublishedDate   time.Time `json:"publishedDate"`
	LastUpdatedDate time.Time `json:"lastUpdatedDate"`
	Comments        []Comment `json:"comments"`
}

// Voter returns the identity ID of the first comment's author, or "" when the
// thread has no comments.
func (t Thread) Voter() string {
	if len(t.Comments) == 0 {
		return ""
	}
	return t.Comments[0].Author.ID
}

// IsVoteUpdate reports whether the thread records a vote.
func (t Thread) IsVoteUpdate() bool {
	return t.Type == ThreadTypeVoteUpdate
}
