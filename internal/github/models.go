package github

import (
	"path"

	"github.com/google/go-github/v39/github"
	"github.com/reillywatson/prhealth/internal/scm"
)

// Review states as reported by the API.
const (
	reviewApproved         = "APPROVED"
	reviewChangesRequested = "CHANGES_REQUESTED"
	reviewDismissed        = "DISMISSED"
	reviewPending          = "PENDING"
)

const (
	voteApproved = 10
	voteRejected = -10

	threadTypeText = "Text"
)

func toRepository(r *github.Repository) scm.Repository {
	return scm.Repository{ID: r.GetName(), Name: r.GetName()}
}

// userIdentity uses the login as both ID and display name; list endpoints do
// not include the profile name.
func userIdentity(u *github.User) scm.Identity {
	return scm.Identity{ID: u.GetLogin(), DisplayName: u.GetLogin()}
}

func toPullRequest(pr *github.PullRequest, repo string, reviews []*github.PullRequestReview) scm.PullRequest {
	out := scm.PullRequest{
		ID:           pr.GetID(),
		Number:       pr.GetNumber(),
		Title:        pr.GetTitle(),
		Status:       scm.StatusActive,
		CreationDate: pr.GetCreatedAt(),
		CreatedBy:    userIdentity(pr.GetUser()),
		Repository:   scm.Repository{ID: repo, Name: repo},
		Reviewers:    reviewers(pr, reviews),
		URL:          pr.GetHTMLURL(),
	}

	if pr.GetState() == "closed" {
		if pr.MergedAt != nil {
			merged := pr.GetMergedAt()
			out.Status = scm.StatusCompleted
			out.ClosedDate = &merged
		} else {
			out.Status = scm.StatusAbandoned
			if pr.ClosedAt != nil {
				closed := pr.GetClosedAt()
				out.ClosedDate = &closed
			}
		}
	}
	return out
}

// issueToPullRequest converts a search hit. Search results do not say whether
// a closed PR was merged, so closed hits stay abandoned until hydrated.
func issueToPullRequest(issue *github.Issue) scm.PullRequest {
	repo := path.Base(issue.GetRepositoryURL())
	out := scm.PullRequest{
		ID:           issue.GetID(),
		Number:       issue.GetNumber(),
		Title:        issue.GetTitle(),
		Status:       scm.StatusActive,
		CreationDate: issue.GetCreatedAt(),
		CreatedBy:    userIdentity(issue.GetUser()),
		Repository:   scm.Repository{ID: repo, Name: repo},
		URL:          issue.GetHTMLURL(),
	}
	if issue.GetState() == "closed" {
		out.Status = scm.StatusAbandoned
		if issue.ClosedAt != nil {
			closed := issue.GetClosedAt()
			out.ClosedDate = &closed
		}
	}
	return out
}

// reviewers lists everyone who submitted a review, in order of their first
// review, with the vote of their last decisive review. Requested users and
// teams who have not reviewed follow with vote 0.
func reviewers(pr *github.PullRequest, reviews []*github.PullRequestReview) []scm.Reviewer {
	var out []scm.Reviewer
	index := make(map[string]int)

	for _, r := range reviews {
		if r.GetState() == reviewPending {
			continue
		}
		id := userIdentity(r.GetUser())
		i, ok := index[id.ID]
		if !ok {
			i = len(out)
			index[id.ID] = i
			out = append(out, scm.Reviewer{Identity: id})
		}

		switch r.GetState() {
		case reviewApproved:
			out[i].Vote = voteApproved
		case reviewChangesRequested:
			out[i].Vote = voteRejected
		case reviewDismissed:
			out[i].Vote = 0
		}
	}

	for _, u := range pr.RequestedReviewers {
		id := userIdentity(u)
		if _, ok := index[id.ID]; ok {
			continue
		}
		index[id.ID] = len(out)
		out = append(out, scm.Reviewer{Identity: id})
	}

	for _, t := range pr.RequestedTeams {
		out = append(out, scm.Reviewer{
			Identity:    scm.Identity{ID: "team:" + t.GetSlug(), DisplayName: t.GetName()},
			IsContainer: true,
		})
	}
	return out
}

// reviewThreads turns each submitted review into a thread. Reviews that
// change approval state are vote updates.
func reviewThreads(reviews []*github.PullRequestReview) []scm.Thread {
	threads := make([]scm.Thread, 0, len(reviews))
	for _, r := range reviews {
		if r.GetState() == reviewPending || r.SubmittedAt == nil {
			continue
		}

		threadType := threadTypeText
		switch r.GetState() {
		case reviewApproved, reviewChangesRequested, reviewDismissed:
			threadType = scm.ThreadTypeVoteUpdate
		}

		submitted := r.GetSubmittedAt()
		threads = append(threads, scm.Thread{
			ID:              r.GetID(),
			Type:            threadType,
			PublishedDate:   submitted,
			LastUpdatedDate: submitted,
			Comments:        []scm.Comment{{Author: userIdentity(r.GetUser())}},
		})
	}
	return threads
}
