package azuredevops

import (
	"encoding/json"
	"time"

	ado "github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/webapi"
	"github.com/reillywatson/prhealth/internal/scm"
)

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toTime(t *ado.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.Time
}

func toRepository(r git.GitRepository) scm.Repository {
	out := scm.Repository{Name: str(r.Name)}
	if r.Id != nil {
		out.ID = r.Id.String()
	}
	return out
}

func toIdentity(i *webapi.IdentityRef) scm.Identity {
	if i == nil {
		return scm.Identity{}
	}
	return scm.Identity{ID: str(i.Id), DisplayName: str(i.DisplayName)}
}

func toPullRequests(resp *[]git.GitPullRequest) []scm.PullRequest {
	prs := []scm.PullRequest{}
	if resp == nil {
		return prs
	}
	for _, pr := range *resp {
		prs = append(prs, toPullRequest(pr))
	}
	return prs
}

func toPullRequest(pr git.GitPullRequest) scm.PullRequest {
	out := scm.PullRequest{
		Title:        str(pr.Title),
		CreationDate: toTime(pr.CreationDate),
		CreatedBy:    toIdentity(pr.CreatedBy),
		URL:          str(pr.Url),
	}
	if pr.PullRequestId != nil {
		out.ID = int64(*pr.PullRequestId)
		out.Number = *pr.PullRequestId
	}
	if pr.Status != nil {
		out.Status = string(*pr.Status)
	}
	if pr.Repository != nil {
		out.Repository = toRepository(*pr.Repository)
	}
	if closed := toTime(pr.ClosedDate); !closed.IsZero() {
		out.ClosedDate = &closed
	}
	if pr.Reviewers != nil {
		for _, r := range *pr.Reviewers {
			reviewer := scm.Reviewer{
				Identity: scm.Identity{ID: str(r.Id), DisplayName: str(r.DisplayName)},
			}
			if r.Vote != nil {
				reviewer.Vote = *r.Vote
			}
			if r.IsContainer != nil {
				reviewer.IsContainer = *r.IsContainer
			}
			out.Reviewers = append(out.Reviewers, reviewer)
		}
	}
	return out
}

type propertyValue struct {
	Type  string `json:"$type"`
	Value any    `json:"$value"`
}

// threadType returns the CodeReviewThreadType property, or "" for plain
// discussion threads. The SDK leaves properties untyped, so they are decoded
// from their JSON form.
func threadType(properties any) string {
	if properties == nil {
		return ""
	}
	data, err := json.Marshal(properties)
	if err != nil {
		return ""
	}
	var props map[string]propertyValue
	if err := json.Unmarshal(data, &props); err != nil {
		return ""
	}
	s, _ := props["CodeReviewThreadType"].Value.(string)
	return s
}

func toThread(t git.GitPullRequestCommentThread) scm.Thread {
	out := scm.Thread{
		Type:            threadType(t.Properties),
		PublishedDate:   toTime(t.PublishedDate),
		LastUpdatedDate: toTime(t.LastUpdatedDate),
	}
	if t.Id != nil {
		out.ID = int64(*t.Id)
	}
	if t.Comments != nil {
		for _, c := range *t.Comments {
			out.Comments = append(out.Comments, scm.Comment{Author: toIdentity(c.Author)})
		}
	}
	return out
}
