package azuredevops

import (
	"context"
	"strings"
	"sync"

	ado "github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"
	"github.com/reillywatson/prhealth/internal/scm"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "azuredevops")

// Client reads pull requests and threads from one Azure DevOps project.
type Client struct {
	conn    *ado.Connection
	orgURL  string
	project string

	mu  sync.Mutex
	git git.Client
}

var _ scm.Source = (*Client)(nil)

// NewClient creates a client for the project at orgURL authenticating with a
// personal access token.
func NewClient(orgURL, project, pat string) *Client {
	orgURL = strings.TrimRight(orgURL, "/")
	return &Client{
		conn:    ado.NewPatConnection(orgURL, strings.TrimSpace(pat)),
		orgURL:  orgURL,
		project: project,
	}
}

// gitClient resolves the Git area client on first use. Resolution costs a
// location lookup against the organization, so the result is kept.
func (c *Client) gitClient(ctx context.Context) (git.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.git == nil {
		client, err := git.NewClient(ctx, c.conn)
		if err != nil {
			return nil, c.classifyError(err, "failed to connect to Azure DevOps")
		}
		c.git = client
	}
	return c.git, nil
}

// ListRepositories returns every Git repository in the project.
func (c *Client) ListRepositories(ctx context.Context) ([]scm.Repository, error) {
	client, err := c.gitClient(ctx)
	if err != nil {
		return nil, err
	}

	logger.WithField("project", c.project).Debug("listing repositories")
	resp, err := client.GetRepositories(ctx, git.GetRepositoriesArgs{Project: &c.project})
	if err != nil {
		return nil, c.classifyError(err, "failed to list repositories")
	}

	repos := []scm.Repository{}
	if resp != nil {
		for _, r := range *resp {
			repos = append(repos, toRepository(r))
		}
	}
	return repos, nil
}

// ListPullRequestsByProject returns one page of pull requests across the project.
func (c *Client) ListPullRequestsByProject(ctx context.Context, opts scm.ListOptions) ([]scm.PullRequest, error) {
	client, err := c.gitClient(ctx)
	if err != nil {
		return nil, err
	}

	skip := opts.Skip
	logger.WithFields(log.Fields{"project": c.project, "skip": skip}).Debug("listing pull requests")
	resp, err := client.GetPullRequestsByProject(ctx, git.GetPullRequestsByProjectArgs{
		Project:        &c.project,
		SearchCriteria: searchCriteria(opts),
		Top:            top(opts),
		Skip:           &skip,
	})
	if err != nil {
		return nil, c.classifyError(err, "failed to list pull requests")
	}
	return toPullRequests(resp), nil
}

// ListPullRequestsByRepo returns one page of pull requests for a repository.
func (c *Client) ListPullRequestsByRepo(ctx context.Context, repoID string, opts scm.ListOptions) ([]scm.PullRequest, error) {
	client, err := c.gitClient(ctx)
	if err != nil {
		return nil, err
	}

	skip := opts.Skip
	logger.WithFields(log.Fields{"repo": repoID, "skip": skip}).Debug("listing pull requests")
	resp, err := client.GetPullRequests(ctx, git.GetPullRequestsArgs{
		RepositoryId:   &repoID,
		Project:        &c.project,
		SearchCriteria: searchCriteria(opts),
		Top:            top(opts),
		Skip:           &skip,
	})
	if err != nil {
		return nil, c.classifyError(err, "failed to list pull requests")
	}
	return toPullRequests(resp), nil
}

func searchCriteria(opts scm.ListOptions) *git.GitPullRequestSearchCriteria {
	criteria := &git.GitPullRequestSearchCriteria{}
	if opts.Status != "" {
		status := git.PullRequestStatus(opts.Status)
		criteria.Status = &status
	}
	if opts.TimeRangeType != "" {
		rangeType := git.PullRequestTimeRangeType(opts.TimeRangeType)
		criteria.QueryTimeRangeType = &rangeType
	}
	if opts.MinTime != nil {
		criteria.MinTime = &ado.Time{Time: opts.MinTime.UTC()}
	}
	return criteria
}

func top(opts scm.ListOptions) *int {
	if opts.Top <= 0 {
		return nil
	}
	n := opts.Top
	return &n
}

// ListThreads returns the comment threads of a pull request.
func (c *Client) ListThreads(ctx context.Context, pr scm.PullRequest) ([]scm.Thread, error) {
	client, err := c.gitClient(ctx)
	if err != nil {
		return nil, err
	}

	repoID := pr.Repository.ID
	prID := int(pr.ID)
	resp, err := client.GetThreads(ctx, git.GetThreadsArgs{
		RepositoryId:  &repoID,
		PullRequestId: &prID,
		Project:       &c.project,
	})
	if err != nil {
		return nil, c.classifyError(err, "failed to list threads")
	}

	threads := []scm.Thread{}
	if resp != nil {
		for _, t := range *resp {
			threads = append(threads, toThread(t))
		}
	}
	return threads, nil
}
