package azuredevops

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"
	"github.com/reillywatson/prhealth/internal/scm"
)

// ProbeResult is the outcome of ValidateConnection.
type ProbeResult struct {
	OK           bool     `json:"ok"`
	Type         scm.Kind `json:"type,omitempty"`
	Message      string   `json:"message,omitempty"`
	MissingScope string   `json:"missingScope,omitempty"`
}

var hostPrefix = regexp.MustCompile(`^https?://[^/]+/`)

// tokensURL points at the page where a new PAT can be created.
func tokensURL(orgURL string) string {
	return "https://dev.azure.com/" + orgName(orgURL) + "/_usersSettings/tokens"
}

// ValidateConnection checks that orgURL is reachable, that the token is
// accepted, and that it can read the project's repositories.
func ValidateConnection(ctx context.Context, orgURL, project, pat string) ProbeResult {
	c := NewClient(orgURL, project, pat)
	projects, err := core.NewClient(ctx, c.conn)
	if err != nil {
		return c.orgFailure(err)
	}
	return c.validate(ctx, projects)
}

func (c *Client) validate(ctx context.Context, projects core.Client) ProbeResult {
	// Step 1: organization reachability and token validity.
	one := 1
	if _, err := projects.GetProjects(ctx, core.GetProjectsArgs{Top: &one}); err != nil {
		return c.orgFailure(err)
	}

	// Step 2: project access and Code (Read) scope.
	client, err := c.gitClient(ctx)
	if err == nil {
		_, err = client.GetRepositories(ctx, git.GetRepositoriesArgs{Project: &c.project})
	}
	if err != nil {
		return c.projectFailure(err)
	}

	return ProbeResult{OK: true}
}

func (c *Client) orgFailure(err error) ProbeResult {
	code, ok := statusCode(err)
	switch {
	case !ok && isNetworkError(err):
		return ProbeResult{Type: scm.KindNetwork, Message: "Cannot reach " + c.orgURL + ". Check the org URL and your internet connection."}
	case !ok:
		return ProbeResult{Type: scm.KindAPI, Message: "Unexpected response: " + err.Error()}
	case isAuthStatus(code):
		return ProbeResult{Type: scm.KindAuth, Message: "PAT rejected. The token may be expired or invalid. Generate a new PAT at: " + tokensURL(c.orgURL)}
	case code == http.StatusForbidden:
		return ProbeResult{Type: scm.KindPermission, MissingScope: "Project and Team (Read)", Message: `PAT missing "Project and Team (Read)" permission.`}
	default:
		return ProbeResult{Type: scm.KindAPI, Message: "Unexpected response: " + statusText(code)}
	}
}

func (c *Client) projectFailure(err error) ProbeResult {
	code, ok := statusCode(err)
	switch {
	case !ok && isNetworkError(err):
		return ProbeResult{Type: scm.KindNetwork, Message: "Connected to org but cannot reach project. Check the project name."}
	case !ok:
		return ProbeResult{Type: scm.KindAPI, Message: "Project access check failed: " + err.Error()}
	case code == http.StatusForbidden:
		return ProbeResult{Type: scm.KindPermission, MissingScope: "Code (Read)", Message: `PAT missing "Code (Read)" permission. Add this scope at: ` + tokensURL(c.orgURL)}
	case code == http.StatusNotFound:
		return ProbeResult{Type: scm.KindNotFound, Message: `Project "` + c.project + `" not found in this org. Check the project name.`}
	case isAuthStatus(code):
		return ProbeResult{Type: scm.KindAuth, Message: "PAT rejected. The token may be expired or invalid. Generate a new PAT at: " + tokensURL(c.orgURL)}
	default:
		return ProbeResult{Type: scm.KindAPI, Message: "Project access check failed: " + statusText(code)}
	}
}

// orgName strips the scheme and host from an org URL.
func orgName(orgURL string) string {
	return strings.Trim(hostPrefix.ReplaceAllString(orgURL, ""), "/")
}
