package azuredevops

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"
	"github.com/reillywatson/prhealth/internal/scm"
	"github.com/stretchr/testify/assert"
)

type fakeCore struct {
	core.Client

	err  error
	args []core.GetProjectsArgs
}

func (f *fakeCore) GetProjects(ctx context.Context, args core.GetProjectsArgs) (*core.GetProjectsResponseValue, error) {
	f.args = append(f.args, args)
	if f.err != nil {
		return nil, f.err
	}
	return &core.GetProjectsResponseValue{}, nil
}

func statusError(code int) error {
	if code == 0 {
		return nil
	}
	return wrappedError(code)
}

func TestValidateConnection(t *testing.T) {
	tests := []struct {
		name          string
		projectsCode  int
		reposCode     int
		want          ProbeResult
		wantReposCall bool
	}{
		{
			name:          "ok",
			want:          ProbeResult{OK: true},
			wantReposCall: true,
		},
		{
			name:         "token rejected",
			projectsCode: http.StatusUnauthorized,
			want:         ProbeResult{Type: scm.KindAuth},
		},
		{
			name:         "sign-in redirect",
			projectsCode: http.StatusNonAuthoritativeInfo,
			want:         ProbeResult{Type: scm.KindAuth},
		},
		{
			name:         "missing project scope",
			projectsCode: http.StatusForbidden,
			want:         ProbeResult{Type: scm.KindPermission, MissingScope: "Project and Team (Read)"},
		},
		{
			name:         "org error",
			projectsCode: http.StatusInternalServerError,
			want:         ProbeResult{Type: scm.KindAPI},
		},
		{
			name:          "missing code scope",
			reposCode:     http.StatusForbidden,
			want:          ProbeResult{Type: scm.KindPermission, MissingScope: "Code (Read)"},
			wantReposCall: true,
		},
		{
			name:          "unknown project",
			reposCode:     http.StatusNotFound,
			want:          ProbeResult{Type: scm.KindNotFound},
			wantReposCall: true,
		},
		{
			name:          "project error",
			reposCode:     http.StatusBadGateway,
			want:          ProbeResult{Type: scm.KindAPI},
			wantReposCall: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projects := &fakeCore{err: statusError(tt.projectsCode)}
			repos := &fakeGit{err: statusError(tt.reposCode)}
			c := newTestClient(repos)

			got := c.validate(context.Background(), projects)

			assert.Equal(t, tt.want.OK, got.OK)
			assert.Equal(t, tt.want.Type, got.Type)
			assert.Equal(t, tt.want.MissingScope, got.MissingScope)
			if !tt.want.OK {
				assert.NotEmpty(t, got.Message)
			}
			if assert.Len(t, projects.args, 1) {
				assert.Equal(t, 1, *projects.args[0].Top)
			}
			assert.Equal(t, tt.wantReposCall, len(repos.reposArgs) == 1)
		})
	}
}

func TestValidateConnection_Unreachable(t *testing.T) {
	projects := &fakeCore{err: &url.Error{Op: "Get", URL: "https://dev.azure.com/org/_apis/projects", Err: errors.New("no such host")}}
	c := newTestClient(&fakeGit{})

	got := c.validate(context.Background(), projects)

	assert.False(t, got.OK)
	assert.Equal(t, scm.KindNetwork, got.Type)
	assert.Contains(t, got.Message, "https://dev.azure.com/org")
}

func TestValidateConnection_AuthMessageLinksTokenPage(t *testing.T) {
	c := newTestClient(&fakeGit{})

	got := c.validate(context.Background(), &fakeCore{err: statusError(http.StatusUnauthorized)})

	assert.Contains(t, got.Message, "https://dev.azure.com/org/_usersSettings/tokens")
}

func TestTokensURL(t *testing.T) {
	assert.Equal(t, "https://dev.azure.com/contoso/_usersSettings/tokens", tokensURL("https://dev.azure.com/contoso/"))
}
