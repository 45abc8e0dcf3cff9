package metrics

import (
	"context"
	"strings"

	"github.com/reillywatson/prhealth/internal/scm"
)

// resolveRepository maps a repository name to its ID using a case-insensitive
// exact match. A miss yields a not_found error listing every valid name.
func (e *Engine) resolveRepository(ctx context.Context, name string) (string, error) {
	repos, err := e.source.ListRepositories(ctx)
	if err != nil {
		return "", scm.AsError(err)
	}

	for _, r := range repos {
		if strings.EqualFold(r.Name, name) {
			return r.ID, nil
		}
	}

	available := make([]string, 0, len(repos))
	for _, r := range repos {
		available = append(available, r.Name)
	}

	return "", &scm.Error{
		Kind:           scm.KindNotFound,
		Message:        "Repository '" + name + "' not found.",
		AvailableRepos: available,
	}
}
