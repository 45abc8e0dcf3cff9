package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/go-github/v39/github"
	"github.com/reillywatson/prhealth/internal/scm"
)

// classifyError maps a go-github error onto an *scm.Error.
func classifyError(err error, message string) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	var respErr *github.ErrorResponse
	var urlErr *url.Error

	switch {
	case errors.As(err, &rateErr), errors.As(err, &abuseErr):
		return scm.Wrap(scm.KindAPI, err, message+": GitHub rate limit exceeded")
	case errors.As(err, &respErr) && respErr.Response != nil:
		switch respErr.Response.StatusCode {
		case http.StatusUnauthorized:
			return scm.Wrap(scm.KindAuth, err, "GitHub token rejected. The token may be expired or invalid.")
		case http.StatusForbidden:
			return scm.Wrap(scm.KindPermission, err, "GitHub token lacks required permissions (HTTP 403). It needs read access to repositories and pull requests.")
		}
		return scm.Wrap(scm.KindAPI, err, fmt.Sprintf("%s: GitHub API error: %s", message, respErr.Response.Status))
	case errors.As(err, &urlErr), errors.Is(err, context.DeadlineExceeded):
		return scm.Wrap(scm.KindNetwork, err, "Network error: cannot reach GitHub.")
	}
	return scm.Wrap(scm.KindUnexpected, err, message)
}

func isNotFound(err error) bool {
	var respErr *github.ErrorResponse
	return errors.As(err, &respErr) && respErr.Response != nil && respErr.Response.StatusCode == http.StatusNotFound
}
