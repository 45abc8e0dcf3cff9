package azuredevops

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	ado "github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/reillywatson/prhealth/internal/scm"
)

// classifyError maps an SDK failure onto an scm error kind. The SDK returns
// WrappedError both by value and by pointer depending on whether the response
// carried a body, so statusCode checks both.
func (c *Client) classifyError(err error, message string) error {
	code, ok := statusCode(err)
	switch {
	case !ok && isNetworkError(err):
		return scm.Wrap(scm.KindNetwork, err, "Network error: cannot reach "+c.orgURL+". Check the org URL.")
	case !ok:
		return scm.Wrap(scm.KindAPI, err, message)
	case isAuthStatus(code):
		return scm.Wrap(scm.KindAuth, err, "PAT rejected. The token may be expired, invalid, or wrongly encoded.")
	case code == http.StatusForbidden:
		return scm.Wrap(scm.KindPermission, err, "PAT lacks required permissions (HTTP 403). Check required scopes with the setup command.")
	default:
		return scm.Wrap(scm.KindAPI, err, "Azure DevOps API error: "+statusText(code))
	}
}

func statusCode(err error) (int, bool) {
	var wrapped ado.WrappedError
	if errors.As(err, &wrapped) && wrapped.StatusCode != nil {
		return *wrapped.StatusCode, true
	}
	var wrappedPtr *ado.WrappedError
	if errors.As(err, &wrappedPtr) && wrappedPtr != nil && wrappedPtr.StatusCode != nil {
		return *wrappedPtr.StatusCode, true
	}
	return 0, false
}

// isAuthStatus reports whether code means the token was refused. A badly
// encoded token can also produce 203 with a sign-in page.
func isAuthStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusNonAuthoritativeInfo
}

func isNetworkError(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded)
}

func statusText(code int) string {
	text := http.StatusText(code)
	if text == "" {
		return "HTTP " + strconv.Itoa(code)
	}
	return strconv.Itoa(code) + " " + text
}
