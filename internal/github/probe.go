package github

import (
	"context"

	"github.com/reillywatson/prhealth/internal/scm"
)

// Validate checks that the token is accepted and that the owner's
// repositories can be listed.
func (c *Client) Validate(ctx context.Context) error {
	if _, _, err := c.client.Users.Get(ctx, ""); err != nil {
		return classifyError(err, "failed to authenticate")
	}
	if _, err := c.ListRepositories(ctx); err != nil {
		if isNotFound(err) {
			return scm.Errorf(scm.KindNotFound, "Owner %q not found on GitHub. Check the owner name.", c.owner)
		}
		return err
	}
	return nil
}
