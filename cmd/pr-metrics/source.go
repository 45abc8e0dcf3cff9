package main

import (
	"fmt"

	"github.com/reillywatson/prhealth/internal/azuredevops"
	"github.com/reillywatson/prhealth/internal/cache"
	"github.com/reillywatson/prhealth/internal/config"
	"github.com/reillywatson/prhealth/internal/github"
	"github.com/reillywatson/prhealth/internal/scm"
)

// newSource builds the hosting service client selected by cfg.
func newSource(cfg *config.Config) (scm.Source, error) {
	switch cfg.Provider {
	case config.ProviderAzureDevOps, "":
		return azuredevops.NewClient(cfg.OrgURL, cfg.Project, cfg.PAT), nil
	case config.ProviderGitHub:
		client, err := github.NewClient(cfg.GitHub.Token, cfg.GitHub.Owner, cfg.GitHub.BaseURL, cache.NewDefaultCache())
		if err != nil {
			return nil, fmt.Errorf("failed to create GitHub client: %w", err)
		}
		return client, nil
	}
	return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
}
