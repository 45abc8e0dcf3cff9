package main

import (
	"context"
	"io"

	"github.com/reillywatson/prhealth/internal/azuredevops"
	"github.com/reillywatson/prhealth/internal/cache"
	"github.com/reillywatson/prhealth/internal/config"
	"github.com/reillywatson/prhealth/internal/github"
	"github.com/reillywatson/prhealth/internal/scm"
	"github.com/spf13/cobra"
)

const errorTypeUsage = "usage"

type setupOptions struct {
	provider string
	org      string
	project  string
	pat      string
	owner    string
	token    string
	baseURL  string
}

type setupError struct {
	OK           bool   `json:"ok"`
	Type         string `json:"type"`
	Message      string `json:"message"`
	MissingScope string `json:"missingScope,omitempty"`
}

type setupResult struct {
	Success bool              `json:"success"`
	Summary map[string]string `json:"summary,omitempty"`
	Error   *setupError       `json:"error,omitempty"`
}

// validateConnection checks the hosting service with the candidate config.
// Replaced in tests.
var validateConnection = func(ctx context.Context, cfg *config.Config) *setupError {
	switch cfg.Provider {
	case config.ProviderGitHub:
		client, err := github.NewClient(cfg.GitHub.Token, cfg.GitHub.Owner, cfg.GitHub.BaseURL, cache.NewDefaultCache())
		if err != nil {
			return &setupError{Type: errorTypeConfig, Message: err.Error()}
		}
		if err := client.Validate(ctx); err != nil {
			e := scm.AsError(err)
			return &setupError{Type: string(e.Kind), Message: e.Message}
		}
		return nil
	default:
		res := azuredevops.ValidateConnection(ctx, cfg.OrgURL, cfg.Project, cfg.PAT)
		if res.OK {
			return nil
		}
		return &setupError{Type: string(res.Type), Message: res.Message, MissingScope: res.MissingScope}
	}
}

func newSetupCmd(out io.Writer, root *options) *cobra.Command {
	opts := &setupOptions{}

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Validate credentials against the hosting service and save them",
		Example: `  pr-metrics setup --org https://dev.azure.com/contoso --project Payments --pat <token>
  pr-metrics setup --provider github --owner acme --token <token>`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd.Context(), out, root.configPath, opts)
		},
	}

	cmd.Flags().StringVar(&opts.provider, "provider", config.ProviderAzureDevOps, "Hosting service: azure-devops or github")
	cmd.Flags().StringVar(&opts.org, "org", "", "Azure DevOps organization URL")
	cmd.Flags().StringVar(&opts.project, "project", "", "Azure DevOps project name")
	cmd.Flags().StringVar(&opts.pat, "pat", "", "Azure DevOps personal access token")
	cmd.Flags().StringVar(&opts.owner, "owner", "", "GitHub organization or user")
	cmd.Flags().StringVar(&opts.token, "token", "", "GitHub token")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "GitHub Enterprise REST API URL")

	return cmd
}

func runSetup(ctx context.Context, out io.Writer, configPath string, opts *setupOptions) error {
	cfg := &config.Config{Provider: opts.provider}
	switch opts.provider {
	case config.ProviderGitHub:
		cfg.GitHub = config.GitHubConfig{Owner: opts.owner, Token: opts.token, BaseURL: opts.baseURL}
	default:
		cfg.OrgURL = opts.org
		cfg.Project = opts.project
		cfg.PAT = opts.pat
	}
	if err := cfg.Validate(); err != nil {
		return writeSetupFailure(out, &setupError{Type: errorTypeUsage, Message: err.Error()})
	}

	if failure := validateConnection(ctx, cfg); failure != nil {
		return writeSetupFailure(out, failure)
	}

	store, err := config.NewStore(configPath)
	if err != nil {
		return writeSetupFailure(out, &setupError{Type: errorTypeConfig, Message: err.Error()})
	}
	if err := store.Save(cfg); err != nil {
		return writeSetupFailure(out, &setupError{Type: errorTypeConfig, Message: err.Error()})
	}

	return writeJSON(out, setupResult{Success: true, Summary: configSummary(cfg)})
}

func writeSetupFailure(out io.Writer, failure *setupError) error {
	if err := writeJSON(out, setupResult{Error: failure}); err != nil {
		return err
	}
	return exitError{code: 1}
}
