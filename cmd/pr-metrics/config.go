package main

import (
	"io"

	"github.com/reillywatson/prhealth/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(out io.Writer, root *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the saved config with tokens masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.NewStore(root.configPath)
			if err != nil {
				return writeError(out, errorTypeConfig, err.Error(), nil)
			}
			if !store.Exists() {
				return writeJSON(out, map[string]bool{"exists": false})
			}

			cfg, err := store.Load()
			if err != nil {
				return writeError(out, errorTypeConfig, err.Error(), nil)
			}

			payload := map[string]any{"exists": true}
			for k, v := range configSummary(cfg) {
				payload[k] = v
			}
			return writeJSON(out, payload)
		},
	}
}

// configSummary lists the fields of the selected provider with tokens masked.
func configSummary(cfg *config.Config) map[string]string {
	masked := cfg.Masked()
	if masked.Provider == config.ProviderGitHub {
		summary := map[string]string{
			"provider": masked.Provider,
			"owner":    masked.GitHub.Owner,
			"token":    masked.GitHub.Token,
		}
		if masked.GitHub.BaseURL != "" {
			summary["baseUrl"] = masked.GitHub.BaseURL
		}
		return summary
	}
	return map[string]string{
		"provider": config.ProviderAzureDevOps,
		"orgUrl":   masked.OrgURL,
		"project":  masked.Project,
		"pat":      masked.PAT,
	}
}
