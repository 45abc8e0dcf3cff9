package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/reillywatson/prhealth/internal/config"
	"github.com/reillywatson/prhealth/internal/metrics"
	"github.com/reillywatson/prhealth/internal/scm"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var Version = "dev"

// errorTypeConfig is reported when the credentials cannot be loaded.
const errorTypeConfig = "config"

type options struct {
	configPath  string
	repo        string
	days        int
	staleDays   int
	project     string
	checkConfig bool
	verbose     bool
	quiet       bool
}

// exitError tells main the JSON payload was already written.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "pr-metrics",
		Short: "Pull request health metrics for an Azure DevOps project or GitHub owner",
		Long: `pr-metrics fetches pull requests and their review activity and prints one
JSON document with cycle time, time to first review, reviewer distribution,
stale PRs and the review bottleneck. Progress is logged to stderr.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(opts.verbose, opts.quiet)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), out, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to the config file (default: $"+config.EnvConfigPath+" or the user config directory)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")
	cmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "Only log warnings and errors")

	cmd.Flags().StringVar(&opts.repo, "repo", "", "Only analyse this repository (case-insensitive)")
	cmd.Flags().IntVar(&opts.days, "days", 0, "Fetch exactly this many days of PRs instead of the fallback windows")
	cmd.Flags().IntVar(&opts.staleDays, "stale-days", metrics.DefaultStaleDays, "Days without activity before an active PR is stale")
	cmd.Flags().StringVar(&opts.project, "project", "", "Override the configured project (GitHub: owner)")
	cmd.Flags().BoolVar(&opts.checkConfig, "check-config", false, "Print whether a config file exists and exit")

	cmd.AddCommand(newSetupCmd(out, opts))
	cmd.AddCommand(newConfigCmd(out, opts))

	return cmd
}

func configureLogging(verbose, quiet bool) {
	log.SetOutput(os.Stderr)
	switch {
	case verbose:
		log.SetLevel(log.DebugLevel)
	case quiet:
		log.SetLevel(log.WarnLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

func run(ctx context.Context, out io.Writer, opts *options) error {
	if opts.staleDays < 0 {
		return writeError(out, errorTypeUsage, "--stale-days must be zero or more", nil)
	}

	store, err := config.NewStore(opts.configPath)
	if err != nil {
		return writeError(out, errorTypeConfig, err.Error(), nil)
	}

	if opts.checkConfig {
		return writeJSON(out, map[string]bool{"configMissing": !store.Exists()})
	}

	cfg, err := store.Load()
	if err != nil {
		return writeError(out, errorTypeConfig, err.Error(), nil)
	}
	if opts.project != "" {
		cfg.SetProject(opts.project)
	}
	if err := cfg.Validate(); err != nil {
		return writeError(out, errorTypeConfig, err.Error(), nil)
	}

	source, err := newSource(cfg)
	if err != nil {
		return writeError(out, errorTypeConfig, err.Error(), nil)
	}

	result, err := metrics.NewEngine(source).Run(ctx, metrics.Options{
		RepoName:     opts.repo,
		DaysOverride: opts.days,
		StaleDays:    &opts.staleDays,
	})
	if err != nil {
		e := scm.AsError(err)
		return writeError(out, string(e.Kind), e.Error(), e.AvailableRepos)
	}

	return writeJSON(out, result)
}

type errorBody struct {
	Type           string   `json:"type"`
	Message        string   `json:"message"`
	AvailableRepos []string `json:"availableRepos,omitempty"`
}

// writeError prints {"error": {...}} and returns an exitError so the process
// exits non-zero.
func writeError(out io.Writer, errType, message string, availableRepos []string) error {
	payload := map[string]errorBody{
		"error": {Type: errType, Message: message, AvailableRepos: availableRepos},
	}
	if err := writeJSON(out, payload); err != nil {
		return err
	}
	return exitError{code: 1}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
