package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported providers.
const (
	ProviderAzureDevOps = "azure-devops"
	ProviderGitHub      = "github"
)

// Environment variables read by Load.
const (
	EnvConfigPath  = "PRHEALTH_CONFIG"
	EnvAzurePAT    = "AZURE_DEVOPS_PAT"
	EnvGitHubToken = "GITHUB_TOKEN"
)

const (
	appDir   = "prhealth"
	fileName = "config.yaml"
)

// ErrNotConfigured is returned by Load when no config file exists.
var ErrNotConfigured = errors.New("not configured")

// Config holds the credentials and scope of the hosting service.
type Config struct {
	Provider string       `yaml:"provider,omitempty" json:"provider"`
	OrgURL   string       `yaml:"orgUrl,omitempty" json:"orgUrl,omitempty"`
	Project  string       `yaml:"project,omitempty" json:"project,omitempty"`
	PAT      string       `yaml:"pat,omitempty" json:"pat,omitempty"`
	GitHub   GitHubConfig `yaml:"github,omitempty" json:"github,omitempty"`
}

// GitHubConfig is the github provider section.
type GitHubConfig struct {
	Token   string `yaml:"token,omitempty" json:"token,omitempty"`
	Owner   string `yaml:"owner,omitempty" json:"owner,omitempty"`
	BaseURL string `yaml:"baseUrl,omitempty" json:"baseUrl,omitempty"`
}

// Store reads and writes the config file.
type Store struct {
	path string
}

// NewStore returns a store for path, or for DefaultPath when path is empty.
func NewStore(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &Store{path: path}, nil
}

// DefaultPath is $PRHEALTH_CONFIG, or config.yaml under the user config directory.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(dir, appDir, fileName), nil
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the config file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the config file and applies environment overrides.
func (s *Store) Load() (*Config, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: run setup first (expected config at %s)", ErrNotConfigured, s.path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", s.path, err)
	}
	if cfg.Provider == "" {
		cfg.Provider = ProviderAzureDevOps
	}
	cfg.applyEnv()
	return &cfg, nil
}

// Save writes cfg with owner-only permissions.
func (s *Store) Save(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if pat := os.Getenv(EnvAzurePAT); pat != "" {
		c.PAT = pat
	}
	if token := os.Getenv(EnvGitHubToken); token != "" {
		c.GitHub.Token = token
	}
}

// Validate checks that the selected provider has everything it needs.
func (c *Config) Validate() error {
	var missing []string
	switch c.Provider {
	case ProviderAzureDevOps, "":
		if c.OrgURL == "" {
			missing = append(missing, "orgUrl")
		}
		if c.Project == "" {
			missing = append(missing, "project")
		}
		if c.PAT == "" {
			missing = append(missing, "pat")
		}
	case ProviderGitHub:
		if c.GitHub.Owner == "" {
			missing = append(missing, "github.owner")
		}
		if c.GitHub.Token == "" {
			missing = append(missing, "github.token")
		}
	default:
		return fmt.Errorf("unsupported provider %q (expected %s or %s)", c.Provider, ProviderAzureDevOps, ProviderGitHub)
	}
	if len(missing) > 0 {
		return fmt.Errorf("config is missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// SetProject overrides the analysed scope: the project for Azure DevOps, the
// owner for GitHub.
func (c *Config) SetProject(project string) {
	if c.Provider == ProviderGitHub {
		c.GitHub.Owner = project
		return
	}
	c.Project = project
}

// Masked returns a copy with every token masked.
func (c Config) Masked() Config {
	if c.PAT != "" {
		c.PAT = MaskToken(c.PAT)
	}
	if c.GitHub.Token != "" {
		c.GitHub.Token = MaskToken(c.GitHub.Token)
	}
	return c
}

// MaskToken keeps the first and last four characters of a token.
func MaskToken(token string) string {
	if len(token) < 8 {
		return "***"
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
