package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // change specification (yaml)

	Token        string // VCS API token; unused in dry-run mode
	BaseBranch   string
	BranchPrefix string

	DryRun       bool
	SkipObsolete bool // skip publishing changes the detector judges obsolete

	SlackWebhookURL string

	LogFormat string
	LogLevel  string
	MaxErrors int // advisory per-run error budget
}

// NewConfig validates a Config and applies defaults for optional fields.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.Token == "" && !cfg.DryRun {
		return nil, errors.New("a VCS token is required unless running in dry-run mode (set GITHUB_TOKEN)")
	}
	if cfg.BaseBranch == "" {
		cfg.BaseBranch = "main"
	}
	if cfg.BranchPrefix == "" {
		cfg.BranchPrefix = "terraform-automation"
	}
	if cfg.MaxErrors == 0 {
		cfg.MaxErrors = 5
	}
	return &cfg, nil
}
