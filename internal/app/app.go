// Package app wires the change specification, the mutation engine and the
// external collaborators into one run: for every repository, create a work
// branch, patch each file, gate on obsolescence, and open a pull request.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/vk/terrapatch/internal/changespec"
	"github.com/vk/terrapatch/internal/format"
	"github.com/vk/terrapatch/internal/notify"
	"github.com/vk/terrapatch/internal/vcs"
)

// Formatter is the external document formatter boundary.
type Formatter interface {
	FormatDocument(ctx context.Context, content string) (string, format.Status)
}

// ProviderFactory creates a VCS provider for one repository.
type ProviderFactory func(owner, repo string) vcs.Provider

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	cfg       *Config
	spec      *changespec.Spec
	providers ProviderFactory
	notifier  *notify.Client
	formatter Formatter
	now       func() time.Time
	runURL    string
}

// Option overrides one of the App's collaborators, primarily for tests.
type Option func(*App)

// WithProviderFactory replaces the VCS provider constructor.
func WithProviderFactory(f ProviderFactory) Option {
	return func(a *App) { a.providers = f }
}

// WithFormatter replaces the document formatter.
func WithFormatter(f Formatter) Option {
	return func(a *App) { a.formatter = f }
}

// WithNotifier replaces the notification client.
func WithNotifier(n *notify.Client) Option {
	return func(a *App) { a.notifier = n }
}

// WithClock replaces the time source used for branch names and commit
// messages.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// NewApp is the constructor for the main application. It loads and
// validates the change specification and assembles the default
// collaborators; Options may swap any of them out.
func NewApp(outW io.Writer, cfg *Config, opts ...Option) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)

	spec, err := changespec.Load(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load change specification: %w", err)
	}
	logger.Info("change specification loaded", "repositories", len(spec.Repositories))

	a := &App{
		outW:     outW,
		logger:   logger,
		cfg:      cfg,
		spec:     spec,
		notifier: notify.New(cfg.SlackWebhookURL),
		now:      time.Now,
		runURL:   workflowRunURL(),
	}
	a.providers = func(owner, repo string) vcs.Provider {
		return vcs.NewGitHub(cfg.Token, owner, repo, cfg.BaseBranch)
	}
	if formatter, err := format.NewTerraform(); err != nil {
		logger.Warn("terraform binary not available, documents will not be reformatted", "error", err)
		a.formatter = (*format.Terraform)(nil)
	} else {
		a.formatter = formatter
	}

	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Spec returns the loaded change specification. This is primarily for testing.
func (a *App) Spec() *changespec.Spec {
	return a.spec
}

// workflowRunURL derives a link to the CI execution that launched this run,
// when running under GitHub Actions.
func workflowRunURL() string {
	repository := os.Getenv("GITHUB_REPOSITORY")
	runID := os.Getenv("GITHUB_RUN_ID")
	if repository == "" || runID == "" {
		return ""
	}
	server := os.Getenv("GITHUB_SERVER_URL")
	if server == "" {
		server = "https://github.com"
	}
	return fmt.Sprintf("%s/%s/actions/runs/%s", server, repository, runID)
}
