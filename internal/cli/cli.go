package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/vk/terrapatch/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments and environment variables. It
// returns a populated app.Config, a boolean indicating if the program should
// exit cleanly, or an ExitError.
//
// Flags take precedence over environment variables. The environment is read
// so the tool drops into a GitHub Actions workflow without any arguments.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("terrapatch", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
terrapatch - Automated Terraform configuration updates via pull requests.

Usage:
  terrapatch [options] [CONFIG_PATH]

Arguments:
  CONFIG_PATH
    Path to the YAML change specification (also via -config or CONFIG_FILE).

Environment:
  GITHUB_TOKEN          VCS API token (required unless -dry-run)
  SLACK_WEBHOOK_URL     Slack incoming webhook for notifications (optional)
  CONFIG_FILE           Default change specification path
  BASE_BRANCH           Default base branch
  BRANCH_PREFIX         Default work branch prefix
  DRY_RUN               "true" enables dry-run mode
  AUTO_CLOSE_OBSOLETE   "true" skips pull requests judged obsolete

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the YAML change specification.")
	baseBranchFlag := flagSet.String("base-branch", "", "Base branch pull requests target. Default: 'main'.")
	branchPrefixFlag := flagSet.String("branch-prefix", "", "Prefix for generated work branches. Default: 'terraform-automation'.")
	dryRunFlag := flagSet.Bool("dry-run", false, "Enumerate the work without touching any repository.")
	skipObsoleteFlag := flagSet.Bool("skip-obsolete", false, "Skip pull requests whose changes are already in the base branch.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	maxErrorsFlag := flagSet.Int("max-errors", 0, "Advisory per-run mutation error budget. 0 uses the default.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	configPath := *configFlag
	if configPath == "" && flagSet.NArg() > 0 {
		configPath = flagSet.Arg(0)
	}
	if configPath == "" {
		configPath = os.Getenv("CONFIG_FILE")
	}
	slog.Debug("Change specification path determined.", "path", configPath)

	if configPath == "" {
		slog.Debug("No change specification provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	baseBranch := *baseBranchFlag
	if baseBranch == "" {
		baseBranch = os.Getenv("BASE_BRANCH")
	}
	branchPrefix := *branchPrefixFlag
	if branchPrefix == "" {
		branchPrefix = os.Getenv("BRANCH_PREFIX")
	}
	dryRun := *dryRunFlag || envBool("DRY_RUN")
	skipObsolete := *skipObsoleteFlag || envBool("AUTO_CLOSE_OBSOLETE")

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ConfigPath:      configPath,
		Token:           os.Getenv("GITHUB_TOKEN"),
		BaseBranch:      baseBranch,
		BranchPrefix:    branchPrefix,
		DryRun:          dryRun,
		SkipObsolete:    skipObsolete,
		SlackWebhookURL: os.Getenv("SLACK_WEBHOOK_URL"),
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		MaxErrors:       *maxErrorsFlag,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.")
	return config, false, nil
}

func envBool(name string) bool {
	v := strings.ToLower(os.Getenv(name))
	return v == "true" || v == "1" || v == "yes"
}
