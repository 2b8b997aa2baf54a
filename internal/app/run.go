package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/terrapatch/internal/changespec"
	"github.com/vk/terrapatch/internal/ctxlog"
	"github.com/vk/terrapatch/internal/format"
	"github.com/vk/terrapatch/internal/obsolete"
	"github.com/vk/terrapatch/internal/tfmutate"
	"github.com/vk/terrapatch/internal/vcs"
)

// Run executes the full change specification: one repository at a time, one
// file at a time. It never returns an error for individual repository
// failures; those are tallied and reported in the batch summary.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Info("starting Terraform infrastructure update automation")

	if a.cfg.DryRun {
		a.logger.Info("dry-run mode, no changes will be made",
			"repositories", len(a.spec.Repositories))
		for _, repo := range a.spec.Repositories {
			a.logger.Info("would process repository",
				"repository", repo.FullName(), "files", len(repo.Files))
		}
		return nil
	}

	var succeeded, failed int
	var prURLs []string
	for _, repo := range a.spec.Repositories {
		repoCtx := ctxlog.With(ctx, "repository", repo.FullName())
		prURL, err := a.processRepository(repoCtx, repo)
		if err != nil {
			failed++
			a.logger.Error("repository processing failed",
				"repository", repo.FullName(), "error", err)
			a.notifier.RepoFailure(repoCtx, repo.FullName(), err.Error(), a.runURL)
			continue
		}
		succeeded++
		if prURL != "" {
			prURLs = append(prURLs, prURL)
		}
	}

	total := len(a.spec.Repositories)
	a.notifier.BatchSummary(ctx, total, succeeded, failed, prURLs)
	a.logger.Info("automation completed",
		"succeeded", succeeded, "failed", failed, "total", total, "prs", len(prURLs))
	if failed > 0 {
		a.logger.Warn("some repositories had issues", "failed", failed)
	}
	return nil
}

// processRepository runs all of one repository's file changes on a fresh
// branch and publishes the result. An empty prURL with a nil error means
// the repository needed no pull request (no changes, publishing disabled,
// or an obsolete change that was skipped).
func (a *App) processRepository(ctx context.Context, repo changespec.Repository) (string, error) {
	logger := ctxlog.FromContext(ctx)
	provider := a.providers(repo.Owner, repo.Repo)

	branch := vcs.UniqueBranchName(a.cfg.BranchPrefix, repo.Repo, a.now())
	if err := provider.CreateBranch(ctx, branch); err != nil {
		return "", fmt.Errorf("creating branch: %w", err)
	}

	runlog := tfmutate.NewRunLog(a.cfg.MaxErrors)
	coord := tfmutate.NewCoordinator(runlog)

	var summaries []string
	newContents := make(map[string]string, len(repo.Files))
	changesMade := false
	for i, file := range repo.Files {
		logger.Info("processing file", "path", file.Path, "index", i+1, "of", len(repo.Files))
		fileSummaries, doc, err := a.processFile(ctx, provider, coord, branch, file)
		if err != nil {
			// File-level failures roll the whole repository back.
			_ = provider.DeleteBranch(ctx, branch)
			return "", fmt.Errorf("processing %s: %w", file.Path, err)
		}
		summaries = append(summaries, fileSummaries...)
		newContents[file.Path] = doc.Content()
		changesMade = changesMade || doc.Changed()
	}

	if runlog.OverBudget() {
		logger.Warn("per-run error budget exceeded",
			"errors", runlog.ErrorCount(), "budget", runlog.MaxErrors)
	}

	if !changesMade {
		logger.Info("no changes were made, cleaning up branch", "branch", branch)
		_ = provider.DeleteBranch(ctx, branch)
		return "", nil
	}
	if !a.spec.Settings.ShouldCreatePR() {
		logger.Info("pull request creation disabled, changes left on branch", "branch", branch)
		return "", nil
	}

	firstPath := repo.Files[0].Path
	report, err := a.checkObsolescence(ctx, provider, firstPath, branch, newContents[firstPath])
	if err != nil {
		// The check could not run; that is not a verdict either way.
		logger.Warn("obsolescence check unavailable", "error", err)
	} else if report.Obsolete {
		logger.Warn("changes are already in the base branch or have been superseded",
			"reason", report.Reason())
		if a.cfg.SkipObsolete {
			logger.Info("skipping pull request for obsolete change", "branch", branch)
			return "", nil
		}
	}

	title := prTitle(a.spec.Settings.PRTitleTemplate, a.now().Format("2006-01-02 15:04:05"))
	number, url, err := provider.CreatePullRequest(ctx, branch, title, a.prBody(repo, branch, summaries))
	if err != nil {
		return "", fmt.Errorf("creating pull request: %w", err)
	}
	logger.Info("pull request created", "number", number, "url", url)
	a.notifier.PRCreated(ctx, repo.FullName(), url, len(repo.Files), summaries, a.runURL)
	return url, nil
}

// processFile fetches one file, applies all of its changes to a working
// document, formats the result and commits it. The returned error is
// file-fatal and aborts the repository.
func (a *App) processFile(ctx context.Context, provider vcs.Provider, coord *tfmutate.Coordinator, branch string, file changespec.File) ([]string, *tfmutate.WorkingDocument, error) {
	ctx = ctxlog.With(ctx, "file", file.Path)
	logger := ctxlog.FromContext(ctx)

	content, revision, err := provider.GetFileContent(ctx, file.Path, "heads/"+branch)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching content: %w", err)
	}
	doc := tfmutate.NewWorkingDocument(file.Path, content)

	var summaries []string
	for _, kind := range changespec.ChangeKinds {
		for _, blockChange := range file.Changes[kind] {
			for _, blockName := range sortedKeys(blockChange) {
				ref, err := blockRef(kind, blockName)
				if err != nil {
					// Fatal for this parameter set only.
					logger.Warn("skipping malformed block reference",
						"block", blockName, "error", err)
					continue
				}
				params := blockChange[blockName]
				for _, paramName := range sortedKeys(params) {
					result, err := coord.Apply(ctx, doc, ref,
						tfmutate.ParsePath(paramName), convertAction(params[paramName]))
					if err != nil {
						return nil, nil, err
					}
					if !result.OK {
						logger.Warn("change not applied",
							"parameter", paramName, "reason", result.Reason)
					}
					if result.Summary != "" {
						summaries = append(summaries, result.Summary)
					}
				}
			}
		}
	}

	if !doc.Changed() {
		logger.Debug("no changes detected, skipping commit")
		return summaries, doc, nil
	}

	formatted, status := a.formatter.FormatDocument(ctx, doc.Content())
	if status == format.StatusOK {
		doc.Reformat(formatted)
	} else {
		logger.Debug("formatter did not run", "status", status.String())
	}

	message := "Automated Terraform update - " + a.now().Format("20060102-150405")
	commitID, err := provider.CommitFile(ctx, file.Path, revision, branch, doc.Content(), message)
	if err != nil {
		return nil, nil, fmt.Errorf("committing: %w", err)
	}
	logger.Info("changes committed", "commit", commitID)
	return summaries, doc, nil
}

// checkObsolescence fetches the base and feature snapshots and compares the
// base against the locally produced content. Fetch failures are reported as
// SnapshotUnavailableError, distinct from an obsolescence verdict.
func (a *App) checkObsolescence(ctx context.Context, provider vcs.Provider, path, branch, newContent string) (obsolete.Report, error) {
	baseContent, _, err := provider.GetFileContent(ctx, path, "heads/"+a.cfg.BaseBranch)
	if err != nil {
		return obsolete.Report{}, &obsolete.SnapshotUnavailableError{Ref: a.cfg.BaseBranch, Err: err}
	}
	if _, _, err := provider.GetFileContent(ctx, path, "heads/"+branch); err != nil {
		return obsolete.Report{}, &obsolete.SnapshotUnavailableError{Ref: branch, Err: err}
	}
	return obsolete.Check(baseContent, newContent), nil
}

func blockRef(kind, name string) (tfmutate.BlockRef, error) {
	switch kind {
	case changespec.ChangeVariables:
		return tfmutate.VariableRef(name), nil
	case changespec.ChangeResources:
		return tfmutate.ResourceRef(name)
	default:
		return tfmutate.ModuleRef(name), nil
	}
}

func convertAction(action changespec.Action) tfmutate.ChangeAction {
	out := tfmutate.ChangeAction{}
	for _, rule := range action.Update {
		out.Update = append(out.Update, tfmutate.UpdateRule{From: rule.From, To: rule.To})
	}
	if action.ParamNotFound != nil {
		out.OnMissing = &tfmutate.MissingPolicy{
			Action: tfmutate.MissingAction(action.ParamNotFound.Action),
			Value:  action.ParamNotFound.Value,
		}
	}
	return out
}

func prTitle(template, timestamp string) string {
	if template == "" {
		template = "Automated Terraform Updates"
	}
	return strings.ReplaceAll(template, "{{timestamp}}", timestamp)
}

func (a *App) prBody(repo changespec.Repository, branch string, summaries []string) string {
	var b strings.Builder
	b.WriteString("Automated Terraform configuration updates\n\n")
	fmt.Fprintf(&b, "Repository: %s\n", repo.FullName())
	fmt.Fprintf(&b, "Files modified: %d\n", len(repo.Files))
	fmt.Fprintf(&b, "Branch: %s\n", branch)
	if len(summaries) > 0 {
		b.WriteString("\nChanges:\n")
		for _, summary := range summaries {
			fmt.Fprintf(&b, "- %s\n", summary)
		}
	}
	if a.runURL != "" {
		fmt.Fprintf(&b, "\nGitHub Actions run: %s\n", a.runURL)
	}
	return b.String()
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
