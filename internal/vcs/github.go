package vcs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
	"github.com/vk/terrapatch/internal/ctxlog"
)

// rateLimitFloor is the remaining-request threshold below which calls wait
// for the limit window to reset.
const rateLimitFloor = 50

// GitHub implements Provider against the GitHub REST API.
type GitHub struct {
	client *github.Client
	owner  string
	repo   string
	base   string

	// sleep is swappable for tests.
	sleep func(ctx context.Context, d time.Duration)
}

// NewGitHub creates a provider for one repository. Base is the branch new
// branches fork from and pull requests merge into.
func NewGitHub(token, owner, repo, base string) *GitHub {
	return &GitHub{
		client: github.NewClient(nil).WithAuthToken(token),
		owner:  owner,
		repo:   repo,
		base:   base,
		sleep:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// waitForRateLimit blocks until enough API budget remains. A failure to
// read the limit is logged and ignored; the next real call will surface it.
func (g *GitHub) waitForRateLimit(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	limits, _, err := g.client.RateLimit.Get(ctx)
	if err != nil {
		logger.Warn("could not check rate limit", "error", err)
		return
	}
	core := limits.GetCore()
	if core == nil || core.Remaining >= rateLimitFloor {
		return
	}
	wait := time.Until(core.Reset.Time) + 5*time.Second
	if wait <= 0 {
		return
	}
	logger.Warn("rate limit low, waiting for reset",
		"remaining", core.Remaining, "wait", wait.Round(time.Second).String())
	g.sleep(ctx, wait)
}

// GetFileContent implements Provider.
func (g *GitHub) GetFileContent(ctx context.Context, path, ref string) (string, string, error) {
	g.waitForRateLimit(ctx)
	file, _, resp, err := g.client.Repositories.GetContents(ctx, g.owner, g.repo, path,
		&github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", "", fmt.Errorf("%w: %s at %s", ErrNotFound, path, ref)
		}
		return "", "", fmt.Errorf("getting contents of %s at %s: %w", path, ref, err)
	}
	if file == nil {
		return "", "", fmt.Errorf("%s at %s is a directory, not a file", path, ref)
	}
	content, err := file.GetContent()
	if err != nil {
		return "", "", fmt.Errorf("decoding contents of %s: %w", path, err)
	}
	return content, file.GetSHA(), nil
}

// CommitFile implements Provider.
func (g *GitHub) CommitFile(ctx context.Context, path, revision, branch, content, message string) (string, error) {
	g.waitForRateLimit(ctx)
	result, _, err := g.client.Repositories.UpdateFile(ctx, g.owner, g.repo, path,
		&github.RepositoryContentFileOptions{
			Message: github.String(message),
			Content: []byte(content),
			SHA:     github.String(revision),
			Branch:  github.String(branch),
		})
	if err != nil {
		return "", fmt.Errorf("committing %s to %s: %w", path, branch, err)
	}
	return result.Commit.GetSHA(), nil
}

// CreateBranch implements Provider.
func (g *GitHub) CreateBranch(ctx context.Context, name string) error {
	logger := ctxlog.FromContext(ctx)
	g.waitForRateLimit(ctx)

	if _, _, err := g.client.Git.GetRef(ctx, g.owner, g.repo, "heads/"+name); err == nil {
		logger.Info("branch already exists", "branch", name)
		return nil
	}

	baseRef, _, err := g.client.Git.GetRef(ctx, g.owner, g.repo, "heads/"+g.base)
	if err != nil {
		return fmt.Errorf("resolving base branch %q: %w", g.base, err)
	}
	_, _, err = g.client.Git.CreateRef(ctx, g.owner, g.repo, &github.Reference{
		Ref:    github.String("refs/heads/" + name),
		Object: &github.GitObject{SHA: baseRef.GetObject().SHA},
	})
	if err != nil {
		return fmt.Errorf("creating branch %q: %w", name, err)
	}
	logger.Info("branch created", "branch", name, "base", g.base)
	return nil
}

// DeleteBranch implements Provider.
func (g *GitHub) DeleteBranch(ctx context.Context, name string) error {
	logger := ctxlog.FromContext(ctx)
	g.waitForRateLimit(ctx)
	if _, err := g.client.Git.DeleteRef(ctx, g.owner, g.repo, "heads/"+name); err != nil {
		// The branch may never have been created; that is fine.
		logger.Debug("branch deletion failed", "branch", name, "error", err)
		return nil
	}
	logger.Info("branch deleted", "branch", name)
	return nil
}

// CreatePullRequest implements Provider.
func (g *GitHub) CreatePullRequest(ctx context.Context, head, title, body string) (int, string, error) {
	logger := ctxlog.FromContext(ctx)
	g.waitForRateLimit(ctx)

	pr, _, err := g.client.PullRequests.Create(ctx, g.owner, g.repo, &github.NewPullRequest{
		Title: github.String(title),
		Head:  github.String(head),
		Base:  github.String(g.base),
		Body:  github.String(body),
	})
	if err != nil {
		if existing, found := g.findExistingPR(ctx, head, err); found {
			logger.Info("pull request already exists", "number", existing.GetNumber())
			return existing.GetNumber(), existing.GetHTMLURL(), nil
		}
		return 0, "", fmt.Errorf("creating pull request for %q: %w", head, err)
	}

	// Labels are cosmetic; a failure here never fails the run.
	if _, _, err := g.client.Issues.AddLabelsToIssue(ctx, g.owner, g.repo, pr.GetNumber(),
		[]string{"Automated PR", "Terraform"}); err != nil {
		logger.Warn("could not add labels to pull request", "number", pr.GetNumber(), "error", err)
	}

	logger.Info("pull request created", "number", pr.GetNumber(), "url", pr.GetHTMLURL())
	return pr.GetNumber(), pr.GetHTMLURL(), nil
}

// findExistingPR recovers from the 422 returned when an open pull request
// for the head branch already exists.
func (g *GitHub) findExistingPR(ctx context.Context, head string, createErr error) (*github.PullRequest, bool) {
	var ghErr *github.ErrorResponse
	if !errors.As(createErr, &ghErr) || ghErr.Response == nil ||
		ghErr.Response.StatusCode != http.StatusUnprocessableEntity ||
		!strings.Contains(strings.ToLower(createErr.Error()), "already exists") {
		return nil, false
	}
	prs, _, err := g.client.PullRequests.List(ctx, g.owner, g.repo, &github.PullRequestListOptions{
		State: "open",
		Head:  g.owner + ":" + head,
	})
	if err != nil || len(prs) == 0 {
		return nil, false
	}
	return prs[0], true
}
