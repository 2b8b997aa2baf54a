// Package vcs is the version-control boundary of the mutation engine. The
// engine itself performs no I/O; everything it needs from a hosting
// provider goes through the Provider interface, implemented here for
// GitHub.
package vcs

import (
	"context"
	"errors"
)

// ErrNotFound reports that a requested file does not exist at the given ref.
var ErrNotFound = errors.New("vcs: file not found")

// Provider exposes the version-control operations the engine consumes. All
// calls are synchronous and return a result or an error immediately; no
// retries happen at this layer beyond rate-limit waiting.
type Provider interface {
	// GetFileContent fetches a file's text and its revision token at a ref.
	GetFileContent(ctx context.Context, path, ref string) (content, revision string, err error)

	// CommitFile writes new content for a file on a branch. The revision
	// token must match the file's current state.
	CommitFile(ctx context.Context, path, revision, branch, content, message string) (commitID string, err error)

	// CreateBranch creates a branch from the base branch, or succeeds
	// silently when it already exists.
	CreateBranch(ctx context.Context, name string) error

	// DeleteBranch removes a branch. Deleting a missing branch is not an
	// error.
	DeleteBranch(ctx context.Context, name string) error

	// CreatePullRequest opens a pull request from head into the base
	// branch and returns its number and URL. When an open pull request for
	// the head already exists, that one is returned instead.
	CreatePullRequest(ctx context.Context, head, title, body string) (number int, url string, err error)
}
