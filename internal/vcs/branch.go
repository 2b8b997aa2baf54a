package vcs

import (
	"fmt"
	"regexp"
	"time"
)

var branchUnsafe = regexp.MustCompile(`[^a-zA-Z0-9-]`)

// UniqueBranchName builds a branch name that will not collide across runs:
// the prefix, a sanitized slice of the repository name, and a timestamp.
func UniqueBranchName(prefix, repo string, now time.Time) string {
	short := repo
	if len(short) > 10 {
		short = short[:10]
	}
	short = branchUnsafe.ReplaceAllString(short, "")
	return fmt.Sprintf("%s-%s-%s", prefix, short, now.Format("20060102-150405"))
}
