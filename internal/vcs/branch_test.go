package vcs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUniqueBranchName(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 23, 14, 30, 5, 0, time.UTC)

	name := UniqueBranchName("terraform-automation", "platform", now)
	assert.Equal(t, "terraform-automation-platform-20260823-143005", name)

	// Long names are truncated before sanitizing.
	name = UniqueBranchName("tf", "infrastructure-live", now)
	assert.Equal(t, "tf-infrastruc-20260823-143005", name)

	// Characters outside [a-zA-Z0-9-] are stripped.
	name = UniqueBranchName("tf", "my_repo.io", now)
	assert.Equal(t, "tf-myrepoio-20260823-143005", name)
}

func TestUniqueBranchName_DistinctAcrossRuns(t *testing.T) {
	t.Parallel()

	first := UniqueBranchName("tf", "repo", time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC))
	second := UniqueBranchName("tf", "repo", time.Date(2026, 8, 23, 10, 0, 1, 0, time.UTC))
	assert.NotEqual(t, first, second)
}
