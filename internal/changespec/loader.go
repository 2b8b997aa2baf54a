package changespec

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads, parses and validates a change specification file.
func Load(path string) (*Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading change spec %q: %w", path, err)
	}
	var spec Spec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("parsing change spec %q: %w", path, err)
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("validating change spec %q: %w", path, err)
	}
	return &spec, nil
}

// Validate checks the structural shape of the specification. Errors carry
// positional context so a large spec file can be corrected quickly.
func (s *Spec) Validate() error {
	if len(s.Repositories) == 0 {
		return fmt.Errorf("'repositories' must be a non-empty list")
	}
	for i, repo := range s.Repositories {
		repoCtx := fmt.Sprintf("repository %d", i+1)
		if strings.TrimSpace(repo.Owner) == "" {
			return fmt.Errorf("%s: 'owner' must be a non-empty string", repoCtx)
		}
		if strings.TrimSpace(repo.Repo) == "" {
			return fmt.Errorf("%s: 'repo' must be a non-empty string", repoCtx)
		}
		if len(repo.Files) == 0 {
			return fmt.Errorf("%s: 'files' must be a non-empty list", repoCtx)
		}
		for j, file := range repo.Files {
			fileCtx := fmt.Sprintf("%s, file %d", repoCtx, j+1)
			if strings.TrimSpace(file.Path) == "" {
				return fmt.Errorf("%s: 'path' must be a non-empty string", fileCtx)
			}
			if len(file.Changes) == 0 {
				return fmt.Errorf("%s: 'changes' must be a non-empty mapping", fileCtx)
			}
			for kind := range file.Changes {
				if !slices.Contains(ChangeKinds, kind) {
					return fmt.Errorf("%s: invalid change type %q, must be one of %v", fileCtx, kind, ChangeKinds)
				}
			}
		}
	}
	return nil
}
