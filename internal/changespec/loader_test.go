package changespec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "changes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_FullSpec(t *testing.T) {
	t.Parallel()

	path := writeSpec(t, `
repositories:
  - owner: acme
    repo: platform
    files:
      - path: terraform/main.tf
        changes:
          variables:
            - image_tag:
                image_tag:
                  update:
                    - from: ["1.0", "1.1"]
                      to: "1.2"
          resources:
            - aws_instance.web:
                monitoring:
                  param_not_found:
                    action: add
                    value: true
          modules:
            - eks:
                cluster_version:
                  update:
                    - from: ["1.27"]
                      to: "1.29"
settings:
  create_pr: true
  pr_title_template: "Automated Update - {{timestamp}}"
`)

	spec, err := Load(path)
	require.NoError(t, err)
	require.Len(t, spec.Repositories, 1)

	repo := spec.Repositories[0]
	assert.Equal(t, "acme/platform", repo.FullName())
	require.Len(t, repo.Files, 1)

	file := repo.Files[0]
	assert.Equal(t, "terraform/main.tf", file.Path)

	variables := file.Changes[ChangeVariables]
	require.Len(t, variables, 1)
	action := variables[0]["image_tag"]["image_tag"]
	require.Len(t, action.Update, 1)
	assert.Equal(t, []string{"1.0", "1.1"}, action.Update[0].From)
	assert.Equal(t, "1.2", action.Update[0].To)

	resources := file.Changes[ChangeResources]
	require.Len(t, resources, 1)
	notFound := resources[0]["aws_instance.web"]["monitoring"].ParamNotFound
	require.NotNil(t, notFound)
	assert.Equal(t, "add", notFound.Action)
	assert.Equal(t, true, notFound.Value)

	assert.True(t, spec.Settings.ShouldCreatePR())
	assert.Equal(t, "Automated Update - {{timestamp}}", spec.Settings.PRTitleTemplate)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	validFile := File{
		Path:    "main.tf",
		Changes: map[string][]BlockChange{ChangeVariables: {{"a": {"b": Action{}}}}},
	}

	testCases := []struct {
		name    string
		spec    Spec
		wantErr string
	}{
		{
			name:    "no repositories",
			spec:    Spec{},
			wantErr: "repositories",
		},
		{
			name:    "missing owner",
			spec:    Spec{Repositories: []Repository{{Repo: "r", Files: []File{validFile}}}},
			wantErr: "repository 1: 'owner'",
		},
		{
			name:    "missing repo",
			spec:    Spec{Repositories: []Repository{{Owner: "o", Files: []File{validFile}}}},
			wantErr: "repository 1: 'repo'",
		},
		{
			name:    "no files",
			spec:    Spec{Repositories: []Repository{{Owner: "o", Repo: "r"}}},
			wantErr: "'files'",
		},
		{
			name: "missing path",
			spec: Spec{Repositories: []Repository{{Owner: "o", Repo: "r", Files: []File{
				{Changes: validFile.Changes},
			}}}},
			wantErr: "repository 1, file 1: 'path'",
		},
		{
			name: "empty changes",
			spec: Spec{Repositories: []Repository{{Owner: "o", Repo: "r", Files: []File{
				{Path: "main.tf"},
			}}}},
			wantErr: "'changes'",
		},
		{
			name: "unknown change kind",
			spec: Spec{Repositories: []Repository{{Owner: "o", Repo: "r", Files: []File{
				{Path: "main.tf", Changes: map[string][]BlockChange{"outputs": nil}},
			}}}},
			wantErr: "invalid change type",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.spec.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}

	valid := Spec{Repositories: []Repository{{Owner: "o", Repo: "r", Files: []File{validFile}}}}
	assert.NoError(t, valid.Validate())
}

func TestSettings_ShouldCreatePR(t *testing.T) {
	t.Parallel()

	assert.True(t, Settings{}.ShouldCreatePR(), "omitted setting defaults to true")

	off := false
	assert.False(t, Settings{CreatePR: &off}.ShouldCreatePR())
}
