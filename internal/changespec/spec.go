// Package changespec loads and validates the declarative change
// specification that drives a run: which repositories to touch, which files
// inside them, and which block parameters to update or insert.
package changespec

import "fmt"

// Change categories a file entry may carry.
const (
	ChangeVariables = "variables"
	ChangeResources = "resources"
	ChangeModules   = "modules"
)

// ChangeKinds is the processing order for a file's change categories.
var ChangeKinds = []string{ChangeVariables, ChangeResources, ChangeModules}

// Spec is the root of a change specification document.
type Spec struct {
	Repositories []Repository `yaml:"repositories"`
	Settings     Settings     `yaml:"settings"`
}

// Settings tune run-wide behavior.
type Settings struct {
	CreatePR        *bool  `yaml:"create_pr"`
	PRTitleTemplate string `yaml:"pr_title_template"`
}

// ShouldCreatePR defaults to true when the setting is omitted.
func (s Settings) ShouldCreatePR() bool {
	return s.CreatePR == nil || *s.CreatePR
}

// Repository selects one repository and the files to change in it.
type Repository struct {
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`
	Files []File `yaml:"files"`
}

// FullName returns the owner/repo form.
func (r Repository) FullName() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Repo)
}

// File maps a repository path to its changes, keyed by change category.
type File struct {
	Path    string                   `yaml:"path"`
	Changes map[string][]BlockChange `yaml:"changes"`
}

// BlockChange maps a block name (variable name, "<type>.<name>" resource,
// or module name) to the parameters changed inside it.
type BlockChange map[string]ParamSet

// ParamSet maps a possibly dotted parameter path to its action.
type ParamSet map[string]Action

// Action is either a list of update rules or a missing-parameter policy.
type Action struct {
	Update        []UpdateRule `yaml:"update"`
	ParamNotFound *NotFound    `yaml:"param_not_found"`
}

// UpdateRule replaces a parameter value. From documents the values the
// author expects to be replacing; it is not verified before overwriting.
type UpdateRule struct {
	From []string `yaml:"from"`
	To   any      `yaml:"to"`
}

// NotFound declares the policy for an absent parameter.
type NotFound struct {
	Action string `yaml:"action"`
	Value  any    `yaml:"value"`
}
