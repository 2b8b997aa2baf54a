package tfmutate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextualUpdate_ReplacesValueOnly(t *testing.T) {
	t.Parallel()

	content := `variable "image_tag" {
  description = "Tag for the app image"
  default     = "1.0"
}
`
	var m TextualMutator
	updated, ok := m.Update(content, VariableRef("image_tag"), ParsePath("default"), `"1.2"`)
	require.True(t, ok)
	assert.Contains(t, updated, `default     = "1.2"`)
	assert.Contains(t, updated, `description = "Tag for the app image"`,
		"untouched lines must survive byte-identical")
	assert.Equal(t, len(content), len(updated), "same-width replacement keeps the document size")
}

func TestTextualUpdate_DottedFormPreferred(t *testing.T) {
	t.Parallel()

	content := `module "net" {
  vpc.cidr_block = "10.0.0.0/16"
}
`
	var m TextualMutator
	updated, ok := m.Update(content, ModuleRef("net"), ParsePath("vpc.cidr_block"), `"10.1.0.0/16"`)
	require.True(t, ok)
	assert.Contains(t, updated, `vpc.cidr_block = "10.1.0.0/16"`)
}

func TestTextualUpdate_LeafFallbackForNestedPath(t *testing.T) {
	t.Parallel()

	content := `module "eks" {
  cluster {
    version = "1.27"
  }
}
`
	var m TextualMutator
	updated, ok := m.Update(content, ModuleRef("eks"), ParsePath("cluster.version"), `"1.29"`)
	require.True(t, ok)
	assert.Contains(t, updated, `version = "1.29"`)
}

func TestTextualUpdate_FailureLeavesInputIntact(t *testing.T) {
	t.Parallel()

	content := `variable "image_tag" {
  default = "1.0"
}
`
	var m TextualMutator

	updated, ok := m.Update(content, VariableRef("image_tag"), ParsePath("no_such_attr"), `"x"`)
	assert.False(t, ok)
	assert.Equal(t, content, updated, "failed update must return the input byte-identical")

	updated, ok = m.Update(content, VariableRef("missing_block"), ParsePath("default"), `"x"`)
	assert.False(t, ok)
	assert.Equal(t, content, updated)
}

func TestTextualInsert_TopLevel(t *testing.T) {
	t.Parallel()

	content := `resource "aws_instance" "web" {
  instance_type = "t3.micro"
}
`
	ref, err := ResourceRef("aws_instance.web")
	require.NoError(t, err)

	var m TextualMutator
	updated, ok := m.Insert(content, ref, ParsePath("monitoring"), "true")
	require.True(t, ok)
	assert.Contains(t, updated, "monitoring = true")
	assert.Contains(t, updated, `instance_type = "t3.micro"`)
	assert.True(t, strings.Index(updated, "monitoring") > strings.Index(updated, "instance_type"),
		"new attributes land at the end of the block body")
}

func TestTextualInsert_ArbitraryDepth(t *testing.T) {
	t.Parallel()

	content := `module "eks" {
  version = "19.0"
}
`
	var m TextualMutator
	updated, ok := m.Insert(content, ModuleRef("eks"), ParsePath("cluster.network.policy.mode"), `"strict"`)
	require.True(t, ok)
	assert.Contains(t, updated, "cluster {")
	assert.Contains(t, updated, "network {")
	assert.Contains(t, updated, "policy {")
	assert.Contains(t, updated, `mode = "strict"`)
	// One closing brace per opened sub-block plus the module's own.
	assert.Equal(t, strings.Count(updated, "{"), strings.Count(updated, "}"))
}

func TestTextualInsert_MissingBlock(t *testing.T) {
	t.Parallel()

	var m TextualMutator
	content := "# empty\n"
	updated, ok := m.Insert(content, ModuleRef("ghost"), ParsePath("x"), "1")
	assert.False(t, ok)
	assert.Equal(t, content, updated)
}

func TestAppendBlock(t *testing.T) {
	t.Parallel()

	var m TextualMutator
	updated := m.AppendBlock("# header\n", VariableRef("replicas"), ParsePath("default"), "3")
	assert.Contains(t, updated, `variable "replicas" {`)
	assert.Contains(t, updated, "default = 3")
	assert.True(t, strings.HasSuffix(updated, "}\n"))
}
