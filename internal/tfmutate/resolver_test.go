package tfmutate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resolverFixture = `
variable "image_tag" {
  default = "1.0"
}

resource "aws_eks_cluster" "main" {
  version = "1.27"
  vpc_config {
    endpoint_private_access = true
  }
}

module "app" {
  app_version = "2.0"
}
`

func TestExists_TopLevelAttribute(t *testing.T) {
	t.Parallel()

	assert.True(t, Exists(resolverFixture, VariableRef("image_tag"), ParsePath("default")))
	assert.False(t, Exists(resolverFixture, VariableRef("image_tag"), ParsePath("description")))
	assert.True(t, Exists(resolverFixture, ModuleRef("app"), ParsePath("app_version")))
}

func TestExists_NestedPath(t *testing.T) {
	t.Parallel()

	ref, err := ResourceRef("aws_eks_cluster.main")
	require.NoError(t, err)

	// The first segment opens a sub-block inside the resource body.
	assert.True(t, Exists(resolverFixture, ref, ParsePath("vpc_config.endpoint_private_access")))
	assert.False(t, Exists(resolverFixture, ref, ParsePath("kubernetes_network_config.ip_family")))
}

func TestExists_NestedDottedForm(t *testing.T) {
	t.Parallel()

	content := `
module "net" {
  vpc.cidr_block = "10.0.0.0/16"
}
`
	// The flattened dotted spelling counts as present too.
	assert.True(t, Exists(content, ModuleRef("net"), ParsePath("vpc.cidr_block")))
}

func TestExists_BlockAbsent(t *testing.T) {
	t.Parallel()

	assert.False(t, Exists(resolverFixture, VariableRef("missing"), ParsePath("default")))
	assert.False(t, Exists(resolverFixture, ModuleRef("app"), nil))
}

func TestExists_NoSubstringFalsePositive(t *testing.T) {
	t.Parallel()

	content := `
module "app" {
  app_version_override = "9.9"
}
`
	// "app_version" must not match inside "app_version_override"; the
	// assignment pattern requires the '=' to follow the bare name.
	assert.False(t, Exists(content, ModuleRef("app"), ParsePath("app_version")))
}
