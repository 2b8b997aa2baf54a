package tfmutate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const locatorFixture = `
variable "image_tag" {
  default = "1.0"
}

resource "aws_instance" "web" {
  instance_type = "t3.micro"
  tags = {
    Name = "web-{server}"
  }
}

module "eks" {
  source  = "terraform-aws-modules/eks/aws"
  version = "19.0"
}
`

func TestLocate_Variable(t *testing.T) {
	t.Parallel()

	span, ok := Locate(locatorFixture, VariableRef("image_tag"))
	require.True(t, ok)
	body := locatorFixture[span.BodyStart:span.BodyEnd]
	assert.Contains(t, body, `default = "1.0"`)
	assert.NotContains(t, body, "aws_instance")
}

func TestLocate_Resource(t *testing.T) {
	t.Parallel()

	ref, err := ResourceRef("aws_instance.web")
	require.NoError(t, err)

	span, ok := Locate(locatorFixture, ref)
	require.True(t, ok)
	body := locatorFixture[span.BodyStart:span.BodyEnd]
	assert.Contains(t, body, "instance_type")
	// The nested tags block, including the brace inside the string literal,
	// must stay inside the resolved span.
	assert.Contains(t, body, `Name = "web-{server}"`)
	assert.NotContains(t, body, "module")
}

func TestLocate_Module(t *testing.T) {
	t.Parallel()

	span, ok := Locate(locatorFixture, ModuleRef("eks"))
	require.True(t, ok)
	body := locatorFixture[span.BodyStart:span.BodyEnd]
	assert.Contains(t, body, `version = "19.0"`)
}

func TestLocate_Absent(t *testing.T) {
	t.Parallel()

	_, ok := Locate(locatorFixture, VariableRef("no_such_variable"))
	assert.False(t, ok)
}

func TestLocate_UnbalancedBraces(t *testing.T) {
	t.Parallel()

	_, ok := Locate(`variable "broken" {`, VariableRef("broken"))
	assert.False(t, ok, "a block with no closing brace has no span")
}

func TestResourceRef(t *testing.T) {
	t.Parallel()

	ref, err := ResourceRef("aws_eks_cluster.main")
	require.NoError(t, err)
	assert.Equal(t, BlockResource, ref.Kind)
	assert.Equal(t, "aws_eks_cluster.main", ref.Name)
	assert.Equal(t, "aws_eks_cluster", ref.Subtype)
	assert.Equal(t, "main", ref.identifier())
}

func TestResourceRef_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ResourceRef("just_a_name")
	require.Error(t, err)
	var refErr *MalformedBlockReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "just_a_name", refErr.Name)
}
