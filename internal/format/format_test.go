package format

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNilFormatterIsUnavailable(t *testing.T) {
	t.Parallel()

	var tf *Terraform
	content := "variable \"x\" {}\n"
	out, status := tf.FormatDocument(context.Background(), content)
	assert.Equal(t, StatusUnavailable, status)
	assert.Equal(t, content, out, "unavailable formatter returns the input unchanged")
}

func TestStatusString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "unavailable", StatusUnavailable.String())
	assert.Equal(t, "failed", StatusFailed.String())
}
