// Package format invokes the external terraform binary to canonically
// format mutated documents. Formatting is best-effort: an unavailable or
// failing formatter never blocks a commit.
package format

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/hashicorp/terraform-exec/tfexec"
)

// Status is the outcome of one formatting attempt.
type Status int

const (
	// StatusOK means the content was formatted.
	StatusOK Status = iota
	// StatusUnavailable means no terraform binary could be found.
	StatusUnavailable
	// StatusFailed means terraform fmt rejected the content.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnavailable:
		return "unavailable"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Terraform formats documents by shelling out to the terraform CLI. A nil
// *Terraform is a valid, permanently unavailable formatter.
type Terraform struct {
	tf *tfexec.Terraform
}

// NewTerraform locates the terraform binary on PATH. When the binary is
// missing an error is returned; callers typically keep the nil formatter
// and carry on unformatted.
func NewTerraform() (*Terraform, error) {
	execPath, err := exec.LookPath("terraform")
	if err != nil {
		return nil, fmt.Errorf("terraform binary not found: %w", err)
	}
	tf, err := tfexec.NewTerraform(os.TempDir(), execPath)
	if err != nil {
		return nil, fmt.Errorf("initializing terraform runner: %w", err)
	}
	return &Terraform{tf: tf}, nil
}

// FormatDocument runs the content through terraform fmt. On any non-OK
// status the input is returned unchanged.
func (t *Terraform) FormatDocument(ctx context.Context, content string) (string, Status) {
	if t == nil || t.tf == nil {
		return content, StatusUnavailable
	}
	formatted, err := t.tf.FormatString(ctx, content)
	if err != nil {
		return content, StatusFailed
	}
	return formatted, StatusOK
}
