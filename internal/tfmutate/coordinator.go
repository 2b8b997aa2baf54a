package tfmutate

import (
	"context"
	"fmt"

	"github.com/vk/terrapatch/internal/ctxlog"
)

// MissingAction is the declared policy for a parameter that does not exist
// in the target block.
type MissingAction string

const (
	// MissingAdd inserts the parameter with the provided value.
	MissingAdd MissingAction = "add"
	// MissingError aborts the remaining changes for the current file.
	MissingError MissingAction = "error"
	// MissingSkip leaves the document untouched.
	MissingSkip MissingAction = "skip"
)

// UpdateRule replaces a parameter's value. From lists the values the change
// author expects to replace; it is informational only and is never checked
// against the document before overwriting.
type UpdateRule struct {
	From []string
	To   any
}

// MissingPolicy says what to do when the parameter is absent.
type MissingPolicy struct {
	Action MissingAction
	Value  any
}

// ChangeAction is one requested mutation: either a set of update rules or a
// missing-parameter policy.
type ChangeAction struct {
	Update    []UpdateRule
	OnMissing *MissingPolicy
}

// Result reports the outcome of applying one ChangeAction. Per-parameter
// failures are expressed here rather than as errors; only file-fatal
// conditions escape Coordinator.Apply as an error.
type Result struct {
	OK      bool
	Changed bool
	Reason  string
	Summary string
}

// Coordinator orchestrates one mutation at a time against a
// WorkingDocument: resolve existence, choose add vs update, try the
// structural mutator, fall back to the textual one. It never runs the two
// strategies concurrently and never hands a document to a second parameter
// before the first completes.
type Coordinator struct {
	structural StructuralMutator
	textual    TextualMutator
	runlog     *RunLog
}

// NewCoordinator creates a Coordinator recording into the given RunLog.
func NewCoordinator(runlog *RunLog) *Coordinator {
	return &Coordinator{runlog: runlog}
}

// Apply executes one ChangeAction against the document. The returned error
// is non-nil only for conditions that must abort the whole file, such as a
// required parameter being absent.
func (c *Coordinator) Apply(ctx context.Context, doc *WorkingDocument, ref BlockRef, path ParameterPath, action ChangeAction) (Result, error) {
	logger := ctxlog.FromContext(ctx)

	if len(path) == 0 {
		c.runlog.RecordError("empty parameter path", "block", ref.String())
		return Result{Reason: "empty parameter path"}, nil
	}
	if ref.Kind == BlockResource && ref.Subtype == "" {
		err := &MalformedBlockReferenceError{Name: ref.Name, Reason: "resource name is missing its type"}
		c.runlog.RecordError(err.Error(), "parameter", path.String())
		return Result{Reason: err.Error()}, nil
	}

	if len(action.Update) > 0 {
		return c.applyUpdate(ctx, doc, ref, path, action.Update)
	}
	if action.OnMissing != nil {
		return c.applyMissingPolicy(ctx, doc, ref, path, *action.OnMissing)
	}

	logger.Debug("change action carries no operation", "parameter", path.String())
	return Result{OK: true, Reason: "no operation requested"}, nil
}

func (c *Coordinator) applyUpdate(ctx context.Context, doc *WorkingDocument, ref BlockRef, path ParameterPath, rules []UpdateRule) (Result, error) {
	logger := ctxlog.FromContext(ctx)

	if !Exists(doc.Content(), ref, path) {
		reason := fmt.Sprintf("parameter %q not found in %s: %v", path.String(), ref.String(), ErrParameterNotFound)
		logger.Warn("skipping update for absent parameter", "parameter", path.String(), "block", ref.String())
		c.runlog.Record(reason)
		return Result{OK: true, Reason: reason}, nil
	}

	for _, rule := range rules {
		if rule.To == nil {
			logger.Warn("update rule has no target value", "parameter", path.String())
			continue
		}
		val := Classify(rule.To)
		updated, ok := c.mutate(ctx, doc.Content(), ref, path, val)
		if !ok {
			continue
		}
		doc.Replace(updated)
		summary := fmt.Sprintf("Updated %s: %s → %s", path.String(), firstCandidate(rule.From), val.Literal())
		logger.Info("parameter updated", "parameter", path.String(), "block", ref.String(), "value", val.Literal())
		c.runlog.Record(summary, "block", ref.String())
		return Result{OK: true, Changed: true, Reason: "updated", Summary: summary}, nil
	}

	reason := fmt.Sprintf("no update rule matched for %q", path.String())
	c.runlog.Record(reason, "block", ref.String())
	return Result{OK: true, Reason: reason}, nil
}

func (c *Coordinator) applyMissingPolicy(ctx context.Context, doc *WorkingDocument, ref BlockRef, path ParameterPath, policy MissingPolicy) (Result, error) {
	logger := ctxlog.FromContext(ctx)
	present := Exists(doc.Content(), ref, path)

	switch policy.Action {
	case MissingSkip:
		return Result{OK: true, Reason: "skipped by policy"}, nil

	case MissingError:
		if present {
			return Result{OK: true, Reason: "required parameter present"}, nil
		}
		err := &MissingRequiredParameterError{Param: path.String(), Block: ref.Name}
		c.runlog.RecordError(err.Error())
		return Result{Reason: err.Error()}, err

	case MissingAdd:
		if policy.Value == nil {
			logger.Warn("add policy declared without a value", "parameter", path.String())
			return Result{OK: true, Reason: "add requested without value"}, nil
		}
		val := Classify(policy.Value)
		if present {
			// The parameter surfaced after all; update it in place instead.
			updated, ok := c.mutate(ctx, doc.Content(), ref, path, val)
			if !ok {
				reason := fmt.Sprintf("parameter %q reported present but no assignment matched", path.String())
				c.runlog.RecordError(reason, "block", ref.String())
				return Result{Reason: reason}, nil
			}
			doc.Replace(updated)
			summary := fmt.Sprintf("Updated %s: %s", path.String(), val.Literal())
			c.runlog.Record(summary, "block", ref.String())
			return Result{OK: true, Changed: true, Reason: "updated existing parameter", Summary: summary}, nil
		}
		return c.insert(ctx, doc, ref, path, val)

	default:
		logger.Warn("unknown missing-parameter action, skipping", "action", string(policy.Action), "parameter", path.String())
		return Result{OK: true, Reason: fmt.Sprintf("unknown action %q", policy.Action)}, nil
	}
}

// mutate performs an in-place value replacement. Nested paths on resource
// and module blocks go through the structural mutator first; everything
// else, and any structural failure, takes the textual path.
func (c *Coordinator) mutate(ctx context.Context, content string, ref BlockRef, path ParameterPath, val Value) (string, bool) {
	if path.Nested() && ref.Kind != BlockVariable {
		if updated, ok := c.structural.Apply(ctx, content, ref, path, val); ok {
			return updated, true
		}
		c.runlog.Record("structural mutation unavailable, using textual fallback",
			"block", ref.String(), "parameter", path.String())
	}
	return c.textual.Update(content, ref, path, val.Literal())
}

func (c *Coordinator) insert(ctx context.Context, doc *WorkingDocument, ref BlockRef, path ParameterPath, val Value) (Result, error) {
	logger := ctxlog.FromContext(ctx)

	updated, ok := c.textual.Insert(doc.Content(), ref, path, val.Literal())
	if !ok {
		if ref.Kind == BlockVariable {
			// No such variable block yet: declare it at the end of the file.
			doc.Replace(c.textual.AppendBlock(doc.Content(), ref, path, val.Literal()))
			summary := fmt.Sprintf("Added %s %q with %s = %s", ref.Kind, ref.Name, path.String(), val.Literal())
			c.runlog.Record(summary)
			return Result{OK: true, Changed: true, Reason: "block added", Summary: summary}, nil
		}
		reason := fmt.Sprintf("block %s not found for parameter addition", ref.String())
		logger.Warn("insert target block not found", "block", ref.String(), "parameter", path.String())
		c.runlog.RecordError(reason)
		return Result{Reason: reason}, nil
	}

	doc.Replace(updated)
	summary := fmt.Sprintf("Added %s: %s", path.String(), val.Literal())
	logger.Info("parameter added", "parameter", path.String(), "block", ref.String(), "value", val.Literal())
	c.runlog.Record(summary, "block", ref.String())
	return Result{OK: true, Changed: true, Reason: "added", Summary: summary}, nil
}

func firstCandidate(from []string) string {
	if len(from) == 0 {
		return "unknown"
	}
	return from[0]
}
