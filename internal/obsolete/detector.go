// Package obsolete decides whether a pending Terraform change has already
// been superseded upstream. It extracts a small set of well-known
// parameters from two document snapshots and compares version-shaped values
// so that a change proposing an older version than the base branch already
// carries is not published.
package obsolete

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Verdict is the outcome of comparing one well-known parameter across two
// document snapshots.
type Verdict int

const (
	// Behind means the first value is older than the second.
	Behind Verdict = -1
	// Equal means both values carry the same version token.
	Equal Verdict = 0
	// Ahead means the first value is newer than the second.
	Ahead Verdict = 1
	// Incomparable means no numeric version token could be extracted from
	// one or both values. Incomparable never blocks a change.
	Incomparable Verdict = 2
)

func (v Verdict) String() string {
	switch v {
	case Behind:
		return "behind"
	case Equal:
		return "equal"
	case Ahead:
		return "ahead"
	default:
		return "incomparable"
	}
}

// ParameterNames lists the well-known parameters inspected for
// obsolescence, in comparison order.
var ParameterNames = []string{
	"version",
	"kubernetes_version",
	"instance_type",
	"source",
	"app_version",
}

// KeyParameterSnapshot maps well-known parameter names to the raw literal
// text of their first assignment in a document.
type KeyParameterSnapshot map[string]string

// parameterPatterns anchor each name to the start of a line so that
// "version" does not match inside "kubernetes_version". The capture is the
// raw literal, quotes included.
var parameterPatterns = func() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(ParameterNames))
	for _, name := range ParameterNames {
		patterns[name] = regexp.MustCompile(`(?m)^\s*` + regexp.QuoteMeta(name) + `\s*=\s*(.+?)\s*$`)
	}
	return patterns
}()

// versionToken extracts a leading major.minor number, tolerating
// surrounding quotes.
var versionToken = regexp.MustCompile(`"?(\d+\.\d+)"?`)

// ExtractKeyParameters scans a document for the well-known parameters and
// returns those found.
func ExtractKeyParameters(content string) KeyParameterSnapshot {
	snapshot := make(KeyParameterSnapshot)
	for name, pattern := range parameterPatterns {
		if m := pattern.FindStringSubmatch(content); m != nil {
			snapshot[name] = m[1]
		}
	}
	return snapshot
}

// CompareVersions compares the first major.minor token of each value as
// floating-point numbers. Values with no extractable token are
// Incomparable.
func CompareVersions(a, b string) Verdict {
	ma := versionToken.FindStringSubmatch(a)
	mb := versionToken.FindStringSubmatch(b)
	if ma == nil || mb == nil {
		return Incomparable
	}
	va, errA := strconv.ParseFloat(ma[1], 64)
	vb, errB := strconv.ParseFloat(mb[1], 64)
	if errA != nil || errB != nil {
		return Incomparable
	}
	switch {
	case va > vb:
		return Ahead
	case va < vb:
		return Behind
	default:
		return Equal
	}
}

// Report is the detector's decision for one file.
type Report struct {
	Obsolete bool
	Reasons  []string
}

// Reason joins the per-parameter reasons for human consumption.
func (r Report) Reason() string {
	return strings.Join(r.Reasons, "; ")
}

// Check compares the base-branch snapshot of a file against the locally
// produced new content. The change is obsolete when any well-known
// parameter on the base branch is ahead of what the change is trying to
// set; equal and incomparable parameters never block.
func Check(baseContent, newContent string) Report {
	baseParams := ExtractKeyParameters(baseContent)
	newParams := ExtractKeyParameters(newContent)

	var reasons []string
	for _, name := range ParameterNames {
		baseValue, inBase := baseParams[name]
		newValue, inNew := newParams[name]
		if !inBase || !inNew {
			continue
		}
		if CompareVersions(baseValue, newValue) == Ahead {
			reasons = append(reasons, fmt.Sprintf(
				"base branch %s (%s) is ahead of target (%s)", name, baseValue, newValue))
		}
	}
	return Report{Obsolete: len(reasons) > 0, Reasons: reasons}
}

// SnapshotUnavailableError reports that a document needed for the
// comparison could not be fetched. It is distinct from an obsolescence
// verdict: the caller learns the check did not run, not that it passed.
type SnapshotUnavailableError struct {
	Ref string
	Err error
}

func (e *SnapshotUnavailableError) Error() string {
	return fmt.Sprintf("snapshot unavailable for ref %q: %v", e.Ref, e.Err)
}

func (e *SnapshotUnavailableError) Unwrap() error { return e.Err }
