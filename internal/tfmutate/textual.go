package tfmutate

import (
	"regexp"
	"strings"
)

// TextualMutator splices attribute edits directly into raw document text.
// It is the fallback when structural parsing fails, and the primary
// strategy for variable blocks and simple top-level attributes.
//
// Both operations are transactional: on success the returned text differs
// only inside the targeted block, and on failure the input is returned
// byte-identical with ok == false.
type TextualMutator struct{}

// Update replaces the value portion of the first matching attribute
// assignment inside the referenced block. For nested paths the flattened
// dotted form ("a.b.c = ...") is tried before the bare leaf attribute.
func (TextualMutator) Update(content string, ref BlockRef, path ParameterPath, literal string) (string, bool) {
	span, ok := Locate(content, ref)
	if !ok {
		return content, false
	}
	body := content[span.BodyStart:span.BodyEnd]

	var patterns []*regexp.Regexp
	if path.Nested() {
		patterns = append(patterns, assignPattern(dottedPattern(path)))
	}
	patterns = append(patterns, assignPattern(regexp.QuoteMeta(path.Leaf())))

	for _, pattern := range patterns {
		loc := pattern.FindStringSubmatchIndex(body)
		if loc == nil {
			continue
		}
		// Group 1 is the "name =" prefix, group 2 the value span.
		newBody := body[:loc[4]] + literal + body[loc[5]:]
		return content[:span.BodyStart] + newBody + content[span.BodyEnd:], true
	}
	return content, false
}

// Insert splices a freshly formatted attribute immediately before the
// block's closing delimiter. Nested paths open one sub-block per remaining
// segment, at any depth.
func (TextualMutator) Insert(content string, ref BlockRef, path ParameterPath, literal string) (string, bool) {
	span, ok := Locate(content, ref)
	if !ok {
		return content, false
	}
	snippet := nestedSnippet(path, literal)
	prefix := content[:span.BodyEnd]
	if !strings.HasSuffix(prefix, "\n") {
		snippet = "\n" + snippet
	}
	return prefix + snippet + content[span.BodyEnd:], true
}

// AppendBlock adds a whole new block holding a single attribute to the end
// of the document. Used when a variable block named by the change does not
// exist yet.
func (TextualMutator) AppendBlock(content string, ref BlockRef, path ParameterPath, literal string) string {
	var b strings.Builder
	b.WriteString(content)
	if content != "" && !strings.HasSuffix(content, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n")
	switch ref.Kind {
	case BlockResource:
		b.WriteString(`resource "` + ref.Subtype + `" "` + ref.identifier() + `" {` + "\n")
	default:
		b.WriteString(ref.Kind.String() + ` "` + ref.Name + `" {` + "\n")
	}
	b.WriteString(nestedSnippet(path, literal))
	b.WriteString("}\n")
	return b.String()
}

// assignPattern matches one attribute assignment line, capturing the
// "name =" prefix and the value text. The value capture runs to the end of
// the line, so trailing inline comments are replaced along with the value.
func assignPattern(namePattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^([ \t]*` + namePattern + `[ \t]*=[ \t]*)(.+?)[ \t]*$`)
}

// nestedSnippet renders the attribute assignment wrapped in one sub-block
// per intermediate path segment, indented two spaces per level.
func nestedSnippet(path ParameterPath, literal string) string {
	var b strings.Builder
	depth := len(path)
	for i := 0; i < depth-1; i++ {
		b.WriteString(strings.Repeat("  ", i+1))
		b.WriteString(path[i])
		b.WriteString(" {\n")
	}
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(path.Leaf())
	b.WriteString(" = ")
	b.WriteString(literal)
	b.WriteString("\n")
	for i := depth - 2; i >= 0; i-- {
		b.WriteString(strings.Repeat("  ", i+1))
		b.WriteString("}\n")
	}
	return b.String()
}
