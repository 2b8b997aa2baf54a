package tfmutate

import "regexp"

// Exists reports whether a plausible occurrence of the parameter path is
// already present within the referenced block's scope.
//
// This is a textual heuristic, not a parse. For nested paths the literal
// dotted sequence is tried first as contiguous text; failing that, the
// block body is searched for the first path segment as either an attribute
// or a sub-block opener. False negatives are possible for heavily
// reformatted documents, and duplicate block names resolve to the first
// match.
func Exists(content string, ref BlockRef, path ParameterPath) bool {
	if len(path) == 0 {
		return false
	}

	if path.Nested() && ref.Kind != BlockVariable {
		dotted := regexp.MustCompile(dottedPattern(path))
		if dotted.MatchString(content) {
			return true
		}
		return segmentInBlock(content, ref, path[0])
	}

	span, ok := Locate(content, ref)
	if !ok {
		return false
	}
	body := content[span.BodyStart:span.BodyEnd]
	attr := regexp.MustCompile(`\b` + regexp.QuoteMeta(path.Leaf()) + `\s*=`)
	return attr.MatchString(body)
}

// segmentInBlock looks for the first path segment inside the block body,
// matching both flattened attributes ("a.b = 1" styles collapse to "a") and
// nested sub-block openers ("a {").
func segmentInBlock(content string, ref BlockRef, segment string) bool {
	span, ok := Locate(content, ref)
	if !ok {
		return false
	}
	body := content[span.BodyStart:span.BodyEnd]
	opener := regexp.MustCompile(`\b` + regexp.QuoteMeta(segment) + `\s*[={]`)
	return opener.MatchString(body)
}

func dottedPattern(path ParameterPath) string {
	pattern := ""
	for i, segment := range path {
		if i > 0 {
			pattern += `\.`
		}
		pattern += regexp.QuoteMeta(segment)
	}
	return pattern
}
