package tfmutate

import (
	"fmt"
	"regexp"
	"strings"
)

// BlockKind identifies the syntax used to declare a block.
type BlockKind int

const (
	BlockVariable BlockKind = iota
	BlockResource
	BlockModule
)

func (k BlockKind) String() string {
	switch k {
	case BlockVariable:
		return "variable"
	case BlockResource:
		return "resource"
	case BlockModule:
		return "module"
	}
	return fmt.Sprintf("BlockKind(%d)", int(k))
}

// BlockRef names one block in a document. For resources, Name carries the
// full "<type>.<identifier>" form and Subtype the resource type on its own;
// variables and modules are identified by a single name.
type BlockRef struct {
	Kind    BlockKind
	Name    string
	Subtype string
}

// VariableRef references a variable block by name.
func VariableRef(name string) BlockRef {
	return BlockRef{Kind: BlockVariable, Name: name}
}

// ModuleRef references a module block by name.
func ModuleRef(name string) BlockRef {
	return BlockRef{Kind: BlockModule, Name: name}
}

// ResourceRef references a resource block by its "<type>.<identifier>"
// name. A name without a type is malformed.
func ResourceRef(name string) (BlockRef, error) {
	typ, _, ok := strings.Cut(name, ".")
	if !ok || typ == "" {
		return BlockRef{}, &MalformedBlockReferenceError{
			Name:   name,
			Reason: "expected format 'resource_type.resource_name'",
		}
	}
	return BlockRef{Kind: BlockResource, Name: name, Subtype: typ}, nil
}

// identifier returns the bare block label: the variable or module name, or
// the resource instance name without its type.
func (r BlockRef) identifier() string {
	if r.Kind == BlockResource {
		_, id, _ := strings.Cut(r.Name, ".")
		return id
	}
	return r.Name
}

func (r BlockRef) String() string {
	return fmt.Sprintf("%s %q", r.Kind, r.Name)
}

// Span is the byte range of a block body, exclusive of the enclosing braces.
type Span struct {
	BodyStart int
	BodyEnd   int
}

// headerPattern builds the regex matching the block declaration up to and
// including its opening brace.
func headerPattern(ref BlockRef) *regexp.Regexp {
	var header string
	switch ref.Kind {
	case BlockVariable:
		header = `variable\s+"` + regexp.QuoteMeta(ref.Name) + `"\s*\{`
	case BlockResource:
		header = `resource\s+"` + regexp.QuoteMeta(ref.Subtype) + `"\s+"` + regexp.QuoteMeta(ref.identifier()) + `"\s*\{`
	case BlockModule:
		header = `module\s+"` + regexp.QuoteMeta(ref.Name) + `"\s*\{`
	}
	return regexp.MustCompile(header)
}

// Locate finds the body span of the first block matching ref. Duplicate
// block names are not disambiguated beyond the first textual match.
func Locate(content string, ref BlockRef) (Span, bool) {
	loc := headerPattern(ref).FindStringIndex(content)
	if loc == nil {
		return Span{}, false
	}
	open := loc[1] - 1 // the trailing '{' of the header match
	end, ok := matchBrace(content, open)
	if !ok {
		return Span{}, false
	}
	return Span{BodyStart: open + 1, BodyEnd: end}, true
}

// matchBrace scans forward from the opening brace at open and returns the
// index of its matching closing brace. Double-quoted strings are skipped so
// braces inside literals do not unbalance the scan; this is still a lexical
// heuristic, not a parse.
func matchBrace(content string, open int) (int, bool) {
	depth := 0
	inString := false
	for i := open; i < len(content); i++ {
		c := content[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
