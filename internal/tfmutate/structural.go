package tfmutate

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/vk/terrapatch/internal/ctxlog"
)

// StructuralMutator parses the whole document into a tree, mutates the
// targeted node and re-serializes. It is the first-attempt strategy for
// nested updates on resource and module blocks.
type StructuralMutator struct{}

// Apply sets the attribute named by path inside the referenced block,
// creating intermediate sub-blocks for missing path segments. When the
// document cannot be parsed or the block is absent, the input is returned
// untouched with ok == false so the caller can fall back to the textual
// strategy; a parse failure is logged, never surfaced as an error.
func (StructuralMutator) Apply(ctx context.Context, content string, ref BlockRef, path ParameterPath, val Value) (string, bool) {
	logger := ctxlog.FromContext(ctx)

	file, diags := hclwrite.ParseConfig([]byte(content), ref.Name+".tf", hcl.InitialPos)
	if diags.HasErrors() {
		logger.Warn("structural parse failed, falling back to textual splice",
			"block", ref.String(), "error", diags.Error())
		return content, false
	}

	block := findBlock(file.Body(), ref)
	if block == nil {
		logger.Debug("block not found in parsed document", "block", ref.String())
		return content, false
	}

	body := block.Body()
	for _, segment := range path[:len(path)-1] {
		nested := firstNestedBlock(body, segment)
		if nested == nil {
			nested = body.AppendNewBlock(segment, nil)
		}
		body = nested.Body()
	}

	if ctyVal, ok := val.ctyValue(); ok {
		body.SetAttributeValue(path.Leaf(), ctyVal)
	} else {
		body.SetAttributeRaw(path.Leaf(), rawTokens(val.Literal()))
	}
	return string(file.Bytes()), true
}

func findBlock(body *hclwrite.Body, ref BlockRef) *hclwrite.Block {
	switch ref.Kind {
	case BlockVariable:
		return body.FirstMatchingBlock("variable", []string{ref.Name})
	case BlockResource:
		return body.FirstMatchingBlock("resource", []string{ref.Subtype, ref.identifier()})
	case BlockModule:
		return body.FirstMatchingBlock("module", []string{ref.Name})
	}
	return nil
}

// firstNestedBlock finds an unlabeled sub-block by type. FirstMatchingBlock
// is not used here because intermediate segments never carry labels.
func firstNestedBlock(body *hclwrite.Body, name string) *hclwrite.Block {
	for _, block := range body.Blocks() {
		if block.Type() == name && len(block.Labels()) == 0 {
			return block
		}
	}
	return nil
}

// rawTokens wraps an expression string as a single opaque token for
// SetAttributeRaw. hclwrite re-lexes on serialization, so one ident token
// carrying the full text is sufficient.
func rawTokens(text string) hclwrite.Tokens {
	return hclwrite.Tokens{
		&hclwrite.Token{Type: hclsyntax.TokenIdent, Bytes: []byte(text)},
	}
}
