// Package tfmutate edits parameters inside Terraform documents held in
// memory.
//
// Two mutation strategies cooperate: a structural one that parses the whole
// document with hclwrite and rewrites the targeted node, and a textual one
// that splices a replacement directly into the raw text. The Coordinator
// tries the structural strategy first where it applies and falls back to the
// textual one unconditionally, so a document that the parser rejects can
// still be patched. The textual strategy never touches bytes outside the
// targeted block.
package tfmutate
