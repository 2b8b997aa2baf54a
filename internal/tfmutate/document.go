package tfmutate

// WorkingDocument is the in-memory buffer holding one file's text while its
// changes are applied. It is owned by a single Coordinator for the duration
// of the file's processing and never shared across files or goroutines.
type WorkingDocument struct {
	path    string
	content string
	changed bool
}

// NewWorkingDocument wraps freshly fetched file content.
func NewWorkingDocument(path, content string) *WorkingDocument {
	return &WorkingDocument{path: path, content: content}
}

// Path returns the repository path of the underlying file.
func (d *WorkingDocument) Path() string { return d.path }

// Content returns the current document text.
func (d *WorkingDocument) Content() string { return d.content }

// Changed reports whether any mutation has modified the document. The flag
// is monotonic: once set it stays set until the document is discarded.
func (d *WorkingDocument) Changed() bool { return d.changed }

// Replace installs new content. The changed flag latches when the new text
// differs from the current text.
func (d *WorkingDocument) Replace(content string) {
	if content != d.content {
		d.content = content
		d.changed = true
	}
}

// Reformat installs externally formatted content without latching the
// changed flag; formatting only runs after a real change was made.
func (d *WorkingDocument) Reformat(content string) {
	d.content = content
}
