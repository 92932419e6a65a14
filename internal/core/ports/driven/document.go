package driven

import "github.com/custodia-labs/lettergen/internal/core/domain"

// DocumentCodec opens structured documents for text editing.
type DocumentCodec interface {
	// Open parses the document at path.
	Open(path string) (EditableDocument, error)

	// Extension returns the file extension the codec handles, without a dot.
	Extension() string
}

// EditableDocument is an opened structured document.
// Edits are made through Body; Save writes only the text that changed.
type EditableDocument interface {
	// Body returns the mutable text structure of the document.
	Body() *domain.DocumentBody

	// Save persists the document to path, preserving all formatting.
	Save(path string) error
}

// FileCopier performs the filesystem steps of document production.
type FileCopier interface {
	// Copy copies src to dst byte-for-byte, replacing dst if it exists.
	Copy(src, dst string) error

	// EnsureDir creates dir and any missing parents.
	EnsureDir(dir string) error
}
