package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/custodia-labs/lettergen/internal/core/domain"
	"github.com/custodia-labs/lettergen/internal/core/ports/driven"
)

// documentPart is the main story of a WordprocessingML package.
const documentPart = "word/document.xml"

// Ensure Codec implements the interface.
var _ driven.DocumentCodec = (*Codec)(nil)

// Codec opens .docx files.
type Codec struct{}

// New creates a DOCX codec.
func New() *Codec {
	return &Codec{}
}

// Extension returns "docx".
func (c *Codec) Extension() string {
	return "docx"
}

// Open reads and parses the document at path.
func (c *Codec) Open(path string) (driven.EditableDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Document is an opened .docx package.
type Document struct {
	archive *zip.Reader
	xml     []byte
	body    *domain.DocumentBody
	spans   []textSpan
}

// Parse opens a .docx package held in memory.
func Parse(content []byte) (*Document, error) {
	archive, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}

	var part *zip.File
	for _, f := range archive.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return nil, fmt.Errorf("%w: missing %s", domain.ErrInvalidDocument, documentPart)
	}

	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}

	body, spans, err := parseDocumentXML(data)
	if err != nil {
		return nil, err
	}

	return &Document{
		archive: archive,
		xml:     data,
		body:    body,
		spans:   spans,
	}, nil
}

// Body returns the mutable text structure.
func (d *Document) Body() *domain.DocumentBody {
	return d.body
}

// Save writes the package to path, replacing it atomically.
// Every part except word/document.xml is copied without recompression.
func (d *Document) Save(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".lettergen-*.docx")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := d.Encode(tmp); err != nil {
		tmp.Close()
		return err
	}
	if info, err := os.Stat(path); err == nil {
		if err := tmp.Chmod(info.Mode().Perm()); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Encode writes the package to w.
func (d *Document) Encode(w io.Writer) error {
	rendered, err := renderDocumentXML(d.xml, d.spans)
	if err != nil {
		return fmt.Errorf("render %s: %w", documentPart, err)
	}

	zw := zip.NewWriter(w)
	for _, f := range d.archive.File {
		if f.Name != documentPart {
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}

		part, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return fmt.Errorf("create %s: %w", f.Name, err)
		}
		if _, err := part.Write(rendered); err != nil {
			return fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	return zw.Close()
}
