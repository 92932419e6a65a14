// Package fs provides local filesystem operations for document production.
package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/custodia-labs/lettergen/internal/core/domain"
	"github.com/custodia-labs/lettergen/internal/core/ports/driven"
)

// Ensure Copier implements the interface.
var _ driven.FileCopier = (*Copier)(nil)

// Copier copies files and creates directories on the local disk.
type Copier struct{}

// NewCopier creates a new copier.
func NewCopier() *Copier {
	return &Copier{}
}

// Copy copies src to dst byte-for-byte, truncating dst in place if it
// exists. The destination keeps the source's permission bits. Copying a
// file onto itself is rejected.
func (c *Copier) Copy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("copy %s: is a directory", src)
	}
	if existing, err := os.Stat(dst); err == nil && os.SameFile(info, existing) {
		return fmt.Errorf("%w: copy %s: destination is the source file", domain.ErrInvalidInput, src)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// EnsureDir creates dir and any missing parents.
func (c *Copier) EnsureDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("output directory is empty")
	}
	return os.MkdirAll(filepath.Clean(dir), 0o755)
}
