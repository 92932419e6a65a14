// Package pdf checks converted files with pdfcpu before they are recorded.
package pdf

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/lettergen/internal/core/domain"
	"github.com/custodia-labs/lettergen/internal/core/ports/driven"
)

// Ensure Verifier implements the interface.
var _ driven.PDFVerifier = (*Verifier)(nil)

// Verifier validates downloaded PDFs and counts their pages.
type Verifier struct {
	conf *model.Configuration
}

// NewVerifier creates a verifier using relaxed validation, which accepts
// the minor deviations common in office-suite output.
func NewVerifier() *Verifier {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Verifier{conf: conf}
}

// Verify validates the file at path and returns its page count.
func (v *Verifier) Verify(path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if info.Size() == 0 {
		return 0, fmt.Errorf("%w: empty file", domain.ErrInvalidPDF)
	}

	if err := api.ValidateFile(path, v.conf); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidPDF, err)
	}

	pages, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidPDF, err)
	}
	if pages == 0 {
		return 0, fmt.Errorf("%w: no pages", domain.ErrInvalidPDF)
	}
	return pages, nil
}
