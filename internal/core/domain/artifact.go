package domain

import "time"

// GeneratedArtifact records the files produced for one participant.
// It is created by the document producer and only gains a PDF path
// after a successful conversion.
type GeneratedArtifact struct {
	// ID is the unique identifier for the artifact.
	ID string

	// RunID links to the BatchRun that produced it.
	RunID string

	// Participant is the source of the placeholder values.
	Participant Participant

	// DocPath is the generated .docx file.
	DocPath string

	// PDFPath is the converted file. Empty until conversion succeeds.
	PDFPath string

	// PDFPages is the page count of the converted file, when verified.
	PDFPages int

	// Error is the participant-scoped failure message, if any.
	Error string

	// CreatedAt is when the document was generated.
	CreatedAt time.Time
}

// Converted reports whether a PDF was attached to the artifact.
func (a *GeneratedArtifact) Converted() bool {
	return a.PDFPath != ""
}
