package services

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/custodia-labs/lettergen/internal/core/domain"
	"github.com/custodia-labs/lettergen/internal/core/ports/driven"
	"github.com/custodia-labs/lettergen/internal/logger"
)

// LetterSuffix is appended to the sanitised participant name.
const LetterSuffix = "_AbsenceLetter"

// unnamed replaces a name that sanitises to nothing.
const unnamed = "unnamed"

// reservedNames cannot be used as file stems on Windows.
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// SanitizeFilename turns a participant name into a filesystem-safe stem.
// Anything other than letters, digits, spaces, '-', '_' and '.' becomes '_',
// runs of '_' collapse, and leading or trailing spaces and dots are trimmed.
// The result is deterministic and never empty.
func SanitizeFilename(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		if !isSafeRune(r) {
			r = '_'
		}
		if r == '_' {
			if lastUnderscore {
				continue
			}
			lastUnderscore = true
		} else {
			lastUnderscore = false
		}
		b.WriteRune(r)
	}

	safe := strings.Trim(b.String(), " .")
	if safe == "" {
		return unnamed
	}
	if reservedNames[strings.ToUpper(safe)] {
		safe += "_"
	}
	return safe
}

func isSafeRune(r rune) bool {
	switch {
	case unicode.IsLetter(r), unicode.IsDigit(r):
		return true
	case r == ' ', r == '-', r == '_', r == '.':
		return true
	default:
		return false
	}
}

// LetterFilename returns the output file name for a participant.
func LetterFilename(name, ext string) string {
	return SanitizeFilename(name) + LetterSuffix + "." + ext
}

// DocumentProducer builds one personalised document per participant.
type DocumentProducer struct {
	codec driven.DocumentCodec
	files driven.FileCopier
	now   func() time.Time
}

// NewDocumentProducer creates a producer over a document codec and copier.
func NewDocumentProducer(codec driven.DocumentCodec, files driven.FileCopier) *DocumentProducer {
	return &DocumentProducer{
		codec: codec,
		files: files,
		now:   time.Now,
	}
}

// Produce writes the participant's letter into cfg.OutputDir.
// A file produced for an earlier participant with the same sanitised name
// is overwritten. On failure a copied but unmodified file may remain.
func (p *DocumentProducer) Produce(cfg domain.BatchConfig, participant domain.Participant) (*domain.GeneratedArtifact, error) {
	// 1. Derive the destination path
	dest := filepath.Join(cfg.OutputDir, LetterFilename(participant.Name, p.codec.Extension()))

	// 2. Clone the template
	if err := p.files.Copy(cfg.TemplatePath, dest); err != nil {
		return nil, fmt.Errorf("copy template: %w", err)
	}

	// 3. Open the copy
	doc, err := p.codec.Open(dest)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}

	// 4. Replace placeholders
	changed := Substitute(doc.Body(), domain.NewPlaceholderMap(cfg, participant))
	logger.Debug("producer: %s: %d runs rewritten", participant.Name, changed)

	// 5. Persist in place
	if err := doc.Save(dest); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	return &domain.GeneratedArtifact{
		ID:          uuid.New().String(),
		Participant: participant,
		DocPath:     dest,
		CreatedAt:   p.now(),
	}, nil
}
