package services

import (
	"strings"

	"github.com/custodia-labs/lettergen/internal/core/domain"
)

// Substitute replaces every placeholder token in the body's run text.
// It covers free-standing paragraphs and table-cell paragraphs, including
// nested tables. Matching is run-local: a token split across two runs is
// left untouched. Returns the number of runs whose text changed.
func Substitute(body *domain.DocumentBody, m domain.PlaceholderMap) int {
	if body == nil {
		return 0
	}

	changed := 0
	for _, p := range body.AllParagraphs() {
		changed += substituteParagraph(p, m)
	}
	return changed
}

func substituteParagraph(p *domain.Paragraph, m domain.PlaceholderMap) int {
	changed := 0
	for _, run := range p.Runs {
		text := run.Text
		for _, ph := range m {
			if ph.Token == "" {
				continue
			}
			text = strings.ReplaceAll(text, ph.Token, ph.Value)
		}
		if text != run.Text {
			run.Text = text
			changed++
		}
	}
	return changed
}
