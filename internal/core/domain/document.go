package domain

import "strings"

// DocumentBody is the text structure of a structured document.
// It exposes only run text; formatting stays with the codec that produced it.
type DocumentBody struct {
	// Paragraphs are the free-standing paragraphs, in document order.
	Paragraphs []*Paragraph

	// Tables are the top-level tables, in document order.
	Tables []*Table
}

// Table is a grid of cells.
type Table struct {
	Rows []*TableRow
}

// TableRow is one row of a table.
type TableRow struct {
	Cells []*TableCell
}

// TableCell holds paragraphs and, rarely, nested tables.
type TableCell struct {
	Paragraphs []*Paragraph
	Tables     []*Table
}

// Paragraph is a sequence of formatted text runs.
type Paragraph struct {
	Runs []*Run
}

// Run is a span of text sharing one set of formatting attributes.
type Run struct {
	Text string
}

// Text returns the concatenated text of all runs.
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// AllParagraphs returns every paragraph in the body, including those
// inside table cells and nested tables, in document order per container.
func (b *DocumentBody) AllParagraphs() []*Paragraph {
	paragraphs := make([]*Paragraph, 0, len(b.Paragraphs))
	paragraphs = append(paragraphs, b.Paragraphs...)
	for _, t := range b.Tables {
		paragraphs = append(paragraphs, t.paragraphs()...)
	}
	return paragraphs
}

func (t *Table) paragraphs() []*Paragraph {
	var paragraphs []*Paragraph
	for _, row := range t.Rows {
		for _, cell := range row.Cells {
			paragraphs = append(paragraphs, cell.Paragraphs...)
			for _, nested := range cell.Tables {
				paragraphs = append(paragraphs, nested.paragraphs()...)
			}
		}
	}
	return paragraphs
}
