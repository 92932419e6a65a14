package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lettergen/internal/core/domain"
)

func runs(texts ...string) *domain.Paragraph {
	p := &domain.Paragraph{}
	for _, t := range texts {
		p.Runs = append(p.Runs, &domain.Run{Text: t})
	}
	return p
}

func testPlaceholders(name string, delegate bool) domain.PlaceholderMap {
	cfg := domain.BatchConfig{
		ConferenceName: "Summit 2024",
		OfficialDates:  "01/01/2024-03/01/2024",
		DelegateDates:  "05/01/2024-07/01/2024",
	}
	return domain.NewPlaceholderMap(cfg, domain.Participant{Name: name, IsDelegate: delegate})
}

func TestSubstitute_ParagraphsAndCells(t *testing.T) {
	intro := runs("Dear ", "xxxxx", ",")
	body := runs("You attended ttttt on ddddd.")
	cell := runs("Name: xxxxx")
	nested := runs("ttttt")

	doc := &domain.DocumentBody{
		Paragraphs: []*domain.Paragraph{intro, body},
		Tables: []*domain.Table{{
			Rows: []*domain.TableRow{{
				Cells: []*domain.TableCell{{
					Paragraphs: []*domain.Paragraph{cell},
					Tables: []*domain.Table{{
						Rows: []*domain.TableRow{{Cells: []*domain.TableCell{{Paragraphs: []*domain.Paragraph{nested}}}}},
					}},
				}},
			}},
		}},
	}

	changed := Substitute(doc, testPlaceholders("Lee", true))

	assert.Equal(t, 4, changed)
	assert.Equal(t, "Dear Lee,", intro.Text())
	assert.Equal(t, "You attended Summit 2024 on 05/01/2024-07/01/2024.", body.Text())
	assert.Equal(t, "Name: Lee", cell.Text())
	assert.Equal(t, "Summit 2024", nested.Text())

	for _, p := range doc.AllParagraphs() {
		for _, token := range []string{domain.TokenName, domain.TokenConference, domain.TokenDates} {
			assert.NotContains(t, p.Text(), token)
		}
	}
}

func TestSubstitute_PreservesOtherText(t *testing.T) {
	untouched := runs("Regards,", " ", "The Committee")
	doc := &domain.DocumentBody{Paragraphs: []*domain.Paragraph{untouched, runs("xxxxx")}}

	Substitute(doc, testPlaceholders("Ann", false))

	require.Len(t, untouched.Runs, 3)
	assert.Equal(t, "Regards,", untouched.Runs[0].Text)
	assert.Equal(t, " ", untouched.Runs[1].Text)
	assert.Equal(t, "The Committee", untouched.Runs[2].Text)
}

func TestSubstitute_SplitTokenNotReplaced(t *testing.T) {
	split := runs("Dear xxx", "xx,")
	doc := &domain.DocumentBody{Paragraphs: []*domain.Paragraph{split}}

	changed := Substitute(doc, testPlaceholders("Ann", false))

	assert.Zero(t, changed)
	assert.Equal(t, "Dear xxx", split.Runs[0].Text)
	assert.Equal(t, "xx,", split.Runs[1].Text)
	assert.Equal(t, "Dear xxxxx,", split.Text())
}

func TestSubstitute_MultipleOccurrencesInRun(t *testing.T) {
	p := runs("xxxxx and xxxxx")
	Substitute(&domain.DocumentBody{Paragraphs: []*domain.Paragraph{p}}, testPlaceholders("Lee", false))

	assert.Equal(t, "Lee and Lee", p.Text())
}

func TestSubstitute_OfficialDates(t *testing.T) {
	p := runs("ddddd")
	Substitute(&domain.DocumentBody{Paragraphs: []*domain.Paragraph{p}}, testPlaceholders("Ann", false))

	assert.Equal(t, "01/01/2024-03/01/2024", p.Text())
}

func TestSubstitute_Idempotent(t *testing.T) {
	p := runs("xxxxx at ttttt")
	doc := &domain.DocumentBody{Paragraphs: []*domain.Paragraph{p}}
	m := testPlaceholders("Lee", true)

	Substitute(doc, m)
	first := p.Text()
	changed := Substitute(doc, m)

	assert.Zero(t, changed)
	assert.Equal(t, first, p.Text())
}

func TestSubstitute_NilAndEmpty(t *testing.T) {
	assert.Zero(t, Substitute(nil, testPlaceholders("x", false)))
	assert.Zero(t, Substitute(&domain.DocumentBody{}, testPlaceholders("x", false)))
	assert.Zero(t, Substitute(&domain.DocumentBody{Paragraphs: []*domain.Paragraph{runs(strings.Repeat("a", 10))}}, nil))
}
