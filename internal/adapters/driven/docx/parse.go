package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"

	"github.com/custodia-labs/lettergen/internal/core/domain"
)

// Namespaces recognised as WordprocessingML main.
const (
	wordNS       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	strictWordNS = "http://purl.oclc.org/ooxml/wordprocessingml/main"
	xmlNS        = "http://www.w3.org/XML/1998/namespace"
)

// Element kinds tracked while parsing. Other elements are transparent.
const (
	kindBody = "body"
	kindTbl  = "tbl"
	kindTr   = "tr"
	kindTc   = "tc"
	kindP    = "p"
	kindR    = "r"
	kindT    = "t"
)

// textSpan locates one w:t element in document.xml.
type textSpan struct {
	run          *domain.Run
	original     string
	tagStart     int64
	contentStart int64
	contentEnd   int64
	tagEnd       int64
	selfClosing  bool
	preserve     bool
}

type frame struct {
	kind  string
	para  *domain.Paragraph
	table *domain.Table
	row   *domain.TableRow
	cell  *domain.TableCell
	span  int
}

type parser struct {
	body  *domain.DocumentBody
	spans []textSpan
	stack []frame
	data  []byte
}

// parseDocumentXML builds the text structure of document.xml and records
// where every captured w:t lives in the source bytes.
func parseDocumentXML(data []byte) (*domain.DocumentBody, []textSpan, error) {
	p := &parser{body: &domain.DocumentBody{}, data: data}
	dec := xml.NewDecoder(bytes.NewReader(data))

	for {
		before := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			p.start(t, before, dec.InputOffset())
		case xml.EndElement:
			p.end(before, dec.InputOffset())
		case xml.CharData:
			if top := p.top(); top != nil && top.kind == kindT && top.span >= 0 {
				p.spans[top.span].original += string(t)
			}
		}
	}

	for _, s := range p.spans {
		s.run.Text = s.original
	}
	return p.body, p.spans, nil
}

func (p *parser) top() *frame {
	if len(p.stack) == 0 {
		return nil
	}
	return &p.stack[len(p.stack)-1]
}

// parent returns the innermost tracked ancestor.
func (p *parser) parent() *frame {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].kind != "" {
			return &p.stack[i]
		}
	}
	return nil
}

func (p *parser) start(el xml.StartElement, tagStart, contentStart int64) {
	f := frame{span: -1}
	parent := p.parent()

	if el.Name.Space == wordNS || el.Name.Space == strictWordNS {
		switch el.Name.Local {
		case kindBody:
			f.kind = kindBody

		case kindTbl:
			f.kind = kindTbl
			switch {
			case parent == nil:
			case parent.kind == kindBody:
				f.table = &domain.Table{}
				p.body.Tables = append(p.body.Tables, f.table)
			case parent.kind == kindTc && parent.cell != nil:
				f.table = &domain.Table{}
				parent.cell.Tables = append(parent.cell.Tables, f.table)
			}

		case kindTr:
			f.kind = kindTr
			if parent != nil && parent.kind == kindTbl && parent.table != nil {
				f.row = &domain.TableRow{}
				parent.table.Rows = append(parent.table.Rows, f.row)
			}

		case kindTc:
			f.kind = kindTc
			if parent != nil && parent.kind == kindTr && parent.row != nil {
				f.cell = &domain.TableCell{}
				parent.row.Cells = append(parent.row.Cells, f.cell)
			}

		case kindP:
			f.kind = kindP
			switch {
			case parent == nil:
			case parent.kind == kindBody:
				f.para = &domain.Paragraph{}
				p.body.Paragraphs = append(p.body.Paragraphs, f.para)
			case parent.kind == kindTc && parent.cell != nil:
				f.para = &domain.Paragraph{}
				parent.cell.Paragraphs = append(parent.cell.Paragraphs, f.para)
			}

		case kindR:
			f.kind = kindR
			if parent != nil && parent.kind == kindP {
				f.para = parent.para
			}

		case kindT:
			f.kind = kindT
			if parent != nil && parent.kind == kindR && parent.para != nil {
				run := &domain.Run{}
				parent.para.Runs = append(parent.para.Runs, run)
				f.span = len(p.spans)
				p.spans = append(p.spans, textSpan{
					run:          run,
					tagStart:     tagStart,
					contentStart: contentStart,
					selfClosing:  bytes.HasSuffix(p.data[tagStart:contentStart], []byte("/>")),
					preserve:     hasPreserve(el.Attr),
				})
			}
		}
	}

	p.stack = append(p.stack, f)
}

func (p *parser) end(contentEnd, tagEnd int64) {
	if len(p.stack) == 0 {
		return
	}
	f := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]

	if f.kind == kindT && f.span >= 0 {
		p.spans[f.span].contentEnd = contentEnd
		p.spans[f.span].tagEnd = tagEnd
	}
}

func hasPreserve(attrs []xml.Attr) bool {
	for _, a := range attrs {
		if a.Name.Local == "space" && (a.Name.Space == xmlNS || a.Name.Space == "xml") {
			return a.Value == "preserve"
		}
	}
	return false
}

// renderDocumentXML splices the current run text into the original bytes.
// Unchanged spans are copied verbatim.
func renderDocumentXML(data []byte, spans []textSpan) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(len(data))
	last := int64(0)

	for _, s := range spans {
		if s.run.Text == s.original {
			continue
		}

		startTag := data[s.tagStart:s.contentStart]
		out.Write(data[last:s.tagStart])

		if s.selfClosing {
			open := bytes.TrimRight(startTag[:len(startTag)-2], " \t\r\n")
			if !s.preserve {
				open = withPreserve(open)
			}
			out.Write(open)
			out.WriteByte('>')
			if err := xml.EscapeText(&out, []byte(s.run.Text)); err != nil {
				return nil, err
			}
			out.WriteString("</")
			out.Write(tagName(startTag))
			out.WriteByte('>')
			last = s.tagEnd
			continue
		}

		if s.preserve {
			out.Write(startTag)
		} else {
			out.Write(withPreserve(startTag[:len(startTag)-1]))
			out.WriteByte('>')
		}
		if err := xml.EscapeText(&out, []byte(s.run.Text)); err != nil {
			return nil, err
		}
		last = s.contentEnd
	}

	out.Write(data[last:])
	return out.Bytes(), nil
}

// spaceAttr matches an existing xml:space attribute in a raw start tag.
var spaceAttr = regexp.MustCompile(`\sxml:space\s*=\s*("[^"]*"|'[^']*')`)

// withPreserve returns the unterminated start tag open with xml:space set
// to preserve, rewriting any other value in place.
func withPreserve(open []byte) []byte {
	if loc := spaceAttr.FindIndex(open); loc != nil {
		tag := make([]byte, 0, len(open)+len(`"preserve"`))
		tag = append(tag, open[:loc[0]]...)
		tag = append(tag, ` xml:space="preserve"`...)
		return append(tag, open[loc[1]:]...)
	}
	tag := bytes.TrimRight(open, " \t\r\n")
	return append(tag[:len(tag):len(tag)], ` xml:space="preserve"`...)
}

// tagName returns the qualified name of a raw start tag ("w:t").
func tagName(startTag []byte) []byte {
	name := startTag[1:]
	if i := bytes.IndexAny(name, " \t\r\n/>"); i >= 0 {
		name = name[:i]
	}
	return name
}
