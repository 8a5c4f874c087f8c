package html

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents, such as pages saved from the online
// reference library.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Priority ranks HTML above plaintext.
func (n *Normaliser) Priority() int {
	return 50
}

// Paragraphs parses the document and returns the text of each block element.
func (n *Normaliser) Paragraphs(_ context.Context, content []byte) ([]string, error) {
	if !utf8.Valid(content) {
		return nil, domain.ErrInvalidInput
	}

	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	var w blockWriter
	w.walk(doc)
	w.flush()
	return w.paragraphs, nil
}

// skipped elements carry no passage text: scripts, metadata and the site's
// navigation around the passage.
var skipped = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Svg:      true,
	atom.Iframe:   true,
	atom.Nav:      true,
	atom.Header:   true,
	atom.Footer:   true,
}

// blocks start and end a paragraph.
var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Tr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Pre: true, atom.Table: true,
	atom.Section: true, atom.Article: true, atom.Main: true, atom.Aside: true,
	atom.Dd: true, atom.Dt: true, atom.Figcaption: true,
	atom.Br: true, atom.Hr: true,
}

// blockWriter accumulates inline text and cuts it into paragraphs at block
// boundaries. Runs of whitespace collapse to a single space.
type blockWriter struct {
	current    strings.Builder
	space      bool
	paragraphs []string
}

func (w *blockWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
		if skipped[n.DataAtom] || hasAttr(n, "hidden") {
			return
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}

	block := n.Type == html.ElementNode && blocks[n.DataAtom]
	if block {
		w.flush()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
	if block {
		w.flush()
	}
}

func (w *blockWriter) text(s string) {
	if s == "" {
		return
	}
	if isSpace(firstRune(s)) {
		w.space = true
	}
	for i, field := range strings.FieldsFunc(s, isSpace) {
		if (i > 0 || w.space) && w.current.Len() > 0 {
			w.current.WriteByte(' ')
		}
		w.current.WriteString(field)
	}
	w.space = isSpace(lastRune(s))
}

func (w *blockWriter) flush() {
	if w.current.Len() > 0 {
		w.paragraphs = append(w.paragraphs, w.current.String())
	}
	w.current.Reset()
	w.space = false
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}
