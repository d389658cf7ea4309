package dom

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ziadkadry99/docskin/internal/colormode"
)

// MissingSelectorError reports that a selector matched nothing.
type MissingSelectorError struct {
	Selector string
}

func (e *MissingSelectorError) Error() string {
	return fmt.Sprintf("selector %q matched no element", e.Selector)
}

// Document is a parsed HTML page.
type Document struct {
	doc *goquery.Document
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	return &Document{doc: doc}, nil
}

// ParseString parses an HTML document held in a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Find returns every element matching selector. The selection may be empty.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// First returns the first element matching selector, or a
// *MissingSelectorError when there is none.
func (d *Document) First(selector string) (*goquery.Selection, error) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, &MissingSelectorError{Selector: selector}
	}
	return sel, nil
}

// Head returns the <head> element. The HTML parser always creates one.
func (d *Document) Head() *goquery.Selection { return d.doc.Find("head").First() }

// Body returns the <body> element. The HTML parser always creates one.
func (d *Document) Body() *goquery.Selection { return d.doc.Find("body").First() }

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	for _, n := range d.doc.Nodes {
		if err := html.Render(w, n); err != nil {
			return fmt.Errorf("rendering html: %w", err)
		}
	}
	return nil
}

// String renders the document to a string.
func (d *Document) String() (string, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// NewNode creates a detached element. attrs are key/value pairs.
func NewNode(tag string, attrs ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// Text creates a detached text node.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Element adapts the first node of a selection to colormode.Element.
// selector names the element in errors.
type Element struct {
	sel      *goquery.Selection
	selector string
}

// NewElement wraps sel, which was found with selector.
func NewElement(sel *goquery.Selection, selector string) Element {
	return Element{sel: sel.First(), selector: selector}
}

// SetContent replaces the element's children with the parsed markup.
func (e Element) SetContent(markup string) error {
	if e.sel == nil || e.sel.Length() == 0 {
		return &MissingSelectorError{Selector: e.selector}
	}
	target := e.sel.Get(0)
	nodes, err := html.ParseFragment(strings.NewReader(markup), target)
	if err != nil {
		return fmt.Errorf("parsing markup: %w", err)
	}
	e.sel.Empty()
	for _, n := range nodes {
		target.AppendChild(n)
	}
	return nil
}

// SetExpanded sets aria-expanded.
func (e Element) SetExpanded(expanded bool) {
	if e.sel == nil {
		return
	}
	e.sel.SetAttr("aria-expanded", strconv.FormatBool(expanded))
}

// Mounts resolves the color-mode widget's mount points in a document by
// selector.
type Mounts struct {
	Doc            *Document
	ToggleSelector string
	MenuSelector   string
	ItemSelector   func(value string) string
}

func (m Mounts) Toggle() (colormode.Element, bool) { return m.lookup(m.ToggleSelector) }

func (m Mounts) Menu() (colormode.Element, bool) { return m.lookup(m.MenuSelector) }

func (m Mounts) Item(value string) (colormode.Element, bool) {
	if m.ItemSelector == nil {
		return nil, false
	}
	return m.lookup(m.ItemSelector(value))
}

func (m Mounts) lookup(selector string) (colormode.Element, bool) {
	if m.Doc == nil || selector == "" {
		return nil, false
	}
	sel, err := m.Doc.First(selector)
	if err != nil {
		return nil, false
	}
	return Element{sel: sel, selector: selector}, true
}
