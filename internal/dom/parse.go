package dom

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ParseHTML builds a document from static markup.
func ParseHTML(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	d := newDocument("")
	d.srcRoot = root
	d.walkHTML(root, -1)
	if t := d.ByTag("title"); len(t) > 0 {
		d.title = t[0].InnerText()
	}
	d.defaultSelections()
	return d, nil
}

// ParseHTMLString is ParseHTML over a string.
func ParseHTMLString(s string) (*Document, error) {
	return ParseHTML(strings.NewReader(s))
}

func (d *Document) walkHTML(n *html.Node, parent int) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			tag := strings.ToLower(c.Data)
			attrs := make([]Attr, 0, len(c.Attr))
			for _, a := range c.Attr {
				key := strings.ToLower(a.Key)
				if a.Namespace != "" {
					key = a.Namespace + ":" + key
				}
				attrs = append(attrs, Attr{Key: key, Val: a.Val})
			}
			el := node{tag: tag, attrs: attrs}
			el.style = styleFromInline(attrValue(attrs, "style"))
			el.value = attrValue(attrs, "value")
			el.checked = hasAttr(attrs, "checked")
			el.selected = hasAttr(attrs, "selected")
			idx := d.add(parent, el)
			d.src = append(d.src, c)
			// template content is inert and not part of the rendered tree
			if tag != "template" {
				d.walkHTML(c, idx)
			}
			if tag == "textarea" {
				d.nodes[idx].value = d.Element(idx).InnerTextRaw()
			}
		case html.TextNode:
			d.appendText(parent, c.Data)
		default:
			if c.FirstChild != nil {
				d.walkHTML(c, parent)
			}
		}
	}
}

// defaultSelections marks the first option of a single-choice select as
// selected when the markup selects none, matching browser behaviour.
func (d *Document) defaultSelections() {
	for _, sel := range d.ByTag("select") {
		if sel.Has("multiple") {
			continue
		}
		var first Element
		chosen := false
		for _, o := range sel.Descendants() {
			if o.Tag() != "option" {
				continue
			}
			if !first.Valid() {
				first = o
			}
			if o.Selected() {
				chosen = true
			}
		}
		if !chosen && first.Valid() {
			first.n().selected = true
		}
	}
}

// InnerTextRaw returns the concatenated text without whitespace collapsing.
func (e Element) InnerTextRaw() string {
	var b strings.Builder
	e.writeText(&b)
	return b.String()
}

// Render writes the document as HTML, including any attribute writes made
// since parsing. Only documents built by ParseHTML can be rendered.
func (d *Document) Render(w io.Writer) error {
	if d.srcRoot == nil {
		return errors.New("dom: document has no html source")
	}
	for i, src := range d.src {
		attrs := make([]html.Attribute, 0, len(d.nodes[i].attrs))
		for _, a := range d.nodes[i].attrs {
			attrs = append(attrs, html.Attribute{Key: a.Key, Val: a.Val})
		}
		src.Attr = attrs
	}
	return html.Render(w, d.srcRoot)
}

func attrValue(attrs []Attr, key string) string {
	for _, a := range attrs {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(attrs []Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}
