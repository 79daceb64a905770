package dom

import (
	"fmt"
	"strings"
)

// Element is a handle to one node of a Document. The zero value is invalid.
type Element struct {
	doc *Document
	idx int
}

// Valid reports whether the handle points at a node.
func (e Element) Valid() bool {
	return e.doc != nil && e.idx >= 0 && e.idx < len(e.doc.nodes)
}

func (e Element) n() *node {
	if !e.Valid() {
		return &node{parent: -1}
	}
	return &e.doc.nodes[e.idx]
}

// Index is the element's position in document order.
func (e Element) Index() int { return e.idx }

// Document returns the owning document.
func (e Element) Document() *Document { return e.doc }

// Tag is the lowercase tag name.
func (e Element) Tag() string { return e.n().tag }

// Attr returns the value of attribute name and whether it is present.
func (e Element) Attr(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range e.n().attrs {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// Get returns the attribute value or "" when absent.
func (e Element) Get(name string) string {
	v, _ := e.Attr(name)
	return v
}

// Has reports whether attribute name is present.
func (e Element) Has(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// Attrs returns a copy of all attributes in source order.
func (e Element) Attrs() []Attr {
	return append([]Attr(nil), e.n().attrs...)
}

// SetAttr writes an attribute and journals the write.
func (e Element) SetAttr(name, value string) error {
	if !e.Valid() {
		return ErrInvalidElement
	}
	name = strings.ToLower(name)
	n := e.n()
	found := false
	for i := range n.attrs {
		if n.attrs[i].Key == name {
			n.attrs[i].Val = value
			found = true
			break
		}
	}
	if !found {
		n.attrs = append(n.attrs, Attr{Key: name, Val: value})
	}
	e.doc.record(Mutation{Node: e.idx, Name: name, Value: value})
	return nil
}

// RemoveAttr deletes an attribute. Removing an absent attribute is a no-op.
func (e Element) RemoveAttr(name string) error {
	if !e.Valid() {
		return ErrInvalidElement
	}
	name = strings.ToLower(name)
	n := e.n()
	for i := range n.attrs {
		if n.attrs[i].Key == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			e.doc.record(Mutation{Node: e.idx, Name: name, Remove: true})
			return nil
		}
	}
	return nil
}

// Style returns the computed style subset. The error is set when the page
// could not compute style for this element; the returned Style is then empty.
func (e Element) Style() (Style, error) {
	n := e.n()
	if n.styleErr != "" {
		return Style{}, fmt.Errorf("computed style of <%s>: %s", n.tag, n.styleErr)
	}
	return n.style, nil
}

// InlineStyle returns the value of prop from the style attribute.
func (e Element) InlineStyle(prop string) string {
	for _, d := range parseDecls(e.Get("style")) {
		if d.prop == strings.ToLower(prop) {
			return d.value
		}
	}
	return ""
}

// Value is the live value of a form control.
func (e Element) Value() string { return e.n().value }

// Checked reports the live checked state.
func (e Element) Checked() bool { return e.n().checked }

// Selected reports the live selected state of an <option>.
func (e Element) Selected() bool { return e.n().selected }

// Box returns the bounding box when the page reported one.
func (e Element) Box() (Rect, bool) {
	if b := e.n().box; b != nil {
		return *b, true
	}
	return Rect{}, false
}

// Parent returns the parent element; top-level elements have none.
func (e Element) Parent() (Element, bool) {
	p := e.n().parent
	if p < 0 || !e.Valid() {
		return Element{}, false
	}
	return e.doc.Element(p), true
}

// Children returns the element children in order.
func (e Element) Children() []Element {
	n := e.n()
	out := make([]Element, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, e.doc.Element(c))
	}
	return out
}

// Descendants returns every element below e in document order.
func (e Element) Descendants() []Element {
	var out []Element
	var walk func(Element)
	walk = func(el Element) {
		for _, c := range el.Children() {
			out = append(out, c)
			walk(c)
		}
	}
	walk(e)
	return out
}

// HasDescendant reports whether any descendant satisfies fn.
func (e Element) HasDescendant(fn func(Element) bool) bool {
	for _, c := range e.Children() {
		if fn(c) || c.HasDescendant(fn) {
			return true
		}
	}
	return false
}

// Closest returns the nearest ancestor (not e itself) with the given tag.
func (e Element) Closest(tag string) (Element, bool) {
	p, ok := e.Parent()
	for ok {
		if p.Tag() == tag {
			return p, true
		}
		p, ok = p.Parent()
	}
	return Element{}, false
}

var textless = map[string]bool{"script": true, "style": true, "template": true, "noscript": true, "head": true}

// InnerText returns the rendered text of e and its descendants with
// whitespace collapsed.
func (e Element) InnerText() string {
	var b strings.Builder
	e.writeText(&b)
	return strings.Join(strings.Fields(b.String()), " ")
}

func (e Element) writeText(b *strings.Builder) {
	n := e.n()
	if textless[n.tag] {
		return
	}
	runs := n.texts
	for i, c := range n.children {
		for len(runs) > 0 && runs[0].pos <= i {
			b.WriteString(runs[0].text)
			runs = runs[1:]
		}
		e.doc.Element(c).writeText(b)
	}
	for _, r := range runs {
		b.WriteString(r.text)
	}
}

func (e Element) String() string {
	if !e.Valid() {
		return "<invalid>"
	}
	if id := e.Get("id"); id != "" {
		return fmt.Sprintf("<%s#%s>", e.Tag(), id)
	}
	return fmt.Sprintf("<%s>@%d", e.Tag(), e.idx)
}
