// Package dom holds an arena-backed model of a page's element tree.
//
// Elements live in a flat slice in document (pre-)order and refer to each
// other by index. Attribute writes are journaled so that a live backend can
// replay them inside the page after the Go side has finished its pass.
package dom

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// ErrInvalidElement is returned when a handle does not point at a node of its document.
var ErrInvalidElement = errors.New("dom: invalid element")

// Attr is a single element attribute as it appears on the page.
type Attr struct {
	Key string `json:"k"`
	Val string `json:"v"`
}

// Rect is an element's bounding box in CSS pixels.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Mutation is one journaled attribute write.
type Mutation struct {
	Node   int    `json:"i"`
	Name   string `json:"name"`
	Value  string `json:"value,omitempty"`
	Remove bool   `json:"remove,omitempty"`
}

type textRun struct {
	pos  int // number of element children preceding the run
	text string
}

type node struct {
	tag      string
	attrs    []Attr
	style    Style
	styleErr string
	texts    []textRun
	value    string
	checked  bool
	selected bool
	box      *Rect
	parent   int
	children []int
}

// Document is a snapshot of one page generation.
type Document struct {
	id      string
	title   string
	url     string
	nodes   []node
	roots   []int
	journal []Mutation

	// set only for documents parsed from HTML; aligned with nodes
	src     []*html.Node
	srcRoot *html.Node
}

func newDocument(id string) *Document {
	if id == "" {
		id = uuid.NewString()
	}
	return &Document{id: id}
}

func (d *Document) add(parent int, n node) int {
	idx := len(d.nodes)
	n.parent = parent
	d.nodes = append(d.nodes, n)
	if parent < 0 {
		d.roots = append(d.roots, idx)
	} else {
		d.nodes[parent].children = append(d.nodes[parent].children, idx)
	}
	return idx
}

func (d *Document) appendText(idx int, text string) {
	if idx < 0 || text == "" {
		return
	}
	n := &d.nodes[idx]
	n.texts = append(n.texts, textRun{pos: len(n.children), text: text})
}

// ID identifies the page generation the document was taken from.
func (d *Document) ID() string { return d.id }

// Title is the document title.
func (d *Document) Title() string { return d.title }

// URL is the page address, empty for documents parsed from a file.
func (d *Document) URL() string { return d.url }

// Len reports the number of elements.
func (d *Document) Len() int { return len(d.nodes) }

// Element returns the handle for index i.
func (d *Document) Element(i int) Element { return Element{doc: d, idx: i} }

// Roots returns the top-level elements, normally just <html>.
func (d *Document) Roots() []Element {
	out := make([]Element, 0, len(d.roots))
	for _, r := range d.roots {
		out = append(out, d.Element(r))
	}
	return out
}

// Elements returns every element in document order.
func (d *Document) Elements() []Element {
	out := make([]Element, len(d.nodes))
	for i := range d.nodes {
		out[i] = d.Element(i)
	}
	return out
}

// ByTag returns elements whose tag is one of tags, in document order.
func (d *Document) ByTag(tags ...string) []Element {
	var out []Element
	for i := range d.nodes {
		for _, t := range tags {
			if d.nodes[i].tag == t {
				out = append(out, d.Element(i))
				break
			}
		}
	}
	return out
}

// WithAttr returns elements carrying attribute name, in document order.
func (d *Document) WithAttr(name string) []Element {
	var out []Element
	for i := range d.nodes {
		if _, ok := d.Element(i).Attr(name); ok {
			out = append(out, d.Element(i))
		}
	}
	return out
}

// ElementByID returns the first element whose id attribute equals id.
func (d *Document) ElementByID(id string) (Element, bool) {
	if id == "" {
		return Element{}, false
	}
	for i := range d.nodes {
		if v, ok := d.Element(i).Attr("id"); ok && v == id {
			return d.Element(i), true
		}
	}
	return Element{}, false
}

// Mutations returns the journaled writes without clearing them.
func (d *Document) Mutations() []Mutation {
	return append([]Mutation(nil), d.journal...)
}

// TakeMutations returns and clears the journal.
func (d *Document) TakeMutations() []Mutation {
	out := d.journal
	d.journal = nil
	return out
}

func (d *Document) record(m Mutation) {
	d.journal = append(d.journal, m)
}

func lower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
