package pagemodel

import (
	"context"
	"fmt"
	"io"

	"github.com/polzovatel/mmid-page-model/internal/dom"
)

// HTMLPage is a static page backed by a parsed document. Writes land on the
// document directly, so Capture keeps returning the same generation.
type HTMLPage struct {
	doc *dom.Document
}

// NewHTMLPage parses r into a page.
func NewHTMLPage(r io.Reader) (*HTMLPage, error) {
	doc, err := dom.ParseHTML(r)
	if err != nil {
		return nil, err
	}
	return &HTMLPage{doc: doc}, nil
}

// PageOf wraps an existing document.
func PageOf(doc *dom.Document) *HTMLPage { return &HTMLPage{doc: doc} }

// Document returns the backing document.
func (p *HTMLPage) Document() *dom.Document { return p.doc }

func (p *HTMLPage) Capture(ctx context.Context) (*dom.Document, error) {
	if p.doc == nil {
		return nil, ErrNoPage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.doc, nil
}

// Apply only validates muts, which were already written to the document.
func (p *HTMLPage) Apply(ctx context.Context, muts []dom.Mutation) error {
	if p.doc == nil {
		return ErrNoPage
	}
	for _, m := range muts {
		if m.Node < 0 || m.Node >= p.doc.Len() {
			return fmt.Errorf("mutation on node %d: %w", m.Node, dom.ErrInvalidElement)
		}
	}
	return ctx.Err()
}

// Render writes the current markup of the page, identifiers included.
func (p *HTMLPage) Render(w io.Writer) error {
	if p.doc == nil {
		return ErrNoPage
	}
	return p.doc.Render(w)
}
