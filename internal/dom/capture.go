package dom

import "fmt"

// Capture is the payload produced by the in-page capture script.
type Capture struct {
	Generation string            `json:"generation"`
	Title      string            `json:"title"`
	URL        string            `json:"url"`
	Elements   []CapturedElement `json:"elements"`
}

// CapturedElement is one element in pre-order. Content interleaves text runs
// (strings) with child element indexes (numbers) in DOM order.
type CapturedElement struct {
	Parent     int    `json:"parent"`
	Tag        string `json:"tag"`
	Attrs      []Attr `json:"attrs"`
	Style      *Style `json:"style,omitempty"`
	StyleError string `json:"styleError,omitempty"`
	Content    []any  `json:"content,omitempty"`
	Value      string `json:"value,omitempty"`
	Checked    bool   `json:"checked,omitempty"`
	Selected   bool   `json:"selected,omitempty"`
	Box        *Rect  `json:"box,omitempty"`
}

// FromCapture builds a document from a capture payload. Elements must be
// listed in pre-order, so every parent index is smaller than its child's.
func FromCapture(c Capture) (*Document, error) {
	d := newDocument(c.Generation)
	d.title = c.Title
	d.url = c.URL
	for i, ce := range c.Elements {
		if ce.Parent >= i || ce.Parent < -1 {
			return nil, fmt.Errorf("capture: element %d has parent %d out of order", i, ce.Parent)
		}
		n := node{
			tag:      lower(ce.Tag),
			attrs:    normalizeAttrs(ce.Attrs),
			styleErr: ce.StyleError,
			value:    ce.Value,
			checked:  ce.Checked,
			selected: ce.Selected,
			box:      ce.Box,
		}
		if ce.Style != nil {
			n.style = *ce.Style
		}
		d.add(ce.Parent, n)
	}
	for i, ce := range c.Elements {
		children := 0
		for _, item := range ce.Content {
			switch v := item.(type) {
			case string:
				d.nodes[i].texts = append(d.nodes[i].texts, textRun{pos: children, text: v})
			case float64, int:
				children++
			}
		}
	}
	return d, nil
}

func normalizeAttrs(in []Attr) []Attr {
	out := make([]Attr, 0, len(in))
	for _, a := range in {
		out = append(out, Attr{Key: lower(a.Key), Val: a.Val})
	}
	return out
}
