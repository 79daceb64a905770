package classify

import (
	"strings"

	"github.com/polzovatel/mmid-page-model/internal/dom"
)

// Classifier applies a rule table to elements. It holds no state and is safe
// for concurrent use.
type Classifier struct {
	rules Rules
}

// New returns a classifier over rules.
func New(rules Rules) *Classifier {
	return &Classifier{rules: rules}
}

// Default is the classifier over DefaultRules.
var Default = New(DefaultRules)

// IsInteractive reports whether el can be clicked, focused or typed into.
func IsInteractive(el dom.Element) bool { return Default.IsInteractive(el) }

// IsClickable is IsInteractive plus looser heuristics.
func IsClickable(el dom.Element) bool { return Default.IsClickable(el) }

// IsInteractive reports whether el passes the identifier-assignment gate.
func (c *Classifier) IsInteractive(el dom.Element) bool {
	if !el.Valid() {
		return false
	}
	tag := el.Tag()
	if contains(c.rules.Tags, tag) {
		return true
	}
	if tag == "input" && contains(c.rules.InputTypes, InputType(el)) {
		return true
	}
	if role, ok := el.Attr("role"); ok && contains(c.rules.Roles, strings.TrimSpace(role)) {
		return true
	}
	if ti, ok := el.Attr("tabindex"); ok && strings.TrimSpace(ti) != "-1" {
		return true
	}
	for _, ev := range c.rules.Events {
		if el.Has("on" + ev) {
			return true
		}
	}
	// a style lookup failure is no signal
	if st, err := el.Style(); err == nil && contains(c.rules.Cursors, st.Cursor) {
		return true
	}
	return false
}

// IsClickable reports whether el looks clickable. It is used to enrich
// descriptions, never to gate identifier assignment.
func (c *Classifier) IsClickable(el dom.Element) bool {
	if c.IsInteractive(el) {
		return true
	}
	if el.Has("onclick") || el.Has("tabindex") {
		return true
	}
	if contains(c.rules.ClickableRoles, strings.TrimSpace(el.Get("role"))) {
		return true
	}
	class := strings.ToLower(el.Get("class"))
	for _, k := range c.rules.ClickableClasses {
		if strings.Contains(class, k) {
			return true
		}
	}
	return HasSVG(el)
}

// InputType returns the lowercase type of an <input>, defaulting to text.
func InputType(el dom.Element) string {
	t := strings.ToLower(strings.TrimSpace(el.Get("type")))
	if t == "" {
		return "text"
	}
	return t
}

// HasSVG reports an inline <svg> below el.
func HasSVG(el dom.Element) bool {
	return el.HasDescendant(func(d dom.Element) bool { return d.Tag() == "svg" })
}

// Skips reports whether el is excluded from traversal targets.
func (ig Ignore) Skips(el dom.Element) bool {
	if contains(ig.Tags, el.Tag()) {
		return true
	}
	id, ok := el.Attr("id")
	return ok && contains(ig.IDs, id)
}
