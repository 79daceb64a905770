package describe

import (
	"strconv"
	"strings"

	"github.com/polzovatel/mmid-page-model/internal/classify"
	"github.com/polzovatel/mmid-page-model/internal/dom"
)

var tagRoles = map[string]string{
	"button":   "button",
	"textarea": "textbox",
	"option":   "option",
	"nav":      "navigation",
	"form":     "form",
	"h1":       "heading",
	"h2":       "heading",
	"h3":       "heading",
	"h4":       "heading",
	"h5":       "heading",
	"h6":       "heading",
	"ul":       "list",
	"ol":       "list",
	"li":       "listitem",
	"table":    "table",
	"tr":       "row",
	"td":       "cell",
	"th":       "columnheader",
	"dialog":   "dialog",
	"header":   "banner",
	"footer":   "contentinfo",
	"aside":    "complementary",
	"section":  "region",
	"article":  "article",
	"fieldset": "group",
	"details":  "group",
	"progress": "progressbar",
	"menu":     "list",
}

var inputRoles = map[string]string{
	"button":   "button",
	"submit":   "button",
	"reset":    "button",
	"image":    "button",
	"checkbox": "checkbox",
	"radio":    "radio",
	"range":    "slider",
	"number":   "spinbutton",
	"search":   "searchbox",
	"hidden":   "",
}

// Role returns the explicit ARIA role of el or the role implied by its tag.
func Role(el dom.Element) string {
	if r := strings.Fields(el.Get("role")); len(r) > 0 {
		return r[0]
	}
	switch tag := el.Tag(); tag {
	case "a", "area":
		if el.Has("href") {
			return "link"
		}
		return ""
	case "input":
		if r, ok := inputRoles[classify.InputType(el)]; ok {
			return r
		}
		return "textbox"
	case "select":
		if size, err := strconv.Atoi(el.Get("size")); el.Has("multiple") || (err == nil && size > 1) {
			return "listbox"
		}
		return "combobox"
	case "img":
		if el.Get("alt") != "" {
			return "img"
		}
		return ""
	default:
		return tagRoles[tag]
	}
}

// IsSemantic reports whether role names something other than a generic
// container.
func IsSemantic(role string) bool {
	switch role {
	case "", "generic", "none", "presentation":
		return false
	}
	return true
}

const maxNameLen = 100

// AccessibleName approximates the accessible name computation: ARIA label,
// labelledby, associated <label>, alt, title, placeholder, then text.
func AccessibleName(el dom.Element) string {
	if v := strings.TrimSpace(el.Get("aria-label")); v != "" {
		return v
	}
	if ids := strings.Fields(el.Get("aria-labelledby")); len(ids) > 0 {
		var parts []string
		for _, id := range ids {
			if ref, ok := el.Document().ElementByID(id); ok {
				if t := ref.InnerText(); t != "" {
					parts = append(parts, t)
				}
			}
		}
		if len(parts) > 0 {
			return truncate(strings.Join(parts, " "), maxNameLen)
		}
	}
	switch el.Tag() {
	case "input", "select", "textarea":
		if l := LabelText(el); l != "" {
			return l
		}
	}
	for _, attr := range []string{"alt", "title", "placeholder"} {
		if v := strings.TrimSpace(el.Get(attr)); v != "" {
			return v
		}
	}
	if el.Tag() == "input" {
		switch classify.InputType(el) {
		case "submit", "reset", "button":
			if v := strings.TrimSpace(el.Get("value")); v != "" {
				return v
			}
			if t := classify.InputType(el); t != "button" {
				return strings.ToUpper(t[:1]) + t[1:]
			}
		}
		return ""
	}
	return truncate(el.InnerText(), maxNameLen)
}

// LabelText returns the text of the <label> associated with a form control,
// either through for= or by wrapping it.
func LabelText(el dom.Element) string {
	if id := el.Get("id"); id != "" {
		for _, l := range el.Document().ByTag("label") {
			if l.Get("for") == id {
				if t := l.InnerText(); t != "" {
					return t
				}
			}
		}
	}
	if l, ok := el.Closest("label"); ok {
		return l.InnerText()
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
