// Package fields flattens the form controls of a page into a lookup table
// keyed by identifier.
package fields

import (
	"strconv"
	"strings"

	"github.com/polzovatel/mmid-page-model/internal/classify"
	"github.com/polzovatel/mmid-page-model/internal/dom"
	"github.com/polzovatel/mmid-page-model/internal/session"
)

const maxTextAreaValue = 100

// Record is the state of one form control at read time.
type Record struct {
	Type        string   `json:"type" yaml:"type"`
	Value       string   `json:"value" yaml:"value"`
	Options     []string `json:"options,omitempty" yaml:"options,omitempty"`
	Placeholder string   `json:"placeholder" yaml:"placeholder"`
	Required    bool     `json:"required" yaml:"required"`
	Disabled    bool     `json:"disabled" yaml:"disabled"`
	ReadOnly    bool     `json:"readonly" yaml:"readonly"`
	Label       string   `json:"label,omitempty" yaml:"label,omitempty"`
}

// Read returns a record for every identified input, select and textarea of
// doc. Controls without an identifier are skipped.
func Read(doc *dom.Document) map[string]Record {
	out := map[string]Record{}
	if doc == nil {
		return out
	}
	labels := labelsByTarget(doc)
	for _, el := range doc.ByTag("input", "select", "textarea") {
		id, ok := session.ID(el)
		if !ok {
			continue
		}
		r := Record{
			Placeholder: el.Get("placeholder"),
			Required:    el.Has("required"),
			Disabled:    el.Has("disabled"),
			ReadOnly:    el.Has("readonly"),
		}
		if target := el.Get("id"); target != "" {
			r.Label = labels[target]
		}
		switch el.Tag() {
		case "select":
			r.Type = "select"
			var selected []string
			for _, o := range el.Descendants() {
				if o.Tag() != "option" {
					continue
				}
				text := o.InnerText()
				r.Options = append(r.Options, text)
				if o.Selected() {
					selected = append(selected, text)
				}
			}
			r.Value = strings.Join(selected, ", ")
		case "textarea":
			r.Type = "textarea"
			r.Value = truncate(strings.Join(strings.Fields(el.Value()), " "), maxTextAreaValue)
		default:
			r.Type = classify.InputType(el)
			r.Value = el.Value()
		}
		out[strconv.Itoa(id)] = r
	}
	return out
}

func labelsByTarget(doc *dom.Document) map[string]string {
	out := map[string]string{}
	for _, l := range doc.ByTag("label") {
		target := l.Get("for")
		if target == "" {
			continue
		}
		if _, seen := out[target]; !seen {
			out[target] = l.InnerText()
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
