// Package classify decides which elements of a page are interactive.
//
// The decision is driven by a rule table rather than code so the same rules
// can be shipped to any execution boundary (an in-page script, a CDP
// client, a test harness) as plain data.
package classify

// Rules is the interactivity rule table. Checks run in field order and the
// first match wins.
type Rules struct {
	Tags       []string `json:"tags" yaml:"tags"`
	InputTypes []string `json:"inputTypes" yaml:"inputTypes"`
	Roles      []string `json:"roles" yaml:"roles"`
	Events     []string `json:"events" yaml:"events"`
	Cursors    []string `json:"cursors" yaml:"cursors"`

	// Looser signals used only by IsClickable.
	ClickableRoles   []string `json:"clickableRoles" yaml:"clickableRoles"`
	ClickableClasses []string `json:"clickableClasses" yaml:"clickableClasses"`
}

// DefaultRules is the rule table used for identifier assignment.
var DefaultRules = Rules{
	Tags: []string{"a", "button", "select", "textarea"},
	InputTypes: []string{
		"text", "password", "number", "email", "tel", "url", "search",
		"date", "time", "datetime-local", "month", "week",
		"checkbox", "radio", "file", "submit", "reset", "button",
	},
	Roles: []string{
		"WebArea", "button", "link", "checkbox", "radio", "textbox", "combobox",
		"listbox", "switch", "slider", "spinbutton", "menuitem", "option",
	},
	Events:           []string{"click", "mousedown", "mouseup", "touchstart", "touchend", "keydown", "keyup"},
	Cursors:          []string{"pointer", "grab", "grabbing"},
	ClickableRoles:   []string{"button", "link", "tab"},
	ClickableClasses: []string{"trigger", "clickable"},
}

// Ignore lists elements that must never become targets.
type Ignore struct {
	Tags []string `json:"tags" yaml:"tags"`
	IDs  []string `json:"ids" yaml:"ids"`
}

// DefaultIgnore protects document scaffolding, embedded documents and
// tooling overlays.
var DefaultIgnore = Ignore{
	Tags: []string{"head", "style", "script", "link", "meta", "noscript", "template", "iframe", "g", "main", "c-wiz", "path", "html"},
	IDs:  []string{"agentDriveAutoOverlay"},
}

// WithIDs returns a copy of ig with extra ids appended.
func (ig Ignore) WithIDs(ids ...string) Ignore {
	out := Ignore{
		Tags: append([]string(nil), ig.Tags...),
		IDs:  append([]string(nil), ig.IDs...),
	}
	for _, id := range ids {
		if id != "" && !contains(out.IDs, id) {
			out.IDs = append(out.IDs, id)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
