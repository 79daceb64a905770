package dom

import "strings"

// Style is the subset of computed style read by the classifier and the
// attribute extractor.
type Style struct {
	Cursor          string `json:"cursor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	Border          string `json:"border,omitempty"`
	UserSelect      string `json:"userSelect,omitempty"`
	Display         string `json:"display,omitempty"`
	Visibility      string `json:"visibility,omitempty"`
}

// HasBackground reports a non-transparent background colour.
func (s Style) HasBackground() bool {
	switch strings.ReplaceAll(s.BackgroundColor, " ", "") {
	case "", "transparent", "rgba(0,0,0,0)", "initial", "none":
		return false
	}
	return true
}

// HasBorder reports a visible border.
func (s Style) HasBorder() bool {
	b := strings.TrimSpace(s.Border)
	if b == "" || b == "0" || b == "none" || strings.HasPrefix(b, "0px") {
		return false
	}
	return !strings.Contains(b, "none") && !strings.Contains(b, "hidden")
}

// NoSelect reports user-select: none.
func (s Style) NoSelect() bool { return s.UserSelect == "none" }

type decl struct {
	prop  string
	value string
}

func parseDecls(s string) []decl {
	var out []decl
	for _, part := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		k = lower(k)
		if k == "" {
			continue
		}
		v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "!important"))
		out = append(out, decl{prop: k, value: strings.TrimSpace(v)})
	}
	return out
}

// styleFromInline approximates computed style for static documents, where no
// stylesheet cascade is available. Later declarations win.
func styleFromInline(s string) Style {
	var st Style
	for _, d := range parseDecls(s) {
		switch d.prop {
		case "cursor":
			st.Cursor = lower(d.value)
		case "background-color", "background":
			st.BackgroundColor = lower(d.value)
		case "border":
			st.Border = lower(d.value)
		case "border-style":
			st.Border = lower(d.value)
		case "user-select", "-webkit-user-select":
			st.UserSelect = lower(d.value)
		case "display":
			st.Display = lower(d.value)
		case "visibility":
			st.Visibility = lower(d.value)
		}
	}
	return st
}
