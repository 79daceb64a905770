package describe

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/polzovatel/mmid-page-model/internal/dom"
)

var buttonClass = regexp.MustCompile(`(?i)\b(btn|button)\b`)

// buttonKind decides whether el behaves like a button and, if so, which
// signal identifies it. styleOK is false when computed style is unknown.
func buttonKind(el dom.Element, st dom.Style, styleOK bool) (string, bool) {
	tag := el.Tag()
	typ := strings.ToLower(strings.TrimSpace(el.Get("type")))
	role := strings.TrimSpace(el.Get("role"))

	explicit := tag == "button" ||
		(tag == "input" && (typ == "button" || typ == "submit" || typ == "reset")) ||
		role == "button"

	pressed := el.Has("aria-pressed")
	expandable := el.Has("aria-expanded") && el.Has("aria-controls")
	popup := el.Get("aria-haspopup") == "true" && el.Has("aria-controls")

	handler := el.Has("onclick")
	classSignal := buttonClass.MatchString(el.Get("class")) && (handler || el.Has("tabindex"))

	labelled := el.Has("aria-label") || el.Has("title")
	pointer := styleOK && st.Cursor == "pointer"
	styleSignal := pointer && labelled && handler

	iconSignal := pointer && handler && hasIcon(el) &&
		(labelled || el.Has("role")) &&
		(st.NoSelect() || el.Get("tabindex") == "0" || st.HasBackground() || st.HasBorder())

	if !explicit && !pressed && !expandable && !popup && !classSignal && !styleSignal && !iconSignal {
		return "", false
	}

	switch {
	case (tag == "button" || tag == "input") && typ == "submit":
		return CategorySubmitButton, true
	case (tag == "button" || tag == "input") && typ == "reset":
		return CategoryResetButton, true
	case pressed:
		return CategoryToggleButton, true
	case expandable:
		return CategoryExpandableButton, true
	case popup:
		return CategoryPopupButton, true
	case tag == "button":
		return CategoryHTMLButton, true
	case tag == "input":
		return CategoryInputButton, true
	case role == "button":
		return CategoryARIAButton, true
	default:
		return CategoryCustomButton, true
	}
}

func hasIcon(el dom.Element) bool {
	return el.HasDescendant(func(d dom.Element) bool {
		switch d.Tag() {
		case "svg", "i", "img":
			return true
		}
		class := strings.ToLower(d.Get("class"))
		return strings.Contains(class, "icon") || strings.Contains(class, "fa-")
	})
}

func buttonState(el dom.Element, kind string) string {
	parts := []string{strings.ToLower(kind)}
	if v, ok := el.Attr("aria-pressed"); ok {
		parts = append(parts, "pressed: "+v)
	}
	if v, ok := el.Attr("aria-expanded"); ok {
		parts = append(parts, "expanded: "+v)
	}
	if v := strings.TrimSpace(el.Get("aria-controls")); v != "" {
		parts = append(parts, fmt.Sprintf("controls #%s", v))
	}
	if el.Has("disabled") || el.Get("aria-disabled") == "true" {
		parts = append(parts, "disabled")
	}
	return strings.Join(parts, ", ")
}
