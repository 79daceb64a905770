package describe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/polzovatel/mmid-page-model/internal/classify"
	"github.com/polzovatel/mmid-page-model/internal/dom"
	"github.com/polzovatel/mmid-page-model/internal/session"
)

const maxInnerText = 200

var inputCategories = map[string]string{
	"text":     CategoryTextInput,
	"email":    CategoryTextInput,
	"tel":      CategoryTextInput,
	"url":      CategoryTextInput,
	"search":   CategoryTextInput,
	"password": CategoryPasswordInput,
	"number":   CategoryNumberInput,
	"checkbox": CategoryCheckbox,
	"radio":    CategoryRadio,
	"file":     CategoryFileInput,
	"submit":   CategorySubmitInput,
	"reset":    CategoryResetInput,
	"button":   CategoryButtonInput,
}

// Describe computes the descriptor of el with the default classifier.
func Describe(el dom.Element) (Attributes, error) {
	return DescribeWith(classify.Default, el)
}

// DescribeWith computes the descriptor of el. When the element's computed
// style is unavailable the style-based signals are skipped and the partial
// descriptor is returned together with the error.
func DescribeWith(c *classify.Classifier, el dom.Element) (Attributes, error) {
	if !el.Valid() {
		return Attributes{}, dom.ErrInvalidElement
	}
	a := Attributes{
		IsClickable:  c.IsClickable(el),
		HasSVG:       classify.HasSVG(el),
		InnerText:    truncate(el.InnerText(), maxInnerText),
		ID:           el.Get("id"),
		Class:        el.Get("class"),
		Type:         el.Get("type"),
		Placeholder:  el.Get("placeholder"),
		Href:         el.Get("href"),
		TabIndex:     el.Get("tabindex"),
		AriaLabel:    el.Get("aria-label"),
		AriaExpanded: el.Get("aria-expanded"),
		AriaHidden:   el.Get("aria-hidden"),
		AriaDisabled: el.Get("aria-disabled"),
		AriaPressed:  el.Get("aria-pressed"),
		AriaChecked:  el.Get("aria-checked"),
		AriaSelected: el.Get("aria-selected"),
		AriaControls: el.Get("aria-controls"),
		AriaHasPopup: el.Get("aria-haspopup"),
	}
	if b, ok := el.Box(); ok {
		a.Box = &b
	}
	st, styleErr := el.Style()

	switch el.Tag() {
	case "input":
		describeInput(el, &a)
	case "select":
		describeSelect(el, &a)
	case "textarea":
		describeTextArea(el, &a)
	default:
		if kind, ok := buttonKind(el, st, styleErr == nil); ok {
			a.Category = kind
			a.Description = buttonState(el, kind)
		} else if el.Tag() == "a" && el.Has("href") {
			a.Category = CategoryLink
			a.Description = "link to " + el.Get("href")
		}
	}

	if styleErr != nil {
		return a, fmt.Errorf("describe %s: %w", el, styleErr)
	}
	return a, nil
}

func describeInput(el dom.Element, a *Attributes) {
	typ := classify.InputType(el)
	a.Type = typ
	if cat, ok := inputCategories[typ]; ok {
		a.Category = cat
	} else {
		a.Category = strings.ToUpper(typ[:1]) + typ[1:] + " Input"
	}

	parts := []string{typ + " input"}
	if el.Has("required") {
		parts = append(parts, "required")
	}
	if el.Has("readonly") {
		parts = append(parts, "read-only")
	}
	if el.Has("disabled") {
		parts = append(parts, "disabled")
	}
	if (typ == "checkbox" || typ == "radio") && el.Checked() {
		parts = append(parts, "checked")
	}
	if n, err := strconv.Atoi(strings.TrimSpace(el.Get("maxlength"))); err == nil && n > 0 {
		parts = append(parts, fmt.Sprintf("max length %d", n))
	}
	a.Description = strings.Join(parts, ", ")
}

func describeSelect(el dom.Element, a *Attributes) {
	a.Category = CategorySelect
	for _, o := range el.Descendants() {
		if o.Tag() != "option" {
			continue
		}
		opt := Option{Text: o.InnerText(), Selected: o.Selected()}
		if v, ok := o.Attr("value"); ok {
			opt.Value = v
		} else {
			opt.Value = opt.Text
		}
		if id, ok := session.ID(o); ok {
			opt.MMID = &id
		}
		a.Options = append(a.Options, opt)
	}

	parts := []string{fmt.Sprintf("dropdown with %d options", len(a.Options))}
	if el.Has("multiple") {
		parts = append(parts, "multiple selection allowed")
	}
	if el.Has("required") {
		parts = append(parts, "required")
	}
	if el.Has("disabled") {
		parts = append(parts, "disabled")
	}
	a.Description = strings.Join(parts, ", ")
}

func describeTextArea(el dom.Element, a *Attributes) {
	a.Category = CategoryTextArea
	parts := []string{"multi-line text input"}
	if el.Has("required") {
		parts = append(parts, "required")
	}
	if el.Has("readonly") {
		parts = append(parts, "read-only")
	}
	a.Description = strings.Join(parts, ", ")
}
