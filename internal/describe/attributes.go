// Package describe computes the semantic descriptor attached to every
// identified element of the page tree.
package describe

import "github.com/polzovatel/mmid-page-model/internal/dom"

// Categories reported by Describe.
const (
	CategoryTextInput     = "Text Input"
	CategoryPasswordInput = "Password Input"
	CategoryNumberInput   = "Number Input"
	CategoryCheckbox      = "Checkbox"
	CategoryRadio         = "Radio Button"
	CategoryFileInput     = "File Input"
	CategorySubmitInput   = "Submit Input"
	CategoryResetInput    = "Reset Input"
	CategoryButtonInput   = "Button Input"
	CategorySelect        = "Select Dropdown"
	CategoryTextArea      = "Text Area"
	CategoryLink          = "Link"

	CategorySubmitButton     = "Submit Button"
	CategoryResetButton      = "Reset Button"
	CategoryToggleButton     = "Toggle Button"
	CategoryExpandableButton = "Expandable Button"
	CategoryPopupButton      = "Popup Button"
	CategoryHTMLButton       = "HTML Button"
	CategoryInputButton      = "Input Button"
	CategoryARIAButton       = "ARIA Button"
	CategoryCustomButton     = "Custom Button"
)

// Option is one entry of a <select>.
type Option struct {
	MMID     *int   `json:"mmid,omitempty" yaml:"mmid,omitempty"`
	Text     string `json:"text" yaml:"text"`
	Value    string `json:"value" yaml:"value"`
	Selected bool   `json:"selected" yaml:"selected"`
}

// Attributes is the descriptor of one identified element. Every field is
// optional; Category tags which family produced it.
type Attributes struct {
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	IsClickable bool   `json:"is_clickable,omitempty" yaml:"is_clickable,omitempty"`
	HasSVG      bool   `json:"has_svg,omitempty" yaml:"has_svg,omitempty"`
	InnerText   string `json:"innerText,omitempty" yaml:"innerText,omitempty"`

	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	Class       string `json:"class,omitempty" yaml:"class,omitempty"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Href        string `json:"href,omitempty" yaml:"href,omitempty"`
	TabIndex    string `json:"tabindex,omitempty" yaml:"tabindex,omitempty"`

	AriaLabel    string `json:"ariaLabel,omitempty" yaml:"ariaLabel,omitempty"`
	AriaExpanded string `json:"ariaExpanded,omitempty" yaml:"ariaExpanded,omitempty"`
	AriaHidden   string `json:"ariaHidden,omitempty" yaml:"ariaHidden,omitempty"`
	AriaDisabled string `json:"ariaDisabled,omitempty" yaml:"ariaDisabled,omitempty"`
	AriaPressed  string `json:"ariaPressed,omitempty" yaml:"ariaPressed,omitempty"`
	AriaChecked  string `json:"ariaChecked,omitempty" yaml:"ariaChecked,omitempty"`
	AriaSelected string `json:"ariaSelected,omitempty" yaml:"ariaSelected,omitempty"`
	AriaControls string `json:"ariaControls,omitempty" yaml:"ariaControls,omitempty"`
	AriaHasPopup string `json:"ariaHasPopup,omitempty" yaml:"ariaHasPopup,omitempty"`

	Options []Option  `json:"options,omitempty" yaml:"options,omitempty"`
	Box     *dom.Rect `json:"bbox,omitempty" yaml:"bbox,omitempty"`
}

// HasState reports ARIA selection, expansion or check state.
func (a *Attributes) HasState() bool {
	return a.AriaExpanded != "" || a.AriaSelected != "" || a.AriaChecked != ""
}
