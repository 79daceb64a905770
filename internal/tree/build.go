package tree

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/polzovatel/mmid-page-model/internal/classify"
	"github.com/polzovatel/mmid-page-model/internal/describe"
	"github.com/polzovatel/mmid-page-model/internal/dom"
	"github.com/polzovatel/mmid-page-model/internal/session"
)

// ErrNoDocument is reported in the sentinel root when Build gets no document.
var ErrNoDocument = errors.New("no document")

// Options controls pruning.
type Options struct {
	// OnlyInputFields keeps only form and input-capable nodes and their ancestors.
	OnlyInputFields bool `json:"onlyInputFields,omitempty"`
}

var inputTags = map[string]bool{"input": true, "select": true, "textarea": true, "button": true}

var inputRoles = map[string]bool{
	"textbox": true, "button": true, "checkbox": true, "combobox": true, "listbox": true,
	"menuitem": true, "menuitemcheckbox": true, "menuitemradio": true, "option": true,
	"radio": true, "searchbox": true, "slider": true, "spinbutton": true, "switch": true, "tab": true,
}

var stateAttrs = []string{"tabindex", "aria-expanded", "aria-selected", "aria-checked"}

// Builder injects identifiers and mirrors pages into trees.
type Builder struct {
	sessions *session.Manager
	logger   zerolog.Logger
}

// NewBuilder returns a builder tagging pages through sessions.
func NewBuilder(sessions *session.Manager, logger zerolog.Logger) *Builder {
	return &Builder{sessions: sessions, logger: logger}
}

// entry is an arena slot of the full, unpruned mirror.
type entry struct {
	node     Node
	input    bool
	children []int
}

type arena struct {
	entries []entry
	ignore  classify.Ignore
	cls     *classify.Classifier
	logger  zerolog.Logger
}

// Build injects identifiers into doc, mirrors it and prunes the mirror. It
// never fails: when doc is unusable the sentinel ErrorRoot is returned.
func (b *Builder) Build(doc *dom.Document, opts Options) *Node {
	if doc == nil {
		b.logger.Error().Err(ErrNoDocument).Msg("build tree")
		return ErrorRoot(ErrNoDocument)
	}
	sess := b.sessions.For(doc)
	sess.Inject(doc)

	so := b.sessions.Options()
	a := &arena{ignore: so.Ignore, cls: so.Classifier, logger: b.logger}
	a.entries = append(a.entries, entry{node: Node{Role: RootRole, Tag: RootTag, Name: doc.Title()}})
	for _, r := range doc.Roots() {
		a.mirror(r, 0)
	}
	root := a.prune(0, opts.OnlyInputFields)
	b.logger.Debug().
		Int("mirrored", len(a.entries)).
		Int("kept_ids", len(root.IDs())).
		Bool("only_inputs", opts.OnlyInputFields).
		Msg("tree built")
	return root
}

// mirror adds el below parent when it is worth a node, otherwise its
// children are attached to parent directly.
func (a *arena) mirror(el dom.Element, parent int) {
	if a.ignore.Skips(el) {
		a.mirrorChildren(el, parent)
		return
	}
	role := describe.Role(el)
	id, tagged := session.ID(el)
	input := inputTags[el.Tag()] || inputRoles[role] || hasInputState(el)
	if !tagged && !input && !describe.IsSemantic(role) {
		a.mirrorChildren(el, parent)
		return
	}

	n := Node{Role: role, Tag: el.Tag(), Name: describe.AccessibleName(el)}
	if n.Role == "" {
		n.Role = "generic"
	}
	if tagged {
		n.MMID = &id
		attrs, err := describe.DescribeWith(a.cls, el)
		if err != nil {
			a.logger.Warn().Err(err).Int("mmid", id).Msg("describe element")
		}
		n.Attributes = &attrs
		input = input || attrs.IsClickable
	}

	idx := len(a.entries)
	a.entries = append(a.entries, entry{node: n, input: input})
	a.entries[parent].children = append(a.entries[parent].children, idx)
	a.mirrorChildren(el, idx)
}

// hasInputState reports focusability or ARIA selection, expansion or check
// state, whether or not the element was tagged.
func hasInputState(el dom.Element) bool {
	for _, name := range stateAttrs {
		if el.Has(name) {
			return true
		}
	}
	return false
}

func (a *arena) mirrorChildren(el dom.Element, parent int) {
	for _, c := range el.Children() {
		a.mirror(c, parent)
	}
}

// prune returns a new tree rooted at arena slot idx holding only target
// nodes and their ancestors, or nil when nothing below idx survives.
func (a *arena) prune(idx int, onlyInputs bool) *Node {
	e := a.entries[idx]
	var kids []*Node
	for _, c := range e.children {
		if k := a.prune(c, onlyInputs); k != nil {
			kids = append(kids, k)
		}
	}
	target := e.node.MMID != nil
	if onlyInputs {
		target = e.input
	}
	if idx != 0 && !target && len(kids) == 0 {
		return nil
	}
	n := e.node
	n.Children = kids
	return &n
}
