// Package session assigns mmid identifiers to the interactive elements of a
// page and removes them again.
package session

import (
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/polzovatel/mmid-page-model/internal/classify"
	"github.com/polzovatel/mmid-page-model/internal/dom"
)

const (
	// Attribute carries the identifier on each tagged element.
	Attribute = "mmid"
	// BackupAttribute keeps the element's style attribute as it was before tagging.
	BackupAttribute = "data-mmid-style-backup"
	// DefaultHighlight is the debug border drawn around tagged elements.
	DefaultHighlight = "2px solid red"
)

// Options controls identifier assignment.
type Options struct {
	Highlight  string
	Ignore     classify.Ignore
	Classifier *classify.Classifier
}

func (o Options) withDefaults() Options {
	if o.Highlight == "" {
		o.Highlight = DefaultHighlight
	}
	if o.Ignore.Tags == nil {
		o.Ignore.Tags = classify.DefaultIgnore.Tags
	}
	if o.Ignore.IDs == nil {
		o.Ignore.IDs = classify.DefaultIgnore.IDs
	}
	if o.Classifier == nil {
		o.Classifier = classify.Default
	}
	return o
}

// PageSession owns the identifier high-water mark of one page generation.
// The mark survives Cleanup so identifiers are never reused while the page
// lives.
type PageSession struct {
	mu        sync.Mutex
	docID     string
	highWater int
	seeded    bool
	opts      Options
	logger    zerolog.Logger
}

// New returns a session for the page generation docID.
func New(docID string, opts Options, logger zerolog.Logger) *PageSession {
	return &PageSession{
		docID:     docID,
		highWater: -1,
		opts:      opts.withDefaults(),
		logger:    logger.With().Str("doc", docID).Logger(),
	}
}

// DocumentID is the page generation the session belongs to.
func (s *PageSession) DocumentID() string { return s.docID }

// HighWater returns the largest identifier handed out, -1 if none.
func (s *PageSession) HighWater() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highWater
}

// Inject tags every interactive element of doc that has no identifier yet
// and returns the highest identifier assigned so far, or -1 when the page has
// no eligible element. Elements that already carry an identifier keep it.
func (s *PageSession) Inject(doc *dom.Document) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seeded {
		// a previous process may have tagged this page already
		if m := MaxID(doc); m > s.highWater {
			s.highWater = m
		}
		s.seeded = true
	}

	counter := s.highWater
	assigned := 0
	for _, el := range doc.Elements() {
		if s.opts.Ignore.Skips(el) || !s.opts.Classifier.IsInteractive(el) {
			continue
		}
		if _, tagged := el.Attr(Attribute); tagged {
			s.highlight(el, false)
			continue
		}
		next := counter + 1
		if err := el.SetAttr(Attribute, strconv.Itoa(next)); err != nil {
			s.logger.Warn().Err(err).Str("element", el.String()).Msg("assign identifier")
			continue
		}
		counter = next
		assigned++
		s.highlight(el, true)
	}
	s.highWater = counter
	s.logger.Debug().Int("assigned", assigned).Int("high_water", counter).Msg("identifiers injected")
	return counter
}

// highlight draws the debug border. A style attribute present before the
// first highlight is saved in BackupAttribute; an element without one gets no
// backup. fresh is set for elements tagged in this pass.
func (s *PageSession) highlight(el dom.Element, fresh bool) {
	hl := withBorder("", s.opts.Highlight)
	base, saved := el.Attr(BackupAttribute)
	if !saved {
		// a previously tagged element whose style is exactly our border had none
		if style, has := el.Attr("style"); has && (fresh || style != hl) {
			if err := el.SetAttr(BackupAttribute, style); err != nil {
				s.logger.Warn().Err(err).Str("mmid", el.Get(Attribute)).Msg("back up style")
				return
			}
			base = style
		}
	}
	style := withBorder(base, s.opts.Highlight)
	if cur, has := el.Attr("style"); has && cur == style {
		return
	}
	if err := el.SetAttr("style", style); err != nil {
		s.logger.Warn().Err(err).Str("mmid", el.Get(Attribute)).Msg("apply highlight")
	}
}

func withBorder(style, border string) string {
	decl := "border: " + border
	trimmed := strings.TrimSpace(style)
	switch {
	case trimmed == "":
		return decl
	case strings.HasSuffix(trimmed, ";"):
		return trimmed + " " + decl
	default:
		return trimmed + "; " + decl
	}
}

// Cleanup removes identifiers and restores the styles saved by Inject. It
// returns the number of elements touched and does not reset the high-water
// mark.
func (s *PageSession) Cleanup(doc *dom.Document) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cleanup(doc, s.logger)
}

// Cleanup strips identifiers from doc without a session.
func Cleanup(doc *dom.Document, logger zerolog.Logger) int {
	return cleanup(doc, logger)
}

func cleanup(doc *dom.Document, logger zerolog.Logger) int {
	touched := 0
	for _, el := range doc.Elements() {
		id, tagged := el.Attr(Attribute)
		backup, saved := el.Attr(BackupAttribute)
		if !tagged && !saved {
			continue
		}
		touched++
		if err := el.RemoveAttr(Attribute); err != nil {
			logger.Warn().Err(err).Str("mmid", id).Msg("remove identifier")
		}
		var err error
		switch {
		case saved:
			// restored verbatim, style="" included
			err = el.SetAttr("style", backup)
			if err == nil {
				err = el.RemoveAttr(BackupAttribute)
			}
		case tagged:
			err = el.RemoveAttr("style")
		}
		if err != nil {
			logger.Warn().Err(err).Str("mmid", id).Msg("restore style")
		}
	}
	return touched
}

// MaxID returns the largest identifier present in doc, -1 if none.
func MaxID(doc *dom.Document) int {
	highest := -1
	for _, el := range doc.WithAttr(Attribute) {
		if n, err := strconv.Atoi(strings.TrimSpace(el.Get(Attribute))); err == nil && n > highest {
			highest = n
		}
	}
	return highest
}

// ID parses the identifier of el.
func ID(el dom.Element) (int, bool) {
	v, ok := el.Attr(Attribute)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}
