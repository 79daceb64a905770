// Package snapshot captures a live playwright page into a dom.Document and
// replays attribute writes back onto the same elements.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog"

	"github.com/polzovatel/mmid-page-model/internal/dom"
	"github.com/polzovatel/mmid-page-model/internal/session"
)

// ErrStale is returned by Apply when the page navigated or reloaded after
// the last capture.
var ErrStale = errors.New("snapshot: page changed since capture")

// ErrNotCaptured is returned by Apply before the first Capture.
var ErrNotCaptured = errors.New("snapshot: nothing captured")

// LivePage adapts a playwright page to pagemodel.Page. It is not safe for
// concurrent use; the page itself is shared with whoever drives it.
type LivePage struct {
	page       playwright.Page
	logger     zerolog.Logger
	generation string
}

func NewLivePage(page playwright.Page, logger zerolog.Logger) *LivePage {
	return &LivePage{page: page, logger: logger}
}

// Generation returns the page generation seen by the last capture.
func (p *LivePage) Generation() string { return p.generation }

// Capture walks the page in document order. The generation id lives on the
// page's window, so it survives repeated captures and is lost on navigation.
func (p *LivePage) Capture(ctx context.Context) (*dom.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	val, err := p.page.Evaluate(captureScript, uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("playwright: %w", err)
	}
	doc, c, err := decode(val)
	if err != nil {
		return nil, err
	}
	if p.generation != "" && p.generation != c.Generation {
		p.logger.Debug().Str("old", p.generation).Str("new", c.Generation).Msg("page generation changed")
	}
	p.generation = c.Generation
	p.logger.Debug().Int("elements", doc.Len()).Str("url", c.URL).Msg("page captured")
	return doc, nil
}

// Apply replays muts onto the elements of the last capture.
func (p *LivePage) Apply(ctx context.Context, muts []dom.Mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.generation == "" {
		return ErrNotCaptured
	}
	if len(muts) == 0 {
		return nil
	}
	payload, err := json.Marshal(muts)
	if err != nil {
		return err
	}
	val, err := p.page.Evaluate(applyScript, map[string]any{
		"generation": p.generation,
		"mutations":  string(payload),
	})
	if err != nil {
		return fmt.Errorf("playwright: %w", err)
	}
	if status, _ := val.(string); status == "stale" {
		return ErrStale
	}
	return nil
}

// decode turns the script result into a document via its JSON form.
func decode(val any) (*dom.Document, dom.Capture, error) {
	var c dom.Capture
	bytes, err := json.Marshal(val)
	if err != nil {
		return nil, c, err
	}
	if err := json.Unmarshal(bytes, &c); err != nil {
		return nil, c, fmt.Errorf("decode capture: %w", err)
	}
	doc, err := dom.FromCapture(c)
	if err != nil {
		return nil, c, err
	}
	return doc, c, nil
}

// WithDeadline shortens ctx for page reads that should not hang.
func WithDeadline(ctx context.Context, dur time.Duration) (context.Context, context.CancelFunc) {
	if dur <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, dur)
}

// captureScript reads computed style with the debug highlight swapped out, so
// a tagged element reports the same style it had before injection.
var captureScript = strings.NewReplacer(
	"$ATTR", session.Attribute,
	"$BACKUP", session.BackupAttribute,
).Replace(captureTemplate)

const captureTemplate = `(generation) => {
	if (!window.__mmidGeneration) window.__mmidGeneration = generation;
	const nodes = [];
	const out = [];
	function setStyle(el, v) {
		if (v === null) el.removeAttribute("style");
		else el.setAttribute("style", v);
	}
	function readStyle(el) {
		const tagged = el.hasAttribute("$ATTR");
		const current = el.getAttribute("style");
		if (tagged) setStyle(el, el.getAttribute("$BACKUP"));
		try {
			const cs = window.getComputedStyle(el);
			return {
				cursor: cs.cursor,
				backgroundColor: cs.backgroundColor,
				border: cs.border,
				userSelect: cs.userSelect || cs.webkitUserSelect || "",
				display: cs.display,
				visibility: cs.visibility,
			};
		} finally {
			if (tagged) setStyle(el, current);
		}
	}
	function visit(el, parent) {
		const idx = nodes.length;
		nodes.push(el);
		const rec = {parent, tag: el.tagName.toLowerCase(), attrs: [], content: []};
		out.push(rec);
		for (const a of el.attributes) rec.attrs.push({k: a.name, v: a.value});
		try {
			rec.style = readStyle(el);
		} catch (e) {
			rec.styleError = String(e);
		}
		if (typeof el.value === "string") rec.value = el.value;
		if (el.checked === true) rec.checked = true;
		if (el.selected === true) rec.selected = true;
		try {
			const r = el.getBoundingClientRect();
			rec.box = {x: r.x, y: r.y, width: r.width, height: r.height};
		} catch (e) {}
		for (const c of el.childNodes) {
			if (c.nodeType === Node.TEXT_NODE) {
				rec.content.push(c.nodeValue);
			} else if (c.nodeType === Node.ELEMENT_NODE) {
				rec.content.push(nodes.length);
				visit(c, idx);
			}
		}
	}
	if (document.documentElement) visit(document.documentElement, -1);
	window.__mmidNodes = nodes;
	return {generation: window.__mmidGeneration, title: document.title, url: location.href, elements: out};
}`

const applyScript = `(arg) => {
	if (window.__mmidGeneration !== arg.generation || !window.__mmidNodes) return "stale";
	for (const m of JSON.parse(arg.mutations)) {
		const el = window.__mmidNodes[m.i];
		if (!el) continue;
		if (m.remove) el.removeAttribute(m.name);
		else el.setAttribute(m.name, m.value || "");
	}
	return "";
}`
