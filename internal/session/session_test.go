package session

import (
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/polzovatel/mmid-page-model/internal/classify"
	"github.com/polzovatel/mmid-page-model/internal/dom"
)

func parse(t testing.TB, markup string) *dom.Document {
	t.Helper()
	d, err := dom.ParseHTMLString(markup)
	require.NoError(t, err)
	return d
}

func TestInjectBasicButtonPage(t *testing.T) {
	d := parse(t, `<body><button id="b">Go</button><div id="d">decor</div></body>`)
	s := New(d.ID(), Options{}, zerolog.Nop())

	assert.Equal(t, 0, s.Inject(d))

	b, _ := d.ElementByID("b")
	div, _ := d.ElementByID("d")
	assert.Equal(t, "0", b.Get(Attribute))
	assert.False(t, div.Has(Attribute))
	assert.Equal(t, "border: "+DefaultHighlight, b.Get("style"))
	assert.False(t, b.Has(BackupAttribute), "nothing to back up")
}

func TestInjectIgnoredIframeOnly(t *testing.T) {
	d := parse(t, `<body><iframe src="/x" tabindex="0"></iframe></body>`)
	s := New(d.ID(), Options{}, zerolog.Nop())
	assert.Equal(t, -1, s.Inject(d))
	assert.Empty(t, d.WithAttr(Attribute))
}

func TestInjectSkipsIgnoredIDs(t *testing.T) {
	d := parse(t, `<body><button id="agentDriveAutoOverlay">x</button><button id="mine">y</button></body>`)
	s := New(d.ID(), Options{Ignore: classify.DefaultIgnore.WithIDs("mine")}, zerolog.Nop())
	assert.Equal(t, -1, s.Inject(d))
}

func TestPartialIgnoreKeepsDefaultTags(t *testing.T) {
	d := parse(t, `<body><iframe tabindex="0"></iframe><button id="mine">y</button><button>z</button></body>`)
	s := New(d.ID(), Options{Ignore: classify.Ignore{IDs: []string{"mine"}}}, zerolog.Nop())
	assert.Equal(t, 0, s.Inject(d))
	require.Len(t, d.WithAttr(Attribute), 1)
	assert.Equal(t, "z", d.WithAttr(Attribute)[0].InnerText())
}

func TestCleanupKeepsEmptyStyleAttribute(t *testing.T) {
	d := parse(t, `<body><button id="a" style="">a</button><button id="b">b</button></body>`)
	s := New(d.ID(), Options{}, zerolog.Nop())
	s.Inject(d)
	s.Inject(d)

	a, _ := d.ElementByID("a")
	b, _ := d.ElementByID("b")
	assert.True(t, a.Has(BackupAttribute))
	assert.Equal(t, "border: "+DefaultHighlight, a.Get("style"))

	s.Cleanup(d)
	style, has := a.Attr("style")
	assert.True(t, has)
	assert.Equal(t, "", style)
	assert.False(t, b.Has("style"))
	assert.False(t, a.Has(BackupAttribute))
}

func TestInjectIsIdempotent(t *testing.T) {
	d := parse(t, `<body><a href="/">a</a><input><select></select></body>`)
	s := New(d.ID(), Options{}, zerolog.Nop())

	first := s.Inject(d)
	d.TakeMutations()
	second := s.Inject(d)

	assert.Equal(t, 2, first)
	assert.Equal(t, first, second)
	assert.Empty(t, d.Mutations(), "second pass must not write anything")
}

func TestInjectContinuesAfterMutation(t *testing.T) {
	d := parse(t, `<body><a href="/">a</a><button id="late">b</button></body>`)
	late, _ := d.ElementByID("late")
	s := New(d.ID(), Options{}, zerolog.Nop())

	require.Equal(t, 1, s.Inject(d))

	// a re-render dropped the identifier
	require.NoError(t, late.RemoveAttr(Attribute))
	assert.Equal(t, 2, s.Inject(d), "re-tagged element gets a fresh identifier")
	assert.Equal(t, "2", late.Get(Attribute))
}

func TestCleanupKeepsHighWater(t *testing.T) {
	d := parse(t, `<body><button>a</button><button>b</button></body>`)
	s := New(d.ID(), Options{}, zerolog.Nop())
	require.Equal(t, 1, s.Inject(d))

	assert.Equal(t, 2, s.Cleanup(d))
	assert.Empty(t, d.WithAttr(Attribute))
	assert.Equal(t, 1, s.HighWater())

	assert.Equal(t, 3, s.Inject(d), "numbering continues after cleanup")
	assert.Equal(t, 0, New("other", Options{}, zerolog.Nop()).Cleanup(parse(t, `<p>x</p>`)))
}

func TestNewSessionSeedsFromPage(t *testing.T) {
	d := parse(t, `<body><button mmid="7">a</button><button>b</button></body>`)
	s := New(d.ID(), Options{}, zerolog.Nop())
	assert.Equal(t, 8, s.Inject(d))
	assert.Equal(t, 8, MaxID(d))
}

func TestCleanupRestoresStyle(t *testing.T) {
	d := parse(t, `<body><button id="a" style="color:red;">a</button><a id="b" href="/">b</a></body>`)
	s := New(d.ID(), Options{Highlight: "1px dashed blue"}, zerolog.Nop())
	s.Inject(d)

	a, _ := d.ElementByID("a")
	assert.Equal(t, "color:red; border: 1px dashed blue", a.Get("style"))
	assert.Equal(t, "1px dashed blue", a.InlineStyle("border"))

	s.Cleanup(d)
	b, _ := d.ElementByID("b")
	assert.Equal(t, "color:red;", a.Get("style"))
	assert.False(t, a.Has(BackupAttribute))
	assert.False(t, b.Has("style"))

	assert.Equal(t, 0, Cleanup(d, zerolog.Nop()), "cleanup of a clean page is a no-op")
}

func TestManagerTracksGenerations(t *testing.T) {
	m, err := NewManager(1, Options{}, zerolog.Nop())
	require.NoError(t, err)

	d1 := parse(t, `<button>a</button>`)
	d2 := parse(t, `<button>a</button>`)
	s1 := m.For(d1)
	assert.Same(t, s1, m.For(d1))
	assert.Equal(t, 0, s1.Inject(d1))

	s2 := m.For(d2)
	assert.NotSame(t, s1, s2)
	assert.Equal(t, 1, m.Len(), "oldest generation is evicted")

	m.Forget(d2.ID())
	assert.Equal(t, 0, m.Len())
}

var fragments = []string{
	`<button>b</button>`,
	`<a href="/x">l</a>`,
	`<div>plain</div>`,
	`<input type="text">`,
	`<input type="hidden">`,
	`<span onclick="f()">s</span>`,
	`<div role="link">r</div>`,
	`<iframe></iframe>`,
	`<p style="color: blue">p</p>`,
	`<button style="border: 3px double green">styled</button>`,
	`<div tabindex="0" style="margin:0">t</div>`,
	`<button style="">empty style</button>`,
	`<main><button>inside main</button></main>`,
}

func genPage(rt *rapid.T) string {
	parts := rapid.SliceOfN(rapid.SampledFrom(fragments), 0, 12).Draw(rt, "fragments")
	return "<body><section>" + strings.Join(parts, "") + "</section></body>"
}

func TestInjectProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		markup := genPage(rt)
		d, err := dom.ParseHTMLString(markup)
		if err != nil {
			rt.Fatalf("parse: %v", err)
		}
		before := map[int]string{}
		hadStyle := map[int]bool{}
		for _, el := range d.Elements() {
			before[el.Index()], hadStyle[el.Index()] = el.Attr("style")
		}

		s := New(d.ID(), Options{}, zerolog.Nop())
		high := s.Inject(d)
		if again := s.Inject(d); again != high {
			rt.Fatalf("second injection returned %d, want %d", again, high)
		}

		// identifiers increase in document order, start at zero and end at high
		prev := -1
		for _, el := range d.Elements() {
			id, ok := ID(el)
			interactive := classify.IsInteractive(el) && !classify.DefaultIgnore.Skips(el)
			if ok != interactive {
				rt.Fatalf("%s tagged=%v interactive=%v", el, ok, interactive)
			}
			if !ok {
				continue
			}
			if id != prev+1 {
				rt.Fatalf("identifier %d follows %d", id, prev)
			}
			prev = id
		}
		if prev != high {
			rt.Fatalf("last identifier %d, returned %d", prev, high)
		}

		s.Cleanup(d)
		for _, el := range d.Elements() {
			if el.Has(Attribute) || el.Has(BackupAttribute) {
				rt.Fatalf("%s still tagged after cleanup", el)
			}
			style, has := el.Attr("style")
			if has != hadStyle[el.Index()] || style != before[el.Index()] {
				rt.Fatalf("%s style %q (present=%v), want %q (present=%v)", el, style, has, before[el.Index()], hadStyle[el.Index()])
			}
		}
	})
}

func ExamplePageSession_Inject() {
	d, _ := dom.ParseHTMLString(`<body><button>Go</button><div>decor</div></body>`)
	s := New(d.ID(), Options{}, zerolog.Nop())
	fmt.Println(s.Inject(d), s.Inject(d))
	// Output: 0 0
}
