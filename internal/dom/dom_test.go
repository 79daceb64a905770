package dom

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHTMLDocumentOrder(t *testing.T) {
	d, err := ParseHTMLString(`<html><head><title> Shop </title></head>
		<body><div id="a"><span>x</span></div><p id="b">y</p></body></html>`)
	require.NoError(t, err)

	assert.Equal(t, "Shop", d.Title())
	assert.NotEmpty(t, d.ID())

	var tags []string
	for _, el := range d.Elements() {
		tags = append(tags, el.Tag())
	}
	assert.Equal(t, []string{"html", "head", "title", "body", "div", "span", "p"}, tags)

	div, ok := d.ElementByID("a")
	require.True(t, ok)
	parent, ok := div.Parent()
	require.True(t, ok)
	assert.Equal(t, "body", parent.Tag())
	assert.Len(t, div.Children(), 1)
}

func TestInnerTextInterleavesChildren(t *testing.T) {
	d, err := ParseHTMLString(`<button id="b">Save <b>all</b>   files<script>var x</script></button>`)
	require.NoError(t, err)
	b, ok := d.ElementByID("b")
	require.True(t, ok)
	assert.Equal(t, "Save all files", b.InnerText())
}

func TestTemplateContentIsInert(t *testing.T) {
	d, err := ParseHTMLString(`<body><template><button>hidden</button></template></body>`)
	require.NoError(t, err)
	assert.Empty(t, d.ByTag("button"))
}

func TestFormProperties(t *testing.T) {
	d, err := ParseHTMLString(`<input id="c" type="checkbox" checked value="yes">
		<select id="s"><option>a</option><option>b</option></select>
		<select id="m" multiple><option>a</option></select>
		<textarea id="t">  hello  </textarea>`)
	require.NoError(t, err)

	c, _ := d.ElementByID("c")
	assert.True(t, c.Checked())
	assert.Equal(t, "yes", c.Value())

	opts := d.ByTag("option")
	require.Len(t, opts, 3)
	assert.True(t, opts[0].Selected(), "first option of a single select is selected by default")
	assert.False(t, opts[1].Selected())
	assert.False(t, opts[2].Selected(), "multi-select has no default")

	ta, _ := d.ElementByID("t")
	assert.Equal(t, "  hello  ", ta.Value())
}

func TestSetAttrJournal(t *testing.T) {
	d, err := ParseHTMLString(`<a id="x" href="/">x</a>`)
	require.NoError(t, err)
	a, _ := d.ElementByID("x")

	require.NoError(t, a.SetAttr("MMID", "3"))
	require.NoError(t, a.RemoveAttr("href"))
	require.NoError(t, a.RemoveAttr("missing"))

	assert.Equal(t, "3", a.Get("mmid"))
	assert.False(t, a.Has("href"))
	assert.Equal(t, []Mutation{
		{Node: a.Index(), Name: "mmid", Value: "3"},
		{Node: a.Index(), Name: "href", Remove: true},
	}, d.TakeMutations())
	assert.Empty(t, d.Mutations())

	assert.ErrorIs(t, Element{}.SetAttr("a", "b"), ErrInvalidElement)
}

func TestRenderIncludesWrites(t *testing.T) {
	d, err := ParseHTMLString(`<button id="b">Go</button>`)
	require.NoError(t, err)
	b, _ := d.ElementByID("b")
	require.NoError(t, b.SetAttr("mmid", "0"))

	var buf bytes.Buffer
	require.NoError(t, d.Render(&buf))
	assert.Contains(t, buf.String(), `<button id="b" mmid="0">Go</button>`)
}

func TestInlineStyle(t *testing.T) {
	d, err := ParseHTMLString(`<div id="d" style="cursor:pointer; Background-Color: #fff; border: 1px solid red !important"></div>`)
	require.NoError(t, err)
	div, _ := d.ElementByID("d")

	st, err := div.Style()
	require.NoError(t, err)
	assert.Equal(t, "pointer", st.Cursor)
	assert.True(t, st.HasBackground())
	assert.True(t, st.HasBorder())
	assert.Equal(t, "1px solid red", div.InlineStyle("border"))
	assert.Equal(t, "", div.InlineStyle("color"))
}

func TestStyleSignals(t *testing.T) {
	assert.False(t, Style{BackgroundColor: "rgba(0, 0, 0, 0)"}.HasBackground())
	assert.False(t, Style{Border: "0px none rgb(0, 0, 0)"}.HasBorder())
	assert.True(t, Style{Border: "1px solid rgb(0, 0, 0)"}.HasBorder())
	assert.True(t, Style{UserSelect: "none"}.NoSelect())
}

func TestFromCapture(t *testing.T) {
	d, err := FromCapture(Capture{
		Generation: "gen-1",
		Title:      "Live",
		URL:        "https://example.test/",
		Elements: []CapturedElement{
			{Parent: -1, Tag: "HTML", Content: []any{float64(1)}},
			{Parent: 0, Tag: "body", Content: []any{"Hi ", float64(2), "!"}},
			{Parent: 1, Tag: "a", Attrs: []Attr{{Key: "HREF", Val: "/x"}}, Content: []any{"there"}, StyleError: "detached"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "gen-1", d.ID())
	assert.Equal(t, "https://example.test/", d.URL())
	body := d.Element(1)
	assert.Equal(t, "Hi there!", body.InnerText())
	a := d.Element(2)
	assert.Equal(t, "/x", a.Get("href"))
	_, err = a.Style()
	assert.Error(t, err)

	var buf bytes.Buffer
	assert.Error(t, d.Render(&buf))
}

func TestFromCaptureRejectsOutOfOrderParents(t *testing.T) {
	_, err := FromCapture(Capture{Elements: []CapturedElement{{Parent: 0, Tag: "div"}}})
	assert.Error(t, err)
}
