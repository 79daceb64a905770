package fields

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polzovatel/mmid-page-model/internal/dom"
	"github.com/polzovatel/mmid-page-model/internal/session"
)

func injected(t *testing.T, markup string) *dom.Document {
	t.Helper()
	d, err := dom.ParseHTMLString(markup)
	require.NoError(t, err)
	session.New(d.ID(), session.Options{}, zerolog.Nop()).Inject(d)
	return d
}

func TestReadRequiredTextInput(t *testing.T) {
	d := injected(t, `<body><p>Fill in</p><input type="text" required></body>`)
	got := Read(d)
	require.Len(t, got, 1)
	r := got["0"]
	assert.Equal(t, "text", r.Type)
	assert.True(t, r.Required)
	assert.False(t, r.Disabled)
}

func TestReadSelectValue(t *testing.T) {
	d := injected(t, `<body><label for="c">Colour</label>
		<select id="c"><option>Red</option><option selected>Green</option><option>Blue</option></select></body>`)
	got := Read(d)
	require.Len(t, got, 1)
	r := got["0"]
	assert.Equal(t, "select", r.Type)
	assert.Equal(t, "Green", r.Value)
	assert.Equal(t, []string{"Red", "Green", "Blue"}, r.Options)
	assert.Equal(t, "Colour", r.Label)
}

func TestReadMultiSelectJoinsSelection(t *testing.T) {
	d := injected(t, `<select multiple><option selected>a</option><option>b</option><option selected>c</option></select>`)
	assert.Equal(t, "a, c", Read(d)["0"].Value)
}

func TestReadTextAreaNormalizesValue(t *testing.T) {
	long := strings.Repeat("word ", 40)
	d := injected(t, `<textarea readonly placeholder="Notes">  line one
		line   two </textarea><textarea>`+long+`</textarea>`)
	got := Read(d)
	require.Len(t, got, 2)
	assert.Equal(t, "line one line two", got["0"].Value)
	assert.Equal(t, "textarea", got["0"].Type)
	assert.True(t, got["0"].ReadOnly)
	assert.Equal(t, "Notes", got["0"].Placeholder)
	assert.Len(t, got["1"].Value, 100)
}

func TestReadInputDetails(t *testing.T) {
	d := injected(t, `<label for="e">Email</label><input id="e" type="EMAIL" value="a@b.c" disabled>
		<input type="hidden" value="secret">`)
	got := Read(d)
	require.Len(t, got, 1, "hidden inputs are not identified")
	assert.Equal(t, Record{Type: "email", Value: "a@b.c", Disabled: true, Label: "Email"}, got["0"])
}

func TestReadSkipsUntagged(t *testing.T) {
	d, err := dom.ParseHTMLString(`<input><select></select>`)
	require.NoError(t, err)
	assert.Empty(t, Read(d))
	assert.Empty(t, Read(nil))
}
