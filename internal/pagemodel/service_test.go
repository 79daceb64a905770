package pagemodel

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polzovatel/mmid-page-model/internal/dom"
	"github.com/polzovatel/mmid-page-model/internal/session"
	"github.com/polzovatel/mmid-page-model/internal/tree"
)

func newService(t *testing.T) *Service {
	t.Helper()
	m, err := session.NewManager(4, session.Options{}, zerolog.Nop())
	require.NoError(t, err)
	return NewService(m, zerolog.Nop())
}

func htmlPage(t *testing.T, markup string) *HTMLPage {
	t.Helper()
	p, err := NewHTMLPage(strings.NewReader(markup))
	require.NoError(t, err)
	return p
}

// recordingPage captures a fresh copy of the same markup each time, like a
// live page would, and remembers what was written back.
type recordingPage struct {
	markup   string
	doc      *dom.Document
	applied  [][]dom.Mutation
	applyErr error
}

func (p *recordingPage) Capture(context.Context) (*dom.Document, error) {
	if p.doc == nil {
		d, err := dom.ParseHTMLString(p.markup)
		if err != nil {
			return nil, err
		}
		p.doc = d
	}
	return p.doc, nil
}

func (p *recordingPage) Apply(_ context.Context, muts []dom.Mutation) error {
	p.applied = append(p.applied, muts)
	return p.applyErr
}

type brokenPage struct{ err error }

func (p brokenPage) Capture(context.Context) (*dom.Document, error) { return nil, p.err }
func (p brokenPage) Apply(context.Context, []dom.Mutation) error { return p.err }

const buttonPage = `<html><body><button id="b">Go</button><div>decor</div></body></html>`

func TestInjectIdentifiersBasicButton(t *testing.T) {
	svc := newService(t)
	p := htmlPage(t, buttonPage)

	high, err := svc.InjectIdentifiers(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 0, high)

	b, ok := p.Document().ElementByID("b")
	require.True(t, ok)
	assert.Equal(t, "0", b.Get(session.Attribute))
	assert.Len(t, p.Document().WithAttr(session.Attribute), 1)

	high, err = svc.InjectIdentifiers(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 0, high, "second pass assigns nothing")
}

func TestInjectIdentifiersIgnoredIframe(t *testing.T) {
	svc := newService(t)
	p := htmlPage(t, `<iframe src="x"></iframe>`)
	high, err := svc.InjectIdentifiers(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, -1, high)
	assert.Empty(t, svc.BuildTree(context.Background(), p, tree.Options{}).Children)
}

func TestInjectAppliesJournal(t *testing.T) {
	svc := newService(t)
	p := &recordingPage{markup: `<a href="/x">x</a><button style="color: red">y</button>`}
	high, err := svc.InjectIdentifiers(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 1, high)
	require.Len(t, p.applied, 1)

	var names []string
	for _, m := range p.applied[0] {
		names = append(names, m.Name)
	}
	assert.Contains(t, names, session.Attribute)
	assert.Contains(t, names, session.BackupAttribute)
	assert.Contains(t, names, "style")
	assert.Empty(t, p.doc.Mutations(), "journal is drained")
}

func TestInjectFailures(t *testing.T) {
	svc := newService(t)
	boom := errors.New("boom")

	high, err := svc.InjectIdentifiers(context.Background(), brokenPage{err: boom})
	assert.Equal(t, -1, high)
	assert.ErrorIs(t, err, boom)

	high, err = svc.InjectIdentifiers(context.Background(), nil)
	assert.Equal(t, -1, high)
	assert.ErrorIs(t, err, ErrNoPage)

	p := &recordingPage{markup: `<button>x</button>`, applyErr: boom}
	high, err = svc.InjectIdentifiers(context.Background(), p)
	assert.Equal(t, -1, high)
	assert.ErrorIs(t, err, boom)
}

func TestBuildTreeSentinelOnFailure(t *testing.T) {
	svc := newService(t)
	root := svc.BuildTree(context.Background(), brokenPage{err: errors.New("page crashed")}, tree.Options{})
	require.True(t, root.IsError())
	assert.Contains(t, root.Name, "page crashed")
	assert.Empty(t, root.Children)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	root = svc.BuildTree(ctx, htmlPage(t, buttonPage), tree.Options{})
	assert.True(t, root.IsError())
}

func TestBuildTreeBasicButton(t *testing.T) {
	svc := newService(t)
	root := svc.BuildTree(context.Background(), htmlPage(t, buttonPage), tree.Options{})
	require.False(t, root.IsError())
	require.Len(t, root.Children, 1)
	b := root.Children[0]
	assert.Equal(t, "button", b.Tag)
	require.NotNil(t, b.Attributes)
	assert.Equal(t, "HTML Button", b.Attributes.Category)
}

func TestGetFields(t *testing.T) {
	svc := newService(t)
	p := htmlPage(t, `<form><input type="text" required>
		<select><option>a</option><option selected>b</option><option>c</option></select></form>`)

	assert.Empty(t, svc.GetFields(context.Background(), p), "nothing injected yet")

	_, err := svc.InjectIdentifiers(context.Background(), p)
	require.NoError(t, err)
	got := svc.GetFields(context.Background(), p)
	require.Len(t, got, 2)
	assert.True(t, got["0"].Required)
	assert.Equal(t, "b", got["1"].Value)
	assert.Equal(t, []string{"a", "b", "c"}, got["1"].Options)

	assert.Empty(t, svc.GetFields(context.Background(), brokenPage{err: errors.New("x")}))
}

func TestCleanupRoundTrip(t *testing.T) {
	const markup = `<body><button style="border: 1px dotted blue">a</button><a href="/">b</a></body>`
	svc := newService(t)
	p := htmlPage(t, markup)
	var before bytes.Buffer
	require.NoError(t, p.Render(&before))

	high, err := svc.InjectIdentifiers(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 1, high)
	require.NoError(t, svc.CleanupIdentifiers(context.Background(), p))

	var after bytes.Buffer
	require.NoError(t, p.Render(&after))
	assert.Equal(t, before.String(), after.String())
	assert.Empty(t, p.Document().WithAttr(session.Attribute))

	require.NoError(t, svc.CleanupIdentifiers(context.Background(), p), "cleanup is idempotent")

	high, err = svc.InjectIdentifiers(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 3, high, "numbering continues after cleanup")
}

func TestHTMLPageApplyRejectsUnknownNodes(t *testing.T) {
	p := htmlPage(t, `<p>x</p>`)
	err := p.Apply(context.Background(), []dom.Mutation{{Node: 99, Name: "mmid", Value: "0"}})
	assert.ErrorIs(t, err, dom.ErrInvalidElement)

	var empty HTMLPage
	_, err = empty.Capture(context.Background())
	assert.ErrorIs(t, err, ErrNoPage)
}
