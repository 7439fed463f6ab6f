package main

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func fileState(t *testing.T, body string) (*State, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	doc, err := LoadDocument(path, nil)
	require.NoError(t, err)

	alerts := &AlertQueue{}
	s := &State{
		Doc:       doc,
		Handler:   NewHandler(doc.Registry, &fakeClipboard{}, alerts, nil),
		Alerts:    alerts,
		Log:       NopLogger(),
		Width:     80,
		Height:    24,
		SearchIdx: -1,
		Theme:     NewUITheme(defaultTheme),
	}
	s.BuildLines()
	return s, path
}

func TestReloadKeepsDisplayByID(t *testing.T) {
	s, path := fileState(t, "```go id=one\na\n```\n\n```go id=two\nb\n```\n")
	toggleBlock(s, "two")

	body := "```go id=zero\nz\n```\n\n```go id=two\nb changed\n```\n\n```go id=one\na\n```\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	reloadDocument(s)

	require.Len(t, s.Doc.Blocks, 3)
	assert.Same(t, s.Doc.Registry, s.Handler.Registry)
	two := s.Doc.BlockByID("two")
	require.NotNil(t, two)
	assert.True(t, two.Code.Display.Shown())
	assert.Equal(t, "b changed", two.Code.Text)
	assert.False(t, s.Doc.BlockByID("one").Code.Display.Shown())
	assert.False(t, s.Doc.BlockByID("zero").Code.Display.Shown())

	// the handler acts on the new registry
	require.NoError(t, s.Handler.Toggle(ToggleControl("zero")))
	assert.True(t, s.Doc.BlockByID("zero").Code.Display.Shown())
}

func TestReloadFailureKeepsDocument(t *testing.T) {
	s, path := fileState(t, "```go id=one\na\n```\n")
	require.NoError(t, os.Remove(path))

	old := s.Doc
	reloadDocument(s)

	assert.Same(t, old, s.Doc)
	assert.Contains(t, s.FlashMsg, "Reload failed")
}

func TestReloadSkipsStdin(t *testing.T) {
	s := newTestState(t, "x")
	old := s.Doc
	reloadDocument(s)
	assert.Same(t, old, s.Doc)
}

func TestToggleUnknownBlockFlashes(t *testing.T) {
	s := newTestState(t, "x")
	toggleBlock(s, "missing")
	assert.Equal(t, `Block "missing" not found`, s.FlashMsg)

	copyBlock(s, "missing")
	assert.Equal(t, 0, s.InFlight)
}

func TestEditorArgs(t *testing.T) {
	assert.Equal(t, []string{"+12", "doc.md"}, editorArgs("doc.md", 12))
	assert.Equal(t, []string{"doc.md"}, editorArgs("doc.md", 0))
}

func TestEditorCommand(t *testing.T) {
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")
	assert.Equal(t, "vi", editorCommand())
	t.Setenv("VISUAL", "code -w")
	assert.Equal(t, "code -w", editorCommand())
	t.Setenv("EDITOR", "nvim")
	assert.Equal(t, "nvim", editorCommand())
}

// busyScreen rejects the first posts as if the event queue were full.
type busyScreen struct {
	tcell.Screen
	mu     sync.Mutex
	busy   int
	posted []tcell.Event
}

func (b *busyScreen) PostEvent(ev tcell.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.busy > 0 {
		b.busy--
		return tcell.ErrEventQFull
	}
	b.posted = append(b.posted, ev)
	return nil
}

func TestAwaitCopyRetriesFullQueue(t *testing.T) {
	s := newTestState(t, "text a")
	p, err := s.Handler.Copy(CopyControl("a"))
	require.NoError(t, err)

	core, logs := observer.New(zapcore.InfoLevel)
	screen := &busyScreen{busy: 3}
	awaitCopy(screen, p, &Logger{SugaredLogger: zap.New(core).Sugar()})

	require.Len(t, screen.posted, 1)
	done, ok := screen.posted[0].(*EventCopyDone)
	require.True(t, ok)
	assert.Equal(t, "a", done.Result.ID)
	assert.True(t, done.Result.OK())
	assert.Equal(t, 1, logs.FilterMessage("copy result not posted, retrying").Len())
	assert.Equal(t, 1, logs.FilterMessage("copy result posted").Len())
}

func TestAwaitCopyWithoutScreen(t *testing.T) {
	s := newTestState(t, "text a")
	p, err := s.Handler.Copy(CopyControl("a"))
	require.NoError(t, err)

	assert.NotPanics(t, func() { awaitCopy(nil, p, NopLogger()) })
}
