package main

import (
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeKeyEvent creates a tcell key event for a rune.
func makeKeyEvent(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func makeSpecialKey(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func testClipboard(s *State) *fakeClipboard {
	return s.Handler.Clipboard.(*fakeClipboard)
}

func shown(t *testing.T, s *State, id string) bool {
	t.Helper()
	code, err := s.Doc.Registry.Code(id)
	require.NoError(t, err)
	return code.Display.Shown()
}

// manyBlocks returns one text per label plus one, so the last block gets a
// two-char label.
func manyBlocks() []string {
	texts := make([]string, len(availableLabels)+1)
	for i := range texts {
		texts[i] = "block " + indexToLabel(i)
	}
	return texts
}

func TestToggleByLabel(t *testing.T) {
	s := newTestState(t, "text a", "text b")

	HandleKey(s, makeKeyEvent('t'))
	HandleKey(s, makeKeyEvent('b'))

	assert.False(t, shown(t, s, "a"))
	assert.True(t, shown(t, s, "b"))
	assert.Equal(t, rune(0), s.PendingKey)
}

func TestCopyByLabel(t *testing.T) {
	s := newTestState(t, "text a", "text b")

	HandleKey(s, makeKeyEvent('y'))
	HandleKey(s, makeKeyEvent('b'))

	assert.Equal(t, 1, s.InFlight)
	require.Eventually(t, func() bool {
		return len(testClipboard(s).Writes()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"text b"}, testClipboard(s).Writes())
	assert.False(t, shown(t, s, "b"), "copy must not change display")
}

func TestUnknownLabelClearsPending(t *testing.T) {
	s := newTestState(t, "text a", "text b")

	HandleKey(s, makeKeyEvent('t'))
	HandleKey(s, makeKeyEvent('z'))

	assert.Equal(t, rune(0), s.PendingKey)
	assert.Equal(t, 0, s.ShownCount())
}

func TestToggleTwoCharLabel(t *testing.T) {
	s := newTestState(t, manyBlocks()...)
	last := s.Doc.Blocks[len(s.Doc.Blocks)-1]
	require.Len(t, last.Label, 2)

	HandleKey(s, makeKeyEvent('t'))
	HandleKey(s, makeKeyEvent(rune(last.Label[0])))
	assert.Equal(t, "t"+last.Label[:1], s.PendingDisplay())
	HandleKey(s, makeKeyEvent(rune(last.Label[1])))

	assert.True(t, last.Code.Display.Shown())
	assert.Equal(t, 1, s.ShownCount(), "only the two-char block should toggle")
	assert.Equal(t, rune(0), s.PendingKey)
}

func TestPendingDisplayEmpty(t *testing.T) {
	s := &State{}
	if got := s.PendingDisplay(); got != "" {
		t.Errorf("PendingDisplay() = %q, want empty", got)
	}
}

func TestPendingDisplayWithLabel(t *testing.T) {
	s := &State{PendingKey: 'y', PendingLabel: "c"}
	if got := s.PendingDisplay(); got != "yc" {
		t.Errorf("PendingDisplay() = %q, want %q", got, "yc")
	}
}

func TestResolvePendingLabel(t *testing.T) {
	s := newTestState(t, manyBlocks()...)
	single := s.Doc.Blocks[0]

	// ambiguous: the first label is also a prefix of the two-char label
	s.PendingKey = 't'
	s.PendingLabel = single.Label
	ResolvePendingLabel(s)

	assert.True(t, single.Code.Display.Shown())
	assert.Equal(t, rune(0), s.PendingKey)
	assert.Equal(t, "", s.PendingLabel)
}

func TestResolvePendingLabelNoop(t *testing.T) {
	s := newTestState(t, "x")
	ResolvePendingLabel(s)
	assert.Equal(t, 0, s.ShownCount())
	assert.Equal(t, "", s.FlashMsg)
}

func TestSpaceTogglesCurrentBlock(t *testing.T) {
	s := newTestState(t, "x", "y", "z")
	s.Height = 3
	s.JumpToNextBlock()

	HandleKey(s, makeKeyEvent(' '))

	assert.True(t, shown(t, s, "b"))
	assert.False(t, shown(t, s, "a"))
}

func TestCopyCurrentBlock(t *testing.T) {
	s := newTestState(t, "first", "second")

	HandleKey(s, makeKeyEvent('Y'))

	require.Eventually(t, func() bool {
		return len(testClipboard(s).Writes()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "first", testClipboard(s).Writes()[0])
}

func TestShowAndHideAll(t *testing.T) {
	s := newTestState(t, "x", "y")

	HandleKey(s, makeKeyEvent('T'))
	assert.Equal(t, 2, s.ShownCount())
	HandleKey(s, makeKeyEvent('H'))
	assert.Equal(t, 0, s.ShownCount())
}

func TestAlertSwallowsKeysUntilAcknowledged(t *testing.T) {
	s := newTestState(t, "x")
	s.Alerts.Alert(MsgCopied)

	assert.False(t, HandleKey(s, makeKeyEvent('q')), "q must not quit under an alert")
	assert.False(t, HandleKey(s, makeKeyEvent('t')))
	assert.Equal(t, rune(0), s.PendingKey)
	assert.True(t, s.Alerts.Active())

	assert.False(t, HandleKey(s, makeSpecialKey(tcell.KeyEscape)), "Esc acknowledges instead of quitting")
	assert.False(t, s.Alerts.Active())

	assert.True(t, HandleKey(s, makeKeyEvent('q')))
}

func TestAlertsAcknowledgedInOrder(t *testing.T) {
	s := newTestState(t, "x")
	s.Alerts.Alert(MsgCopied)
	s.Alerts.Alert(MsgCopyFailed)

	HandleKey(s, makeSpecialKey(tcell.KeyEnter))
	assert.Equal(t, MsgCopyFailed, s.Alerts.Current())
	HandleKey(s, makeKeyEvent(' '))
	assert.False(t, s.Alerts.Active())
	assert.Equal(t, 0, s.ShownCount(), "acknowledging must not toggle")
}

func TestFinishCopyReports(t *testing.T) {
	s := newTestState(t, "x")
	s.InFlight = 2

	finishCopy(s, CopyResult{ID: "a", Text: "x"})
	assert.Equal(t, 1, s.InFlight)
	assert.Equal(t, MsgCopied, s.Alerts.Current())

	s.Alerts.Ack()
	finishCopy(s, CopyResult{ID: "a", Err: &ClipboardError{ID: "a", Err: errors.New("denied")}})
	assert.Equal(t, 0, s.InFlight)
	assert.Equal(t, MsgCopyFailed, s.Alerts.Current())
}

func TestCopyFailureEndToEnd(t *testing.T) {
	s := newTestState(t, "x")
	testClipboard(s).err = errors.New("denied")

	p, err := s.Handler.Copy(CopyControl("a"))
	require.NoError(t, err)
	finishCopy(s, p.Result())

	assert.Equal(t, MsgCopyFailed, s.Alerts.Current())
	assert.Equal(t, 1, s.Alerts.Len())
}

func TestClickToggleButton(t *testing.T) {
	s := newTestState(t, "x", "y")
	start, end := toggleSpan(s)

	HandleClick(s, start, 0)
	assert.True(t, shown(t, s, "a"))

	HandleClick(s, end-1, 0)
	assert.False(t, shown(t, s, "a"))

	HandleClick(s, end+2, 0)
	assert.False(t, shown(t, s, "a"), "clicks on the caption do nothing")
}

func TestClickCopyButton(t *testing.T) {
	s := newTestState(t, "text a", "text b")
	start, _ := copySpan(s)

	HandleClick(s, start, 0)
	assert.Equal(t, 0, s.InFlight, "hidden copy button is not clickable")

	toggleBlock(s, "a")
	HandleClick(s, start, 0)
	assert.Equal(t, 1, s.InFlight)
	require.Eventually(t, func() bool {
		return len(testClipboard(s).Writes()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "text a", testClipboard(s).Writes()[0])
	assert.True(t, shown(t, s, "a"))
}

func TestDoubleClickOnCodeCopies(t *testing.T) {
	s := newTestState(t, "text a")
	toggleBlock(s, "a")
	lastClickTime = time.Time{}

	HandleClick(s, 10, 1)
	assert.Equal(t, 0, s.InFlight)
	HandleClick(s, 10, 1)
	assert.Equal(t, 1, s.InFlight)
}

func TestClickAcknowledgesAlert(t *testing.T) {
	s := newTestState(t, "x")
	s.Alerts.Alert(MsgCopied)
	start, _ := toggleSpan(s)

	HandleClick(s, start, 0)

	assert.False(t, s.Alerts.Active())
	assert.False(t, shown(t, s, "a"), "the acknowledging click must not reach the page")
}

func TestOutlineKeyToggles(t *testing.T) {
	s := newTestState(t, "x", "y")

	HandleKey(s, makeKeyEvent('e'))
	require.True(t, s.OutlineOpen)
	HandleKey(s, makeSpecialKey(tcell.KeyTab))
	require.True(t, s.OutlineFocused)

	HandleKey(s, makeKeyEvent('j'))
	HandleKey(s, makeSpecialKey(tcell.KeyEnter))
	assert.True(t, shown(t, s, "b"))

	HandleKey(s, makeSpecialKey(tcell.KeyEscape))
	assert.False(t, s.OutlineFocused)
	assert.True(t, s.OutlineOpen)
}
