package main

import (
	"time"

	"github.com/gdamore/tcell/v2"
)

// Double-click detection state
var (
	lastClickTime time.Time
	lastClickY    int
)

// labelTimeout is the duration to wait before auto-resolving an ambiguous
// single-char label that is also a prefix of longer labels.
const labelTimeout = 500 * time.Millisecond

// labelTimer fires to auto-resolve an ambiguous pending label.
var labelTimer *time.Timer

// HandleKey processes a key event, returns true if should quit
func HandleKey(s *State, ev *tcell.EventKey) bool {
	// A notification swallows input until acknowledged
	if s.Alerts != nil && s.Alerts.Active() {
		switch ev.Key() {
		case tcell.KeyEnter, tcell.KeyEscape:
			s.Alerts.Ack()
		case tcell.KeyRune:
			if ev.Rune() == ' ' {
				s.Alerts.Ack()
			}
		}
		return false
	}

	if s.ShowHelp {
		s.ShowHelp = false
		return false
	}
	if s.SearchMode {
		return HandleSearchKey(s, ev)
	}
	if s.OutlineFocused {
		return handleOutlineKey(s, ev)
	}
	if s.PendingKey != 0 {
		return handlePending(s, ev)
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		if len(s.SearchMatches) > 0 {
			ClearSearch(s)
			return false
		}
		return true
	case tcell.KeyTab:
		if s.OutlineOpen {
			s.OutlineFocused = true
			s.InitOutlineCursorFromScroll()
			s.EnsureOutlineCursorVisible()
		} else {
			s.JumpToNextBlock()
		}
	case tcell.KeyBacktab:
		s.JumpToPrevBlock()
	case tcell.KeyEnter:
		toggleCurrent(s)
	case tcell.KeyUp:
		s.ScrollBy(-1)
	case tcell.KeyDown:
		s.ScrollBy(1)
	case tcell.KeyLeft:
		if !s.Wrap {
			s.ScrollX -= 4
			if s.ScrollX < 0 {
				s.ScrollX = 0
			}
		}
	case tcell.KeyRight:
		if !s.Wrap {
			s.ScrollX += 4
		}
	case tcell.KeyCtrlD:
		s.ScrollBy(s.Height / 2)
	case tcell.KeyCtrlU:
		s.ScrollBy(-s.Height / 2)
	case tcell.KeyRune:
		return handleRune(s, ev.Rune())
	}
	return false
}

func handleRune(s *State, r rune) bool {
	switch r {
	case 'q':
		return true
	case 'j':
		s.ScrollBy(1)
	case 'k':
		s.ScrollBy(-1)
	case 'd':
		s.ScrollBy(s.Height / 2)
	case 'u':
		s.ScrollBy(-s.Height / 2)
	case 'g':
		s.ScrollTo(0)
	case 'G':
		s.ScrollTo(s.MaxScroll())
	case ']':
		s.JumpToNextBlock()
	case '[':
		s.JumpToPrevBlock()
	case ' ':
		toggleCurrent(s)
	case 'Y':
		if b := s.Block(s.CurrentBlockIndex()); b != nil {
			copyBlock(s, b.ID)
		}
	case 'T':
		setAllShown(s, true)
	case 'H':
		setAllShown(s, false)
	case 'n':
		if len(s.SearchMatches) > 0 {
			JumpToNextMatch(s)
		} else {
			s.LineNumbers = !s.LineNumbers
			s.BuildLines()
			s.ClampScroll()
		}
	case 'N':
		JumpToPrevMatch(s)
	case 'w':
		s.Wrap = !s.Wrap
		if s.Wrap {
			s.ScrollX = 0
		}
		s.BuildLines()
		s.ClampScroll()
	case 'e':
		s.OutlineOpen = !s.OutlineOpen
		if !s.OutlineOpen {
			s.OutlineFocused = false
		}
		s.BuildLines()
		s.ClampScroll()
	case 'h':
		s.SyntaxHighlight = !s.SyntaxHighlight
	case '/':
		StartSearch(s)
	case '?':
		s.ShowHelp = true
	case 'o':
		if s.Doc != nil && s.Doc.Path != "" {
			openInEditor(s, s.Doc.Path, s.CurrentLineNo())
			reloadDocument(s)
		}
	case 'W':
		if !s.PipeMode {
			s.WatchEnabled = !s.WatchEnabled
			if s.WatchEnabled {
				s.Flash("Watch mode enabled", 2*time.Second)
			} else {
				s.Flash("Watch mode disabled", 2*time.Second)
			}
		}
	case 't', 'y':
		s.PendingKey = r
	}
	return false
}

// toggleCurrent toggles the block at the top of the viewport.
func toggleCurrent(s *State) {
	if b := s.Block(s.CurrentBlockIndex()); b != nil {
		toggleBlock(s, b.ID)
	}
}

// runPending applies a label command to a block.
func runPending(s *State, cmd rune, b *CodeBlock) {
	switch cmd {
	case 't':
		toggleBlock(s, b.ID)
	case 'y':
		copyBlock(s, b.ID)
	}
}

func clearPending(s *State) {
	s.PendingKey = 0
	s.PendingLabel = ""
	cancelLabelTimer()
}

func handlePending(s *State, ev *tcell.EventKey) bool {
	pending := s.PendingKey
	if ev.Key() != tcell.KeyRune {
		clearPending(s)
		return false
	}

	candidate := s.PendingLabel + string(ev.Rune())
	// Exact match with no longer labels: run immediately
	if b := s.blockByLabel(candidate); b != nil && !s.hasLabelPrefix(candidate) {
		clearPending(s)
		runPending(s, pending, b)
		return false
	}
	// Prefix of longer labels: accumulate and let the timer resolve it
	if s.hasLabelPrefix(candidate) || s.blockByLabel(candidate) != nil {
		s.PendingLabel = candidate
		s.PendingTime = time.Now()
		startLabelTimer(s)
		return false
	}
	// No match: fall back to what was accumulated so far
	if s.PendingLabel != "" {
		if b := s.blockByLabel(s.PendingLabel); b != nil {
			clearPending(s)
			runPending(s, pending, b)
			return false
		}
	}
	clearPending(s)
	return false
}

// HandleClick handles a left click. Clicks on the outline select a block;
// clicks on a header's buttons toggle or copy; a double click on code
// copies its block.
func HandleClick(s *State, x, y int) {
	if s.Alerts != nil && s.Alerts.Active() {
		s.Alerts.Ack()
		return
	}
	if s.ShowHelp {
		s.ShowHelp = false
		return
	}
	if s.OutlineOpen && x < outlineWidth {
		handleOutlineClick(s, y)
		return
	}
	if y >= s.Height-1 {
		return
	}

	now := time.Now()
	isDouble := now.Sub(lastClickTime) < 400*time.Millisecond && y == lastClickY
	lastClickTime = now
	lastClickY = y

	lineIdx := s.Scroll + y
	if lineIdx < 0 || lineIdx >= len(s.Lines) {
		return
	}
	line := s.Lines[lineIdx]
	b := s.Block(line.BlockIdx)
	if b == nil {
		return
	}

	switch line.Kind {
	case LineHeader:
		if tStart, tEnd := toggleSpan(s); x >= tStart && x < tEnd {
			toggleBlock(s, b.ID)
			return
		}
		if cStart, cEnd := copySpan(s); x >= cStart && x < cEnd && copyButtonShown(s, b) {
			copyBlock(s, b.ID)
		}
	case LineCode:
		if isDouble {
			copyBlock(s, b.ID)
		}
	}
}

// EventLabelTimeout is posted by the label timer to auto-resolve ambiguous labels.
type EventLabelTimeout struct {
	t time.Time
}

func (e *EventLabelTimeout) When() time.Time { return e.t }

// ResolvePendingLabel auto-resolves an ambiguous pending label on timeout.
func ResolvePendingLabel(s *State) {
	if s.PendingKey == 0 || s.PendingLabel == "" {
		return
	}
	cmd := s.PendingKey
	b := s.blockByLabel(s.PendingLabel)
	s.PendingKey = 0
	s.PendingLabel = ""
	if b != nil {
		runPending(s, cmd, b)
	}
}

// cancelLabelTimer stops any pending label timeout.
func cancelLabelTimer() {
	if labelTimer != nil {
		labelTimer.Stop()
		labelTimer = nil
	}
}

// startLabelTimer starts a timer that posts EventLabelTimeout after labelTimeout.
func startLabelTimer(s *State) {
	cancelLabelTimer()
	labelTimer = time.AfterFunc(labelTimeout, func() {
		if s.Screen != nil {
			_ = s.Screen.PostEvent(&EventLabelTimeout{t: time.Now()})
		}
	})
}
