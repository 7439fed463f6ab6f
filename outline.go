package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

const outlineWidth = 30

// ClampOutlineCursor keeps OutlineCursor within the block list.
func (s *State) ClampOutlineCursor() {
	n := 0
	if s.Doc != nil {
		n = len(s.Doc.Blocks)
	}
	if s.OutlineCursor >= n {
		s.OutlineCursor = n - 1
	}
	if s.OutlineCursor < 0 {
		s.OutlineCursor = 0
	}
}

// OutlineBlock returns the block under the outline cursor, or nil.
func (s *State) OutlineBlock() *CodeBlock {
	s.ClampOutlineCursor()
	return s.Block(s.OutlineCursor)
}

// InitOutlineCursorFromScroll puts the cursor on the block at the top of
// the viewport.
func (s *State) InitOutlineCursorFromScroll() {
	s.OutlineCursor = s.CurrentBlockIndex()
	s.ClampOutlineCursor()
}

// ClampOutlineScroll ensures outline scroll is within valid bounds.
func (s *State) ClampOutlineScroll() {
	maxVisible := s.Height - 3 // header + separator + status bar
	total := 0
	if s.Doc != nil {
		total = len(s.Doc.Blocks)
	}
	if total <= maxVisible {
		s.OutlineScroll = 0
		return
	}
	if s.OutlineScroll < 0 {
		s.OutlineScroll = 0
	}
	if maxScroll := total - maxVisible; s.OutlineScroll > maxScroll {
		s.OutlineScroll = maxScroll
	}
}

// EnsureOutlineCursorVisible scrolls the outline so the cursor is visible.
func (s *State) EnsureOutlineCursorVisible() {
	maxVisible := s.Height - 3
	if maxVisible < 1 {
		maxVisible = 1
	}
	if s.OutlineCursor < s.OutlineScroll {
		s.OutlineScroll = s.OutlineCursor
	} else if s.OutlineCursor >= s.OutlineScroll+maxVisible {
		s.OutlineScroll = s.OutlineCursor - maxVisible + 1
	}
	s.ClampOutlineScroll()
}

func outlineMoveCursor(s *State, delta int) {
	s.OutlineCursor += delta
	s.ClampOutlineCursor()
	s.EnsureOutlineCursorVisible()
	if start := s.BlockStart(s.OutlineCursor); start >= 0 {
		s.ScrollTo(start)
	}
}

// handleOutlineKey handles keys when the outline sidebar is focused.
func handleOutlineKey(s *State, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyTab, tcell.KeyBacktab:
		s.OutlineFocused = false
	case tcell.KeyEnter:
		if b := s.OutlineBlock(); b != nil {
			toggleBlock(s, b.ID)
		}
	case tcell.KeyUp:
		outlineMoveCursor(s, -1)
	case tcell.KeyDown:
		outlineMoveCursor(s, 1)
	case tcell.KeyRune:
		return handleOutlineRune(s, ev.Rune())
	}
	return false
}

func handleOutlineRune(s *State, r rune) bool {
	switch r {
	case 'q':
		return true
	case 'j':
		outlineMoveCursor(s, 1)
	case 'k':
		outlineMoveCursor(s, -1)
	case ' ':
		if b := s.OutlineBlock(); b != nil {
			toggleBlock(s, b.ID)
		}
	case 'y':
		if b := s.OutlineBlock(); b != nil {
			copyBlock(s, b.ID)
		}
	case 'g':
		outlineMoveCursor(s, -s.OutlineCursor)
	case 'G':
		if s.Doc != nil {
			outlineMoveCursor(s, len(s.Doc.Blocks))
		}
	case 'e':
		s.OutlineOpen = false
		s.OutlineFocused = false
		s.BuildLines()
		s.ClampScroll()
	}
	return false
}

// handleOutlineClick selects and toggles the block on the clicked row.
func handleOutlineClick(s *State, y int) {
	// header is row 0, separator row 1, entries start at row 2
	idx := s.OutlineScroll + (y - 2)
	b := s.Block(idx)
	if b == nil {
		return
	}
	s.OutlineCursor = idx
	toggleBlock(s, b.ID)
}

// drawOutline renders the block list sidebar.
func drawOutline(s *State) {
	screen := s.Screen
	ow := outlineWidth
	var blocks []*CodeBlock
	if s.Doc != nil {
		blocks = s.Doc.Blocks
	}
	current := s.CurrentBlockIndex()

	borderStyle := s.Theme.Dim
	headerStyle := s.Theme.Caption
	if s.OutlineFocused {
		borderStyle = tcell.StyleDefault.Foreground(s.Theme.Accent)
		headerStyle = tcell.StyleDefault.Bold(true).Foreground(s.Theme.Accent)
	}

	col := drawText(screen, 0, 0, fmt.Sprintf(" Blocks (%d)", len(blocks)), headerStyle, ow)
	clearToEnd(s, screen, col, 0, ow)
	for x := 0; x < ow; x++ {
		screen.SetContent(x, 1, '─', nil, borderStyle)
	}

	s.ClampOutlineScroll()
	for y := 2; y < s.Height-1; y++ {
		idx := s.OutlineScroll + y - 2
		if idx >= len(blocks) {
			clearToEnd(s, screen, 0, y, ow)
			continue
		}
		drawOutlineEntry(s, y, blocks[idx], idx == s.OutlineCursor && s.OutlineFocused, idx == current)
	}

	// Vertical divider
	for y := 0; y < s.Height-1; y++ {
		screen.SetContent(ow, y, '│', nil, borderStyle)
	}
}

// drawOutlineEntry draws "▸ a ▾ caption" for one block.
func drawOutlineEntry(s *State, y int, b *CodeBlock, isCursor, isCurrent bool) {
	screen := s.Screen
	rowBg := s.Theme.Default
	if isCursor {
		rowBg = tcell.StyleDefault.Reverse(true)
	}

	indicator := " "
	if isCurrent {
		indicator = "▸"
	}
	col := drawText(screen, 0, y, indicator, rowBg.Foreground(s.Theme.Highlight), outlineWidth)
	col = drawText(screen, col, y, b.Label, rowBg.Foreground(s.Theme.Highlight).Bold(true), outlineWidth)
	col = drawText(screen, col, y, " ", rowBg, outlineWidth)

	state, stateStyle := "▸", rowBg.Dim(true)
	if b.Code.Display.Shown() {
		state, stateStyle = "▾", rowBg.Foreground(s.Theme.Accent)
	}
	col = drawText(screen, col, y, state+" ", stateStyle, outlineWidth)

	name := []rune(b.Caption)
	if len(name) == 0 {
		name = []rune(b.ID)
	}
	if room := outlineWidth - col; room > 0 && len(name) > room {
		name = append(name[:room-1], '…')
	}
	nameStyle := rowBg
	if isCurrent {
		nameStyle = rowBg.Bold(true)
	}
	col = drawText(screen, col, y, string(name), nameStyle, outlineWidth)
	for col < outlineWidth {
		screen.SetContent(col, y, ' ', nil, rowBg)
		col++
	}
}
