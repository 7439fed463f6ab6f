package main

import (
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
)

// State holds the application state
type State struct {
	Doc     *Document
	Handler *Handler
	Alerts  *AlertQueue
	Log     *Logger

	Screen       tcell.Screen
	Width        int
	Height       int
	Scroll       int
	ScrollX      int
	Lines        []DisplayLine
	PendingKey   rune
	PendingLabel string // accumulated label chars for multi-char labels
	PendingTime  time.Time
	PipeMode     bool
	LineNumbers  bool
	Wrap         bool
	WatchEnabled bool
	InFlight     int // clipboard writes not yet settled

	Theme UITheme

	SyntaxHighlight bool
	HL              *Highlighter

	SearchMode    bool   // true when typing a search query
	SearchQuery   string // current search text
	SearchMatches []int  // line indices that match
	SearchIdx     int    // current match index (-1 if none)

	OutlineOpen    bool
	OutlineFocused bool
	OutlineCursor  int
	OutlineScroll  int

	ContentX     int // starting column for blocks (after the outline)
	ContentWidth int
	LabelGutter  int // max label chars + 3 (" │ ")

	blockStart []int // header line index per block

	ShowHelp    bool
	FlashMsg    string
	FlashExpiry time.Time
}

// LineKind classifies a display line.
type LineKind int

const (
	LineBlank LineKind = iota
	LineHeader
	LineCode
)

// DisplayLine represents a rendered line
type DisplayLine struct {
	Text         string
	Kind         LineKind
	BlockIdx     int  // -1 for blank separators
	LineNo       int  // source line number (0 = none)
	Continuation bool // wrapped continuation of previous line
}

// Block returns the laid-out block at index i, or nil.
func (s *State) Block(i int) *CodeBlock {
	if s.Doc == nil || i < 0 || i >= len(s.Doc.Blocks) {
		return nil
	}
	return s.Doc.Blocks[i]
}

// updateLayout computes ContentX and ContentWidth based on the outline.
func (s *State) updateLayout() {
	if s.OutlineOpen {
		s.ContentX = outlineWidth + 1 // +1 for divider
		s.ContentWidth = s.Width - outlineWidth - 1
	} else {
		s.ContentX = 0
		s.ContentWidth = s.Width
	}
	if s.ContentWidth < 1 {
		s.ContentWidth = 1
	}
}

// maxLabelWidth returns the width of the widest block label, at least 1.
func (s *State) maxLabelWidth() int {
	maxW := 1
	if s.Doc == nil {
		return maxW
	}
	for _, b := range s.Doc.Blocks {
		if w := len([]rune(b.Label)); w > maxW {
			maxW = w
		}
	}
	return maxW
}

// BuildLines lays out every block: a header row, then its code while the
// block is shown.
func (s *State) BuildLines() {
	s.updateLayout()
	s.LabelGutter = s.maxLabelWidth() + 3

	var lines []DisplayLine
	var starts []int
	if s.Doc != nil {
		starts = make([]int, len(s.Doc.Blocks))
		for i, b := range s.Doc.Blocks {
			if i > 0 {
				lines = append(lines, DisplayLine{Kind: LineBlank, BlockIdx: -1})
			}
			starts[i] = len(lines)
			lines = append(lines, DisplayLine{Text: b.Caption, Kind: LineHeader, BlockIdx: i})
			if !b.Code.Display.Shown() {
				continue
			}
			for j, text := range strings.Split(b.Code.Text, "\n") {
				ln := 0
				if b.Line > 0 {
					ln = b.Line + j
				}
				lines = append(lines, DisplayLine{Text: text, Kind: LineCode, BlockIdx: i, LineNo: ln})
			}
		}
	}
	s.Lines = lines
	s.blockStart = starts
	if s.Wrap {
		s.wrapLines()
	}
	// Refresh search matches since line indices changed
	if s.SearchQuery != "" {
		UpdateMatches(s)
	}
}

// textWidth returns the available character width for code text.
func (s *State) textWidth() int {
	w := s.ContentWidth - s.LabelGutter
	if s.LineNumbers {
		w -= lineNoWidth
	}
	if w < 1 {
		w = 1
	}
	return w
}

// wrapLines splits long code lines into continuation DisplayLines.
func (s *State) wrapLines() {
	tw := s.textWidth()
	var wrapped []DisplayLine
	for _, line := range s.Lines {
		if line.Kind != LineCode {
			if line.Kind == LineHeader {
				s.blockStart[line.BlockIdx] = len(wrapped)
			}
			wrapped = append(wrapped, line)
			continue
		}
		runes := []rune(line.Text)
		if len(runes) <= tw {
			wrapped = append(wrapped, line)
			continue
		}
		first := line
		first.Text = string(runes[:tw])
		wrapped = append(wrapped, first)
		runes = runes[tw:]
		for len(runes) > 0 {
			end := tw
			if end > len(runes) {
				end = len(runes)
			}
			wrapped = append(wrapped, DisplayLine{
				Text:         string(runes[:end]),
				Kind:         LineCode,
				BlockIdx:     line.BlockIdx,
				Continuation: true,
			})
			runes = runes[end:]
		}
	}
	s.Lines = wrapped
}

// BlockStart returns the header line index of block i, or -1.
func (s *State) BlockStart(i int) int {
	if i < 0 || i >= len(s.blockStart) {
		return -1
	}
	return s.blockStart[i]
}

// ClampScroll keeps Scroll within the content.
func (s *State) ClampScroll() {
	if s.Scroll > s.MaxScroll() {
		s.Scroll = s.MaxScroll()
	}
	if s.Scroll < 0 {
		s.Scroll = 0
	}
}

// MaxScroll is the largest useful scroll offset.
func (s *State) MaxScroll() int {
	visible := s.Height - 1
	m := len(s.Lines) - visible
	if m < 0 {
		return 0
	}
	return m
}

func (s *State) ScrollBy(delta int) {
	s.Scroll += delta
	s.ClampScroll()
}

func (s *State) ScrollTo(pos int) {
	s.Scroll = pos
	s.ClampScroll()
}

// hasLabelPrefix reports whether any block label is longer than prefix and
// starts with it.
func (s *State) hasLabelPrefix(prefix string) bool {
	if s.Doc == nil {
		return false
	}
	for _, b := range s.Doc.Blocks {
		if len(b.Label) > len(prefix) && strings.HasPrefix(b.Label, prefix) {
			return true
		}
	}
	return false
}

// blockByLabel is a nil-safe label lookup.
func (s *State) blockByLabel(label string) *CodeBlock {
	if s.Doc == nil {
		return nil
	}
	return s.Doc.BlockByLabel(label)
}

// PendingDisplay shows the pending key sequence in the status bar.
func (s *State) PendingDisplay() string {
	if s.PendingKey == 0 {
		return ""
	}
	return string(s.PendingKey) + s.PendingLabel
}

// CurrentBlockIndex returns the block at the top of the viewport. A blank
// separator belongs to the block below it.
func (s *State) CurrentBlockIndex() int {
	if len(s.Lines) == 0 {
		return -1
	}
	for i := s.Scroll; i < len(s.Lines); i++ {
		if i >= 0 && s.Lines[i].BlockIdx >= 0 {
			return s.Lines[i].BlockIdx
		}
	}
	return -1
}

// CurrentLineNo returns the source line for the top of the viewport.
func (s *State) CurrentLineNo() int {
	idx := s.CurrentBlockIndex()
	b := s.Block(idx)
	if b == nil {
		return 0
	}
	for i := s.Scroll; i < len(s.Lines) && s.Lines[i].BlockIdx == idx; i++ {
		if s.Lines[i].LineNo > 0 {
			return s.Lines[i].LineNo
		}
	}
	return b.Line
}

// JumpToNextBlock scrolls to the next block header.
func (s *State) JumpToNextBlock() {
	for _, start := range s.blockStart {
		if start > s.Scroll {
			s.ScrollTo(start)
			return
		}
	}
}

// JumpToPrevBlock scrolls to the previous block header.
func (s *State) JumpToPrevBlock() {
	for i := len(s.blockStart) - 1; i >= 0; i-- {
		if s.blockStart[i] < s.Scroll {
			s.ScrollTo(s.blockStart[i])
			return
		}
	}
}

// ShownCount returns how many blocks are currently shown.
func (s *State) ShownCount() int {
	if s.Doc == nil {
		return 0
	}
	n := 0
	for _, b := range s.Doc.Blocks {
		if b.Code.Display.Shown() {
			n++
		}
	}
	return n
}

// Flash shows msg in the status bar for d.
func (s *State) Flash(msg string, d time.Duration) {
	s.FlashMsg = msg
	s.FlashExpiry = time.Now().Add(d)
}
