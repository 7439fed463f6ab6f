package main

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Search runs over the laid-out page: block captions and the code of shown
// blocks. Collapsed code has no lines, so expanding a block is what makes
// its code searchable. Matches are indices into s.Lines and are recomputed
// whenever the layout changes.

func resetSearch(s *State, typing bool) {
	s.SearchMode = typing
	s.SearchQuery = ""
	s.SearchMatches = nil
	s.SearchIdx = -1
}

// StartSearch opens the query bar with an empty query.
func StartSearch(s *State) { resetSearch(s, true) }

// EndSearch closes the query bar. The matches stay highlighted and n/N keep
// cycling through them.
func EndSearch(s *State) {
	s.SearchMode = false
}

// ClearSearch drops the query and its highlights.
func ClearSearch(s *State) { resetSearch(s, false) }

// HandleSearchKey edits the query while the bar is open. Matches follow
// every edit; Enter jumps to the first one and closes the bar, Esc abandons
// the search. It never asks the main loop to quit.
func HandleSearchKey(s *State, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		ClearSearch(s)
	case tcell.KeyEnter:
		UpdateMatches(s)
		if len(s.SearchMatches) > 0 {
			s.SearchIdx = 0
			s.ScrollTo(s.SearchMatches[0])
		}
		EndSearch(s)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		q := []rune(s.SearchQuery)
		if len(q) == 0 {
			break
		}
		s.SearchQuery = string(q[:len(q)-1])
		UpdateMatches(s)
	case tcell.KeyRune:
		s.SearchQuery += string(ev.Rune())
		UpdateMatches(s)
	}
	return false
}

// matchingLines returns the indices of caption and code lines containing
// query, ignoring case. Spacer rows between blocks never match.
func matchingLines(lines []DisplayLine, query string) []int {
	if query == "" {
		return nil
	}
	query = strings.ToLower(query)
	var idx []int
	for i, line := range lines {
		if line.Kind == LineBlank {
			continue
		}
		if strings.Contains(strings.ToLower(line.Text), query) {
			idx = append(idx, i)
		}
	}
	return idx
}

// UpdateMatches recomputes the matches for the current query and forgets
// the selected one.
func UpdateMatches(s *State) {
	s.SearchMatches = matchingLines(s.Lines, s.SearchQuery)
	s.SearchIdx = -1
}

// stepMatch moves the selection by delta, wrapping at either end, and
// scrolls the selected line to the top.
func stepMatch(s *State, delta int) {
	n := len(s.SearchMatches)
	if n == 0 {
		return
	}
	i := s.SearchIdx + delta
	switch {
	case i >= n:
		i = 0
	case i < 0:
		i = n - 1
	}
	s.SearchIdx = i
	s.ScrollTo(s.SearchMatches[s.SearchIdx])
}

func JumpToNextMatch(s *State) { stepMatch(s, 1) }

func JumpToPrevMatch(s *State) { stepMatch(s, -1) }

// drawSearchBar draws "/query" and a cursor on the row above the status bar.
func drawSearchBar(s *State) {
	y := max(s.Height-2, 0)
	col := drawText(s.Screen, 0, y, "/"+s.SearchQuery, s.Theme.Caption, s.Width-1)
	if col < s.Width {
		s.Screen.SetContent(col, y, ' ', nil, tcell.StyleDefault.Reverse(true))
		col++
	}
	for ; col < s.Width; col++ {
		s.Screen.SetContent(col, y, ' ', nil, s.Theme.Default)
	}
}
