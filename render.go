package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
)

const lineNoWidth = 5 // "1234 " = 4 digits + space

// Button faces drawn on block header rows.
const (
	toggleShowFace = "[+]"
	toggleHideFace = "[-]"
	copyFace       = "[copy]"
)

// Render draws the screen
func Render(s *State) {
	screen := s.Screen
	screen.Clear()
	s.updateLayout()

	if s.OutlineOpen {
		drawOutline(s)
	}

	visible := s.Height - 1
	if s.SearchMode {
		visible-- // reserve one row for the search bar above the status bar
	}
	for i := 0; i < visible && s.Scroll+i < len(s.Lines); i++ {
		lineIdx := s.Scroll + i
		drawLine(s, i, s.Lines[lineIdx], lineIdx)
	}

	if s.SearchMode {
		drawSearchBar(s)
	}
	drawStatusBar(s)
	if s.ShowHelp {
		drawHelpOverlay(s)
	}
	if s.Alerts != nil && s.Alerts.Active() {
		drawAlert(s, s.Alerts.Current())
	}
	screen.Show()
}

// toggleSpan returns the [start, end) columns of the toggle button.
func toggleSpan(s *State) (int, int) {
	x := s.ContentX + s.LabelGutter
	return x, x + len(toggleShowFace)
}

// copySpan returns the [start, end) columns of the copy button. It sits at
// the right edge but never overlaps the toggle button.
func copySpan(s *State) (int, int) {
	end := s.ContentX + s.ContentWidth - 1
	start := end - len(copyFace)
	if _, tEnd := toggleSpan(s); start <= tEnd {
		start = tEnd + 1
	}
	return start, start + len(copyFace)
}

// copyButtonShown reports whether the copy button of block b is visible.
func copyButtonShown(s *State, b *CodeBlock) bool {
	btn, err := s.Doc.Registry.CopyButton(b.ID)
	return err == nil && btn.Display.Shown()
}

func drawLine(s *State, y int, line DisplayLine, lineIdx int) {
	rightEdge := s.ContentX + s.ContentWidth
	switch line.Kind {
	case LineHeader:
		drawHeader(s, y, line, lineIdx)
	case LineCode:
		drawCode(s, y, line, lineIdx)
	default:
		clearToEnd(s, s.Screen, s.ContentX, y, rightEdge)
	}
}

// drawHeader renders: label │ [+] caption #id ............ [copy]
func drawHeader(s *State, y int, line DisplayLine, lineIdx int) {
	screen := s.Screen
	b := s.Block(line.BlockIdx)
	if b == nil {
		return
	}
	rightEdge := s.ContentX + s.ContentWidth

	col := drawGutter(s, screen, s.ContentX, y, b.Label, s.maxLabelWidth())
	face := toggleShowFace
	if b.Code.Display.Shown() {
		face = toggleHideFace
	}
	col = drawText(screen, col, y, face, s.Theme.Button, rightEdge)
	col = drawText(screen, col, y, " ", s.Theme.Default, rightEdge)

	showCopy := copyButtonShown(s, b)
	copyStart, _ := copySpan(s)
	textEdge := rightEdge
	if showCopy {
		textEdge = copyStart - 1
	}
	col = drawTextWithHighlight(s, screen, col, y, line.Text, s.Theme.Caption, textEdge, lineIdx)
	if line.Text != b.ID {
		col = drawText(screen, col, y, " #"+b.ID, s.Theme.Dim, textEdge)
	}
	if showCopy {
		clearToEnd(s, screen, col, y, copyStart)
		col = drawText(screen, copyStart, y, copyFace, s.Theme.CopyButton, rightEdge)
	}
	clearToEnd(s, screen, col, y, rightEdge)
}

func drawCode(s *State, y int, line DisplayLine, lineIdx int) {
	screen := s.Screen
	b := s.Block(line.BlockIdx)
	if b == nil {
		return
	}
	rightEdge := s.ContentX + s.ContentWidth
	bg := s.Theme.Default.Background(s.Theme.CodeBg)

	col := drawGutter(s, screen, s.ContentX, y, "", s.maxLabelWidth())
	if s.LineNumbers {
		col = drawLineNo(s, screen, col, y, line.LineNo)
	}

	text := line.Text
	if !s.Wrap && s.ScrollX > 0 {
		runes := []rune(text)
		if s.ScrollX < len(runes) {
			text = string(runes[s.ScrollX:])
		} else {
			text = ""
		}
	}

	if s.SyntaxHighlight && s.HL != nil {
		col = drawSyntaxText(s, screen, col, y, text, b, rightEdge, lineIdx)
	} else {
		col = drawTextWithHighlight(s, screen, col, y, text, bg, rightEdge, lineIdx)
	}
	for col < rightEdge {
		screen.SetContent(col, y, ' ', nil, bg)
		col++
	}
}

// drawGutter draws the label gutter and returns the column after it.
func drawGutter(s *State, screen tcell.Screen, x, y int, label string, maxLabelWidth int) int {
	col := x
	for _, r := range label {
		screen.SetContent(col, y, r, nil, s.Theme.Label)
		col++
	}
	for i := len([]rune(label)); i < maxLabelWidth; i++ {
		screen.SetContent(col, y, ' ', nil, s.Theme.Dim)
		col++
	}
	// " │ " separator
	screen.SetContent(col, y, ' ', nil, s.Theme.Dim)
	col++
	screen.SetContent(col, y, '│', nil, s.Theme.Dim)
	col++
	screen.SetContent(col, y, ' ', nil, s.Theme.Dim)
	col++
	return col
}

// drawLineNo draws a line number (or blank) and returns the column position
func drawLineNo(s *State, screen tcell.Screen, col, y, num int) int {
	if num > 0 {
		for _, r := range fmt.Sprintf("%4d ", num) {
			screen.SetContent(col, y, r, nil, s.Theme.LineNo)
			col++
		}
		return col
	}
	for i := 0; i < lineNoWidth; i++ {
		screen.SetContent(col, y, ' ', nil, s.Theme.Default)
		col++
	}
	return col
}

// clearToEnd fills the rest of the line with spaces
func clearToEnd(s *State, screen tcell.Screen, col, y, width int) {
	for col < width {
		screen.SetContent(col, y, ' ', nil, s.Theme.Default)
		col++
	}
}

// searchHighlightStyle returns the highlight style for a search match.
func searchHighlightStyle(s *State, baseStyle tcell.Style, isCurrent bool) tcell.Style {
	if isCurrent {
		return s.Theme.SearchCur
	}
	return baseStyle.Reverse(true)
}

// isCurrentMatchLine returns true if lineIdx is the line of the current search match.
func isCurrentMatchLine(s *State, lineIdx int) bool {
	if s.SearchIdx < 0 || s.SearchIdx >= len(s.SearchMatches) {
		return false
	}
	return s.SearchMatches[s.SearchIdx] == lineIdx
}

// drawTextWithHighlight draws text, highlighting search query matches.
func drawTextWithHighlight(s *State, screen tcell.Screen, col, y int, text string, baseStyle tcell.Style, maxCol int, lineIdx int) int {
	mask := buildSearchMask(s, text)
	if mask == nil {
		return drawText(screen, col, y, text, baseStyle, maxCol)
	}
	hlStyle := searchHighlightStyle(s, baseStyle, isCurrentMatchLine(s, lineIdx))
	for i, r := range []rune(text) {
		if col >= maxCol {
			break
		}
		style := baseStyle
		if i < len(mask) && mask[i] {
			style = hlStyle
		}
		screen.SetContent(col, y, r, nil, style)
		col++
	}
	return col
}

// drawText draws text starting at col, returns final column
func drawText(screen tcell.Screen, col, y int, text string, style tcell.Style, maxCol int) int {
	for _, r := range text {
		if col >= maxCol {
			break
		}
		screen.SetContent(col, y, r, nil, style)
		col++
	}
	return col
}

// drawSyntaxText draws a highlighted code line on the code background, with
// search matches overlaid.
func drawSyntaxText(s *State, screen tcell.Screen, col, y int, text string, b *CodeBlock, maxCol int, lineIdx int) int {
	hlMask := buildSearchMask(s, text)
	isCurrent := isCurrentMatchLine(s, lineIdx)
	runePos := 0
	for _, span := range s.HL.Highlight(b.Language, b.Filename, text) {
		style := span.Style.Background(s.Theme.CodeBg)
		for _, r := range span.Text {
			if col >= maxCol {
				return col
			}
			drawStyle := style
			if runePos < len(hlMask) && hlMask[runePos] {
				drawStyle = searchHighlightStyle(s, style, isCurrent)
			}
			screen.SetContent(col, y, r, nil, drawStyle)
			col++
			runePos++
		}
	}
	return col
}

// buildSearchMask returns a boolean slice where true marks runes of text
// that are part of a case-insensitive search match.
func buildSearchMask(s *State, text string) []bool {
	if s.SearchQuery == "" || len(s.SearchMatches) == 0 {
		return nil
	}
	runes := []rune(strings.ToLower(text))
	queryRunes := []rune(strings.ToLower(s.SearchQuery))
	qLen := len(queryRunes)
	if qLen == 0 {
		return nil
	}
	mask := make([]bool, len(runes))
	for i := 0; i <= len(runes)-qLen; i++ {
		if string(runes[i:i+qLen]) == string(queryRunes) {
			for j := 0; j < qLen; j++ {
				mask[i+j] = true
			}
		}
	}
	return mask
}

// statusText builds the left part of the status bar.
func statusText(s *State) string {
	title, blocks := "snip", 0
	if s.Doc != nil {
		title = s.Doc.Title
		blocks = len(s.Doc.Blocks)
	}
	status := fmt.Sprintf(" snip %s • %d blocks • %d shown", title, blocks, s.ShownCount())
	if s.OutlineFocused {
		status += " [OUTLINE]"
	}
	if !s.PipeMode && !s.WatchEnabled {
		status += " [watch off]"
	}
	if s.InFlight > 0 {
		status += " [copying…]"
	}
	if len(s.SearchMatches) > 0 && s.SearchQuery != "" {
		if s.SearchIdx >= 0 && s.SearchIdx < len(s.SearchMatches) {
			status += fmt.Sprintf(" • \"%s\" [%d/%d]", s.SearchQuery, s.SearchIdx+1, len(s.SearchMatches))
		} else {
			status += fmt.Sprintf(" • \"%s\" [%d matches]", s.SearchQuery, len(s.SearchMatches))
		}
	}
	if pd := s.PendingDisplay(); pd != "" {
		status += fmt.Sprintf(" [%s…]", pd)
	}
	return status
}

func drawStatusBar(s *State) {
	y := s.Height - 1
	style := s.Theme.StatusBar
	var status string
	if s.FlashMsg != "" && time.Now().Before(s.FlashExpiry) {
		style = s.Theme.Flash
		status = " " + s.FlashMsg + " "
	} else {
		s.FlashMsg = ""
		status = statusText(s)
		help := "(t)oggle (y)ank (T/H) all (e)outline (/)search (?)help (q)uit"
		if s.OutlineFocused {
			help = "j/k:nav enter:toggle y:copy tab:blocks esc:back"
		}
		if pad := s.Width - len([]rune(status)) - len(help) - 1; pad > 0 {
			status += strings.Repeat(" ", pad) + help
		}
	}

	col := drawText(s.Screen, 0, y, status, style, s.Width)
	for col < s.Width {
		s.Screen.SetContent(col, y, ' ', nil, style)
		col++
	}
}

// drawBox draws a bordered box with a filled interior.
func drawBox(s *State, x0, y0, w, h int, border, fill tcell.Style) {
	screen := s.Screen
	for row := y0; row < y0+h && row < s.Height; row++ {
		for col := x0; col < x0+w && col < s.Width; col++ {
			r := ' '
			st := fill
			switch {
			case row == y0 && col == x0:
				r, st = '┌', border
			case row == y0 && col == x0+w-1:
				r, st = '┐', border
			case row == y0+h-1 && col == x0:
				r, st = '└', border
			case row == y0+h-1 && col == x0+w-1:
				r, st = '┘', border
			case row == y0 || row == y0+h-1:
				r, st = '─', border
			case col == x0 || col == x0+w-1:
				r, st = '│', border
			}
			screen.SetContent(col, row, r, nil, st)
		}
	}
}

// drawCentered draws text centered between x0 and x0+w on row y.
func drawCentered(s *State, x0, w, y int, text string, style tcell.Style) {
	if y < 0 || y >= s.Height {
		return
	}
	x := x0 + (w-len([]rune(text)))/2
	if x < x0+1 {
		x = x0 + 1
	}
	drawText(s.Screen, x, y, text, style, x0+w-1)
}

// helpLines is the body of the help overlay.
var helpLines = []string{
	"Navigation                    Blocks",
	"j/k     scroll up/down        t+label  toggle block",
	"d/u     half page down/up     y+label  copy block",
	"g/G     top/bottom            Space    toggle current",
	"^D/^U   half page             Y        copy current",
	"]/[     next/prev block       T/H      show/hide all",
	"                              click [+]/[-] toggle",
	"Display                       click [copy]  copy",
	"n       line numbers",
	"w       wrap                  Search",
	"h       syntax highlight      /   start search",
	"e       outline               n   next match",
	"W       watch mode            N   prev match",
	"                              Esc clear search",
	"o       open in $EDITOR",
	"?       help  q/Esc   quit",
}

func drawHelpOverlay(s *State) {
	const boxW = 60
	boxH := len(helpLines) + 6

	x0 := (s.Width - boxW) / 2
	y0 := (s.Height - boxH) / 2
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	drawBox(s, x0, y0, boxW, boxH, s.Theme.Dim, s.Theme.Default)
	drawCentered(s, x0, boxW, y0+1, "snip - keyboard shortcuts", s.Theme.Default.Bold(true))
	for i, line := range helpLines {
		if y := y0 + 3 + i; y < s.Height {
			drawText(s.Screen, x0+2, y, line, s.Theme.Default, x0+boxW-2)
		}
	}
	drawCentered(s, x0, boxW, y0+boxH-2, "press any key to close", s.Theme.Dim)
}

// drawAlert draws the modal notification box.
func drawAlert(s *State, msg string) {
	boxW := len([]rune(msg)) + 8
	if boxW < 32 {
		boxW = 32
	}
	if boxW > s.Width {
		boxW = s.Width
	}
	const boxH = 6
	x0 := (s.Width - boxW) / 2
	y0 := (s.Height - boxH) / 2
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	drawBox(s, x0, y0, boxW, boxH, s.Theme.AlertBorder, s.Theme.Default)
	drawCentered(s, x0, boxW, y0+2, msg, s.Theme.AlertText)
	drawCentered(s, x0, boxW, y0+4, "[ OK ]  Enter", s.Theme.Dim)
}
