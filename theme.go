package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gdamore/tcell/v2"
)

const defaultTheme = "monokai"

// UITheme holds all colors and styles derived from a chroma theme.
type UITheme struct {
	Accent    tcell.Color // from Keyword token
	Highlight tcell.Color // from String token
	CodeBg    tcell.Color // subtle tint behind shown code

	Default     tcell.Style
	Dim         tcell.Style
	Caption     tcell.Style
	Button      tcell.Style // [+] / [-]
	CopyButton  tcell.Style
	Label       tcell.Style
	LineNo      tcell.Style
	StatusBar   tcell.Style
	SearchCur   tcell.Style
	Flash       tcell.Style
	AlertBorder tcell.Style
	AlertText   tcell.Style
}

// knownStyle returns true if name is a registered chroma style.
func knownStyle(name string) bool {
	for _, n := range styles.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// NewUITheme builds a UITheme from the named chroma style, falling back to
// monokai for unknown names.
func NewUITheme(name string) UITheme {
	cs := styles.Get(name)
	if !knownStyle(name) {
		cs = styles.Get(defaultTheme)
	}

	accent := chromaColor(cs, chroma.Keyword, tcell.ColorAqua)
	highlight := chromaColor(cs, chroma.LiteralString, tcell.ColorYellow)
	comment := chromaColor(cs, chroma.Comment, tcell.ColorGray)
	fg := chromaColor(cs, chroma.Background, tcell.ColorWhite)

	base := tcell.StyleDefault

	return UITheme{
		Accent:    accent,
		Highlight: highlight,
		CodeBg:    computeCodeBg(cs),

		Default:     base,
		Dim:         base.Dim(true),
		Caption:     base.Bold(true).Foreground(fg),
		Button:      base.Foreground(accent).Bold(true),
		CopyButton:  base.Background(accent).Foreground(contrastFg(accent)),
		Label:       base.Foreground(highlight).Bold(true),
		LineNo:      base.Foreground(comment).Dim(true),
		StatusBar:   base.Background(accent).Foreground(contrastFg(accent)),
		SearchCur:   base.Background(highlight).Foreground(tcell.ColorBlack).Bold(true),
		Flash:       base.Foreground(tcell.ColorGreen).Bold(true).Reverse(true),
		AlertBorder: base.Foreground(highlight),
		AlertText:   base.Bold(true),
	}
}

// chromaColor extracts the foreground color for a token type from a chroma style.
func chromaColor(s *chroma.Style, t chroma.TokenType, fallback tcell.Color) tcell.Color {
	entry := s.Get(t)
	if entry.Colour.IsSet() {
		return tcell.NewRGBColor(
			int32(entry.Colour.Red()),
			int32(entry.Colour.Green()),
			int32(entry.Colour.Blue()),
		)
	}
	return fallback
}

// computeCodeBg nudges the theme background a little toward the
// foreground so shown code stands apart from headers.
func computeCodeBg(cs *chroma.Style) tcell.Color {
	bg := cs.Get(chroma.Background).Background
	if !bg.IsSet() {
		return tcell.NewRGBColor(0x26, 0x26, 0x26)
	}
	r, g, b := int32(bg.Red()), int32(bg.Green()), int32(bg.Blue())
	if bg.Brightness() < 0.5 {
		return tcell.NewRGBColor(clamp32(r+14), clamp32(g+14), clamp32(b+14))
	}
	return tcell.NewRGBColor(clamp32(r-14), clamp32(g-14), clamp32(b-14))
}

// contrastFg returns black or white depending on which contrasts better with bg.
func contrastFg(bg tcell.Color) tcell.Color {
	r, g, b := bg.RGB()
	// Perceived luminance (ITU-R BT.601)
	lum := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
	if lum > 128 {
		return tcell.ColorBlack
	}
	return tcell.ColorWhite
}

func clamp32(v int32) int32 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// ListThemes prints all available chroma theme names and exits.
func ListThemes() {
	for _, name := range styles.Names() {
		fmt.Println(name)
	}
	os.Exit(0)
}
