package main

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gdamore/tcell/v2"
)

// StyledSpan is a run of text with a tcell style applied.
type StyledSpan struct {
	Text  string
	Style tcell.Style
}

// Highlighter tokenizes code lines and maps tokens to tcell styles.
// Lexer lookups are cached per language and per file extension.
type Highlighter struct {
	mu        sync.RWMutex
	lexers    map[string]chroma.Lexer // keyed by "lang:<name>" or extension
	style     *chroma.Style
	themeName string
}

// NewHighlighter returns a ready-to-use Highlighter with the "monokai" theme.
func NewHighlighter() *Highlighter {
	return &Highlighter{
		lexers:    make(map[string]chroma.Lexer),
		style:     styles.Get("monokai"),
		themeName: "monokai",
	}
}

// SetTheme switches to the named chroma theme. If the name is not
// recognised the current theme is kept.
func (h *Highlighter) SetTheme(name string) {
	if !knownStyle(name) {
		return
	}
	if s := styles.Get(name); s != nil {
		h.style = s
		h.themeName = name
	}
}

// ThemeName returns the name of the active theme.
func (h *Highlighter) ThemeName() string {
	return h.themeName
}

// Highlight tokenizes a single line of a block and returns styled spans.
// The lexer is picked by fence language, falling back to the filename's
// extension. Without a lexer the line comes back as one default span.
func (h *Highlighter) Highlight(lang, filename, text string) []StyledSpan {
	if text == "" {
		return nil
	}

	lex := h.lexerFor(lang, filename)
	if lex == nil {
		return []StyledSpan{{Text: text, Style: tcell.StyleDefault}}
	}

	iter, err := lex.Tokenise(nil, text)
	if err != nil {
		return []StyledSpan{{Text: text, Style: tcell.StyleDefault}}
	}

	var spans []StyledSpan
	for _, tok := range iter.Tokens() {
		// chroma may append a newline to the last token
		val := strings.TrimRight(tok.Value, "\n")
		if val == "" {
			continue
		}
		spans = append(spans, StyledSpan{
			Text:  val,
			Style: h.tokenStyle(tok.Type),
		})
	}
	return spans
}

// lexerFor returns a (possibly cached) lexer. Misses are cached as nil.
func (h *Highlighter) lexerFor(lang, filename string) chroma.Lexer {
	key := "lang:" + strings.ToLower(lang)
	if lang == "" {
		key = filepath.Ext(filename)
		if key == "" {
			key = filepath.Base(filename) // Makefile, Dockerfile, etc.
		}
	}
	if key == "" || key == "." {
		return nil
	}

	h.mu.RLock()
	lex, ok := h.lexers[key]
	h.mu.RUnlock()
	if ok {
		return lex
	}

	if lang != "" {
		lex = lexers.Get(lang)
	} else {
		lex = lexers.Match(filename)
	}
	if lex != nil {
		lex = chroma.Coalesce(lex)
	}

	h.mu.Lock()
	h.lexers[key] = lex
	h.mu.Unlock()

	return lex
}

// tokenStyle converts a chroma token type to a tcell style using the active theme.
// Only the foreground is taken so the block background stays uniform.
func (h *Highlighter) tokenStyle(t chroma.TokenType) tcell.Style {
	entry := h.style.Get(t)
	style := tcell.StyleDefault

	if entry.Colour.IsSet() {
		style = style.Foreground(tcell.NewRGBColor(
			int32(entry.Colour.Red()),
			int32(entry.Colour.Green()),
			int32(entry.Colour.Blue()),
		))
	}

	if entry.Bold == chroma.Yes {
		style = style.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		style = style.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		style = style.Underline(true)
	}

	return style
}
