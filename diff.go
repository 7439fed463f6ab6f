package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// Hunk is one fragment of a unified diff.
type Hunk struct {
	Label    string
	File     string
	Header   string // raw @@ header for AsPatch
	Comment  string // function/context from header
	OldStart int
	NewStart int
	Lines    []Line
}

// Line is a single line in a hunk.
type Line struct {
	Op      rune // '+', '-', ' '
	Content string
}

// ResultLines returns the hunk as it reads after the change: context and
// added lines, joined by newlines.
func (h *Hunk) ResultLines() string {
	var lines []string
	for _, l := range h.Lines {
		if l.Op != '-' {
			lines = append(lines, l.Content)
		}
	}
	return strings.Join(lines, "\n")
}

// AsPatch formats the hunk as a unified diff fragment.
func (h *Hunk) AsPatch() string {
	var sb strings.Builder
	sb.WriteString(h.Header)
	sb.WriteByte('\n')
	for _, l := range h.Lines {
		sb.WriteRune(l.Op)
		sb.WriteString(l.Content)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// looksLikeDiff reports whether data is a unified diff rather than Markdown.
func looksLikeDiff(data []byte) bool {
	trimmed := bytes.TrimLeft(data, "\n")
	return bytes.HasPrefix(trimmed, []byte("diff --git ")) ||
		bytes.HasPrefix(trimmed, []byte("--- ")) ||
		bytes.HasPrefix(trimmed, []byte("Index: "))
}

func parseDiff(data []byte) ([]Hunk, error) {
	files, _, err := gitdiff.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}

	var hunks []Hunk
	for _, file := range files {
		filename := file.NewName
		if filename == "" || filename == "/dev/null" {
			filename = file.OldName
		}
		for _, frag := range file.TextFragments {
			hunks = append(hunks, Hunk{
				Label:    indexToLabel(len(hunks)),
				File:     filename,
				Header:   formatHeader(frag),
				Comment:  strings.TrimSpace(frag.Comment),
				OldStart: int(frag.OldPosition),
				NewStart: int(frag.NewPosition),
				Lines:    parseLines(frag),
			})
		}
	}
	return hunks, nil
}

// ParseDiffDocument turns every hunk of a unified diff into a code block.
// The block id is the hunk label, its text is the resulting code and its
// markup the hunk patch.
func ParseDiffDocument(data []byte) (*Document, error) {
	hunks, err := parseDiff(data)
	if err != nil {
		return nil, err
	}
	doc := &Document{Kind: KindDiff, Registry: NewRegistry()}
	for i := range hunks {
		h := &hunks[i]
		caption := h.File
		if h.Comment != "" {
			caption += " " + h.Comment
		}
		el, err := doc.Registry.Add(h.Label, h.ResultLines(), h.AsPatch())
		if err != nil {
			return nil, err
		}
		doc.Blocks = append(doc.Blocks, &CodeBlock{
			ID:       h.Label,
			Label:    h.Label,
			Caption:  caption,
			Filename: h.File,
			Line:     h.NewStart,
			Code:     el,
		})
	}
	return doc, nil
}

func indexToLabel(idx int) string {
	n := len(availableLabels)
	if idx < n {
		return string(availableLabels[idx])
	}
	// two-char labels once single chars run out
	over := idx - n
	first := over / n
	second := over % n
	if first >= n {
		first = n - 1
	}
	return string(availableLabels[first]) + string(availableLabels[second])
}

func formatHeader(frag *gitdiff.TextFragment) string {
	comment := ""
	if frag.Comment != "" {
		comment = " " + frag.Comment
	}
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@%s",
		frag.OldPosition, frag.OldLines,
		frag.NewPosition, frag.NewLines,
		comment)
}

func parseLines(frag *gitdiff.TextFragment) []Line {
	lines := make([]Line, 0, len(frag.Lines))
	for _, l := range frag.Lines {
		op := ' '
		switch l.Op {
		case gitdiff.OpAdd:
			op = '+'
		case gitdiff.OpDelete:
			op = '-'
		}
		lines = append(lines, Line{Op: op, Content: strings.TrimRight(l.Line, "\n")})
	}
	return lines
}
