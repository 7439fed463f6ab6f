package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// Document kinds.
const (
	KindMarkdown = "markdown"
	KindDiff     = "diff"
)

// defaultBlockID names the first block without an explicit id.
const defaultBlockID = "code-block"

// Frontmatter is the optional YAML header of a Markdown document.
type Frontmatter struct {
	Title string `yaml:"title"`
	Theme string `yaml:"theme"`
}

// CodeBlock is a block as laid out on screen. Its mutable state lives in
// the registry element.
type CodeBlock struct {
	ID       string
	Label    string // quick-access key (a, b, c...)
	Language string
	Caption  string
	Filename string // used for lexer detection when Language is empty
	Line     int    // first content line in the source, 1-based
	Code     *Element
}

// Document is a loaded input and the registry built from it.
type Document struct {
	Path     string
	Kind     string
	Title    string
	Theme    string
	Blocks   []*CodeBlock
	Registry *Registry
}

// BlockByID returns the laid-out block with the given id, or nil.
func (d *Document) BlockByID(id string) *CodeBlock {
	for _, b := range d.Blocks {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// BlockByLabel returns the block with the given label, or nil.
func (d *Document) BlockByLabel(label string) *CodeBlock {
	for _, b := range d.Blocks {
		if b.Label == label {
			return b
		}
	}
	return nil
}

// LoadDocument reads path (or stdin when path is "" or "-") and parses it
// as a diff or as Markdown.
func LoadDocument(path string, stdin io.Reader) (*Document, error) {
	var raw []byte
	var err error
	if path == "" || path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", displayPath(path), err)
	}

	var doc *Document
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".diff" || ext == ".patch" || looksLikeDiff(raw) {
		doc, err = ParseDiffDocument(raw)
	} else {
		doc, err = ParseMarkdown(raw)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", displayPath(path), err)
	}
	if path != "-" {
		doc.Path = path
	}
	if doc.Title == "" {
		doc.Title = displayPath(path)
	}
	return doc, nil
}

func displayPath(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return filepath.Base(path)
}

// rawBlock is a fenced block before ids are assigned.
type rawBlock struct {
	id      string
	lang    string
	info    string
	title   string
	heading string
	content string
	line    int
}

// ParseMarkdown extracts the fenced code blocks of a Markdown document and
// registers each one.
func ParseMarkdown(content []byte) (*Document, error) {
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	fm, remaining, err := extractFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	lineOffset := bytes.Count(content[:len(content)-len(remaining)], []byte("\n"))

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(remaining))

	var raws []rawBlock
	lastHeading := ""
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			lastHeading = segmentsText(node.Lines(), remaining)
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			raws = append(raws, parseFenced(node, remaining, lineOffset, lastHeading))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk AST: %w", err)
	}

	out := &Document{Kind: KindMarkdown, Title: fm.Title, Theme: fm.Theme, Registry: NewRegistry()}
	assignIDs(raws)
	for i, rb := range raws {
		el, err := out.Registry.Add(rb.id, rb.content, fencedMarkup(rb))
		if err != nil {
			return nil, fmt.Errorf("block at line %d: %w", rb.line, err)
		}
		caption := rb.title
		if caption == "" {
			caption = rb.heading
		}
		if caption == "" {
			caption = rb.lang
		}
		out.Blocks = append(out.Blocks, &CodeBlock{
			ID:       rb.id,
			Label:    indexToLabel(i),
			Language: rb.lang,
			Caption:  caption,
			Line:     rb.line,
			Code:     el,
		})
	}
	return out, nil
}

// extractFrontmatter splits off a leading "---" YAML block. The closing
// fence may directly follow the opener or end the input without a newline.
// content must already use "\n" line endings.
func extractFrontmatter(content []byte) (*Frontmatter, []byte, error) {
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return &Frontmatter{}, content, nil
	}
	body := content[4:]

	var yamlContent, remaining []byte
	switch end := bytes.Index(body, []byte("\n---\n")); {
	case bytes.HasPrefix(body, []byte("---\n")):
		remaining = body[4:]
	case bytes.Equal(body, []byte("---")):
	case end >= 0:
		yamlContent, remaining = body[:end], body[end+5:]
	case bytes.HasSuffix(body, []byte("\n---")):
		yamlContent = body[:len(body)-4]
	default:
		return nil, nil, fmt.Errorf("unclosed frontmatter")
	}

	var fm Frontmatter
	if err := yaml.Unmarshal(yamlContent, &fm); err != nil {
		return nil, nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &fm, remaining, nil
}

func parseFenced(fenced *ast.FencedCodeBlock, source []byte, lineOffset int, heading string) rawBlock {
	rb := rawBlock{heading: heading}
	if fenced.Info != nil {
		rb.info = string(fenced.Info.Segment.Value(source))
	}
	parts := splitInfo(rb.info)
	if len(parts) > 0 && !strings.Contains(parts[0], "=") {
		rb.lang = parts[0]
		parts = parts[1:]
	}
	for _, part := range parts {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		switch k {
		case "id":
			rb.id = v
		case "title":
			rb.title = v
		}
	}

	lines := fenced.Lines()
	var buf bytes.Buffer
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	rb.content = strings.TrimSuffix(buf.String(), "\n")

	switch {
	case lines.Len() > 0:
		rb.line = lineOffset + lineAt(source, lines.At(0).Start)
	case fenced.Info != nil:
		// empty block: the line after the opening fence
		rb.line = lineOffset + lineAt(source, fenced.Info.Segment.Start) + 1
	}
	return rb
}

// splitInfo splits a fence info string on spaces, keeping double-quoted
// values together and unquoting them.
func splitInfo(info string) []string {
	var parts []string
	var cur strings.Builder
	inQuote := false
	for _, r := range info {
		switch {
		case r == '"':
			inQuote = !inQuote
		case (r == ' ' || r == '\t') && !inQuote:
			if cur.Len() > 0 {
				parts = append(parts, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

// assignIDs gives every block without an explicit id the next free name
// in the sequence code-block, code-block-2, code-block-3...
func assignIDs(raws []rawBlock) {
	taken := make(map[string]bool, len(raws))
	for _, rb := range raws {
		if rb.id != "" {
			taken[rb.id] = true
		}
	}
	n := 1
	for i := range raws {
		if raws[i].id != "" {
			continue
		}
		for {
			id := defaultBlockID
			if n > 1 {
				id += "-" + strconv.Itoa(n)
			}
			n++
			if !taken[id] {
				raws[i].id = id
				taken[id] = true
				break
			}
		}
	}
}

func fencedMarkup(rb rawBlock) string {
	var sb strings.Builder
	sb.WriteString("```")
	sb.WriteString(rb.info)
	sb.WriteByte('\n')
	if rb.content != "" {
		sb.WriteString(rb.content)
		sb.WriteByte('\n')
	}
	sb.WriteString("```")
	return sb.String()
}

// segmentsText joins the raw source of a node's line segments.
func segmentsText(lines *text.Segments, source []byte) string {
	var sb strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	return strings.TrimSpace(sb.String())
}

// lineAt returns the 1-based line number of byte offset pos.
func lineAt(source []byte, pos int) int {
	if pos > len(source) {
		pos = len(source)
	}
	return bytes.Count(source[:pos], []byte("\n")) + 1
}
