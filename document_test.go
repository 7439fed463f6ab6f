package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const guideMarkdown = "---\n" +
	"title: Guide\n" +
	"theme: dracula\n" +
	"---\n" +
	"# Install\n" +
	"\n" +
	"```sh\n" +
	"go install x\n" +
	"```\n" +
	"\n" +
	"## Hello\n" +
	"\n" +
	"```python id=hello title=\"Say hi\"\n" +
	"print(\"hi\")\n" +
	"print(\"bye\")\n" +
	"```\n" +
	"\n" +
	"```\n" +
	"plain\n" +
	"```\n"

func TestParseMarkdownBlocks(t *testing.T) {
	doc, err := ParseMarkdown([]byte(guideMarkdown))
	require.NoError(t, err)

	assert.Equal(t, KindMarkdown, doc.Kind)
	assert.Equal(t, "Guide", doc.Title)
	assert.Equal(t, "dracula", doc.Theme)
	require.Len(t, doc.Blocks, 3)

	first := doc.Blocks[0]
	assert.Equal(t, "code-block", first.ID)
	assert.Equal(t, "sh", first.Language)
	assert.Equal(t, "Install", first.Caption)
	assert.Equal(t, 8, first.Line)
	assert.Equal(t, "go install x", first.Code.Text)
	assert.Equal(t, "```sh\ngo install x\n```", first.Code.Markup)

	second := doc.Blocks[1]
	assert.Equal(t, "hello", second.ID)
	assert.Equal(t, "python", second.Language)
	assert.Equal(t, "Say hi", second.Caption)
	assert.Equal(t, "print(\"hi\")\nprint(\"bye\")", second.Code.Text)

	third := doc.Blocks[2]
	assert.Equal(t, "code-block-2", third.ID)
	assert.Equal(t, "Hello", third.Caption)
	assert.Equal(t, "", third.Language)
}

func TestParseMarkdownLabelsAndRegistry(t *testing.T) {
	doc, err := ParseMarkdown([]byte(guideMarkdown))
	require.NoError(t, err)

	assert.Equal(t, []string{"code-block", "hello", "code-block-2"}, doc.Registry.IDs())
	for i, b := range doc.Blocks {
		assert.Equal(t, indexToLabel(i), b.Label)
		el, err := doc.Registry.Code(b.ID)
		require.NoError(t, err)
		assert.Same(t, b.Code, el)
		assert.Equal(t, DisplayUnset, el.Display)
	}
	assert.Same(t, doc.Blocks[1], doc.BlockByID("hello"))
	assert.Same(t, doc.Blocks[2], doc.BlockByLabel(indexToLabel(2)))
	assert.Nil(t, doc.BlockByID("nope"))
}

func TestParseMarkdownSkipsTakenDefaultIDs(t *testing.T) {
	src := "```go\na\n```\n\n```go id=code-block-2\nb\n```\n\n```go\nc\n```\n"
	doc, err := ParseMarkdown([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"code-block", "code-block-2", "code-block-3"}, doc.Registry.IDs())
	assert.Equal(t, "c", doc.Blocks[2].Code.Text)
}

func TestParseMarkdownDuplicateIDs(t *testing.T) {
	src := "```go id=x\na\n```\n\n```go id=x\nb\n```\n"
	_, err := ParseMarkdown([]byte(src))
	assert.ErrorContains(t, err, "duplicate id")
}

func TestParseMarkdownUnclosedFrontmatter(t *testing.T) {
	_, err := ParseMarkdown([]byte("---\ntitle: x\n"))
	assert.ErrorContains(t, err, "unclosed frontmatter")
}

func TestParseMarkdownEmptyFrontmatter(t *testing.T) {
	doc, err := ParseMarkdown([]byte("---\n---\n```go\nx := 1\n```\n"))
	require.NoError(t, err)

	assert.Equal(t, "", doc.Title)
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, "x := 1", doc.Blocks[0].Code.Text)
	assert.Equal(t, 4, doc.Blocks[0].Line)
}

func TestParseMarkdownFrontmatterAtEOF(t *testing.T) {
	doc, err := ParseMarkdown([]byte("---\ntitle: Only\n---"))
	require.NoError(t, err)
	assert.Equal(t, "Only", doc.Title)
	assert.Empty(t, doc.Blocks)

	doc, err = ParseMarkdown([]byte("---\n---"))
	require.NoError(t, err)
	assert.Empty(t, doc.Blocks)
}

func TestParseMarkdownCRLF(t *testing.T) {
	src := strings.ReplaceAll("---\ntitle: Windows\n---\n# Run\n\n```go\nfmt.Println(1)\nreturn\n```\n", "\n", "\r\n")
	doc, err := ParseMarkdown([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, "Windows", doc.Title)
	require.Len(t, doc.Blocks, 1)
	b := doc.Blocks[0]
	assert.Equal(t, "fmt.Println(1)\nreturn", b.Code.Text)
	assert.NotContains(t, b.Code.Markup, "\r")
	assert.Equal(t, "Run", b.Caption)
	assert.Equal(t, 7, b.Line)
}

func TestParseMarkdownWithoutBlocks(t *testing.T) {
	doc, err := ParseMarkdown([]byte("# Nothing here\n\nJust prose.\n"))
	require.NoError(t, err)
	assert.Empty(t, doc.Blocks)
	assert.Equal(t, 0, doc.Registry.Len())
}

func TestSplitInfo(t *testing.T) {
	got := splitInfo(`python  id=hello title="Say hi"`)
	assert.Equal(t, []string{"python", "id=hello", "title=Say hi"}, got)
	assert.Empty(t, splitInfo(""))
}

func TestLoadDocumentFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guide.md")
	require.NoError(t, os.WriteFile(path, []byte("```go\nfmt.Println()\n```\n"), 0o644))

	doc, err := LoadDocument(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Path)
	assert.Equal(t, "guide.md", doc.Title)
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, "fmt.Println()", doc.Blocks[0].Code.Text)
}

func TestLoadDocumentFromStdinDiff(t *testing.T) {
	doc, err := LoadDocument("", strings.NewReader(string(fakeDiff())))
	require.NoError(t, err)

	assert.Equal(t, KindDiff, doc.Kind)
	assert.Equal(t, "", doc.Path)
	assert.Equal(t, "stdin", doc.Title)
	assert.Len(t, doc.Blocks, 4)
}

func TestLoadDocumentMissingFile(t *testing.T) {
	_, err := LoadDocument(filepath.Join(t.TempDir(), "nope.md"), nil)
	assert.ErrorContains(t, err, "read nope.md")
}
