package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-bookcheck/internal/textpos"
	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

// Outline is the structural summary of a page body.
type Outline struct {
	Headings []interfaces.Heading
	Fences   []interfaces.Fence
}

// GoldmarkScanner walks the goldmark AST of a body and collects headings and
// fenced code blocks. It is stateless so callers can reuse a single instance
// across goroutines.
type GoldmarkScanner struct {
	engine goldmark.Markdown
}

// NewGoldmarkScanner constructs a scanner for the supplied extension set.
func NewGoldmarkScanner(opts interfaces.ParseOptions) *GoldmarkScanner {
	return &GoldmarkScanner{engine: newGoldmarkEngine(opts)}
}

// Scan parses body and reports positions as file lines, body starting on
// firstLine.
func (s *GoldmarkScanner) Scan(body []byte, firstLine int) Outline {
	if firstLine < 1 {
		firstLine = 1
	}
	lines := textpos.New(body)
	toFileLine := func(offset int) int {
		return firstLine + lines.Line(offset) - 1
	}

	var outline Outline
	doc := s.engine.Parser().Parse(text.NewReader(body))

	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Heading:
			if n.Lines().Len() == 0 {
				return ast.WalkSkipChildren, nil
			}
			outline.Headings = append(outline.Headings, interfaces.Heading{
				Level: n.Level,
				Text:  inlineText(n, body),
				Line:  toFileLine(n.Lines().At(0).Start),
			})
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			fence := interfaces.Fence{
				Language: strings.ToLower(string(n.Language(body))),
				Code:     blockText(n, body),
			}
			switch {
			case n.Info != nil:
				fence.Info = strings.TrimSpace(string(n.Info.Segment.Value(body)))
				fence.Line = toFileLine(n.Info.Segment.Start)
			case n.Lines().Len() > 0:
				fence.Line = toFileLine(n.Lines().At(0).Start) - 1
			}
			outline.Fences = append(outline.Fences, fence)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return outline
}

// newGoldmarkEngine builds a goldmark.Markdown configured with the extensions
// named in opts. Unsupported extension names are ignored.
func newGoldmarkEngine(opts interfaces.ParseOptions) goldmark.Markdown {
	exts := collectExtensions(opts.Extensions)

	engineOptions := []goldmark.Option{}
	if len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}

	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

// KnownExtension reports whether name is a supported extension.
func KnownExtension(name string) bool {
	_, ok := extensionRegistry[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{
			extension.GFM,
			extension.TaskList,
		}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}

		if _, ok := seen[key]; ok {
			continue
		}

		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}

		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}

	return extenders
}

func inlineText(node ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func blockText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		buf.Write(segment.Value(source))
	}
	return buf.String()
}
