// Package quiz parses the body of a quizdown shortcode into questions,
// options and explanations.
//
// The accepted shape is the one used throughout the book:
//
//	---
//	shuffleAnswers: true
//	---
//	### Question text
//	- [x] correct option
//	- [ ] wrong option
//	> **Explanation:** why
//
// The YAML header is optional. Any heading level starts a question.
package quiz

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/goliatone/go-slug"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-bookcheck/internal/textpos"
	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

// ShortcodeName is the paired shortcode that wraps a quiz.
const ShortcodeName = "quizdown"

const explanationLabel = "explanation:"

// Parser turns quizdown content into an interfaces.QuizBlock. It is
// stateless and safe for concurrent use.
type Parser struct {
	md goldmark.Markdown
}

// NewParser builds a parser with the task list extension enabled so
// "[x]" / "[ ]" markers become checkbox nodes.
func NewParser() *Parser {
	return &Parser{
		md: goldmark.New(goldmark.WithExtensions(extension.TaskList)),
	}
}

// Parse reads inner, the text between the opening and closing quizdown
// tags. firstLine is the file line on which inner starts, so every line in
// the result points into the original file.
func (p *Parser) Parse(inner string, firstLine int) interfaces.QuizBlock {
	block := interfaces.QuizBlock{Line: firstLine}

	source := []byte(inner)
	offset := 0
	if header, rest, ok := splitHeader(source); ok {
		options := map[string]any{}
		if _, err := frontmatter.Parse(bytes.NewReader(header), &options); err != nil {
			block.HeaderError = fmt.Errorf("quiz header: %w", err)
		} else {
			block.Options = options
		}
		offset = len(source) - len(rest)
	}

	lines := textpos.New(source)
	toFileLine := func(pos int) int {
		return firstLine + lines.Line(pos) - 1
	}

	body := source[offset:]
	doc := p.md.Parser().Parse(text.NewReader(body))

	var current *interfaces.Question
	flush := func() {
		if current != nil {
			block.Questions = append(block.Questions, *current)
			current = nil
		}
	}

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			flush()
			questionText := nodeText(n, body)
			current = &interfaces.Question{
				Text: questionText,
				Slug: questionSlug(questionText),
				Line: toFileLine(offset + startOffset(n)),
			}
		case *ast.List:
			if current == nil {
				continue
			}
			for item := n.FirstChild(); item != nil; item = item.NextSibling() {
				current.Options = append(current.Options, parseOption(item, body, func(pos int) int {
					return toFileLine(offset + pos)
				}))
			}
		case *ast.Blockquote:
			if current == nil {
				continue
			}
			quoted := nodeText(n, body)
			if strings.HasPrefix(strings.ToLower(quoted), explanationLabel) {
				current.HasExplanation = true
				current.Explanation = strings.TrimSpace(quoted[len(explanationLabel):])
			}
		}
	}
	flush()

	block.EndLine = toFileLine(len(source))
	return block
}

func parseOption(item ast.Node, source []byte, lineOf func(int) int) interfaces.QuizOption {
	opt := interfaces.QuizOption{Line: lineOf(startOffset(item))}
	first := item.FirstChild()
	if first == nil {
		return opt
	}
	if box, ok := first.FirstChild().(*extast.TaskCheckBox); ok {
		opt.Marked = true
		opt.Correct = box.IsChecked
	}
	opt.Text = nodeText(item, source)
	return opt
}

// splitHeader detects a leading "---" YAML block. It returns the header
// including delimiters and the remainder after the closing delimiter.
func splitHeader(source []byte) ([]byte, []byte, bool) {
	trimmed := bytes.TrimLeft(source, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("---")) {
		return nil, source, false
	}
	lead := len(source) - len(trimmed)
	firstBreak := bytes.IndexByte(trimmed, '\n')
	if firstBreak < 0 || strings.TrimSpace(string(trimmed[:firstBreak])) != "---" {
		return nil, source, false
	}
	pos := firstBreak + 1
	for pos < len(trimmed) {
		end := bytes.IndexByte(trimmed[pos:], '\n')
		line := trimmed[pos:]
		next := len(trimmed)
		if end >= 0 {
			line = trimmed[pos : pos+end]
			next = pos + end + 1
		}
		if strings.TrimSpace(string(line)) == "---" {
			return trimmed[:next], source[lead+next:], true
		}
		pos = next
	}
	return nil, source, false
}

func questionSlug(value string) string {
	normalized, err := slug.Normalize(value)
	if err != nil {
		return ""
	}
	return normalized
}

// nodeText concatenates the inline text below node. Checkbox markers are
// skipped and soft line breaks become spaces.
func nodeText(node ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			return ast.WalkSkipChildren, nil
		}
		if n.Type() == ast.TypeBlock && n != node && n.PreviousSibling() != nil {
			b.WriteByte(' ')
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

// startOffset finds the byte offset of the first source line under node.
func startOffset(node ast.Node) int {
	if node.Type() == ast.TypeBlock && node.Lines().Len() > 0 {
		return node.Lines().At(0).Start
	}
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		if child.Type() != ast.TypeBlock {
			if t, ok := child.(*ast.Text); ok {
				return t.Segment.Start
			}
			continue
		}
		if pos := startOffset(child); pos >= 0 {
			return pos
		}
	}
	return -1
}
