package parser

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/goliatone/go-bookcheck/internal/textpos"
	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

var tagPattern = regexp.MustCompile(`{{<\s*(/?)\s*([^\s/>]+)([^>]*)>}}`)

// HugoParser scans Hugo-style shortcodes ({{< name param >}} ...
// {{< /name >}}).
type HugoParser struct {
}

// NewHugoParser creates a parser instance.
func NewHugoParser() *HugoParser {
	return &HugoParser{}
}

var _ interfaces.ShortcodeParser = (*HugoParser)(nil)

type tag struct {
	name    string
	closing bool
	self    bool
	params  map[string]any
	start   int
	end     int
}

type openTag struct {
	tag
	line int
}

// Scan returns every shortcode invocation in content, ordered by start
// offset, together with balance problems.
//
// An opening tag is paired when a closing tag of the same name follows it
// anywhere later in content; otherwise it is treated as self-closing and it
// is up to the caller to decide whether that name requires a closer.
func (p *HugoParser) Scan(content string) ([]interfaces.ParsedShortcode, []interfaces.ShortcodeProblem) {
	tags := tokenize(content)
	lines := textpos.New(content)

	lastClose := map[string]int{}
	for i, t := range tags {
		if t.closing {
			lastClose[t.name] = i
		}
	}

	var (
		shortcodes []interfaces.ParsedShortcode
		problems   []interfaces.ShortcodeProblem
		stack      []openTag
	)

	for i, t := range tags {
		line := lines.Line(t.start)

		if !t.closing {
			closer, hasCloser := lastClose[t.name]
			if t.self || !hasCloser || closer < i {
				shortcodes = append(shortcodes, interfaces.ParsedShortcode{
					Name:       t.name,
					Params:     t.params,
					Start:      t.start,
					End:        t.end,
					InnerStart: t.end,
					Line:       line,
					EndLine:    line,
					InnerLine:  line,
				})
				continue
			}
			for _, open := range stack {
				if open.name == t.name {
					problems = append(problems, interfaces.ShortcodeProblem{
						Kind:    interfaces.ShortcodeNested,
						Name:    t.name,
						Line:    line,
						Message: fmt.Sprintf("%s opened at line %d while the one from line %d is still open", t.name, line, open.line),
					})
					break
				}
			}
			stack = append(stack, openTag{tag: t, line: line})
			continue
		}

		depth := -1
		for j := len(stack) - 1; j >= 0; j-- {
			if stack[j].name == t.name {
				depth = j
				break
			}
		}
		if depth < 0 {
			kind := interfaces.ShortcodeUnexpected
			message := fmt.Sprintf("closing %s has no matching opening tag", t.name)
			if len(stack) > 0 {
				kind = interfaces.ShortcodeMismatched
				message = fmt.Sprintf("closing %s does not match open %s from line %d", t.name, stack[len(stack)-1].name, stack[len(stack)-1].line)
			}
			problems = append(problems, interfaces.ShortcodeProblem{
				Kind:    kind,
				Name:    t.name,
				Line:    line,
				Message: message,
			})
			continue
		}

		for j := len(stack) - 1; j > depth; j-- {
			problems = append(problems, unterminated(stack[j]))
		}
		open := stack[depth]
		stack = stack[:depth]

		shortcodes = append(shortcodes, interfaces.ParsedShortcode{
			Name:       t.name,
			Params:     open.params,
			Inner:      content[open.end:t.start],
			Paired:     true,
			Start:      open.start,
			End:        t.end,
			InnerStart: open.end,
			Line:       open.line,
			EndLine:    line,
			InnerLine:  lines.Line(open.end),
		})
	}

	for j := len(stack) - 1; j >= 0; j-- {
		problems = append(problems, unterminated(stack[j]))
	}

	sort.SliceStable(shortcodes, func(i, j int) bool {
		return shortcodes[i].Start < shortcodes[j].Start
	})
	sort.SliceStable(problems, func(i, j int) bool {
		return problems[i].Line < problems[j].Line
	})
	return shortcodes, problems
}

// Extract returns the shortcodes in content and fails on the first balance
// problem.
func (p *HugoParser) Extract(content string) ([]interfaces.ParsedShortcode, error) {
	shortcodes, problems := p.Scan(content)
	if len(problems) > 0 {
		first := problems[0]
		return nil, fmt.Errorf("shortcode %s at line %d: %s", first.Name, first.Line, first.Message)
	}
	return shortcodes, nil
}

func unterminated(open openTag) interfaces.ShortcodeProblem {
	return interfaces.ShortcodeProblem{
		Kind:    interfaces.ShortcodeUnterminated,
		Name:    open.name,
		Line:    open.line,
		Message: fmt.Sprintf("%s opened at line %d is never closed", open.name, open.line),
	}
}

func tokenize(content string) []tag {
	matches := tagPattern.FindAllStringSubmatchIndex(content, -1)
	tags := make([]tag, 0, len(matches))
	for _, m := range matches {
		raw := strings.TrimSpace(content[m[6]:m[7]])
		t := tag{
			name:    content[m[4]:m[5]],
			closing: m[3] > m[2],
			start:   m[0],
			end:     m[1],
		}
		if strings.HasSuffix(raw, "/") {
			t.self = true
			raw = strings.TrimSpace(strings.TrimSuffix(raw, "/"))
		}
		if !t.closing {
			t.params = parseParams(raw)
		}
		tags = append(tags, t)
	}
	return tags
}

func parseParams(raw string) map[string]any {
	if raw == "" {
		return map[string]any{}
	}
	parts := splitParams(raw)
	params := make(map[string]any, len(parts))
	for _, part := range parts {
		key, value, ok := strings.Cut(part, "=")
		if ok && key != "" && !strings.ContainsAny(key, "\"`") {
			params[strings.TrimSpace(key)] = unquote(value)
			continue
		}
		params[fmt.Sprintf("param%d", len(params)+1)] = unquote(part)
	}
	return params
}

// splitParams splits on whitespace outside "..." and `...` quotes.
func splitParams(raw string) []string {
	var (
		parts   []string
		current strings.Builder
		quote   rune
	)
	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
	}
	for _, r := range raw {
		switch {
		case quote != 0:
			current.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '`':
			quote = r
			current.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return parts
}

func unquote(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if first == last && (first == '"' || first == '`') {
			return value[1 : len(value)-1]
		}
	}
	return strings.Trim(value, `"`)
}
