package snippet

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

// diagramTypes are the header keywords Mermaid accepts.
var diagramTypes = map[string]bool{
	"graph":              true,
	"flowchart":          true,
	"flowchart-elk":      true,
	"sequenceDiagram":    true,
	"classDiagram":       true,
	"classDiagram-v2":    true,
	"stateDiagram":       true,
	"stateDiagram-v2":    true,
	"erDiagram":          true,
	"journey":            true,
	"gantt":              true,
	"pie":                true,
	"quadrantChart":      true,
	"requirementDiagram": true,
	"gitGraph":           true,
	"C4Context":          true,
	"C4Container":        true,
	"C4Component":        true,
	"C4Dynamic":          true,
	"C4Deployment":       true,
	"mindmap":            true,
	"timeline":           true,
	"zenuml":             true,
	"sankey-beta":        true,
	"xychart-beta":       true,
	"block-beta":         true,
	"packet-beta":        true,
	"architecture-beta":  true,
	"kanban":             true,
}

var closers = map[rune]rune{')': '(', ']': '[', '}': '{'}

type openBracket struct {
	char rune
	line int
}

func checkMermaid(fence interfaces.Fence) []Finding {
	lines := strings.Split(fence.Code, "\n")

	headerIdx := -1
	inConfig := false
scan:
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case line == "---":
			inConfig = !inConfig
			continue
		case inConfig, line == "", strings.HasPrefix(line, "%%"):
			continue
		}
		headerIdx = i
		break scan
	}

	if headerIdx < 0 {
		return []Finding{{
			Kind:    KindMermaid,
			Line:    fence.Line,
			Message: "mermaid diagram is empty",
		}}
	}

	var findings []Finding
	header := strings.Fields(strings.TrimSpace(lines[headerIdx]))[0]
	if !diagramTypes[header] {
		findings = append(findings, Finding{
			Kind:    KindMermaid,
			Line:    fence.Line + headerIdx + 1,
			Message: fmt.Sprintf("unknown mermaid diagram type %q", header),
		})
	}

	flowchart := header == "graph" || header == "flowchart"
	var stack []openBracket
	for i := headerIdx + 1; i < len(lines); i++ {
		fileLine := fence.Line + i + 1
		line := lines[i]
		if strings.HasPrefix(strings.TrimSpace(line), "%%") {
			continue
		}

		quoted := false
		label := false
		// idToken reports whether the current word so far is a bare node id.
		idToken := false
		var prev rune
		for _, r := range line {
			if unicode.IsSpace(r) {
				idToken = false
				prev = r
				continue
			}
			if prev == 0 || unicode.IsSpace(prev) {
				idToken = true
			}
			afterID := idToken && isNodeIDRune(prev)
			idToken = idToken && isNodeIDRune(r)

			switch {
			case r == '"':
				quoted = !quoted
			case quoted:
			case r == '|' && flowchart && len(stack) == 0:
				// edge label -->|text|
				label = !label
			case label:
			case r == '(' || r == '[' || r == '{':
				stack = append(stack, openBracket{char: r, line: fileLine})
			case r == '>' && flowchart && len(stack) == 0 && afterID:
				// asymmetric node shape id>label]
				stack = append(stack, openBracket{char: '[', line: fileLine})
			case closers[r] != 0:
				want := closers[r]
				if len(stack) == 0 || stack[len(stack)-1].char != want {
					findings = append(findings, Finding{
						Kind:    KindMermaid,
						Line:    fileLine,
						Message: fmt.Sprintf("unbalanced %q in mermaid diagram", r),
					})
					continue
				}
				stack = stack[:len(stack)-1]
			}
			prev = r
		}
		if quoted {
			findings = append(findings, Finding{
				Kind:    KindMermaid,
				Line:    fileLine,
				Message: "unterminated quote in mermaid diagram",
			})
		}
	}

	for _, open := range stack {
		findings = append(findings, Finding{
			Kind:    KindMermaid,
			Line:    open.line,
			Message: fmt.Sprintf("%q is never closed in mermaid diagram", open.char),
		})
	}
	return findings
}

func isNodeIDRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
