// Package snippet checks that fenced code blocks parse. Snippets are never
// executed; JavaScript and TypeScript go through esbuild's transform API and
// Mermaid diagrams get a header and bracket check.
package snippet

import (
	"fmt"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

// Kind tells which check produced a finding.
type Kind string

const (
	KindSyntax  Kind = "syntax"
	KindMermaid Kind = "mermaid"
)

// Finding is a problem in one fence. Line points into the page file.
type Finding struct {
	Kind    Kind
	Line    int
	Message string
}

var loaders = map[string]api.Loader{
	"js":         api.LoaderJS,
	"javascript": api.LoaderJS,
	"mjs":        api.LoaderJS,
	"cjs":        api.LoaderJS,
	"jsx":        api.LoaderJSX,
	"ts":         api.LoaderTS,
	"typescript": api.LoaderTS,
	"tsx":        api.LoaderTSX,
	"json":       api.LoaderJSON,
}

const mermaidLanguage = "mermaid"

// Checker validates fences for a fixed set of languages.
type Checker struct {
	languages map[string]bool
}

// NewChecker enables the named languages. An empty list enables every
// supported language.
func NewChecker(languages []string) *Checker {
	enabled := map[string]bool{}
	for _, lang := range languages {
		key := strings.ToLower(strings.TrimSpace(lang))
		if key != "" {
			enabled[key] = true
		}
	}
	if len(enabled) == 0 {
		for _, lang := range SupportedLanguages() {
			enabled[lang] = true
		}
	}
	return &Checker{languages: enabled}
}

// SupportedLanguages lists every fence language the checker understands.
func SupportedLanguages() []string {
	out := make([]string, 0, len(loaders)+1)
	for lang := range loaders {
		out = append(out, lang)
	}
	out = append(out, mermaidLanguage)
	sort.Strings(out)
	return out
}

// Supports reports whether fences in lang are checked.
func (c *Checker) Supports(lang string) bool {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if !c.languages[lang] {
		return false
	}
	_, ok := loaders[lang]
	return ok || lang == mermaidLanguage
}

// Check validates a single fence. Unsupported languages yield no findings.
func (c *Checker) Check(fence interfaces.Fence) []Finding {
	lang := strings.ToLower(strings.TrimSpace(fence.Language))
	if !c.Supports(lang) {
		return nil
	}
	if lang == mermaidLanguage {
		return checkMermaid(fence)
	}
	return checkScript(fence, loaders[lang])
}

func checkScript(fence interfaces.Fence, loader api.Loader) []Finding {
	if strings.TrimSpace(fence.Code) == "" {
		return nil
	}

	result := api.Transform(fence.Code, api.TransformOptions{
		Loader:   loader,
		LogLevel: api.LogLevelSilent,
	})

	findings := make([]Finding, 0, len(result.Errors))
	for _, msg := range result.Errors {
		line := fence.Line + 1
		message := msg.Text
		if msg.Location != nil {
			line = fence.Line + msg.Location.Line
			message = fmt.Sprintf("%s (column %d)", msg.Text, msg.Location.Column+1)
		}
		findings = append(findings, Finding{
			Kind:    KindSyntax,
			Line:    line,
			Message: fmt.Sprintf("%s snippet does not parse: %s", fence.Language, message),
		})
	}
	return findings
}
