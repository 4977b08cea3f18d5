package lint

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-bookcheck/internal/markdown"
	"github.com/goliatone/go-bookcheck/internal/quiz"
	"github.com/goliatone/go-bookcheck/internal/snippet"
	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

type pageRule func(*Checker, *pageRun)

var pageRules = []pageRule{
	checkFrontMatter,
	checkPath,
	checkQuizBalance,
	checkQuizContent,
	checkSnippets,
	checkShortcodes,
}

func checkFrontMatter(c *Checker, r *pageRun) {
	page := r.page
	fm := page.FrontMatter

	if !page.HasFrontMatter {
		r.report(RuleFrontMatterPresent, 1, "page has no --- delimited front matter")
		return
	}
	if page.FrontMatterError != nil {
		if errors.Is(page.FrontMatterError, markdown.ErrFrontMatterUnterminated) {
			r.report(RuleFrontMatterPresent, 1, "front matter is opened but never closed")
			return
		}
		r.report(RuleFrontMatterParse, 1, "front matter does not parse: %v", page.FrontMatterError)
		return
	}
	if len(fm.Raw) == 0 {
		r.report(RuleFrontMatterPresent, 1, "front matter is empty")
		return
	}

	for _, key := range c.cfg.RequiredKeys {
		if !fm.Has(key) {
			r.report(RuleFrontMatterRequired, 1, "required key %q is missing", key)
			continue
		}
		if isBlank(fm.Raw[key]) {
			r.report(RuleFrontMatterRequired, fm.Line(key), "required key %q is empty", key)
		}
	}

	if r.active(RuleFrontMatterSchema) {
		for _, issue := range c.validator.Validate(fm.Raw) {
			location := issue.Key()
			if location == "" {
				location = "front matter"
			}
			r.report(RuleFrontMatterSchema, fm.Line(issue.Key()), "%s: %s", location, issue.Message)
		}
	}

	for _, key := range c.cfg.RecommendedKeys {
		if !fm.Has(key) {
			r.report(RuleFrontMatterRecommended, 1, "recommended key %q is missing", key)
		}
	}

	if fm.DateRaw != "" && fm.Date.IsZero() {
		r.report(RuleFrontMatterDate, fm.Line("date"), "date %q is not a valid date", fm.DateRaw)
	}

	if base := strings.TrimSpace(c.cfg.BaseURL); base != "" && fm.Canonical != "" && !strings.HasPrefix(fm.Canonical, base) {
		r.report(RuleFrontMatterCanonicalBase, fm.Line("canonical"), "canonical %q does not start with %q", fm.Canonical, base)
	}
}

func checkPath(c *Checker, r *pageRun) {
	page := r.page
	chapter, chapterOK := pathNumber(page.Chapter)
	section, sectionOK := pathNumber(page.Section)
	_, bookOK := pathNumber(page.Book)

	if !bookOK || !chapterOK || !sectionOK {
		r.report(RulePathConvention, 1, "path %s does not follow <book>/<chapter>/<section>/index.md", page.Path)
		return
	}

	fm := page.FrontMatter
	if fm.LinkTitle != "" {
		prefix := fmt.Sprintf("%d.%d", chapter, section)
		if !hasNumberPrefix(fm.LinkTitle, prefix) {
			r.report(RulePathLinkTitle, fm.Line("linkTitle"), "linkTitle %q should start with %s", fm.LinkTitle, prefix)
		}
	}

	if c.cfg.NavWeightScheme && fm.NavWeight != nil {
		expected := chapter*1000 + section*100
		if *fm.NavWeight != expected {
			r.report(RuleNavWeightScheme, fm.Line("nav_weight"), "nav_weight %d does not follow chapter*1000+section*100 (%d)", *fm.NavWeight, expected)
		}
	}
}

func checkQuizBalance(_ *Checker, r *pageRun) {
	for _, problem := range r.page.Problems {
		if problem.Name != quiz.ShortcodeName {
			continue
		}
		r.report(RuleQuizBalanced, problem.Line, "%s", problem.Message)
	}
	for _, sc := range r.page.Shortcodes {
		if sc.Name == quiz.ShortcodeName && !sc.Paired {
			r.report(RuleQuizBalanced, sc.Line, "%s opened at line %d has no matching {{< /%s >}}", sc.Name, sc.Line, sc.Name)
		}
	}
}

func checkQuizContent(c *Checker, r *pageRun) {
	page := r.page

	firstQuiz := 0
	for _, sc := range page.Shortcodes {
		if sc.Name == quiz.ShortcodeName {
			firstQuiz = sc.Line
			break
		}
	}
	if firstQuiz == 0 {
		for _, problem := range page.Problems {
			if problem.Name == quiz.ShortcodeName {
				firstQuiz = problem.Line
				break
			}
		}
	}

	if firstQuiz == 0 {
		if c.cfg.RequireQuiz {
			r.report(RuleQuizPresent, 1, "page has no %s block", quiz.ShortcodeName)
		}
		return
	}

	if heading := strings.TrimSpace(c.cfg.QuizHeading); heading != "" && !hasHeadingBefore(page.Headings, heading, firstQuiz) {
		r.report(RuleQuizHeading, firstQuiz, "expected a %q heading before the quiz", heading)
	}

	seen := map[string]int{}
	for _, block := range page.Quizzes {
		if block.HeaderError != nil {
			r.report(RuleQuizHeader, block.Line, "%v", block.HeaderError)
		}
		if len(block.Questions) == 0 {
			r.report(RuleQuizQuestions, block.Line, "quiz block has no questions")
			continue
		}
		for _, q := range block.Questions {
			if q.CorrectCount() == 0 {
				r.report(RuleQuizAnswers, q.Line, "question %q has no correct option ([x])", q.Text)
			}
			if q.IncorrectCount() == 0 {
				r.report(RuleQuizAnswers, q.Line, "question %q has no incorrect option ([ ])", q.Text)
			}
			if !q.HasExplanation {
				r.report(RuleQuizExplanation, q.Line, "question %q has no explanation", q.Text)
			}
			if q.Slug == "" {
				continue
			}
			if previous, ok := seen[q.Slug]; ok {
				r.report(RuleQuizDuplicate, q.Line, "question %q repeats the one on line %d", q.Text, previous)
				continue
			}
			seen[q.Slug] = q.Line
		}
	}
}

func checkSnippets(c *Checker, r *pageRun) {
	for _, fence := range r.page.Fences {
		if fence.Language == "" {
			r.report(RuleSnippetUnlabeled, fence.Line, "fenced code block has no language")
			continue
		}
		if c.snippets == nil {
			continue
		}
		for _, finding := range c.snippets.Check(fence) {
			rule := RuleSnippetSyntax
			if finding.Kind == snippet.KindMermaid {
				rule = RuleSnippetMermaid
			}
			r.report(rule, finding.Line, "%s", finding.Message)
		}
	}
}

func hasHeadingBefore(headings []interfaces.Heading, text string, line int) bool {
	for _, h := range headings {
		if h.Line >= line {
			return false
		}
		if strings.EqualFold(strings.TrimSpace(h.Text), text) {
			return true
		}
	}
	return false
}

// hasNumberPrefix reports whether title starts with prefix followed by a
// non-digit, so "4.2 Loops" matches 4.2 and "4.20 Loops" does not.
func hasNumberPrefix(title, prefix string) bool {
	title = strings.TrimSpace(title)
	if !strings.HasPrefix(title, prefix) {
		return false
	}
	rest := title[len(prefix):]
	return rest == "" || rest[0] < '0' || rest[0] > '9'
}

func pathNumber(segment string) (int, bool) {
	if segment == "" {
		return 0, false
	}
	n, err := strconv.Atoi(segment)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

// checkShortcodes validates every non-quiz shortcode against the registry.
// Names starting with "*" are Hugo's escaped {{</* ... */>}} form.
func checkShortcodes(c *Checker, r *pageRun) {
	for _, problem := range r.page.Problems {
		if problem.Name == quiz.ShortcodeName || strings.HasPrefix(problem.Name, "*") {
			continue
		}
		r.report(RuleShortcodeBalanced, problem.Line, "%s", problem.Message)
	}

	for _, sc := range r.page.Shortcodes {
		if sc.Name == quiz.ShortcodeName || strings.HasPrefix(sc.Name, "*") {
			continue
		}
		def, ok := c.registry.Get(sc.Name)
		if !ok {
			r.report(RuleShortcodeUnknown, sc.Line, "unknown shortcode %q", sc.Name)
			continue
		}
		if !r.active(RuleShortcodeParams) {
			continue
		}
		for _, problem := range c.params.CheckInvocation(def, sc) {
			r.report(RuleShortcodeParams, sc.Line, "%v", problem)
		}
	}
}
