package lint

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-bookcheck/internal/markdown"
	"github.com/goliatone/go-bookcheck/pkg/interfaces"
	"github.com/goliatone/go-bookcheck/pkg/testsupport"
)

const goodQuiz = `
## Quiz Time!

{{< quizdown >}}
### Which keyword declares a constant?
- [x] const
- [ ] var

> **Explanation:** const bindings cannot be reassigned.
{{< /quizdown >}}
`

func testConfig() Config {
	return Config{
		RequiredKeys:    []string{"title", "canonical", "type", "license"},
		RecommendedKeys: []string{"description", "linkTitle", "categories", "tags", "date", "nav_weight"},
		QuizHeading:     "Quiz Time!",
		NavWeightScheme: true,
		RequireQuiz:     true,
		Snippets:        true,
		Workers:         2,
	}
}

func chapterSource(canonical string, weight int, linkTitle string, extra string, body string) string {
	return fmt.Sprintf(`---
canonical: %s
title: Page
description: A page.
linkTitle: "%s"
categories: [javascript]
tags: [basics]
date: 2023-05-01
type: docs
nav_weight: %d
license: MIT
%s---
%s`, canonical, linkTitle, weight, extra, body)
}

func loadPages(t *testing.T, files map[string]string) []*interfaces.ChapterPage {
	t.Helper()
	filesystem := fstest.MapFS{}
	for path, content := range files {
		filesystem[path] = &fstest.MapFile{Data: []byte(content)}
	}
	svc, err := markdown.NewService(markdown.Config{Recursive: true}, markdown.WithFS(filesystem))
	require.NoError(t, err)
	pages, err := svc.LoadDirectory(context.Background(), ".")
	require.NoError(t, err)
	return pages
}

func runCheck(t *testing.T, cfg Config, files map[string]string) *Report {
	t.Helper()
	checker, err := NewChecker(cfg, WithIDGenerator(func() string { return "run-1" }))
	require.NoError(t, err)
	report, err := checker.Check(context.Background(), loadPages(t, files))
	require.NoError(t, err)
	return report
}

func rulesOf(issues []interfaces.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Rule)
	}
	return out
}

func TestCheckerCleanChapterPage(t *testing.T) {
	source, err := testsupport.LoadFixture(filepath.Join("..", "markdown", "testdata", "book", "1", "4", "2", "index.md"))
	require.NoError(t, err)

	report := runCheck(t, testConfig(), map[string]string{"1/4/2/index.md": string(source)})

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, 1, report.Pages)
	assert.Empty(t, report.Issues)
	assert.False(t, report.HasErrors())
}

func TestCheckerMissingFrontMatter(t *testing.T) {
	report := runCheck(t, testConfig(), map[string]string{
		"1/1/1/index.md": "# Title\n\nSome text\n",
	})

	assert.Equal(t, []string{RuleFrontMatterPresent, RuleQuizPresent}, rulesOf(report.Issues))
	assert.True(t, report.HasErrors())
	assert.Equal(t, 1, report.Issues[0].Line)
}

func TestCheckerFrontMatterProblems(t *testing.T) {
	source := "---\ntitle: \"\"\ncanonical: /relative\ntype: blog\nnav_weight: \"1100\"\ndate: someday\n---\n" + goodQuiz

	report := runCheck(t, testConfig(), map[string]string{"1/1/1/index.md": source})

	rules := rulesOf(report.Issues)
	assert.Contains(t, rules, RuleFrontMatterRequired)
	assert.Contains(t, rules, RuleFrontMatterSchema)
	assert.Contains(t, rules, RuleFrontMatterRecommended)
	assert.Contains(t, rules, RuleFrontMatterDate)

	for _, issue := range report.Issues {
		switch {
		case issue.Rule == RuleFrontMatterRequired && strings.Contains(issue.Message, `"title"`):
			assert.Equal(t, 2, issue.Line)
		case issue.Rule == RuleFrontMatterRequired && strings.Contains(issue.Message, `"license"`):
			assert.Equal(t, 1, issue.Line)
		case issue.Rule == RuleFrontMatterDate:
			assert.Equal(t, 6, issue.Line)
		}
	}
}

func TestCheckerBrokenFrontMatter(t *testing.T) {
	report := runCheck(t, testConfig(), map[string]string{
		"1/1/1/index.md": "---\ntitle: [oops\n---\n" + goodQuiz,
		"1/1/2/index.md": "---\ntitle: never closed\n",
	})

	byPath := report.ByPath()
	assert.Equal(t, []string{RuleFrontMatterParse}, rulesOf(byPath["1/1/1/index.md"]))
	assert.Contains(t, rulesOf(byPath["1/1/2/index.md"]), RuleFrontMatterPresent)
}

func TestCheckerPathRules(t *testing.T) {
	report := runCheck(t, testConfig(), map[string]string{
		"1/4/2/index.md": chapterSource("https://example.com/1/4/2/", 4300, "4.20 Loops", "", goodQuiz),
		"intro/index.md": chapterSource("https://example.com/intro/", 100, "Intro", "", goodQuiz),
	})

	byPath := report.ByPath()
	assert.Equal(t, []string{RulePathLinkTitle, RuleNavWeightScheme}, rulesOf(byPath["1/4/2/index.md"]))
	assert.Equal(t, interfaces.SeverityInfo, byPath["1/4/2/index.md"][1].Severity)
	assert.Equal(t, 10, byPath["1/4/2/index.md"][1].Line)
	assert.Equal(t, []string{RulePathConvention}, rulesOf(byPath["intro/index.md"]))
}

func TestCheckerQuizRules(t *testing.T) {
	body := `
## Quiz Time!

{{< quizdown >}}
---
shuffleAnswers: [
---
### Pick one
- [ ] a
- [ ] b

### Pick one
- [x] a
- [ ] b

> **Explanation:** ok
{{< /quizdown >}}

{{< quizdown >}}
no questions here
{{< /quizdown >}}
`
	report := runCheck(t, testConfig(), map[string]string{
		"1/1/1/index.md": chapterSource("https://example.com/1/1/1/", 1100, "1.1 Quiz", "", body),
	})

	assert.ElementsMatch(t, []string{
		RuleQuizHeader,
		RuleQuizAnswers,
		RuleQuizExplanation,
		RuleQuizDuplicate,
		RuleQuizQuestions,
	}, rulesOf(report.Issues))
}

func TestCheckerQuizBalanceAndHeading(t *testing.T) {
	body := "\n# Intro\n\n{{< quizdown >}}\n### Q\n- [x] a\n- [ ] b\n\n> **Explanation:** e\n\n{{< /alert >}}\n"

	report := runCheck(t, testConfig(), map[string]string{
		"1/1/1/index.md": chapterSource("https://example.com/1/1/1/", 1100, "1.1 Quiz", "", body),
	})

	rules := rulesOf(report.Issues)
	assert.Contains(t, rules, RuleQuizBalanced)
	assert.Contains(t, rules, RuleQuizHeading)
	assert.NotContains(t, rules, RuleQuizPresent)
}

func TestCheckerSnippetRules(t *testing.T) {
	body := goodQuiz + "\n```js\nconst = 1;\n```\n\n```\nplain\n```\n\n```mermaid\npiechart\n```\n"

	report := runCheck(t, testConfig(), map[string]string{
		"1/1/1/index.md": chapterSource("https://example.com/1/1/1/", 1100, "1.1 Code", "", body),
	})
	assert.ElementsMatch(t, []string{RuleSnippetSyntax, RuleSnippetUnlabeled, RuleSnippetMermaid}, rulesOf(report.Issues))

	cfg := testConfig()
	cfg.Snippets = false
	report = runCheck(t, cfg, map[string]string{
		"1/1/1/index.md": chapterSource("https://example.com/1/1/1/", 1100, "1.1 Code", "", body),
	})
	assert.Equal(t, []string{RuleSnippetUnlabeled}, rulesOf(report.Issues))
}

func TestCheckerNavWeightUnique(t *testing.T) {
	cfg := testConfig()
	cfg.NavWeightScheme = false

	report := runCheck(t, cfg, map[string]string{
		"1/4/1/index.md": chapterSource("https://example.com/1/4/1/", 4100, "4.1 A", "", goodQuiz),
		"1/4/2/index.md": chapterSource("https://example.com/1/4/2/", 4100, "4.2 B", "", goodQuiz),
		"1/5/1/index.md": chapterSource("https://example.com/1/5/1/", 4100, "5.1 C", "", goodQuiz),
	})

	require.Len(t, report.Issues, 2)
	assert.Equal(t, "1/4/1/index.md", report.Issues[0].Path)
	assert.Equal(t, "1/4/2/index.md", report.Issues[1].Path)
	for _, issue := range report.Issues {
		assert.Equal(t, RuleNavWeightUnique, issue.Rule)
		assert.Equal(t, 10, issue.Line)
		assert.Equal(t, interfaces.SeverityError, issue.Severity)
	}
	assert.Contains(t, report.Issues[0].Message, "1/4/2/index.md")
}

func TestCheckerCanonicalUnique(t *testing.T) {
	report := runCheck(t, testConfig(), map[string]string{
		"1/1/1/index.md": chapterSource("https://Example.com/a/", 1100, "1.1 A", "", goodQuiz),
		"1/1/2/index.md": chapterSource("https://example.com/a", 1200, "1.2 B", "", goodQuiz),
	})

	require.Len(t, report.Issues, 2)
	for _, issue := range report.Issues {
		assert.Equal(t, RuleFrontMatterCanonicalUnique, issue.Rule)
		assert.Equal(t, 2, issue.Line)
	}
}

func TestCheckerSuppression(t *testing.T) {
	files := map[string]string{
		"1/1/1/index.md": chapterSource("https://example.com/1/1/1/", 1100, "1.1 A", "lint_ignore: [quiz.present]\n", "no quiz\n"),
		"1/1/2/index.md": chapterSource("https://example.com/1/1/2/", 1200, "1.2 B", "", "no quiz\n"),
	}

	report := runCheck(t, testConfig(), files)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "1/1/2/index.md", report.Issues[0].Path)

	cfg := testConfig()
	cfg.Disabled = map[string]bool{RuleQuizPresent: true}
	assert.Empty(t, runCheck(t, cfg, files).Issues)

	cfg = testConfig()
	cfg.Severity = map[string]interfaces.Severity{RuleQuizPresent: interfaces.SeverityError}
	report = runCheck(t, cfg, files)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, interfaces.SeverityError, report.Issues[0].Severity)
}

func TestCheckerBaseURL(t *testing.T) {
	cfg := testConfig()
	cfg.BaseURL = "https://js-book.example.com/"

	report := runCheck(t, cfg, map[string]string{
		"1/1/1/index.md": chapterSource("https://elsewhere.example.com/1/1/1/", 1100, "1.1 A", "", goodQuiz),
	})
	assert.Equal(t, []string{RuleFrontMatterCanonicalBase}, rulesOf(report.Issues))
}

func TestCheckerHonoursCancellation(t *testing.T) {
	checker, err := NewChecker(testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pages := loadPages(t, map[string]string{"1/1/1/index.md": "# no header\n"})
	_, err = checker.Check(ctx, pages)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckerReportTiming(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	clock := func() time.Time {
		calls++
		return start.Add(time.Duration(calls-1) * time.Second)
	}

	checker, err := NewChecker(testConfig(), WithClock(clock))
	require.NoError(t, err)
	report, err := checker.Check(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, start, report.StartedAt)
	assert.Equal(t, time.Second, report.Duration)
	assert.NotEmpty(t, report.RunID)
}

func TestCheckerShortcodeRules(t *testing.T) {
	body := goodQuiz + "\n{{< hint warning >}}Careful{{< /hint >}}\n\n{{< hint loud >}}Too loud{{< /hint >}}\n\n" +
		"{{< asciinema id=42 >}}\n\n{{< figure >}}\n\n{{</* details */>}}\n\n{{< /tabs >}}\n"
	files := map[string]string{
		"1/1/1/index.md": chapterSource("https://example.com/1/1/1/", 1100, "1.1 Shortcodes", "", body),
	}

	report := runCheck(t, testConfig(), files)
	assert.ElementsMatch(t, []string{
		RuleShortcodeParams,  // hint loud
		RuleShortcodeUnknown, // asciinema
		RuleShortcodeParams,  // figure without src
		RuleShortcodeBalanced,
	}, rulesOf(report.Issues))

	cfg := testConfig()
	cfg.Shortcodes = []string{"asciinema"}
	cfg.Disabled = map[string]bool{RuleShortcodeBalanced: true}
	report = runCheck(t, cfg, files)
	assert.ElementsMatch(t, []string{RuleShortcodeParams, RuleShortcodeParams}, rulesOf(report.Issues))
}
