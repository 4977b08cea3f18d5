package lint

import (
	"testing"

	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

func TestReportCountsAndThresholds(t *testing.T) {
	report := &Report{Issues: []interfaces.Issue{
		{Rule: RuleQuizExplanation, Severity: interfaces.SeverityWarning, Path: "b.md", Line: 3},
		{Rule: RuleSnippetUnlabeled, Severity: interfaces.SeverityInfo, Path: "a.md", Line: 9},
		{Rule: RuleQuizAnswers, Severity: interfaces.SeverityError, Path: "a.md", Line: 2},
	}}

	counts := report.Counts()
	if counts.Errors != 1 || counts.Warnings != 1 || counts.Infos != 1 || counts.Total() != 3 {
		t.Fatalf("unexpected counts %+v", counts)
	}
	if !report.HasErrors() || !report.Failed(interfaces.SeverityWarning) {
		t.Fatal("expected report to fail")
	}
	if got := len(report.Filter(interfaces.SeverityWarning)); got != 2 {
		t.Fatalf("expected 2 issues at warning or above, got %d", got)
	}

	report.Sort()
	if report.Issues[0].Path != "a.md" || report.Issues[0].Line != 2 || report.Issues[2].Path != "b.md" {
		t.Fatalf("unexpected order %+v", report.Issues)
	}
	if len(report.ByPath()["a.md"]) != 2 {
		t.Fatalf("expected two issues for a.md, got %+v", report.ByPath())
	}
}

func TestReportWithoutErrors(t *testing.T) {
	report := &Report{Issues: []interfaces.Issue{
		{Rule: RuleNavWeightScheme, Severity: interfaces.SeverityInfo, Path: "a.md"},
	}}
	if report.HasErrors() || report.Failed(interfaces.SeverityWarning) {
		t.Fatal("info issues must not fail the report")
	}
	if !report.Failed(interfaces.SeverityInfo) {
		t.Fatal("expected info threshold to fail")
	}

	var empty *Report
	if empty.Failed(interfaces.SeverityInfo) || empty.Counts().Total() != 0 {
		t.Fatal("nil report must be empty")
	}
}

func TestParseFailOn(t *testing.T) {
	cases := map[string]interfaces.Severity{
		"":        interfaces.SeverityError,
		"warning": interfaces.SeverityWarning,
		"INFO":    interfaces.SeverityInfo,
		"never":   FailNever,
	}
	for input, want := range cases {
		got, err := ParseFailOn(input)
		if err != nil {
			t.Fatalf("ParseFailOn(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseFailOn(%q) = %v, want %v", input, got, want)
		}
	}
	if _, err := ParseFailOn("fatal"); err == nil {
		t.Fatal("expected an error for an unknown threshold")
	}

	report := &Report{Issues: []interfaces.Issue{{Rule: RuleQuizAnswers, Severity: interfaces.SeverityError}}}
	if report.Failed(FailNever) {
		t.Fatal("never threshold must not fail")
	}
}
