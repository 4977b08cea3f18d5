package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-bookcheck/internal/di"
)

const cleanPage = `---
canonical: https://example.com/js/1/1/
title: Values
description: Values and types.
linkTitle: "1.1 Values"
categories: [javascript]
tags: [basics]
date: 2023-05-01
type: docs
nav_weight: 1100
license: MIT
---

## Quiz Time!

{{< quizdown >}}
### Which keyword declares a constant?
- [x] const
- [ ] var

> **Explanation:** const bindings cannot be reassigned.
{{< /quizdown >}}
`

const quizWithoutExplanation = `---
canonical: https://example.com/js/1/2/
title: Types
description: Types.
linkTitle: "1.2 Types"
categories: [javascript]
tags: [basics]
date: 2023-05-01
type: docs
nav_weight: 1200
license: MIT
---

## Quiz Time!

{{< quizdown >}}
### Is null an object?
- [x] typeof says so
- [ ] no
{{< /quizdown >}}
`

func runCLI(t *testing.T, files fstest.MapFS, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := newApp(&stdout, &stderr)
	a.moduleOptions = []di.Option{di.WithFS(files)}
	code := a.execute(context.Background(), args)
	return code, stdout.String(), stderr.String()
}

func TestCheckCleanBookExitsZero(t *testing.T) {
	files := fstest.MapFS{"1/1/1/index.md": &fstest.MapFile{Data: []byte(cleanPage)}}

	code, stdout, stderr := runCLI(t, files, "check", "--no-color")
	if code != exitOK {
		t.Fatalf("expected exit %d, got %d (stderr: %s)", exitOK, code, stderr)
	}
	if !strings.Contains(stdout, "1 page checked: 0 errors, 0 warnings, 0 info") {
		t.Fatalf("unexpected summary: %q", stdout)
	}
}

func TestCheckFailOnThreshold(t *testing.T) {
	files := fstest.MapFS{"1/1/2/index.md": &fstest.MapFile{Data: []byte(quizWithoutExplanation)}}

	code, stdout, _ := runCLI(t, files, "check", "--no-color")
	if code != exitOK {
		t.Fatalf("warnings must not fail the default threshold, got exit %d\n%s", code, stdout)
	}
	if !strings.Contains(stdout, "quiz.explanation") {
		t.Fatalf("expected the explanation finding in output: %q", stdout)
	}

	code, _, _ = runCLI(t, files, "check", "--fail-on", "warning")
	if code != exitFailed {
		t.Fatalf("expected exit %d with --fail-on warning, got %d", exitFailed, code)
	}
}

func TestCheckJSONOutput(t *testing.T) {
	files := fstest.MapFS{"1/1/1/index.md": &fstest.MapFile{Data: []byte("# no front matter\n")}}

	code, stdout, _ := runCLI(t, files, "check", "--format", "json")
	if code != exitFailed {
		t.Fatalf("expected exit %d, got %d", exitFailed, code)
	}
	var payload struct {
		Pages  int  `json:"pages"`
		Failed bool `json:"failed"`
		Counts struct {
			Errors int `json:"errors"`
		} `json:"counts"`
	}
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("decode json output: %v\n%s", err, stdout)
	}
	if payload.Pages != 1 || !payload.Failed || payload.Counts.Errors == 0 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestUnknownFormatIsUsageError(t *testing.T) {
	code, _, stderr := runCLI(t, fstest.MapFS{}, "check", "--format", "xml")
	if code != exitError {
		t.Fatalf("expected exit %d, got %d", exitError, code)
	}
	if !strings.Contains(stderr, "bookcheck:") {
		t.Fatalf("expected error on stderr, got %q", stderr)
	}
}

func TestRecordIndexAndHistory(t *testing.T) {
	files := fstest.MapFS{
		"1/1/1/index.md": &fstest.MapFile{Data: []byte(cleanPage)},
		"1/1/2/index.md": &fstest.MapFile{Data: []byte(quizWithoutExplanation)},
	}
	dsn := "file:" + filepath.Join(t.TempDir(), "catalog.db") + "?_fk=1"

	code, stdout, stderr := runCLI(t, files, "--dsn", dsn, "index")
	if code != exitOK {
		t.Fatalf("index: exit %d (stderr: %s)", code, stderr)
	}
	if !strings.Contains(stdout, "indexed 2 pages: 2 created") {
		t.Fatalf("unexpected index output %q", stdout)
	}

	code, stdout, stderr = runCLI(t, files, "--dsn", dsn, "toc", "--from-db", "--no-color")
	if code != exitOK {
		t.Fatalf("toc: exit %d (stderr: %s)", code, stderr)
	}
	if strings.Index(stdout, "1.1 Values") > strings.Index(stdout, "1.2 Types") {
		t.Fatalf("expected nav_weight order, got %q", stdout)
	}

	code, _, stderr = runCLI(t, files, "--dsn", dsn, "check", "--record")
	if code != exitOK {
		t.Fatalf("check --record: exit %d (stderr: %s)", code, stderr)
	}

	code, stdout, stderr = runCLI(t, files, "--dsn", dsn, "history", "--format", "json")
	if code != exitOK {
		t.Fatalf("history: exit %d (stderr: %s)", code, stderr)
	}
	var runs []map[string]any
	if err := json.Unmarshal([]byte(stdout), &runs); err != nil {
		t.Fatalf("decode history: %v\n%s", err, stdout)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one recorded run, got %d", len(runs))
	}
}

func TestRulesHonourConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookcheck.yaml")
	config := "rules:\n  severity:\n    quiz.explanation: \"off\"\n    quiz.questions: warning\n"
	if err := os.WriteFile(path, []byte(config), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	code, stdout, stderr := runCLI(t, fstest.MapFS{}, "--config", path, "rules", "--format", "json")
	if code != exitOK {
		t.Fatalf("rules: exit %d (stderr: %s)", code, stderr)
	}
	var rows []struct {
		ID       string `json:"id"`
		Severity string `json:"severity"`
		Enabled  bool   `json:"enabled"`
	}
	if err := json.Unmarshal([]byte(stdout), &rows); err != nil {
		t.Fatalf("decode rules: %v\n%s", err, stdout)
	}
	found := 0
	for _, row := range rows {
		switch row.ID {
		case "quiz.explanation":
			found++
			if row.Enabled {
				t.Fatal("expected quiz.explanation to be disabled")
			}
		case "quiz.questions":
			found++
			if row.Severity != "warning" {
				t.Fatalf("expected quiz.questions downgraded to warning, got %s", row.Severity)
			}
		}
	}
	if found != 2 {
		t.Fatalf("expected both rules in output, got %+v", rows)
	}
}

func TestMissingExplicitConfigFails(t *testing.T) {
	code, _, _ := runCLI(t, fstest.MapFS{}, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "rules")
	if code != exitError {
		t.Fatalf("expected exit %d, got %d", exitError, code)
	}
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, fstest.MapFS{}, "version")
	if code != exitOK || !strings.HasPrefix(stdout, "bookcheck ") {
		t.Fatalf("unexpected version output %q (exit %d)", stdout, code)
	}
}
