package bookcheck_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-bookcheck"
	"github.com/goliatone/go-bookcheck/internal/di"
	"github.com/goliatone/go-bookcheck/internal/lint"
	"github.com/goliatone/go-bookcheck/pkg/interfaces"
	"github.com/goliatone/go-bookcheck/pkg/testsupport"
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

Text.

` + "```js\nconst x = 1;\n```" + `

## Quiz Time!

{{< quizdown >}}
### Which keyword declares a constant?
- [x] const
- [ ] var

> **Explanation:** const bindings cannot be reassigned.
{{< /quizdown >}}
`

func newModule(t *testing.T, cfg bookcheck.Config, files fstest.MapFS) *bookcheck.Module {
	t.Helper()
	module, err := bookcheck.New(context.Background(), cfg, di.WithFS(files), di.WithLogWriter(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = module.Close() })
	return module
}

func TestModuleCheckCleanBook(t *testing.T) {
	module := newModule(t, bookcheck.DefaultConfig(), fstest.MapFS{
		"1/1/1/index.md": &fstest.MapFile{Data: []byte(cleanPage)},
	})

	result, err := module.Check(context.Background(), ".", bookcheck.CheckOptions{})
	require.NoError(t, err)
	require.NotNil(t, result.Report)
	assert.Equal(t, 1, result.Report.Pages)
	assert.Empty(t, result.Report.Issues)
	assert.False(t, result.Failed)
}

func TestModuleCheckFailOnOverride(t *testing.T) {
	module := newModule(t, bookcheck.DefaultConfig(), fstest.MapFS{
		"1/1/1/index.md": &fstest.MapFile{Data: []byte("# Missing header\n")},
	})

	result, err := module.Check(context.Background(), ".", bookcheck.CheckOptions{})
	require.NoError(t, err)
	assert.True(t, result.Failed)

	result, err = module.Check(context.Background(), ".", bookcheck.CheckOptions{FailOn: "never"})
	require.NoError(t, err)
	assert.False(t, result.Failed)
	assert.True(t, result.Report.HasErrors())
}

func TestModuleCatalogDisabled(t *testing.T) {
	module := newModule(t, bookcheck.DefaultConfig(), fstest.MapFS{})

	assert.False(t, module.CatalogEnabled())
	_, err := module.Index(context.Background(), ".")
	assert.True(t, errors.Is(err, bookcheck.ErrCatalogDisabled))
	_, err = module.History(context.Background(), 5)
	assert.True(t, errors.Is(err, bookcheck.ErrCatalogDisabled))
	_, err = module.TOC(context.Background(), ".", true)
	assert.True(t, errors.Is(err, bookcheck.ErrCatalogDisabled))
}

func TestModuleCatalogRoundTrip(t *testing.T) {
	cfg := bookcheck.DefaultConfig()
	cfg.Storage.Enabled = true
	cfg.Storage.DSN = testsupport.MemoryDSN()

	module := newModule(t, cfg, fstest.MapFS{
		"1/1/1/index.md": &fstest.MapFile{Data: []byte(cleanPage)},
	})
	ctx := context.Background()

	indexed, err := module.Index(ctx, ".")
	require.NoError(t, err)
	assert.Equal(t, []string{"1/1/1/index.md"}, indexed.Sync.Created)

	toc, err := module.TOC(ctx, ".", true)
	require.NoError(t, err)
	require.Len(t, toc, 1)
	require.Len(t, toc[0].Chapters, 1)
	require.Len(t, toc[0].Chapters[0].Entries, 1)
	assert.Equal(t, "1.1 Values", toc[0].Chapters[0].Entries[0].Name())

	fromDisk, err := module.TOC(ctx, ".", false)
	require.NoError(t, err)
	assert.Equal(t, toc[0].Chapters[0].Entries[0].Path, fromDisk[0].Chapters[0].Entries[0].Path)

	result, err := module.Check(ctx, ".", bookcheck.CheckOptions{Record: true})
	require.NoError(t, err)
	require.NotNil(t, result.Run)

	runs, err := module.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, result.Run.ID, runs[0].ID)
}

func TestModuleRuleOverrides(t *testing.T) {
	cfg := bookcheck.DefaultConfig()
	cfg.Rules.Severity = map[string]string{lint.RuleQuizExplanation: "error"}
	cfg.Rules.Disabled = []string{lint.RuleSnippetUnlabeled}

	module := newModule(t, cfg, fstest.MapFS{})

	assert.NotEmpty(t, module.Rules())
	assert.Equal(t, interfaces.SeverityError, module.RuleSeverity(lint.RuleQuizExplanation))
	assert.False(t, module.RuleEnabled(lint.RuleSnippetUnlabeled))
	assert.True(t, module.RuleEnabled(lint.RuleQuizAnswers))
}
