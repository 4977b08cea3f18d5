package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"

	"github.com/goliatone/go-bookcheck/internal/catalog"
	"github.com/goliatone/go-bookcheck/internal/lint"
	"github.com/goliatone/go-bookcheck/pkg/interfaces"
	"github.com/goliatone/go-bookcheck/pkg/testsupport"
)

func TestCatalogRepositories_WithBunAndCache(t *testing.T) {
	ctx := context.Background()

	bunDB, err := testsupport.NewBunMemoryDB(ctx, catalog.Models()...)
	if err != nil {
		t.Fatalf("new bun db: %v", err)
	}
	t.Cleanup(func() { _ = bunDB.Close() })

	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	cacheSvc, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		t.Fatalf("cache service: %v", err)
	}
	keySerializer := repocache.NewDefaultKeySerializer()

	now := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	svc := catalog.NewService(
		catalog.NewBunPageRepositoryWithCache(bunDB, cacheSvc, keySerializer),
		catalog.NewBunRunRepositoryWithCache(bunDB, cacheSvc, keySerializer),
		catalog.WithNow(func() time.Time { return now }),
	)

	pages := []*interfaces.ChapterPage{
		chapterPage("1/4/2/index.md", 4200, "b"),
		chapterPage("1/4/1/index.md", 4100, "a"),
	}
	if _, err := svc.Sync(ctx, pages); err != nil {
		t.Fatalf("sync: %v", err)
	}

	if _, err := svc.Page(ctx, "1/4/2/index.md"); err != nil {
		t.Fatalf("first get page: %v", err)
	}
	if _, err := svc.Page(ctx, "1/4/2/index.md"); err != nil {
		t.Fatalf("cached get page: %v", err)
	}

	changed := chapterPage("1/4/2/index.md", 4250, "b2")
	result, err := svc.Sync(ctx, []*interfaces.ChapterPage{changed, pages[1]})
	if err != nil {
		t.Fatalf("resync: %v", err)
	}
	if len(result.Updated) != 1 || result.Unchanged != 1 {
		t.Fatalf("unexpected resync result %+v", result)
	}

	updated, err := svc.Page(ctx, "1/4/2/index.md")
	if err != nil {
		t.Fatalf("get updated page: %v", err)
	}
	if updated.NavWeight == nil || *updated.NavWeight != 4250 {
		t.Fatalf("expected nav_weight 4250 after update, got %+v", updated.NavWeight)
	}

	toc, err := svc.TOC(ctx)
	if err != nil {
		t.Fatalf("toc: %v", err)
	}
	if len(toc) != 1 || len(toc[0].Chapters) != 1 || len(toc[0].Chapters[0].Entries) != 2 {
		t.Fatalf("unexpected toc %+v", toc)
	}
	if toc[0].Chapters[0].Entries[0].Path != "1/4/1/index.md" {
		t.Fatalf("expected 1/4/1 first, got %+v", toc[0].Chapters[0].Entries)
	}

	report := &lint.Report{
		RunID:     uuid.NewString(),
		Root:      "content",
		StartedAt: now,
		Duration:  250 * time.Millisecond,
		Pages:     2,
		Issues: []interfaces.Issue{
			{Rule: "quiz.explanation", Severity: interfaces.SeverityWarning, Path: "1/4/1/index.md", Line: 20, Message: "question has no explanation"},
		},
	}
	run, err := svc.RecordRun(ctx, report, interfaces.SeverityError)
	if err != nil {
		t.Fatalf("record run: %v", err)
	}
	if run.Failed {
		t.Fatalf("warnings must not fail an error threshold run")
	}

	stored, err := svc.Run(ctx, run.ID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if len(stored.Issues) != 1 || stored.Issues[0].Severity != interfaces.SeverityWarning {
		t.Fatalf("expected issues to round trip, got %+v", stored.Issues)
	}

	runs, err := svc.Runs(ctx, 5)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != run.ID {
		t.Fatalf("unexpected run history %+v", runs)
	}

	_, err = svc.Run(ctx, uuid.New())
	var notFound *catalog.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
