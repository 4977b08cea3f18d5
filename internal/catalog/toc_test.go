package catalog_test

import (
	"testing"

	"github.com/goliatone/go-bookcheck/internal/catalog"
)

func TestBuildTOC_OrdersByNavWeightAndNumbers(t *testing.T) {
	weight := func(v int) *int { return &v }
	pages := []*catalog.Page{
		{Path: "1/10/1/index.md", Book: "1", Chapter: "10", Section: "1", Grouping: "1/10", NavWeight: weight(10100)},
		{Path: "1/4/3/index.md", Book: "1", Chapter: "4", Section: "3", Grouping: "1/4"},
		{Path: "1/4/2/index.md", Book: "1", Chapter: "4", Section: "2", Grouping: "1/4", NavWeight: weight(4200), LinkTitle: "4.2 Loops"},
		{Path: "1/4/1/index.md", Book: "1", Chapter: "4", Section: "1", Grouping: "1/4", NavWeight: weight(4100), Title: "Basics"},
		{Path: "1/9/1/index.md", Book: "1", Chapter: "9", Section: "1", Grouping: "1/9", NavWeight: weight(9100)},
		{Path: "getting-started/index.md", Grouping: "."},
	}

	toc := catalog.BuildTOC(pages)
	if len(toc) != 2 {
		t.Fatalf("expected 2 books, got %d: %+v", len(toc), toc)
	}
	if toc[0].Book != "1" || toc[0].Label() != "Book 1" {
		t.Fatalf("expected numbered book first, got %+v", toc[0])
	}

	chapters := toc[0].Chapters
	if len(chapters) != 3 {
		t.Fatalf("expected 3 chapters, got %d", len(chapters))
	}
	got := []string{chapters[0].Chapter, chapters[1].Chapter, chapters[2].Chapter}
	want := []string{"4", "9", "10"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected chapters %v, got %v", want, got)
		}
	}

	entries := chapters[0].Entries
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries in chapter 4, got %d", len(entries))
	}
	if entries[0].Path != "1/4/1/index.md" || entries[1].Path != "1/4/2/index.md" || entries[2].Path != "1/4/3/index.md" {
		t.Fatalf("unexpected entry order %+v", entries)
	}
	if entries[0].Name() != "Basics" || entries[1].Name() != "4.2 Loops" || entries[2].Name() != "1/4/3/index.md" {
		t.Fatalf("unexpected entry names %q %q %q", entries[0].Name(), entries[1].Name(), entries[2].Name())
	}
	if chapters[0].Label() != "Chapter 4" {
		t.Fatalf("unexpected chapter label %q", chapters[0].Label())
	}

	if toc[1].Book != "" || len(toc[1].Chapters) != 1 || toc[1].Chapters[0].Entries[0].Path != "getting-started/index.md" {
		t.Fatalf("expected loose page in the unnamed book, got %+v", toc[1])
	}
}

func TestTOCBook_LabelTitleCasesNames(t *testing.T) {
	book := catalog.TOCBook{Book: "advanced-topics"}
	if got := book.Label(); got != "Advanced Topics" {
		t.Fatalf("expected title cased label, got %q", got)
	}
}
