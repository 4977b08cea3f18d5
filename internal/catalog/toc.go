package catalog

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TOCBook is one top level directory of the content tree.
type TOCBook struct {
	Book     string       `json:"book"`
	Chapters []TOCChapter `json:"chapters"`
}

// Label renders the book heading: "Book 1" for numbered directories and a
// title cased name otherwise.
func (b TOCBook) Label() string {
	return label("Book", b.Book)
}

// TOCChapter groups the sections sharing a nav_weight scope.
type TOCChapter struct {
	Grouping string     `json:"grouping"`
	Chapter  string     `json:"chapter"`
	Entries  []TOCEntry `json:"entries"`
}

// Label renders the chapter heading.
func (c TOCChapter) Label() string {
	return label("Chapter", c.Chapter)
}

// TOCEntry is a single page in reading order.
type TOCEntry struct {
	Path      string `json:"path"`
	Section   string `json:"section,omitempty"`
	Title     string `json:"title,omitempty"`
	LinkTitle string `json:"link_title,omitempty"`
	NavWeight *int   `json:"nav_weight,omitempty"`
}

// Name prefers the link title, then the title, then the path.
func (e TOCEntry) Name() string {
	switch {
	case strings.TrimSpace(e.LinkTitle) != "":
		return e.LinkTitle
	case strings.TrimSpace(e.Title) != "":
		return e.Title
	default:
		return e.Path
	}
}

// BuildTOC orders pages into books and chapters. Books and chapters sort
// with numeric awareness so 10 follows 9. Entries sort by nav_weight, pages
// without one last, then by path.
func BuildTOC(pages []*Page) []TOCBook {
	books := map[string]*TOCBook{}
	chapters := map[string]*TOCChapter{}
	var bookOrder []string

	for _, page := range pages {
		if page == nil {
			continue
		}
		bookName, chapterName := placement(page)
		book, ok := books[bookName]
		if !ok {
			book = &TOCBook{Book: bookName}
			books[bookName] = book
			bookOrder = append(bookOrder, bookName)
		}
		chapter, ok := chapters[page.Grouping]
		if !ok {
			chapter = &TOCChapter{Grouping: page.Grouping, Chapter: chapterName}
			chapters[page.Grouping] = chapter
		}
		chapter.Entries = append(chapter.Entries, TOCEntry{
			Path:      page.Path,
			Section:   page.Section,
			Title:     page.Title,
			LinkTitle: page.LinkTitle,
			NavWeight: page.NavWeight,
		})
	}

	sort.Slice(bookOrder, func(i, j int) bool {
		return compareNatural(bookOrder[i], bookOrder[j]) < 0
	})

	byBook := map[string][]*TOCChapter{}
	for _, chapter := range chapters {
		bookName := strings.SplitN(chapter.Grouping, "/", 2)[0]
		if _, ok := books[bookName]; !ok {
			bookName = ""
		}
		byBook[bookName] = append(byBook[bookName], chapter)
	}

	out := make([]TOCBook, 0, len(bookOrder))
	for _, name := range bookOrder {
		book := books[name]
		list := byBook[name]
		sort.Slice(list, func(i, j int) bool {
			return compareNatural(list[i].Grouping, list[j].Grouping) < 0
		})
		for _, chapter := range list {
			sortEntries(chapter.Entries)
			book.Chapters = append(book.Chapters, *chapter)
		}
		out = append(out, *book)
	}
	return out
}

// placement returns the book and chapter a page is listed under.
func placement(page *Page) (string, string) {
	if page.Book != "" {
		return page.Book, page.Chapter
	}
	grouping := strings.Trim(page.Grouping, "/")
	if grouping == "" || grouping == "." {
		return "", ""
	}
	book, chapter, _ := strings.Cut(grouping, "/")
	return book, chapter
}

func sortEntries(entries []TOCEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.NavWeight != nil && b.NavWeight != nil && *a.NavWeight != *b.NavWeight:
			return *a.NavWeight < *b.NavWeight
		case a.NavWeight != nil && b.NavWeight == nil:
			return true
		case a.NavWeight == nil && b.NavWeight != nil:
			return false
		}
		return compareNatural(a.Path, b.Path) < 0
	})
}

// compareNatural compares slash separated paths segment by segment, numeric
// segments by value.
func compareNatural(a, b string) int {
	as := strings.Split(a, "/")
	bs := strings.Split(b, "/")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] == bs[i] {
			continue
		}
		an, aErr := strconv.Atoi(as[i])
		bn, bErr := strconv.Atoi(bs[i])
		switch {
		case aErr == nil && bErr == nil:
			if an != bn {
				if an < bn {
					return -1
				}
				return 1
			}
		case aErr == nil:
			return -1
		case bErr == nil:
			return 1
		}
		return strings.Compare(as[i], bs[i])
	}
	return len(as) - len(bs)
}

func label(kind, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return kind
	}
	if _, err := strconv.Atoi(name); err == nil {
		return kind + " " + name
	}
	return cases.Title(language.English).String(strings.NewReplacer("-", " ", "_", " ").Replace(name))
}
