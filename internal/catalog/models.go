package catalog

import (
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

// Page is the catalog row of a Chapter Page.
type Page struct {
	bun.BaseModel `bun:"table:chapter_pages,alias:cp"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Path      string    `bun:"path,notnull,unique" json:"path"`
	Book      string    `bun:"book" json:"book,omitempty"`
	Chapter   string    `bun:"chapter" json:"chapter,omitempty"`
	Section   string    `bun:"section" json:"section,omitempty"`
	Grouping  string    `bun:"grouping" json:"grouping"`
	Title     string    `bun:"title" json:"title,omitempty"`
	LinkTitle string    `bun:"link_title" json:"link_title,omitempty"`
	Canonical string    `bun:"canonical" json:"canonical,omitempty"`
	Type      string    `bun:"type" json:"type,omitempty"`
	NavWeight *int      `bun:"nav_weight" json:"nav_weight,omitempty"`
	Quizzes   int       `bun:"quizzes,notnull,default:0" json:"quizzes"`
	Questions int       `bun:"questions,notnull,default:0" json:"questions"`
	Fences    int       `bun:"fences,notnull,default:0" json:"fences"`
	Checksum  string    `bun:"checksum,notnull" json:"checksum"`
	Modified  time.Time `bun:"modified_at,nullzero" json:"modified_at,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Run is a persisted check run.
type Run struct {
	bun.BaseModel `bun:"table:check_runs,alias:cr"`

	ID         uuid.UUID          `bun:",pk,type:uuid" json:"id"`
	Root       string             `bun:"root" json:"root,omitempty"`
	StartedAt  time.Time          `bun:"started_at,notnull" json:"started_at"`
	DurationMS int64              `bun:"duration_ms,notnull,default:0" json:"duration_ms"`
	Pages      int                `bun:"pages,notnull,default:0" json:"pages"`
	Errors     int                `bun:"errors,notnull,default:0" json:"errors"`
	Warnings   int                `bun:"warnings,notnull,default:0" json:"warnings"`
	Infos      int                `bun:"infos,notnull,default:0" json:"infos"`
	Failed     bool               `bun:"failed,notnull,default:false" json:"failed"`
	Issues     []interfaces.Issue `bun:"issues,type:jsonb" json:"issues,omitempty"`
	CreatedAt  time.Time          `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Models lists the bun models owned by the catalog, in creation order.
func Models() []any {
	return []any{
		(*Page)(nil),
		(*Run)(nil),
	}
}

// FromChapterPage projects a loaded page onto its catalog row. ID and
// timestamps are left for the service to fill.
func FromChapterPage(page *interfaces.ChapterPage) *Page {
	if page == nil {
		return nil
	}
	fm := page.FrontMatter
	record := &Page{
		Path:      page.Path,
		Book:      page.Book,
		Chapter:   page.Chapter,
		Section:   page.Section,
		Grouping:  page.Grouping(),
		Title:     fm.Title,
		LinkTitle: fm.LinkTitle,
		Canonical: fm.Canonical,
		Type:      fm.Type,
		Quizzes:   len(page.Quizzes),
		Fences:    len(page.Fences),
		Checksum:  hex.EncodeToString(page.Checksum),
		Modified:  page.Modified,
	}
	if fm.NavWeight != nil {
		weight := *fm.NavWeight
		record.NavWeight = &weight
	}
	for _, block := range page.Quizzes {
		record.Questions += len(block.Questions)
	}
	return record
}

func clonePage(page *Page) *Page {
	if page == nil {
		return nil
	}
	cloned := *page
	if page.NavWeight != nil {
		weight := *page.NavWeight
		cloned.NavWeight = &weight
	}
	return &cloned
}

func cloneRun(run *Run) *Run {
	if run == nil {
		return nil
	}
	cloned := *run
	if run.Issues != nil {
		cloned.Issues = append([]interfaces.Issue(nil), run.Issues...)
	}
	return &cloned
}
