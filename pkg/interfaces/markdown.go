package interfaces

import (
	"context"
	"path"
	"time"
)

// ParseOptions toggles the goldmark extensions used when scanning page
// bodies. Names match the CLI/config spelling ("gfm", "tasklist", ...).
type ParseOptions struct {
	Extensions []string
}

// PageLoader discovers Chapter Pages beneath a content root.
type PageLoader interface {
	LoadFile(ctx context.Context, path string) (*ChapterPage, error)
	LoadDirectory(ctx context.Context, dir string) ([]*ChapterPage, error)
}

// ChapterPage is a single Markdown file of the book: front matter, body and
// everything extracted from the body that the rule set inspects.
type ChapterPage struct {
	// Path is slash separated and relative to the content root.
	Path string
	// Book, Chapter and Section come from <book>/<chapter>/<section>/index.md.
	// They stay empty when the path does not follow that layout.
	Book    string
	Chapter string
	Section string

	FrontMatter FrontMatter
	// FrontMatterError records why the header could not be parsed. The page
	// is still returned so the remaining rules can run.
	FrontMatterError error
	HasFrontMatter   bool

	Body     []byte
	BodyLine int

	Headings   []Heading
	Fences     []Fence
	Shortcodes []ParsedShortcode
	Problems   []ShortcodeProblem
	Quizzes    []QuizBlock

	Checksum []byte
	Modified time.Time
}

// Grouping returns the book/chapter key used for nav_weight uniqueness.
// Pages outside the path convention group by their grandparent directory,
// so a chapter landing page 1/4/index.md sits with the book 1.
func (p *ChapterPage) Grouping() string {
	if p == nil {
		return ""
	}
	if p.Book != "" && p.Chapter != "" {
		return p.Book + "/" + p.Chapter
	}
	return path.Dir(path.Dir(p.Path))
}

// FrontMatter holds the keys of the chapter header. Raw keeps every key,
// normalised to JSON compatible values, so schema validation sees exactly
// what the author wrote.
type FrontMatter struct {
	Canonical   string
	Title       string
	Description string
	LinkTitle   string
	Categories  []string
	Tags        []string
	Date        time.Time
	DateRaw     string
	Type        string
	NavWeight   *int
	License     string
	LintIgnore  []string

	Raw     map[string]any
	Present map[string]bool
	// Lines maps top level keys to the file line they are declared on.
	Lines map[string]int
}

// Has reports whether key appeared in the header.
func (fm FrontMatter) Has(key string) bool {
	return fm.Present[key]
}

// Line returns the file line of key, or 1 when unknown.
func (fm FrontMatter) Line(key string) int {
	if line, ok := fm.Lines[key]; ok && line > 0 {
		return line
	}
	return 1
}

// Heading is an ATX or setext heading found in the body.
type Heading struct {
	Level int
	Text  string
	Line  int
}

// Fence is a fenced code block.
type Fence struct {
	Language string
	Info     string
	Line     int
	Code     string
}

// QuizBlock is the parsed content of one quizdown shortcode.
type QuizBlock struct {
	Line    int
	EndLine int
	// Options is the optional YAML header of the block (shuffleAnswers, ...).
	Options     map[string]any
	HeaderError error
	Questions   []Question
}

// Question is a "### ..." entry of a quiz.
type Question struct {
	Text           string
	Slug           string
	Line           int
	Options        []QuizOption
	Explanation    string
	HasExplanation bool
}

// CorrectCount returns how many options are marked [x].
func (q Question) CorrectCount() int {
	n := 0
	for _, opt := range q.Options {
		if opt.Marked && opt.Correct {
			n++
		}
	}
	return n
}

// IncorrectCount returns how many options are marked [ ].
func (q Question) IncorrectCount() int {
	n := 0
	for _, opt := range q.Options {
		if opt.Marked && !opt.Correct {
			n++
		}
	}
	return n
}

// QuizOption is one list item of a question. Marked is false for items
// without a "[x]" / "[ ]" checkbox.
type QuizOption struct {
	Text    string
	Marked  bool
	Correct bool
	Line    int
}
