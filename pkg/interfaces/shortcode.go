package interfaces

// ShortcodeParser extracts shortcode invocations from page bodies. Scan
// never stops at the first problem; balance issues are returned alongside
// every invocation it could pair.
type ShortcodeParser interface {
	Scan(content string) ([]ParsedShortcode, []ShortcodeProblem)
}

// ParsedShortcode captures a shortcode invocation. Offsets are byte offsets
// into the scanned content; lines are 1-based and relative to it as well.
type ParsedShortcode struct {
	Name   string
	Params map[string]any
	Inner  string

	// Paired is false for self-closing invocations.
	Paired     bool
	Start      int
	End        int
	InnerStart int
	Line       int
	EndLine    int
	InnerLine  int
}

// ShortcodeProblemKind classifies a balance problem.
type ShortcodeProblemKind string

const (
	ShortcodeUnterminated ShortcodeProblemKind = "unterminated"
	ShortcodeUnexpected   ShortcodeProblemKind = "unexpected_close"
	ShortcodeMismatched   ShortcodeProblemKind = "mismatched_close"
	ShortcodeNested       ShortcodeProblemKind = "nested"
)

// ShortcodeProblem reports an opening tag without closer, a stray closer,
// or a closer that does not match the innermost open tag.
type ShortcodeProblem struct {
	Kind    ShortcodeProblemKind
	Name    string
	Line    int
	Message string
}
