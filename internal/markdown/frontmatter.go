package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/spf13/cast"

	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

const delimiter = "---"

var (
	// ErrFrontMatterUnterminated is returned when the opening delimiter has no
	// closing counterpart.
	ErrFrontMatterUnterminated = errors.New("markdown: front matter is not closed by ---")
	utf8BOM                    = []byte("\ufeff")
)

// HasFrontMatter reports whether source opens with a "---" delimiter line.
func HasFrontMatter(source []byte) bool {
	source = bytes.TrimPrefix(source, utf8BOM)
	line, _, _ := bytes.Cut(source, []byte("\n"))
	return strings.TrimSpace(string(line)) == delimiter
}

// ParseFrontMatter extracts metadata and Markdown body content from the
// provided source bytes. It returns the structured front matter, the body
// without delimiters and the 1-based file line the body starts on.
//
// Source without a header yields an empty FrontMatter and the whole source as
// body. A header that fails to parse still yields the body so callers can
// keep checking the rest of the page.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, int, error) {
	empty := interfaces.FrontMatter{Raw: map[string]any{}, Present: map[string]bool{}, Lines: map[string]int{}}

	if !HasFrontMatter(source) {
		return empty, source, 1, nil
	}

	header, body, bodyLine, ok := splitHeader(bytes.TrimPrefix(source, utf8BOM))
	if !ok {
		return empty, nil, 1, ErrFrontMatterUnterminated
	}

	raw := map[string]any{}
	if _, err := frontmatter.Parse(bytes.NewReader(header), &raw); err != nil {
		return empty, body, bodyLine, fmt.Errorf("parse frontmatter: %w", err)
	}

	fm := toFrontMatter(normalizeMap(raw))
	fm.Lines = keyLines(header)
	return fm, body, bodyLine, nil
}

// keyLines records the line of every top level "key:" in header. The header
// starts on line 1 of the file.
func keyLines(header []byte) map[string]int {
	lines := map[string]int{}
	for i, line := range strings.Split(string(header), "\n") {
		if line == "" || line[0] == ' ' || line[0] == '\t' || line[0] == '-' || line[0] == '#' {
			continue
		}
		key, _, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.Trim(strings.TrimSpace(key), `"'`)
		if key == "" {
			continue
		}
		if _, seen := lines[key]; !seen {
			lines[key] = i + 1
		}
	}
	return lines
}

// splitHeader returns the header including both delimiters, the body that
// follows it and the line the body starts on.
func splitHeader(source []byte) ([]byte, []byte, int, bool) {
	pos := 0
	line := 0
	for pos < len(source) {
		end := bytes.IndexByte(source[pos:], '\n')
		next := len(source)
		current := source[pos:]
		if end >= 0 {
			current = source[pos : pos+end]
			next = pos + end + 1
		}
		line++
		if line > 1 && strings.TrimSpace(string(current)) == delimiter {
			header := append(append([]byte(nil), source[:next]...), '\n')
			return header, source[next:], line + 1, true
		}
		pos = next
	}
	return nil, nil, 0, false
}

func toFrontMatter(raw map[string]any) interfaces.FrontMatter {
	fm := interfaces.FrontMatter{
		Raw:     raw,
		Present: make(map[string]bool, len(raw)),
	}
	for key := range raw {
		fm.Present[key] = true
	}

	fm.Canonical = stringValue(raw["canonical"])
	fm.Title = stringValue(raw["title"])
	fm.Description = stringValue(raw["description"])
	fm.LinkTitle = stringValue(raw["linkTitle"])
	fm.Type = stringValue(raw["type"])
	fm.License = stringValue(raw["license"])
	fm.Categories = stringSlice(raw["categories"])
	fm.Tags = stringSlice(raw["tags"])
	fm.LintIgnore = stringSlice(raw["lint_ignore"])

	if value, ok := raw["date"]; ok && value != nil {
		fm.DateRaw = strings.TrimSpace(cast.ToString(value))
		if parsed, err := cast.ToTimeE(value); err == nil {
			fm.Date = parsed
		}
	}

	if weight, ok := navWeight(raw["nav_weight"]); ok {
		fm.NavWeight = &weight
	}

	return fm
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case map[string]any, []any:
		return ""
	default:
		return strings.TrimSpace(cast.ToString(v))
	}
}

func stringSlice(value any) []string {
	if value == nil {
		return nil
	}
	values, err := cast.ToStringSliceE(value)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// navWeight accepts integer YAML values only; quoted numbers are left for
// schema validation to flag.
func navWeight(value any) (int, bool) {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return cast.ToInt(v), true
	case float64:
		if v == math.Trunc(v) {
			return int(v), true
		}
	case float32:
		if float64(v) == math.Trunc(float64(v)) {
			return int(v), true
		}
	}
	return 0, false
}

// normalizeMap converts YAML decoder output into JSON compatible values:
// nested maps get string keys and timestamps become RFC3339 strings.
func normalizeMap(input map[string]any) map[string]any {
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = normalizeValue(value)
	}
	return out
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return normalizeMap(v)
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return v
	}
}
