package markdown

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

// DefaultPattern matches the chapter page file name.
const DefaultPattern = "index.md"

// LoaderConfig configures how chapter pages are discovered within a base directory.
type LoaderConfig struct {
	// BasePath is the root directory where the book content lives.
	BasePath string
	// Pattern limits discovered files to those matching the supplied glob (defaults to "index.md").
	Pattern string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
}

// Loader turns filesystem paths into chapter pages with their front matter.
type Loader struct {
	fs        fs.FS
	basePath  string
	pattern   string
	recursive bool
}

// NewLoader constructs a Loader using the provided filesystem and configuration.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := cfg.Pattern
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultPattern
	}

	return &Loader{
		fs:        filesystem,
		basePath:  filepath.Clean(cfg.BasePath),
		pattern:   pattern,
		recursive: cfg.Recursive,
	}
}

// LoadFile reads a single page. Front matter problems are recorded on the
// page instead of failing the load.
func (l *Loader) LoadFile(ctx context.Context, path string) (*PageResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	rel, err := l.makeRelative(path)
	if err != nil {
		return nil, err
	}
	rel = filepath.ToSlash(rel)

	data, err := fs.ReadFile(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", rel, err)
	}

	info, err := fs.Stat(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("markdown loader stat %s: %w", rel, err)
	}

	return &PageResult{
		Page:   BuildPage(rel, data, info.ModTime()),
		Source: data,
	}, nil
}

// LoadDirectory discovers pages under dir and returns them ordered by path.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) ([]*PageResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	root, err := l.makeRelative(dir)
	if err != nil {
		return nil, err
	}
	root = filepath.ToSlash(filepath.Clean(root))

	var results []*PageResult

	walkErr := fs.WalkDir(l.fs, root, func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() {
			if !l.shouldRecurse(root, current) {
				return fs.SkipDir
			}
			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if !l.Matches(current) {
			return nil
		}

		result, err := l.LoadFile(ctx, current)
		if err != nil {
			return err
		}
		results = append(results, result)
		return nil
	})

	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Page.Path < results[j].Page.Path
	})

	return results, nil
}

// Matches reports whether the slash separated path is a page file.
func (l *Loader) Matches(rel string) bool {
	pattern := filepath.ToSlash(l.pattern)
	if strings.Contains(pattern, "**") {
		pattern = strings.ReplaceAll(pattern, "**/", "")
	}
	target := path.Base(rel)
	if strings.Contains(pattern, "/") {
		target = rel
	}
	match, err := path.Match(pattern, target)
	if err != nil {
		return false
	}
	return match
}

func (l *Loader) shouldRecurse(root, current string) bool {
	if l.recursive {
		return true
	}
	return path.Clean(root) == path.Clean(current)
}

func (l *Loader) makeRelative(p string) (string, error) {
	clean := filepath.Clean(p)
	if !filepath.IsAbs(clean) {
		return clean, nil
	}
	if l.basePath == "" || l.basePath == "." {
		return "", fmt.Errorf("markdown loader: absolute path %s provided without base path", p)
	}
	rel, err := filepath.Rel(l.basePath, clean)
	if err != nil {
		return "", fmt.Errorf("markdown loader: make relative %s: %w", p, err)
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("markdown loader: %s is outside %s", p, l.basePath)
	}
	return rel, nil
}

// PageResult carries the loaded page along with the raw source.
type PageResult struct {
	Page   *interfaces.ChapterPage
	Source []byte
}

// BuildPage assembles a ChapterPage from the raw file. Only the front matter
// and the path are interpreted; body analysis is left to the Service.
func BuildPage(rel string, source []byte, modified time.Time) *interfaces.ChapterPage {
	rel = filepath.ToSlash(rel)
	book, chapter, section := SplitPagePath(rel)

	page := &interfaces.ChapterPage{
		Path:           rel,
		Book:           book,
		Chapter:        chapter,
		Section:        section,
		HasFrontMatter: HasFrontMatter(source),
		Modified:       modified,
		BodyLine:       1,
	}

	fm, body, bodyLine, err := ParseFrontMatter(source)
	page.FrontMatter = fm
	page.FrontMatterError = err
	page.Body = body
	if bodyLine > 0 {
		page.BodyLine = bodyLine
	}

	sum := sha256.Sum256(source)
	page.Checksum = sum[:]
	return page
}

// SplitPagePath reads book, chapter and section from the last four segments
// of <book>/<chapter>/<section>/index.md. Shorter paths return empty values.
func SplitPagePath(rel string) (book, chapter, section string) {
	segments := strings.Split(strings.Trim(filepath.ToSlash(rel), "/"), "/")
	if len(segments) < 4 {
		return "", "", ""
	}
	n := len(segments)
	return segments[n-4], segments[n-3], segments[n-2]
}
