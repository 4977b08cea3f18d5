package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-bookcheck/internal/logging"
	"github.com/goliatone/go-bookcheck/internal/quiz"
	"github.com/goliatone/go-bookcheck/internal/shortcode/parser"
	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

// Config controls how the Markdown service discovers and parses files.
type Config struct {
	BasePath  string
	Pattern   string
	Recursive bool
	Parser    interfaces.ParseOptions
}

// Service implements interfaces.PageLoader for filesystem-backed pages. Each
// loaded page is fully analysed: outline, shortcodes and quiz blocks.
type Service struct {
	cfg        Config
	loader     *Loader
	scanner    *GoldmarkScanner
	shortcodes interfaces.ShortcodeParser
	quizzes    *quiz.Parser
	logger     interfaces.Logger
}

// ServiceOption customises the service.
type ServiceOption func(*Service)

// WithShortcodeParser swaps the shortcode scanner.
func WithShortcodeParser(p interfaces.ShortcodeParser) ServiceOption {
	return func(s *Service) {
		if p != nil {
			s.shortcodes = p
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFS reads pages from filesystem instead of os.DirFS(BasePath).
func WithFS(filesystem fs.FS) ServiceOption {
	return func(s *Service) {
		if filesystem != nil {
			s.loader = NewLoader(filesystem, s.loaderConfig())
		}
	}
}

// NewService constructs a Markdown service rooted at cfg.BasePath.
func NewService(cfg Config, opts ...ServiceOption) (*Service, error) {
	s := &Service{
		cfg:        cfg,
		scanner:    NewGoldmarkScanner(cfg.Parser),
		shortcodes: parser.NewHugoParser(),
		quizzes:    quiz.NewParser(),
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	for _, name := range cfg.Parser.Extensions {
		if !KnownExtension(name) {
			s.logger.Warn("markdown.extension.unknown", "extension", name)
		}
	}

	if s.loader == nil {
		filesystem, err := prepareFilesystem(cfg.BasePath)
		if err != nil {
			return nil, err
		}
		s.loader = NewLoader(filesystem, s.loaderConfig())
	}
	return s, nil
}

var _ interfaces.PageLoader = (*Service)(nil)

// LoadFile reads and analyses a single page relative to the configured base path.
func (s *Service) LoadFile(ctx context.Context, path string) (*interfaces.ChapterPage, error) {
	result, err := s.loader.LoadFile(ctx, s.normalisePath(path))
	if err != nil {
		return nil, err
	}
	s.Analyze(result.Page)
	return result.Page, nil
}

// LoadDirectory reads every page within dir, ordered by path.
func (s *Service) LoadDirectory(ctx context.Context, dir string) ([]*interfaces.ChapterPage, error) {
	results, err := s.loader.LoadDirectory(ctx, s.normalisePath(dir))
	if err != nil {
		return nil, err
	}

	pages := make([]*interfaces.ChapterPage, 0, len(results))
	for _, result := range results {
		s.Analyze(result.Page)
		pages = append(pages, result.Page)
	}

	s.logger.Debug("markdown.directory.loaded", "dir", dir, "pages", len(pages))
	return pages, nil
}

// Matches reports whether rel names a page file under the configured pattern.
func (s *Service) Matches(rel string) bool {
	return s.loader.Matches(filepath.ToSlash(rel))
}

// Analyze fills the body derived fields of page. Lines are shifted so they
// point into the original file.
func (s *Service) Analyze(page *interfaces.ChapterPage) {
	if page == nil {
		return
	}

	outline := s.scanner.Scan(page.Body, page.BodyLine)
	page.Headings = outline.Headings
	page.Fences = outline.Fences

	shift := page.BodyLine - 1
	shortcodes, problems := s.shortcodes.Scan(string(page.Body))
	for i := range shortcodes {
		shortcodes[i].Line += shift
		shortcodes[i].EndLine += shift
		shortcodes[i].InnerLine += shift
	}
	for i := range problems {
		problems[i].Line += shift
	}
	page.Shortcodes = shortcodes
	page.Problems = problems

	page.Quizzes = nil
	for _, sc := range shortcodes {
		if sc.Name != quiz.ShortcodeName || !sc.Paired {
			continue
		}
		block := s.quizzes.Parse(sc.Inner, sc.InnerLine)
		block.Line = sc.Line
		block.EndLine = sc.EndLine
		page.Quizzes = append(page.Quizzes, block)
	}

	s.logger.Trace("markdown.page.analyzed",
		"page_path", page.Path,
		"headings", len(page.Headings),
		"fences", len(page.Fences),
		"quizzes", len(page.Quizzes),
	)
}

func (s *Service) loaderConfig() LoaderConfig {
	return LoaderConfig{
		BasePath:  s.cfg.BasePath,
		Pattern:   s.cfg.Pattern,
		Recursive: s.cfg.Recursive,
	}
}

func (s *Service) normalisePath(path string) string {
	if strings.TrimSpace(path) == "" {
		return "."
	}
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) && strings.TrimSpace(s.cfg.BasePath) != "" {
		if rel, err := filepath.Rel(s.cfg.BasePath, clean); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(clean)
}

func prepareFilesystem(basePath string) (fs.FS, error) {
	if strings.TrimSpace(basePath) == "" {
		basePath = "."
	}
	if _, err := os.Stat(basePath); err != nil {
		return nil, fmt.Errorf("markdown service: stat base path %s: %w", basePath, err)
	}
	return os.DirFS(basePath), nil
}
