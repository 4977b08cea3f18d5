package lint

import (
	"sort"

	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

// Rule identifiers. They are stable: config files and lint_ignore refer to them.
const (
	RuleFrontMatterPresent         = "frontmatter.present"
	RuleFrontMatterParse           = "frontmatter.parse"
	RuleFrontMatterRequired        = "frontmatter.required"
	RuleFrontMatterSchema          = "frontmatter.schema"
	RuleFrontMatterRecommended     = "frontmatter.recommended"
	RuleFrontMatterDate            = "frontmatter.date"
	RuleFrontMatterCanonicalBase   = "frontmatter.canonical-base"
	RuleFrontMatterCanonicalUnique = "frontmatter.canonical-unique"
	RulePathConvention             = "path.convention"
	RulePathLinkTitle              = "path.link-title"
	RuleNavWeightScheme            = "nav.weight-scheme"
	RuleNavWeightUnique            = "nav.weight-unique"
	RuleQuizBalanced               = "quiz.balanced"
	RuleQuizPresent                = "quiz.present"
	RuleQuizHeading                = "quiz.heading"
	RuleQuizHeader                 = "quiz.header"
	RuleQuizQuestions              = "quiz.questions"
	RuleQuizAnswers                = "quiz.answers"
	RuleQuizExplanation            = "quiz.explanation"
	RuleQuizDuplicate              = "quiz.duplicate"
	RuleSnippetSyntax              = "snippet.syntax"
	RuleSnippetMermaid             = "snippet.mermaid"
	RuleSnippetUnlabeled           = "snippet.unlabeled"
	RuleShortcodeUnknown           = "shortcode.unknown"
	RuleShortcodeParams            = "shortcode.params"
	RuleShortcodeBalanced          = "shortcode.balanced"
)

// Scope tells whether a rule looks at one page or at the whole page set.
type Scope string

const (
	ScopePage Scope = "page"
	ScopeSite Scope = "site"
)

// RuleInfo documents a rule and its default severity.
type RuleInfo struct {
	ID          string              `json:"id"`
	Severity    interfaces.Severity `json:"severity"`
	Scope       Scope               `json:"scope"`
	Description string              `json:"description"`
}

var registry = map[string]RuleInfo{}

func register(id string, severity interfaces.Severity, scope Scope, description string) {
	registry[id] = RuleInfo{ID: id, Severity: severity, Scope: scope, Description: description}
}

func init() {
	register(RuleFrontMatterPresent, interfaces.SeverityError, ScopePage, "page starts with a non-empty --- delimited YAML header")
	register(RuleFrontMatterParse, interfaces.SeverityError, ScopePage, "front matter YAML parses")
	register(RuleFrontMatterRequired, interfaces.SeverityError, ScopePage, "required keys are present and non-empty")
	register(RuleFrontMatterSchema, interfaces.SeverityError, ScopePage, "front matter values have the expected types and formats")
	register(RuleFrontMatterRecommended, interfaces.SeverityWarning, ScopePage, "recommended keys are present")
	register(RuleFrontMatterDate, interfaces.SeverityWarning, ScopePage, "date parses as a date")
	register(RuleFrontMatterCanonicalBase, interfaces.SeverityWarning, ScopePage, "canonical starts with the configured base URL")
	register(RuleFrontMatterCanonicalUnique, interfaces.SeverityError, ScopeSite, "no two pages share a canonical URL")
	register(RulePathConvention, interfaces.SeverityWarning, ScopePage, "path follows <book>/<chapter>/<section>/index.md with numeric segments")
	register(RulePathLinkTitle, interfaces.SeverityWarning, ScopePage, "linkTitle starts with <chapter>.<section>")
	register(RuleNavWeightScheme, interfaces.SeverityInfo, ScopePage, "nav_weight equals chapter*1000 + section*100")
	register(RuleNavWeightUnique, interfaces.SeverityError, ScopeSite, "nav_weight is unique within a book/chapter")
	register(RuleQuizBalanced, interfaces.SeverityError, ScopePage, "every quizdown block is closed, nothing is nested or stray")
	register(RuleQuizPresent, interfaces.SeverityWarning, ScopePage, "page has a quizdown block")
	register(RuleQuizHeading, interfaces.SeverityWarning, ScopePage, "the quiz heading precedes the first quizdown block")
	register(RuleQuizHeader, interfaces.SeverityWarning, ScopePage, "quizdown YAML header parses")
	register(RuleQuizQuestions, interfaces.SeverityError, ScopePage, "a quizdown block contains at least one question")
	register(RuleQuizAnswers, interfaces.SeverityError, ScopePage, "each question has a [x] and a [ ] option")
	register(RuleQuizExplanation, interfaces.SeverityWarning, ScopePage, "each question has an Explanation blockquote")
	register(RuleQuizDuplicate, interfaces.SeverityWarning, ScopePage, "questions are not repeated within a page")
	register(RuleSnippetSyntax, interfaces.SeverityWarning, ScopePage, "JavaScript and TypeScript fences parse")
	register(RuleSnippetMermaid, interfaces.SeverityWarning, ScopePage, "Mermaid fences name a diagram type and balance brackets")
	register(RuleSnippetUnlabeled, interfaces.SeverityInfo, ScopePage, "fenced code blocks name a language")
	register(RuleShortcodeUnknown, interfaces.SeverityWarning, ScopePage, "shortcodes are built in or listed under shortcodes.known")
	register(RuleShortcodeParams, interfaces.SeverityWarning, ScopePage, "shortcode parameters and closing tags match the definition")
	register(RuleShortcodeBalanced, interfaces.SeverityError, ScopePage, "paired shortcodes other than quizdown are closed and properly nested")
}

// Rules returns every known rule ordered by ID.
func Rules() []RuleInfo {
	out := make([]RuleInfo, 0, len(registry))
	for _, info := range registry {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LookupRule returns the rule registered under id.
func LookupRule(id string) (RuleInfo, bool) {
	info, ok := registry[id]
	return info, ok
}
