package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

// checkSite runs the rules that compare pages with each other. Every page
// taking part in a clash gets its own issue naming the others.
func (c *Checker) checkSite(pages []*interfaces.ChapterPage) []interfaces.Issue {
	var issues []interfaces.Issue
	if c.Enabled(RuleNavWeightUnique) {
		issues = append(issues, c.checkNavWeights(pages)...)
	}
	if c.Enabled(RuleFrontMatterCanonicalUnique) {
		issues = append(issues, c.checkCanonicals(pages)...)
	}
	return issues
}

func (c *Checker) checkNavWeights(pages []*interfaces.ChapterPage) []interfaces.Issue {
	groups := map[string]map[int][]*interfaces.ChapterPage{}
	for _, page := range pages {
		if page == nil || page.FrontMatter.NavWeight == nil {
			continue
		}
		key := page.Grouping()
		if groups[key] == nil {
			groups[key] = map[int][]*interfaces.ChapterPage{}
		}
		weight := *page.FrontMatter.NavWeight
		groups[key][weight] = append(groups[key][weight], page)
	}

	var issues []interfaces.Issue
	for group, weights := range groups {
		for weight, clashing := range weights {
			if len(clashing) < 2 {
				continue
			}
			for _, page := range clashing {
				issues = c.appendSiteIssue(issues, RuleNavWeightUnique, page, page.FrontMatter.Line("nav_weight"),
					fmt.Sprintf("nav_weight %d is also used in %s by %s", weight, group, strings.Join(otherPaths(page, clashing), ", ")))
			}
		}
	}
	return issues
}

func (c *Checker) checkCanonicals(pages []*interfaces.ChapterPage) []interfaces.Issue {
	byURL := map[string][]*interfaces.ChapterPage{}
	for _, page := range pages {
		if page == nil {
			continue
		}
		key := canonicalKey(page.FrontMatter.Canonical)
		if key == "" {
			continue
		}
		byURL[key] = append(byURL[key], page)
	}

	var issues []interfaces.Issue
	for _, clashing := range byURL {
		if len(clashing) < 2 {
			continue
		}
		for _, page := range clashing {
			issues = c.appendSiteIssue(issues, RuleFrontMatterCanonicalUnique, page, page.FrontMatter.Line("canonical"),
				fmt.Sprintf("canonical %q is also used by %s", page.FrontMatter.Canonical, strings.Join(otherPaths(page, clashing), ", ")))
		}
	}
	return issues
}

func (c *Checker) appendSiteIssue(issues []interfaces.Issue, rule string, page *interfaces.ChapterPage, line int, message string) []interfaces.Issue {
	if ignoredRules(page)[rule] {
		return issues
	}
	return append(issues, interfaces.Issue{
		Rule:     rule,
		Severity: c.Severity(rule),
		Path:     page.Path,
		Line:     line,
		Message:  message,
	})
}

// canonicalKey treats URLs that differ only by a trailing slash or the
// host case as the same page.
func canonicalKey(canonical string) string {
	canonical = strings.TrimSuffix(strings.TrimSpace(canonical), "/")
	scheme, rest, ok := strings.Cut(canonical, "://")
	if !ok {
		return canonical
	}
	host, path, _ := strings.Cut(rest, "/")
	key := strings.ToLower(scheme) + "://" + strings.ToLower(host)
	if path != "" {
		key += "/" + path
	}
	return key
}

func otherPaths(page *interfaces.ChapterPage, pages []*interfaces.ChapterPage) []string {
	out := make([]string, 0, len(pages)-1)
	for _, other := range pages {
		if other != page {
			out = append(out, other.Path)
		}
	}
	sort.Strings(out)
	return out
}
