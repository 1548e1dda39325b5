package domain

import "regexp"

// AliasRule maps a header pattern to a canonical column name. Rules are
// evaluated in slice order and the first match wins, so the slice order is
// the priority order.
type AliasRule struct {
	Pattern   *regexp.Regexp
	Canonical string
}

// DefaultAliasRules returns the ordered alias table for known bibliographic
// export headers. Matching is case-insensitive and substring-based: a header
// that contains the concept word anywhere maps to the canonical name.
// Priority: title, then authors, then year, then the remaining canonical
// columns.
func DefaultAliasRules() []AliasRule {
	return []AliasRule{
		{Pattern: regexp.MustCompile(`(?i)title`), Canonical: ColTitle},
		{Pattern: regexp.MustCompile(`(?i)authors`), Canonical: ColAuthors},
		{Pattern: regexp.MustCompile(`(?i)year`), Canonical: ColYear},
		{Pattern: regexp.MustCompile(`(?i)^doi$`), Canonical: ColDOI},
		{Pattern: regexp.MustCompile(`(?i)keywords`), Canonical: ColKeywords},
		{Pattern: regexp.MustCompile(`(?i)abstract`), Canonical: ColAbstract},
	}
}

// ResolveColumn returns the canonical name for a raw header, or the header
// unchanged when no rule matches.
func ResolveColumn(header string, rules []AliasRule) (string, bool) {
	for _, rule := range rules {
		if rule.Pattern.MatchString(header) {
			return rule.Canonical, true
		}
	}
	return header, false
}
