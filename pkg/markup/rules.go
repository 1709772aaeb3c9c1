package markup

import (
	"regexp"
)

// Rule is a single substitution step of the prose pipeline.
// Every match of Pattern is replaced by Replacement, which may reference
// capture groups ("$1").
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

func (r Rule) apply(text string) string {
	return r.Pattern.ReplaceAllString(text, r.Replacement)
}

var (
	lineEndings = regexp.MustCompile(`\r\n?`)

	// An optional single-token info string ("```go") directly followed by a
	// line break belongs to the opening fence, not to the code.
	fencedBlock = regexp.MustCompile("(?s)```(?:[\\w+#.-]*[ \\t]*\\n)?(.*?)```")

	blankRuns = regexp.MustCompile(`\n{3,}`)
)

// proseRules run in order over the text outside fenced code blocks.
// Line anchored rules only consume horizontal blanks so a prefix can never
// swallow the line break that follows it.
var proseRules = []Rule{
	{
		// Before emphasis: "***" or "* * *" would otherwise lose markers to the
		// italic rule and leave a stray "*" behind.
		Name:    "horizontal-rule",
		Pattern: regexp.MustCompile(`(?m)^(?:(?:-[ \t]*){3,}|(?:\*[ \t]*){3,})$`),
	},
	{
		Name:        "bold",
		Pattern:     regexp.MustCompile(`\*\*(.*?)\*\*`),
		Replacement: "$1",
	},
	{
		// The opening marker must touch a non-blank so "* item" stays a bullet
		// and "2 * 3 * 4" stays arithmetic.
		Name:        "italic",
		Pattern:     regexp.MustCompile(`\*([^\s*](?:.*?[^\s*])?)\*`),
		Replacement: "$1",
	},
	{
		Name:    "heading",
		Pattern: regexp.MustCompile(`(?m)^#{1,6}[ \t]+`),
	},
	{
		Name:    "bullet",
		Pattern: regexp.MustCompile(`(?m)^[*+•-][ \t]+`),
	},
	{
		Name:    "ordered",
		Pattern: regexp.MustCompile(`(?m)^\d+\.[ \t]+`),
	},
	{
		Name:        "inline-code",
		Pattern:     regexp.MustCompile("`([^`\n]*)`"),
		Replacement: "$1",
	},
	{
		Name:        "link",
		Pattern:     regexp.MustCompile(`\[([^\]\n]+)\]\([^)\n]+\)`),
		Replacement: "$1",
	},
	{
		Name:    "blockquote",
		Pattern: regexp.MustCompile(`(?m)^>[ \t]+`),
	},
}

// DefaultRules returns a copy of the built-in prose rules in pipeline order.
func DefaultRules() []Rule {
	out := make([]Rule, len(proseRules))
	copy(out, proseRules)
	return out
}
