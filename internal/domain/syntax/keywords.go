package syntax

import (
	"sort"
	"strings"
)

// keywords is the closed set of words that turn a preceding "(" into an
// operator bracket. Matching is case-insensitive and whole-word.
var keywords = map[string]bool{
	// structure
	"define": true, "domain": true, "problem": true,
	":domain": true, ":requirements": true, ":types": true, ":constants": true,
	":predicates": true, ":functions": true, ":constraints": true,
	":derived": true, ":action": true, ":durative-action": true,
	":process": true, ":event": true, ":objects": true, ":init": true,
	":goal": true, ":metric": true,

	// logic
	"and": true, "or": true, "not": true, "imply": true,
	"exists": true, "forall": true, "when": true, "either": true,

	// time
	"at": true, "over": true,

	// numeric
	"=": true, "<": true, ">": true, "<=": true, ">=": true,
	"+": true, "-": true, "*": true, "/": true,
	"assign": true, "increase": true, "decrease": true,
	"scale-up": true, "scale-down": true,
	"minimize": true, "maximize": true, "total-time": true,

	// constraints
	"always": true, "sometime": true, "within": true, "at-most-once": true,
	"sometime-after": true, "sometime-before": true, "always-within": true,
	"hold-during": true, "hold-after": true, "preference": true,
	"is-violated": true, "after": true, "strictly-after": true,

	// extensions
	"supply-demand": true,
}

// IsKeyword reports whether word is an operator keyword.
func IsKeyword(word string) bool {
	return keywords[strings.ToLower(word)]
}

// Keywords returns the operator keyword table, sorted.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := range keywords {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
