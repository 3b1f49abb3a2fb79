package cacheengine

import (
	"strings"

	"github.com/gobwas/glob"
)

// compilePattern turns a key pattern into a total match predicate.
//
// Two wildcard forms are supported:
//
//   - a trailing `*` after a purely literal prefix matches any suffix,
//     so "customer:*" clears every key under "customer:";
//   - anywhere else, `*` matches a single `:`-separated segment and `**`
//     matches across segments, per glob semantics with `:` as separator.
//
// The prefix fast path also keeps tenant-scoped clears off the glob
// matcher entirely.
func compilePattern(pattern string) (func(string) bool, error) {
	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		if !strings.ContainsAny(prefix, `*?[]{}\`) {
			return func(key string) bool {
				return strings.HasPrefix(key, prefix)
			}, nil
		}
	}

	g, err := glob.Compile(pattern, ':')
	if err != nil {
		return nil, err
	}
	return g.Match, nil
}
