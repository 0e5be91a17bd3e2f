package policy

import "strings"

// Matches reports whether host matches a policy pattern. Matching is
// case-insensitive and supports exactly three forms:
//
//	"*"              matches every host
//	"*.example.com"  matches any host ending in ".example.com";
//	                 the bare "example.com" is not matched by this form
//	anything else    exact string equality
//
// A pattern that uses "*" anywhere else degrades to a literal exact
// comparison. Since hostnames never contain "*", a malformed pattern can
// never silently match everything.
func Matches(host, pattern string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	pattern = strings.ToLower(strings.TrimSpace(pattern))

	if pattern == "*" {
		return true
	}

	if strings.HasPrefix(pattern, "*.") && !strings.Contains(pattern[2:], "*") {
		suffix := pattern[1:] // ".example.com"
		return strings.HasSuffix(host, suffix)
	}

	return host == pattern
}

// matchesAny reports whether host matches any of the given patterns and
// returns the first pattern that matched.
func matchesAny(host string, patterns []string) (string, bool) {
	for _, p := range patterns {
		if Matches(host, p) {
			return p, true
		}
	}
	return "", false
}
