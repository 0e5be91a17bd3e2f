package policy

import (
	"slices"
	"strings"
)

// Configuration is the immutable policy value governing one test's network
// access. It is constructed fresh per test, superseded (never mutated) on
// test rollover, and compared by value.
type Configuration struct {
	allowedHosts []string
	blockedHosts []string
	generation   uint64
}

// Verdict is the outcome of evaluating a host against a Configuration.
type Verdict struct {
	Allowed bool
	Reason  string
	Pattern string // the pattern that decided the verdict, when one did
}

// NewConfiguration builds a Configuration from pattern lists. Patterns are
// lowercased, trimmed, deduplicated and sorted so that configurations built
// from the same logical inputs compare equal.
func NewConfiguration(allowedHosts, blockedHosts []string) *Configuration {
	return &Configuration{
		allowedHosts: normalize(allowedHosts),
		blockedHosts: normalize(blockedHosts),
	}
}

func normalize(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// WithGeneration returns a copy stamped with the given generation tag.
// The receiver is left untouched.
func (c *Configuration) WithGeneration(gen uint64) *Configuration {
	out := *c
	out.generation = gen
	return &out
}

// Generation returns the configuration epoch this value belongs to.
func (c *Configuration) Generation() uint64 {
	return c.generation
}

// AllowedHosts returns a copy of the normalized allow-list.
func (c *Configuration) AllowedHosts() []string {
	return slices.Clone(c.allowedHosts)
}

// BlockedHosts returns a copy of the normalized block-list.
func (c *Configuration) BlockedHosts() []string {
	return slices.Clone(c.blockedHosts)
}

// Equal reports value equality, generation included.
func (c *Configuration) Equal(other *Configuration) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.generation == other.generation &&
		slices.Equal(c.allowedHosts, other.allowedHosts) &&
		slices.Equal(c.blockedHosts, other.blockedHosts)
}

// IsAllowed reports whether a host may be reached under this configuration.
// Blocked patterns are checked first and always win. With no block hit, the
// host must match the allow-list; an empty allow-list denies everything
// (callers wanting "deny nothing" put "*" in the allow-list).
func (c *Configuration) IsAllowed(host string) bool {
	return c.Evaluate(host).Allowed
}

// Evaluate is IsAllowed with the deciding pattern and a reason attached,
// for diagnostics and audit events.
func (c *Configuration) Evaluate(host string) Verdict {
	if pattern, ok := matchesAny(host, c.blockedHosts); ok {
		return Verdict{Allowed: false, Reason: "host matches blocked pattern", Pattern: pattern}
	}
	if pattern, ok := matchesAny(host, c.allowedHosts); ok {
		return Verdict{Allowed: true, Pattern: pattern}
	}
	return Verdict{Allowed: false, Reason: "host not in allowlist"}
}
