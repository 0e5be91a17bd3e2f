package api

import (
	"fmt"
)

// PortDNS marks a denial raised from the hostname-resolution path,
// where no destination port exists yet.
const PortDNS = -1

// BlockedError is the single failure type raised for every denied network
// attempt, regardless of which interception path produced it. Test
// assertions should rely on errors.Is(err, ErrBlocked) rather than on the
// concrete path that triggered the denial.
type BlockedError struct {
	Host    string
	Port    int
	Caller  string
	URL     string // optional, set for URL-based checks
	Pattern string // optional, the policy pattern that matched
	Stack   string // optional, caller stack snippet captured at denial
}

func (e *BlockedError) Error() string {
	var msg string
	if e.Port == PortDNS {
		msg = fmt.Sprintf("%v: DNS resolution of %q", ErrBlocked, e.Host)
	} else {
		msg = fmt.Sprintf("%v: connection to %q port %d", ErrBlocked, e.Host, e.Port)
	}
	if e.Caller != "" {
		msg += fmt.Sprintf(" (caller: %s)", e.Caller)
	}
	if e.Pattern != "" {
		msg += fmt.Sprintf(" (blocked pattern: %q)", e.Pattern)
	}
	return msg
}

func (e *BlockedError) Unwrap() error {
	return ErrBlocked
}
