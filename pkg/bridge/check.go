package bridge

import (
	"fmt"
	"net"
	"net/url"
	"runtime"
	"strings"

	"github.com/airgaplab/airgap/pkg/api"
	"github.com/airgaplab/airgap/pkg/logging"
)

// CheckConnection resolves the active policy and evaluates host against it.
// No active policy allows the connection. A denial returns *api.BlockedError
// carrying host, port, caller label and a caller stack snippet; callers
// propagate it unmodified so the failure surfaces at the network call site.
func (b *Bridge) CheckConnection(host string, port int, caller string) error {
	conf := b.Current()
	if conf == nil {
		return nil
	}

	host = stripPort(host)
	verdict := conf.Evaluate(host)

	if b.emitter != nil {
		_ = b.emitter.Emit(logging.EventGateDecision,
			fmt.Sprintf("%s:%d %s", host, port, decision(verdict.Allowed)), caller,
			&logging.GateDecisionData{
				Host:    host,
				Port:    port,
				Allowed: verdict.Allowed,
				Reason:  verdict.Reason,
				Pattern: verdict.Pattern,
			})
	}

	if verdict.Allowed {
		return nil
	}

	blockedErr := &api.BlockedError{
		Host:    host,
		Port:    port,
		Caller:  caller,
		Pattern: verdict.Pattern,
		Stack:   captureStack(3),
	}

	b.logger.Warn("connection blocked",
		"host", host,
		"port", port,
		"caller", caller,
		"reason", verdict.Reason,
	)
	if b.emitter != nil {
		eventType := logging.EventConnectionBlocked
		if port == api.PortDNS {
			eventType = logging.EventResolveBlocked
		}
		_ = b.emitter.Emit(eventType, blockedErr.Error(), caller,
			&logging.BlockedData{
				Host:    host,
				Port:    port,
				Caller:  caller,
				Pattern: blockedErr.Pattern,
			})
	}
	if b.blocked != nil {
		b.blocked(blockedErr)
	}
	return blockedErr
}

// CheckURL checks the host of a URL-based request. A URL that does not
// parse, or parses without a hostname, is allowed: refusing to parse must
// never break the host application.
func (b *Bridge) CheckURL(rawURL string, caller string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return nil
	}

	err = b.CheckConnection(u.Hostname(), urlPort(u), caller)
	if blockedErr, ok := err.(*api.BlockedError); ok {
		blockedErr.URL = rawURL
	}
	return err
}

// stripPort drops a trailing :port from a host string when one is present.
// Bare IPv6 literals contain colons but never parse as host:port.
func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func urlPort(u *url.URL) int {
	switch p := u.Port(); p {
	case "":
		switch strings.ToLower(u.Scheme) {
		case "https":
			return 443
		case "http":
			return 80
		default:
			return 0
		}
	default:
		var port int
		fmt.Sscanf(p, "%d", &port)
		return port
	}
}

func decision(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "blocked"
}

// captureStack formats a short caller stack snippet for the blocked-error
// diagnostics, skipping the bridge's own frames.
func captureStack(skip int) string {
	pcs := make([]uintptr, 12)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
