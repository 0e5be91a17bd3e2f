package agent

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
)

var (
	mu       sync.Mutex
	attached atomic.Bool
	table    = newBindingTable()
	logger   = slog.Default()
)

// resolverBinding is the restorable state of net.DefaultResolver.
type resolverBinding struct {
	preferGo     bool
	strictErrors bool
	dial         func(ctx context.Context, network, address string) (net.Conn, error)
}

// Attach patches the process-wide network bindings. Idempotent; the agent
// stays attached for the life of the process unless Detach is called. The
// logger may be nil.
func Attach(log *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if attached.Load() {
		return
	}
	if log != nil {
		logger = log.With("component", "agent")
	}

	if table.record(bindingTransport, http.DefaultTransport) {
		http.DefaultTransport = &checkedTransport{original: http.DefaultTransport}
		logger.Debug("binding replaced", "binding", bindingTransport)
	}

	r := net.DefaultResolver
	if table.record(bindingResolver, resolverBinding{
		preferGo:     r.PreferGo,
		strictErrors: r.StrictErrors,
		dial:         r.Dial,
	}) {
		// PreferGo routes every lookup through Dial, where the outgoing
		// question can be inspected before it leaves the process.
		r.PreferGo = true
		r.Dial = checkedResolverDial(r.Dial)
		logger.Debug("binding replaced", "binding", bindingResolver)
	}

	attached.Store(true)
	logger.Debug("agent attached")
}

// Detach restores the original bindings. Idempotent. The cached check
// handle survives a detach; re-attaching does not require re-registration.
func Detach() {
	mu.Lock()
	defer mu.Unlock()
	if !attached.Load() {
		return
	}

	if original, ok := table.take(bindingTransport); ok {
		http.DefaultTransport = original.(http.RoundTripper)
	}
	if original, ok := table.take(bindingResolver); ok {
		binding := original.(resolverBinding)
		r := net.DefaultResolver
		r.PreferGo = binding.preferGo
		r.StrictErrors = binding.strictErrors
		r.Dial = binding.dial
	}

	attached.Store(false)
	logger.Debug("agent detached")
}

// Attached reports whether the agent's bindings are currently installed.
func Attached() bool {
	return attached.Load()
}
