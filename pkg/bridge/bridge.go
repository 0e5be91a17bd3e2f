// Package bridge holds the active network policy for the process and
// answers "is this host allowed right now?" on behalf of every interception
// path. It is the managed side of the agent boundary: the agent's wrappers
// reach it only through the check entry point registered at first touch.
package bridge

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/timandy/routine"

	"github.com/airgaplab/airgap/pkg/api"
	"github.com/airgaplab/airgap/pkg/logging"
	"github.com/airgaplab/airgap/pkg/policy"
)

// CheckFunc is the signature of the policy-check entry point consumed by the
// interception agent. Port api.PortDNS marks a hostname-resolution check.
type CheckFunc func(host string, port int, caller string) error

// RegisterFunc links a CheckFunc to the agent. It returns api.ErrNotAttached
// when no agent is attached to the process; the bridge treats that as lack
// of interest, not as a failure.
type RegisterFunc func(CheckFunc) error

// stamped pairs a configuration with the generation counter value observed
// when it was written to the goroutine-local slot.
type stamped struct {
	conf *policy.Configuration
	gen  uint64
}

// Bridge stores the active policy with per-goroutine inheritance plus a
// globally published fallback. The read path (Current, CheckConnection) is
// lock-free; writes happen once per test start and end.
type Bridge struct {
	current    atomic.Pointer[policy.Configuration]
	generation atomic.Uint64
	slot       routine.ThreadLocal[*stamped]

	registered     atomic.Bool
	registerDenied atomic.Bool
	register       RegisterFunc

	logger  *slog.Logger
	emitter *logging.Emitter
	blocked func(*api.BlockedError)
}

// Option customizes a Bridge.
type Option func(*Bridge)

// WithEmitter attaches an audit event emitter. A nil emitter disables audit
// events.
func WithEmitter(e *logging.Emitter) Option {
	return func(b *Bridge) { b.emitter = e }
}

// WithBlockedHook registers a callback invoked for every denied attempt,
// after the audit event is emitted. Used to persist violations.
func WithBlockedHook(hook func(*api.BlockedError)) Option {
	return func(b *Bridge) { b.blocked = hook }
}

// WithRegistration overrides the agent registration hook, which defaults to
// the process-wide agent. Passing nil disables registration entirely.
func WithRegistration(fn RegisterFunc) Option {
	return func(b *Bridge) { b.register = fn }
}

// New creates a Bridge wired to the process-wide agent. The logger may be
// nil.
func New(logger *slog.Logger, opts ...Option) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bridge{
		slot:     routine.NewInheritableThreadLocal[*stamped](),
		logger:   logger.With("component", "bridge"),
		register: agentRegister,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var (
	defaultBridge *Bridge
	defaultOnce   sync.Once
)

// Default returns the single process-wide bridge; the agent boundary forces
// one well-known instance. Every touch retries agent registration until it
// links, so it does not matter whether the agent attaches before or after
// the first touch. An unattached agent is ignored.
func Default() *Bridge {
	defaultOnce.Do(func() {
		defaultBridge = New(nil)
	})
	defaultBridge.ensureRegistered()
	return defaultBridge
}

// ensureRegistered hands the check entry point to the agent once. Retried on
// every touch until it links, so attach order does not matter. A handle
// already held by another bridge is permanent; that is surfaced once and
// never retried.
func (b *Bridge) ensureRegistered() {
	if b.register == nil || b.registered.Load() || b.registerDenied.Load() {
		return
	}
	if err := b.register(b.CheckConnection); err != nil {
		if errors.Is(err, api.ErrAlreadyRegistered) {
			if b.registerDenied.CompareAndSwap(false, true) {
				b.logger.Warn("agent is linked to another bridge; this bridge will not be consulted", "error", err)
			}
			return
		}
		// Not attached: degrade gracefully, retry on the next touch.
		return
	}
	b.registered.Store(true)
	b.logger.Debug("check entry point registered with agent")
}

// Set stamps conf with the current generation, stores it as the calling
// goroutine's local value and publishes it as the global current value.
// Worker goroutines spawned afterwards via Go inherit the local value.
func (b *Bridge) Set(conf *policy.Configuration) {
	b.ensureRegistered()
	gen := b.generation.Load()
	stampedConf := conf.WithGeneration(gen)
	b.slot.Set(&stamped{conf: stampedConf, gen: gen})
	b.current.Store(stampedConf)

	b.logger.Debug("configuration set",
		"generation", gen,
		"allowed", len(stampedConf.AllowedHosts()),
		"blocked", len(stampedConf.BlockedHosts()),
	)
	if b.emitter != nil {
		_ = b.emitter.Emit(logging.EventInstall, "network policy installed", "",
			&logging.LifecycleData{
				Generation:   gen,
				AllowedHosts: len(stampedConf.AllowedHosts()),
				BlockedHosts: len(stampedConf.BlockedHosts()),
			})
	}
}

// Clear removes the calling goroutine's local value, clears the global
// current value and increments the generation counter. The single increment
// invalidates every local copy inherited from the cleared configuration:
// pool goroutines kept alive across tests fall through to the now-empty
// global value on their next read and stop blocking.
func (b *Bridge) Clear() {
	b.slot.Remove()
	b.current.Store(nil)
	gen := b.generation.Add(1)

	b.logger.Debug("configuration cleared", "generation", gen)
	if b.emitter != nil {
		_ = b.emitter.Emit(logging.EventUninstall, "network policy cleared", "",
			&logging.LifecycleData{Generation: gen})
	}
}

// Current resolves the authoritative configuration for the calling
// goroutine: the local value when its stamp matches the current generation,
// otherwise the globally published value. Returns nil when no policy is
// active.
func (b *Bridge) Current() *policy.Configuration {
	if st := b.slot.Get(); st != nil && st.gen == b.generation.Load() {
		return st.conf
	}
	return b.current.Load()
}

// Generation returns the current configuration epoch.
func (b *Bridge) Generation() uint64 {
	return b.generation.Load()
}

// Go spawns a worker goroutine that inherits the caller's configuration
// value at spawn time. Goroutines started with a plain go statement do not
// inherit the local slot and see only the globally published value.
func (b *Bridge) Go(fn func()) {
	routine.Go(fn)
}

// String describes the bridge state for debugging.
func (b *Bridge) String() string {
	conf := b.Current()
	if conf == nil {
		return fmt.Sprintf("bridge(generation=%d, no policy)", b.Generation())
	}
	return fmt.Sprintf("bridge(generation=%d, allowed=%d, blocked=%d)",
		b.Generation(), len(conf.AllowedHosts()), len(conf.BlockedHosts()))
}
