package blocker

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"syscall"

	"github.com/airgaplab/airgap/internal/errx"
	"github.com/airgaplab/airgap/pkg/api"
	"github.com/airgaplab/airgap/pkg/bridge"
	"github.com/airgaplab/airgap/pkg/policy"
)

// CallerDialer labels denials raised from the dialer control hook.
const CallerDialer = "dialer-control"

// DialerBlocker is the connection-permission variant for stacks that build
// their own dialers instead of going through the process-wide bindings. It
// plants a ControlContext check on the supplied dialer, which every connect
// attempt passes before the socket leaves the process.
//
// Control hooks run after resolution, so the checked host is the resolved
// address. Hostname-pattern policies rely on the agent's resolver path;
// this variant enforces exact and "*" patterns against addresses.
type DialerBlocker struct {
	mu        sync.Mutex
	installed bool
	dialer    *net.Dialer
	prior     func(ctx context.Context, network, address string, c syscall.RawConn) error
	bridge    *bridge.Bridge
	logger    *slog.Logger
}

// NewDialerBlocker creates a blocker that guards the given dialer.
func NewDialerBlocker(dialer *net.Dialer, b *bridge.Bridge, logger *slog.Logger) *DialerBlocker {
	if logger == nil {
		logger = slog.Default()
	}
	return &DialerBlocker{
		dialer: dialer,
		bridge: b,
		logger: logger.With("component", "blocker"),
	}
}

func (d *DialerBlocker) target() *bridge.Bridge {
	if d.bridge != nil {
		return d.bridge
	}
	return bridge.Default()
}

// Install replaces the dialer's control hook and publishes the
// configuration. Fails loudly when no dialer was supplied: silently not
// blocking would defeat the blocker for this test. No-op when installed.
func (d *DialerBlocker) Install(conf *policy.Configuration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.installed {
		return nil
	}
	if d.dialer == nil {
		return errx.With(api.ErrInstall, ": no dialer to guard")
	}

	br := d.target()
	d.prior = d.dialer.ControlContext
	prior := d.prior
	d.dialer.ControlContext = func(ctx context.Context, network, address string, c syscall.RawConn) error {
		host, port := splitAddress(address)
		if err := br.CheckConnection(host, port, CallerDialer); err != nil {
			return err
		}
		if prior != nil {
			return prior(ctx, network, address, c)
		}
		return nil
	}
	br.Set(conf)
	d.installed = true
	return nil
}

// Uninstall restores the prior control hook and clears the configuration.
// No-op when not installed.
func (d *DialerBlocker) Uninstall() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.installed {
		return nil
	}
	d.dialer.ControlContext = d.prior
	d.prior = nil
	d.target().Clear()
	d.installed = false
	return nil
}

// splitAddress parses a dial address into host and port, tolerating a bare
// host with no port.
func splitAddress(address string) (string, int) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return address, 0
	}
	port := 0
	for _, c := range portStr {
		if c < '0' || c > '9' {
			return host, 0
		}
		port = port*10 + int(c-'0')
	}
	return host, port
}
