// Package blocker provides the installable lifecycle objects that activate
// and deactivate network interception for one test. All variants share the
// bridge's blocked-then-allowed decision function; they differ only in the
// interception point the platform offers.
package blocker

import (
	"log/slog"

	"github.com/airgaplab/airgap/pkg/bridge"
	"github.com/airgaplab/airgap/pkg/policy"
)

// Blocker activates interception for one test with Install and restores the
// prior state with Uninstall. Implementations are two-state machines with
// idempotent transitions: a second Install or Uninstall in a row is a no-op.
type Blocker interface {
	Install(conf *policy.Configuration) error
	Uninstall() error
}

// NewDefault returns the blocker for the standard platform, backed by the
// process-wide interception agent. The substitute variants (DialerBlocker,
// ClientBlocker) serve stacks that bypass the process-wide bindings.
func NewDefault(b *bridge.Bridge, logger *slog.Logger) Blocker {
	return NewAgentBlocker(b, logger)
}
