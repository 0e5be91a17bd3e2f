package blocker

import (
	"log/slog"
	"sync"

	"github.com/airgaplab/airgap/pkg/agent"
	"github.com/airgaplab/airgap/pkg/bridge"
	"github.com/airgaplab/airgap/pkg/policy"
)

// AgentBlocker backs the agent-attached platform. The agent's bindings are
// process-wide and stay active once attached, so activation is nothing more
// than publishing the test's policy through the bridge.
type AgentBlocker struct {
	mu        sync.Mutex
	installed bool
	bridge    *bridge.Bridge
	logger    *slog.Logger
}

// NewAgentBlocker creates the agent-backed blocker. A nil bridge selects
// the process-wide default; a nil logger selects slog.Default().
func NewAgentBlocker(b *bridge.Bridge, logger *slog.Logger) *AgentBlocker {
	if logger == nil {
		logger = slog.Default()
	}
	return &AgentBlocker{
		bridge: b,
		logger: logger.With("component", "blocker"),
	}
}

func (a *AgentBlocker) target() *bridge.Bridge {
	if a.bridge != nil {
		return a.bridge
	}
	return bridge.Default()
}

// Install attaches the agent (first time only, process-wide) and publishes
// the configuration. No-op when already installed.
func (a *AgentBlocker) Install(conf *policy.Configuration) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.installed {
		return nil
	}
	agent.Attach(a.logger)
	a.target().Set(conf)
	a.installed = true
	return nil
}

// Uninstall clears the configuration. The agent stays attached; with no
// policy published its wrappers allow everything. No-op when not installed.
func (a *AgentBlocker) Uninstall() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.installed {
		return nil
	}
	a.target().Clear()
	a.installed = false
	return nil
}
