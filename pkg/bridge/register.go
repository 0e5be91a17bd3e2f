package bridge

import "github.com/airgaplab/airgap/pkg/agent"

// agentRegister adapts the agent's registration hook to the bridge's
// RegisterFunc. Safe to call when no agent is attached; the link failure it
// returns is recognized and ignored by the caller.
func agentRegister(check CheckFunc) error {
	return agent.Register(agent.CheckFunc(check))
}
