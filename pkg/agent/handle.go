package agent

import (
	"sync/atomic"

	"github.com/airgaplab/airgap/pkg/api"
)

// CheckFunc is the policy-check entry point exposed by the bridge. It
// returns nil when the host is allowed and *api.BlockedError when denied.
type CheckFunc func(host string, port int, caller string) error

// Caller labels passed to the check entry point so denials identify which
// interception path raised them.
const (
	CallerConnect = "agent-connect"
	CallerResolve = "agent-dns"
)

// checkHandle is the cached cross-boundary reference to the bridge's check
// entry point. Write-once-then-read-only; absent until Register is called.
var checkHandle atomic.Pointer[CheckFunc]

// Register caches the check entry point. Invoked by the bridge the first
// time managed code touches it. Returns api.ErrNotAttached when no agent is
// attached to this process; callers treat that as a recognizable link
// failure and retry later. Returns api.ErrAlreadyRegistered when the handle
// is already held: it is write-once, so a second bridge can never be
// consulted by the agent and must not believe it is.
func Register(check CheckFunc) error {
	if !attached.Load() {
		return api.ErrNotAttached
	}
	if check == nil {
		return nil
	}
	if !checkHandle.CompareAndSwap(nil, &check) {
		return api.ErrAlreadyRegistered
	}
	return nil
}

// checkConnection invokes the cached entry point. Without a registered
// handle every call degrades to a no-op allow.
func checkConnection(host string, port int, caller string) error {
	fn := checkHandle.Load()
	if fn == nil {
		return nil
	}
	return (*fn)(host, port, caller)
}
