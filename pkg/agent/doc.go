// Package agent intercepts network attempts at the lowest process-wide
// bindings every default-configured client library flows through:
// http.DefaultTransport for socket connects and net.DefaultResolver for
// hostname resolution. Attach records the original binding in a guarded
// table and installs a wrapper; the wrapper consults the policy-check entry
// point registered by the bridge and otherwise delegates to the original.
//
// The check entry point is a write-once handle. Until the bridge registers
// it, wrappers allow everything; an agent that never links to a bridge is a
// no-op, not an error.
package agent
