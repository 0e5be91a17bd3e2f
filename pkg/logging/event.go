package logging

import (
	"encoding/json"
	"time"
)

// Event is one line of the blocking audit stream. Required fields:
// Timestamp, SessionID, EventType, Summary. Optional fields use omitempty.
type Event struct {
	Timestamp time.Time       `json:"ts"`
	SessionID string          `json:"session_id"`
	EventType string          `json:"event_type"`
	Summary   string          `json:"summary"`
	Caller    string          `json:"caller,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Event type constants.
const (
	EventGateDecision      = "gate_decision"
	EventConnectionBlocked = "connection_blocked"
	EventResolveBlocked    = "resolve_blocked"
	EventInstall           = "install"
	EventUninstall         = "uninstall"
)

// GateDecisionData is the payload for gate_decision events.
type GateDecisionData struct {
	Host    string `json:"host"`
	Port    int    `json:"port"`
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Pattern string `json:"pattern,omitempty"`
}

// BlockedData is the payload for connection_blocked and resolve_blocked
// events.
type BlockedData struct {
	Host    string `json:"host"`
	Port    int    `json:"port"`
	Caller  string `json:"caller"`
	Pattern string `json:"pattern,omitempty"`
	URL     string `json:"url,omitempty"`
}

// LifecycleData is the payload for install and uninstall events.
type LifecycleData struct {
	Generation   uint64 `json:"generation"`
	AllowedHosts int    `json:"allowed_hosts"`
	BlockedHosts int    `json:"blocked_hosts"`
}
