package bridge

import (
	"encoding/base64"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/airgaplab/airgap/internal/errx"
	"github.com/airgaplab/airgap/pkg/policy"
)

// PolicyEnv is the environment variable carrying a policy snapshot into
// spawned child test processes.
const PolicyEnv = "AIRGAP_POLICY"

// envelope is the wire form of a policy handoff. The session ID ties audit
// events of the child process back to the spawning run.
type envelope struct {
	SessionID    string   `cbor:"session_id"`
	AllowedHosts []string `cbor:"allowed_hosts,omitempty"`
	BlockedHosts []string `cbor:"blocked_hosts,omitempty"`
}

// EncodeEnv serializes a policy snapshot for handoff through PolicyEnv.
// Returns the encoded value and the session ID stamped into it.
func EncodeEnv(conf *policy.Configuration) (encoded, sessionID string, err error) {
	sessionID = uuid.New().String()
	raw, err := cbor.Marshal(&envelope{
		SessionID:    sessionID,
		AllowedHosts: conf.AllowedHosts(),
		BlockedHosts: conf.BlockedHosts(),
	})
	if err != nil {
		return "", "", errx.Wrap(ErrEncodeHandoff, err)
	}
	return base64.StdEncoding.EncodeToString(raw), sessionID, nil
}

// DecodeEnv parses a handoff value produced by EncodeEnv.
func DecodeEnv(encoded string) (*policy.Configuration, string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", errx.Wrap(ErrDecodeHandoff, err)
	}
	var env envelope
	if err := cbor.Unmarshal(raw, &env); err != nil {
		return nil, "", errx.Wrap(ErrDecodeHandoff, err)
	}
	return policy.NewConfiguration(env.AllowedHosts, env.BlockedHosts), env.SessionID, nil
}

// AdoptFromEnv installs the policy snapshot from PolicyEnv, if one is
// present. An undecodable snapshot is fail-open: the child runs without a
// policy rather than crashing, and the problem is logged. Reports whether a
// policy was adopted.
func (b *Bridge) AdoptFromEnv() bool {
	encoded := os.Getenv(PolicyEnv)
	if encoded == "" {
		return false
	}
	conf, sessionID, err := DecodeEnv(encoded)
	if err != nil {
		b.logger.Warn("ignoring undecodable policy handoff", "error", err)
		return false
	}
	b.logger.Debug("adopted policy from environment", "session_id", sessionID)
	b.Set(conf)
	return true
}
