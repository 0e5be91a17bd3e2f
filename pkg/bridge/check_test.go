package bridge

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airgaplab/airgap/pkg/api"
	"github.com/airgaplab/airgap/pkg/logging"
	"github.com/airgaplab/airgap/pkg/policy"
)

// captureSink records events in memory.
type captureSink struct {
	mu     sync.Mutex
	events []*logging.Event
}

func (s *captureSink) Write(event *logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *captureSink) Close() error { return nil }

func (s *captureSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.EventType
	}
	return out
}

func TestCheckConnection_NoPolicyAllows(t *testing.T) {
	b := newTestBridge()

	assert.NoError(t, b.CheckConnection("blocked.test", 443, "test"))
}

func TestCheckConnection_DeniedHost(t *testing.T) {
	b := newTestBridge()
	b.Set(policy.NewConfiguration([]string{"localhost"}, nil))

	err := b.CheckConnection("blocked.test", 443, "agent-connect")
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrBlocked))

	var blockedErr *api.BlockedError
	require.ErrorAs(t, err, &blockedErr)
	assert.Equal(t, "blocked.test", blockedErr.Host)
	assert.Equal(t, 443, blockedErr.Port)
	assert.Equal(t, "agent-connect", blockedErr.Caller)
	assert.NotEmpty(t, blockedErr.Stack, "diagnostics carry the caller stack")
	assert.Contains(t, err.Error(), `"blocked.test"`)
	assert.Contains(t, err.Error(), "443")
}

func TestCheckConnection_BlockedPatternRecorded(t *testing.T) {
	b := newTestBridge()
	b.Set(policy.NewConfiguration([]string{"*"}, []string{"*.blocked.test"}))

	err := b.CheckConnection("api.blocked.test", 80, "test")

	var blockedErr *api.BlockedError
	require.ErrorAs(t, err, &blockedErr)
	assert.Equal(t, "*.blocked.test", blockedErr.Pattern)
	assert.Contains(t, err.Error(), `blocked pattern: "*.blocked.test"`)
}

func TestCheckConnection_StripsPort(t *testing.T) {
	b := newTestBridge()
	b.Set(policy.NewConfiguration([]string{"localhost"}, nil))

	assert.NoError(t, b.CheckConnection("localhost:8080", 8080, "test"))
}

func TestCheckConnection_EmitsAuditEvents(t *testing.T) {
	sink := &captureSink{}
	emitter := logging.NewEmitter(logging.EmitterConfig{SessionID: "s-1"}, sink)
	b := newTestBridge(WithEmitter(emitter))
	b.Set(policy.NewConfiguration([]string{"localhost"}, nil))

	require.NoError(t, b.CheckConnection("localhost", 80, "test"))
	require.Error(t, b.CheckConnection("blocked.test", 443, "test"))

	types := sink.types()
	assert.Equal(t, []string{
		logging.EventInstall,
		logging.EventGateDecision,
		logging.EventGateDecision,
		logging.EventConnectionBlocked,
	}, types)
	for _, e := range sink.events {
		assert.Equal(t, "s-1", e.SessionID)
	}
}

func TestCheckConnection_DNSDenialEmitsResolveBlocked(t *testing.T) {
	sink := &captureSink{}
	emitter := logging.NewEmitter(logging.EmitterConfig{}, sink)
	b := newTestBridge(WithEmitter(emitter))
	b.Set(policy.NewConfiguration([]string{"localhost"}, nil))

	err := b.CheckConnection("blocked.test", api.PortDNS, "agent-dns")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DNS resolution")
	assert.Contains(t, sink.types(), logging.EventResolveBlocked)
}

func TestCheckConnection_BlockedHookInvoked(t *testing.T) {
	var got *api.BlockedError
	b := newTestBridge(WithBlockedHook(func(e *api.BlockedError) { got = e }))
	b.Set(policy.NewConfiguration([]string{"localhost"}, nil))

	require.Error(t, b.CheckConnection("blocked.test", 443, "test"))
	require.NotNil(t, got)
	assert.Equal(t, "blocked.test", got.Host)
}

func TestCheckURL(t *testing.T) {
	b := newTestBridge()
	b.Set(policy.NewConfiguration([]string{"localhost"}, nil))

	t.Run("allowed host", func(t *testing.T) {
		assert.NoError(t, b.CheckURL("http://localhost:8080/path", "client"))
	})

	t.Run("denied host carries URL and default port", func(t *testing.T) {
		err := b.CheckURL("https://blocked.test/v1/data", "client")
		var blockedErr *api.BlockedError
		require.ErrorAs(t, err, &blockedErr)
		assert.Equal(t, "blocked.test", blockedErr.Host)
		assert.Equal(t, 443, blockedErr.Port)
		assert.Equal(t, "https://blocked.test/v1/data", blockedErr.URL)
	})

	t.Run("explicit port", func(t *testing.T) {
		err := b.CheckURL("http://blocked.test:9090/", "client")
		var blockedErr *api.BlockedError
		require.ErrorAs(t, err, &blockedErr)
		assert.Equal(t, 9090, blockedErr.Port)
	})

	t.Run("unparseable URL is allowed", func(t *testing.T) {
		assert.NoError(t, b.CheckURL("http://[::1:bad", "client"))
	})

	t.Run("URL without hostname is allowed", func(t *testing.T) {
		assert.NoError(t, b.CheckURL("file:///etc/hosts", "client"))
	})
}
