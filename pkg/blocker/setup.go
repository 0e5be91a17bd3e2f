package blocker

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/airgaplab/airgap/pkg/api"
	"github.com/airgaplab/airgap/pkg/bridge"
	"github.com/airgaplab/airgap/pkg/logging"
	"github.com/airgaplab/airgap/pkg/policy"
	"github.com/airgaplab/airgap/pkg/state"
)

// Session is a fully wired blocking session: a bridge carrying the audit
// emitter and violation store configured in Defaults, and the blocker that
// publishes policies through it. Test-framework glue builds one Session per
// process and installs per-test policies through Blocker.
type Session struct {
	ID      string
	Bridge  *bridge.Bridge
	Blocker Blocker

	emitter *logging.Emitter
	store   *state.Store
}

// NewSession assembles a blocking session from process-wide defaults.
// Disabled defaults yield a session whose blocker is a no-op. The logger
// may be nil.
func NewSession(defaults api.Defaults, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{ID: uuid.New().String()}

	if !defaults.Enabled {
		s.Bridge = bridge.New(logger)
		s.Blocker = NewNoopBlocker()
		return s, nil
	}

	var opts []bridge.Option

	if defaults.AuditLogPath != "" {
		writer, err := logging.NewJSONLWriter(defaults.AuditLogPath)
		if err != nil {
			return nil, err
		}
		s.emitter = logging.NewEmitter(logging.EmitterConfig{SessionID: s.ID}, writer)
		opts = append(opts, bridge.WithEmitter(s.emitter))
	}

	if defaults.ReportDBPath != "" {
		store, err := state.Open(defaults.ReportDBPath)
		if err != nil {
			s.closeSinks()
			return nil, err
		}
		s.store = store
		sessionID := s.ID
		opts = append(opts, bridge.WithBlockedHook(func(blocked *api.BlockedError) {
			// Best effort: a broken store never fails a policy decision.
			_ = store.Record(sessionID, blocked)
		}))
	}

	s.Bridge = bridge.New(logger, opts...)
	s.Blocker = NewDefault(s.Bridge, logger)

	// With ApplyToAllTests the default policy covers the whole run, not just
	// annotated tests; install it up front.
	if defaults.ApplyToAllTests {
		if err := s.Blocker.Install(policy.Merge(defaults, nil)); err != nil {
			s.closeSinks()
			return nil, err
		}
	}
	return s, nil
}

// Close uninstalls the blocker and releases the session's sinks.
func (s *Session) Close() error {
	err := s.Blocker.Uninstall()
	if closeErr := s.closeSinks(); err == nil {
		err = closeErr
	}
	return err
}

func (s *Session) closeSinks() error {
	var firstErr error
	if s.emitter != nil {
		firstErr = s.emitter.Close()
		s.emitter = nil
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.store = nil
	}
	return firstErr
}
