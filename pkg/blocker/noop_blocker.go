package blocker

import "github.com/airgaplab/airgap/pkg/policy"

// NoopBlocker serves platforms (or configurations) where blocking is
// disabled: both transitions succeed and nothing is intercepted.
type NoopBlocker struct{}

func NewNoopBlocker() *NoopBlocker { return &NoopBlocker{} }

func (*NoopBlocker) Install(*policy.Configuration) error { return nil }

func (*NoopBlocker) Uninstall() error { return nil }
