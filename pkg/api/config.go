package api

import (
	"strings"

	"github.com/airgaplab/airgap/internal/errx"
)

// Defaults is the process-wide blocking configuration, typically loaded once
// from a config file or from the test runner's settings. Per-test overrides
// widen these lists but can never remove an entry from BlockedHosts.
type Defaults struct {
	// Enabled turns blocking on for the process. When false the installable
	// blockers become no-ops and no policy is ever published.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// ApplyToAllTests installs the default policy for every test, not just
	// the annotated ones. Consumed by the test-framework glue.
	ApplyToAllTests bool `json:"apply_to_all_tests" mapstructure:"apply_to_all_tests"`

	// AllowedHosts are host patterns permitted by default ("*" allows all,
	// "*.example.com" allows subdomains, anything else is an exact match).
	AllowedHosts []string `json:"allowed_hosts,omitempty" mapstructure:"allowed_hosts"`

	// BlockedHosts are host patterns denied at every scope.
	BlockedHosts []string `json:"blocked_hosts,omitempty" mapstructure:"blocked_hosts"`

	// AuditLogPath enables JSONL audit events when non-empty.
	AuditLogPath string `json:"audit_log_path,omitempty" mapstructure:"audit_log_path"`

	// ReportDBPath enables the sqlite violation store when non-empty.
	ReportDBPath string `json:"report_db_path,omitempty" mapstructure:"report_db_path"`
}

// Override is the per-test widening of Defaults, sourced from test
// annotations or call sites. Both lists are additive.
type Override struct {
	AllowedHosts []string `json:"allowed_hosts,omitempty"`
	BlockedHosts []string `json:"blocked_hosts,omitempty"`
}

// Validate checks configuration invariants.
func (d *Defaults) Validate() error {
	if d == nil {
		return nil
	}
	for _, p := range append(append([]string(nil), d.AllowedHosts...), d.BlockedHosts...) {
		if strings.TrimSpace(p) == "" {
			return errx.With(ErrInvalidConfig, ": empty host pattern")
		}
	}
	return nil
}
