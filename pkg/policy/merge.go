package policy

import "github.com/airgaplab/airgap/pkg/api"

// Merge combines process-wide defaults with a narrower-scope override into
// the Configuration for one test. Precedence is fixed: the override widens
// both lists, and the process-wide block-list is never removable by a
// narrower scope. A host targeted by both a narrower allowed pattern and any
// blocked pattern stays blocked; blocked wins at every scope.
func Merge(defaults api.Defaults, override *api.Override) *Configuration {
	allowed := append([]string(nil), defaults.AllowedHosts...)
	blocked := append([]string(nil), defaults.BlockedHosts...)
	if override != nil {
		allowed = append(allowed, override.AllowedHosts...)
		blocked = append(blocked, override.BlockedHosts...)
	}
	return NewConfiguration(allowed, blocked)
}
