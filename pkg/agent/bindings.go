package agent

import "sync"

// Binding names for the two patched entry points.
const (
	bindingTransport = "net/http.DefaultTransport"
	bindingResolver  = "net.DefaultResolver"
)

// bindingTable stores original bindings under their symbol name. Writes
// happen once per symbol at install time; a mutex is all the serialization
// the table needs.
type bindingTable struct {
	mu        sync.Mutex
	originals map[string]any
}

func newBindingTable() *bindingTable {
	return &bindingTable{originals: make(map[string]any)}
}

// record stores the original value for a symbol. Reports false when the
// symbol was already recorded; the first recording wins.
func (t *bindingTable) record(name string, original any) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.originals[name]; ok {
		return false
	}
	t.originals[name] = original
	return true
}

// take removes and returns the original value for a symbol.
func (t *bindingTable) take(name string) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	original, ok := t.originals[name]
	if ok {
		delete(t.originals, name)
	}
	return original, ok
}
