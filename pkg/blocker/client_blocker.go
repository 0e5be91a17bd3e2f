package blocker

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/airgaplab/airgap/internal/errx"
	"github.com/airgaplab/airgap/pkg/api"
	"github.com/airgaplab/airgap/pkg/bridge"
	"github.com/airgaplab/airgap/pkg/policy"
)

// CallerClient labels denials raised from the request-protocol hook.
const CallerClient = "client-transport"

// ClientBlocker is the request-protocol variant for session-based HTTP
// stacks: it swaps the client's transport for a checking one and restores
// the prior transport on uninstall. The decision function is the same
// blocked-then-allowed rule as every other variant.
type ClientBlocker struct {
	mu          sync.Mutex
	installed   bool
	client      *http.Client
	prior       http.RoundTripper
	priorWasNil bool
	bridge      *bridge.Bridge
	logger      *slog.Logger
}

// NewClientBlocker creates a blocker that guards the given HTTP client.
func NewClientBlocker(client *http.Client, b *bridge.Bridge, logger *slog.Logger) *ClientBlocker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientBlocker{
		client: client,
		bridge: b,
		logger: logger.With("component", "blocker"),
	}
}

func (c *ClientBlocker) target() *bridge.Bridge {
	if c.bridge != nil {
		return c.bridge
	}
	return bridge.Default()
}

// Install swaps the client's transport and publishes the configuration.
// Fails loudly when there is no client whose transport can be replaced.
// No-op when already installed.
func (c *ClientBlocker) Install(conf *policy.Configuration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.installed {
		return nil
	}
	if c.client == nil {
		return errx.With(api.ErrInstall, ": no http client to guard")
	}

	br := c.target()
	c.prior = c.client.Transport
	c.priorWasNil = c.client.Transport == nil
	delegate := c.prior
	if delegate == nil {
		delegate = http.DefaultTransport
	}
	c.client.Transport = &checkedRoundTripper{bridge: br, delegate: delegate}
	br.Set(conf)
	c.installed = true
	return nil
}

// Uninstall restores the prior transport and clears the configuration.
// No-op when not installed.
func (c *ClientBlocker) Uninstall() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.installed {
		return nil
	}
	if c.priorWasNil {
		c.client.Transport = nil
	} else {
		c.client.Transport = c.prior
	}
	c.prior = nil
	c.target().Clear()
	c.installed = false
	return nil
}

// checkedRoundTripper checks each request URL before delegating.
type checkedRoundTripper struct {
	bridge   *bridge.Bridge
	delegate http.RoundTripper
}

func (t *checkedRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.bridge.CheckURL(req.URL.String(), CallerClient); err != nil {
		return nil, err
	}
	return t.delegate.RoundTrip(req)
}
