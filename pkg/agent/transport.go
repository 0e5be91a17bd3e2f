package agent

import (
	"net/http"
	"strconv"
	"strings"
)

// checkedTransport is the wrapper installed over http.DefaultTransport.
// It consults the check entry point and, only if no denial resulted,
// invokes the original round tripper. A denial is returned unmodified so
// the caller of the HTTP request observes an ordinary error from the
// network call site.
type checkedTransport struct {
	original http.RoundTripper
}

func (t *checkedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := checkConnection(req.URL.Hostname(), requestPort(req), CallerConnect); err != nil {
		return nil, err
	}
	return t.original.RoundTrip(req)
}

// requestPort resolves the destination port of a request, falling back to
// the scheme default when the URL names none.
func requestPort(req *http.Request) int {
	if p := req.URL.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err == nil {
			return port
		}
	}
	switch strings.ToLower(req.URL.Scheme) {
	case "https":
		return 443
	default:
		return 80
	}
}
