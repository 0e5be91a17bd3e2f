package agent

import (
	"context"
	"net"
	"strings"

	"golang.org/x/net/dns/dnsmessage"

	"github.com/airgaplab/airgap/pkg/api"
)

// checkedResolverDial wraps the resolver's Dial so that every outgoing DNS
// question is checked by hostname before it leaves the process. Blocking at
// resolution, ahead of any connect, turns a denial into a hostname-based
// error instead of an IP-based one.
//
// The resolver flattens errors from Dial and from the returned conn into
// *net.DNSError, keeping only the message text. A denial on this path
// carries the full blocked message inside the lookup error but does not
// satisfy errors.Is(err, api.ErrBlocked); assertions that need the sentinel
// must trigger the transport or dialer paths instead.
func checkedResolverDial(original func(ctx context.Context, network, address string) (net.Conn, error)) func(ctx context.Context, network, address string) (net.Conn, error) {
	return func(ctx context.Context, network, address string) (net.Conn, error) {
		var conn net.Conn
		var err error
		if original != nil {
			conn, err = original(ctx, network, address)
		} else {
			var d net.Dialer
			conn, err = d.DialContext(ctx, network, address)
		}
		if err != nil {
			return nil, err
		}

		// The resolver frames messages by the connection kind: raw
		// datagrams on a PacketConn, 2-byte length prefix on a stream.
		// The wrapper must preserve the kind or framing breaks.
		if _, ok := conn.(net.PacketConn); ok {
			return &dnsPacketConn{dnsConn: dnsConn{Conn: conn}}, nil
		}
		return &dnsConn{Conn: conn, stream: true}, nil
	}
}

// dnsConn checks the question name of each DNS message written through it.
type dnsConn struct {
	net.Conn
	stream bool
}

func (c *dnsConn) Write(p []byte) (int, error) {
	if err := checkQuery(p, c.stream); err != nil {
		return 0, err
	}
	return c.Conn.Write(p)
}

// dnsPacketConn keeps the PacketConn shape of UDP resolver connections.
type dnsPacketConn struct {
	dnsConn
}

func (c *dnsPacketConn) ReadFrom(p []byte) (int, net.Addr, error) {
	return c.Conn.(net.PacketConn).ReadFrom(p)
}

func (c *dnsPacketConn) WriteTo(p []byte, addr net.Addr) (int, error) {
	if err := checkQuery(p, false); err != nil {
		return 0, err
	}
	return c.Conn.(net.PacketConn).WriteTo(p, addr)
}

// checkQuery parses the question section of an outgoing DNS message and
// runs the policy check for each queried name, with api.PortDNS in place of
// a port. A message that does not parse as DNS passes through untouched.
func checkQuery(msg []byte, stream bool) error {
	if stream {
		if len(msg) < 2 {
			return nil
		}
		msg = msg[2:]
	}

	var parser dnsmessage.Parser
	if _, err := parser.Start(msg); err != nil {
		return nil
	}
	for {
		q, err := parser.Question()
		if err != nil {
			// ErrSectionDone or malformed input ends the scan either way.
			return nil
		}
		name := strings.TrimSuffix(q.Name.String(), ".")
		if name == "" {
			continue
		}
		if err := checkConnection(name, api.PortDNS, CallerResolve); err != nil {
			return err
		}
	}
}
