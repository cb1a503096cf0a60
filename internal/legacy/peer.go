package legacy

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// peer is a parsed bootstrap-peer address. No multiaddr library appears
// anywhere in the reference corpus (every go.mod in the pack was checked),
// so bootstrap strings are parsed with this narrow stdlib-based parser
// instead — see DESIGN.md's C3 entry. Two shapes are accepted: a bare
// "host:port" (net.SplitHostPort) and a multiaddr-shaped
// "/ip4/host/tcp/port" or "/ip6/host/tcp/port" string, since
// original_source's bootstrap_peers are documented as multiaddr strings.
type peer struct {
	host string
	port uint16
}

func (p peer) String() string {
	return net.JoinHostPort(p.host, strconv.Itoa(int(p.port)))
}

// parsePeer parses one bootstrap-peer string. It returns an error for any
// string that is neither a valid "host:port" pair nor a recognized
// "/ip4|ip6/host/tcp/port" multiaddr shape.
func parsePeer(s string) (peer, error) {
	if strings.HasPrefix(s, "/") {
		return parseMultiaddrShape(s)
	}
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return peer{}, fmt.Errorf("invalid bootstrap peer %q: %w", s, err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return peer{}, fmt.Errorf("invalid bootstrap peer port %q: %w", s, err)
	}
	return peer{host: host, port: uint16(port)}, nil
}

func parseMultiaddrShape(s string) (peer, error) {
	parts := strings.Split(strings.Trim(s, "/"), "/")
	if len(parts) != 4 {
		return peer{}, fmt.Errorf("unrecognized bootstrap peer address %q", s)
	}
	proto, host, transport, portStr := parts[0], parts[1], parts[2], parts[3]
	if (proto != "ip4" && proto != "ip6") || transport != "tcp" {
		return peer{}, fmt.Errorf("unsupported bootstrap peer address %q", s)
	}
	if net.ParseIP(host) == nil {
		return peer{}, fmt.Errorf("invalid bootstrap peer host %q", s)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return peer{}, fmt.Errorf("invalid bootstrap peer port %q: %w", s, err)
	}
	return peer{host: host, port: uint16(port)}, nil
}

// parsePeers parses every bootstrap-peer string, discarding ones that fail
// to parse rather than aborting the whole batch. It returns the peers that
// parsed successfully.
func parsePeers(addrs []string) []peer {
	peers := make([]peer, 0, len(addrs))
	for _, a := range addrs {
		p, err := parsePeer(a)
		if err != nil {
			continue
		}
		peers = append(peers, p)
	}
	return peers
}
