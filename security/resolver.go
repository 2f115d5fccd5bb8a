package security

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

var defaultHeaderPriority = []string{"X-Real-IP", "X-Forwarded-For"}

// ClientAddr returns the address of the client behind r. Forwarding headers
// are believed only when the direct peer (RemoteAddr) is one of
// trustedProxies; otherwise the peer itself is the client.
func ClientAddr(r *http.Request, trustedProxies []netip.Prefix, headerPriority []string) (netip.Addr, bool) {
	peer, ok := parseRemoteAddr(r.RemoteAddr)
	if !ok {
		return netip.Addr{}, false
	}
	if containsAddr(trustedProxies, peer) {
		if addr, found := addrFromHeaders(r.Header, headerPriority); found {
			return addr, true
		}
	}
	return peer, true
}

func parseRemoteAddr(s string) (netip.Addr, bool) {
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, false
	}
	return ip.Unmap(), true
}

// addrFromHeaders takes the left-most parseable entry of the first header
// that yields one.
func addrFromHeaders(h http.Header, priority []string) (netip.Addr, bool) {
	for _, key := range priority {
		for _, v := range h.Values(key) {
			for part := range strings.SplitSeq(v, ",") {
				if ip, err := netip.ParseAddr(strings.TrimSpace(part)); err == nil {
					return ip.Unmap(), true
				}
			}
		}
	}
	return netip.Addr{}, false
}
