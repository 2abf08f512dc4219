package middleware

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

const clientIPContextKey contextKey = "client_ip"

// RealIP resolves the client address once per request. Forwarding headers
// are only believed when the peer is one of the trusted proxies.
type RealIP struct {
	trusted []netip.Prefix
}

func NewRealIP(trusted []netip.Prefix) *RealIP {
	return &RealIP{trusted: trusted}
}

func (m *RealIP) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), clientIPContextKey, m.resolve(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolve walks X-Forwarded-For from the nearest hop outwards and returns the
// first address that is not a trusted proxy.
func (m *RealIP) resolve(r *http.Request) string {
	peer, ok := peerAddr(r)
	if !ok {
		return peerHost(r)
	}
	if !m.isTrusted(peer) {
		return peer.String()
	}

	client := peer
	if forwarded := r.Header.Get("X-Forwarded-For"); strings.TrimSpace(forwarded) != "" {
		hops := strings.Split(forwarded, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			client = hop.Unmap()
			if !m.isTrusted(client) {
				break
			}
		}
		return client.String()
	}

	if realIP, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return realIP.Unmap().String()
	}

	return client.String()
}

func (m *RealIP) isTrusted(addr netip.Addr) bool {
	for _, prefix := range m.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP returns the address RealIP resolved, or the peer address when the
// request did not pass through it.
func ClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(clientIPContextKey).(string); ok && ip != "" {
		return ip
	}
	return peerHost(r)
}

func peerAddr(r *http.Request) (netip.Addr, bool) {
	addrPort, err := netip.ParseAddrPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		return addrPort.Addr().Unmap(), true
	}

	addr, err := netip.ParseAddr(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

func peerHost(r *http.Request) string {
	remote := strings.TrimSpace(r.RemoteAddr)
	if remote == "" {
		return "unknown"
	}

	host, _, err := net.SplitHostPort(remote)
	if err == nil && host != "" {
		return host
	}
	return remote
}
