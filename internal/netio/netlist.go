// Package netio implements the egress guard, Socket and Server objects
// of spec.md §4.7. The allow/deny list shape is grounded on the
// teacher's services/txproxy/marble Allowlist (services/txproxy/marble/
// allowlist.go): parse a small declarative list once, then answer
// membership queries by normalised key.
package netio

import (
	"net"
	"strconv"
	"strings"
)

// HostList is a parsed LLRT_NET_ALLOW/LLRT_NET_DENY entry set. Each
// entry is either a bare host ("example.com"), a host:port pair, or a
// CIDR block; membership checks normalise the query the same way.
type HostList struct {
	hosts    map[string]struct{}
	hostPort map[string]struct{}
	cidrs    []*net.IPNet
}

// ParseHostList builds a HostList from the whitespace/comma-separated
// entries found in LLRT_NET_ALLOW / LLRT_NET_DENY (internal/config
// already splits these; ParseHostList accepts the resulting slice).
func ParseHostList(entries []string) *HostList {
	l := &HostList{
		hosts:    map[string]struct{}{},
		hostPort: map[string]struct{}{},
	}
	for _, raw := range entries {
		e := strings.TrimSpace(raw)
		if e == "" {
			continue
		}
		if _, cidr, err := net.ParseCIDR(e); err == nil {
			l.cidrs = append(l.cidrs, cidr)
			continue
		}
		if host, port, err := net.SplitHostPort(e); err == nil {
			l.hostPort[net.JoinHostPort(strings.ToLower(host), port)] = struct{}{}
			continue
		}
		l.hosts[strings.ToLower(e)] = struct{}{}
	}
	return l
}

// Matches reports whether host (optionally with a port already known
// via port) is present in the list, either as a bare host, an exact
// host:port pair, or inside a CIDR block (when host is an IP literal).
func (l *HostList) Matches(host string, port int) bool {
	if l == nil {
		return false
	}
	host = strings.ToLower(host)
	if _, ok := l.hosts[host]; ok {
		return true
	}
	if port > 0 {
		if _, ok := l.hostPort[net.JoinHostPort(host, strconv.Itoa(port))]; ok {
			return true
		}
	}
	if ip := net.ParseIP(host); ip != nil {
		for _, cidr := range l.cidrs {
			if cidr.Contains(ip) {
				return true
			}
		}
	}
	return false
}

// Empty reports whether the list has no entries at all.
func (l *HostList) Empty() bool {
	return l == nil || (len(l.hosts) == 0 && len(l.hostPort) == 0 && len(l.cidrs) == 0)
}

// Guard answers "is this target allowed to be dialed", combining an
// allow list and a deny list per spec.md §4.7 step 1: deny always wins;
// when an allow list is configured, only listed targets pass.
type Guard struct {
	Allow *HostList
	Deny  *HostList
}

// Check validates host:port against the guard's allow/deny lists.
func (g Guard) Check(host string, port int) bool {
	if g.Deny.Matches(host, port) {
		return false
	}
	if g.Allow != nil && !g.Allow.Empty() {
		return g.Allow.Matches(host, port)
	}
	return true
}
