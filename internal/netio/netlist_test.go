package netio

import "testing"

func TestHostListBareHost(t *testing.T) {
	l := ParseHostList([]string{"example.com", " api.internal "})
	if !l.Matches("example.com", 443) {
		t.Fatal("expected bare host match regardless of port")
	}
	if !l.Matches("API.internal", 0) {
		t.Fatal("expected case-insensitive match")
	}
	if l.Matches("other.com", 443) {
		t.Fatal("unexpected match")
	}
}

func TestHostListHostPort(t *testing.T) {
	l := ParseHostList([]string{"example.com:8080"})
	if l.Matches("example.com", 443) {
		t.Fatal("expected no match on different port")
	}
	if !l.Matches("example.com", 8080) {
		t.Fatal("expected match on declared port")
	}
}

func TestHostListCIDR(t *testing.T) {
	l := ParseHostList([]string{"10.0.0.0/8"})
	if !l.Matches("10.1.2.3", 0) {
		t.Fatal("expected CIDR match")
	}
	if l.Matches("192.168.1.1", 0) {
		t.Fatal("unexpected CIDR match")
	}
}

func TestGuardDenyWinsOverAllow(t *testing.T) {
	g := Guard{
		Allow: ParseHostList([]string{"example.com"}),
		Deny:  ParseHostList([]string{"example.com"}),
	}
	if g.Check("example.com", 443) {
		t.Fatal("expected deny to win")
	}
}

func TestGuardAllowListRestricts(t *testing.T) {
	g := Guard{Allow: ParseHostList([]string{"example.com"})}
	if !g.Check("example.com", 443) {
		t.Fatal("expected allowed host to pass")
	}
	if g.Check("other.com", 443) {
		t.Fatal("expected non-listed host to be denied once an allow list exists")
	}
}

func TestGuardNoListsAllowsEverything(t *testing.T) {
	var g Guard
	if !g.Check("anything.example", 80) {
		t.Fatal("expected default-allow with no lists configured")
	}
}
