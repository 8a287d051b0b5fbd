package fetch

import (
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/r3e-network/llrt-go/internal/framework"
	"github.com/r3e-network/llrt-go/internal/netio"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	return New(Config{Version: "test"})
}

func TestDoSimpleGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected default User-Agent")
		}
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	c := newTestClient(t)
	resp, err := c.Do(Request{Method: http.MethodGet, URL: srv.URL})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	text, err := resp.Text()
	if err != nil {
		t.Fatalf("text: %v", err)
	}
	if text != "hello" {
		t.Fatalf("got %q", text)
	}
}

func TestResponseBodyConsumedOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("once"))
	}))
	defer srv.Close()

	c := newTestClient(t)
	resp, err := c.Do(Request{Method: http.MethodGet, URL: srv.URL})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if _, err := resp.Text(); err != nil {
		t.Fatalf("first read: %v", err)
	}
	_, err = resp.Text()
	if !framework.Is(err, framework.KindBodyAlreadyConsumed) {
		t.Fatalf("got %v", err)
	}
}

func TestRedirect302PostBecomesGet(t *testing.T) {
	var finalMethod string
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		finalMethod = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusFound)
	}))
	defer origin.Close()

	c := newTestClient(t)
	_, err := c.Do(Request{Method: http.MethodPost, URL: origin.URL, Body: []byte("x")})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if finalMethod != http.MethodGet {
		t.Fatalf("expected GET after 302 from POST, got %s", finalMethod)
	}
}

func TestRedirectManualDoesNotFollow(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("target should not be hit in manual mode")
	}))
	defer target.Close()

	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusFound)
	}))
	defer origin.Close()

	c := newTestClient(t)
	resp, err := c.Do(Request{Method: http.MethodGet, URL: origin.URL, Redirect: RedirectManual})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if resp.Status != http.StatusFound {
		t.Fatalf("expected raw 302 status, got %d", resp.Status)
	}
}

func TestGuardDeniesTarget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	parsed, _ := url.Parse(srv.URL)
	host, _, _ := net.SplitHostPort(parsed.Host)

	c := New(Config{Version: "test", Guard: netio.Guard{Deny: netio.ParseHostList([]string{host})}})
	_, err := c.Do(Request{Method: http.MethodGet, URL: srv.URL})
	if err == nil {
		t.Fatal("expected denied dial to fail")
	}
}
