// Package fetch implements the process-wide HTTP client behind the
// embedded fetch() global, per spec.md §4.8. Grounded on
// infrastructure/httputil transport/client helpers: DefaultTransportWithMinTLS12
// for the TLS baseline, ClientConfig/ClientDefaults for the pooled-client
// shape, generalised here from a fixed service-mesh base URL into a
// general-purpose client that accepts any target URL subject to the
// netio egress guard.
package fetch

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/r3e-network/llrt-go/internal/events"
	"github.com/r3e-network/llrt-go/internal/framework"
	"github.com/r3e-network/llrt-go/internal/netio"
)

// Redirect is the per-request redirect policy (spec.md §4.8).
type Redirect string

const (
	RedirectFollow Redirect = "follow"
	RedirectManual Redirect = "manual"
	RedirectError  Redirect = "error"
)

const (
	defaultMaxRedirects = 20
	userAgentPrefix     = "llrt"
)

// Config configures a process-wide Client.
type Config struct {
	// ExtraCAs are appended to the system root pool.
	ExtraCAs []*x509.Certificate
	// MinTLSVersion defaults to tls.VersionTLS12, matching
	// DefaultTransportWithMinTLS12 baseline.
	MinTLSVersion uint16
	// IdleConnTimeout bounds how long a pooled connection is kept alive.
	IdleConnTimeout time.Duration
	// Guard validates every target host:port before dialing.
	Guard netio.Guard
	// Version is reported in the default User-Agent header.
	Version string
}

// Client is a single pooled HTTP client shared by every fetch() call in
// a runtime instance.
type Client struct {
	http      *http.Client
	userAgent string
	guard     netio.Guard
}

// New builds a Client from cfg, cloning the default transport the way
// DefaultTransportWithMinTLS12 does and layering in extra CAs and the
// egress guard's dialer check.
func New(cfg Config) *Client {
	minVersion := cfg.MinTLSVersion
	if minVersion == 0 {
		minVersion = tls.VersionTLS12
	}

	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	for _, ca := range cfg.ExtraCAs {
		pool.AddCert(ca)
	}

	base, ok := http.DefaultTransport.(*http.Transport)
	var transport *http.Transport
	if ok {
		transport = base.Clone()
	} else {
		transport = &http.Transport{}
	}
	transport.TLSClientConfig = &tls.Config{MinVersion: minVersion, RootCAs: pool}
	idleTimeout := cfg.IdleConnTimeout
	if idleTimeout == 0 {
		idleTimeout = 90 * time.Second
	}
	transport.IdleConnTimeout = idleTimeout

	dialer := &net.Dialer{Timeout: 30 * time.Second}
	guard := cfg.Guard
	transport.DialContext = func(ctx context.Context, network, address string) (net.Conn, error) {
		host, portStr, err := net.SplitHostPort(address)
		if err != nil {
			host, portStr = address, "0"
		}
		port, _ := strconv.Atoi(portStr)
		if !guard.Check(host, port) {
			return nil, errNetworkDenied(host)
		}
		return dialer.DialContext(ctx, network, address)
	}

	version := cfg.Version
	if version == "" {
		version = "0.0.0"
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			// Do runs its own redirect loop per Request.Redirect, so the
			// underlying client must hand every 3xx back unfollowed.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		userAgent: userAgentPrefix + " " + version,
		guard:     cfg.Guard,
	}
}

// Request describes a fetch() call.
type Request struct {
	Method   string
	URL      string
	Headers  http.Header
	Body     []byte
	Redirect Redirect
	Signal   *events.Signal
}

// Response is a consumed-once body wrapper around an *http.Response.
type Response struct {
	Status     int
	StatusText string
	Headers    http.Header
	URL        string
	Redirected bool

	body     []byte
	consumed bool
}

func errNetworkDenied(host string) error {
	return framework.Newf(framework.KindNetworkAccessDenied, "fetch", "access to %s denied by network policy", host)
}
