// Package transport is the Transport Abstraction of spec §4 (component 3):
// an asynchronous HTTP client wrapper exposing request/response-headers-first
// access, streaming body reads, timeouts and cancellation, shared by every
// provider so connections pool across the whole registry (spec §5 "a single
// HTTP transport is shared across providers").
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	utls "github.com/refraction-networking/utls"
)

// Client is the shared HTTP transport. registry.Build constructs a small
// fixed set of Clients (plain, browser-impersonating, long-timeout) and
// hands each to the providers of its kind; it is safe for concurrent use.
type Client struct {
	http        *http.Client
	impersonate bool
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	timeout        time.Duration
	impersonateTLS bool
}

// WithTimeout sets the default request timeout (spec §5: 30s default, 60s
// for streaming-LLM variants). A value of 0 means "rely on context deadline
// only".
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.timeout = d }
}

// WithBrowserTLS enables uTLS ClientHello impersonation, used by the
// web-scraped provider family (Bing, Google, Youdao) so the transport is
// not trivially fingerprinted as a non-browser client.
func WithBrowserTLS() Option {
	return func(c *clientConfig) { c.impersonateTLS = true }
}

// New builds a Client with the given options.
func New(opts ...Option) *Client {
	cfg := clientConfig{timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}

	var rt http.RoundTripper
	if cfg.impersonateTLS {
		rt = newImpersonatingTransport()
	} else {
		rt = http.DefaultTransport
	}

	return &Client{
		http:        &http.Client{Timeout: cfg.timeout, Transport: rt},
		impersonate: cfg.impersonateTLS,
	}
}

// newImpersonatingTransport returns a RoundTripper that performs a
// Chrome-like TLS ClientHello via uTLS, then delegates to the standard
// HTTP semantics over that connection.
func newImpersonatingTransport() http.RoundTripper {
	dialer := &utlsDialer{helloID: utls.HelloChrome_Auto}
	return &http.Transport{
		DialTLSContext:    dialer.DialTLSContext,
		ForceAttemptHTTP2: true,
	}
}

type utlsDialer struct {
	helloID utls.ClientHelloID
	plain   net.Dialer
}

// DialTLSContext dials the raw TCP connection and performs a uTLS handshake
// using the configured ClientHelloID instead of Go's native TLS
// fingerprint, so the connection is indistinguishable from a real browser's
// at the record layer — the property the web-scraped provider family needs.
func (d *utlsDialer) DialTLSContext(ctx context.Context, network, addr string) (net.Conn, error) {
	rawConn, err := d.plain.DialContext(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	uconn := utls.UClient(rawConn, &utls.Config{ServerName: host}, d.helloID)
	if err := uconn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, fmt.Errorf("utls handshake with %s: %w", addr, err)
	}
	return uconn, nil
}

// Request describes an outbound call in provider-agnostic terms; concrete
// providers build one of these rather than touching net/http directly,
// keeping signing/body-shape concerns separate from transport concerns.
type Request struct {
	Method  string
	URL     string
	Query   url.Values
	Headers http.Header
	Body    []byte
}

// Response is a transport-level response: status, headers, and a body
// reader that has already been transparently decompressed (gzip or
// brotli), matching spec §4's "request/response-headers-first" access
// pattern — callers can inspect Status/Header before deciding whether to
// stream or fully read Body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
	// FinalURL is the request URL after following redirects, so callers
	// scraping a page that bounces between hosts (Bing's cn.bing.com vs
	// www.bing.com) know which host actually answered.
	FinalURL string
}

// Do issues req and returns headers immediately with a body reader the
// caller controls the pace of; it does not buffer the body. Cancellation
// of ctx aborts the in-flight read.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.build(ctx, req)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	body, err := decompress(resp)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}
	finalURL := ""
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body, FinalURL: finalURL}, nil
}

// DoBuffered issues req and fully reads the (decompressed) response body,
// for providers whose responses are a single JSON object rather than a
// stream.
func (c *Client) DoBuffered(ctx context.Context, req Request) (int, http.Header, []byte, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, resp.Header, nil, err
	}
	return resp.StatusCode, resp.Header, data, nil
}

// DoBufferedFull is DoBuffered plus the resolved FinalURL, for callers (Bing)
// that need to know which host answered after following a redirect.
func (c *Client) DoBufferedFull(ctx context.Context, req Request) (*Response, []byte, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	return resp, data, nil
}

func (c *Client) build(ctx context.Context, req Request) (*http.Request, error) {
	full := req.URL
	if len(req.Query) > 0 {
		sep := "?"
		if strings.Contains(full, "?") {
			sep = "&"
		}
		full = full + sep + req.Query.Encode()
	}
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, full, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range req.Headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if httpReq.Header.Get("Accept-Encoding") == "" {
		httpReq.Header.Set("Accept-Encoding", "gzip, br")
	}
	if httpReq.Header.Get("X-Request-Id") == "" {
		httpReq.Header.Set("X-Request-Id", uuid.NewString())
	}
	return httpReq, nil
}

func decompress(resp *http.Response) (io.ReadCloser, error) {
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("open gzip response: %w", err)
		}
		return readCloser{Reader: gz, closer: resp.Body}, nil
	case "br":
		br := brotli.NewReader(resp.Body)
		return readCloser{Reader: br, closer: resp.Body}, nil
	default:
		return resp.Body, nil
	}
}

// readCloser pairs a decompressing io.Reader with the underlying response
// body's Close, so callers still release the connection exactly once.
type readCloser struct {
	io.Reader
	closer io.Closer
}

func (r readCloser) Close() error { return r.closer.Close() }
