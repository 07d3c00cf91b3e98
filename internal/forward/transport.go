package forward

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/http"
	"time"
)

// Options tunes the shared outbound transport. Zero timeouts mean no limit.
type Options struct {
	// Dial/keepalive
	DialTimeout   time.Duration
	DialKeepAlive time.Duration

	// Pool sizing
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	MaxConnsPerHost     int // 0 = unlimited

	// Timeouts
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration

	// TLS knobs for https origins
	InsecureSkipVerify bool
	RootCAs            *x509.CertPool
}

// DefaultOptions pools connections but sets no deadline on the forwarding
// path: a hung origin holds only its own request.
func DefaultOptions() Options {
	return Options{
		DialTimeout:           0,
		DialKeepAlive:         60 * time.Second,
		MaxIdleConns:          512,
		MaxIdleConnsPerHost:   128,
		IdleConnTimeout:       90 * time.Second,
		MaxConnsPerHost:       0,
		TLSHandshakeTimeout:   0,
		ResponseHeaderTimeout: 0,
		InsecureSkipVerify:    false,
		RootCAs:               nil,
	}
}

// NewDefaultTransport builds a transport from DefaultOptions.
func NewDefaultTransport() *http.Transport { return NewTransport(DefaultOptions()) }

// NewTransport builds the HTTP/1.1 transport shared by every request. https
// origins are dialed over TLS transparently. Environment proxies are not used
// and bodies are never decompressed, so responses relay byte for byte.
func NewTransport(opts Options) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   opts.DialTimeout,
		KeepAlive: opts.DialKeepAlive,
	}
	return &http.Transport{
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     false,
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: opts.InsecureSkipVerify, RootCAs: opts.RootCAs, NextProtos: []string{"http/1.1"}},
		MaxIdleConns:          opts.MaxIdleConns,
		MaxIdleConnsPerHost:   opts.MaxIdleConnsPerHost,
		IdleConnTimeout:       opts.IdleConnTimeout,
		MaxConnsPerHost:       opts.MaxConnsPerHost,
		TLSHandshakeTimeout:   opts.TLSHandshakeTimeout,
		ResponseHeaderTimeout: opts.ResponseHeaderTimeout,
		DisableCompression:    true,
	}
}
