package forward

import (
	"crypto/x509"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.DialTimeout != 0 {
		t.Errorf("DialTimeout: got %v, want 0", opts.DialTimeout)
	}
	if opts.DialKeepAlive != 60*time.Second {
		t.Errorf("DialKeepAlive: got %v, want %v", opts.DialKeepAlive, 60*time.Second)
	}
	if opts.MaxIdleConns != 512 {
		t.Errorf("MaxIdleConns: got %d, want %d", opts.MaxIdleConns, 512)
	}
	if opts.MaxIdleConnsPerHost != 128 {
		t.Errorf("MaxIdleConnsPerHost: got %d, want %d", opts.MaxIdleConnsPerHost, 128)
	}
	if opts.ResponseHeaderTimeout != 0 || opts.TLSHandshakeTimeout != 0 {
		t.Errorf("forwarding path must not carry timeouts by default: %+v", opts)
	}
	if opts.InsecureSkipVerify {
		t.Error("InsecureSkipVerify should be false by default")
	}
}

func TestNewTransport(t *testing.T) {
	pool := x509.NewCertPool()
	tr := NewTransport(Options{
		MaxIdleConns:          100,
		InsecureSkipVerify:    true,
		RootCAs:               pool,
		ResponseHeaderTimeout: 30 * time.Second,
	})

	if tr.Proxy != nil {
		t.Error("environment proxy must not be used")
	}
	if !tr.DisableCompression {
		t.Error("DisableCompression should be true so bodies relay unchanged")
	}
	if tr.ForceAttemptHTTP2 {
		t.Error("ForceAttemptHTTP2 should be false")
	}
	if tr.MaxIdleConns != 100 {
		t.Errorf("MaxIdleConns: got %d, want 100", tr.MaxIdleConns)
	}
	if tr.ResponseHeaderTimeout != 30*time.Second {
		t.Errorf("ResponseHeaderTimeout: got %v", tr.ResponseHeaderTimeout)
	}
	if tr.TLSClientConfig == nil || !tr.TLSClientConfig.InsecureSkipVerify || tr.TLSClientConfig.RootCAs != pool {
		t.Errorf("TLS config not applied: %+v", tr.TLSClientConfig)
	}
	if len(tr.TLSClientConfig.NextProtos) != 1 || tr.TLSClientConfig.NextProtos[0] != "http/1.1" {
		t.Errorf("NextProtos: got %v", tr.TLSClientConfig.NextProtos)
	}
}

func TestTransport_HTTPSOrigin(t *testing.T) {
	up := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "secure")
	}))
	defer up.Close()

	pool := x509.NewCertPool()
	pool.AddCert(up.Certificate())
	opts := DefaultOptions()
	opts.RootCAs = pool
	tr := NewTransport(opts)
	defer tr.CloseIdleConnections()

	req, err := http.NewRequest(http.MethodGet, up.URL+"/", nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := tr.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	defer func() { _ = res.Body.Close() }()
	body, _ := io.ReadAll(res.Body)
	if string(body) != "secure" {
		t.Fatalf("body: got %q", body)
	}
}
