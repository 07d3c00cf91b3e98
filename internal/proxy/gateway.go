package proxy

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fabian4/schnecke/internal/metrics"
	"github.com/fabian4/schnecke/internal/ratelimit"
	"github.com/fabian4/schnecke/internal/router"
)

// MissingBody is written, with status 200, when a request cannot be mapped
// to an origin.
const MissingBody = "missing"

// Gateway forwards each request to the origin configured for its virtual host.
// All of its fields are read-only once NewGateway returns.
type Gateway struct {
	routes    *router.Table
	transport http.RoundTripper
	log       *slog.Logger
	metrics   *metrics.Registry
	errLog    *ratelimit.Limiter
}

type Option func(*Gateway)

func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.log = l
		}
	}
}

func WithMetrics(m *metrics.Registry) Option {
	return func(g *Gateway) { g.metrics = m }
}

// WithErrorLogLimit bounds how often upstream failures are logged per host.
func WithErrorLogLimit(rps float64, burst int) Option {
	return func(g *Gateway) { g.errLog = ratelimit.NewLimiter(rps, burst) }
}

func NewGateway(rt *router.Table, tr http.RoundTripper, opts ...Option) *Gateway {
	g := &Gateway{
		routes:    rt,
		transport: tr,
		log:       slog.Default(),
		errLog:    ratelimit.NewLimiter(1, 5),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

var _ http.Handler = (*Gateway)(nil)

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := uuid.NewString()
	lw := &loggingResponseWriter{ResponseWriter: w}
	var host, outcome, upstream string

	if g.metrics != nil {
		g.metrics.IncInFlight()
		defer g.metrics.DecInFlight()
	}
	defer func() {
		if outcome == "" {
			return // aborted
		}
		duration := time.Since(start)
		g.log.Debug("request",
			"id", id,
			"method", r.Method,
			"host", r.Host,
			"path", r.URL.Path,
			"status", lw.status(),
			"outcome", outcome,
			"upstream", upstream,
			"duration_ms", duration.Milliseconds(),
			"bytes_written", lw.bytes,
		)
		if g.metrics != nil {
			g.metrics.IncRequest(host, outcome)
			g.metrics.ObserveLatency(outcome, duration)
		}
	}()

	if r.Host == "" {
		// HTTP/1.1 servers reject this before we get here; only HTTP/1.0 can reach it.
		g.log.Error("request without host header", "id", id, "remote", r.RemoteAddr)
		panic(http.ErrAbortHandler)
	}

	hp, ok := g.routes.Match(r.Host)
	if !ok {
		outcome = metrics.OutcomeMissing
		writeText(lw, MissingBody)
		return
	}
	host = hp.Host

	u, domain, ok := rewriteURL(hp.Origin, r.URL)
	if !ok {
		outcome = metrics.OutcomeMissing
		writeText(lw, MissingBody)
		return
	}
	upstream = u.String()

	// The inbound body is not forwarded.
	reqUp, err := http.NewRequestWithContext(r.Context(), r.Method, upstream, http.NoBody)
	if err != nil {
		outcome = metrics.OutcomeUpstreamError
		writeText(lw, err.Error())
		return
	}
	reqUp.Header = cloneHeader(r.Header)
	if _, ok := reqUp.Header["User-Agent"]; !ok {
		// keep net/http from adding its own
		reqUp.Header.Set("User-Agent", "")
	}
	reqUp.Host = domain

	resUp, err := g.transport.RoundTrip(reqUp)
	if err != nil {
		outcome = metrics.OutcomeUpstreamError
		if g.errLog.Allow(host) {
			g.log.Warn("upstream error", "id", id, "host", host, "upstream", upstream, "err", err)
		}
		writeText(lw, err.Error())
		return
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			g.log.Debug("error closing upstream body", "id", id, "err", err)
		}
	}(resUp.Body)
	outcome = metrics.OutcomeRelayed

	dropHopByHop(resUp.Header)
	copyHeaders(lw.Header(), resUp.Header)

	// Announce trailers if any
	if len(resUp.Trailer) > 0 {
		trailerKeys := make([]string, 0, len(resUp.Trailer))
		for k := range resUp.Trailer {
			trailerKeys = append(trailerKeys, k)
		}
		lw.Header().Set("Trailer", strings.Join(trailerKeys, ","))
	}

	lw.WriteHeader(resUp.StatusCode)
	lw.Flush()

	if _, err := io.Copy(lw, resUp.Body); err != nil {
		g.log.Debug("relay interrupted", "id", id, "host", host, "err", err)
	}

	// Copy trailer values
	for k, vv := range resUp.Trailer {
		for _, v := range vv {
			lw.Header().Add(k, v)
		}
	}
}

func writeText(w http.ResponseWriter, s string) {
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, s)
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int64
}

func (w *loggingResponseWriter) status() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}

func (w *loggingResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *loggingResponseWriter) Write(b []byte) (int, error) {
	if w.statusCode == 0 {
		w.statusCode = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += int64(n)
	return n, err
}

func (w *loggingResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
