// Package server wires the resolved configuration, the scratch directory and
// the dispatcher into a running loopback listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fabian4/schnecke/internal/config"
	"github.com/fabian4/schnecke/internal/forward"
	"github.com/fabian4/schnecke/internal/metrics"
	"github.com/fabian4/schnecke/internal/proxy"
	"github.com/fabian4/schnecke/internal/router"
	"github.com/fabian4/schnecke/internal/version"
	"github.com/fabian4/schnecke/internal/workdir"
)

const shutdownTimeout = 5 * time.Second

var ErrUnsupportedListener = errors.New("unix socket and tls listeners are not supported")

type Options struct {
	// Home is the base directory holding the config and the scratch directory.
	Home string
	// MetricsAddr, when set, serves /metrics on a second listener.
	MetricsAddr string
	// Transport overrides the shared outbound transport.
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// Run resolves the configuration, prepares the scratch directory, binds the
// loopback listener, announces its port and serves until ctx is done. Any
// error before the listener is bound is returned without serving.
func Run(ctx context.Context, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.Home == "" {
		return errors.New("home directory is not set")
	}

	cfg, err := config.Load(opts.Home)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	rt := router.New(cfg.Hosts)
	for _, h := range rt.Hosts() {
		hp, _ := rt.Match(h)
		log.Info("route", "host", h, "origin", hp.Origin)
	}

	dir, err := workdir.Reset(opts.Home)
	if err != nil {
		return fmt.Errorf("workdir: %w", err)
	}

	if cfg.Listen.UnixSocket || cfg.Listen.TLS {
		return ErrUnsupportedListener
	}
	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(int(cfg.Listen.Port))))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	if _, err := workdir.WritePort(dir, port); err != nil {
		_ = ln.Close()
		return fmt.Errorf("workdir: %w", err)
	}

	gwOpts := []proxy.Option{proxy.WithLogger(log)}
	var metricsSrv *http.Server
	var metricsLn net.Listener
	if opts.MetricsAddr != "" {
		m := metrics.NewRegistry()
		gwOpts = append(gwOpts, proxy.WithMetrics(m))
		if metricsLn, err = net.Listen("tcp", opts.MetricsAddr); err != nil {
			_ = ln.Close()
			return fmt.Errorf("metrics listen: %w", err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		metricsSrv = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	}

	tr := opts.Transport
	if tr == nil {
		t := forward.NewDefaultTransport()
		defer t.CloseIdleConnections()
		tr = t
	}

	srv := &http.Server{
		Handler:           proxy.NewGateway(rt, tr, gwOpts...),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
	}
	log.Info("listening",
		"addr", "http://"+ln.Addr().String(),
		"hosts", rt.Len(),
		"version", version.Value)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	if metricsSrv != nil {
		log.Info("metrics listening", "addr", "http://"+metricsLn.Addr().String()+"/metrics")
		g.Go(func() error {
			if err := metricsSrv.Serve(metricsLn); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics serve: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if metricsSrv != nil {
			err = errors.Join(err, metricsSrv.Shutdown(shutdownCtx))
		}
		log.Info("stopped")
		return err
	})
	return g.Wait()
}
