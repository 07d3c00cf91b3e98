package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fabian4/schnecke/internal/server"
	"github.com/fabian4/schnecke/internal/version"
)

const envLogLevel = "SCHNECKE_LOG_LEVEL"

type rootFlags struct {
	home        string
	logLevel    string
	logFormat   string
	metricsAddr string
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "schnecke",
		Short: "Forward loopback HTTP requests to the origin configured for their Host",
		Long: `schnecke listens on 127.0.0.1 and forwards every request to the origin
configured for its virtual host in ~/.schnecke.yml (or .yaml, or
~/.schnecke/schnecke.yml). The bound port is written to
~/.schnecke/tmp/port.tmp.`,
		Version:       version.Value,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), flags.logLevel, flags.logFormat)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			home := flags.home
			if home == "" {
				if home, err = os.UserHomeDir(); err != nil {
					return fmt.Errorf("home directory: %w (set HOME or pass --home)", err)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, server.Options{
				Home:        home,
				MetricsAddr: flags.metricsAddr,
				Logger:      logger,
			})
		},
	}

	level := os.Getenv(envLogLevel)
	if level == "" {
		level = "info"
	}
	cmd.Flags().StringVar(&flags.home, "home", "", "base directory for config and scratch files (default $HOME)")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", level, "log level (debug, info, warn, error); env "+envLogLevel)
	cmd.Flags().StringVar(&flags.logFormat, "log-format", "text", "log format (text, json)")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. 127.0.0.1:9090")
	return cmd
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}
