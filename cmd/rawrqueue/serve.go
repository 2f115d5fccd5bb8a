package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gopkg.in/natefinch/lumberjack.v2"

	gorawrqueue "github.com/Keksclan/goRawrQueue"
	"github.com/Keksclan/goRawrQueue/config"
	"github.com/Keksclan/goRawrQueue/metrics"
	"github.com/Keksclan/goRawrQueue/retry"
)

const shutdownTimeout = 15 * time.Second

type serveFlags struct {
	configPath string
	listen     string
	watch      bool
}

func newServeCmd() *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the pipeline server",
		Long:  `Start the pipeline server described by the config file and reload it when the file changes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, f)
		},
	}
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "pipeline.yaml", "path to the YAML config file")
	cmd.Flags().StringVarP(&f.listen, "listen", "l", "", "listen address (overrides the config file)")
	cmd.Flags().BoolVar(&f.watch, "watch", true, "reload the pipeline when the config file changes")
	return cmd
}

// logOutput returns stderr, or a size-rotated file when c.File is set.
func logOutput(c config.LoggingConfig) io.WriteCloser {
	if c.File == "" {
		return nopCloser{os.Stderr}
	}
	return &lumberjack.Logger{
		Filename:   c.File,
		MaxSize:    c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		Compress:   c.Compress,
		LocalTime:  true,
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func newLogger(c config.LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	_ = level.UnmarshalText([]byte(c.Level))
	opts := &slog.HandlerOptions{Level: level, AddSource: c.AddSource}
	if c.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// setupTracing installs a global stdout tracer provider.
func setupTracing(c config.TracingConfig) (func(context.Context) error, error) {
	var opts []stdouttrace.Option
	if c.Pretty {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("stdout exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return tp.Shutdown, nil
}

// probeCache waits for a Redis-backed cache tier to answer. The cache is
// fail-soft, so an unreachable Redis only costs a warning.
func probeCache(ctx context.Context, srv *gorawrqueue.Server, logger *slog.Logger) {
	p, ok := srv.Cache().(interface{ Ping(context.Context) error })
	if !ok {
		return
	}
	if err := retry.Ping(ctx, retry.Probe, p.Ping); err != nil {
		logger.Warn("redis cache unreachable, continuing fail-soft", "error", err)
		return
	}
	logger.Info("redis cache connected")
}

func runServe(ctx context.Context, f serveFlags) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	out := logOutput(cfg.Logging)
	defer out.Close()
	logger := newLogger(cfg.Logging, out)
	slog.SetDefault(logger)

	if cfg.Tracing.Enabled {
		shutdown, err := setupTracing(cfg.Tracing)
		if err != nil {
			return err
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		if collector, err = metrics.New(prometheus.DefaultRegisterer); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}
	options := func(c *config.Config) ([]gorawrqueue.Option, error) {
		opts, err := gorawrqueue.FromConfig(c, logger)
		if err != nil {
			return nil, err
		}
		if collector != nil {
			opts = append(opts, gorawrqueue.WithMetrics(collector))
		}
		return opts, nil
	}

	opts, err := options(cfg)
	if err != nil {
		return err
	}
	srv, err := gorawrqueue.NewServer(opts...)
	if err != nil {
		return err
	}
	defer srv.Close()
	probeCache(ctx, srv, logger)

	mux := http.NewServeMux()
	if collector != nil {
		mux.Handle(cfg.Metrics.Path, srv.MetricsHandler())
	}
	mux.Handle("/", srv)

	if f.watch {
		err := config.Watch(ctx, f.configPath, logger, func(next *config.Config) {
			opts, err := options(next)
			if err == nil {
				err = srv.Reload(opts...)
			}
			if err != nil {
				logger.Error("pipeline reload failed", "error", err)
				return
			}
			logger.Info("pipeline reloaded", "path", f.configPath)
		})
		if err != nil {
			logger.Warn("config watcher not started", "error", err)
		}
	}

	addr := cfg.Listen
	if f.listen != "" {
		addr = f.listen
	}
	hs := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return hs.Shutdown(shutdownCtx)
}
