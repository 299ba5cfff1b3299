package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spenczar/quiver/internal/config"
	"github.com/spenczar/quiver/internal/logging"
	"github.com/spenczar/quiver/internal/metrics"
	"github.com/spenczar/quiver/linkage"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}

	logger, closeFn := logging.SetupLogger(cfg.Log)
	defer closeFn()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.New(reg)

	opts := []linkage.Option{
		linkage.WithLogger(logger),
		linkage.WithObserver(linkage.NewLoggingObserver(logger)),
		linkage.WithObserver(m),
	}

	if err := run(ctx, cfg, opts); err != nil {
		slog.Error("linkdemo failed", "error", err)
		closeFn()
		os.Exit(1)
	}

	if cfg.MetricsAddr == "" {
		return
	}
	if err := serveMetrics(ctx, cfg.MetricsAddr, reg); err != nil {
		slog.Error("metrics server failed", "error", err)
		closeFn()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, opts []linkage.Option) error {
	positions, velocities := samplePositions(), sampleVelocities()

	if err := linkByID(positions, velocities, opts); err != nil {
		return err
	}
	if err := linkByIDAndTime(ctx, cfg.Workers, positions, velocities, opts); err != nil {
		return err
	}
	return linkArrow(opts)
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("serving metrics", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		slog.Info("shutting down metrics server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
