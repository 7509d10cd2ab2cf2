package main

import (
	"context"
	"expvar"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"statcore/internal/config"
	"statcore/internal/core"
	"statcore/pkg/hs3"
)

type observability struct {
	metrics core.MetricsRecorder
	tracer  core.Tracer
	closers []func() error
}

// flush reports metrics and shuts exporters down in reverse setup order.
func (o *observability) flush() error {
	var first error
	for i := len(o.closers) - 1; i >= 0; i-- {
		if err := o.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func setupObservability(cfg config.Observability, logger *slog.Logger, stderr io.Writer) (*observability, error) {
	obs := &observability{}
	switch cfg.Metrics {
	case "expvar":
		name := cfg.MetricsName
		if expvar.Get(name) != nil {
			name = ""
		}
		rec := core.NewExpvarMetricsRecorder(name)
		obs.metrics = rec
		obs.closers = append(obs.closers, func() error {
			logger.Debug("operation metrics",
				"expvar", rec.Name(),
				"export_success", rec.Count("export", true),
				"export_error", rec.Count("export", false),
				"export_ms", rec.DurationMS("export"),
			)
			return nil
		})
	case "prometheus":
		reg := prometheus.NewRegistry()
		rec, err := core.NewPrometheusMetricsRecorder(reg)
		if err != nil {
			return nil, err
		}
		obs.metrics = rec
		if cfg.MetricsFile != "" {
			path := cfg.MetricsFile
			obs.closers = append(obs.closers, func() error {
				if err := prometheus.WriteToTextfile(path, reg); err != nil {
					return fmt.Errorf("write metrics: %w", err)
				}
				return nil
			})
		}
	}

	if cfg.Tracing == "" || cfg.Tracing == "none" {
		return obs, nil
	}
	out := stderr
	if cfg.TraceFile != "" {
		f, err := os.OpenFile(cfg.TraceFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open trace file: %w", err)
		}
		obs.closers = append(obs.closers, f.Close)
		out = f
	}
	switch cfg.Tracing {
	case "json":
		obs.tracer = core.NewJSONTracer(out)
	case "otel":
		provider, err := core.NewStdoutTracerProvider(out, hs3.PackageName, hs3.PackageVersion)
		if err != nil {
			_ = obs.flush()
			return nil, fmt.Errorf("init tracing: %w", err)
		}
		obs.tracer = core.NewOTelTracer(provider)
		obs.closers = append(obs.closers, func() error {
			return provider.Shutdown(context.Background())
		})
	}
	return obs, nil
}
