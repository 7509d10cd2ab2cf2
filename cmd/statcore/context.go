package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"statcore/internal/blob"
	"statcore/internal/catalog"
	"statcore/internal/config"
	"statcore/internal/core"
	"statcore/internal/export"
	"statcore/internal/logging"
	"statcore/pkg/hs3"
)

type globalFlags struct {
	config    string
	logLevel  string
	logFormat string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureConfig loads the configuration once and applies the logging flags.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if level := strings.TrimSpace(c.flags.logLevel); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
		}
		if format := strings.TrimSpace(c.flags.logFormat); format != "" {
			cfg.Logging.Format = strings.ToLower(format)
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}
	return logger.With("component", "cli"), nil
}

type serviceOptions struct {
	// sink overrides export.sink when non-empty.
	sink string
	// catalog forces catalog bookkeeping on.
	catalog bool
}

// withService builds an export service from the configuration, runs fn and
// releases every resource the service opened.
func (c *commandContext) withService(cmd *cobra.Command, opts serviceOptions, fn func(*core.Service) error) (err error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.logger(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if cerr := closers[i](); cerr != nil {
				if err == nil {
					err = cerr
				} else {
					logger.Warn("release resource", "error", cerr)
				}
			}
		}
	}()

	sink, err := openSink(ctx, cfg, opts.sink)
	if err != nil {
		return err
	}
	obs, err := setupObservability(cfg.Observability, logger, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	closers = append(closers, obs.flush)

	svcOpts := []core.Option{
		core.WithSink(sink),
		core.WithLogger(logger),
		core.WithMetricsRecorder(obs.metrics),
		core.WithTracer(obs.tracer),
		core.WithEncodeOptions(hs3.EncodeOptions{
			HS3Version:  cfg.Export.HS3Version,
			Description: cfg.Export.Description,
		}),
	}
	if opts.catalog || cfg.Export.Catalog {
		store, err := catalog.Open(ctx, cfg.CatalogConfig())
		if err != nil {
			return fmt.Errorf("open catalog: %w", err)
		}
		closers = append(closers, store.Close)
		svcOpts = append(svcOpts, core.WithCatalog(store))
	}
	return fn(core.NewService(svcOpts...))
}

func openSink(ctx context.Context, cfg *config.Config, override string) (core.Sink, error) {
	kind := cfg.Export.Sink
	if override = strings.ToLower(strings.TrimSpace(override)); override != "" {
		kind = override
	}
	switch kind {
	case "file":
		return export.NewFileSink(cfg.Export.Dir), nil
	case "blob":
		store, err := blob.Open(ctx, cfg.BlobConfig())
		if err != nil {
			return nil, fmt.Errorf("open blob store: %w", err)
		}
		return export.NewBlobSink(store, cfg.Export.BlobPrefix), nil
	default:
		return nil, fmt.Errorf("unsupported sink %q (expected file or blob)", kind)
	}
}

// withCatalog opens the configured catalog for the duration of fn.
func (c *commandContext) withCatalog(cmd *cobra.Command, fn func(catalog.Store) error) (err error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := catalog.Open(cmd.Context(), cfg.CatalogConfig())
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(store)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
