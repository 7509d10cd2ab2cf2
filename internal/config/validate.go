package config

import (
	"errors"
	"fmt"
	"slices"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateBlob(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	return c.validateObservability()
}

func oneOf(field, value string, allowed ...string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("%s: unsupported value %q (expected one of %v)", field, value, allowed)
}

func (c *Config) validateLogging() error {
	if err := oneOf("log.format", c.Logging.Format, "console", "json"); err != nil {
		return err
	}
	return oneOf("log.level", c.Logging.Level, "debug", "info", "warn", "error")
}

func (c *Config) validateExport() error {
	return oneOf("export.sink", c.Export.Sink, "file", "blob")
}

func (c *Config) validateBlob() error {
	if err := oneOf("blob.driver", c.Blob.Driver, "fs", "s3", "memory"); err != nil {
		return err
	}
	if c.Export.Sink == "blob" && c.Blob.Driver == "s3" && c.Blob.S3Bucket == "" {
		return errors.New("blob.s3_bucket is required when the blob sink uses the s3 driver")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if err := oneOf("catalog.driver", c.Catalog.Driver, "memory", "sqlite", "postgres"); err != nil {
		return err
	}
	if c.Catalog.Driver == "postgres" && c.Catalog.PostgresDSN == "" {
		return errors.New("catalog.postgres_dsn must be set for the postgres driver")
	}
	return nil
}

func (c *Config) validateObservability() error {
	if err := oneOf("observability.metrics", c.Observability.Metrics, "none", "expvar", "prometheus"); err != nil {
		return err
	}
	return oneOf("observability.tracing", c.Observability.Tracing, "none", "json", "otel")
}
