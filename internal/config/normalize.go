package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.applyEnv()
	c.normalizeLogging()
	c.normalizeExport()
	if err := c.normalizeBlob(); err != nil {
		return err
	}
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	return c.normalizeObservability()
}

// applyEnv uses the same variable names the blob and catalog factories read.
func (c *Config) applyEnv() {
	overrides := []struct {
		name string
		dst  *string
	}{
		{"STATCORE_LOG_LEVEL", &c.Logging.Level},
		{"STATCORE_LOG_FORMAT", &c.Logging.Format},
		{"STATCORE_EXPORT_SINK", &c.Export.Sink},
		{"STATCORE_EXPORT_DIR", &c.Export.Dir},
		{"STATCORE_BLOB_DRIVER", &c.Blob.Driver},
		{"STATCORE_BLOB_FS_ROOT", &c.Blob.FSRoot},
		{"STATCORE_BLOB_S3_BUCKET", &c.Blob.S3Bucket},
		{"STATCORE_BLOB_S3_REGION", &c.Blob.S3Region},
		{"STATCORE_BLOB_S3_ENDPOINT", &c.Blob.S3Endpoint},
		{"STATCORE_CATALOG_DRIVER", &c.Catalog.Driver},
		{"STATCORE_CATALOG_SQLITE_PATH", &c.Catalog.SQLitePath},
		{"STATCORE_CATALOG_POSTGRES_DSN", &c.Catalog.PostgresDSN},
		{"STATCORE_METRICS", &c.Observability.Metrics},
		{"STATCORE_TRACING", &c.Observability.Tracing},
	}
	for _, o := range overrides {
		if value, ok := os.LookupEnv(o.name); ok && strings.TrimSpace(value) != "" {
			*o.dst = strings.TrimSpace(value)
		}
	}
	if value, ok := os.LookupEnv("STATCORE_BLOB_S3_PATH_STYLE"); ok {
		c.Blob.S3PathStyle = strings.EqualFold(strings.TrimSpace(value), "true")
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = lowerOr(c.Logging.Format, defaultLogFormat)
	c.Logging.Level = lowerOr(c.Logging.Level, defaultLogLevel)
}

func (c *Config) normalizeExport() {
	c.Export.Sink = lowerOr(c.Export.Sink, defaultExportSink)
	if strings.TrimSpace(c.Export.Dir) == "" {
		c.Export.Dir = defaultExportDir
	}
	c.Export.BlobPrefix = strings.Trim(strings.TrimSpace(c.Export.BlobPrefix), "/")
	c.Export.HS3Version = strings.TrimSpace(c.Export.HS3Version)
}

func (c *Config) normalizeBlob() error {
	c.Blob.Driver = lowerOr(c.Blob.Driver, defaultBlobDriver)
	if strings.TrimSpace(c.Blob.FSRoot) == "" {
		c.Blob.FSRoot = defaultBlobFSRoot
	}
	var err error
	if c.Blob.FSRoot, err = expandPath(c.Blob.FSRoot); err != nil {
		return fmt.Errorf("blob.fs_root: %w", err)
	}
	c.Blob.S3Bucket = strings.TrimSpace(c.Blob.S3Bucket)
	if strings.TrimSpace(c.Blob.S3Region) == "" {
		c.Blob.S3Region = defaultS3Region
	}
	return nil
}

func (c *Config) normalizeCatalog() error {
	c.Catalog.Driver = lowerOr(c.Catalog.Driver, defaultCatalogDriver)
	if strings.TrimSpace(c.Catalog.SQLitePath) == "" {
		c.Catalog.SQLitePath = defaultSQLitePath
	}
	var err error
	if c.Catalog.SQLitePath, err = expandPath(c.Catalog.SQLitePath); err != nil {
		return fmt.Errorf("catalog.sqlite_path: %w", err)
	}
	if strings.TrimSpace(c.Catalog.PostgresDSN) == "" {
		c.Catalog.PostgresDSN = defaultPostgresDSN
	}
	return nil
}

func (c *Config) normalizeObservability() error {
	c.Observability.Metrics = lowerOr(c.Observability.Metrics, defaultMetrics)
	c.Observability.Tracing = lowerOr(c.Observability.Tracing, defaultTracing)
	if strings.TrimSpace(c.Observability.MetricsName) == "" {
		c.Observability.MetricsName = defaultMetricsName
	}
	if c.Observability.TraceFile != "" {
		var err error
		if c.Observability.TraceFile, err = expandPath(c.Observability.TraceFile); err != nil {
			return fmt.Errorf("observability.trace_file: %w", err)
		}
	}
	if c.Observability.MetricsFile != "" {
		var err error
		if c.Observability.MetricsFile, err = expandPath(c.Observability.MetricsFile); err != nil {
			return fmt.Errorf("observability.metrics_file: %w", err)
		}
	}
	return nil
}

func lowerOr(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	return value
}
