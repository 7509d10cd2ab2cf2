package config

const (
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultExportSink    = "file"
	defaultExportDir     = "."
	defaultBlobDriver    = "fs"
	defaultBlobFSRoot    = "~/.local/share/statcore/blobs"
	defaultCatalogDriver = "sqlite"
	defaultSQLitePath    = "~/.local/share/statcore/catalog.db"
	defaultPostgresDSN   = "postgres://localhost/statcore?sslmode=disable"
	defaultMetrics       = "none"
	defaultTracing       = "none"
	defaultMetricsName   = "statcore_export_metrics"
	defaultS3Region      = "us-east-1"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Export: Export{
			Sink: defaultExportSink,
			Dir:  defaultExportDir,
		},
		Blob: Blob{
			Driver:   defaultBlobDriver,
			FSRoot:   defaultBlobFSRoot,
			S3Region: defaultS3Region,
		},
		Catalog: Catalog{
			Driver:      defaultCatalogDriver,
			SQLitePath:  defaultSQLitePath,
			PostgresDSN: defaultPostgresDSN,
		},
		Observability: Observability{
			Metrics:     defaultMetrics,
			MetricsName: defaultMetricsName,
			Tracing:     defaultTracing,
		},
	}
}
