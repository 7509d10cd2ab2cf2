package blob

import (
	"context"
	"fmt"
	"os"
	"strings"

	fsstore "statcore/internal/infra/blob/fs"
	memorystore "statcore/internal/infra/blob/memory"
	s3store "statcore/internal/infra/blob/s3"
)

// S3Config configures the S3 driver.
type S3Config = s3store.Config

// Config selects and configures a blob driver.
type Config struct {
	Driver Driver
	// FSRoot is the directory used by the fs driver (default ./blobdata).
	FSRoot string
	S3     S3Config
}

// ConfigFromEnv reads the driver selection from the environment.
//
//	STATCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	STATCORE_BLOB_FS_ROOT: directory root when driver=fs
//	STATCORE_BLOB_S3_BUCKET, STATCORE_BLOB_S3_REGION,
//	STATCORE_BLOB_S3_ENDPOINT, STATCORE_BLOB_S3_PATH_STYLE
func ConfigFromEnv() Config {
	cfg := Config{
		Driver: Driver(os.Getenv("STATCORE_BLOB_DRIVER")),
		FSRoot: os.Getenv("STATCORE_BLOB_FS_ROOT"),
		S3: S3Config{
			Bucket:    os.Getenv("STATCORE_BLOB_S3_BUCKET"),
			Region:    os.Getenv("STATCORE_BLOB_S3_REGION"),
			Endpoint:  os.Getenv("STATCORE_BLOB_S3_ENDPOINT"),
			PathStyle: strings.EqualFold(os.Getenv("STATCORE_BLOB_S3_PATH_STYLE"), "true"),
		},
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverFilesystem
	}
	return cfg
}

// Open constructs the store selected by cfg. An empty driver means fs.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverFilesystem:
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", cfg.Driver)
	}
}

// OpenFromEnv is Open(ctx, ConfigFromEnv()).
func OpenFromEnv(ctx context.Context) (Store, error) {
	return Open(ctx, ConfigFromEnv())
}

// NewFilesystem constructs a filesystem-backed store rooted at root.
func NewFilesystem(root string) (Store, error) {
	s, err := fsstore.New(root)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewMemory returns an in-memory store.
func NewMemory() Store { return memorystore.New() }

// NewS3 constructs an S3-backed store.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	s, err := s3store.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewMockS3ForTests exposes the in-memory S3 transport for cross-package tests.
func NewMockS3ForTests() Store { return s3store.NewMockForTests() }
