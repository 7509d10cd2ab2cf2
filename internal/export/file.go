// Package export provides the destinations a rendered document can be written to.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"statcore/pkg/model"
)

// DefaultLockRetry is the polling interval while waiting for a target lock.
const DefaultLockRetry = 20 * time.Millisecond

var (
	renameFile = os.Rename
	createTemp = os.CreateTemp
)

// FileSink writes documents to the local filesystem. Each write goes to a
// temporary file in the target directory and is renamed into place while an
// advisory lock on ".<name>.lock" is held, so readers never see partial
// documents and concurrent exports of one target are serialised.
type FileSink struct {
	root  string
	perm  os.FileMode
	retry time.Duration
}

// NewFileSink resolves relative targets against root; an empty root means the
// working directory.
func NewFileSink(root string) *FileSink {
	return &FileSink{root: root, perm: 0o644, retry: DefaultLockRetry}
}

// Path returns the filesystem path a target resolves to.
func (s *FileSink) Path(target string) string {
	if s.root == "" || filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(s.root, target)
}

// Write implements core.Sink. Every failure is a model.IOError and leaves any
// existing file at the target untouched.
func (s *FileSink) Write(ctx context.Context, target string, payload []byte) (string, error) {
	if target == "" {
		return "", model.IOError{Op: "write", Path: target, Err: fmt.Errorf("empty target path")}
	}
	path := s.Path(target)
	if err := ctx.Err(); err != nil {
		return "", model.IOError{Op: "write", Path: path, Err: err}
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", model.IOError{Op: "mkdir", Path: dir, Err: err}
	}

	lock := flock.New(filepath.Join(dir, "."+filepath.Base(path)+".lock"))
	locked, err := lock.TryLockContext(ctx, s.retry)
	if err != nil {
		return "", model.IOError{Op: "lock", Path: path, Err: err}
	}
	if !locked {
		return "", model.IOError{Op: "lock", Path: path, Err: fmt.Errorf("lock not acquired")}
	}
	defer func() { _ = lock.Unlock() }()

	if err := s.replace(dir, path, payload); err != nil {
		return "", model.IOError{Op: "write", Path: path, Err: err}
	}
	return path, nil
}

func (s *FileSink) replace(dir, path string, payload []byte) error {
	tmp, err := createTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return cause
	}
	if _, err := tmp.Write(payload); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(s.perm); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := renameFile(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
