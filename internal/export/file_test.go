package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"statcore/pkg/model"
)

func TestFileSinkCreatesParents(t *testing.T) {
	root := t.TempDir()
	sink := NewFileSink(root)
	loc, err := sink.Write(context.Background(), "out/nested/gauss.json", []byte("{}\n"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if loc != filepath.Join(root, "out", "nested", "gauss.json") {
		t.Fatalf("unexpected location %s", loc)
	}
	data, err := os.ReadFile(loc)
	if err != nil || string(data) != "{}\n" {
		t.Fatalf("read back: %v %q", err, data)
	}
	info, err := os.Stat(loc)
	if err != nil || info.Mode().Perm() != 0o644 {
		t.Fatalf("unexpected mode %v %v", info, err)
	}
	entries, _ := os.ReadDir(filepath.Dir(loc))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestFileSinkAbsoluteTargetIgnoresRoot(t *testing.T) {
	target := filepath.Join(t.TempDir(), "abs.json")
	sink := NewFileSink("/does/not/matter")
	if got := sink.Path(target); got != target {
		t.Fatalf("expected absolute path kept, got %s", got)
	}
	if got := NewFileSink("").Path("rel/./a.json"); got != filepath.Join("rel", "a.json") {
		t.Fatalf("expected cleaned relative path, got %s", got)
	}
}

func TestFileSinkReplacesExisting(t *testing.T) {
	root := t.TempDir()
	sink := NewFileSink(root)
	if _, err := sink.Write(context.Background(), "a.json", []byte("old")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := sink.Write(context.Background(), "a.json", []byte("new")); err != nil {
		t.Fatalf("second write: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(root, "a.json"))
	if string(data) != "new" {
		t.Fatalf("expected replacement, got %q", data)
	}
}

func TestFileSinkRenameFailureKeepsTarget(t *testing.T) {
	root := t.TempDir()
	sink := NewFileSink(root)
	if _, err := sink.Write(context.Background(), "a.json", []byte("original")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	old := renameFile
	renameFile = func(string, string) error { return errors.New("rename refused") }
	t.Cleanup(func() { renameFile = old })

	_, err := sink.Write(context.Background(), "a.json", []byte("replacement"))
	var ioErr model.IOError
	if !errors.As(err, &ioErr) || ioErr.Op != "write" || ioErr.Path != filepath.Join(root, "a.json") {
		t.Fatalf("expected write IOError, got %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(root, "a.json"))
	if string(data) != "original" {
		t.Fatalf("target must be untouched, got %q", data)
	}
	entries, _ := os.ReadDir(root)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestFileSinkCreateTempFailure(t *testing.T) {
	old := createTemp
	createTemp = func(string, string) (*os.File, error) { return nil, os.ErrPermission }
	t.Cleanup(func() { createTemp = old })
	_, err := NewFileSink(t.TempDir()).Write(context.Background(), "a.json", []byte("{}"))
	if !errors.Is(err, os.ErrPermission) {
		t.Fatalf("expected permission error, got %v", err)
	}
}

func TestFileSinkErrors(t *testing.T) {
	sink := NewFileSink(t.TempDir())
	var ioErr model.IOError
	if _, err := sink.Write(context.Background(), "", nil); !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError for empty target, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sink.Write(ctx, "a.json", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}

	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, err := NewFileSink(blocker).Write(context.Background(), "sub/a.json", []byte("{}"))
	if !errors.As(err, &ioErr) || ioErr.Op != "mkdir" {
		t.Fatalf("expected mkdir IOError, got %v", err)
	}
}

func TestFileSinkConcurrentWritesSerialise(t *testing.T) {
	root := t.TempDir()
	sink := NewFileSink(root)
	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := []byte(fmt.Sprintf(`{"writer":%d}`, i))
			if _, err := sink.Write(context.Background(), "shared.json", payload); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent write: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "shared.json"))
	if err != nil || !strings.HasPrefix(string(data), `{"writer":`) || !strings.HasSuffix(string(data), "}") {
		t.Fatalf("expected one complete payload, got %q %v", data, err)
	}
}
