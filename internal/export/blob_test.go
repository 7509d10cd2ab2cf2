package export

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"statcore/internal/blob"
	"statcore/pkg/model"
)

func TestBlobSinkUploadsWithContentType(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	sink := NewBlobSink(store, "/exports/")
	loc, err := sink.Write(ctx, "ws/gauss.json", []byte(`{"a":1}`))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if loc != "memory://exports/ws/gauss.json" {
		t.Fatalf("unexpected location %s", loc)
	}
	info, rc, err := store.Get(ctx, "exports/ws/gauss.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != `{"a":1}` || info.ContentType != ContentType || len(info.Metadata["sha256"]) != 64 {
		t.Fatalf("unexpected blob %q %+v", body, info)
	}
}

func TestBlobSinkRefusesOverwrite(t *testing.T) {
	sink := NewBlobSink(blob.NewMemory(), "")
	if _, err := sink.Write(context.Background(), "a.json", []byte("{}")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	_, err := sink.Write(context.Background(), "a.json", []byte("{}"))
	var ioErr model.IOError
	if !errors.As(err, &ioErr) || ioErr.Op != "put" || ioErr.Path != "a.json" {
		t.Fatalf("expected put IOError, got %v", err)
	}
	if !errors.Is(err, blob.ErrExists) {
		t.Fatalf("expected ErrExists in chain, got %v", err)
	}
}

func TestBlobSinkFilesystemLocation(t *testing.T) {
	store, err := blob.NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("fs store: %v", err)
	}
	loc, err := NewBlobSink(store, "docs").Write(context.Background(), "gauss.json", []byte("{}"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(loc, "file://") || !strings.HasSuffix(loc, "/docs/gauss.json") {
		t.Fatalf("unexpected location %s", loc)
	}
}

func TestBlobSinkMockS3(t *testing.T) {
	sink := NewBlobSink(blob.NewMockS3ForTests(), "exports")
	loc, err := sink.Write(context.Background(), "ws.json", []byte(`{"metadata":{}}`))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if loc != "s3://exports/ws.json" {
		t.Fatalf("unexpected location %s", loc)
	}
}

func TestBlobSinkWithoutStore(t *testing.T) {
	var ioErr model.IOError
	if _, err := NewBlobSink(nil, "").Write(context.Background(), "a.json", nil); !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError, got %v", err)
	}
}

func TestBlobSinkRejectsParentSegments(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	sink := NewBlobSink(store, "exports")
	for _, target := range []string{"../other.json", "ws/../../other.json", "/../other.json", ".."} {
		_, err := sink.Write(ctx, target, []byte("{}"))
		var ioErr model.IOError
		if !errors.As(err, &ioErr) || ioErr.Op != "put" || ioErr.Path != target {
			t.Fatalf("%s: expected put IOError, got %v", target, err)
		}
	}
	if _, _, err := store.Get(ctx, "other.json"); err == nil {
		t.Fatalf("blob written outside the prefix")
	}
	if key, err := sink.Key("ws/v1..v2.json"); err != nil || key != "exports/ws/v1..v2.json" {
		t.Fatalf("dotted name rejected: %q %v", key, err)
	}
}
