package export

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"statcore/internal/blob"
	"statcore/internal/catalog"
	"statcore/pkg/model"
)

// ContentType is attached to every uploaded document.
const ContentType = "application/json"

// BlobSink uploads documents to a blob store. Keys are create-only: exporting
// to a key that already exists fails with an IOError wrapping blob.ErrExists.
type BlobSink struct {
	store  blob.Store
	prefix string
}

// NewBlobSink stores documents under prefix (may be empty).
func NewBlobSink(store blob.Store, prefix string) *BlobSink {
	return &BlobSink{store: store, prefix: strings.Trim(prefix, "/")}
}

// Key returns the blob key a target maps to. Targets with a ".." segment
// are rejected so every key stays under the prefix.
func (s *BlobSink) Key(target string) (string, error) {
	target = strings.TrimPrefix(target, "/")
	for _, seg := range strings.Split(target, "/") {
		if seg == ".." {
			return "", fmt.Errorf("target %q leaves the blob prefix", target)
		}
	}
	if s.prefix == "" {
		return target, nil
	}
	return path.Join(s.prefix, target), nil
}

// Write implements core.Sink.
func (s *BlobSink) Write(ctx context.Context, target string, payload []byte) (string, error) {
	key, err := s.Key(target)
	if err != nil {
		return "", model.IOError{Op: "put", Path: target, Err: err}
	}
	if s.store == nil {
		return "", model.IOError{Op: "put", Path: key, Err: fmt.Errorf("blob store not configured")}
	}
	info, err := s.store.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: ContentType,
		Metadata:    map[string]string{"sha256": catalog.Checksum(payload)},
	})
	if err != nil {
		return "", model.IOError{Op: "put", Path: key, Err: err}
	}
	if info.URL != "" {
		return info.URL, nil
	}
	return fmt.Sprintf("%s://%s", s.store.Driver(), info.Key), nil
}
