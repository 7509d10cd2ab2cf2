package core

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPrepareStampsRecord(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	payload := []byte(`{"metadata":{"hs3_version":"0.2"}}`)
	rec, err := Prepare(Record{Name: "ws", Payload: payload}, now)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if _, err := uuid.Parse(rec.Revision); err != nil {
		t.Fatalf("revision is not a uuid: %q", rec.Revision)
	}
	if rec.Checksum != Checksum(payload) || len(rec.Checksum) != 64 {
		t.Fatalf("unexpected checksum %q", rec.Checksum)
	}
	if rec.UpdatedAt.Location() != time.UTC || !rec.UpdatedAt.Equal(now) {
		t.Fatalf("expected UTC timestamp, got %v", rec.UpdatedAt)
	}
	payload[0] = 'x'
	if rec.Payload[0] != '{' {
		t.Fatalf("payload must be copied")
	}
	again, _ := Prepare(Record{Name: "ws", Payload: rec.Payload}, now)
	if again.Revision == rec.Revision {
		t.Fatalf("each prepare must assign a new revision")
	}
}

func TestPrepareRejectsInvalidRecords(t *testing.T) {
	now := time.Now()
	cases := []Record{
		{Payload: []byte(`{}`)},
		{Name: "ws"},
		{Name: "ws", Payload: []byte("  ")},
		{Name: "ws", Payload: []byte(`{"a":`)},
	}
	for _, rec := range cases {
		if _, err := Prepare(rec, now); err == nil {
			t.Fatalf("expected error for %+v", rec)
		}
	}
	_, err := Prepare(Record{Name: "ws", Payload: []byte(`{}`), Checksum: "deadbeef"}, now)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected checksum mismatch, got %v", err)
	}
	if _, err := Prepare(Record{Name: "ws", Payload: []byte(`{}`), Checksum: Checksum([]byte(`{}`))}, now); err != nil {
		t.Fatalf("matching checksum must pass: %v", err)
	}
}
