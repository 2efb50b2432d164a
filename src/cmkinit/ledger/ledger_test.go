package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndGet(t *testing.T) {
	s := openTestStore(t)
	id := uuid.New()
	rec := BuildRecord{
		ID:          id,
		Status:      StatusRunning,
		ConfigPath:  "/etc/cmkinitramfs.ini",
		OutputPath:  "/boot/initramfs.img",
		Kernels:     []string{"6.9.0-generic"},
		Compression: "gzip",
		StartedAt:   time.Now(),
	}
	if err := s.Record(rec); err != nil {
		t.Fatalf("Record: %v", err)
	}

	finish := time.Now()
	rec.Status = StatusSuccess
	rec.ArtifactSHA256 = "deadbeef"
	rec.ArtifactSize = 1024
	rec.FinishedAt = &finish
	if err := s.Record(rec); err != nil {
		t.Fatalf("Record (update): %v", err)
	}

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusSuccess || got.ArtifactSHA256 != "deadbeef" || got.FinishedAt == nil {
		t.Errorf("unexpected record after update: %+v", got)
	}
	if len(got.Kernels) != 1 || got.Kernels[0] != "6.9.0-generic" {
		t.Errorf("unexpected kernels: %v", got.Kernels)
	}
}

func TestList_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 3; i++ {
		rec := BuildRecord{
			ID:         uuid.New(),
			Status:     StatusSuccess,
			ConfigPath: "/etc/cmkinitramfs.ini",
			OutputPath: "/boot/initramfs.img",
			StartedAt:  time.Now().Add(time.Duration(i) * time.Second),
		}
		if err := s.Record(rec); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	got, err := s.List(2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if !got[0].StartedAt.After(got[1].StartedAt) {
		t.Errorf("expected newest-first ordering, got %v then %v", got[0].StartedAt, got[1].StartedAt)
	}
}

func TestGet_UnknownID(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Get(uuid.New()); err == nil {
		t.Fatal("expected an error for an unknown build ID")
	}
}
