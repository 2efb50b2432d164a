package item

import (
	"testing"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
)

func dir(dest string) *Item {
	return &Item{Kind: KindDirectory, Mode: 0o755, Dests: map[string]bool{dest: true}}
}

func file(dest, src string, hash byte) *Item {
	var h [32]byte
	h[0] = hash
	return &Item{Kind: KindFile, Mode: 0o644, Dests: map[string]bool{dest: true}, Src: src, DataHash: h}
}

func TestStore_InsertRequiresParent(t *testing.T) {
	s := New()
	err := s.Insert(file("/bin/sh", "/host/bin/sh", 1))
	if !cmerrors.Is(err, cmerrors.ErrItemMissingParent) {
		t.Fatalf("expected ErrItemMissingParent, got %v", err)
	}
}

func TestStore_InsertRootNeedsNoParent(t *testing.T) {
	s := New()
	if err := s.Insert(dir("/")); err != nil {
		t.Fatalf("unexpected error inserting root: %v", err)
	}
}

func TestStore_InsertSucceedsWithParent(t *testing.T) {
	s := New()
	mustInsert(t, s, dir("/"))
	mustInsert(t, s, dir("/bin"))
	mustInsert(t, s, file("/bin/sh", "/host/bin/sh", 1))
	if !s.Contains("/bin/sh") {
		t.Error("expected /bin/sh to be present")
	}
}

func TestStore_MergesIdenticalFiles(t *testing.T) {
	s := New()
	mustInsert(t, s, dir("/"))
	mustInsert(t, s, dir("/bin"))
	mustInsert(t, s, file("/bin/a", "/host/bin/busybox", 7))
	mustInsert(t, s, file("/bin/b", "/host/bin/busybox", 7))

	items := s.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items (2 dirs + 1 merged file), got %d", len(items))
	}
	merged := items[2]
	if len(merged.Dests) != 2 || !merged.Dests["/bin/a"] || !merged.Dests["/bin/b"] {
		t.Errorf("expected merged file to own both destinations, got %v", merged.Dests)
	}
}

func TestStore_ConflictingFilesRejected(t *testing.T) {
	s := New()
	mustInsert(t, s, dir("/"))
	mustInsert(t, s, dir("/bin"))
	mustInsert(t, s, file("/bin/a", "/host/bin/one", 1))
	err := s.Insert(file("/bin/a", "/host/bin/two", 2))
	if !cmerrors.Is(err, cmerrors.ErrItemConflict) {
		t.Fatalf("expected ErrItemConflict, got %v", err)
	}
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/usr/bin/ls":       "/bin/ls",
		"/usr/local/bin/x":  "/bin/x",
		"/usr":              "/",
		"bin/sh":            "/bin/sh",
		"/etc/../etc/fstab": "/etc/fstab",
	}
	for in, want := range cases {
		if got := NormalizePath(in); got != want {
			t.Errorf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func mustInsert(t *testing.T, s *Store, it *Item) {
	t.Helper()
	if err := s.Insert(it); err != nil {
		t.Fatalf("unexpected error inserting %s: %v", it, err)
	}
}
