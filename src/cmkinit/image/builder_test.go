package image

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bitswalk/cmkinit/src/cmkinit/item"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := New(0, 0, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestMkLayout_CreatesBaseDirs(t *testing.T) {
	b := newTestBuilder(t)
	for _, d := range append([]string{"/"}, baseDirs...) {
		if !b.store.Contains(d) {
			t.Errorf("expected layout to contain %s", d)
		}
	}
}

func TestMkLayout_CreatesDeviceNodes(t *testing.T) {
	b := newTestBuilder(t)
	it, ok := b.store.Lookup("/dev/console")
	if !ok {
		t.Fatal("expected /dev/console to exist")
	}
	if it.Kind != item.KindNode || it.Major != 5 || it.Minor != 1 {
		t.Errorf("unexpected /dev/console item: %+v", it)
	}
}

func TestAddFile_NonELFHasNoDeps(t *testing.T) {
	root := t.TempDir()
	b, err := New(0, 0, root, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	src := filepath.Join(root, "config.txt")
	if err := os.WriteFile(src, []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := b.AddFile(src, "/etc/config.txt", 0); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	it, ok := b.store.Lookup("/etc/config.txt")
	if !ok {
		t.Fatal("expected /etc/config.txt to be present")
	}
	if it.Mode != 0o644 {
		t.Errorf("expected mode to default from source file, got %o", it.Mode)
	}
}

func TestAddFile_NormalizesUsrPrefix(t *testing.T) {
	root := t.TempDir()
	b, err := New(0, 0, root, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	src := filepath.Join(root, "data.txt")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := b.AddFile(src, "/usr/bin/data.txt", 0); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if !b.store.Contains("/bin/data.txt") {
		t.Error("expected /usr prefix to be stripped")
	}
}

func TestMkdir_CreatesParentsRecursively(t *testing.T) {
	b := newTestBuilder(t)
	if err := b.Mkdir("/a/b/c", 0o755, true); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	for _, d := range []string{"/a", "/a/b", "/a/b/c"} {
		if !b.store.Contains(d) {
			t.Errorf("expected %s to exist", d)
		}
	}
}
