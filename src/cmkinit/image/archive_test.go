package image

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildToCPIOList_IncludesLayoutAndAddedFile(t *testing.T) {
	root := t.TempDir()
	b, err := New(0, 0, root, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	src := filepath.Join(root, "hello.txt")
	if err := os.WriteFile(src, []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := b.AddFile(src, "/etc/hello.txt", 0); err != nil {
		t.Fatalf("AddFile: %v", err)
	}

	list := b.BuildToCPIOList()
	if !strings.Contains(list, "dir /dev ") {
		t.Errorf("expected /dev directory line, got:\n%s", list)
	}
	if !strings.Contains(list, "/etc/hello.txt") {
		t.Errorf("expected added file to appear, got:\n%s", list)
	}
}

func TestBuildToDirectory_SkipsNodesWhenUnprivileged(t *testing.T) {
	b := newTestBuilder(t)
	dest := t.TempDir()
	if err := b.BuildToDirectory(dest, false); err != nil {
		t.Fatalf("BuildToDirectory: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "dev", "console")); err == nil {
		t.Error("expected /dev/console to be skipped without CAP_MKNOD")
	}
	if _, err := os.Stat(filepath.Join(dest, "etc")); err != nil {
		t.Errorf("expected /etc to be materialized: %v", err)
	}
}
