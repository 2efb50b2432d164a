package elf

import (
	"os"
	"path/filepath"
	"testing"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
)

func TestFindKmod_AbsolutePassthrough(t *testing.T) {
	got, err := FindKmod("/opt/extra/foo.ko", "6.1.0", t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/opt/extra/foo.ko" {
		t.Errorf("got %q", got)
	}
}

func TestFindKmod_DashUnderscoreInterchangeable(t *testing.T) {
	root := t.TempDir()
	modDir := filepath.Join(root, KmodDir, "6.1.0", "kernel", "drivers", "net")
	if err := os.MkdirAll(modDir, 0o755); err != nil {
		t.Fatal(err)
	}
	modPath := filepath.Join(modDir, "e1000_e.ko")
	if err := os.WriteFile(modPath, []byte{}, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := FindKmod("e1000-e", "6.1.0", root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != modPath {
		t.Errorf("got %q, want %q", got, modPath)
	}
}

func TestFindKmod_Missing(t *testing.T) {
	root := t.TempDir()
	_, err := FindKmod("nonexistent", "6.1.0", root)
	if err == nil {
		t.Fatal("expected an error for a missing module")
	}
	if !cmerrors.Is(err, cmerrors.ErrKmodMissing) {
		t.Errorf("expected ErrKmodMissing, got %v", err)
	}
}

func TestRecursiveGlob_MissingBase(t *testing.T) {
	got, err := recursiveGlob(filepath.Join(t.TempDir(), "does-not-exist"), "*.ko")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected no matches, got %v", got)
	}
}
