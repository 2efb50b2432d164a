package elf

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseLDSoConf_Missing(t *testing.T) {
	root := t.TempDir()
	got := ParseLDSoConf("", root)
	if got != nil {
		t.Errorf("expected nil for a missing ld.so.conf, got %v", got)
	}
}

func TestParseLDSoConf_SimpleAndInclude(t *testing.T) {
	root := t.TempDir()
	etc := filepath.Join(root, "etc")
	confD := filepath.Join(etc, "ld.so.conf.d")
	if err := os.MkdirAll(confD, 0o755); err != nil {
		t.Fatal(err)
	}
	mainConf := filepath.Join(etc, "ld.so.conf")
	if err := os.WriteFile(mainConf, []byte("/opt/lib\n# a comment\ninclude ld.so.conf.d/*.conf\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(confD, "extra.conf"), []byte("/opt/extra/lib\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := ParseLDSoConf(mainConf, root)
	want := []string{filepath.Join(root, "opt/lib"), filepath.Join(root, "opt/extra/lib")}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDefaultLibDirs_OnlyExisting(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "lib"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "usr", "lib"), 0o755); err != nil {
		t.Fatal(err)
	}
	got := DefaultLibDirs(root)
	want := []string{filepath.Join(root, "lib"), filepath.Join(root, "usr/lib")}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLibDirForArch_FallsBackToLib(t *testing.T) {
	root := t.TempDir()
	if got := LibDirForArch(64, root); got != "/lib" {
		t.Errorf("expected fallback to /lib, got %q", got)
	}
}

func TestLibDirForArch_PrefersLib64(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "lib64"), 0o755); err != nil {
		t.Fatal(err)
	}
	if got := LibDirForArch(64, root); got != "/lib64" {
		t.Errorf("expected /lib64, got %q", got)
	}
}
