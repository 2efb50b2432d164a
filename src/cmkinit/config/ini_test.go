package config

import (
	"strings"
	"testing"
)

func TestParseINI_SectionsAndDefaults(t *testing.T) {
	f, err := parseINI(strings.NewReader(`
[DEFAULT]
root = a
mountpoints = b, c

[a]
type = path
path = /dev/sda1
`))
	if err != nil {
		t.Fatalf("parseINI: %v", err)
	}
	s := f.section("a")
	if v, ok := s.get("path"); !ok || v != "/dev/sda1" {
		t.Errorf("a.path = %q, %v", v, ok)
	}
	if v, ok := s.get("root"); !ok || v != "a" {
		t.Errorf("expected DEFAULT fallback for a.root, got %q, %v", v, ok)
	}
	def := f.section(defaultSection)
	if got := def.list("mountpoints"); len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Errorf("mountpoints list = %v", got)
	}
}

func TestParseINI_ContinuationLines(t *testing.T) {
	f, err := parseINI(strings.NewReader(`
[DEFAULT]
files =
	/etc/hosts
	/etc/resolv.conf
`))
	if err != nil {
		t.Fatalf("parseINI: %v", err)
	}
	got := f.section(defaultSection).lines("files")
	if len(got) != 2 || got[0] != "/etc/hosts" || got[1] != "/etc/resolv.conf" {
		t.Errorf("files lines = %v", got)
	}
}

func TestParseINI_RejectsMalformedLine(t *testing.T) {
	_, err := parseINI(strings.NewReader("not a valid line"))
	if err == nil {
		t.Fatal("expected an error for a line with no key=value and no section header")
	}
}

func TestSection_BoolAndInt(t *testing.T) {
	f, err := parseINI(strings.NewReader(`
[a]
discard = yes
port = 3260
`))
	if err != nil {
		t.Fatalf("parseINI: %v", err)
	}
	s := f.section("a")
	if !s.getBool("discard", false) {
		t.Error("expected discard=yes to parse true")
	}
	if got := s.getInt("port", 0); got != 3260 {
		t.Errorf("port = %d, want 3260", got)
	}
	if got := s.getInt("missing", 7); got != 7 {
		t.Errorf("missing default = %d, want 7", got)
	}
}
