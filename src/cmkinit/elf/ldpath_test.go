package elf

import (
	"reflect"
	"testing"
)

func TestParseLDPath_Empty(t *testing.T) {
	if got := ParseLDPath("", "/origin", "/root"); got != nil {
		t.Errorf("expected nil for empty ldPath, got %v", got)
	}
}

func TestParseLDPath_OriginSubstitution(t *testing.T) {
	got := ParseLDPath("$ORIGIN/../lib:${ORIGIN}/extra", "/usr/bin", "/root")
	want := []string{"/root/usr/lib", "/root/usr/bin/extra"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseLDPath_RelativeStaysOutsideRoot(t *testing.T) {
	got := ParseLDPath("relative/dir", "/origin", "/root")
	want := []string{"relative/dir"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParsePath_RootsEachEntry(t *testing.T) {
	got := ParsePath("/usr/bin:/bin", "/root")
	want := []string{"/root/usr/bin", "/root/bin"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSubstituteDynamicTags_Lib(t *testing.T) {
	got := substituteDynamicTags("$LIB/foo", "/origin")
	if is64BitPlatform() {
		if got != "lib64/foo" {
			t.Errorf("got %q, want lib64/foo", got)
		}
	} else if got != "lib/foo" {
		t.Errorf("got %q, want lib/foo", got)
	}
}
