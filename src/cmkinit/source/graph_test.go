package source

import (
	"strings"
	"testing"
)

func TestAddDep_HardWinsOverLoad(t *testing.T) {
	a := NewPath("/dev/sda1")
	b := NewPath("/dev/sdb1")
	b.AddLoadDep(a)
	b.AddDep(a)
	if len(b.lneed) != 0 {
		t.Errorf("expected lneed to be empty after promoting to hard dep, got %v", b.lneed)
	}
	if len(b.need) != 1 || b.need[0] != a {
		t.Errorf("expected need to contain a, got %v", b.need)
	}
}

func TestSetFinal_PropagatesOverHardDepsOnly(t *testing.T) {
	key := NewPath("/key")
	base := NewPath("/dev/sda1")
	luks := NewLuks(base, "root", key, nil, false)
	luks.SetFinal()

	if !luks.IsFinal() {
		t.Error("expected luks to be final")
	}
	if !base.IsFinal() {
		t.Error("expected hard dep (source) to become final")
	}
	if key.IsFinal() {
		t.Error("expected load-only dep (key) to NOT become final")
	}
}

func TestLoad_LoadsDependenciesFirst(t *testing.T) {
	base := NewPath("/dev/sda1")
	mnt := NewMount(base, "/root", "ext4", "ro")

	var buf strings.Builder
	if err := mnt.Load(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !base.IsLoaded() {
		t.Error("expected dependency to be loaded")
	}
	if !mnt.IsLoaded() {
		t.Error("expected mnt to be loaded")
	}
	if !strings.Contains(buf.String(), "Mounting filesystem /root") {
		t.Errorf("expected mount message in output, got %q", buf.String())
	}
}

func TestLoad_DoubleLoadFails(t *testing.T) {
	n := NewPath("/dev/sda1")
	var buf strings.Builder
	if err := n.Load(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := n.Load(&buf); err == nil {
		t.Fatal("expected an error loading an already-loaded node")
	}
}

func TestUnload_FailsWhileStillNeeded(t *testing.T) {
	base := NewPath("/dev/sda1")
	mnt := NewMount(base, "/root", "ext4", "ro")
	var buf strings.Builder
	if err := mnt.Load(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := base.Unload(&buf); err == nil {
		t.Fatal("expected an error unloading a still-needed dependency")
	}
}

func TestUnload_EagerCleanupOfLoadOnlyKey(t *testing.T) {
	key := NewPath("/key")
	base := NewPath("/dev/sda1")
	luks := NewLuks(base, "root", key, nil, false)
	luks.SetFinal()

	var buf strings.Builder
	if err := luks.Load(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key.IsLoaded() {
		t.Error("expected load-only key dependency to be unloaded right after use")
	}
}

func TestIterAllDeps_Transitive(t *testing.T) {
	a := NewPath("/a")
	b := NewPath("/b")
	mnt := NewMount(a, "/mnt/b", "ext4", "ro")
	luks := NewLuks(mnt, "root", b, nil, false)

	deps := luks.IterAllDeps()
	found := map[*Node]bool{}
	for _, d := range deps {
		found[d] = true
	}
	if !found[mnt] || !found[a] || !found[b] {
		t.Errorf("expected transitive deps to include mnt, a and b, got %d deps", len(deps))
	}
}
