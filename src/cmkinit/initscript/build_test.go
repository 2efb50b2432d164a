package initscript

import (
	"strings"
	"testing"

	"github.com/bitswalk/cmkinit/src/cmkinit/source"
)

func TestBuild_EmitsHeaderBreaksAndSwitchRoot(t *testing.T) {
	root := source.NewPath("/dev/sda1")
	var buf strings.Builder
	cfg := Config{Root: root}
	if err := Build(&buf, cfg); err != nil {
		t.Fatalf("Build: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"#!/bin/sh",
		"rescue_shell()",
		"panic()",
		"die()",
		"Parsing command-line",
		"exec switch_root /dev/sda1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestBuild_EmitsMountInitializerOnlyWhenPresent(t *testing.T) {
	base := source.NewPath("/dev/sda1")
	mnt := source.NewMount(base, "/root", "ext4", "ro")
	var buf strings.Builder
	if err := Build(&buf, Config{Root: mnt}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(buf.String(), "mount_fsck") {
		t.Error("expected mount_fsck initializer to be emitted for a Mount root")
	}

	var buf2 strings.Builder
	if err := Build(&buf2, Config{Root: base}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if strings.Contains(buf2.String(), "mount_fsck") {
		t.Error("did not expect mount_fsck initializer without a Mount node")
	}
}

func TestBuild_IncludesModuleLoadingAndKeymap(t *testing.T) {
	root := source.NewPath("/dev/sda1")
	var buf strings.Builder
	cfg := Config{
		Root:          root,
		Keymap:        "/etc/keymap.bin",
		KeymapUnicode: true,
		Modules:       []ModuleSpec{{Name: "ext4"}, {Name: "dm_crypt", Args: []string{"foo=bar"}}},
	}
	if err := Build(&buf, cfg); err != nil {
		t.Fatalf("Build: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "loadkmap </etc/keymap.bin") {
		t.Errorf("expected keymap load, got:\n%s", out)
	}
	if !strings.Contains(out, "modprobe ext4") || !strings.Contains(out, "modprobe dm_crypt foo=bar") {
		t.Errorf("expected both modules to be modprobed, got:\n%s", out)
	}
}

func TestBreakpoint_EnvVar(t *testing.T) {
	cases := map[Breakpoint]string{
		BreakEarly:  "RD_BREAK_EARLY",
		BreakInit:   "RD_BREAK_INIT",
		BreakModule: "RD_BREAK_MODULE",
		BreakRootfs: "RD_BREAK_ROOTFS",
		BreakMount:  "RD_BREAK_MOUNT",
	}
	for bp, want := range cases {
		if got := bp.envVar(); got != want {
			t.Errorf("Breakpoint(%d).envVar() = %q, want %q", bp, got, want)
		}
	}
}
