package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cmkinitramfs.ini")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_SimplePathRoot(t *testing.T) {
	path := writeTempConfig(t, `
[DEFAULT]
root = PATH=/dev/sda1
init = /sbin/init
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Root.IsFinal() {
		t.Error("expected root to be marked final")
	}
	if cfg.Init != "/sbin/init" {
		t.Errorf("Init = %q, want /sbin/init", cfg.Init)
	}
}

func TestLoad_LuksOverLvmWithMountpoints(t *testing.T) {
	path := writeTempConfig(t, `
[DEFAULT]
root = rootfs
mountpoints = bootfs

[luksdev]
type = luks
source = PATH=/dev/sda2
name = cryptroot
key = PATH=/etc/keyfile

[rootfs]
type = lvm
vg-name = vg0
lv-name = root
need = luksdev

[bootfs]
type = mount
source = UUID=1234-5678
mountpoint = /boot
filesystem = vfat
options = ro
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Root.VGName != "vg0" || cfg.Root.LVName != "root" {
		t.Errorf("unexpected root lvm fields: %+v", cfg.Root)
	}
	if len(cfg.Mounts) != 1 || cfg.Mounts[0].Mountpoint != "/boot" {
		t.Fatalf("unexpected mounts: %+v", cfg.Mounts)
	}
	deps := cfg.Root.IterAllDeps()
	var sawLuks bool
	for _, d := range deps {
		if d.Kind == "luks" {
			sawLuks = true
		}
	}
	if !sawLuks {
		t.Error("expected root's dependency chain to include the luks node")
	}
}

func TestLoad_DetectsCycle(t *testing.T) {
	path := writeTempConfig(t, `
[DEFAULT]
root = a

[a]
type = path
path = /dev/sda1
need = b

[b]
type = path
path = /dev/sda2
need = a
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected a cycle-detection error")
	}
	if !strings.Contains(err.Error(), "cycle") {
		t.Errorf("expected cycle error, got: %v", err)
	}
}

func TestLoad_FilesExecsLibsAndKeymap(t *testing.T) {
	path := writeTempConfig(t, `
[DEFAULT]
root = PATH=/dev/sda1
keymap = /usr/share/keymaps/fr.bmap
files =
	/etc/resolv.conf
	/etc/hosts:/etc/hosts
execs =
	/bin/busybox
libs =
	/lib/libc.so.6
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Keymap == nil || cfg.Keymap.Path != "/usr/share/keymaps/fr.bmap" {
		t.Fatalf("unexpected keymap: %+v", cfg.Keymap)
	}
	if len(cfg.Files) != 2 || cfg.Files[1].Dest != "/etc/hosts" {
		t.Fatalf("unexpected files: %+v", cfg.Files)
	}
	if len(cfg.Execs) != 1 || cfg.Execs[0].Src != "/bin/busybox" {
		t.Fatalf("unexpected execs: %+v", cfg.Execs)
	}
	if len(cfg.Libs) != 1 {
		t.Fatalf("unexpected libs: %+v", cfg.Libs)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.ini"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestLoad_UndefinedReference(t *testing.T) {
	path := writeTempConfig(t, `
[DEFAULT]
root = nonexistent
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected an error for an undefined data source reference")
	}
}
