package image

import (
	"os"
	"path/filepath"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
	"github.com/bitswalk/cmkinit/src/cmkinit/item"
)

// baseDirs is the fixed set of FHS directories every image gets,
// regardless of config, matching the original's __mklayout().
var baseDirs = []string{"/bin", "/dev", "/etc", "/mnt", "/proc", "/root", "/run", "/sbin", "/sys"}

// libDirs are mirrored from the build host as either a symlink (the
// common merged-/usr layout) or a plain directory, whichever the host
// actually has.
var libDirs = []string{"/lib", "/lib32", "/lib64"}

// mkLayout builds the fixed initramfs skeleton: the root directory, the
// base FHS directories, a host-mirrored /lib*, the four device nodes
// PID 1 needs before anything else is mounted, and a per-kernel modules
// directory seeded with the three metadata files depmod needs.
func (b *Builder) mkLayout() error {
	root := b.dir(0o755, "/")
	if err := b.store.Insert(root); err != nil {
		return err
	}

	for _, d := range baseDirs {
		if err := b.store.Insert(b.dir(0o755, d)); err != nil {
			return err
		}
	}

	for _, ld := range libDirs {
		hostPath := filepath.Join(b.BinRoot, ld)
		if target, err := os.Readlink(hostPath); err == nil {
			if err := b.store.Insert(&item.Item{
				Kind: item.KindSymlink, Mode: 0o777, UID: b.UID, GID: b.GID,
				Dests: map[string]bool{ld: true}, Target: target,
			}); err != nil {
				return err
			}
			continue
		}
		if info, err := os.Stat(hostPath); err == nil && info.IsDir() {
			if err := b.store.Insert(b.dir(0o755, ld)); err != nil {
				return err
			}
		}
	}

	type devNode struct {
		dest         string
		mode         uint32
		major, minor int
	}
	for _, d := range []devNode{
		{"/dev/console", 0o600, 5, 1},
		{"/dev/tty", 0o666, 5, 0},
		{"/dev/null", 0o666, 1, 3},
		{"/dev/kmsg", 0o644, 1, 11},
	} {
		if err := b.store.Insert(b.node(d.mode, d.dest, item.NodeCharacter, d.major, d.minor)); err != nil {
			return err
		}
	}

	for _, kernel := range b.Kernels {
		moduleDir := "/" + filepath.Join("lib/modules", kernel)
		if err := b.Mkdir(moduleDir, 0o755, true); err != nil {
			return err
		}
		hostKmodDir := filepath.Join(b.BinRoot, "lib/modules", kernel)
		for _, meta := range []string{"modules.order", "modules.builtin", "modules.builtin.modinfo"} {
			src := filepath.Join(hostKmodDir, meta)
			if _, err := os.Stat(src); err != nil {
				continue // not every kernel tree ships all three; skip what's absent
			}
			if err := b.AddFile(src, filepath.Join(moduleDir, meta), 0o640); err != nil {
				return cmerrors.ErrIOFailure.WithCause(err).WithMessagef("adding %s", src)
			}
		}
	}

	return nil
}
