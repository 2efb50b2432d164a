package item

import (
	"io"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
)

// MaterializeOptions controls BuildToDirectory's behavior.
type MaterializeOptions struct {
	// SkipNodes omits device-node creation (mknod requires CAP_MKNOD);
	// used for dry runs and unprivileged test environments, per
	// spec.md §4.2 "may be skipped in a dry-run mode".
	SkipNodes bool
}

// BuildToDirectory materializes every item, in insertion order, under
// baseDir on the real filesystem: creating the object, then chmod/chown
// to the declared mode/owner. Symlinks are never chmod'd (permission
// bits are meaningless for them and the original implementation only
// warns if Mode isn't the conventional 0o777).
func BuildToDirectory(items []*Item, baseDir string, opts MaterializeOptions) error {
	for _, it := range items {
		if err := it.buildToDirectory(baseDir, opts); err != nil {
			return err
		}
	}
	return nil
}

func (i *Item) buildToDirectory(baseDir string, opts MaterializeOptions) error {
	switch i.Kind {
	case KindFile:
		return i.buildFileToDirectory(baseDir)
	case KindDirectory:
		abs := filepath.Join(baseDir, i.Dest())
		if i.Dest() != "/" {
			if err := os.Mkdir(abs, os.FileMode(i.Mode)); err != nil {
				return wrapIO(err, "creating directory", abs)
			}
		}
		return chmodChown(abs, i.Mode, i.UID, i.GID)
	case KindNode:
		if opts.SkipNodes {
			return nil
		}
		abs := filepath.Join(baseDir, i.Dest())
		mode := uint32(i.Mode)
		if i.NodeType == NodeBlock {
			mode |= unix.S_IFBLK
		} else {
			mode |= unix.S_IFCHR
		}
		dev := unix.Mkdev(uint32(i.Major), uint32(i.Minor))
		if err := unix.Mknod(abs, mode, int(dev)); err != nil {
			return wrapIO(err, "creating device node", abs)
		}
		return chmodChown(abs, i.Mode, i.UID, i.GID)
	case KindSymlink:
		abs := filepath.Join(baseDir, i.Dest())
		if err := os.Symlink(i.Target, abs); err != nil {
			return wrapIO(err, "creating symlink", abs)
		}
		return unix.Lchown(abs, i.UID, i.GID)
	case KindPipe:
		abs := filepath.Join(baseDir, i.Dest())
		if err := unix.Mkfifo(abs, i.Mode); err != nil {
			return wrapIO(err, "creating named pipe", abs)
		}
		return chmodChown(abs, i.Mode, i.UID, i.GID)
	case KindSocket:
		abs := filepath.Join(baseDir, i.Dest())
		l, err := net.ListenUnix("unix", &net.UnixAddr{Name: abs, Net: "unix"})
		if err != nil {
			return wrapIO(err, "creating named socket", abs)
		}
		l.Close()
		return chmodChown(abs, i.Mode, i.UID, i.GID)
	default:
		return cmerrors.ErrInternal.WithMessagef("unknown item kind %q", i.Kind)
	}
}

func (i *Item) buildFileToDirectory(baseDir string) error {
	dests := sortedKeys(i.Dests)
	primary := filepath.Join(baseDir, dests[0])

	src, err := os.Open(i.Src)
	if err != nil {
		return wrapIO(err, "opening source file", i.Src)
	}
	defer src.Close()

	dst, err := os.OpenFile(primary, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(i.Mode))
	if err != nil {
		return wrapIO(err, "creating file", primary)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return wrapIO(err, "copying file contents to", primary)
	}
	if err := dst.Close(); err != nil {
		return wrapIO(err, "closing", primary)
	}
	if err := chmodChown(primary, i.Mode, i.UID, i.GID); err != nil {
		return err
	}

	for _, dest := range dests[1:] {
		abs := filepath.Join(baseDir, dest)
		if err := os.Link(primary, abs); err != nil {
			return wrapIO(err, "hard-linking", abs)
		}
	}
	return nil
}

func chmodChown(path string, mode uint32, uid, gid int) error {
	if err := os.Chmod(path, os.FileMode(mode)); err != nil {
		return wrapIO(err, "chmod", path)
	}
	if err := os.Chown(path, uid, gid); err != nil {
		return wrapIO(err, "chown", path)
	}
	return nil
}

func wrapIO(err error, action, path string) error {
	return cmerrors.ErrIOFailure.WithCause(err).WithMessagef("%s %s", action, path)
}
