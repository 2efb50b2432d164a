package source

import (
	"fmt"
	"io"
	"path"
)

// NewMount returns a node mounting source at mountpoint with the given
// filesystem and options (default "ro" is the caller's responsibility;
// pass options explicitly). Recognized filesystems pull in their own
// fsck tool and kernel module as dependencies, mirroring the original's
// per-filesystem dependency table.
func NewMount(source *Node, mountpoint, filesystem, options string) *Node {
	if source == nil {
		source = NewPath("none")
	}
	n := &Node{
		Kind: KindMount, Source: source, Mountpoint: mountpoint,
		Filesystem: filesystem, Options: options,
		Busybox: []string{"fsck", "[", "reboot", "mkdir", "mount", "umount"},
	}
	switch filesystem {
	case "btrfs":
		n.Execs = append(n.Execs, FileRef{Src: "btrfs"}, FileRef{Src: "fsck.btrfs"})
		n.Kmods = append(n.Kmods, KmodRef{Module: "btrfs"})
	case "ext4":
		n.Execs = append(n.Execs, FileRef{Src: "fsck.ext4"}, FileRef{Src: "e2fsck"})
		n.Kmods = append(n.Kmods, KmodRef{Module: "ext4"})
	case "xfs":
		n.Execs = append(n.Execs, FileRef{Src: "fsck.xfs"}, FileRef{Src: "xfs_repair"})
		n.Kmods = append(n.Kmods, KmodRef{Module: "xfs"})
	case "fat", "vfat":
		n.Execs = append(n.Execs, FileRef{Src: "fsck.fat"}, FileRef{Src: "fsck.vfat"})
		n.Kmods = append(n.Kmods, KmodRef{Module: "vfat"})
	case "exfat":
		n.Execs = append(n.Execs, FileRef{Src: "fsck.exfat"})
		n.Kmods = append(n.Kmods, KmodRef{Module: "exfat"})
	case "f2fs":
		n.Execs = append(n.Execs, FileRef{Src: "fsck.f2fs"})
		n.Kmods = append(n.Kmods, KmodRef{Module: "f2fs"})
	case "zfs":
		n.Execs = append(n.Execs, FileRef{Src: "fsck.zfs"})
		n.Kmods = append(n.Kmods, KmodRef{Module: "zfs"})
	}
	n.AddDep(source)
	return n
}

type mountVariant struct{}

func (mountVariant) path(n *Node) string { return shQuote(n.Mountpoint) }

func (mountVariant) writeLoad(n *Node, w io.Writer) error {
	srcPath := n.Source.Path()

	var fsck string
	if srcPath != "none" {
		fsckExec := fmt.Sprintf("fsck -t %s", shQuote(n.Filesystem))
		if n.Filesystem == "zfs" {
			fsckExec = "fsck.zfs"
		}
		fsck = fmt.Sprintf("mount_fsck %s %s || die %s\n", fsckExec, srcPath,
			shQuote(fmt.Sprintf("Failed to check filesystem %s", n)))
	}

	var mkdir string
	if path.Dir(n.Mountpoint) == "/mnt" {
		mkdir = fmt.Sprintf("[ -d %s ] || mkdir %s || err %s\n",
			shQuote(n.Mountpoint), shQuote(n.Mountpoint),
			shQuote(fmt.Sprintf("Failed to create directory %s", shQuote(n.Mountpoint))))
	}

	return writeAll(w,
		fmt.Sprintf("info 'Mounting filesystem %s'\n", n),
		fsck, mkdir,
		fmt.Sprintf("mount -t %s -o %s %s %s || die ",
			shQuote(n.Filesystem), shQuote(n.Options), srcPath, shQuote(n.Mountpoint)),
		shQuote(fmt.Sprintf("Failed to mount filesystem %s", n)), "\n",
		"\n",
	)
}

func (mountVariant) writeUnload(n *Node, w io.Writer) error {
	return writeAll(w,
		fmt.Sprintf("info 'Unmounting filesystem %s'\n", n),
		fmt.Sprintf("umount %s || die ", shQuote(n.Mountpoint)),
		shQuote(fmt.Sprintf("Failed to unmount filesystem %s", n)), "\n",
		"\n",
	)
}

// fsckErrorCodes maps each fsck exit-status bit to the log level and
// message mount_fsck reports for it.
var fsckErrorCodes = []struct {
	bit   int
	level string
	msg   string
}{
	{1, "notice", "Filesystem errors corrected"},
	{2, "notice", "System should be rebooted"},
	{4, "alert", "Filesystem errors left uncorrected"},
	{8, "crit", "Operational error"},
	{16, "crit", "Usage or syntax error"},
	{32, "err", "Checking canceled by user request"},
	{128, "crit", "Shared-library error"},
}

const (
	fsckCodeErr    = 4 | 8 | 16 | 32 | 64 | 128
	fsckCodeReboot = 2
)

// writeMountFsckFunc emits the mount_fsck() shell function once: it runs
// fsck with FSTAB_FILE=/dev/null, classifies the exit code bit by bit,
// and reboots on a code demanding one.
func writeMountFsckFunc(w io.Writer) error {
	if err := writeAll(w,
		"mount_fsck()\n",
		"{\n",
		"\tFSTAB_FILE=/dev/null \"$@\"\n",
		"\tfsck_ret=$?\n",
		"\t[ \"${fsck_ret}\" -eq 0 ] && return 0\n",
	); err != nil {
		return err
	}
	for _, e := range fsckErrorCodes {
		if err := writeAll(w,
			fmt.Sprintf("\t[ \"$((fsck_ret & %d))\" -eq %d ] && %s %s\n",
				e.bit, e.bit, e.level, shQuote(fmt.Sprintf("fsck: %s", e.msg))),
		); err != nil {
			return err
		}
	}
	return writeAll(w,
		fmt.Sprintf("\t[ \"$((fsck_ret & %d))\" -ne 0 ] && return 1\n", fsckCodeErr),
		fmt.Sprintf("\tif [ \"$((fsck_ret & %d))\" -eq 2 ]; then notice 'Rebooting...'; reboot -f; fi\n", fsckCodeReboot),
		"\treturn 0\n",
		"}\n",
		"\n",
	)
}
