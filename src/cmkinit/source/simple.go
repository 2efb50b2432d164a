package source

import (
	"fmt"
	"io"
)

// NewPath returns a node referring directly to an absolute host path
// (e.g. /dev/sda1), with no load/unload action of its own.
func NewPath(path string) *Node {
	return &Node{Kind: KindPath, PathValue: path}
}

// NewUUID returns a node identified by filesystem or partition UUID.
// When partition is true, resolving it requires util-linux's findfs
// (not guaranteed by busybox) since PARTUUID support is util-linux
// specific.
func NewUUID(uuid string, partition bool) *Node {
	n := &Node{Kind: KindUUID, IDValue: uuid, Partition: partition}
	if partition {
		n.Execs = []FileRef{{Src: "findfs"}}
	} else {
		n.Busybox = []string{"findfs"}
	}
	return n
}

// NewLabel returns a node identified by filesystem or partition label.
func NewLabel(label string, partition bool) *Node {
	n := &Node{Kind: KindLabel, IDValue: label, Partition: partition}
	if partition {
		n.Execs = []FileRef{{Src: "findfs"}}
	} else {
		n.Busybox = []string{"findfs"}
	}
	return n
}

func (n *Node) String() string {
	switch n.Kind {
	case KindPath:
		return n.PathValue
	case KindUUID:
		if n.Partition {
			return "PARTUUID=" + n.IDValue
		}
		return "UUID=" + n.IDValue
	case KindLabel:
		if n.Partition {
			return "PARTLABEL=" + n.IDValue
		}
		return "LABEL=" + n.IDValue
	case KindLuks:
		return n.Name
	case KindLvm:
		return n.VGName + "/" + n.LVName
	case KindMount:
		return n.Mountpoint
	case KindMd:
		return n.Name
	case KindClone:
		return fmt.Sprintf("%s to %s", n.Source, n.Dest)
	case KindZfsPool:
		return "ZFS pool " + n.Pool
	case KindZfsCrypt:
		return "ZFS encrypted dataset " + n.Dataset
	case KindNetwork:
		return "network interface " + n.Device
	case KindISCSI:
		return "iSCSI target " + n.Target
	default:
		return string(n.Kind)
	}
}

type pathVariant struct{}

func (pathVariant) path(n *Node) string               { return shQuote(n.PathValue) }
func (pathVariant) writeLoad(*Node, io.Writer) error   { return nil }
func (pathVariant) writeUnload(*Node, io.Writer) error { return nil }

type uuidLabelVariant struct{}

func (uuidLabelVariant) path(n *Node) string {
	var prefix string
	switch {
	case n.Kind == KindUUID && n.Partition:
		prefix = "PARTUUID="
	case n.Kind == KindUUID:
		prefix = "UUID="
	case n.Partition:
		prefix = "PARTLABEL="
	default:
		prefix = "LABEL="
	}
	return `"$(findfs ` + shQuote(prefix+n.IDValue) + `)"`
}
func (uuidLabelVariant) writeLoad(*Node, io.Writer) error   { return nil }
func (uuidLabelVariant) writeUnload(*Node, io.Writer) error { return nil }
