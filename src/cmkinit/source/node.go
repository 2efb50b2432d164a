// Package source implements the DataSource dependency graph (C4): the
// polymorphic description of where root/boot data comes from and how to
// bring it online, emitted as POSIX shell fragments for the init script
// (C5).
package source

import (
	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
)

// Kind identifies a Node's variant. Each Kind drives Load/Unload/Path
// dispatch and which fields of Node are meaningful, mirroring item.Kind's
// closed tagged-variant idiom (spec.md §9 "Replacing dynamic
// polymorphism") in place of the original's class hierarchy.
type Kind string

const (
	KindPath     Kind = "path"
	KindUUID     Kind = "uuid"
	KindLabel    Kind = "label"
	KindLuks     Kind = "luks"
	KindLvm      Kind = "lvm"
	KindMount    Kind = "mount"
	KindMd       Kind = "md"
	KindClone    Kind = "clone"
	KindZfsPool  Kind = "zfspool"
	KindZfsCrypt Kind = "zfscrypt"
	KindNetwork  Kind = "network"
	KindISCSI    Kind = "iscsi"
)

// FileRef is a (host-source, image-destination) pair needed to load a
// Node; an empty Dest means "same path as Src".
type FileRef struct {
	Src  string
	Dest string
}

// KmodRef is a kernel module name plus the parameters it should be
// modprobe'd with.
type KmodRef struct {
	Module string
	Params []string
}

// Node is one vertex of the dependency graph. Common fields record what
// the init script needs staged in the image to load this node
// (Files/Execs/Libs/Busybox/Kmods, consumed by C3); the dependency edges
// and load state are private so that edge invariants are only ever
// mutated through AddDep/AddLoadDep/SetFinal.
type Node struct {
	Kind Kind

	Files   []FileRef
	Execs   []FileRef
	Libs    []FileRef
	Busybox []string
	Kmods   []KmodRef

	need     []*Node
	lneed    []*Node
	neededBy []*Node
	isFinal  bool
	isLoaded bool

	// Variant-specific fields.
	PathValue string // KindPath

	IDValue   string // KindUUID/KindLabel: the UUID or label string
	Partition bool   // KindUUID/KindLabel: PARTUUID/PARTLABEL vs UUID/LABEL

	Source  *Node  // KindLuks/KindMount/KindZfsCrypt: hard-dep source
	Name    string // KindLuks/KindMd: device-mapper/md name
	Key     *Node  // KindLuks/KindZfsCrypt: load-dep key file
	Header  *Node  // KindLuks: load-dep detached header
	Discard bool   // KindLuks: --allow-discards

	VGName string // KindLvm
	LVName string // KindLvm

	Mountpoint string // KindMount
	Filesystem string // KindMount
	Options    string // KindMount

	Sources []*Node // KindMd: hard-dep sources

	Dest *Node // KindClone: hard-dep destination

	Pool    string // KindZfsPool
	Cache   *Node  // KindZfsPool: load-dep cache file
	PoolRef *Node  // KindZfsCrypt: hard-dep ZfsPool
	Dataset string // KindZfsCrypt

	Device  string // KindNetwork: MAC address
	IP      string // KindNetwork
	Mask    string // KindNetwork
	Gateway string // KindNetwork

	Initiator  string // KindISCSI
	Target     string // KindISCSI
	PortalGrp  int    // KindISCSI
	Address    string // KindISCSI
	Port       int    // KindISCSI
	Username   string // KindISCSI
	Password   string // KindISCSI
	UsernameIn string // KindISCSI
	PasswordIn string // KindISCSI
}

// IsFinal reports whether the node has been marked as required for the
// final boot environment.
func (n *Node) IsFinal() bool { return n.isFinal }

// IsLoaded reports whether the node is currently loaded.
func (n *Node) IsLoaded() bool { return n.isLoaded }

// AddDep adds dep as a hard dependency of n: dep must be loaded before n
// and must not be unloaded while n still needs it. A hard dep always
// wins over a previously-added load-only dep for the same node (spec.md
// §4.4 "promote a load-edge to a hard-edge").
func (n *Node) AddDep(dep *Node) {
	n.lneed = removeNode(n.lneed, dep)
	if !containsNode(n.need, dep) {
		n.need = append(n.need, dep)
	}
	if !containsNode(dep.neededBy, n) {
		dep.neededBy = append(dep.neededBy, n)
	}
}

// AddLoadDep adds dep as a load-only dependency of n: dep must be loaded
// before n, but n does not keep dep alive afterwards. A no-op if dep is
// already a hard or load dependency.
func (n *Node) AddLoadDep(dep *Node) {
	if !containsNode(n.lneed, dep) && !containsNode(n.need, dep) {
		n.lneed = append(n.lneed, dep)
	}
	if !containsNode(dep.neededBy, n) {
		dep.neededBy = append(dep.neededBy, n)
	}
}

// SetFinal marks n as required for the final boot environment: it will
// never be unloaded. The flag propagates to every hard dependency
// (spec.md §4.4 "Finality propagation").
func (n *Node) SetFinal() {
	n.isFinal = true
	for _, dep := range n.need {
		dep.SetFinal()
	}
}

func containsNode(list []*Node, n *Node) bool {
	for _, x := range list {
		if x == n {
			return true
		}
	}
	return false
}

func removeNode(list []*Node, n *Node) []*Node {
	out := list[:0]
	for _, x := range list {
		if x != n {
			out = append(out, x)
		}
	}
	return out
}

var errAlreadyLoaded = cmerrors.ErrGraphInvariantBroken.WithMessage("node is already loaded")
var errNotLoaded = cmerrors.ErrGraphInvariantBroken.WithMessage("node is not loaded")
var errStillNeeded = cmerrors.ErrGraphInvariantBroken.WithMessage("node is final or still needed")
