package source

import "io"

// variant is the per-Kind behavior a Node dispatches to: how to render
// its own load/unload shell fragments and its access-path expression.
// Kinds with no runtime action (KindPath, KindUUID, KindLabel) only
// implement path; their load/unload is the base no-op.
type variant interface {
	path(n *Node) string
	writeLoad(n *Node, w io.Writer) error
	writeUnload(n *Node, w io.Writer) error
}

var variants = map[Kind]variant{
	KindPath:     pathVariant{},
	KindUUID:     uuidLabelVariant{},
	KindLabel:    uuidLabelVariant{},
	KindLuks:     luksVariant{},
	KindLvm:      lvmVariant{},
	KindMount:    mountVariant{},
	KindMd:       mdVariant{},
	KindClone:    cloneVariant{},
	KindZfsPool:  zfsPoolVariant{},
	KindZfsCrypt: zfsCryptVariant{},
	KindNetwork:  networkVariant{},
	KindISCSI:    iscsiVariant{},
}

func (n *Node) v() variant { return variants[n.Kind] }

// Path returns the shell expression used to access this node's data from
// within the init environment — a path or a command substitution (e.g.
// "$(findfs UUID=foo)") — ready to use unquoted in the script.
func (n *Node) Path() string { return n.v().path(n) }

// preLoad loads every need/lneed dependency not already loaded, then
// marks n loaded. Mirrors the original's Data._pre_load.
func (n *Node) preLoad(w io.Writer) error {
	if n.isLoaded {
		return errAlreadyLoaded.WithMessagef("%s", n)
	}
	n.isLoaded = true
	for _, dep := range append(append([]*Node{}, n.need...), n.lneed...) {
		if !dep.isLoaded {
			if err := dep.Load(w); err != nil {
				return err
			}
		}
	}
	return nil
}

// postLoad eagerly loads reverse-dependencies when n is not final (so a
// load-only dependency can be unloaded again as soon as possible — the
// mechanism that lets a LUKS key get wiped right after use), then
// unloads n's own load-only deps that no longer have any loaded
// dependent. Mirrors Data._post_load.
func (n *Node) postLoad(w io.Writer) error {
	if !n.isFinal {
		for _, dependent := range n.neededBy {
			if !dependent.isLoaded {
				if err := dependent.Load(w); err != nil {
					return err
				}
			}
		}
	}
	for _, dep := range n.lneed {
		dep.neededBy = removeNode(dep.neededBy, n)
		if len(dep.neededBy) == 0 {
			if err := dep.Unload(w); err != nil {
				return err
			}
		}
	}
	return nil
}

// Load loads n: first its dependencies (preLoad), then its own variant
// action, then eager cleanup of now-unneeded load-only deps (postLoad).
// A no-op variant (KindPath/KindUUID/KindLabel) still runs the
// dependency bookkeeping.
func (n *Node) Load(w io.Writer) error {
	if err := n.preLoad(w); err != nil {
		return err
	}
	if err := n.v().writeLoad(n, w); err != nil {
		return err
	}
	return n.postLoad(w)
}

func (n *Node) preUnload() error {
	if !n.isLoaded {
		return errNotLoaded.WithMessagef("%s", n)
	}
	if n.isFinal || len(n.neededBy) != 0 {
		return errStillNeeded.WithMessagef("%s", n)
	}
	return nil
}

func (n *Node) postUnload(w io.Writer) error {
	for _, dep := range n.need {
		dep.neededBy = removeNode(dep.neededBy, n)
		if len(dep.neededBy) == 0 {
			if err := dep.Unload(w); err != nil {
				return err
			}
		}
	}
	n.isLoaded = false
	return nil
}

// Unload unloads n: checks it is actually loaded and not still needed,
// runs its own variant action, then recursively unloads any hard
// dependency that's no longer needed by anyone.
func (n *Node) Unload(w io.Writer) error {
	if err := n.preUnload(); err != nil {
		return err
	}
	if err := n.v().writeUnload(n, w); err != nil {
		return err
	}
	return n.postUnload(w)
}

// IterAllDeps returns every transitive dependency of n (hard and
// load-only), depth-first, duplicates included — matching the
// original's iter_all_deps, used by the configurator to collect the
// full set of Files/Execs/Libs/Busybox/Kmods needed across a subgraph.
func (n *Node) IterAllDeps() []*Node {
	var out []*Node
	for _, dep := range append(append([]*Node{}, n.need...), n.lneed...) {
		out = append(out, dep)
		out = append(out, dep.IterAllDeps()...)
	}
	return out
}
