package source

import "io"

// initializer are the one-shot, per-Kind "class init" emitters: shell
// functions or config files that must be written once, before the first
// node of that Kind is loaded, regardless of how many instances of the
// Kind exist (spec.md §9 "A table of per-variant class init emitters").
var initializers = map[Kind]func(io.Writer) error{
	KindLvm:     writeLvmConf,
	KindMount:   writeMountFsckFunc,
	KindNetwork: writeFindIfaceFunc,
}

// CollectKinds walks every node reachable from roots (via both hard and
// load-only edges) and returns the set of Kinds present, used to decide
// which one-shot initializers the init script needs.
func CollectKinds(roots []*Node) map[Kind]bool {
	seen := make(map[*Node]bool)
	kinds := make(map[Kind]bool)
	var walk func(*Node)
	walk = func(n *Node) {
		if seen[n] {
			return
		}
		seen[n] = true
		kinds[n.Kind] = true
		for _, dep := range n.need {
			walk(dep)
		}
		for _, dep := range n.lneed {
			walk(dep)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return kinds
}

// EmitInitializers writes every one-shot initializer whose Kind is
// present in kinds, in declaration order (Lvm, Mount, Network) so output
// is deterministic regardless of map iteration order.
func EmitInitializers(kinds map[Kind]bool, w io.Writer) error {
	order := []Kind{KindLvm, KindMount, KindNetwork}
	for _, k := range order {
		if !kinds[k] {
			continue
		}
		if fn, ok := initializers[k]; ok {
			if err := fn(w); err != nil {
				return err
			}
		}
	}
	return nil
}
