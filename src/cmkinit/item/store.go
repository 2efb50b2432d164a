package item

import (
	"fmt"
	"path"
	"strings"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
)

// Store is the in-memory item tree (C2). Items are kept in insertion
// order — iteration and serialization both depend on it (spec.md §5
// "Ordering guarantees") — with auxiliary indexes for O(1) collision and
// parent-exists checks, since a hash-free linear scan would make large
// images (busybox plus hundreds of applets) quadratic to build.
type Store struct {
	items []*Item

	// destOwner maps every claimed destination path to the index of the
	// item in items that owns it.
	destOwner map[string]int

	// dirs is the set of destination paths known to be directories,
	// used for the parent-exists check; "/" is seeded as always present.
	dirs map[string]bool

	// mergeIndex maps a mergeKey to the indices of items sharing it, so
	// Insert can find a hash-merge candidate at a destination newItem has
	// never claimed before (spec.md §4.2 step 1) without a linear scan of
	// every item already in the store.
	mergeIndex map[string][]int
}

// New returns an empty Store. The root "/" is considered to always
// exist as a directory, so the first real insertion (conventionally a
// Directory at "/") never fails the parent-exists check on itself, and
// every top-level item's parent check against "/" succeeds.
func New() *Store {
	return &Store{
		destOwner:  make(map[string]int),
		dirs:       map[string]bool{"/": true},
		mergeIndex: make(map[string][]int),
	}
}

// Items returns the store's items in insertion order. The returned
// slice must not be mutated.
func (s *Store) Items() []*Item {
	return s.items
}

// Lookup returns the item owning dest, if any.
func (s *Store) Lookup(dest string) (*Item, bool) {
	idx, ok := s.destOwner[dest]
	if !ok {
		return nil, false
	}
	return s.items[idx], true
}

// Contains reports whether dest is already claimed by some item.
func (s *Store) Contains(dest string) bool {
	_, ok := s.destOwner[dest]
	return ok
}

// Insert adds newItem to the store, merging it into an existing
// mergeable item if one exists. Every destination in newItem must have
// an existing directory parent (except "/" itself) and must not already
// be claimed by a different, non-mergeable item.
func (s *Store) Insert(newItem *Item) error {
	for dest := range newItem.Dests {
		if dest != "/" {
			parent := parentOf(dest)
			if !s.dirs[parent] {
				return cmerrors.ErrItemMissingParent.WithMessagef("parent directory %q for %q is not present in the item store", parent, dest)
			}
		}
	}

	var mergeTarget *Item
	for dest := range newItem.Dests {
		if idx, ok := s.destOwner[dest]; ok {
			existing := s.items[idx]
			if mergeTarget != nil && mergeTarget != existing {
				return cmerrors.ErrItemConflict.WithMessagef("destination %q claimed by a second, different item", dest)
			}
			if !existing.IsMergeable(newItem) {
				return cmerrors.ErrItemConflict.WithMessagef("destination %q already claimed by a conflicting item: %s vs %s", dest, existing, newItem)
			}
			mergeTarget = existing
		}
	}

	// No destination collision: still look for a mergeable item at a
	// destination newItem has never claimed, e.g. two distinct busybox
	// applet paths whose content hashes to the same file (spec.md §4.2
	// step 1, golden scenario 6 "hash-merged hard links").
	if mergeTarget == nil {
		if key := mergeKey(newItem); key != "" {
			for _, idx := range s.mergeIndex[key] {
				if s.items[idx].IsMergeable(newItem) {
					mergeTarget = s.items[idx]
					break
				}
			}
		}
	}

	if mergeTarget != nil {
		idx := s.destOwner[mergeTarget.Dest0()] // captured before Merge adds newItem's keys
		mergeTarget.Merge(newItem)
		for dest := range newItem.Dests {
			s.destOwner[dest] = idx
		}
		return nil
	}

	idx := len(s.items)
	s.items = append(s.items, newItem)
	for dest := range newItem.Dests {
		s.destOwner[dest] = idx
	}
	if newItem.Kind == KindDirectory {
		for dest := range newItem.Dests {
			s.dirs[dest] = true
		}
	}
	if key := mergeKey(newItem); key != "" {
		s.mergeIndex[key] = append(s.mergeIndex[key], idx)
	}
	return nil
}

// mergeKey returns an index key grouping items that could be merge
// candidates for one another, or "" if the Kind never merges across
// distinct destinations (a Directory only ever merges via re-insertion
// at a destination it already owns). The key only needs to be a
// superset test: Insert still calls IsMergeable before merging.
func mergeKey(i *Item) string {
	switch i.Kind {
	case KindFile:
		return fmt.Sprintf("file:%x:%d:%d:%d", i.DataHash, i.Mode, i.UID, i.GID)
	case KindNode:
		return fmt.Sprintf("nod:%s:%d:%d:%d:%d:%d", i.NodeType, i.Major, i.Minor, i.Mode, i.UID, i.GID)
	case KindSymlink:
		return fmt.Sprintf("slink:%s:%d:%d:%d", i.Target, i.Mode, i.UID, i.GID)
	case KindPipe, KindSocket:
		return fmt.Sprintf("%s:%d:%d:%d", i.Kind, i.Mode, i.UID, i.GID)
	default:
		return ""
	}
}

// Dest0 returns an arbitrary destination of the item, stable enough for
// indexing purposes (any of its current destinations already maps to
// the same store index).
func (i *Item) Dest0() string {
	for d := range i.Dests {
		return d
	}
	return ""
}

func parentOf(dest string) string {
	p := path.Dir(dest)
	if p == "." {
		return "/"
	}
	return p
}

// NormalizePath applies the image path rules (spec.md §3): collapse to a
// slash-rooted, cleaned path, warn-worthy embedded whitespace is left to
// the caller to log, and "/usr/local" and "/usr" prefixes are stripped
// so that host paths under a merged-/usr layout land at their
// traditional FHS location inside the image.
func NormalizePath(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = path.Clean(p)
	for _, prefix := range []string{"/usr/local", "/usr"} {
		if p == prefix {
			return "/"
		}
		if rest, ok := strings.CutPrefix(p, prefix+"/"); ok {
			return "/" + rest
		}
	}
	return p
}
