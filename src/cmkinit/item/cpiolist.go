package item

import (
	"fmt"
	"sort"
	"strings"
)

// BuildCPIOList renders one line per item, in insertion order, in the
// gen_init_cpio grammar (spec.md §4.2/§6). A File with more than one
// destination lists its first destination as the canonical path and the
// rest as trailing hard-link peers.
func BuildCPIOList(items []*Item) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, it.cpioLine())
	}
	return strings.Join(lines, "\n")
}

func (i *Item) cpioLine() string {
	switch i.Kind {
	case KindFile:
		dests := sortedKeys(i.Dests)
		line := fmt.Sprintf("file %s %s %03o %d %d", dests[0], i.Src, i.Mode, i.UID, i.GID)
		if len(dests) > 1 {
			line += " " + strings.Join(dests[1:], " ")
		}
		return line
	case KindDirectory:
		return fmt.Sprintf("dir %s %03o %d %d", i.Dest(), i.Mode, i.UID, i.GID)
	case KindNode:
		return fmt.Sprintf("nod %s %03o %d %d %s %d %d", i.Dest(), i.Mode, i.UID, i.GID, i.NodeType, i.Major, i.Minor)
	case KindSymlink:
		return fmt.Sprintf("slink %s %s %03o %d %d", i.Dest(), i.Target, i.Mode, i.UID, i.GID)
	case KindPipe:
		return fmt.Sprintf("pipe %s %03o %d %d", i.Dest(), i.Mode, i.UID, i.GID)
	case KindSocket:
		return fmt.Sprintf("sock %s %03o %d %d", i.Dest(), i.Mode, i.UID, i.GID)
	default:
		return fmt.Sprintf("# unknown item kind %s", i.Kind)
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
