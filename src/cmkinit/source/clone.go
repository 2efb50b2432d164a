package source

import (
	"fmt"
	"io"
)

// NewClone returns a node copying source's content onto dest. source is
// a load-only dependency (only needed during the copy); dest is a hard
// dependency (must stay present afterwards, since the clone's own Path
// is dest's).
func NewClone(source, dest *Node) *Node {
	n := &Node{Kind: KindClone, Source: source, Dest: dest, Busybox: []string{"cp"}}
	n.AddLoadDep(source)
	n.AddDep(dest)
	return n
}

type cloneVariant struct{}

func (cloneVariant) path(n *Node) string { return n.Dest.Path() }

func (cloneVariant) writeLoad(n *Node, w io.Writer) error {
	return writeAll(w,
		fmt.Sprintf("info 'Cloning %s'\n", n),
		fmt.Sprintf("cp -aT %s %s || die ", n.Source.Path(), n.Dest.Path()),
		shQuote(fmt.Sprintf("Failed to clone %s", n)), "\n",
		"\n",
	)
}

func (cloneVariant) writeUnload(*Node, io.Writer) error { return nil }
