package source

import (
	"fmt"
	"io"
)

// NewMd returns a node assembling an MD RAID array from sources into
// /dev/md/<name>. Panics if sources is empty — an MD array with no
// members is a configuration error the caller must catch before
// building the graph, matching the original raising ValueError from its
// constructor.
func NewMd(sources []*Node, name string) *Node {
	if len(sources) == 0 {
		panic("source: MD RAID " + name + " has no source defined")
	}
	n := &Node{
		Kind: KindMd, Sources: sources, Name: name,
		Execs: []FileRef{{Src: "mdadm"}},
	}
	for _, s := range sources {
		n.AddDep(s)
	}
	return n
}

type mdVariant struct{}

func (mdVariant) path(n *Node) string {
	return shQuote("/dev/md/" + n.Name)
}

func (mdVariant) writeLoad(n *Node, w io.Writer) error {
	seen := make(map[string]bool)
	var sources []string
	for _, s := range n.Sources {
		var part string
		if s.Kind == KindUUID {
			part = fmt.Sprintf("--uuid %s ", shQuote(s.IDValue))
		} else {
			part = fmt.Sprintf("%s ", s.Path())
		}
		if !seen[part] {
			seen[part] = true
			sources = append(sources, part)
		}
	}

	parts := []string{
		fmt.Sprintf("info 'Assembling MD RAID %s'\n", n),
		"MDADM_NO_UDEV=1 ",
		"mdadm --assemble ",
	}
	parts = append(parts, sources...)
	parts = append(parts,
		fmt.Sprintf("%s || die ", shQuote(n.Name)),
		shQuote(fmt.Sprintf("Failed to assemble MD RAID %s", n)), "\n",
		"\n",
	)
	return writeAll(w, parts...)
}

func (mdVariant) writeUnload(n *Node, w io.Writer) error {
	return writeAll(w,
		fmt.Sprintf("info 'Stopping MD RAID %s'\n", n),
		"MDADM_NO_UDEV=1 ",
		fmt.Sprintf("mdadm --stop %s || die ", shQuote(n.Name)),
		shQuote(fmt.Sprintf("Failed to stop MD RAID %s", n)), "\n",
		"\n",
	)
}
