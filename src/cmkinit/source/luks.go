package source

import (
	"fmt"
	"io"
)

// NewLuks returns a node unlocking a LUKS-encrypted block device into
// /dev/mapper/<name>. source is a hard dependency (must stay loaded
// while unlocked); key and header, if given, are load-only — needed
// only at unlock time.
func NewLuks(source *Node, name string, key, header *Node, discard bool) *Node {
	n := &Node{
		Kind: KindLuks, Source: source, Name: name, Key: key, Header: header, Discard: discard,
		Execs: []FileRef{{Src: "cryptsetup"}},
		Libs:  []FileRef{{Src: "libgcc_s.so.1"}},
		Kmods: []KmodRef{{Module: "dm-crypt"}},
	}
	n.AddDep(source)
	if key != nil {
		n.AddLoadDep(key)
	}
	if header != nil {
		n.AddLoadDep(header)
	}
	return n
}

type luksVariant struct{}

func (luksVariant) path(n *Node) string {
	return shQuote("/dev/mapper/" + n.Name)
}

func (luksVariant) writeLoad(n *Node, w io.Writer) error {
	header := ""
	if n.Header != nil {
		header = fmt.Sprintf("--header %s ", n.Header.Path())
	}
	keyFile := ""
	if n.Key != nil {
		keyFile = fmt.Sprintf("--key-file %s ", n.Key.Path())
	}
	discard := ""
	if n.Discard {
		discard = "--allow-discards "
	}
	return writeAll(w,
		fmt.Sprintf("info 'Unlocking LUKS device %s'\n", n),
		"cryptsetup ", header, keyFile, discard,
		fmt.Sprintf("open %s %s || die ", n.Source.Path(), shQuote(n.Name)),
		shQuote(fmt.Sprintf("Failed to unlock LUKS device %s", n)), "\n",
		"\n",
	)
}

func (luksVariant) writeUnload(n *Node, w io.Writer) error {
	return writeAll(w,
		fmt.Sprintf("info 'Closing LUKS device %s'\n", n),
		fmt.Sprintf("cryptsetup close %s || die ", shQuote(n.Name)),
		shQuote(fmt.Sprintf("Failed to close LUKS device %s", n)), "\n",
		"\n",
	)
}
