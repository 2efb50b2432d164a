package source

import (
	"fmt"
	"io"
	"strings"
)

// NewZfsPool returns a node importing a ZFS pool. cache, if given, is a
// load-only dependency on a file containing a ZFS cache.
func NewZfsPool(pool string, cache *Node) *Node {
	n := &Node{
		Kind: KindZfsPool, Pool: pool, Cache: cache,
		Execs: []FileRef{{Src: "zpool"}},
		Kmods: []KmodRef{{Module: "zfs"}},
	}
	if cache != nil {
		n.AddLoadDep(cache)
	}
	return n
}

type zfsPoolVariant struct{}

func (zfsPoolVariant) path(n *Node) string { return shQuote(n.Pool) }

func (zfsPoolVariant) writeLoad(n *Node, w io.Writer) error {
	cache := ""
	if n.Cache != nil {
		cache = fmt.Sprintf("-c %s ", n.Cache.Path())
	}
	return writeAll(w,
		fmt.Sprintf("info %s\n", shQuote(fmt.Sprintf("Importing %s", n))),
		fmt.Sprintf("zpool import -N %s%s || die ", cache, shQuote(n.Pool)),
		shQuote(fmt.Sprintf("Failed to import %s", n)), "\n",
		"\n",
	)
}

func (zfsPoolVariant) writeUnload(n *Node, w io.Writer) error {
	return writeAll(w,
		fmt.Sprintf("info %s\n", shQuote(fmt.Sprintf("Exporting %s", n))),
		fmt.Sprintf("zpool export %s || die ", shQuote(n.Pool)),
		shQuote(fmt.Sprintf("Failed to export %s", n)), "\n",
		"\n",
	)
}

// NewZfsCrypt returns a node unlocking an encrypted ZFS dataset on an
// already-imported pool. dataset must live on pool (its name must start
// with pool's pool name followed by '/'); callers are expected to have
// validated this at configuration time, matching the original raising
// at construction.
func NewZfsCrypt(pool *Node, dataset string, key *Node) *Node {
	if pool.Kind != KindZfsPool {
		panic("source: ZFS encrypted dataset's pool argument is not a ZfsPool node")
	}
	if first, _, _ := strings.Cut(dataset, "/"); first != pool.Pool {
		panic(fmt.Sprintf("source: dataset %q is not on pool %s", dataset, pool.Pool))
	}
	n := &Node{
		Kind: KindZfsCrypt, PoolRef: pool, Dataset: dataset, Key: key,
		Execs: []FileRef{{Src: "zfs"}},
	}
	n.AddDep(pool)
	if key != nil {
		n.AddLoadDep(key)
	}
	return n
}

type zfsCryptVariant struct{}

func (zfsCryptVariant) path(n *Node) string { return shQuote(n.Dataset) }

func (zfsCryptVariant) writeLoad(n *Node, w io.Writer) error {
	key := ""
	if n.Key != nil {
		key = fmt.Sprintf("-L %s ", n.Key.Path())
	}
	return writeAll(w,
		fmt.Sprintf("info %s\n", shQuote(fmt.Sprintf("Unlocking %s", n))),
		fmt.Sprintf("zfs load-key -r %s%s 1>&2 || die ", key, shQuote(n.Dataset)),
		shQuote(fmt.Sprintf("Failed to unlock %s", n)), "\n",
		"\n",
	)
}

func (zfsCryptVariant) writeUnload(n *Node, w io.Writer) error {
	return writeAll(w,
		fmt.Sprintf("info %s\n", shQuote(fmt.Sprintf("Locking %s", n))),
		fmt.Sprintf("zfs unload-key -r %s || die ", shQuote(n.Dataset)),
		shQuote(fmt.Sprintf("Failed to lock %s", n)), "\n",
		"\n",
	)
}
