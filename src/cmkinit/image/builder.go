// Package image implements the initramfs image builder (C3): it
// orchestrates C1 (binary resolver) and C2 (item store) to lay out the
// initramfs skeleton, pull in declared files/executables/libraries/
// modules with their transitive dependencies, and serialize the result
// to a directory or a CPIO archive.
package image

import (
	"os"
	"path/filepath"
	"strings"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
	"github.com/bitswalk/cmkinit/src/cmkinit/elf"
	"github.com/bitswalk/cmkinit/src/cmkinit/item"
)

// Builder assembles the in-memory item.Store that describes an
// initramfs image.
type Builder struct {
	UID, GID int
	// BinRoot is the root directory libraries/executables are resolved
	// under (normally "/", the build host's own root, but tests point
	// it at a throwaway fixture tree).
	BinRoot string
	Kernels []string

	store *item.Store
}

// New returns a Builder with its base layout already created. kernels
// defaults to nothing — callers targeting the running kernel should
// pass its release string explicitly; cmkinit never inspects uname
// itself at this layer (that's the config loader's job, C6).
func New(uid, gid int, binRoot string, kernels []string) (*Builder, error) {
	b := &Builder{UID: uid, GID: gid, BinRoot: binRoot, Kernels: kernels, store: item.New()}
	if err := b.mkLayout(); err != nil {
		return nil, err
	}
	return b, nil
}

// Items returns the builder's items in insertion order.
func (b *Builder) Items() []*item.Item {
	return b.store.Items()
}

func (b *Builder) dir(mode uint32, dest string) *item.Item {
	return &item.Item{Kind: item.KindDirectory, Mode: mode, UID: b.UID, GID: b.GID, Dests: map[string]bool{dest: true}}
}

func (b *Builder) node(mode uint32, dest string, nt item.NodeType, major, minor int) *item.Item {
	return &item.Item{Kind: item.KindNode, Mode: mode, UID: b.UID, GID: b.GID, Dests: map[string]bool{dest: true}, NodeType: nt, Major: major, Minor: minor}
}

func (b *Builder) compatRef() string {
	return filepath.Join(b.BinRoot, "bin/sh")
}

func (b *Builder) resolveDepChain(src string) error {
	deps, err := elf.FindELFDeps(src, b.BinRoot)
	if err != nil {
		return err
	}
	for _, dep := range deps {
		if err := b.AddFile(dep.Src, dep.Dest, 0); err != nil {
			return err
		}
	}
	return nil
}

// AddFile adds src (resolved to its realpath, so a symlink source is
// dereferenced) as dest (normalized per item.NormalizePath; empty means
// "same as src"), pulling in its transitive ELF dependencies first. mode
// 0 means "use src's own file mode".
func (b *Builder) AddFile(src, dest string, mode uint32) error {
	abs, err := filepath.Abs(src)
	if err != nil {
		return cmerrors.ErrIOFailure.WithCause(err).WithMessagef("resolving absolute path for %s", src)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return cmerrors.ErrIOFailure.WithCause(err).WithMessagef("resolving %s", abs)
	}
	info, err := os.Stat(real)
	if err != nil {
		return cmerrors.ErrIOFailure.WithCause(err).WithMessagef("stat %s", real)
	}

	if dest == "" {
		dest = real
	}
	dest = item.NormalizePath(dest)

	if err := b.resolveDepChain(real); err != nil {
		return err
	}

	if mode == 0 {
		mode = uint32(info.Mode().Perm())
	}
	hash, err := item.HashFile(real)
	if err != nil {
		return err
	}
	return b.store.Insert(&item.Item{
		Kind: item.KindFile, Mode: mode, UID: b.UID, GID: b.GID,
		Dests: map[string]bool{dest: true}, Src: real, DataHash: hash,
	})
}

// AddLibrary resolves lib via C1's library search and adds it as a file.
// dest overrides the resolved destination when non-empty.
func (b *Builder) AddLibrary(lib, dest string, mode uint32) error {
	dep, err := elf.FindLib(lib, b.compatRef(), b.BinRoot)
	if err != nil {
		return err
	}
	if dest == "" {
		dest = dep.Dest
	}
	return b.AddFile(dep.Src, dest, mode)
}

// AddExecutable resolves executable via C1's PATH search and adds it as
// a file. dest overrides the resolved destination when non-empty.
func (b *Builder) AddExecutable(executable, dest string, mode uint32) error {
	dep, err := elf.FindExec(executable, b.compatRef(), b.BinRoot)
	if err != nil {
		return err
	}
	if dest == "" {
		dest = dep.Dest
	}
	return b.AddFile(dep.Src, dest, mode)
}

// AddKmod resolves module for every configured kernel and adds it and
// its transitive module dependencies (per modinfo -F depends), creating
// the destination's parent directories as needed. mode 0 keeps each
// module file's own permissions on the host.
func (b *Builder) AddKmod(module string, mode uint32) error {
	for _, kernel := range b.Kernels {
		if err := b.addKmodFor(module, kernel, mode, map[string]bool{}); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) addKmodFor(module, kernel string, mode uint32, seen map[string]bool) error {
	if seen[module] {
		return nil
	}
	seen[module] = true

	path, err := elf.FindKmod(module, kernel, b.BinRoot)
	if err != nil {
		return err
	}
	deps, err := elf.FindKmodDeps(path)
	if err != nil {
		return err
	}
	for _, dep := range deps {
		if err := b.addKmodFor(dep, kernel, mode, seen); err != nil {
			return err
		}
	}

	dest := item.NormalizePath(strings.TrimPrefix(path, b.BinRoot))
	if err := b.Mkdir(filepath.Dir(dest), 0o755, true); err != nil {
		return err
	}
	return b.AddFile(path, dest, mode)
}

// Mkdir creates a directory item at path. If parents is true, any
// missing parent directory is created first (recursively).
func (b *Builder) Mkdir(path string, mode uint32, parents bool) error {
	path = item.NormalizePath(path)
	if parents {
		parent := filepath.Dir(path)
		if parent != "/" && !b.store.Contains(parent) {
			if err := b.Mkdir(parent, mode, true); err != nil {
				return err
			}
		}
	}
	return b.store.Insert(b.dir(mode, path))
}
