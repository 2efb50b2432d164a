package elf

import (
	stdelf "debug/elf"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
)

// Dependency is a resolved (source-on-host, destination-in-image) pair,
// as produced by FindELFDeps, FindLib and FindExec.
type Dependency struct {
	Src  string
	Dest string
}

type depsCacheKey struct {
	src  string
	root string
}

var depsCache sync.Map // map[depsCacheKey][]Dependency

// FindELFDeps resolves the direct ELF dependencies of src (its
// PT_INTERP interpreter plus every DT_NEEDED entry; the dependencies of
// those dependencies are not followed here), following the exact
// loader search order: DT_RPATH, then LD_LIBRARY_PATH, then DT_RUNPATH,
// then ld.so.conf entries, then the default library directories — skipping
// the default directories entirely when DF_1_NODEFLIB is set.
//
// src is resolved through symlinks first. A file that does not parse as
// ELF yields an empty, error-free result: not being an ELF file is not a
// failure condition for this function. A DT_NEEDED entry that cannot be
// found anywhere in the search order is ErrELFDependencyMissing.
//
// Results are memoized per (src, root).
func FindELFDeps(src, root string) ([]Dependency, error) {
	real, err := filepath.EvalSymlinks(src)
	if err != nil {
		return nil, cmerrors.ErrIOFailure.WithCause(err).WithMessagef("resolving symlinks for %s", src)
	}

	key := depsCacheKey{src: real, root: root}
	if cached, ok := depsCache.Load(key); ok {
		return cached.([]Dependency), nil
	}

	f, err := stdelf.Open(real)
	if err != nil {
		// Not an ELF file (or unreadable as one): no dependencies, no error.
		depsCache.Store(key, []Dependency(nil))
		return nil, nil
	}
	defer f.Close()

	deps, err := findELFDepsFor(f, real, root)
	if err != nil {
		return nil, err
	}
	depsCache.Store(key, deps)
	return deps, nil
}

func findELFDepsFor(f *stdelf.File, src, root string) ([]Dependency, error) {
	origin := filepath.Dir(src)
	var needs []string

	for _, p := range f.Progs {
		if p.Type == stdelf.PT_INTERP {
			data, err := io.ReadAll(p.Open())
			if err == nil {
				needs = append(needs, strings.TrimRight(string(data), "\x00"))
			}
		}
	}

	needed, _ := f.DynString(stdelf.DT_NEEDED)
	needs = append(needs, needed...)

	rpaths, _ := f.DynString(stdelf.DT_RPATH)
	runpaths, _ := f.DynString(stdelf.DT_RUNPATH)

	nodeflib := false
	if flags1, err := f.DynValue(stdelf.DT_FLAGS_1); err == nil {
		for _, v := range flags1 {
			if stdelf.DynFlag1(v)&stdelf.DF_1_NODEFLIB != 0 {
				nodeflib = true
			}
		}
	}

	var rpathDirs []string
	for _, rp := range rpaths {
		rpathDirs = append(rpathDirs, ParseLDPath(rp, origin, root)...)
	}
	var runpathDirs []string
	for _, rp := range runpaths {
		runpathDirs = append(runpathDirs, ParseLDPath(rp, origin, root)...)
	}
	ldLibraryPathDirs := ParseLDPath(os.Getenv("LD_LIBRARY_PATH"), origin, root)
	ldSoConfDirs := ParseLDSoConf("", root)

	searchBase := make([]string, 0, len(rpathDirs)+len(ldLibraryPathDirs)+len(runpathDirs)+len(ldSoConfDirs))
	searchBase = append(searchBase, rpathDirs...)
	searchBase = append(searchBase, ldLibraryPathDirs...)
	searchBase = append(searchBase, runpathDirs...)
	searchBase = append(searchBase, ldSoConfDirs...)
	if !nodeflib {
		searchBase = append(searchBase, DefaultLibDirs(root)...)
	}

	rpathSet := make(map[string]bool, len(rpathDirs)+len(runpathDirs))
	for _, d := range rpathDirs {
		rpathSet[d] = true
	}
	for _, d := range runpathDirs {
		rpathSet[d] = true
	}
	defaultSet := make(map[string]bool)
	for _, d := range DefaultLibDirs(root) {
		defaultSet[d] = true
	}

	var deps []Dependency
	for _, need := range needs {
		dep, err := resolveOneDep(f, need, root, searchBase, rpathSet, defaultSet, nodeflib)
		if err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

func resolveOneDep(ref *stdelf.File, need, root string, searchBase []string, rpathSet, defaultSet map[string]bool, nodeflib bool) (Dependency, error) {
	var candidates []string
	if filepath.IsAbs(need) {
		candidates = []string{root}
	} else {
		candidates = searchBase
	}

	for _, dir := range candidates {
		if nodeflib && defaultSet[dir] {
			continue
		}
		var full string
		if filepath.IsAbs(need) {
			full = filepath.Join(root, need)
		} else {
			full = filepath.Join(dir, filepath.Base(need))
		}
		cand, ok := openCompat(full, ref)
		if !ok {
			continue
		}
		cand.Close()

		var dest string
		if filepath.IsAbs(need) || rpathSet[dir] {
			rel, err := filepath.Rel(root, full)
			if err != nil {
				return Dependency{}, cmerrors.ErrIOFailure.WithCause(err)
			}
			dest = "/" + strings.TrimPrefix(rel, "./")
		} else {
			dest = filepath.Join(LibDirForArch(ClassBits(cand), root), filepath.Base(need))
		}
		return Dependency{Src: full, Dest: dest}, nil
	}

	return Dependency{}, cmerrors.ErrELFDependencyMissing.WithMessagef("unresolved dependency %q", need)
}
