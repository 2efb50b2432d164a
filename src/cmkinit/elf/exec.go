package elf

import (
	stdelf "debug/elf"
	"os"
	"path/filepath"
	"sort"
	"strings"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
)

// defaultCompatRef returns the path used as the ELF-compatibility
// reference when the caller doesn't supply one: the image's own shell.
func defaultCompatRef(root string) string {
	return filepath.Join(root, "bin/sh")
}

func openRef(path string) (*stdelf.File, func()) {
	f, err := stdelf.Open(path)
	if err != nil {
		return nil, func() {}
	}
	return f, func() { f.Close() }
}

// FindLib searches for a library by base name (optionally containing glob
// metacharacters) and returns the first ELF-compatible match. If lib is
// itself an absolute path, only root is searched (i.e. lib is looked up
// directly under root). Otherwise the search order is: current working
// directory, LD_LIBRARY_PATH, ld.so.conf entries, default library
// directories.
func FindLib(lib, compat, root string) (Dependency, error) {
	if compat == "" {
		compat = defaultCompatRef(root)
	}
	ref, closeRef := openRef(compat)
	defer closeRef()

	var dirs []string
	if filepath.IsAbs(lib) {
		matches, _ := filepath.Glob(filepath.Join(root, lib))
		sort.Strings(matches)
		for _, m := range matches {
			if cand, ok := openCompat(m, ref); ok {
				bits := ClassBits(cand)
				cand.Close()
				dest := filepath.Join(LibDirForArch(bits, root), filepath.Base(m))
				return Dependency{Src: m, Dest: dest}, nil
			}
		}
		return Dependency{}, cmerrors.ErrLibraryMissing.WithMessagef("library %q not found under %s", lib, root)
	}

	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	dirs = append(dirs, ParseLDPath(os.Getenv("LD_LIBRARY_PATH"), "", root)...)
	dirs = append(dirs, ParseLDSoConf("", root)...)
	dirs = append(dirs, DefaultLibDirs(root)...)

	for _, dir := range dirs {
		matches, _ := filepath.Glob(filepath.Join(dir, lib))
		sort.Strings(matches)
		for _, m := range matches {
			cand, ok := openCompat(m, ref)
			if !ok {
				continue
			}
			bits := ClassBits(cand)
			cand.Close()
			dest := filepath.Join(LibDirForArch(bits, root), filepath.Base(m))
			return Dependency{Src: m, Dest: dest}, nil
		}
	}
	return Dependency{}, cmerrors.ErrLibraryMissing.WithMessagef("library %q not found", lib)
}

// FindExec searches PATH (or root alone, if executable is an absolute
// path) for an executable by name, requiring it be ELF-compatible with
// compat (defaulting to the image's own shell) when it parses as ELF at
// all; a file that fails to parse as ELF is tolerated and accepted, since
// not every valid executable (e.g. a shell script) is an ELF binary.
func FindExec(executable, compat, root string) (Dependency, error) {
	if compat == "" {
		compat = defaultCompatRef(root)
	}
	ref, closeRef := openRef(compat)
	defer closeRef()

	check := func(path string) (Dependency, bool) {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return Dependency{}, false
		}
		if info.Mode()&0o111 == 0 {
			return Dependency{}, false
		}
		if f, err := stdelf.Open(path); err == nil {
			compatible := ref == nil || Compatible(f, ref)
			f.Close()
			if !compatible {
				return Dependency{}, false
			}
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return Dependency{}, false
		}
		return Dependency{Src: path, Dest: "/" + strings.TrimPrefix(rel, "./")}, true
	}

	if filepath.IsAbs(executable) {
		full := filepath.Join(root, executable)
		if dep, ok := check(full); ok {
			return dep, nil
		}
		return Dependency{}, cmerrors.ErrBinaryMissing.WithMessagef("executable %q not found under %s", executable, root)
	}

	var dirs []string
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	dirs = append(dirs, ParsePath(os.Getenv("PATH"), root)...)

	for _, dir := range dirs {
		if dep, ok := check(filepath.Join(dir, executable)); ok {
			return dep, nil
		}
	}
	return Dependency{}, cmerrors.ErrBinaryMissing.WithMessagef("executable %q not found in PATH", executable)
}
