package elf

import (
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
)

// KmodDir is the directory kernel modules are installed under, relative
// to a build root: "/lib/modules/<kernel>".
const KmodDir = "lib/modules"

var allKmodsCache sync.Map // map[string]map[string]string: (kernel\x00root) -> (normalized name -> path)

// allKmods globs every .ko file under <root>/lib/modules/<kernel>, once
// per (kernel, root), keyed by a name with '_' normalized to '-' so that
// module aliases that differ only in separator style still match.
func allKmods(kernel, root string) (map[string]string, error) {
	key := kernel + "\x00" + root
	if cached, ok := allKmodsCache.Load(key); ok {
		return cached.(map[string]string), nil
	}
	base := filepath.Join(root, KmodDir, kernel)
	matches, err := recursiveGlob(base, "*.ko")
	if err != nil {
		return nil, cmerrors.ErrIOFailure.WithCause(err).WithMessagef("globbing kernel modules under %s", base)
	}
	out := make(map[string]string, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), ".ko")
		out[strings.ReplaceAll(name, "_", "-")] = m
	}
	allKmodsCache.Store(key, out)
	return out, nil
}

// recursiveGlob walks base recursively and returns every file whose base
// name matches pattern (a shell glob, per filepath.Match), equivalent to
// Python's glob.iglob(base + "/**/" + pattern, recursive=True). A missing
// base directory yields no matches and no error.
func recursiveGlob(base, pattern string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // missing/unreadable subtree: skip, don't fail the whole walk
		}
		if d.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); ok {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil && !isNotExist(err) {
		return nil, err
	}
	return matches, nil
}

func isNotExist(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such file or directory")
}

// FindKmod resolves a kernel module by name for the given kernel release.
// An absolute path is returned unchanged. Otherwise '_' and '-' are
// treated as interchangeable, matching modprobe's own normalization, and
// the module is searched for under the kernel's module tree.
func FindKmod(module, kernel, root string) (string, error) {
	if filepath.IsAbs(module) {
		return module, nil
	}
	mods, err := allKmods(kernel, root)
	if err != nil {
		return "", err
	}
	normalized := strings.ReplaceAll(module, "_", "-")
	if path, ok := mods[normalized]; ok {
		return path, nil
	}
	return "", cmerrors.ErrKmodMissing.WithMessagef("module %q not found for kernel %s", module, kernel)
}

var kmodDepsCache sync.Map // map[string][]string, keyed by module path

// FindKmodDeps invokes "modinfo -0 -F depends" on the module at path and
// returns the names of the modules it depends on, possibly none.
// modinfo is an external collaborator (spec.md §6); its output is parsed
// here, never its exit classification — a non-zero exit is
// ErrExternalToolFailed.
func FindKmodDeps(path string) ([]string, error) {
	if cached, ok := kmodDepsCache.Load(path); ok {
		return cached.([]string), nil
	}
	cmd := exec.Command("modinfo", "-0", "-F", "depends", path)
	out, err := cmd.Output()
	if err != nil {
		return nil, cmerrors.ErrExternalToolFailed.WithCause(err).WithMessagef("modinfo %s", path)
	}
	var deps []string
	for _, part := range strings.Split(strings.TrimRight(string(out), "\x00"), "\x00") {
		if part != "" {
			deps = append(deps, part)
		}
	}
	kmodDepsCache.Store(path, deps)
	return deps, nil
}
