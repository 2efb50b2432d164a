// Package elf implements the binary resolver (C1): locating executables,
// shared libraries, their transitive ELF dependencies, and kernel modules
// the way a Linux dynamic loader and modprobe would.
package elf

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sys/unix"
)

// ParseLDPath splits a colon-separated loader search path (as found in
// LD_LIBRARY_PATH, DT_RPATH or DT_RUNPATH) into normalized, root-rooted
// directories.
//
// An empty element (leading/trailing/doubled colon) expands to the current
// working directory. This mirrors glibc's ld.so behavior and is also what
// the original Python implementation does; a stricter reading would ignore
// empty elements or use $PWD, but that behavior is preserved deliberately
// for compatibility (see DESIGN.md).
func ParseLDPath(ldPath, origin, root string) []string {
	if ldPath == "" {
		return nil
	}
	out := make([]string, 0, 4)
	for _, elem := range strings.Split(ldPath, ":") {
		if elem == "" {
			if cwd, err := os.Getwd(); err == nil {
				out = append(out, filepath.Clean(cwd))
			}
			continue
		}
		elem = substituteDynamicTags(elem, origin)
		if filepath.IsAbs(elem) {
			elem = filepath.Join(root, elem)
		}
		out = append(out, filepath.Clean(elem))
	}
	return out
}

// substituteDynamicTags expands $ORIGIN/${ORIGIN}, $LIB/${LIB} and
// $PLATFORM/${PLATFORM} the way the dynamic loader does.
func substituteDynamicTags(path, origin string) string {
	lib := "lib"
	if is64BitPlatform() {
		lib = "lib64"
	}
	platform := runtime.GOARCH
	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		platform = unix.ByteSliceToString(uts.Machine[:])
	}
	replacer := strings.NewReplacer(
		"${ORIGIN}", origin, "$ORIGIN", origin,
		"${LIB}", lib, "$LIB", lib,
		"${PLATFORM}", platform, "$PLATFORM", platform,
	)
	return replacer.Replace(path)
}

func is64BitPlatform() bool {
	switch runtime.GOARCH {
	case "amd64", "arm64", "riscv64", "ppc64", "ppc64le", "mips64", "mips64le", "s390x":
		return true
	default:
		return false
	}
}

// ParsePath splits a colon-separated PATH-style list the way ParseLDPath
// does, except paths are resolved relative to root without $ORIGIN-style
// substitution (not meaningful for executable search).
func ParsePath(pathVar, root string) []string {
	if pathVar == "" {
		return nil
	}
	out := make([]string, 0, 4)
	for _, elem := range strings.Split(pathVar, ":") {
		if elem == "" {
			if cwd, err := os.Getwd(); err == nil {
				out = append(out, filepath.Clean(cwd))
			}
			continue
		}
		out = append(out, filepath.Clean(filepath.Join(root, elem)))
	}
	return out
}
