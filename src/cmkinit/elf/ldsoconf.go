package elf

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ldSoConfCache memoizes ParseLDSoConf by (confPath, root); ld.so.conf
// parsing is a pure function of the host filesystem and is re-read often
// during a single build (once per library search), so caching it matters
// for build-time performance (spec.md §9 "Caching").
var ldSoConfCache sync.Map // map[ldSoConfKey][]string

type ldSoConfKey struct {
	confPath string
	root     string
}

// ParseLDSoConf reads confPath (default "<root>/etc/ld.so.conf" when
// confPath is empty) and returns the directories it names, resolving
// "include <glob>" directives recursively. A missing conf file yields no
// directories, not an error — most minimal root filesystems don't carry one.
func ParseLDSoConf(confPath, root string) []string {
	if confPath == "" {
		confPath = filepath.Join(root, "etc/ld.so.conf")
	}
	key := ldSoConfKey{confPath: confPath, root: root}
	if cached, ok := ldSoConfCache.Load(key); ok {
		return cached.([]string)
	}
	dirs := parseLDSoConfFile(confPath, root)
	ldSoConfCache.Store(key, dirs)
	return dirs
}

func parseLDSoConfFile(confPath, root string) []string {
	f, err := os.Open(confPath)
	if err != nil {
		return nil
	}
	defer f.Close()

	var dirs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "include "); ok {
			pattern := strings.TrimSpace(rest)
			if !filepath.IsAbs(pattern) {
				pattern = filepath.Join(filepath.Dir(confPath), pattern)
			}
			matches, err := filepath.Glob(pattern)
			if err != nil {
				continue
			}
			sort.Strings(matches)
			for _, m := range matches {
				dirs = append(dirs, parseLDSoConfFile(m, root)...)
			}
			continue
		}
		dirs = append(dirs, filepath.Clean(filepath.Join(root, line)))
	}
	return dirs
}

// defaultLibdirCache memoizes DefaultLibDirs by root.
var defaultLibdirCache sync.Map // map[string][]string

// DefaultLibDirs returns the default library search directories under
// root, in loader-faithful order: for each of lib64, lib, lib32, the
// directory under "/" is checked before the one under "/usr/", and only
// directories that actually exist are kept.
func DefaultLibDirs(root string) []string {
	if cached, ok := defaultLibdirCache.Load(root); ok {
		return cached.([]string)
	}
	var dirs []string
	for _, libname := range []string{"lib64", "lib", "lib32"} {
		for _, prefix := range []string{"/", "/usr/"} {
			dir := filepath.Join(root, prefix, libname)
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				dirs = append(dirs, dir)
			}
		}
	}
	defaultLibdirCache.Store(root, dirs)
	return dirs
}

// LibDirForArch returns the canonical library directory for a given ELF
// class (32 or 64) under root: "/lib64" if it exists and arch is 64-bit,
// "/lib32" if it exists and arch is 32-bit, otherwise "/lib".
func LibDirForArch(arch int, root string) string {
	if arch == 64 {
		if isDir(filepath.Join(root, "lib64")) {
			return "/lib64"
		}
	}
	if arch == 32 {
		if isDir(filepath.Join(root, "lib32")) {
			return "/lib32"
		}
	}
	return "/lib"
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
