// Package config loads an cmkinit.ini graph file into the DataSource
// graph (C4) and the flat file/exec/lib/keymap settings that drive the
// init script (C5) and image builder (C3). The DataSource graph itself
// always comes from the INI file named by --graph-config; Viper only layers
// on top for the separate, flat image-builder knobs (BuilderOptions).
package config

import (
	"os"
	"strings"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
	"github.com/bitswalk/cmkinit/src/cmkinit/source"
)

// KeymapConfig describes how to build and load a console keymap, ported
// from entry.py's keymap/keymap-src/keymap-path/keymap-dest fields: Src
// is a loadkeys(1) source to compile with keymap-src if Path isn't
// already a pre-built binary keymap; Dest is where it lands in the
// image when it needs staging at all.
type KeymapConfig struct {
	Src     string
	Path    string
	Dest    string
	Unicode bool
}

// Config is the fully resolved result of loading a graph file: the
// DataSource graph plus everything else the init script and image
// builder need that isn't itself a DataSource.
type Config struct {
	Root   *source.Node
	Mounts []*source.Node

	Keymap *KeymapConfig

	// Init is the in-image path switch_root execs into (default
	// /sbin/init); InitPath, if set, is the host path to stage there.
	Init     string
	InitPath string

	Files []source.FileRef
	Execs []source.FileRef
	Libs  []source.FileRef

	CPIODirOpts  string
	CPIOListOpts string
}

// defaultConfigPaths mirrors entry.py's _find_config_file search order.
var defaultConfigPaths = []string{"./cmkinitramfs.ini", "/etc/cmkinitramfs.ini"}

// FindConfigFile returns the path to use when none was given explicitly:
// $CMKINITCFG if set, else the first of defaultConfigPaths that exists.
func FindConfigFile() (string, error) {
	if p := os.Getenv("CMKINITCFG"); p != "" {
		return p, nil
	}
	for _, p := range defaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", cmerrors.ErrConfigNotFound.WithMessage("no config file found in $CMKINITCFG, ./cmkinitramfs.ini or /etc/cmkinitramfs.ini")
}

// Load reads and parses the graph file at path, building the full
// DataSource graph and resolving every DEFAULT-section field. Mirrors
// entry.py's read_config.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cmerrors.ErrConfigNotFound.WithCause(err)
		}
		return nil, cmerrors.ErrIOFailure.WithCause(err)
	}
	defer f.Close()

	ini, err := parseINI(f)
	if err != nil {
		return nil, err
	}

	def := ini.section(defaultSection)
	gb := newGraphBuilder(ini)

	rootRef, ok := def.get("root")
	if !ok {
		return nil, cmerrors.ErrConfigInvalid.WithMessage("DEFAULT.root is required")
	}
	root, err := gb.resolve(rootRef)
	if err != nil {
		return nil, err
	}
	root.SetFinal()

	var mounts []*source.Node
	for _, ref := range def.list("mountpoints") {
		m, err := gb.resolve(ref)
		if err != nil {
			return nil, err
		}
		m.SetFinal()
		mounts = append(mounts, m)
	}

	cfg := &Config{
		Root:         root,
		Mounts:       mounts,
		Keymap:       parseKeymap(def),
		Init:         def.getDefault("init", "/sbin/init"),
		InitPath:     def.getDefault("init-path", ""),
		Files:        parseFileRefs(def, "files"),
		Execs:        parseFileRefs(def, "execs"),
		Libs:         parseFileRefs(def, "libs"),
		CPIODirOpts:  def.getDefault("cmkcpiodir-default-opts", ""),
		CPIOListOpts: def.getDefault("cmkcpiolist-default-opts", ""),
	}
	return cfg, nil
}

func parseKeymap(s section) *KeymapConfig {
	unicode := s.getBool("keymap-unicode", false)
	src, _ := s.get("keymap-src")
	path, _ := s.get("keymap-path")
	dest, _ := s.get("keymap-dest")
	if src == "" && path == "" && dest == "" {
		if km, ok := s.get("keymap"); ok {
			return &KeymapConfig{Path: km, Unicode: unicode}
		}
		return nil
	}
	return &KeymapConfig{Src: src, Path: path, Dest: dest, Unicode: unicode}
}

// parseFileRefs parses a newline-separated list of "src[:dest]" pairs
// into FileRefs, as entry.py does for files/execs/libs.
func parseFileRefs(s section, key string) []source.FileRef {
	var out []source.FileRef
	for _, line := range s.lines(key) {
		src, dest, hasDest := strings.Cut(line, ":")
		ref := source.FileRef{Src: src}
		if hasDest {
			ref.Dest = dest
		}
		out = append(out, ref)
	}
	return out
}
