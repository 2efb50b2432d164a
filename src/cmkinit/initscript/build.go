package initscript

import (
	"io"

	"github.com/bitswalk/cmkinit/src/cmkinit/source"
)

// Config gathers everything Build needs to emit a complete /init script.
type Config struct {
	// Root is the DataSource to load as the final root filesystem.
	Root *source.Node
	// Mounts are additional DataSources loaded after Root, before the
	// MOUNT breakpoint — e.g. a separate /var or /boot.
	Mounts []*source.Node
	// Keymap is the path of a pre-built binary keymap to load, or ""
	// for none.
	Keymap string
	// KeymapUnicode selects loadkmap's unicode vs ASCII mode.
	KeymapUnicode bool
	// Modules are kernel modules modprobe'd before the root filesystem
	// is loaded.
	Modules []ModuleSpec
	// Home and Path override /init's HOME/PATH environment, falling
	// back to "/root" and "/bin:/sbin".
	Home, Path string
	// Init is the process switch_root execs into the new root,
	// defaulting to "/sbin/init" (overridable at boot with init=).
	Init string
}

// Build writes the complete /init script for cfg to w: header and
// helper functions, PID-1/proc-sys-dev setup, every DataSource kind's
// one-shot class initializer, command-line parsing, optional keymap
// load, module loading, the root filesystem and extra mounts (each
// gated by its own breakpoint), and the final switch_root.
func Build(w io.Writer, cfg Config) error {
	roots := append([]*source.Node{cfg.Root}, cfg.Mounts...)
	kinds := source.CollectKinds(roots)

	if err := writeHeader(w, cfg.Home, cfg.Path); err != nil {
		return err
	}
	if err := writeBreak(w, BreakEarly); err != nil {
		return err
	}
	if err := writeInit(w); err != nil {
		return err
	}
	if err := source.EmitInitializers(kinds, w); err != nil {
		return err
	}
	if err := writeCmdline(w); err != nil {
		return err
	}
	if cfg.Keymap != "" {
		if err := writeKeymap(w, cfg.Keymap, cfg.KeymapUnicode); err != nil {
			return err
		}
	}
	if err := writeBreak(w, BreakInit); err != nil {
		return err
	}
	for _, mod := range cfg.Modules {
		if err := writeModule(w, mod); err != nil {
			return err
		}
	}
	if err := writeBreak(w, BreakModule); err != nil {
		return err
	}
	if err := cfg.Root.Load(w); err != nil {
		return err
	}
	if err := writeBreak(w, BreakRootfs); err != nil {
		return err
	}
	for _, mount := range cfg.Mounts {
		if err := mount.Load(w); err != nil {
			return err
		}
	}
	if err := writeBreak(w, BreakMount); err != nil {
		return err
	}
	return writeSwitchRoot(w, cfg.Root, cfg.Init)
}
