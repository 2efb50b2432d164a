package build

import (
	"context"
	"os"
	"path/filepath"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
	"github.com/bitswalk/cmkinit/src/cmkinit/initscript"
	"github.com/bitswalk/cmkinit/src/cmkinit/source"
)

// InitEmitStage renders the /init script for the configured graph and
// stages it into the image at mode 0755.
type InitEmitStage struct{}

func (s *InitEmitStage) Name() string { return "init-emit" }

func (s *InitEmitStage) Validate(ctx context.Context, bc *Context) error {
	if bc.Builder == nil {
		return cmerrors.ErrInternal.WithMessage("build: skeleton stage has not run")
	}
	return nil
}

func (s *InitEmitStage) Execute(ctx context.Context, bc *Context, progress ProgressFunc) error {
	progress(0, "collecting kernel modules")
	var modules []initscript.ModuleSpec
	for _, n := range allNodes(append([]*source.Node{bc.Config.Root}, bc.Config.Mounts...)) {
		for _, km := range n.Kmods {
			modules = append(modules, initscript.ModuleSpec{Name: km.Module, Args: km.Params})
		}
	}

	var keymapPath string
	var keymapUnicode bool
	if bc.Config.Keymap != nil {
		keymapPath = bc.Config.Keymap.Dest
		if keymapPath == "" {
			keymapPath = bc.Config.Keymap.Path
		}
		keymapUnicode = bc.Config.Keymap.Unicode
	}

	cfg := initscript.Config{
		Root:          bc.Config.Root,
		Mounts:        bc.Config.Mounts,
		Keymap:        keymapPath,
		KeymapUnicode: keymapUnicode,
		Modules:       modules,
		Init:          bc.Config.Init,
	}

	progress(30, "rendering /init")
	path := filepath.Join(bc.Workspace, "init")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return cmerrors.ErrIOFailure.WithCause(err)
	}
	defer f.Close()
	if err := initscript.Build(f, cfg); err != nil {
		return err
	}

	progress(70, "staging /init into the image")
	if err := bc.Builder.AddFile(path, "/init", 0o755); err != nil {
		return err
	}

	if bc.Config.InitPath != "" {
		progress(85, "staging the real init binary")
		if err := bc.Builder.AddFile(bc.Config.InitPath, bc.Config.Init, 0); err != nil {
			return err
		}
	}
	progress(100, "/init staged")
	return nil
}
