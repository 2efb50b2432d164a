package build

import (
	"context"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
	"github.com/bitswalk/cmkinit/src/cmkinit/source"
)

// ResolveFilesStage stages every plain file, executable, and library
// declared either directly on the config (DEFAULT files/execs/libs) or
// implicitly by a DataSource in the graph (Node.Files/Execs/Libs),
// transitively resolving each through C1's ELF dependency chain via
// image.Builder.
type ResolveFilesStage struct{}

func (s *ResolveFilesStage) Name() string { return "resolve-files" }

func (s *ResolveFilesStage) Validate(ctx context.Context, bc *Context) error {
	if bc.Builder == nil {
		return cmerrors.ErrInternal.WithMessage("build: skeleton stage has not run")
	}
	return nil
}

func (s *ResolveFilesStage) Execute(ctx context.Context, bc *Context, progress ProgressFunc) error {
	nodes := allNodes(append([]*source.Node{bc.Config.Root}, bc.Config.Mounts...))

	files := append([]source.FileRef{}, bc.Config.Files...)
	execs := append([]source.FileRef{}, bc.Config.Execs...)
	libs := append([]source.FileRef{}, bc.Config.Libs...)
	var modules []string
	seenModule := map[string]bool{}
	for _, n := range nodes {
		files = append(files, n.Files...)
		execs = append(execs, n.Execs...)
		libs = append(libs, n.Libs...)
		for _, km := range n.Kmods {
			if !seenModule[km.Module] {
				seenModule[km.Module] = true
				modules = append(modules, km.Module)
			}
		}
	}

	total := len(files) + len(execs) + len(libs) + len(modules)
	if total == 0 {
		progress(100, "no additional files, execs, libs or modules to stage")
		return nil
	}
	done := 0
	step := func(label string) {
		done++
		progress(done*100/total, label)
	}

	for _, f := range files {
		if err := bc.Builder.AddFile(f.Src, f.Dest, 0); err != nil {
			return err
		}
		step("staged file " + f.Src)
	}
	for _, e := range execs {
		if err := bc.Builder.AddExecutable(e.Src, e.Dest, 0); err != nil {
			return err
		}
		step("staged executable " + e.Src)
	}
	for _, l := range libs {
		if err := bc.Builder.AddLibrary(l.Src, l.Dest, 0); err != nil {
			return err
		}
		step("staged library " + l.Src)
	}
	for _, m := range modules {
		if err := bc.Builder.AddKmod(m, 0); err != nil {
			return err
		}
		step("staged kernel module " + m)
	}
	return nil
}
