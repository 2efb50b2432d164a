package build

import (
	"context"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
	"github.com/bitswalk/cmkinit/src/cmkinit/source"
)

// BusyboxStage resolves the image's own busybox binary and links every
// applet it provides into the image, hard-linked to the same inode. Any
// command a DataSource declared via Node.Busybox that the applet scan
// doesn't cover is added as a separate host executable instead.
type BusyboxStage struct{}

func (s *BusyboxStage) Name() string { return "busybox" }

func (s *BusyboxStage) Validate(ctx context.Context, bc *Context) error {
	if bc.Builder == nil {
		return cmerrors.ErrInternal.WithMessage("build: skeleton stage has not run")
	}
	return nil
}

func (s *BusyboxStage) Execute(ctx context.Context, bc *Context, progress ProgressFunc) error {
	var needed []string
	seen := map[string]bool{}
	for _, n := range allNodes(append([]*source.Node{bc.Config.Root}, bc.Config.Mounts...)) {
		for _, cmd := range n.Busybox {
			if !seen[cmd] {
				seen[cmd] = true
				needed = append(needed, cmd)
			}
		}
	}

	progress(0, "linking busybox applets")
	if err := bc.Builder.AddBusybox(needed, bc.Options.BusyboxPath); err != nil {
		return err
	}
	progress(100, "busybox linked")
	return nil
}
