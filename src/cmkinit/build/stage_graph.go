package build

import (
	"context"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
)

// GraphFinalizeStage checks that the root DataSource and every extra
// mount are marked final. It does not re-check acyclicity or that
// finality reached every hard dependency; config.Load enforces those
// while building the graph.
type GraphFinalizeStage struct{}

func (s *GraphFinalizeStage) Name() string { return "graph-finalize" }

func (s *GraphFinalizeStage) Validate(ctx context.Context, bc *Context) error {
	return nil
}

func (s *GraphFinalizeStage) Execute(ctx context.Context, bc *Context, progress ProgressFunc) error {
	root := bc.Config.Root
	if !root.IsFinal() {
		return cmerrors.ErrGraphInvariantBroken.WithMessage("build: root DataSource is not marked final")
	}
	progress(50, "root finality confirmed")
	for _, m := range bc.Config.Mounts {
		if !m.IsFinal() {
			return cmerrors.ErrGraphInvariantBroken.WithMessagef("build: mount %s is not marked final", m.Mountpoint)
		}
	}
	progress(100, "graph finalized")
	return nil
}
