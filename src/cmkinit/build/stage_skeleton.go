package build

import (
	"context"
	"os"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
	"github.com/bitswalk/cmkinit/src/cmkinit/image"
)

// SkeletonStage creates the image Builder, which lays out the fixed FHS
// skeleton (base dirs, /lib* mirroring, early /dev nodes, per-kernel
// module directories) as a side effect of construction.
type SkeletonStage struct{}

func (s *SkeletonStage) Name() string { return "skeleton" }

func (s *SkeletonStage) Validate(ctx context.Context, bc *Context) error {
	if bc.Config == nil || bc.Config.Root == nil {
		return cmerrors.ErrConfigInvalid.WithMessage("build: no root DataSource configured")
	}
	if len(bc.Options.Kernels) == 0 {
		return cmerrors.ErrConfigInvalid.WithMessage("build: no target kernel configured")
	}
	return nil
}

func (s *SkeletonStage) Execute(ctx context.Context, bc *Context, progress ProgressFunc) error {
	progress(0, "creating image skeleton")
	uid, gid := os.Getuid(), os.Getgid()
	b, err := image.New(uid, gid, "/", bc.Options.Kernels)
	if err != nil {
		return err
	}
	bc.Builder = b
	progress(100, "skeleton ready")
	return nil
}
