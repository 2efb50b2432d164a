package build

import (
	"context"
	"os"
	"path/filepath"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
)

// SerializeStage writes the gen_init_cpio-compatible text list
// describing the staged item tree — useful for inspecting a build or
// feeding the external gen_init_cpio tool directly, independent of
// CompressStage's binary cpio output.
type SerializeStage struct{}

func (s *SerializeStage) Name() string { return "serialize" }

func (s *SerializeStage) Validate(ctx context.Context, bc *Context) error {
	if bc.Builder == nil {
		return cmerrors.ErrInternal.WithMessage("build: skeleton stage has not run")
	}
	return nil
}

func (s *SerializeStage) Execute(ctx context.Context, bc *Context, progress ProgressFunc) error {
	progress(0, "building the gen_init_cpio list")
	list := bc.Builder.BuildToCPIOList()

	path := filepath.Join(bc.Workspace, "image.list")
	if err := os.WriteFile(path, []byte(list), 0o644); err != nil {
		return cmerrors.ErrIOFailure.WithCause(err)
	}
	bc.CPIOListPath = path
	progress(100, "list written to "+path)
	return nil
}
