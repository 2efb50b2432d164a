package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"strings"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
	"github.com/bitswalk/cmkinit/src/cmkinit/image"
)

// CompressStage writes the final artifact: either a plain directory
// tree (Options.Output == "dir") or an atomically-written, optionally
// compressed cpio archive.
type CompressStage struct{}

func (s *CompressStage) Name() string { return "compress" }

func (s *CompressStage) Validate(ctx context.Context, bc *Context) error {
	if bc.Builder == nil {
		return cmerrors.ErrInternal.WithMessage("build: skeleton stage has not run")
	}
	if bc.OutputPath == "" {
		return cmerrors.ErrConfigInvalid.WithMessage("build: no output path configured")
	}
	return nil
}

func parseCompression(name string) (image.Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return image.CompressionNone, nil
	case "gzip", "gz":
		return image.CompressionGzip, nil
	case "xz":
		return image.CompressionXZ, nil
	default:
		return "", cmerrors.ErrConfigInvalid.WithMessagef("build: unknown compression %q", name)
	}
}

func (s *CompressStage) Execute(ctx context.Context, bc *Context, progress ProgressFunc) error {
	if strings.EqualFold(bc.Options.Output, "dir") {
		progress(0, "materializing directory image")
		doNodes := os.Geteuid() == 0
		if err := bc.Builder.BuildToDirectory(bc.OutputPath, doNodes); err != nil {
			return err
		}
		bc.Artifact = ArtifactInfo{Path: bc.OutputPath}
		progress(100, "directory image complete")
		return nil
	}

	comp, err := parseCompression(bc.Options.Compression)
	if err != nil {
		return err
	}

	progress(0, "writing cpio archive")
	if err := bc.Builder.WriteAtomic(bc.OutputPath, comp); err != nil {
		return err
	}

	progress(80, "checksumming archive")
	sum, size, err := sha256File(bc.OutputPath)
	if err != nil {
		return err
	}
	bc.Artifact = ArtifactInfo{Path: bc.OutputPath, SHA256: sum, Size: size}
	progress(100, "archive written")
	return nil
}

func sha256File(path string) (sum string, size int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, cmerrors.ErrIOFailure.WithCause(err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, cmerrors.ErrIOFailure.WithCause(err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
