package build

import (
	"context"
	"os"
	"path/filepath"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
	"github.com/bitswalk/cmkinit/src/cmkinit/publish"
)

// PublishOptions layers the optional upload target on top of
// config.BuilderOptions — absent entirely from the INI graph, since
// publishing is an operational concern, not a DataSource one.
type PublishOptions struct {
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

// PublishStage uploads the finished artifact to PublishOptions.Bucket,
// when configured. A missing bucket means publishing was never
// requested, so the stage is a no-op rather than a failure.
type PublishStage struct {
	Publish PublishOptions
}

func (s *PublishStage) Name() string { return "publish" }

func (s *PublishStage) Validate(ctx context.Context, bc *Context) error {
	if bc.Artifact.Path == "" {
		return cmerrors.ErrInternal.WithMessage("build: compress stage has not run")
	}
	return nil
}

func (s *PublishStage) Execute(ctx context.Context, bc *Context, progress ProgressFunc) error {
	if s.Publish.Bucket == "" {
		progress(100, "no publish bucket configured, skipping")
		return nil
	}

	uploader, err := publish.New(publish.Config{
		Endpoint:        s.Publish.Endpoint,
		Region:          s.Publish.Region,
		Bucket:          s.Publish.Bucket,
		AccessKeyID:     s.Publish.AccessKeyID,
		SecretAccessKey: s.Publish.SecretAccessKey,
		PathStyle:       s.Publish.PathStyle,
	})
	if err != nil {
		return err
	}

	progress(10, "uploading artifact")
	f, err := os.Open(bc.Artifact.Path)
	if err != nil {
		return cmerrors.ErrIOFailure.WithCause(err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return cmerrors.ErrIOFailure.WithCause(err)
	}

	key, err := uploader.Upload(ctx, bc.ID.String(), filepath.Base(bc.Artifact.Path), f, info.Size())
	if err != nil {
		return err
	}
	progress(100, "uploaded to "+key)
	return nil
}
