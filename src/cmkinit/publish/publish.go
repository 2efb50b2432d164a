// Package publish optionally uploads a finished initramfs image to an
// S3-compatible bucket (C9), keyed by build ID so re-publishing a
// rebuilt image never collides with an older artifact. Skipped
// entirely when no bucket is configured.
package publish

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
)

// Config describes the target bucket. Endpoint/Region/PathStyle follow
// the same provider-agnostic shape as the teacher's storage.S3Config,
// reduced to the one provider cmkinit actually needs to support: a
// single configured bucket, no per-provider URL-scheme table.
type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

func (c Config) apiEndpoint() string {
	e := strings.TrimPrefix(strings.TrimPrefix(c.Endpoint, "https://"), "http://")
	if e == "" {
		return ""
	}
	return "https://" + e
}

// Uploader pushes build artifacts to a single configured bucket.
type Uploader struct {
	client *s3.Client
	bucket string
}

// New returns an Uploader for cfg, or an error if no bucket is set —
// callers should treat that as "publishing is disabled", not a fatal
// error (see build.PublishStage).
func New(cfg Config) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, cmerrors.ErrConfigInvalid.WithMessage("publish: bucket is required")
	}
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		UsePathStyle: cfg.PathStyle,
	}
	if ep := cfg.apiEndpoint(); ep != "" {
		opts.BaseEndpoint = aws.String(ep)
	}
	return &Uploader{client: s3.New(opts), bucket: cfg.Bucket}, nil
}

// Upload pushes the contents of r (size bytes long) to
// "<buildID>/<name>" in the configured bucket and returns the object
// key it was stored under.
func (u *Uploader) Upload(ctx context.Context, buildID, name string, r io.Reader, size int64) (string, error) {
	key := fmt.Sprintf("%s/%s", buildID, name)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", cmerrors.ErrIOFailure.WithMessagef("publish: upload %s: %v", key, err)
	}
	return key, nil
}
