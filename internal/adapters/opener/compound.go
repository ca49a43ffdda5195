// Package opener resolves a source reference (local path, file:// URL,
// http(s) URL, s3://bucket/key or a bare key in the default bucket) to a
// readable stream.
package opener

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"dgii_fiscal/internal/ports"
)

type CompoundOpener struct {
	File *FileOpener
	HTTP *HTTPOpener
	S3   *S3Opener

	DefaultBucket string
}

func NewCompoundOpener(fileOp *FileOpener, httpOp *HTTPOpener, s3Op *S3Opener, defaultBucket string) *CompoundOpener {
	return &CompoundOpener{
		File:          fileOp,
		HTTP:          httpOp,
		S3:            s3Op,
		DefaultBucket: defaultBucket,
	}
}

func (c *CompoundOpener) Open(ctx context.Context, ref string) (io.ReadCloser, ports.Meta, error) {
	fp := strings.TrimSpace(ref)

	switch {
	case strings.HasPrefix(fp, "http://") || strings.HasPrefix(fp, "https://"):
		if c.HTTP == nil {
			return nil, ports.Meta{}, errors.New("http opener not configured")
		}
		return c.HTTP.Open(ctx, fp)

	case strings.HasPrefix(fp, "s3://"):
		if c.S3 == nil {
			return nil, ports.Meta{}, errors.New("s3 opener not configured")
		}
		bkt, key, err := ParseS3URL(fp)
		if err != nil {
			return nil, ports.Meta{}, err
		}
		return c.S3.Open(ctx, bkt, key)

	case strings.HasPrefix(fp, "file://"):
		if c.File == nil {
			return nil, ports.Meta{}, errors.New("file opener not configured")
		}
		return c.File.Open(ctx, strings.TrimPrefix(fp, "file://"))
	}

	// Bare references: an existing local file wins over the default bucket.
	if c.File != nil {
		if _, err := os.Stat(c.File.resolve(fp)); err == nil || c.S3 == nil || c.DefaultBucket == "" {
			return c.File.Open(ctx, fp)
		}
	}
	if c.S3 == nil || c.DefaultBucket == "" {
		return nil, ports.Meta{}, errors.New("missing bucket: pass s3://bucket/key, an https url or a local path")
	}
	return c.S3.Open(ctx, c.DefaultBucket, fp)
}

// ParseS3URL splits s3://bucket/key.
func ParseS3URL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "s3" {
		return "", "", errors.New("scheme must be s3")
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	key = path.Clean(key)
	if bucket == "" || key == "" || key == "." || key == "/" {
		return "", "", errors.New("empty bucket or key")
	}
	return bucket, key, nil
}
