// Package publisher delivers rendered report files.
package publisher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
)

// FilePublisher writes reports into Dir, creating it when missing.
type FilePublisher struct {
	Dir string
}

func NewFilePublisher(dir string) *FilePublisher { return &FilePublisher{Dir: dir} }

func (p *FilePublisher) Publish(ctx context.Context, name string, body []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid report name %q", name)
	}
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", p.Dir, err)
	}
	dst := filepath.Join(p.Dir, name)
	tmp := dst + ".part"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("rename %s: %w", dst, err)
	}
	log.Printf("[PUBLISH][FILE][OK] path=%q size=%d", dst, len(body))
	return dst, nil
}

type ObjectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// S3Publisher uploads reports under Prefix in Bucket.
type S3Publisher struct {
	Client ObjectPutter
	Bucket string
	Prefix string
}

func NewS3Publisher(cli ObjectPutter, bucket, prefix string) *S3Publisher {
	return &S3Publisher{Client: cli, Bucket: bucket, Prefix: prefix}
}

func (p *S3Publisher) Publish(ctx context.Context, name string, body []byte) (string, error) {
	if p.Client == nil || p.Bucket == "" {
		return "", fmt.Errorf("s3 publisher not configured")
	}
	key := path.Join(p.Prefix, name)
	info, err := p.Client.PutObject(ctx, p.Bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
	})
	if err != nil {
		log.Printf("[PUBLISH][S3][ERR] bucket=%q key=%q: %v", p.Bucket, key, err)
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	log.Printf("[PUBLISH][S3][OK] bucket=%q key=%q etag=%q size=%d", p.Bucket, key, info.ETag, info.Size)
	return "s3://" + p.Bucket + "/" + key, nil
}
