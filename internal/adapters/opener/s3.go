package opener

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"dgii_fiscal/internal/ports"

	"github.com/minio/minio-go/v7"
)

// S3Client is the slice of *minio.Client the adapters use.
type S3Client interface {
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type S3Opener struct{ Client S3Client }

func NewS3Opener(cli S3Client) *S3Opener { return &S3Opener{Client: cli} }

// Open streams one object. Prefix-style keys ("dir/") and empty names are
// refused before any request is made.
func (s *S3Opener) Open(ctx context.Context, bucket, key string) (io.ReadCloser, ports.Meta, error) {
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return nil, ports.Meta{}, fmt.Errorf("s3 %q/%q: not an object", bucket, key)
	}
	log.Printf("[OPENER][S3][START] bucket=%q key=%q", bucket, key)
	st, err := s.Client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		log.Printf("[OPENER][S3][ERR] stat: %v", err)
		return nil, ports.Meta{}, fmt.Errorf("s3 stat: %w", err)
	}
	obj, err := s.Client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		log.Printf("[OPENER][S3][ERR] get: %v", err)
		return nil, ports.Meta{}, fmt.Errorf("s3 get: %w", err)
	}
	log.Printf("[OPENER][S3][OK] content_type=%q size=%d etag=%q modified=%s", st.ContentType, st.Size, st.ETag, st.LastModified.Format("2006-01-02T15:04:05Z07:00"))
	return obj, ports.Meta{
		Source:      "s3://" + bucket + "/" + key,
		ContentType: st.ContentType,
		Size:        st.Size,
		Bucket:      bucket,
		Key:         key,
	}, nil
}
