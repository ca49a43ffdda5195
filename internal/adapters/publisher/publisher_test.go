package publisher

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePublisher(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	p := NewFilePublisher(dir)

	loc, err := p.Publish(context.Background(), "DGII_F_607_101010632_202403.TXT", []byte("a|b\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "DGII_F_607_101010632_202403.TXT"), loc)
	got, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "a|b\n", string(got))

	_, err = p.Publish(context.Background(), "../escape.txt", nil)
	assert.Error(t, err)
}

type fakePutter struct {
	bucket, key, body string
	err               error
}

func (f *fakePutter) PutObject(_ context.Context, bucket, key string, r io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.err != nil {
		return minio.UploadInfo{}, f.err
	}
	b, _ := io.ReadAll(r)
	f.bucket, f.key, f.body = bucket, key, string(b)
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: int64(len(b))}, nil
}

func TestS3Publisher(t *testing.T) {
	cli := &fakePutter{}
	p := NewS3Publisher(cli, "reports", "2024/03")

	loc, err := p.Publish(context.Background(), "DGII_F_606_101010632_202403.TXT", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "s3://reports/2024/03/DGII_F_606_101010632_202403.TXT", loc)
	assert.Equal(t, "reports", cli.bucket)
	assert.Equal(t, "2024/03/DGII_F_606_101010632_202403.TXT", cli.key)
	assert.Equal(t, "x", cli.body)

	cli.err = errors.New("access denied")
	_, err = p.Publish(context.Background(), "r.txt", nil)
	assert.ErrorContains(t, err, "access denied")

	_, err = NewS3Publisher(nil, "", "").Publish(context.Background(), "r.txt", nil)
	assert.Error(t, err)
}
