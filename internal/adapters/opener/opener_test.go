package opener

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func TestCompoundOpenerLocalFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rnc.txt"), []byte("line\n"), 0o644))
	c := NewCompoundOpener(NewFileOpener(dir), nil, nil, "")

	rc, meta, err := c.Open(context.Background(), "rnc.txt")
	require.NoError(t, err)
	assert.Equal(t, "line\n", readAll(t, rc))
	assert.Equal(t, "file", meta.Source)
	assert.EqualValues(t, 5, meta.Size)

	rc, _, err = c.Open(context.Background(), "file://"+filepath.Join(dir, "rnc.txt"))
	require.NoError(t, err)
	assert.Equal(t, "line\n", readAll(t, rc))

	_, _, err = c.Open(context.Background(), "missing.txt")
	assert.Error(t, err)
	_, _, err = c.Open(context.Background(), dir)
	assert.Error(t, err)
}

func TestCompoundOpenerHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "a|b\n")
	}))
	defer srv.Close()

	c := NewCompoundOpener(nil, NewHTTPOpener(srv.Client()), nil, "")
	rc, meta, err := c.Open(context.Background(), srv.URL+"/rnc.txt")
	require.NoError(t, err)
	assert.Equal(t, "a|b\n", readAll(t, rc))
	assert.Equal(t, "http", meta.Source)
	assert.Equal(t, "text/plain", meta.ContentType)

	_, _, err = c.Open(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "404")
}

func TestCompoundOpenerUnconfigured(t *testing.T) {
	c := NewCompoundOpener(nil, nil, nil, "")
	for _, ref := range []string{"https://x/y", "s3://b/k", "file:///tmp/x", "plain-key"} {
		_, _, err := c.Open(context.Background(), ref)
		assert.Error(t, err, ref)
	}
}

func TestParseS3URL(t *testing.T) {
	b, k, err := ParseS3URL("s3://registry/2024/rnc.txt")
	require.NoError(t, err)
	assert.Equal(t, "registry", b)
	assert.Equal(t, "2024/rnc.txt", k)

	_, _, err = ParseS3URL("s3://registry/")
	assert.Error(t, err)
	_, _, err = ParseS3URL("https://registry/x")
	assert.Error(t, err)
}

type countingS3 struct{ calls int }

func (c *countingS3) StatObject(context.Context, string, string, minio.StatObjectOptions) (minio.ObjectInfo, error) {
	c.calls++
	return minio.ObjectInfo{}, errors.New("unexpected stat")
}

func (c *countingS3) GetObject(context.Context, string, string, minio.GetObjectOptions) (*minio.Object, error) {
	c.calls++
	return nil, errors.New("unexpected get")
}

func (c *countingS3) PutObject(context.Context, string, string, io.Reader, int64, minio.PutObjectOptions) (minio.UploadInfo, error) {
	c.calls++
	return minio.UploadInfo{}, errors.New("unexpected put")
}

func TestS3OpenerRejectsNonObjectKeys(t *testing.T) {
	cli := &countingS3{}
	o := NewS3Opener(cli)
	for _, k := range [][2]string{{"registry", ""}, {"registry", "2024/"}, {"", "rnc.txt"}} {
		_, _, err := o.Open(context.Background(), k[0], k[1])
		assert.ErrorContains(t, err, "not an object", k)
	}
	assert.Zero(t, cli.calls)

	_, _, err := o.Open(context.Background(), "registry", "rnc.txt")
	assert.ErrorContains(t, err, "s3 stat")
	assert.Equal(t, 1, cli.calls)
}
