package ports

import (
	"context"
	"io"
)

type Meta struct {
	Source      string
	ContentType string
	Size        int64
	Bucket      string
	Key         string
}

type FileOpener interface {
	Open(ctx context.Context, filePath string) (io.ReadCloser, Meta, error)
}

// Publisher delivers a rendered report and returns where it ended up.
type Publisher interface {
	Publish(ctx context.Context, name string, body []byte) (string, error)
}
