package opener

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"path/filepath"

	"dgii_fiscal/internal/ports"
)

// FileOpener reads local files, relative paths resolved against BaseDir.
type FileOpener struct {
	BaseDir string
}

func NewFileOpener(baseDir string) *FileOpener { return &FileOpener{BaseDir: baseDir} }

func (f *FileOpener) resolve(p string) string {
	if filepath.IsAbs(p) || f.BaseDir == "" {
		return p
	}
	return filepath.Join(f.BaseDir, p)
}

func (f *FileOpener) Open(ctx context.Context, p string) (io.ReadCloser, ports.Meta, error) {
	if err := ctx.Err(); err != nil {
		return nil, ports.Meta{}, err
	}
	full := f.resolve(p)
	fh, err := os.Open(full)
	if err != nil {
		log.Printf("[OPENER][FILE][ERR] open %q: %v", full, err)
		return nil, ports.Meta{}, fmt.Errorf("open %s: %w", full, err)
	}
	st, err := fh.Stat()
	if err != nil {
		_ = fh.Close()
		return nil, ports.Meta{}, fmt.Errorf("stat %s: %w", full, err)
	}
	if st.IsDir() {
		_ = fh.Close()
		return nil, ports.Meta{}, fmt.Errorf("%s is a directory", full)
	}
	log.Printf("[OPENER][FILE][OK] path=%q size=%d", full, st.Size())
	return fh, ports.Meta{
		Source:      "file",
		ContentType: mime.TypeByExtension(filepath.Ext(full)),
		Size:        st.Size(),
		Key:         full,
	}, nil
}
