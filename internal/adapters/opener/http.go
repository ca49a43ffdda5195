package opener

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"dgii_fiscal/internal/ports"
)

// HTTPOpener streams a registry export or a books file over HTTP. The
// response body is not buffered; the importer reads it line by line.
type HTTPOpener struct {
	Client    *http.Client
	UserAgent string
}

func NewHTTPOpener(cli *http.Client) *HTTPOpener {
	if cli == nil {
		cli = &http.Client{}
	}
	return &HTTPOpener{Client: cli, UserAgent: "dgii-fiscal/1"}
}

func (h *HTTPOpener) Open(ctx context.Context, url string) (io.ReadCloser, ports.Meta, error) {
	log.Printf("[OPENER][HTTP][START] url=%q", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Printf("[OPENER][HTTP][ERR] build request: %v", err)
		return nil, ports.Meta{}, err
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		log.Printf("[OPENER][HTTP][ERR] do request: %v", err)
		return nil, ports.Meta{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		ct := resp.Header.Get("Content-Type")
		cl := resp.ContentLength
		log.Printf("[OPENER][HTTP][ERR] status=%d content_type=%q content_length=%d", resp.StatusCode, ct, cl)
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		_ = resp.Body.Close()
		return nil, ports.Meta{}, fmt.Errorf("http status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	ct := resp.Header.Get("Content-Type")
	size := resp.ContentLength
	log.Printf("[OPENER][HTTP][OK] content_type=%q size=%d", ct, size)
	if size < 0 {
		size = -1
	}
	return resp.Body, ports.Meta{
		Source:      req.URL.Scheme,
		ContentType: ct,
		Size:        size,
	}, nil
}
