package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dgii_fiscal/internal/handlers"
	"dgii_fiscal/internal/transport/auth"
)

type Server struct {
	httpServer *http.Server
	handlers   *handlers.Handlers
}

// NewServer mounts the API. /health and /metrics stay open; every other route
// needs a bearer token once tokens are configured.
func NewServer(port string, h *handlers.Handlers, tokens auth.Tokens) *Server {
	mux := http.NewServeMux()

	if h != nil {
		guard := auth.BearerMiddleware(tokens)

		mux.HandleFunc("/health", h.Health)
		if h.Metrics != nil {
			mux.Handle("/metrics", h.Metrics.Handler())
		}
		mux.Handle("/upload", guard(http.HandlerFunc(h.Upload)))
		mux.Handle("/import", guard(http.HandlerFunc(h.Import)))
		mux.Handle("/imports", guard(http.HandlerFunc(h.Imports)))
		mux.Handle("/reports", guard(http.HandlerFunc(h.RenderReport)))
		mux.Handle("/taxpayers", guard(http.HandlerFunc(h.Taxpayer)))
		mux.Handle("/receipts", guard(http.HandlerFunc(h.Receipt)))
	}

	return &Server{
		handlers: h,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%s", port),
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Run serves until ctx is cancelled, then drains requests and waits for
// background imports to checkpoint and return.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := s.httpServer.Shutdown(shCtx)
		if s.handlers != nil {
			s.handlers.Wait()
		}
		return err
	case err := <-errCh:
		return err
	}
}
