package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

var errServerStopped = errors.New("http server stopped unexpectedly")

// HTTPService runs the server under a supervisor.
type HTTPService struct {
	server          *Server
	addr            string
	shutdownTimeout time.Duration
}

func NewHTTPService(server *Server, addr string, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{server: server, addr: addr, shutdownTimeout: shutdownTimeout}
}

func (h *HTTPService) Serve(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := h.server.Start(h.addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		if ctx.Err() == nil {
			return errServerStopped
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		// The parent context is already canceled here.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (h *HTTPService) String() string {
	return "http-server"
}
