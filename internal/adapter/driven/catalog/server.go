package catalog

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Server serves a static catalog build (e.g. a storybook-static directory)
// on a loopback ephemeral port so local builds can be audited without a
// separate web server.
type Server struct {
	logger *zap.Logger
	srv    *http.Server
}

// NewServer creates a new catalog server.
func NewServer(logger *zap.Logger) *Server {
	return &Server{logger: logger}
}

// Serve starts serving dir and returns the endpoint URL for discovery.
func (s *Server) Serve(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("catalog directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/*", http.FileServer(http.Dir(dir)))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to bind catalog server: %w", err)
	}

	s.srv = &http.Server{Handler: r}
	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("catalog server stopped", zap.Error(err))
		}
	}()

	endpoint := fmt.Sprintf("http://%s/", ln.Addr().String())
	s.logger.Info("serving catalog", zap.String("dir", dir), zap.String("endpoint", endpoint))
	return endpoint, nil
}

// Shutdown stops the server, waiting briefly for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(sctx)
}
