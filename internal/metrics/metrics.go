package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tcfw/auctionhouse/internal/utils/logging"
)

// Server exposes the process metrics for scraping.
type Server struct {
	srv *http.Server
}

func NewServer(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// ListenAndServe blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return errors.Wrap(err, "listening for metrics")
	}

	return s.Serve(l)
}

func (s *Server) Serve(l net.Listener) error {
	logging.Entry().WithField("addr", l.Addr().String()).Info("serving metrics")

	if err := s.srv.Serve(l); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
