package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	log "github.com/echocat/slf4g"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes metrics of a gatherer over HTTP at /metrics.
type Server struct {
	Listen   string
	Gatherer prometheus.Gatherer
}

// Run serves until ctx is done. An empty Listen address disables the server.
func (this *Server) Run(ctx context.Context) error {
	if this.Listen == "" {
		return nil
	}
	gatherer := this.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	ln, err := net.Listen("tcp", this.Listen)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sCtx)
	}()

	log.With("address", ln.Addr().String()).
		Info("Serving metrics.")
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
