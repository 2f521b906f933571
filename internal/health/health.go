// Package health provides HTTP and gRPC health check endpoints.
//
// Docker, Kubernetes, and load balancers use these endpoints to monitor
// the service's liveness. /healthz additionally reports which vendor
// gateways are configured and the current session statistics, so a single
// probe shows how degraded the deployment is.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/nadzzz/voiceagent/internal/conversation"
)

// Probes supply the live state reported by /healthz.
type Probes struct {
	// Services reports the configuration state of each vendor gateway.
	Services func() map[string]bool
	// Stats reports aggregate session statistics.
	Stats func() conversation.Stats
}

// Server is a lightweight HTTP server that exposes /healthz and /readyz.
type Server struct {
	port   int
	probes Probes
	ready  atomic.Bool
	server *http.Server
}

// New creates a new health check server.
func New(port int, probes Probes) *Server {
	return &Server{port: port, probes: probes}
}

// SetReady marks the service as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !s.ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "not_ready"})
			return
		}
		body := map[string]any{"status": "ok"}
		if s.probes.Services != nil {
			body["services"] = s.probes.Services()
		}
		if s.probes.Stats != nil {
			body["statistics"] = s.probes.Stats()
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(body)
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !s.ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "not_ready"})
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	return mux
}

// ListenAndServe starts the health check HTTP server.
// It blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("health server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}

// GRPCServer exposes the standard gRPC health checking protocol for
// environments that probe over gRPC instead of HTTP. A port of 0
// disables it.
type GRPCServer struct {
	port   int
	srv    *grpc.Server
	health *grpchealth.Server
}

// NewGRPC creates a gRPC health server.
func NewGRPC(port int) *GRPCServer {
	g := &GRPCServer{
		port:   port,
		srv:    grpc.NewServer(),
		health: grpchealth.NewServer(),
	}
	healthpb.RegisterHealthServer(g.srv, g.health)
	return g
}

// SetReady flips the overall serving status.
func (g *GRPCServer) SetReady(ready bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ready {
		status = healthpb.HealthCheckResponse_SERVING
	}
	g.health.SetServingStatus("", status)
}

// ListenAndServe starts the gRPC health server. It blocks until the
// context is cancelled, and returns immediately when disabled.
func (g *GRPCServer) ListenAndServe(ctx context.Context) error {
	if g.port == 0 {
		return nil
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", g.port))
	if err != nil {
		return fmt.Errorf("grpc health listen: %w", err)
	}

	slog.Info("grpc health server listening", "port", g.port)

	go func() {
		<-ctx.Done()
		g.srv.GracefulStop()
	}()

	if err := g.srv.Serve(lis); err != nil {
		return fmt.Errorf("grpc health server: %w", err)
	}
	return nil
}
