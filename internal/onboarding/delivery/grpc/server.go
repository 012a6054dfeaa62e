package grpc

import (
	"context"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/esouk/onboarding/pkg/logger"
)

// ServiceName is the health service name reported for the onboarding wizard
const ServiceName = "esouk.onboarding.v1.Onboarding"

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer publishes serving status derived from the state store
type HealthServer struct {
	health *health.Server
	store  Pinger
}

func NewHealthServer(store Pinger) *HealthServer {
	return &HealthServer{health: health.NewServer(), store: store}
}

// Check pings the store once and updates the published status
func (h *HealthServer) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_SERVING
	if err := h.store.Ping(ctx); err != nil {
		logger.Warn(ctx).Err(err).Msg("State store unreachable, reporting NOT_SERVING")
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.health.SetServingStatus("", st)
	h.health.SetServingStatus(ServiceName, st)
	return st
}

// Watch re-checks the store every interval until ctx ends
func (h *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	h.Check(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.health.Shutdown()
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, interval)
			h.Check(pingCtx)
			cancel()
		}
	}
}

// NewServer builds the gRPC server with interceptors, tracing, health and
// reflection registered
func NewServer(h *HealthServer) *grpc.Server {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor,
			LoggingInterceptor,
			MetricsInterceptor,
		),
	)

	healthpb.RegisterHealthServer(srv, h.health)
	reflection.Register(srv)
	return srv
}
