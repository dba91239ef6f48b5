package grpc

import (
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"carrental-backend/internal/api/grpc/interceptor"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/security"
)

// ServiceBooking is the health service name reported for the booking API.
const ServiceBooking = "carrental.booking"

// Server exposes the standard gRPC health service for load balancers and
// orchestrators.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
}

func NewServer(verifier security.IdentityVerifier, admins security.AdminPolicy) *Server {
	auth := interceptor.NewAuthInterceptor(verifier, admins)
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptor.UnaryLogging(), auth.Unary()),
		grpc.ChainStreamInterceptor(auth.Stream()),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceBooking, healthpb.HealthCheckResponse_SERVING)
	return &Server{grpc: s, health: hs}
}

// SetServing flips the booking service status, e.g. while a dependency is down.
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceBooking, st)
}

func (s *Server) Serve(lis net.Listener) error {
	logger.Info("gRPC health server listening", "addr", lis.Addr().String())
	return s.grpc.Serve(lis)
}

// Stop marks every service as not serving, then drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
