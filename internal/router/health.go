package router

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName - имя сервиса в протоколе gRPC health.
const ServiceName = "lawyer-service"

// NewHealthServer собирает gRPC-сервер с health и reflection для оркестратора.
// Сервис помечается SERVING сразу, при остановке его нужно перевести в NOT_SERVING.
func NewHealthServer() (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)
	return grpcServer, healthServer
}
