package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_logrus "github.com/grpc-ecosystem/go-grpc-middleware/logging/logrus"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type Server interface {
	Run() error
}

// server encapsulates all logic for registering and running a Server.
type server struct {
	Config Config
	Logger logrus.FieldLogger

	HTTPServer *http.Server
	GRPCServer *grpc.Server
	Health     *health.Server

	Shutdown func()

	// Exit chan for graceful Shutdown
	Exit chan chan error
}

func New(cfg Config, logger logrus.FieldLogger) *server {
	s := &server{
		Config: cfg,
		Logger: logger.WithField("component", "Server"),
		Exit:   make(chan chan error),
	}

	return s
}

func (s *server) start() error {
	go func() {
		err := s.HTTPServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			s.Logger.Errorf("HTTP Server error - initiating shutting down: %v", err)
			s.stop()
		}
	}()
	s.Logger.Infof("Listening and serving HTTP on %s", s.HTTPServer.Addr)

	if s.GRPCServer != nil {
		addr := fmt.Sprintf(":%d", s.Config.RPCPort)
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			return errors.Wrap(err, "failed to listen to RPC port")
		}

		go func() {
			if err := s.GRPCServer.Serve(lis); err != nil && err != grpc.ErrServerStopped {
				s.Logger.Errorf("gRPC Server error - initiating shutting down: %v", err)
				s.stop()
			}
		}()
		s.Logger.Infof("Listening on RPC port: %d", s.Config.RPCPort)
	}

	go func() {
		exit := <-s.Exit

		// stop listener with timeout
		ctx, cancel := context.WithTimeout(context.Background(), s.Config.ShutdownTimeout)
		defer cancel()

		if s.Health != nil {
			s.Health.Shutdown()
		}

		// stop service
		if s.Shutdown != nil {
			s.Shutdown()
		}

		if s.GRPCServer != nil {
			s.GRPCServer.GracefulStop()
		}

		exit <- s.HTTPServer.Shutdown(ctx)
	}()

	return nil
}

func (s *server) stop() error {
	ch := make(chan error)
	s.Exit <- ch
	return <-ch
}

// Run will start up the Server(s) and block until a termination signal is received.
func (s *server) Run() error {
	if err := s.start(); err != nil {
		return err
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
	s.Logger.Info("Received signal ", <-ch)
	return s.stop()
}

// NewGRPCServer returns a gRPC server with recovery and request logging interceptors.
func NewGRPCServer(logger logrus.FieldLogger, options ...grpc.ServerOption) *grpc.Server {
	entry := logrus.NewEntry(logrus.StandardLogger())
	if e, ok := logger.(*logrus.Entry); ok {
		entry = e
	} else if l, ok := logger.(*logrus.Logger); ok {
		entry = logrus.NewEntry(l)
	}

	chain := grpc.UnaryInterceptor(grpc_middleware.ChainUnaryServer(
		grpc_recovery.UnaryServerInterceptor(),
		grpc_logrus.UnaryServerInterceptor(entry),
	))

	return grpc.NewServer(append(options, chain)...)
}

// NewHealthServer registers the standard gRPC health service on srv. Serving status is
// reported as SERVING until the server shuts down.
func NewHealthServer(srv *grpc.Server, services ...string) *health.Server {
	h := health.NewServer()
	healthpb.RegisterHealthServer(srv, h)

	h.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	for _, service := range services {
		h.SetServingStatus(service, healthpb.HealthCheckResponse_SERVING)
	}

	return h
}

func NewHTTPServer(cfg Config, handler http.Handler) *http.Server {
	return &http.Server{
		Handler:        handler,
		Addr:           fmt.Sprintf(":%d", cfg.HTTPPort),
		MaxHeaderBytes: cfg.MaxHeaderBytes,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
	}
}
