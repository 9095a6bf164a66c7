package http

// this is entry point of the http request handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/fcv-2025.net/attempt-service/internal/config"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/services/attempt"
	"gitlab.com/fcv-2025.net/attempt-service/internal/handlers"
	"gitlab.com/fcv-2025.net/attempt-service/internal/handlers/attempts"
	"gitlab.com/fcv-2025.net/attempt-service/internal/handlers/health"
)

type ServiceProvider struct {
	attemptService attempt.IAttemptService
}

func NewServiceProvider(attemptService attempt.IAttemptService) *ServiceProvider {
	return &ServiceProvider{
		attemptService: attemptService,
	}
}

type Server struct {
	router          *mux.Router
	srv             *http.Server
	Port            int
	ServiceName     string
	ServiceProvider ServiceProvider
	jwtConfig       *config.JwtConfig
	logger          primary.Logger
}

func NewServer(port int, serviceName string, serviceProvider ServiceProvider, jwtConfig *config.JwtConfig, logger primary.Logger) *Server {
	return &Server{
		Port:            port,
		ServiceName:     serviceName,
		ServiceProvider: serviceProvider,
		jwtConfig:       jwtConfig,
		logger:          logger,
	}
}

func (s *Server) Init() error {
	if s.jwtConfig.Secret == "" {
		s.logger.Warn("JWT_SECRET is empty, attempt routes will reject every request")
	}
	r := mux.NewRouter()
	health.NewHandler(s.ServiceName).Register(r)
	attempts.NewHandler(s.ServiceProvider.attemptService, s.logger).Register(r, handlers.New(s.jwtConfig))
	s.router = r
	return nil
}

// Handler exposes the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves in the background. The returned channel reports a listen
// failure and is closed when the server stops.
func (s *Server) Start(ctx context.Context) <-chan error {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", "error", err)
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down http server...")
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", "error", err)
		return err
	}
	return nil
}
