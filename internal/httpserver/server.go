package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// New builds the API server. Write timeout leaves room for large imports.
func New(port string, logger *zap.Logger, svc Service) *Server {
	serverLogger := logger.Named("http")

	return &Server{
		srv: &http.Server{
			Addr:              ":" + port,
			Handler:           newRouter(serverLogger, svc),
			ReadTimeout:       30 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       90 * time.Second,
			MaxHeaderBytes:    1 << 16,
			ErrorLog:          zap.NewStdLog(serverLogger),
		},
		logger: serverLogger,
	}
}

func (s *Server) Addr() string {
	return s.srv.Addr
}

func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("http server stopping")
	if err := s.srv.Shutdown(ctx); err != nil {
		_ = s.srv.Close()
		return err
	}
	return nil
}
