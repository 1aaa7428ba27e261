// internal/delivery/httpapi/server.go
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"course-payments-bot/pkg/logger"
)

// Server - HTTP-сервер диагностической поверхности
type Server struct {
	server *http.Server
}

func NewServer(port string, handlers *Handlers) *Server {
	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%s", port),
			Handler:      handlers.Mux(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start запускает сервер в фоне
func (s *Server) Start() {
	logger.Info("🚀 HTTP-сервер запущен на %s", s.server.Addr)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("❌ Ошибка HTTP-сервера: %v", err)
		}
	}()
}

// Stop корректно останавливает сервер
func (s *Server) Stop(ctx context.Context) error {
	logger.Info("🛑 Остановка HTTP-сервера...")
	return s.server.Shutdown(ctx)
}
