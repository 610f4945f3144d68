package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type Server struct {
	port int
	e    *echo.Echo
}

func New(port int) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	return &Server{port: port, e: e}
}

func (s *Server) Handler() http.Handler {
	return s.e
}

// Start serves /healthz until ctx is done.
func (s *Server) Start(ctx context.Context, logger *logrus.Logger) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.e.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("failed to shutdown health server: %v", err)
		}
	}()

	logger.Infof("health server listening on :%d", s.port)
	err := s.e.Start(fmt.Sprintf(":%d", s.port))
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start health server: %w", err)
	}
	return nil
}
