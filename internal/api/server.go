package api

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"time"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/yo-safe/terminal/internal/activity"
	"github.com/yo-safe/terminal/internal/evm"
	"github.com/yo-safe/terminal/internal/performance"
	"github.com/yo-safe/terminal/internal/session"
	"github.com/yo-safe/terminal/internal/uistate"
	"github.com/yo-safe/terminal/internal/vault"
)

type Config struct {
	Host string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port string `envconfig:"SERVER_PORT" default:"8080"`
}

type Vaults interface {
	List() []vault.Vault
	Get(addr ecommon.Address) (vault.Vault, bool)
	Main() (vault.Vault, bool)
	Stats() vault.ProtocolStats
}

type Positions interface {
	Position(ctx context.Context, vault, owner ecommon.Address) (evm.Position, error)
}

type Performance interface {
	Get(ctx context.Context, owner, vault ecommon.Address, assetDecimals int) (performance.Performance, error)
}

type Sessions interface {
	Create() (*session.Session, error)
	Get(id uuid.UUID) (*session.Session, error)
	Close(id uuid.UUID) error
}

type Feed interface {
	List() []activity.Entry
}

type Telemetry interface {
	Snapshot(ctx context.Context, wallet ecommon.Address) (evm.Telemetry, error)
}

type Balances interface {
	GetERC20Balance(ctx context.Context, token, owner ecommon.Address) (*big.Int, error)
}

type UIState interface {
	Get(ctx context.Context, owner ecommon.Address) (uistate.State, error)
	Put(ctx context.Context, owner ecommon.Address, st uistate.State) (uistate.State, error)
	Navigate(ctx context.Context, owner ecommon.Address, tab string) (uistate.State, error)
	ToggleTheme(ctx context.Context, owner ecommon.Address) (uistate.State, error)
}

// Deps are the services behind the API. Wallet is the identity flows act for.
type Deps struct {
	Chain       evm.Chain
	Wallet      ecommon.Address
	Vaults      Vaults
	Positions   Positions
	Performance Performance
	Sessions    Sessions
	Feed        Feed
	Telemetry   Telemetry
	Balances    Balances
	UIState     UIState
}

type Server struct {
	cfg    Config
	deps   Deps
	logger *logrus.Entry
	e      *echo.Echo
}

func NewServer(cfg Config, deps Deps, middlewares []echo.MiddlewareFunc, logger *logrus.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger.WithField("pkg", "api.Server"),
		e:      echo.New(),
	}
	s.e.HideBanner = true
	s.e.HidePort = true
	s.e.HTTPErrorHandler = s.errorHandler

	s.e.Use(middleware.Recover())
	s.e.Use(middleware.CORS())
	s.e.Use(middlewares...)
	s.routes()
	return s
}

// DefaultMiddlewares logs every request through the server logger.
func DefaultMiddlewares(logger *logrus.Logger) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogMethod:  true,
			LogURI:     true,
			LogStatus:  true,
			LogLatency: true,
			LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
				logger.WithFields(logrus.Fields{
					"method":  v.Method,
					"uri":     v.URI,
					"status":  v.Status,
					"latency": v.Latency.String(),
				}).Debug("request")
				return nil
			},
		}),
	}
}

func (s *Server) routes() {
	s.e.GET("/vaults", s.listVaults)
	s.e.GET("/vaults/stats", s.vaultStats)
	s.e.GET("/vaults/:vault/position", s.position)
	s.e.GET("/vaults/:vault/performance", s.performance)

	s.e.POST("/sessions", s.createSession)
	s.e.DELETE("/sessions/:id", s.closeSession)
	s.e.POST("/sessions/:id/deposit", s.deposit)
	s.e.POST("/sessions/:id/redeem", s.redeem)
	s.e.GET("/sessions/:id/:flow", s.flowState)
	s.e.POST("/sessions/:id/:flow/reset", s.resetFlow)

	s.e.GET("/activity", s.activity)
	s.e.GET("/telemetry", s.telemetry)
	s.e.GET("/tokens", s.tokens)
	s.e.GET("/balances", s.balances)
	s.e.GET("/ui-state", s.getUIState)
	s.e.PUT("/ui-state", s.putUIState)
	s.e.POST("/ui-state/tab", s.navigate)
	s.e.POST("/ui-state/theme/toggle", s.toggleTheme)
}

func (s *Server) Handler() http.Handler {
	return s.e
}

// Start serves the API until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.e.Shutdown(shutdownCtx); err != nil {
			s.logger.WithError(err).Error("failed to shutdown server")
		}
	}()

	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	s.logger.Infof("server listening on %s", addr)
	err := s.e.Start(addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
