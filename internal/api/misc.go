package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yo-safe/terminal/internal/uistate"
	"github.com/yo-safe/terminal/internal/util"
	"github.com/yo-safe/terminal/internal/vault"
)

type telemetryResponse struct {
	BlockNumber   uint64 `json:"blockNumber"`
	GasPriceGwei  string `json:"gasPriceGwei"`
	WalletBalance string `json:"walletBalance,omitempty"`
}

func (s *Server) activity(c echo.Context) error {
	return c.JSON(http.StatusOK, s.deps.Feed.List())
}

func (s *Server) telemetry(c echo.Context) error {
	t, err := s.deps.Telemetry.Snapshot(c.Request().Context(), s.deps.Wallet)
	if err != nil {
		return fmt.Errorf("failed to get telemetry: %w", err)
	}

	res := telemetryResponse{
		BlockNumber:  t.BlockNumber,
		GasPriceGwei: util.ToDecimal(t.GasPrice, 9).StringFixed(4),
	}
	if t.WalletBalance != nil {
		res.WalletBalance = util.ToDecimal(t.WalletBalance, 18).StringFixed(4)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) tokens(c echo.Context) error {
	return c.JSON(http.StatusOK, vault.SupportedTokens)
}

type balanceResponse struct {
	Symbol  string `json:"symbol"`
	Token   string `json:"token"`
	Balance string `json:"balance"`
}

// balances reports the owner's balance of every supported token.
func (s *Server) balances(c echo.Context) error {
	owner, err := s.ownerParam(c)
	if err != nil {
		return err
	}

	res := make([]balanceResponse, 0, len(vault.SupportedTokens))
	for _, t := range vault.SupportedTokens {
		bal, er := s.deps.Balances.GetERC20Balance(c.Request().Context(), t.Address, owner)
		if er != nil {
			return fmt.Errorf("failed to get %s balance: %w", t.Symbol, er)
		}
		res = append(res, balanceResponse{
			Symbol:  t.Symbol,
			Token:   t.Address.Hex(),
			Balance: util.FromBaseUnits(bal, t.Decimals),
		})
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) getUIState(c echo.Context) error {
	owner, err := s.ownerParam(c)
	if err != nil {
		return err
	}
	st, err := s.deps.UIState.Get(c.Request().Context(), owner)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

func (s *Server) putUIState(c echo.Context) error {
	owner, err := s.ownerParam(c)
	if err != nil {
		return err
	}

	var st uistate.State
	if err = c.Bind(&st); err != nil {
		return badRequest("invalid request body")
	}

	saved, err := s.deps.UIState.Put(c.Request().Context(), owner, st)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, saved)
}

type navigateRequest struct {
	Tab string `json:"tab"`
}

func (s *Server) navigate(c echo.Context) error {
	owner, err := s.ownerParam(c)
	if err != nil {
		return err
	}

	var req navigateRequest
	if err = c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	st, err := s.deps.UIState.Navigate(c.Request().Context(), owner, req.Tab)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

func (s *Server) toggleTheme(c echo.Context) error {
	owner, err := s.ownerParam(c)
	if err != nil {
		return err
	}
	st, err := s.deps.UIState.ToggleTheme(c.Request().Context(), owner)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}
