package api

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/yo-safe/terminal/internal/session"
	"github.com/yo-safe/terminal/internal/util"
	"github.com/yo-safe/terminal/internal/vault"
)

type sessionResponse struct {
	ID       uuid.UUID       `json:"id"`
	Owner    ecommon.Address `json:"owner"`
	Deposit  session.View    `json:"deposit"`
	Withdraw session.View    `json:"withdraw"`
}

type depositRequest struct {
	Vault  string `json:"vault"`
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

type redeemRequest struct {
	Vault  string `json:"vault"`
	Shares string `json:"shares"`
}

func (s *Server) createSession(c echo.Context) error {
	sess, err := s.deps.Sessions.Create()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, s.sessionResponse(sess))
}

func (s *Server) closeSession(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	err = s.deps.Sessions.Close(id)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) deposit(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}

	var req depositRequest
	if err = c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	v, err := s.resolveVault(req.Vault)
	if err != nil {
		return err
	}

	token, err := depositToken(req.Token, v)
	if err != nil {
		return err
	}

	amount, err := util.ToBaseUnits(req.Amount, token.Decimals)
	if err != nil {
		return badRequest(fmt.Sprintf("invalid amount: %v", err))
	}
	if amount.Sign() <= 0 {
		return badRequest("amount must be greater than zero")
	}

	if !sess.Deposit(v.Address, token.Address, amount) {
		return errFlowBusy
	}
	return c.JSON(http.StatusAccepted, session.NewView(s.deps.Chain, sess.Controller(session.FlowDeposit).State()))
}

func (s *Server) redeem(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}

	var req redeemRequest
	if err = c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	v, err := s.resolveVault(req.Vault)
	if err != nil {
		return err
	}

	shares, err := s.redeemShares(c.Request().Context(), v, sess.Owner, req.Shares)
	if err != nil {
		return err
	}

	if !sess.Redeem(v.Address, shares) {
		return errFlowBusy
	}
	return c.JSON(http.StatusAccepted, session.NewView(s.deps.Chain, sess.Controller(session.FlowWithdraw).State()))
}

// redeemShares parses raw share base units; empty redeems the full position.
func (s *Server) redeemShares(ctx context.Context, v vault.Vault, owner ecommon.Address, raw string) (*big.Int, error) {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		shares, ok := new(big.Int).SetString(raw, 10)
		if !ok || shares.Sign() <= 0 {
			return nil, badRequest(fmt.Sprintf("invalid shares: %q", raw))
		}
		return shares, nil
	}

	if owner == (ecommon.Address{}) {
		return nil, badRequest("shares are required when no wallet is configured")
	}
	pos, err := s.deps.Positions.Position(ctx, v.Address, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	if pos.Shares == nil || pos.Shares.Sign() <= 0 {
		return nil, badRequest("no shares to redeem")
	}
	return pos.Shares, nil
}

func (s *Server) flowState(c echo.Context) error {
	sess, flow, err := s.sessionFlow(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, session.NewView(s.deps.Chain, sess.Controller(flow).State()))
}

func (s *Server) resetFlow(c echo.Context) error {
	sess, flow, err := s.sessionFlow(c)
	if err != nil {
		return err
	}
	sess.Reset(flow)
	return c.JSON(http.StatusOK, session.NewView(s.deps.Chain, sess.Controller(flow).State()))
}

func (s *Server) sessionResponse(sess *session.Session) sessionResponse {
	return sessionResponse{
		ID:       sess.ID,
		Owner:    sess.Owner,
		Deposit:  session.NewView(s.deps.Chain, sess.Controller(session.FlowDeposit).State()),
		Withdraw: session.NewView(s.deps.Chain, sess.Controller(session.FlowWithdraw).State()),
	}
}

func (s *Server) session(c echo.Context) (*session.Session, error) {
	id, err := sessionID(c)
	if err != nil {
		return nil, err
	}
	return s.deps.Sessions.Get(id)
}

func (s *Server) sessionFlow(c echo.Context) (*session.Session, session.Flow, error) {
	flow, err := session.FlowFromString(c.Param("flow"))
	if err != nil {
		return nil, "", echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	sess, err := s.session(c)
	if err != nil {
		return nil, "", err
	}
	return sess, flow, nil
}

func sessionID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, badRequest(fmt.Sprintf("invalid session id: %q", c.Param("id")))
	}
	return id, nil
}

// depositToken resolves a token address or symbol and checks it is the
// vault's underlying asset; empty selects that asset. Amounts are scaled by
// the asset decimals read from the vault.
func depositToken(raw string, v vault.Vault) (vault.Token, error) {
	asset := vault.Token{Address: v.Asset, Decimals: int(v.AssetDecimals)}
	if t, ok := vault.LookupToken(v.Asset); ok {
		asset.Symbol, asset.Logo = t.Symbol, t.Logo
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return asset, nil
	}

	var addr ecommon.Address
	switch {
	case ecommon.IsHexAddress(raw):
		addr = ecommon.HexToAddress(raw)
	default:
		t, ok := vault.LookupTokenBySymbol(strings.ToUpper(raw))
		if !ok {
			return vault.Token{}, badRequest(fmt.Sprintf("unsupported token: %q", raw))
		}
		addr = t.Address
	}
	if addr != v.Asset {
		return vault.Token{}, badRequest(fmt.Sprintf("token %s is not the asset of vault %s", raw, v.Address.Hex()))
	}
	return asset, nil
}
