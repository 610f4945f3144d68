package api

import (
	"fmt"
	"math/big"
	"net/http"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"

	"github.com/yo-safe/terminal/internal/util"
	"github.com/yo-safe/terminal/internal/vault"
)

type positionResponse struct {
	Vault  ecommon.Address `json:"vault"`
	Owner  ecommon.Address `json:"owner"`
	Shares string          `json:"shares"`
	Assets string          `json:"assets"`
}

func (s *Server) listVaults(c echo.Context) error {
	vaults := s.deps.Vaults.List()
	if vaults == nil {
		vaults = []vault.Vault{}
	}
	return c.JSON(http.StatusOK, vaults)
}

func (s *Server) vaultStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.deps.Vaults.Stats())
}

func (s *Server) position(c echo.Context) error {
	v, err := s.vaultParam(c)
	if err != nil {
		return err
	}
	owner, err := s.ownerParam(c)
	if err != nil {
		return err
	}

	pos, err := s.deps.Positions.Position(c.Request().Context(), v.Address, owner)
	if err != nil {
		return fmt.Errorf("failed to get position: %w", err)
	}

	return c.JSON(http.StatusOK, positionResponse{
		Vault:  v.Address,
		Owner:  owner,
		Shares: bigString(pos.Shares),
		Assets: util.FromBaseUnits(pos.Assets, int(v.AssetDecimals)),
	})
}

func (s *Server) performance(c echo.Context) error {
	v, err := s.vaultParam(c)
	if err != nil {
		return err
	}
	owner, err := s.ownerParam(c)
	if err != nil {
		return err
	}

	perf, err := s.deps.Performance.Get(c.Request().Context(), owner, v.Address, int(v.AssetDecimals))
	if err != nil {
		return fmt.Errorf("failed to get performance: %w", err)
	}
	return c.JSON(http.StatusOK, perf)
}

// vaultParam resolves the :vault path parameter; "main" selects the main vault.
func (s *Server) vaultParam(c echo.Context) (vault.Vault, error) {
	return s.resolveVault(c.Param("vault"))
}

func (s *Server) resolveVault(raw string) (vault.Vault, error) {
	if raw == "" || raw == "main" {
		v, ok := s.deps.Vaults.Main()
		if !ok {
			return vault.Vault{}, errVaultNotFound
		}
		return v, nil
	}
	if !ecommon.IsHexAddress(raw) {
		return vault.Vault{}, badRequest(fmt.Sprintf("invalid vault address: %q", raw))
	}
	v, ok := s.deps.Vaults.Get(ecommon.HexToAddress(raw))
	if !ok {
		return vault.Vault{}, fmt.Errorf("%w: %s", errVaultNotFound, raw)
	}
	return v, nil
}

// ownerParam reads ?owner=, defaulting to the wallet identity.
func (s *Server) ownerParam(c echo.Context) (ecommon.Address, error) {
	raw := c.QueryParam("owner")
	if raw == "" {
		if s.deps.Wallet == (ecommon.Address{}) {
			return ecommon.Address{}, badRequest("owner is required when no wallet is configured")
		}
		return s.deps.Wallet, nil
	}
	if !ecommon.IsHexAddress(raw) {
		return ecommon.Address{}, badRequest(fmt.Sprintf("invalid owner address: %q", raw))
	}
	return ecommon.HexToAddress(raw), nil
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
