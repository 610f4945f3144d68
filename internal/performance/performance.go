package performance

import (
	"context"
	"fmt"
	"math/big"

	ecommon "github.com/ethereum/go-ethereum/common"

	"github.com/yo-safe/terminal/internal/evm"
	"github.com/yo-safe/terminal/internal/util"
)

// Totals are the cumulative asset amounts recorded for an owner in a vault.
type Totals struct {
	Deposited *big.Int
	Withdrawn *big.Int
}

type Ledger interface {
	Totals(ctx context.Context, owner, vault ecommon.Address) (Totals, error)
}

type PositionReader interface {
	Position(ctx context.Context, vault, owner ecommon.Address) (evm.Position, error)
}

type Performance struct {
	Deposited     string `json:"deposited"`
	Withdrawn     string `json:"withdrawn"`
	CurrentAssets string `json:"currentAssets"`
	Shares        string `json:"shares"`
	YieldEarned   string `json:"yieldEarned"`
}

type Service struct {
	ledger    Ledger
	positions PositionReader
}

func NewService(ledger Ledger, positions PositionReader) *Service {
	return &Service{
		ledger:    ledger,
		positions: positions,
	}
}

// Get reports the owner's yield in vault as current assets plus withdrawn
// minus deposited. Amounts are formatted with assetDecimals.
func (s *Service) Get(
	ctx context.Context,
	owner, vault ecommon.Address,
	assetDecimals int,
) (Performance, error) {
	totals, err := s.ledger.Totals(ctx, owner, vault)
	if err != nil {
		return Performance{}, fmt.Errorf("failed to get ledger totals: %w", err)
	}

	pos, err := s.positions.Position(ctx, vault, owner)
	if err != nil {
		return Performance{}, fmt.Errorf("failed to get position: %w", err)
	}

	shares := "0"
	if pos.Shares != nil {
		shares = pos.Shares.String()
	}

	yield := YieldEarned(totals, pos.Assets)
	return Performance{
		Deposited:     util.FromBaseUnits(totals.Deposited, assetDecimals),
		Withdrawn:     util.FromBaseUnits(totals.Withdrawn, assetDecimals),
		CurrentAssets: util.FromBaseUnits(pos.Assets, assetDecimals),
		Shares:        shares,
		YieldEarned:   util.FromBaseUnits(yield, assetDecimals),
	}, nil
}

// YieldEarned may be negative when the vault lost value.
func YieldEarned(totals Totals, currentAssets *big.Int) *big.Int {
	res := new(big.Int)
	if currentAssets != nil {
		res.Add(res, currentAssets)
	}
	if totals.Withdrawn != nil {
		res.Add(res, totals.Withdrawn)
	}
	if totals.Deposited != nil {
		res.Sub(res, totals.Deposited)
	}
	return res
}
