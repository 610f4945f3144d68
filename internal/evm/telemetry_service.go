package evm

import (
	"context"
	"fmt"
	"math/big"

	ecommon "github.com/ethereum/go-ethereum/common"
)

type Telemetry struct {
	BlockNumber   uint64
	GasPrice      *big.Int
	WalletBalance *big.Int
}

type telemetryService struct {
	rpc    Backend
	tokens *tokenService
}

func newTelemetryService(rpc Backend, tokens *tokenService) *telemetryService {
	return &telemetryService{
		rpc:    rpc,
		tokens: tokens,
	}
}

// Snapshot reads head block and gas price; the wallet balance is skipped for a zero wallet.
func (t *telemetryService) Snapshot(ctx context.Context, wallet ecommon.Address) (Telemetry, error) {
	block, err := t.rpc.BlockNumber(ctx)
	if err != nil {
		return Telemetry{}, fmt.Errorf("failed to get block number: %w", err)
	}

	gasPrice, err := t.rpc.SuggestGasPrice(ctx)
	if err != nil {
		return Telemetry{}, fmt.Errorf("failed to get gas price: %w", err)
	}

	res := Telemetry{
		BlockNumber: block,
		GasPrice:    gasPrice,
	}

	var zero ecommon.Address
	if wallet == zero {
		return res, nil
	}
	res.WalletBalance, err = t.tokens.NativeBalance(ctx, wallet)
	if err != nil {
		return Telemetry{}, err
	}
	return res, nil
}
