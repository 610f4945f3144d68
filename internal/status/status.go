package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	ecommon "github.com/ethereum/go-ethereum/common"
	etypes "github.com/ethereum/go-ethereum/core/types"
)

type TxOnChainStatus string

const (
	TxOnChainPending TxOnChainStatus = "PENDING"
	TxOnChainSuccess TxOnChainStatus = "SUCCESS"
	TxOnChainFail    TxOnChainStatus = "FAIL"
)

type receiptReader interface {
	TransactionReceipt(ctx context.Context, txHash ecommon.Hash) (*etypes.Receipt, error)
}

type Status struct {
	caller   receiptReader
	interval time.Duration
}

func NewStatus(caller receiptReader, interval time.Duration) *Status {
	if interval <= 0 {
		interval = time.Second
	}
	return &Status{
		caller:   caller,
		interval: interval,
	}
}

// WaitMined polls for the receipt of txHash until it lands or ctx is done.
func (s *Status) WaitMined(ctx context.Context, txHash ecommon.Hash) (TxOnChainStatus, *etypes.Receipt, error) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return TxOnChainPending, nil, ctx.Err()
		case <-ticker.C:
			receipt, err := s.caller.TransactionReceipt(ctx, txHash)
			if errors.Is(err, ethereum.NotFound) {
				continue
			}
			if err != nil {
				return TxOnChainPending, nil, fmt.Errorf("failed to get receipt: %w", err)
			}
			if receipt.Status != etypes.ReceiptStatusSuccessful {
				return TxOnChainFail, receipt, nil
			}
			return TxOnChainSuccess, receipt, nil
		}
	}
}
