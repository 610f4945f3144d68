package evm

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ecommon "github.com/ethereum/go-ethereum/common"
	etypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/yo-safe/terminal/internal/transfer"
)

// findEvent returns the first log emitted by contract for event.
func findEvent(contract abi.ABI, event string, emitter ecommon.Address, logs []*etypes.Log) (*etypes.Log, bool) {
	ev, ok := contract.Events[event]
	if !ok {
		return nil, false
	}
	for _, l := range logs {
		if l == nil || l.Address != emitter || len(l.Topics) == 0 {
			continue
		}
		if l.Topics[0] == ev.ID {
			return l, true
		}
	}
	return nil, false
}

// decodeAmounts unpacks the non-indexed (assets, shares) pair of an ERC-4626 event.
func decodeAmounts(event string, l *etypes.Log) (*big.Int, *big.Int, error) {
	values, err := ERC4626ABI.Unpack(event, l.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to unpack %s: %w", event, err)
	}
	if len(values) != 2 {
		return nil, nil, fmt.Errorf("expected 2 values in %s, got %d", event, len(values))
	}
	assets, ok := values[0].(*big.Int)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected assets type %T", values[0])
	}
	shares, ok := values[1].(*big.Int)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected shares type %T", values[1])
	}
	return assets, shares, nil
}

func depositOutcome(vault ecommon.Address, logs []*etypes.Log) transfer.Outcome {
	out := transfer.Outcome{Settlement: transfer.SettlementInstant}
	l, ok := findEvent(ERC4626ABI, "Deposit", vault, logs)
	if !ok {
		return out
	}
	assets, shares, err := decodeAmounts("Deposit", l)
	if err != nil {
		return out
	}
	out.Assets, out.Shares = assets, shares
	return out
}

// redeemOutcome reads settlement from the receipt: a Withdraw event from the
// vault means the assets were paid out, otherwise the redemption was queued
// and quoted stands in for the assets owed.
func redeemOutcome(vault ecommon.Address, shares, quoted *big.Int, logs []*etypes.Log) transfer.Outcome {
	l, ok := findEvent(ERC4626ABI, "Withdraw", vault, logs)
	if !ok {
		return transfer.Outcome{
			Settlement: transfer.SettlementDeferred,
			Assets:     copyBig(quoted),
			Shares:     new(big.Int).Set(shares),
		}
	}
	assets, burned, err := decodeAmounts("Withdraw", l)
	if err != nil {
		return transfer.Outcome{
			Settlement: transfer.SettlementInstant,
			Assets:     copyBig(quoted),
			Shares:     new(big.Int).Set(shares),
		}
	}
	return transfer.Outcome{
		Settlement: transfer.SettlementInstant,
		Assets:     assets,
		Shares:     burned,
	}
}

func copyBig(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
