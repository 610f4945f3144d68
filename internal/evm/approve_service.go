package evm

import (
	"context"
	"fmt"
	"math/big"

	ecommon "github.com/ethereum/go-ethereum/common"

	"github.com/yo-safe/terminal/internal/status"
	"github.com/yo-safe/terminal/internal/transfer"
)

type approveService struct {
	rpc    Backend
	signer *signerService
	status *status.Status
}

func newApproveService(rpc Backend, signer *signerService, status *status.Status) *approveService {
	return &approveService{
		rpc:    rpc,
		signer: signer,
		status: status,
	}
}

// CheckAllowance reports whether spender needs a fresh approval for amount and,
// if so, returns the approve calldata.
func (a *approveService) CheckAllowance(
	ctx context.Context,
	tokenAddress, owner, spender ecommon.Address,
	amount *big.Int,
) (bool, []byte, error) {
	currentAllowance, err := callReadonly[*big.Int](ctx, a.rpc, ERC20ABI, tokenAddress, "allowance", owner, spender)
	if err != nil {
		return false, nil, fmt.Errorf("failed to check allowance: %w", err)
	}

	if currentAllowance.Cmp(amount) >= 0 {
		return false, nil, nil
	}

	data, err := ERC20ABI.Pack("approve", spender, amount)
	if err != nil {
		return false, nil, fmt.Errorf("failed to pack approve: %w", err)
	}
	return true, data, nil
}

// Run approves req.Vault to spend req.Amount of req.Token. An allowance that
// already covers the amount confirms without a transaction.
func (a *approveService) Run(
	ctx context.Context,
	req transfer.Request,
	onSubmitted func(txHash string),
) (transfer.Outcome, error) {
	var zero ecommon.Address
	if req.Token == zero {
		return transfer.Outcome{}, fmt.Errorf("token address cannot be zero")
	}
	if req.Owner != a.signer.Address() {
		return transfer.Outcome{}, fmt.Errorf("owner %s is not the wallet identity", req.Owner.Hex())
	}

	shouldApprove, approveData, err := a.CheckAllowance(ctx, req.Token, req.Owner, req.Vault, req.Amount)
	if err != nil {
		return transfer.Outcome{}, fmt.Errorf("failed to check allowance & build approve: %w", err)
	}
	if !shouldApprove {
		return transfer.Outcome{}, nil
	}

	hash, err := a.signer.SignAndBroadcast(ctx, req.Token, nil, approveData)
	if err != nil {
		return transfer.Outcome{}, fmt.Errorf("failed to sign & broadcast approve: %w", err)
	}
	onSubmitted(hash.Hex())

	st, _, err := a.status.WaitMined(ctx, hash)
	if err != nil {
		return transfer.Outcome{}, fmt.Errorf("failed to wait approve: hash=%s: %w", hash.Hex(), err)
	}
	if st != status.TxOnChainSuccess {
		return transfer.Outcome{}, fmt.Errorf("failed to land approve: %s, hash=%s", st, hash.Hex())
	}
	return transfer.Outcome{}, nil
}
