package evm

import (
	"context"
	"fmt"
	"math/big"

	ecommon "github.com/ethereum/go-ethereum/common"
	etypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/yo-safe/terminal/internal/status"
	"github.com/yo-safe/terminal/internal/transfer"
)

type VaultInfo struct {
	Address       ecommon.Address
	Asset         ecommon.Address
	Name          string
	Symbol        string
	Decimals      uint8
	AssetDecimals uint8
	TotalAssets   *big.Int
}

// Position is an owner's holding in a vault.
type Position struct {
	Assets *big.Int
	Shares *big.Int
}

type vaultService struct {
	rpc    Backend
	tokens *tokenService
	signer *signerService
	status *status.Status
}

func newVaultService(rpc Backend, tokens *tokenService, signer *signerService, status *status.Status) *vaultService {
	return &vaultService{
		rpc:    rpc,
		tokens: tokens,
		signer: signer,
		status: status,
	}
}

func (v *vaultService) Info(ctx context.Context, vault ecommon.Address) (VaultInfo, error) {
	asset, err := callReadonly[ecommon.Address](ctx, v.rpc, ERC4626ABI, vault, "asset")
	if err != nil {
		return VaultInfo{}, fmt.Errorf("failed to get vault asset: %w", err)
	}
	name, err := callReadonly[string](ctx, v.rpc, ERC20ABI, vault, "name")
	if err != nil {
		return VaultInfo{}, fmt.Errorf("failed to get vault name: %w", err)
	}
	symbol, err := callReadonly[string](ctx, v.rpc, ERC20ABI, vault, "symbol")
	if err != nil {
		return VaultInfo{}, fmt.Errorf("failed to get vault symbol: %w", err)
	}
	decimals, err := v.tokens.GetDecimals(ctx, vault)
	if err != nil {
		return VaultInfo{}, fmt.Errorf("failed to get vault decimals: %w", err)
	}
	assetDecimals, err := v.tokens.GetDecimals(ctx, asset)
	if err != nil {
		return VaultInfo{}, fmt.Errorf("failed to get asset decimals: %w", err)
	}
	totalAssets, err := callReadonly[*big.Int](ctx, v.rpc, ERC4626ABI, vault, "totalAssets")
	if err != nil {
		return VaultInfo{}, fmt.Errorf("failed to get total assets: %w", err)
	}

	return VaultInfo{
		Address:       vault,
		Asset:         asset,
		Name:          name,
		Symbol:        symbol,
		Decimals:      decimals,
		AssetDecimals: assetDecimals,
		TotalAssets:   totalAssets,
	}, nil
}

func (v *vaultService) Position(ctx context.Context, vault, owner ecommon.Address) (Position, error) {
	shares, err := v.tokens.GetERC20Balance(ctx, vault, owner)
	if err != nil {
		return Position{}, fmt.Errorf("failed to get shares: %w", err)
	}
	if shares.Sign() == 0 {
		return Position{Assets: big.NewInt(0), Shares: shares}, nil
	}

	assets, err := callReadonly[*big.Int](ctx, v.rpc, ERC4626ABI, vault, "convertToAssets", shares)
	if err != nil {
		return Position{}, fmt.Errorf("failed to convert shares: %w", err)
	}
	return Position{Assets: assets, Shares: shares}, nil
}

// DepositOperation deposits req.Amount assets into req.Vault for req.Owner.
func (v *vaultService) DepositOperation() transfer.Operation {
	return transfer.OperationFunc(v.runDeposit)
}

// RedeemOperation redeems req.Amount shares of req.Vault back to req.Owner.
func (v *vaultService) RedeemOperation() transfer.Operation {
	return transfer.OperationFunc(v.runRedeem)
}

func (v *vaultService) runDeposit(
	ctx context.Context,
	req transfer.Request,
	onSubmitted func(txHash string),
) (transfer.Outcome, error) {
	data, err := ERC4626ABI.Pack("deposit", req.Amount, req.Owner)
	if err != nil {
		return transfer.Outcome{}, fmt.Errorf("failed to pack deposit: %w", err)
	}

	receipt, err := v.submit(ctx, "deposit", req, data, onSubmitted)
	if err != nil {
		return transfer.Outcome{}, err
	}
	return depositOutcome(req.Vault, receipt.Logs), nil
}

func (v *vaultService) runRedeem(
	ctx context.Context,
	req transfer.Request,
	onSubmitted func(txHash string),
) (transfer.Outcome, error) {
	data, err := ERC4626ABI.Pack("redeem", req.Amount, req.Owner, req.Owner)
	if err != nil {
		return transfer.Outcome{}, fmt.Errorf("failed to pack redeem: %w", err)
	}

	// a queued redemption emits no Withdraw event, so its value is quoted up front
	quoted, err := callReadonly[*big.Int](ctx, v.rpc, ERC4626ABI, req.Vault, "previewRedeem", req.Amount)
	if err != nil {
		return transfer.Outcome{}, fmt.Errorf("failed to quote redeem: %w", err)
	}

	receipt, err := v.submit(ctx, "redeem", req, data, onSubmitted)
	if err != nil {
		return transfer.Outcome{}, err
	}
	return redeemOutcome(req.Vault, req.Amount, quoted, receipt.Logs), nil
}

func (v *vaultService) submit(
	ctx context.Context,
	op string,
	req transfer.Request,
	data []byte,
	onSubmitted func(txHash string),
) (*etypes.Receipt, error) {
	if req.Owner != v.signer.Address() {
		return nil, fmt.Errorf("owner %s is not the wallet identity", req.Owner.Hex())
	}

	hash, err := v.signer.SignAndBroadcast(ctx, req.Vault, nil, data)
	if err != nil {
		return nil, fmt.Errorf("failed to sign & broadcast %s: %w", op, err)
	}
	onSubmitted(hash.Hex())

	st, receipt, err := v.status.WaitMined(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to wait %s: hash=%s: %w", op, hash.Hex(), err)
	}
	if st != status.TxOnChainSuccess {
		return nil, fmt.Errorf("failed to land %s: %s, hash=%s", op, st, hash.Hex())
	}
	return receipt, nil
}
