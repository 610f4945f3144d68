package evm

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/yo-safe/terminal/internal/status"
)

// NewNetwork dials rpcUrl and wires the services for chain. walletKey may be
// empty, in which case the network is read-only.
func NewNetwork(
	ctx context.Context,
	chain Chain,
	rpcUrl string,
	walletKey string,
	pollInterval time.Duration,
) (*Network, error) {
	rpc, err := ethclient.DialContext(ctx, rpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	return NewNetworkWithBackend(ctx, chain, rpc, walletKey, pollInterval)
}

func NewNetworkWithBackend(
	ctx context.Context,
	chain Chain,
	rpc Backend,
	walletKey string,
	pollInterval time.Duration,
) (*Network, error) {
	evmID, err := chain.EvmID()
	if err != nil {
		return nil, fmt.Errorf("failed to get EVM ID: %w", err)
	}

	chainID, err := rpc.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}
	if chainID.Cmp(big.NewInt(evmID)) != 0 {
		return nil, fmt.Errorf("rpc chain id %s does not match %s (%d)", chainID, chain, evmID)
	}

	signer, err := newSignerService(rpc, chainID, walletKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create signer: %w", err)
	}

	st := status.NewStatus(rpc, pollInterval)
	tokens := newTokenService(rpc)

	return &Network{
		Chain:     chain,
		RPC:       rpc,
		Signer:    signer,
		Approve:   newApproveService(rpc, signer, st),
		Vault:     newVaultService(rpc, tokens, signer, st),
		Tokens:    tokens,
		Telemetry: newTelemetryService(rpc, tokens),
		Status:    st,
	}, nil
}
