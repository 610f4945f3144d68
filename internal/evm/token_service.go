package evm

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	ecommon "github.com/ethereum/go-ethereum/common"
)

// tokenService reads ERC-20 state. The zero address stands for the native coin.
type tokenService struct {
	rpc Backend

	// decimals never change for a deployed token
	mu       sync.RWMutex
	decimals map[ecommon.Address]uint8
}

func newTokenService(rpc Backend) *tokenService {
	return &tokenService{
		rpc:      rpc,
		decimals: make(map[ecommon.Address]uint8),
	}
}

func (s *tokenService) NativeBalance(ctx context.Context, owner ecommon.Address) (*big.Int, error) {
	balance, err := s.rpc.BalanceAt(ctx, owner, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get native balance of %s: %w", owner.Hex(), err)
	}
	return balance, nil
}

// GetERC20Balance returns owner's balance of token in base units. Vault
// shares are ERC-20 balances of the vault itself.
func (s *tokenService) GetERC20Balance(ctx context.Context, token, owner ecommon.Address) (*big.Int, error) {
	if token == (ecommon.Address{}) {
		return s.NativeBalance(ctx, owner)
	}

	balance, err := callReadonly[*big.Int](ctx, s.rpc, ERC20ABI, token, "balanceOf", owner)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s balance of %s: %w", token.Hex(), owner.Hex(), err)
	}
	return balance, nil
}

func (s *tokenService) GetDecimals(ctx context.Context, token ecommon.Address) (uint8, error) {
	if token == (ecommon.Address{}) {
		return 18, nil
	}

	s.mu.RLock()
	d, ok := s.decimals[token]
	s.mu.RUnlock()
	if ok {
		return d, nil
	}

	d, err := callReadonly[uint8](ctx, s.rpc, ERC20ABI, token, "decimals")
	if err != nil {
		return 0, fmt.Errorf("failed to get decimals of %s: %w", token.Hex(), err)
	}

	s.mu.Lock()
	s.decimals[token] = d
	s.mu.Unlock()
	return d, nil
}
