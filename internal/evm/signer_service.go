package evm

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	ecommon "github.com/ethereum/go-ethereum/common"
	etypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// gas estimates are padded by this many percent
const gasLimitBufferPct = 20

type signerService struct {
	rpc     Backend
	chainID *big.Int
	key     *ecdsa.PrivateKey
	from    ecommon.Address

	// serializes nonce selection and broadcast for the single wallet
	mu sync.Mutex
}

// newSignerService builds a signer for hexKey. An empty key yields a signer
// without identity whose SignAndBroadcast always fails.
func newSignerService(rpc Backend, chainID *big.Int, hexKey string) (*signerService, error) {
	s := &signerService{
		rpc:     rpc,
		chainID: chainID,
	}
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return s, nil
	}

	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse wallet key: %w", err)
	}
	s.key = key
	s.from = crypto.PubkeyToAddress(key.PublicKey)
	return s, nil
}

// Address is the wallet identity, zero when no key is configured.
func (s *signerService) Address() ecommon.Address {
	return s.from
}

func (s *signerService) SignAndBroadcast(
	ctx context.Context,
	to ecommon.Address,
	value *big.Int,
	data []byte,
) (ecommon.Hash, error) {
	if s.key == nil {
		return ecommon.Hash{}, fmt.Errorf("no wallet key configured")
	}
	if value == nil {
		value = big.NewInt(0)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unsignedTx, err := s.buildTx(ctx, to, value, data)
	if err != nil {
		return ecommon.Hash{}, fmt.Errorf("failed to build tx: %w", err)
	}

	signedTx, err := etypes.SignTx(unsignedTx, etypes.LatestSignerForChainID(s.chainID), s.key)
	if err != nil {
		return ecommon.Hash{}, fmt.Errorf("failed to sign tx: %w", err)
	}

	err = s.rpc.SendTransaction(ctx, signedTx)
	if err != nil {
		return ecommon.Hash{}, fmt.Errorf("failed to broadcast tx: %w", err)
	}

	return signedTx.Hash(), nil
}

func (s *signerService) buildTx(
	ctx context.Context,
	to ecommon.Address,
	value *big.Int,
	data []byte,
) (*etypes.Transaction, error) {
	nonce, err := s.rpc.PendingNonceAt(ctx, s.from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	gas, err := s.rpc.EstimateGas(ctx, ethereum.CallMsg{
		From:  s.from,
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}
	gas += gas * gasLimitBufferPct / 100

	tipCap, err := s.rpc.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas tip cap: %w", err)
	}

	head, err := s.rpc.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest header: %w", err)
	}

	feeCap := new(big.Int).Set(tipCap)
	if head.BaseFee != nil {
		feeCap.Add(feeCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	}

	return etypes.NewTx(&etypes.DynamicFeeTx{
		ChainID:   s.chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      data,
	}), nil
}
