package evm

import (
	"fmt"
	"strings"
)

type Chain string

const (
	Base     Chain = "base"
	Ethereum Chain = "ethereum"
	Arbitrum Chain = "arbitrum"
)

// SupportedChains returns every chain the terminal can connect to.
func SupportedChains() []Chain {
	return []Chain{Base, Ethereum, Arbitrum}
}

func ChainFromString(s string) (Chain, error) {
	c := Chain(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case Base, Ethereum, Arbitrum:
		return c, nil
	default:
		return "", fmt.Errorf("unsupported chain: %q", s)
	}
}

func (c Chain) String() string {
	return string(c)
}

// EvmID is the EIP-155 chain id.
func (c Chain) EvmID() (int64, error) {
	switch c {
	case Base:
		return 8453, nil
	case Ethereum:
		return 1, nil
	case Arbitrum:
		return 42161, nil
	default:
		return 0, fmt.Errorf("unsupported chain: %q", string(c))
	}
}

// TxURL links a transaction hash to the chain's block explorer.
func (c Chain) TxURL(txHash string) string {
	if txHash == "" {
		return ""
	}
	switch c {
	case Base:
		return "https://basescan.org/tx/" + txHash
	case Ethereum:
		return "https://etherscan.io/tx/" + txHash
	case Arbitrum:
		return "https://arbiscan.io/tx/" + txHash
	default:
		return ""
	}
}
