package vault

import (
	"context"
	"fmt"

	ecommon "github.com/ethereum/go-ethereum/common"
)

type Token struct {
	Symbol   string          `json:"symbol"`
	Address  ecommon.Address `json:"address"`
	Decimals int             `json:"decimals"`
	Logo     string          `json:"logo"`
}

// SupportedTokens lists the assets the terminal accepts for deposits.
var SupportedTokens = []Token{
	{
		Symbol:   "USDC",
		Address:  ecommon.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"),
		Decimals: 6,
		Logo:     "https://raw.githubusercontent.com/trustwallet/assets/master/blockchains/ethereum/assets/0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48/logo.png",
	},
}

func LookupToken(addr ecommon.Address) (Token, bool) {
	for _, t := range SupportedTokens {
		if t.Address == addr {
			return t, true
		}
	}
	return Token{}, false
}

func LookupTokenBySymbol(symbol string) (Token, bool) {
	for _, t := range SupportedTokens {
		if t.Symbol == symbol {
			return t, true
		}
	}
	return Token{}, false
}

type decimalsReader interface {
	GetDecimals(ctx context.Context, tokenAddress ecommon.Address) (uint8, error)
}

// VerifyTokens checks the token table against on-chain decimals.
func VerifyTokens(ctx context.Context, reader decimalsReader) error {
	for _, t := range SupportedTokens {
		d, err := reader.GetDecimals(ctx, t.Address)
		if err != nil {
			return fmt.Errorf("failed to get decimals for %s: %w", t.Symbol, err)
		}
		if int(d) != t.Decimals {
			return fmt.Errorf("%s decimals mismatch: table %d, chain %d", t.Symbol, t.Decimals, d)
		}
	}
	return nil
}
