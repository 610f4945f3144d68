package transfer

import (
	"fmt"
	"math/big"

	ecommon "github.com/ethereum/go-ethereum/common"
)

type Kind int

const (
	KindDeposit Kind = iota + 1
	KindRedeem
)

func (k Kind) String() string {
	switch k {
	case KindDeposit:
		return "deposit"
	case KindRedeem:
		return "redeem"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func KindFromString(s string) (Kind, error) {
	switch s {
	case "deposit":
		return KindDeposit, nil
	case "redeem":
		return KindRedeem, nil
	default:
		return 0, fmt.Errorf("unknown transfer kind: %q", s)
	}
}

// Request describes one intent to move capital into or out of a vault.
// Amount is in token base units for deposits and in share base units for redeems.
type Request struct {
	Vault  ecommon.Address
	Token  ecommon.Address
	Owner  ecommon.Address
	Amount *big.Int
	Kind   Kind
}

func (r Request) clone() Request {
	if r.Amount != nil {
		r.Amount = new(big.Int).Set(r.Amount)
	}
	return r
}

func (r Request) valid() bool {
	var zero ecommon.Address
	if r.Owner == zero || r.Vault == zero {
		return false
	}
	if r.Amount == nil || r.Amount.Sign() <= 0 {
		return false
	}
	return r.Kind == KindDeposit || r.Kind == KindRedeem
}
