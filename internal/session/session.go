package session

import (
	"fmt"
	"math/big"
	"time"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/yo-safe/terminal/internal/transfer"
)

type Flow string

const (
	FlowDeposit  Flow = "deposit"
	FlowWithdraw Flow = "withdraw"
)

func FlowFromString(s string) (Flow, error) {
	switch Flow(s) {
	case FlowDeposit, FlowWithdraw:
		return Flow(s), nil
	default:
		return "", fmt.Errorf("unknown flow: %q", s)
	}
}

// Session binds one deposit and one withdraw controller to a wallet identity.
// The two flows are independent of each other.
type Session struct {
	ID        uuid.UUID
	Owner     ecommon.Address
	CreatedAt time.Time

	deposit  *transfer.Controller
	withdraw *transfer.Controller
}

func (s *Session) Controller(flow Flow) *transfer.Controller {
	if flow == FlowDeposit {
		return s.deposit
	}
	return s.withdraw
}

// Deposit starts approve then deposit of amount token base units into vault.
func (s *Session) Deposit(vault, token ecommon.Address, amount *big.Int) bool {
	return s.deposit.Start(transfer.Request{
		Vault:  vault,
		Token:  token,
		Owner:  s.Owner,
		Amount: amount,
		Kind:   transfer.KindDeposit,
	})
}

// Redeem starts a single-step redeem of shares from vault.
func (s *Session) Redeem(vault ecommon.Address, shares *big.Int) bool {
	return s.withdraw.Start(transfer.Request{
		Vault:  vault,
		Owner:  s.Owner,
		Amount: shares,
		Kind:   transfer.KindRedeem,
	})
}

func (s *Session) Reset(flow Flow) {
	s.Controller(flow).Reset()
}

func (s *Session) close() {
	s.deposit.Reset()
	s.withdraw.Reset()
}

func (s *Session) wait() {
	s.deposit.Wait()
	s.withdraw.Wait()
}
