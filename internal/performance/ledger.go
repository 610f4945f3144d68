package performance

import (
	"math/big"
	"time"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/yo-safe/terminal/internal/transfer"
)

// Entry is one succeeded flow recorded in the transfer ledger. A deferred
// redeem carries the assets quoted when it was submitted.
type Entry struct {
	ID         uuid.UUID           `json:"id"`
	SessionID  uuid.UUID           `json:"sessionId"`
	Vault      ecommon.Address     `json:"vault"`
	Owner      ecommon.Address     `json:"owner"`
	Kind       transfer.Kind       `json:"kind"`
	Assets     *big.Int            `json:"assets"`
	Shares     *big.Int            `json:"shares"`
	TxHash     string              `json:"txHash"`
	Settlement transfer.Settlement `json:"settlement"`
	CreatedAt  time.Time           `json:"createdAt"`
}

// NewEntry builds the ledger entry for a succeeded flow. Deposits without a
// decoded outcome fall back to the requested amount.
func NewEntry(sessionID uuid.UUID, req transfer.Request, st transfer.State) Entry {
	e := Entry{
		ID:         uuid.New(),
		SessionID:  sessionID,
		Vault:      req.Vault,
		Owner:      req.Owner,
		Kind:       req.Kind,
		Assets:     orZero(st.Outcome.Assets),
		Shares:     orZero(st.Outcome.Shares),
		TxHash:     st.TxHash,
		Settlement: st.Outcome.Settlement,
		CreatedAt:  time.Now().UTC(),
	}
	if req.Kind == transfer.KindDeposit && st.Outcome.Assets == nil && req.Amount != nil {
		e.Assets = new(big.Int).Set(req.Amount)
	}
	if req.Kind == transfer.KindRedeem && st.Outcome.Shares == nil && req.Amount != nil {
		e.Shares = new(big.Int).Set(req.Amount)
	}
	return e
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
