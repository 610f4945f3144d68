package status

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	ecommon "github.com/ethereum/go-ethereum/common"
	etypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

type fakeReceipts struct {
	pendingPolls int32
	polls        atomic.Int32
	receipt      *etypes.Receipt
	err          error
}

func (f *fakeReceipts) TransactionReceipt(_ context.Context, _ ecommon.Hash) (*etypes.Receipt, error) {
	n := f.polls.Add(1)
	if n <= f.pendingPolls {
		return nil, ethereum.NotFound
	}
	return f.receipt, f.err
}

func TestWaitMined(t *testing.T) {
	hash := ecommon.HexToHash("0xabc")

	t.Run("success after pending polls", func(t *testing.T) {
		rpc := &fakeReceipts{
			pendingPolls: 2,
			receipt:      &etypes.Receipt{Status: etypes.ReceiptStatusSuccessful},
		}
		st, receipt, err := NewStatus(rpc, time.Millisecond).WaitMined(context.Background(), hash)
		require.NoError(t, err)
		require.Equal(t, TxOnChainSuccess, st)
		require.NotNil(t, receipt)
		require.Equal(t, int32(3), rpc.polls.Load())
	})

	t.Run("reverted", func(t *testing.T) {
		rpc := &fakeReceipts{receipt: &etypes.Receipt{Status: etypes.ReceiptStatusFailed}}
		st, _, err := NewStatus(rpc, time.Millisecond).WaitMined(context.Background(), hash)
		require.NoError(t, err)
		require.Equal(t, TxOnChainFail, st)
	})

	t.Run("rpc error", func(t *testing.T) {
		rpc := &fakeReceipts{err: errors.New("connection refused")}
		_, _, err := NewStatus(rpc, time.Millisecond).WaitMined(context.Background(), hash)
		require.ErrorContains(t, err, "connection refused")
	})

	t.Run("context cancelled while pending", func(t *testing.T) {
		rpc := &fakeReceipts{pendingPolls: 1 << 30}
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		st, _, err := NewStatus(rpc, time.Millisecond).WaitMined(ctx, hash)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.Equal(t, TxOnChainPending, st)
	})
}
