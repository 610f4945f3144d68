package metrics

import (
	"errors"
	"math/big"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/yo-safe/terminal/internal/transfer"
)

type recordingStatsd struct {
	names []string
}

func (r *recordingStatsd) Incr(name string, _ []string, _ float64) error {
	r.names = append(r.names, name)
	return nil
}

func TestTransferMetrics_Observer(t *testing.T) {
	sd := &recordingStatsd{}
	obs := NewTransferMetrics(sd).Observer()

	req := transfer.Request{Kind: transfer.KindDeposit, Amount: big.NewInt(1)}
	startedBefore := testutil.ToFloat64(transferFlowsStartedTotal.WithLabelValues("deposit"))
	successBefore := testutil.ToFloat64(transferFlowsCompletedTotal.WithLabelValues("deposit", "success"))
	submittedBefore := testutil.ToFloat64(transferTxSubmittedTotal.WithLabelValues("deposit", "approval"))
	instantBefore := testutil.ToFloat64(transferSettlementsTotal.WithLabelValues("deposit", "instant"))

	obs(req, transfer.State{Phase: transfer.PhaseSubmitting, Step: transfer.StepApproval})
	obs(req, transfer.State{Phase: transfer.PhaseSubmitting, Step: transfer.StepApproval, TxHash: "0x1"})
	obs(req, transfer.State{Phase: transfer.PhaseSubmitting, Step: transfer.StepTransfer})
	obs(req, transfer.State{
		Phase:   transfer.PhaseSucceeded,
		Step:    transfer.StepTransfer,
		TxHash:  "0x2",
		Outcome: transfer.Outcome{Settlement: transfer.SettlementInstant},
	})

	require.Equal(t, startedBefore+1, testutil.ToFloat64(transferFlowsStartedTotal.WithLabelValues("deposit")))
	require.Equal(t, successBefore+1, testutil.ToFloat64(transferFlowsCompletedTotal.WithLabelValues("deposit", "success")))
	require.Equal(t, submittedBefore+1, testutil.ToFloat64(transferTxSubmittedTotal.WithLabelValues("deposit", "approval")))
	require.Equal(t, instantBefore+1, testutil.ToFloat64(transferSettlementsTotal.WithLabelValues("deposit", "instant")))
	require.Equal(t, []string{"yosafe.transfer.started", "yosafe.transfer.completed"}, sd.names)
}

func TestTransferMetrics_RedeemFailure(t *testing.T) {
	obs := NewTransferMetrics(nil).Observer()

	req := transfer.Request{Kind: transfer.KindRedeem, Amount: big.NewInt(1)}
	failedBefore := testutil.ToFloat64(transferStepFailuresTotal.WithLabelValues("redeem", "transfer"))
	errorBefore := testutil.ToFloat64(transferFlowsCompletedTotal.WithLabelValues("redeem", "error"))

	obs(req, transfer.State{Phase: transfer.PhaseSubmitting, Step: transfer.StepTransfer})
	obs(req, transfer.State{
		Phase: transfer.PhaseFailed,
		Step:  transfer.StepTransfer,
		Err:   &transfer.StepError{Step: transfer.StepTransfer, Cause: errors.New("reverted")},
	})
	// reset notification carries no request
	obs(transfer.Request{}, transfer.State{})

	require.Equal(t, failedBefore+1, testutil.ToFloat64(transferStepFailuresTotal.WithLabelValues("redeem", "transfer")))
	require.Equal(t, errorBefore+1, testutil.ToFloat64(transferFlowsCompletedTotal.WithLabelValues("redeem", "error")))
}
