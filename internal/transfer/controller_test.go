package transfer

import (
	"context"
	"errors"
	"io"
	"math/big"
	"sync"
	"testing"
	"time"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	vaultV1 = ecommon.HexToAddress("0x0000000f2eB9f69274678c76222B35eEc7588a65")
	usdc    = ecommon.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")
	owner   = ecommon.HexToAddress("0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1")
)

type result struct {
	out Outcome
	err error
}

type call struct {
	req       Request
	submitted func(string)
	done      chan result
}

// fakeOp hands every Run to the test, which resolves it through call.done.
type fakeOp struct {
	calls chan *call
}

func newFakeOp() *fakeOp {
	return &fakeOp{calls: make(chan *call, 4)}
}

func (f *fakeOp) Run(ctx context.Context, req Request, onSubmitted func(string)) (Outcome, error) {
	c := &call{req: req, submitted: onSubmitted, done: make(chan result, 1)}
	f.calls <- c
	select {
	case r := <-c.done:
		return r.out, r.err
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

func (f *fakeOp) next(t *testing.T) *call {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(time.Second):
		t.Fatal("operation was not invoked")
		return nil
	}
}

func (f *fakeOp) requireNoCall(t *testing.T) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("unexpected operation call for %s", c.req.Kind)
	case <-time.After(20 * time.Millisecond):
	}
}

type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) observe(_ Request, st State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, st)
}

func (r *recorder) snapshot() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func newTestController(approve, transfer Operation, cfg Config, rec *recorder) *Controller {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	var obs Observer
	if rec != nil {
		obs = rec.observe
	}
	return NewController(logrus.NewEntry(logger), approve, transfer, cfg, obs)
}

func depositRequest(amount int64) Request {
	return Request{
		Vault:  vaultV1,
		Token:  usdc,
		Owner:  owner,
		Amount: big.NewInt(amount),
		Kind:   KindDeposit,
	}
}

func redeemRequest(shares *big.Int) Request {
	return Request{
		Vault:  vaultV1,
		Owner:  owner,
		Amount: shares,
		Kind:   KindRedeem,
	}
}

func waitPhase(t *testing.T, c *Controller, phase Phase, step Step) {
	t.Helper()
	require.Eventually(t, func() bool {
		st := c.State()
		return st.Phase == phase && st.Step == step
	}, time.Second, time.Millisecond)
}

func TestController_DepositScenario(t *testing.T) {
	approve, deposit := newFakeOp(), newFakeOp()
	rec := &recorder{}
	c := newTestController(approve, deposit, Config{}, rec)

	require.True(t, c.Start(depositRequest(100_000000)))
	require.Equal(t, State{Phase: PhaseSubmitting, Step: StepApproval}, c.State())

	ac := approve.next(t)
	require.Equal(t, usdc, ac.req.Token)
	require.Equal(t, big.NewInt(100_000000), ac.req.Amount)
	deposit.requireNoCall(t)

	ac.done <- result{}
	dc := deposit.next(t)
	require.Equal(t, big.NewInt(100_000000), dc.req.Amount)
	waitPhase(t, c, PhaseSubmitting, StepTransfer)

	dc.submitted("0xabc")
	require.Equal(t, "0xabc", c.State().TxHash)
	require.Equal(t, PhaseSubmitting, c.State().Phase)

	dc.done <- result{}
	waitPhase(t, c, PhaseSucceeded, StepTransfer)
	require.Equal(t, "0xabc", c.State().TxHash)
	require.NoError(t, c.State().Err)

	c.Wait()

	var phases []Phase
	var steps []Step
	for _, st := range rec.snapshot() {
		phases = append(phases, st.Phase)
		steps = append(steps, st.Step)
	}
	require.Equal(t, []Phase{PhaseSubmitting, PhaseSubmitting, PhaseSubmitting, PhaseSucceeded}, phases)
	require.Equal(t, []Step{StepApproval, StepTransfer, StepTransfer, StepTransfer}, steps)
}

func TestController_RedeemFailureScenario(t *testing.T) {
	approve, redeem := newFakeOp(), newFakeOp()
	c := newTestController(approve, redeem, Config{}, nil)

	shares, ok := new(big.Int).SetString("50000000000000000000", 10)
	require.True(t, ok)

	require.True(t, c.Start(redeemRequest(shares)))
	require.Equal(t, State{Phase: PhaseSubmitting, Step: StepTransfer}, c.State())

	rc := redeem.next(t)
	require.Equal(t, 0, rc.req.Amount.Cmp(shares))
	approve.requireNoCall(t)

	cause := errors.New("insufficient liquidity")
	rc.done <- result{err: cause}
	waitPhase(t, c, PhaseFailed, StepTransfer)

	st := c.State()
	require.ErrorIs(t, st.Err, ErrTransferFailed)
	require.ErrorIs(t, st.Err, cause)
	require.NotErrorIs(t, st.Err, ErrApprovalFailed)
	c.Wait()
}

func TestController_RedeemOnlyController(t *testing.T) {
	redeem := newFakeOp()
	c := newTestController(nil, redeem, Config{}, nil)

	require.False(t, c.Start(depositRequest(1)))
	require.Equal(t, PhaseIdle, c.State().Phase)

	require.True(t, c.Start(redeemRequest(big.NewInt(7))))
	rc := redeem.next(t)
	rc.submitted("0xdef")
	rc.done <- result{out: Outcome{Settlement: SettlementDeferred}}
	waitPhase(t, c, PhaseSucceeded, StepTransfer)
	require.Equal(t, SettlementDeferred, c.State().Outcome.Settlement)
	c.Wait()
}

func TestController_ApprovalFailureStopsFlow(t *testing.T) {
	approve, deposit := newFakeOp(), newFakeOp()
	c := newTestController(approve, deposit, Config{}, nil)

	require.True(t, c.Start(depositRequest(5)))
	ac := approve.next(t)
	ac.submitted("0xapprove")
	ac.done <- result{err: errors.New("user rejected")}

	waitPhase(t, c, PhaseFailed, StepApproval)
	require.ErrorIs(t, c.State().Err, ErrApprovalFailed)
	deposit.requireNoCall(t)
	c.Wait()
}

func TestController_StartIgnoredWhileBusy(t *testing.T) {
	approve, deposit := newFakeOp(), newFakeOp()
	c := newTestController(approve, deposit, Config{}, nil)

	require.True(t, c.Start(depositRequest(10)))
	ac := approve.next(t)
	ac.submitted("0x01")
	before := c.State()

	require.False(t, c.Start(depositRequest(20)))
	require.False(t, c.Start(redeemRequest(big.NewInt(20))))
	require.Equal(t, before, c.State())
	approve.requireNoCall(t)

	ac.done <- result{}
	dc := deposit.next(t)
	require.Equal(t, big.NewInt(10), dc.req.Amount)
	dc.done <- result{}
	waitPhase(t, c, PhaseSucceeded, StepTransfer)

	require.False(t, c.Start(depositRequest(30)))
	require.Equal(t, PhaseSucceeded, c.State().Phase)
	c.Wait()
}

func TestController_RestartAfterFailureRunsApprovalAgain(t *testing.T) {
	approve, deposit := newFakeOp(), newFakeOp()
	c := newTestController(approve, deposit, Config{}, nil)

	require.True(t, c.Start(depositRequest(10)))
	approve.next(t).done <- result{}
	deposit.next(t).done <- result{err: errors.New("reverted")}
	waitPhase(t, c, PhaseFailed, StepTransfer)

	require.True(t, c.Start(depositRequest(10)))
	require.Equal(t, State{Phase: PhaseSubmitting, Step: StepApproval}, c.State())
	approve.next(t).done <- result{}
	deposit.next(t).done <- result{}
	waitPhase(t, c, PhaseSucceeded, StepTransfer)
	c.Wait()
}

func TestController_Reset(t *testing.T) {
	tests := []struct {
		name  string
		drive func(t *testing.T, c *Controller, approve, deposit *fakeOp)
	}{
		{
			name:  "idle",
			drive: func(t *testing.T, c *Controller, approve, deposit *fakeOp) {},
		},
		{
			name: "approving",
			drive: func(t *testing.T, c *Controller, approve, deposit *fakeOp) {
				require.True(t, c.Start(depositRequest(1)))
				approve.next(t).submitted("0xaa")
			},
		},
		{
			name: "transferring",
			drive: func(t *testing.T, c *Controller, approve, deposit *fakeOp) {
				require.True(t, c.Start(depositRequest(1)))
				approve.next(t).done <- result{}
				deposit.next(t).submitted("0xbb")
				require.Eventually(t, func() bool { return c.State().TxHash == "0xbb" }, time.Second, time.Millisecond)
			},
		},
		{
			name: "succeeded",
			drive: func(t *testing.T, c *Controller, approve, deposit *fakeOp) {
				require.True(t, c.Start(depositRequest(1)))
				approve.next(t).done <- result{}
				dc := deposit.next(t)
				dc.submitted("0xcc")
				dc.done <- result{}
				waitPhase(t, c, PhaseSucceeded, StepTransfer)
			},
		},
		{
			name: "failed",
			drive: func(t *testing.T, c *Controller, approve, deposit *fakeOp) {
				require.True(t, c.Start(depositRequest(1)))
				approve.next(t).done <- result{err: errors.New("boom")}
				waitPhase(t, c, PhaseFailed, StepApproval)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			approve, deposit := newFakeOp(), newFakeOp()
			c := newTestController(approve, deposit, Config{}, nil)

			tt.drive(t, c, approve, deposit)
			c.Reset()

			require.Equal(t, State{}, c.State())
			c.Wait()
			require.Equal(t, State{}, c.State())
		})
	}
}

func TestController_ResetAbandonsInFlightSignals(t *testing.T) {
	approve, deposit := newFakeOp(), newFakeOp()
	c := newTestController(approve, deposit, Config{}, nil)

	require.True(t, c.Start(depositRequest(1)))
	stale := approve.next(t)
	c.Reset()

	stale.submitted("0xlate")
	require.Equal(t, State{}, c.State())

	require.True(t, c.Start(redeemRequest(big.NewInt(3))))
	rc := deposit.next(t)
	stale.submitted("0xlate")
	require.Empty(t, c.State().TxHash)

	rc.done <- result{}
	waitPhase(t, c, PhaseSucceeded, StepTransfer)
	c.Wait()
	approve.requireNoCall(t)
}

func TestController_StartRejectsInvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{name: "zero amount", req: Request{Vault: vaultV1, Owner: owner, Amount: big.NewInt(0), Kind: KindDeposit}},
		{name: "negative amount", req: Request{Vault: vaultV1, Owner: owner, Amount: big.NewInt(-1), Kind: KindRedeem}},
		{name: "nil amount", req: Request{Vault: vaultV1, Owner: owner, Kind: KindDeposit}},
		{name: "no owner", req: Request{Vault: vaultV1, Amount: big.NewInt(1), Kind: KindDeposit}},
		{name: "no vault", req: Request{Owner: owner, Amount: big.NewInt(1), Kind: KindDeposit}},
		{name: "no kind", req: Request{Vault: vaultV1, Owner: owner, Amount: big.NewInt(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			approve, deposit := newFakeOp(), newFakeOp()
			c := newTestController(approve, deposit, Config{}, nil)

			require.False(t, c.Start(tt.req))
			require.Equal(t, State{}, c.State())
			approve.requireNoCall(t)
			deposit.requireNoCall(t)
		})
	}
}

func TestController_RequestIsCopied(t *testing.T) {
	approve, deposit := newFakeOp(), newFakeOp()
	c := newTestController(approve, deposit, Config{}, nil)

	req := depositRequest(42)
	require.True(t, c.Start(req))
	req.Amount.SetInt64(1)

	approve.next(t).done <- result{}
	dc := deposit.next(t)
	require.Equal(t, big.NewInt(42), dc.req.Amount)
	dc.done <- result{}
	c.Wait()
}

func TestController_StepTimeout(t *testing.T) {
	approve, deposit := newFakeOp(), newFakeOp()
	c := newTestController(approve, deposit, Config{StepTimeout: 30 * time.Millisecond}, nil)

	require.True(t, c.Start(depositRequest(1)))
	approve.next(t)

	waitPhase(t, c, PhaseFailed, StepApproval)
	require.ErrorIs(t, c.State().Err, context.DeadlineExceeded)
	require.ErrorIs(t, c.State().Err, ErrApprovalFailed)
	c.Wait()
}

func TestStepError(t *testing.T) {
	cause := errors.New("nonce too low")
	err := &StepError{Step: StepTransfer, Cause: cause}

	require.Equal(t, "transfer failed: nonce too low", err.Error())
	require.ErrorIs(t, err, ErrTransferFailed)
	require.ErrorIs(t, err, cause)
}
