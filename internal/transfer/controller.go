package transfer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Operation submits one transaction of a flow and blocks until it is confirmed
// or fails. onSubmitted must be called once the transaction hash is known.
type Operation interface {
	Run(ctx context.Context, req Request, onSubmitted func(txHash string)) (Outcome, error)
}

type OperationFunc func(ctx context.Context, req Request, onSubmitted func(txHash string)) (Outcome, error)

func (f OperationFunc) Run(ctx context.Context, req Request, onSubmitted func(txHash string)) (Outcome, error) {
	return f(ctx, req, onSubmitted)
}

// Observer receives every state change in order. It must not call back into the Controller.
type Observer func(req Request, st State)

type Config struct {
	// StepTimeout bounds how long a single step may wait for confirmation.
	// Zero waits indefinitely.
	StepTimeout time.Duration `envconfig:"TRANSFER_STEP_TIMEOUT" default:"0s"`
}

// Controller sequences approval and transfer operations for one flow at a time.
// A deposit runs approval then transfer; a redeem runs transfer only.
type Controller struct {
	logger   *logrus.Entry
	approve  Operation
	transfer Operation
	cfg      Config
	observer Observer

	mu       sync.Mutex
	state    State
	req      Request
	gen      uint64
	ctx      context.Context
	cancel   context.CancelFunc
	notifyMu sync.Mutex
	wg       sync.WaitGroup
}

// NewController builds a controller. approve may be nil for a redeem-only controller.
func NewController(
	logger *logrus.Entry,
	approve Operation,
	transfer Operation,
	cfg Config,
	observer Observer,
) *Controller {
	return &Controller{
		logger:   logger,
		approve:  approve,
		transfer: transfer,
		cfg:      cfg,
		observer: observer,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start begins a flow for req. It reports false and changes nothing when a flow
// is already in progress or succeeded, or when req is missing an owner, a vault
// or a positive amount.
func (c *Controller) Start(req Request) bool {
	c.mu.Lock()
	if c.state.Phase != PhaseIdle && c.state.Phase != PhaseFailed {
		c.mu.Unlock()
		return false
	}
	if !req.valid() || c.transfer == nil || (req.Kind == KindDeposit && c.approve == nil) {
		c.mu.Unlock()
		return false
	}

	c.gen++
	c.req = req.clone()
	c.ctx, c.cancel = context.WithCancel(context.Background())

	step := StepTransfer
	op := c.transfer
	if req.Kind == KindDeposit {
		step = StepApproval
		op = c.approve
	}
	c.state = State{Phase: PhaseSubmitting, Step: step}
	c.launch(c.ctx, c.gen, step, op)

	c.logger.WithFields(logrus.Fields{
		"kind":   req.Kind.String(),
		"vault":  req.Vault.Hex(),
		"amount": req.Amount.String(),
		"step":   step.String(),
	}).Info("flow started")
	c.notifyLocked()
	return true
}

// Reset returns the controller to PhaseIdle. An in-flight operation is not
// cancelled on chain; its signals are ignored from now on.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.gen++
	c.stopLocked()
	wasIdle := c.state.Phase == PhaseIdle
	c.state = State{}
	c.req = Request{}
	if wasIdle {
		c.mu.Unlock()
		return
	}
	c.logger.Info("flow reset")
	c.notifyLocked()
}

// Wait blocks until every launched operation goroutine has returned.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) stopLocked() {
	if c.cancel != nil {
		c.cancel()
	}
	c.ctx, c.cancel = nil, nil
}

// launch must be called with c.mu held.
func (c *Controller) launch(ctx context.Context, gen uint64, step Step, op Operation) {
	req := c.req.clone()
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		stepCtx := ctx
		if c.cfg.StepTimeout > 0 {
			var cancel context.CancelFunc
			stepCtx, cancel = context.WithTimeout(ctx, c.cfg.StepTimeout)
			defer cancel()
		}

		out, err := op.Run(stepCtx, req, func(txHash string) {
			c.submitted(gen, step, txHash)
		})
		if err != nil {
			c.failed(gen, step, err)
			return
		}
		c.confirmed(gen, step, out)
	}()
}

// current reports whether a signal belongs to the step currently in flight.
func (c *Controller) current(gen uint64, step Step) bool {
	return c.gen == gen && c.state.Phase == PhaseSubmitting && c.state.Step == step
}

func (c *Controller) submitted(gen uint64, step Step, txHash string) {
	c.mu.Lock()
	if !c.current(gen, step) {
		c.mu.Unlock()
		return
	}
	c.state.TxHash = txHash
	c.logger.WithFields(logrus.Fields{
		"step":   step.String(),
		"txHash": txHash,
	}).Info("tx submitted")
	c.notifyLocked()
}

func (c *Controller) confirmed(gen uint64, step Step, out Outcome) {
	c.mu.Lock()
	if !c.current(gen, step) {
		c.mu.Unlock()
		return
	}

	if step == StepApproval {
		c.state = State{Phase: PhaseSubmitting, Step: StepTransfer}
		c.launch(c.ctx, gen, StepTransfer, c.transfer)
		c.logger.Info("approval confirmed, submitting transfer")
		c.notifyLocked()
		return
	}

	c.state.Phase = PhaseSucceeded
	c.state.Outcome = out
	c.stopLocked()
	c.logger.WithFields(logrus.Fields{
		"txHash":     c.state.TxHash,
		"settlement": out.Settlement.String(),
	}).Info("flow succeeded")
	c.notifyLocked()
}

func (c *Controller) failed(gen uint64, step Step, cause error) {
	c.mu.Lock()
	if !c.current(gen, step) {
		c.mu.Unlock()
		return
	}
	if cause == nil {
		cause = fmt.Errorf("unknown error")
	}
	c.state.Phase = PhaseFailed
	c.state.Err = &StepError{Step: step, Cause: cause}
	c.stopLocked()
	c.logger.WithField("step", step.String()).WithError(cause).Error("flow failed")
	c.notifyLocked()
}

// notifyLocked is called with c.mu held and releases it. Observers are invoked
// under notifyMu so they see transitions in the order they happened.
func (c *Controller) notifyLocked() {
	if c.observer == nil {
		c.mu.Unlock()
		return
	}
	st := c.state
	req := c.req.clone()
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()
	c.observer(req, st)
}
