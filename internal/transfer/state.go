package transfer

import (
	"math/big"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Step names the externally submitted operation a flow is waiting on,
// or the one that failed once the flow is in PhaseFailed.
type Step int

const (
	StepNone Step = iota
	StepApproval
	StepTransfer
)

func (s Step) String() string {
	switch s {
	case StepApproval:
		return "approval"
	case StepTransfer:
		return "transfer"
	default:
		return "none"
	}
}

func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Settlement int

const (
	SettlementUnknown Settlement = iota
	SettlementInstant
	SettlementDeferred
)

func (s Settlement) String() string {
	switch s {
	case SettlementInstant:
		return "instant"
	case SettlementDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

func (s Settlement) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome is what a collaborator reports once its transaction is confirmed.
// Assets and Shares are nil when the receipt did not carry them.
type Outcome struct {
	Settlement Settlement
	Assets     *big.Int
	Shares     *big.Int
}

// State is a snapshot of the flow owned by a Controller.
type State struct {
	Phase   Phase
	Step    Step
	TxHash  string
	Err     error
	Outcome Outcome
}

func (s State) Terminal() bool {
	return s.Phase == PhaseSucceeded || s.Phase == PhaseFailed
}
