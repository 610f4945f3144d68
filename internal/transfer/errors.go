package transfer

import (
	"errors"
	"fmt"
)

var (
	ErrApprovalFailed = errors.New("approval failed")
	ErrTransferFailed = errors.New("transfer failed")
)

// StepError wraps the cause reported by a collaborator with the step that failed.
type StepError struct {
	Step  Step
	Cause error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Cause)
}

func (e *StepError) Unwrap() []error {
	return []error{e.kind(), e.Cause}
}

func (e *StepError) kind() error {
	if e.Step == StepApproval {
		return ErrApprovalFailed
	}
	return ErrTransferFailed
}
