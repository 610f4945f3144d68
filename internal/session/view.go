package session

import (
	"errors"

	"github.com/yo-safe/terminal/internal/evm"
	"github.com/yo-safe/terminal/internal/transfer"
)

// View is the presentation of a flow state.
type View struct {
	Phase      transfer.Phase      `json:"phase"`
	Step       transfer.Step       `json:"step"`
	TxHash     string              `json:"txHash,omitempty"`
	TxURL      string              `json:"txUrl,omitempty"`
	Error      string              `json:"error,omitempty"`
	ErrorKind  string              `json:"errorKind,omitempty"`
	Settlement transfer.Settlement `json:"settlement,omitempty"`
	Assets     string              `json:"assets,omitempty"`
	Shares     string              `json:"shares,omitempty"`
}

func NewView(chain evm.Chain, st transfer.State) View {
	v := View{
		Phase:  st.Phase,
		Step:   st.Step,
		TxHash: st.TxHash,
		TxURL:  chain.TxURL(st.TxHash),
	}

	if st.Err != nil {
		v.Error = st.Err.Error()
		switch {
		case errors.Is(st.Err, transfer.ErrApprovalFailed):
			v.ErrorKind = "approval_failed"
		case errors.Is(st.Err, transfer.ErrTransferFailed):
			v.ErrorKind = "transfer_failed"
		}
	}

	if st.Phase == transfer.PhaseSucceeded {
		v.Settlement = st.Outcome.Settlement
		if st.Outcome.Assets != nil {
			v.Assets = st.Outcome.Assets.String()
		}
		if st.Outcome.Shares != nil {
			v.Shares = st.Outcome.Shares.String()
		}
	}
	return v
}
