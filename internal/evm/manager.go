package evm

import (
	"fmt"

	"github.com/yo-safe/terminal/internal/status"
)

type Network struct {
	Chain     Chain
	RPC       Backend
	Signer    *signerService
	Approve   *approveService
	Vault     *vaultService
	Tokens    *tokenService
	Telemetry *telemetryService
	Status    *status.Status
}

type Manager struct {
	network map[Chain]*Network
}

func NewManager(network map[Chain]*Network) *Manager {
	return &Manager{
		network: network,
	}
}

func (m *Manager) Get(chain Chain) (*Network, error) {
	net, ok := m.network[chain]
	if !ok {
		return nil, fmt.Errorf("failed to get network for chain: %s", chain)
	}
	return net, nil
}

func (m *Manager) Chains() []Chain {
	var res []Chain
	for _, c := range SupportedChains() {
		if _, ok := m.network[c]; ok {
			res = append(res, c)
		}
	}
	return res
}
