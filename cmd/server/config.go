package main

import (
	"fmt"
	"time"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/kelseyhightower/envconfig"

	"github.com/yo-safe/terminal/internal/api"
	"github.com/yo-safe/terminal/internal/evm"
	"github.com/yo-safe/terminal/internal/logging"
	"github.com/yo-safe/terminal/internal/metrics"
	"github.com/yo-safe/terminal/internal/session"
	"github.com/yo-safe/terminal/internal/storage/postgres"
)

type config struct {
	Chain      string            `envconfig:"CHAIN" default:"base"`
	LogFormat  logging.LogFormat `envconfig:"LOG_FORMAT" default:"text"`
	HealthPort int               `envconfig:"HEALTH_PORT" default:"81"`
	Server     api.Config
	Postgres   postgres.Config
	Rpc        rpc
	Wallet     wallet
	Vaults     vaults
	Manager    manager
	Session    session.Config
	Metrics    metrics.Config
	DataDog    dataDog
}

type rpc struct {
	Base     rpcItem
	Ethereum rpcItem
	Arbitrum rpcItem
}

type rpcItem struct {
	URL string
}

type wallet struct {
	// hex private key; empty runs the terminal read-only
	Key          string        `envconfig:"WALLET_KEY"`
	PollInterval time.Duration `envconfig:"WALLET_POLL_INTERVAL" default:"2s"`
}

type vaults struct {
	Addresses       []string          `envconfig:"VAULT_ADDRESSES" required:"true"`
	APR             map[string]string `envconfig:"VAULT_APR"`
	RefreshInterval time.Duration     `envconfig:"VAULT_REFRESH_INTERVAL" default:"1m"`
}

type manager struct {
	Address      string        `envconfig:"MANAGER_ADDRESS" default:"0x8a5e35ed753122cE729c155f133755A9d3dE3DE6"`
	PollInterval time.Duration `envconfig:"MANAGER_POLL_INTERVAL" default:"15s"`
}

type dataDog struct {
	Host string
	Port string `default:"8125"`
}

func newConfig() (config, error) {
	var cfg config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return config{}, fmt.Errorf("failed to process env var: %w", err)
	}
	return cfg, nil
}

func (c config) chain() (evm.Chain, error) {
	return evm.ChainFromString(c.Chain)
}

// rpcURLs lists the configured endpoint per chain.
func (c config) rpcURLs() map[evm.Chain]string {
	res := make(map[evm.Chain]string)
	for ch, url := range map[evm.Chain]string{
		evm.Base:     c.Rpc.Base.URL,
		evm.Ethereum: c.Rpc.Ethereum.URL,
		evm.Arbitrum: c.Rpc.Arbitrum.URL,
	} {
		if url != "" {
			res[ch] = url
		}
	}
	return res
}

func (c config) vaultAddresses() ([]ecommon.Address, error) {
	res := make([]ecommon.Address, 0, len(c.Vaults.Addresses))
	for _, raw := range c.Vaults.Addresses {
		if !ecommon.IsHexAddress(raw) {
			return nil, fmt.Errorf("invalid vault address: %q", raw)
		}
		res = append(res, ecommon.HexToAddress(raw))
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("at least one vault address is required")
	}
	return res, nil
}

func (c config) managerAddress() (ecommon.Address, error) {
	if !ecommon.IsHexAddress(c.Manager.Address) {
		return ecommon.Address{}, fmt.Errorf("invalid manager address: %q", c.Manager.Address)
	}
	return ecommon.HexToAddress(c.Manager.Address), nil
}
