package vault

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yo-safe/terminal/internal/evm"
	"github.com/yo-safe/terminal/internal/util"
)

// defaultAPR is reported as the average when no vault is loaded.
var defaultAPR = decimal.RequireFromString("14.2")

type Vault struct {
	Address       ecommon.Address `json:"address"`
	Chain         evm.Chain       `json:"chain"`
	Name          string          `json:"name"`
	Symbol        string          `json:"symbol"`
	Asset         ecommon.Address `json:"asset"`
	AssetDecimals uint8           `json:"assetDecimals"`
	ShareDecimals uint8           `json:"shareDecimals"`
	TotalAssets   *big.Int        `json:"totalAssets"`
	TVL           decimal.Decimal `json:"tvl"`
	APR           decimal.Decimal `json:"apr"`
}

type ProtocolStats struct {
	TotalTVL   decimal.Decimal `json:"totalTvl"`
	AvgAPR     string          `json:"avgApr"`
	VaultCount int             `json:"vaultCount"`
}

type infoReader interface {
	Info(ctx context.Context, vault ecommon.Address) (evm.VaultInfo, error)
}

// Registry holds the configured vaults and their latest on-chain metadata.
// The first configured vault is the main vault.
type Registry struct {
	logger    *logrus.Entry
	chain     evm.Chain
	reader    infoReader
	addresses []ecommon.Address
	aprs      map[ecommon.Address]decimal.Decimal

	mu       sync.RWMutex
	vaults   []Vault
	loadedAt time.Time
}

func NewRegistry(
	logger *logrus.Logger,
	chain evm.Chain,
	reader infoReader,
	addresses []ecommon.Address,
	aprs map[ecommon.Address]decimal.Decimal,
) *Registry {
	return &Registry{
		logger:    logger.WithField("pkg", "vault.Registry"),
		chain:     chain,
		reader:    reader,
		addresses: addresses,
		aprs:      aprs,
	}
}

// ParseAPRs converts an address -> percent map from configuration.
func ParseAPRs(raw map[string]string) (map[ecommon.Address]decimal.Decimal, error) {
	res := make(map[ecommon.Address]decimal.Decimal, len(raw))
	for addr, apr := range raw {
		if !ecommon.IsHexAddress(addr) {
			return nil, fmt.Errorf("invalid vault address: %q", addr)
		}
		d, err := decimal.NewFromString(strings.TrimSpace(apr))
		if err != nil {
			return nil, fmt.Errorf("invalid apr for %s: %w", addr, err)
		}
		res[ecommon.HexToAddress(addr)] = d
	}
	return res, nil
}

// Refresh reloads metadata for every configured vault. On error the previous
// snapshot is kept.
func (r *Registry) Refresh(ctx context.Context) error {
	loaded := make([]Vault, len(r.addresses))

	g, gctx := errgroup.WithContext(ctx)
	for i, addr := range r.addresses {
		i, addr := i, addr
		g.Go(func() error {
			info, err := r.reader.Info(gctx, addr)
			if err != nil {
				return fmt.Errorf("failed to load vault %s: %w", addr.Hex(), err)
			}
			loaded[i] = Vault{
				Address:       addr,
				Chain:         r.chain,
				Name:          info.Name,
				Symbol:        info.Symbol,
				Asset:         info.Asset,
				AssetDecimals: info.AssetDecimals,
				ShareDecimals: info.Decimals,
				TotalAssets:   info.TotalAssets,
				TVL:           util.ToDecimal(info.TotalAssets, int(info.AssetDecimals)),
				APR:           r.aprs[addr],
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	r.mu.Lock()
	r.vaults = loaded
	r.loadedAt = time.Now()
	r.mu.Unlock()

	r.logger.WithField("count", len(loaded)).Debug("vault registry refreshed")
	return nil
}

// Run refreshes the registry every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil {
				r.logger.WithError(err).Warn("failed to refresh vault registry")
			}
		}
	}
}

func (r *Registry) List() []Vault {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Vault(nil), r.vaults...)
}

func (r *Registry) Get(addr ecommon.Address) (Vault, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.vaults {
		if v.Address == addr {
			return v, true
		}
	}
	return Vault{}, false
}

func (r *Registry) Main() (Vault, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.vaults) == 0 {
		return Vault{}, false
	}
	return r.vaults[0], true
}

func (r *Registry) LoadedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadedAt
}

func (r *Registry) Stats() ProtocolStats {
	return ComputeStats(r.List())
}

func ComputeStats(vaults []Vault) ProtocolStats {
	if len(vaults) == 0 {
		return ProtocolStats{
			TotalTVL: decimal.Zero,
			AvgAPR:   defaultAPR.StringFixed(2),
		}
	}

	tvl := decimal.Zero
	apr := decimal.Zero
	for _, v := range vaults {
		tvl = tvl.Add(v.TVL)
		apr = apr.Add(v.APR)
	}
	return ProtocolStats{
		TotalTVL:   tvl,
		AvgAPR:     apr.Div(decimal.NewFromInt(int64(len(vaults)))).StringFixed(2),
		VaultCount: len(vaults),
	}
}
