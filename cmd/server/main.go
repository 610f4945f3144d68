package main

import (
	"context"
	"net"

	"github.com/DataDog/datadog-go/statsd"
	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yo-safe/terminal/internal/activity"
	"github.com/yo-safe/terminal/internal/api"
	"github.com/yo-safe/terminal/internal/evm"
	"github.com/yo-safe/terminal/internal/graceful"
	"github.com/yo-safe/terminal/internal/health"
	"github.com/yo-safe/terminal/internal/logging"
	"github.com/yo-safe/terminal/internal/metrics"
	"github.com/yo-safe/terminal/internal/performance"
	"github.com/yo-safe/terminal/internal/session"
	"github.com/yo-safe/terminal/internal/storage/postgres"
	"github.com/yo-safe/terminal/internal/uistate"
	"github.com/yo-safe/terminal/internal/vault"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := newConfig()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logger := logging.NewLogger(cfg.LogFormat)

	metricsServer := metrics.StartMetricsServer(
		cfg.Metrics,
		[]string{metrics.ServiceHTTP, metrics.ServiceTransfer, metrics.ServiceActivity},
		logger,
	)
	defer func() {
		if metricsServer != nil {
			if er := metricsServer.Stop(context.Background()); er != nil {
				logger.Errorf("failed to stop metrics server: %v", er)
			}
		}
	}()

	var sd metrics.StatsdClient
	if cfg.DataDog.Host != "" {
		sdClient, er := statsd.New(net.JoinHostPort(cfg.DataDog.Host, cfg.DataDog.Port))
		if er != nil {
			logger.Fatalf("failed to initialize StatsD client: %v", er)
		}
		defer func() {
			_ = sdClient.Close()
		}()
		sd = sdClient
	}

	chain, err := cfg.chain()
	if err != nil {
		logger.Fatalf("invalid CHAIN: %v", err)
	}

	networks := make(map[evm.Chain]*evm.Network)
	for c, url := range cfg.rpcURLs() {
		network, er := evm.NewNetwork(ctx, c, url, cfg.Wallet.Key, cfg.Wallet.PollInterval)
		if er != nil {
			logger.Fatalf("failed to initialize %s network: %v", c.String(), er)
		}
		networks[c] = network
		logger.Infof("initialized %s network", c.String())
	}

	network, err := evm.NewManager(networks).Get(chain)
	if err != nil {
		logger.Fatalf("no RPC configured for active chain: %v", err)
	}

	wallet := network.Signer.Address()
	if wallet == (ecommon.Address{}) {
		logger.Warn("WALLET_KEY is not set, transfers are disabled")
	} else {
		logger.WithField("wallet", wallet.Hex()).Info("wallet identity loaded")
	}

	if er := vault.VerifyTokens(ctx, network.Tokens); er != nil {
		logger.Warnf("token table check failed: %v", er)
	}

	repo, err := postgres.NewRepo(ctx, logger, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatalf("failed to initialize Postgres: %v", err)
	}
	defer repo.Close()

	vaultAddresses, err := cfg.vaultAddresses()
	if err != nil {
		logger.Fatalf("invalid VAULT_ADDRESSES: %v", err)
	}
	aprs, err := vault.ParseAPRs(cfg.Vaults.APR)
	if err != nil {
		logger.Fatalf("invalid VAULT_APR: %v", err)
	}

	registry := vault.NewRegistry(logger, chain, network.Vault, vaultAddresses, aprs)
	if er := registry.Refresh(ctx); er != nil {
		logger.Warnf("initial vault load failed, retrying in background: %v", er)
	}

	managerAddress, err := cfg.managerAddress()
	if err != nil {
		logger.Fatalf("invalid MANAGER_ADDRESS: %v", err)
	}
	feed := activity.NewFeed()
	watcher := activity.NewWatcher(logger, network.RPC, managerAddress, feed, metrics.NewActivityMetrics())

	sessions := session.NewManager(
		logger,
		session.Operations{
			Approve: network.Approve,
			Deposit: network.Vault.DepositOperation(),
			Redeem:  network.Vault.RedeemOperation(),
		},
		wallet,
		cfg.Session,
		repo,
		metrics.NewTransferMetrics(sd),
	)
	defer sessions.Shutdown()

	srv := api.NewServer(
		cfg.Server,
		api.Deps{
			Chain:       chain,
			Wallet:      wallet,
			Vaults:      registry,
			Positions:   network.Vault,
			Performance: performance.NewService(repo, network.Vault),
			Sessions:    sessions,
			Feed:        feed,
			Telemetry:   network.Telemetry,
			Balances:    network.Tokens,
			UIState:     uistate.NewService(repo),
		},
		append(api.DefaultMiddlewares(logger), metrics.HTTPMiddleware()),
		logger,
	)

	graceful.CancelOnSignal(ctx, cancel, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		return health.New(cfg.HealthPort).Start(gctx, logger)
	})
	g.Go(func() error {
		registry.Run(gctx, cfg.Vaults.RefreshInterval)
		return nil
	})
	g.Go(func() error {
		watcher.Run(gctx, cfg.Manager.PollInterval)
		return nil
	})

	err = g.Wait()
	if err != nil {
		logger.Errorf("server stopped: %v", err)
	}
}
