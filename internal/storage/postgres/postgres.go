package postgres

import (
	"context"
	"fmt"
	"strings"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DSN string `envconfig:"POSTGRES_DSN" required:"true"`
}

type Repo struct {
	pool   *pgxpool.Pool
	logger *logrus.Entry
}

// NewRepo connects to dsn and applies pending migrations.
func NewRepo(ctx context.Context, logger *logrus.Logger, dsn string) (*Repo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	err = RunMigrations(pool)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("postgres migrations applied")
	return &Repo{
		pool:   pool,
		logger: logger.WithField("pkg", "postgres.Repo"),
	}, nil
}

func (r *Repo) Close() {
	r.pool.Close()
}

func addrKey(a ecommon.Address) string {
	return strings.ToLower(a.Hex())
}
