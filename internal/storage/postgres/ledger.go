package postgres

import (
	"context"
	"fmt"
	"math/big"

	ecommon "github.com/ethereum/go-ethereum/common"

	"github.com/yo-safe/terminal/internal/performance"
	"github.com/yo-safe/terminal/internal/transfer"
)

// RecordTransfer stores e. Recording the same tx hash twice is a no-op.
func (r *Repo) RecordTransfer(ctx context.Context, e performance.Entry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO transfers (id, session_id, vault, owner, kind, assets, shares, tx_hash, settlement, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8, $9, $10)
		ON CONFLICT (tx_hash) DO NOTHING`,
		e.ID,
		e.SessionID,
		addrKey(e.Vault),
		addrKey(e.Owner),
		e.Kind.String(),
		bigText(e.Assets),
		bigText(e.Shares),
		e.TxHash,
		e.Settlement.String(),
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transfer: %w", err)
	}
	return nil
}

func (r *Repo) Totals(ctx context.Context, owner, vault ecommon.Address) (performance.Totals, error) {
	var deposited, withdrawn string
	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(assets) FILTER (WHERE kind = 'deposit'), 0)::text,
			COALESCE(SUM(assets) FILTER (WHERE kind = 'redeem'), 0)::text
		FROM transfers
		WHERE owner = $1 AND vault = $2`,
		addrKey(owner),
		addrKey(vault),
	).Scan(&deposited, &withdrawn)
	if err != nil {
		return performance.Totals{}, fmt.Errorf("failed to query totals: %w", err)
	}

	d, err := parseBig(deposited)
	if err != nil {
		return performance.Totals{}, err
	}
	w, err := parseBig(withdrawn)
	if err != nil {
		return performance.Totals{}, err
	}
	return performance.Totals{Deposited: d, Withdrawn: w}, nil
}

// ListTransfers returns the newest transfers of owner, at most limit.
func (r *Repo) ListTransfers(ctx context.Context, owner ecommon.Address, limit int) ([]performance.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, session_id, vault, owner, kind, assets::text, shares::text, tx_hash, settlement, created_at
		FROM transfers
		WHERE owner = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		addrKey(owner),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close()

	var res []performance.Entry
	for rows.Next() {
		var (
			e                     performance.Entry
			vault, own, kind, stl string
			assets, shares        string
		)
		err = rows.Scan(&e.ID, &e.SessionID, &vault, &own, &kind, &assets, &shares, &e.TxHash, &stl, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}

		e.Vault = ecommon.HexToAddress(vault)
		e.Owner = ecommon.HexToAddress(own)
		e.Kind, err = transfer.KindFromString(kind)
		if err != nil {
			return nil, err
		}
		e.Settlement = settlementFromString(stl)
		e.Assets, err = parseBig(assets)
		if err != nil {
			return nil, err
		}
		e.Shares, err = parseBig(shares)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transfers: %w", err)
	}
	return res, nil
}

func bigText(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseBig(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("failed to parse numeric: %q", s)
	}
	return v, nil
}

func settlementFromString(s string) transfer.Settlement {
	switch s {
	case transfer.SettlementInstant.String():
		return transfer.SettlementInstant
	case transfer.SettlementDeferred.String():
		return transfer.SettlementDeferred
	default:
		return transfer.SettlementUnknown
	}
}
