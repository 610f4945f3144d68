package postgres

import (
	"context"
	"errors"
	"fmt"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"

	"github.com/yo-safe/terminal/internal/uistate"
)

func (r *Repo) GetUIState(ctx context.Context, owner ecommon.Address) (uistate.State, error) {
	var (
		st    uistate.State
		theme string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT theme, active_tab, profile_open, updated_at
		FROM ui_state
		WHERE owner = $1`,
		addrKey(owner),
	).Scan(&theme, &st.ActiveTab, &st.ProfileOpen, &st.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return uistate.State{}, uistate.ErrNotFound
	}
	if err != nil {
		return uistate.State{}, fmt.Errorf("failed to query ui state: %w", err)
	}
	st.Theme = uistate.Theme(theme)
	return st, nil
}

func (r *Repo) PutUIState(ctx context.Context, owner ecommon.Address, st uistate.State) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO ui_state (owner, theme, active_tab, profile_open, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner) DO UPDATE SET
			theme = EXCLUDED.theme,
			active_tab = EXCLUDED.active_tab,
			profile_open = EXCLUDED.profile_open,
			updated_at = EXCLUDED.updated_at`,
		addrKey(owner),
		string(st.Theme),
		st.ActiveTab,
		st.ProfileOpen,
		st.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert ui state: %w", err)
	}
	return nil
}
