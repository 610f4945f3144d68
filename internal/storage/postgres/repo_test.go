package postgres

import (
	"context"
	"io"
	"math/big"
	"os"
	"testing"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/yo-safe/terminal/internal/performance"
	"github.com/yo-safe/terminal/internal/transfer"
	"github.com/yo-safe/terminal/internal/uistate"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN is not set")
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo, err := NewRepo(context.Background(), logger, dsn)
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	_, err = repo.pool.Exec(context.Background(), `TRUNCATE transfers, ui_state`)
	require.NoError(t, err)
	return repo
}

func TestRepo_Ledger(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	owner := ecommon.HexToAddress("0x00000000000000000000000000000000000000aA")
	vault := ecommon.HexToAddress("0x0000000f2eB9f69274678c76222B35eEc7588a65")
	session := uuid.New()

	deposit := performance.Entry{
		ID:         uuid.New(),
		SessionID:  session,
		Vault:      vault,
		Owner:      owner,
		Kind:       transfer.KindDeposit,
		Assets:     new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil),
		Shares:     big.NewInt(7),
		TxHash:     "0x01",
		Settlement: transfer.SettlementInstant,
	}
	redeem := performance.Entry{
		ID:         uuid.New(),
		SessionID:  session,
		Vault:      vault,
		Owner:      owner,
		Kind:       transfer.KindRedeem,
		Assets:     big.NewInt(25),
		Shares:     big.NewInt(3),
		TxHash:     "0x02",
		Settlement: transfer.SettlementInstant,
	}
	require.NoError(t, repo.RecordTransfer(ctx, deposit))
	require.NoError(t, repo.RecordTransfer(ctx, redeem))
	require.NoError(t, repo.RecordTransfer(ctx, redeem))

	totals, err := repo.Totals(ctx, owner, vault)
	require.NoError(t, err)
	require.Equal(t, deposit.Assets.String(), totals.Deposited.String())
	require.Equal(t, "25", totals.Withdrawn.String())

	list, err := repo.ListTransfers(ctx, owner, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)

	empty, err := repo.Totals(ctx, ecommon.HexToAddress("0x01"), vault)
	require.NoError(t, err)
	require.Zero(t, empty.Deposited.Sign())
	require.Zero(t, empty.Withdrawn.Sign())
}

func TestRepo_UIState(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := ecommon.HexToAddress("0x02")

	_, err := repo.GetUIState(ctx, owner)
	require.ErrorIs(t, err, uistate.ErrNotFound)

	st := uistate.Default().Navigate("Registry")
	require.NoError(t, repo.PutUIState(ctx, owner, st))
	st = st.ToggleTheme()
	require.NoError(t, repo.PutUIState(ctx, owner, st))

	got, err := repo.GetUIState(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, uistate.ThemeLight, got.Theme)
	require.Equal(t, "Registry", got.ActiveTab)
}

func TestParseBig(t *testing.T) {
	v, err := parseBig("115792089237316195423570985008687907853269984665640564039457584007913129639935")
	require.NoError(t, err)
	require.Equal(t, 256, v.BitLen())

	_, err = parseBig("1.5")
	require.Error(t, err)
}

func TestSettlementFromString(t *testing.T) {
	require.Equal(t, transfer.SettlementInstant, settlementFromString("instant"))
	require.Equal(t, transfer.SettlementDeferred, settlementFromString("deferred"))
	require.Equal(t, transfer.SettlementUnknown, settlementFromString(""))
}
