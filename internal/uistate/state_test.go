package uistate

import (
	"context"
	"errors"
	"testing"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	states map[ecommon.Address]State
	err    error
}

func (m *memStore) GetUIState(_ context.Context, owner ecommon.Address) (State, error) {
	if m.err != nil {
		return State{}, m.err
	}
	st, ok := m.states[owner]
	if !ok {
		return State{}, ErrNotFound
	}
	return st, nil
}

func (m *memStore) PutUIState(_ context.Context, owner ecommon.Address, st State) error {
	if m.err != nil {
		return m.err
	}
	m.states[owner] = st
	return nil
}

func TestState_Validate(t *testing.T) {
	tests := []struct {
		name    string
		st      State
		wantErr bool
	}{
		{name: "default", st: Default()},
		{name: "light registry", st: State{Theme: ThemeLight, ActiveTab: "Registry"}},
		{name: "bad theme", st: State{Theme: "neon", ActiveTab: "Terminal"}, wantErr: true},
		{name: "bad tab", st: State{Theme: ThemeDark, ActiveTab: "Casino"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.st.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalid)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestState_Transitions(t *testing.T) {
	st := Default()
	st.ProfileOpen = true

	st = st.Navigate("Quests")
	require.Equal(t, "Quests", st.ActiveTab)
	require.False(t, st.ProfileOpen)

	st = st.ToggleTheme()
	require.Equal(t, ThemeLight, st.Theme)
	require.Equal(t, ThemeDark, st.ToggleTheme().Theme)
}

func TestService(t *testing.T) {
	owner := ecommon.HexToAddress("0x01")
	store := &memStore{states: map[ecommon.Address]State{}}
	svc := NewService(store)

	st, err := svc.Get(context.Background(), owner)
	require.NoError(t, err)
	require.Equal(t, Default(), st)

	saved, err := svc.Put(context.Background(), owner, State{ActiveTab: "Registry", ProfileOpen: true})
	require.NoError(t, err)
	require.Equal(t, ThemeDark, saved.Theme)
	require.False(t, saved.UpdatedAt.IsZero())

	st, err = svc.Get(context.Background(), owner)
	require.NoError(t, err)
	require.Equal(t, saved, st)

	_, err = svc.Put(context.Background(), owner, State{Theme: "neon"})
	require.Error(t, err)

	store.err = errors.New("db down")
	_, err = svc.Get(context.Background(), owner)
	require.ErrorContains(t, err, "db down")
}

func TestService_Update(t *testing.T) {
	owner := ecommon.HexToAddress("0x02")
	svc := NewService(&memStore{states: map[ecommon.Address]State{}})

	st, err := svc.ToggleTheme(context.Background(), owner)
	require.NoError(t, err)
	require.Equal(t, ThemeLight, st.Theme)
	require.Equal(t, DefaultTab, st.ActiveTab)

	_, err = svc.Put(context.Background(), owner, State{Theme: ThemeLight, ActiveTab: "Registry", ProfileOpen: true})
	require.NoError(t, err)

	st, err = svc.Navigate(context.Background(), owner, "Quests")
	require.NoError(t, err)
	require.Equal(t, "Quests", st.ActiveTab)
	require.False(t, st.ProfileOpen)
	require.Equal(t, ThemeLight, st.Theme)

	_, err = svc.Navigate(context.Background(), owner, "Nowhere")
	require.ErrorIs(t, err, ErrInvalid)

	st, err = svc.Get(context.Background(), owner)
	require.NoError(t, err)
	require.Equal(t, "Quests", st.ActiveTab)
}
