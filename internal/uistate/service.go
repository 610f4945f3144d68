package uistate

import (
	"context"
	"errors"
	"fmt"
	"time"

	ecommon "github.com/ethereum/go-ethereum/common"
)

type Store interface {
	GetUIState(ctx context.Context, owner ecommon.Address) (State, error)
	PutUIState(ctx context.Context, owner ecommon.Address, st State) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Get returns the persisted state for owner, or Default when none was saved.
func (s *Service) Get(ctx context.Context, owner ecommon.Address) (State, error) {
	st, err := s.store.GetUIState(ctx, owner)
	if errors.Is(err, ErrNotFound) {
		return Default(), nil
	}
	if err != nil {
		return State{}, fmt.Errorf("failed to get ui state: %w", err)
	}
	return st, nil
}

func (s *Service) Put(ctx context.Context, owner ecommon.Address, st State) (State, error) {
	if st.Theme == "" {
		st.Theme = ThemeDark
	}
	if st.ActiveTab == "" {
		st.ActiveTab = DefaultTab
	}
	if err := st.Validate(); err != nil {
		return State{}, err
	}
	st.UpdatedAt = time.Now().UTC()

	err := s.store.PutUIState(ctx, owner, st)
	if err != nil {
		return State{}, fmt.Errorf("failed to put ui state: %w", err)
	}
	return st, nil
}

// Update applies fn to the owner's current state and saves the result.
func (s *Service) Update(ctx context.Context, owner ecommon.Address, fn func(State) State) (State, error) {
	st, err := s.Get(ctx, owner)
	if err != nil {
		return State{}, err
	}
	return s.Put(ctx, owner, fn(st))
}

// Navigate switches the owner's active tab.
func (s *Service) Navigate(ctx context.Context, owner ecommon.Address, tab string) (State, error) {
	return s.Update(ctx, owner, func(st State) State { return st.Navigate(tab) })
}

func (s *Service) ToggleTheme(ctx context.Context, owner ecommon.Address) (State, error) {
	return s.Update(ctx, owner, State.ToggleTheme)
}
