package uistate

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

const DefaultTab = "Terminal"

// Tabs lists the views the terminal can navigate to.
var Tabs = []string{
	"Terminal",
	"Registry",
	"Leaderboard",
	"Quests",
	"Flow",
	"Market Map",
	"Profile",
	"Yield Engine v4",
	"Alpha Registry",
	"Risk Telemetry",
	"SDK Interface",
	"Safety Audits",
	"Protocol SLA",
	"Network Terms",
	"Privacy Node",
}

var (
	ErrNotFound = errors.New("ui state not found")
	ErrInvalid  = errors.New("invalid ui state")
)

type State struct {
	Theme       Theme     `json:"theme"`
	ActiveTab   string    `json:"activeTab"`
	ProfileOpen bool      `json:"profileOpen"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func Default() State {
	return State{
		Theme:     ThemeDark,
		ActiveTab: DefaultTab,
	}
}

func (s State) Validate() error {
	if s.Theme != ThemeDark && s.Theme != ThemeLight {
		return fmt.Errorf("%w: unsupported theme %q", ErrInvalid, s.Theme)
	}
	if !slices.Contains(Tabs, s.ActiveTab) {
		return fmt.Errorf("%w: unknown tab %q", ErrInvalid, s.ActiveTab)
	}
	return nil
}

// Navigate switches to tab and closes the profile panel.
func (s State) Navigate(tab string) State {
	s.ActiveTab = tab
	s.ProfileOpen = false
	return s
}

func (s State) ToggleTheme() State {
	if s.Theme == ThemeLight {
		s.Theme = ThemeDark
	} else {
		s.Theme = ThemeLight
	}
	return s
}
