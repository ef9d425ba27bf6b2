package models

import (
	"time"

	usermodels "gemini-relay-bot/internal/features/user/models"
)

type State string

const (
	StateMainMenu           State = "main_menu"
	StateMenu1              State = "menu1"
	StateMenu2              State = "menu2"
	StateDeleteConfirmation State = "delete_confirmation"
)

var States = []State{StateMainMenu, StateMenu1, StateMenu2, StateDeleteConfirmation}

func (s State) Valid() bool {
	for _, known := range States {
		if s == known {
			return true
		}
	}
	return false
}

const DataSelectedItem = "selected_item"

// Session is per-user navigation state. It is scratch data: losing it only
// sends the user back to the main menu.
type Session struct {
	UserID      int64                  `json:"user_id"`
	State       State                  `json:"state"`
	Data        map[string]string      `json:"data,omitempty"`
	Preferences usermodels.Preferences `json:"preferences"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

func New(userID int64, prefs usermodels.Preferences) Session {
	return Session{
		UserID:      userID,
		State:       StateMainMenu,
		Data:        map[string]string{},
		Preferences: prefs,
		UpdatedAt:   time.Now().UTC(),
	}
}

// Clone returns a copy that shares no mutable state with s.
func (s Session) Clone() Session {
	data := make(map[string]string, len(s.Data))
	for k, v := range s.Data {
		data[k] = v
	}
	s.Data = data
	return s
}
