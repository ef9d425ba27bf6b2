package service

import (
	"github.com/looplab/fsm"

	"gemini-relay-bot/internal/features/session/models"
)

// Events that move a session between states.
const (
	EventMainMenu      = "main_menu"
	EventMenu1         = "menu1"
	EventMenu2         = "menu2"
	EventViewData      = "view_data"
	EventDeleteData    = "delete_data"
	EventConfirmDelete = "confirm_delete"
	EventCancelDelete  = "cancel_delete"
	EventSelectItem    = "select_item"
)

func states(ss ...models.State) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, string(s))
	}
	return out
}

// transitions is the complete table. Anything not listed is rejected.
// confirm_delete lands on the main menu; the caller removes the session once
// the data is gone.
var transitions = fsm.Events{
	{Name: EventMainMenu, Src: states(models.States...), Dst: string(models.StateMainMenu)},
	{Name: EventMenu1, Src: states(models.StateMainMenu, models.StateMenu1), Dst: string(models.StateMenu1)},
	{Name: EventMenu2, Src: states(models.StateMainMenu, models.StateMenu2), Dst: string(models.StateMenu2)},
	{Name: EventViewData, Src: states(models.StateMainMenu), Dst: string(models.StateMainMenu)},
	{Name: EventDeleteData, Src: states(models.StateMainMenu, models.StateDeleteConfirmation), Dst: string(models.StateDeleteConfirmation)},
	{Name: EventConfirmDelete, Src: states(models.StateDeleteConfirmation), Dst: string(models.StateMainMenu)},
	{Name: EventCancelDelete, Src: states(models.StateDeleteConfirmation), Dst: string(models.StateMainMenu)},
	{Name: EventSelectItem, Src: states(models.StateMenu1), Dst: string(models.StateMenu1)},
	{Name: EventSelectItem, Src: states(models.StateMenu2), Dst: string(models.StateMenu2)},
}

func newMachine(current models.State) *fsm.FSM {
	return fsm.NewFSM(string(current), transitions, fsm.Callbacks{})
}
