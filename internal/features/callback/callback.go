// Package callback turns inline-keyboard callback data into a typed value.
package callback

import "strings"

type Kind int

const (
	KindUnknown Kind = iota
	KindMainMenu
	KindMenu1
	KindMenu2
	KindViewData
	KindDeleteData
	KindConfirmDelete
	KindCancelDelete
	KindSubmenuItem
)

// ItemSuffix marks dynamically named submenu entries, e.g. "option_a_item".
const ItemSuffix = "_item"

// Identifiers sent in callback data.
const (
	MainMenu      = "main_menu"
	Menu1         = "menu1"
	Menu2         = "menu2"
	ViewData      = "view_data"
	DeleteData    = "delete_data"
	ConfirmDelete = "confirm_delete"
	CancelDelete  = "cancel_delete"
)

var fixed = map[string]Kind{
	MainMenu:      KindMainMenu,
	Menu1:         KindMenu1,
	Menu2:         KindMenu2,
	ViewData:      KindViewData,
	DeleteData:    KindDeleteData,
	ConfirmDelete: KindConfirmDelete,
	CancelDelete:  KindCancelDelete,
}

type Callback struct {
	Kind Kind
	// Item is the submenu item name for KindSubmenuItem.
	Item string
	Raw  string
}

func Parse(data string) Callback {
	data = strings.TrimSpace(data)
	if kind, ok := fixed[data]; ok {
		return Callback{Kind: kind, Raw: data}
	}
	if item, ok := strings.CutSuffix(data, ItemSuffix); ok && item != "" {
		return Callback{Kind: KindSubmenuItem, Item: item, Raw: data}
	}
	return Callback{Kind: KindUnknown, Raw: data}
}

// ItemData builds the callback data for a submenu item.
func ItemData(item string) string {
	return item + ItemSuffix
}

func (k Kind) String() string {
	switch k {
	case KindMainMenu:
		return MainMenu
	case KindMenu1:
		return Menu1
	case KindMenu2:
		return Menu2
	case KindViewData:
		return ViewData
	case KindDeleteData:
		return DeleteData
	case KindConfirmDelete:
		return ConfirmDelete
	case KindCancelDelete:
		return CancelDelete
	case KindSubmenuItem:
		return "submenu_item"
	}
	return "unknown"
}
