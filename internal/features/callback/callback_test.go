package callback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		data string
		want Callback
	}{
		{"main_menu", Callback{Kind: KindMainMenu, Raw: "main_menu"}},
		{"menu1", Callback{Kind: KindMenu1, Raw: "menu1"}},
		{"menu2", Callback{Kind: KindMenu2, Raw: "menu2"}},
		{"view_data", Callback{Kind: KindViewData, Raw: "view_data"}},
		{"delete_data", Callback{Kind: KindDeleteData, Raw: "delete_data"}},
		{"confirm_delete", Callback{Kind: KindConfirmDelete, Raw: "confirm_delete"}},
		{"cancel_delete", Callback{Kind: KindCancelDelete, Raw: "cancel_delete"}},
		{"option_a_item", Callback{Kind: KindSubmenuItem, Item: "option_a", Raw: "option_a_item"}},
		{"language_item", Callback{Kind: KindSubmenuItem, Item: "language", Raw: "language_item"}},
		{"_item", Callback{Kind: KindUnknown, Raw: "_item"}},
		{"something", Callback{Kind: KindUnknown, Raw: "something"}},
		{"", Callback{Kind: KindUnknown}},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.data))
		})
	}
}

func TestItemDataRoundTrip(t *testing.T) {
	cb := Parse(ItemData("theme"))
	assert.Equal(t, KindSubmenuItem, cb.Kind)
	assert.Equal(t, "theme", cb.Item)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "main_menu", KindMainMenu.String())
	assert.Equal(t, "submenu_item", KindSubmenuItem.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
