package bot

import "fmt"

const defaultLanguage = "es"

var messages = map[string]map[string]string{
	"es": {
		"welcome":            "¡Hola, %s! Envíame una foto para extraer sus datos, escribe \"dato: clave=valor\" para registrar información o simplemente conversa conmigo.",
		"help":               "Comandos:\n/start - iniciar\n/menu - menú principal\n/help - esta ayuda\n\nEnvía una foto para extraer datos con IA.\nEscribe \"dato: nombre=Ana|edad=30\" para registrar datos.",
		"main_menu":          "Menú principal. Elige una opción:",
		"menu1":              "Menú 1. Elige un elemento:",
		"menu1_selected":     "Menú 1. Seleccionado: %s",
		"menu2":              "Preferencias. Pulsa para cambiar:",
		"delete_confirm":     "¿Seguro que quieres borrar todos tus datos? Esta acción no se puede deshacer.",
		"deleted":            "Tus datos han sido borrados.",
		"delete_cancelled":   "Borrado cancelado.",
		"view_data":          "Tus datos:\nMensajes: %d\nInteracciones: %d\nImágenes: %d\n\nIdioma: %s\nNotificaciones: %s\nTema: %s",
		"recent_messages":    "\n\nÚltimos mensajes:",
		"no_messages":        "\n\nNo hay mensajes guardados.",
		"processing":         "Procesando la imagen…",
		"data_saved":         "Datos registrados:\n%s",
		"forwarded":          "Enviado a: %s",
		"forward_failed":     "No se pudo enviar a todos los destinos.",
		"unsupported":        "No puedo procesar este tipo de mensaje. Usa /help.",
		"error_generic":      "Lo siento, algo salió mal. Inténtalo de nuevo.",
		"error_external":     "Error: %s. Inténtalo más tarde.",
		"action_unavailable": "Esta acción no está disponible ahora.",
		"btn_menu1":          "Menú 1",
		"btn_menu2":          "Menú 2 (preferencias)",
		"btn_view_data":      "Ver mis datos",
		"btn_delete_data":    "Borrar mis datos",
		"btn_back":           "⬅ Menú principal",
		"btn_confirm_delete": "Sí, borrar",
		"btn_cancel_delete":  "Cancelar",
		"pref_language":      "Idioma",
		"pref_notifications": "Notificaciones",
		"pref_theme":         "Tema",
		"item_option_a":      "Opción A",
		"item_option_b":      "Opción B",
		"item_option_c":      "Opción C",
	},
	"en": {
		"welcome":            "Hi, %s! Send me a photo to extract its data, write \"dato: key=value\" to record information, or just chat with me.",
		"help":               "Commands:\n/start - start\n/menu - main menu\n/help - this help\n\nSend a photo to extract data with AI.\nWrite \"dato: name=Ana|age=30\" to record data.",
		"main_menu":          "Main menu. Choose an option:",
		"menu1":              "Menu 1. Choose an item:",
		"menu1_selected":     "Menu 1. Selected: %s",
		"menu2":              "Preferences. Tap to change:",
		"delete_confirm":     "Are you sure you want to delete all your data? This cannot be undone.",
		"deleted":            "Your data has been deleted.",
		"delete_cancelled":   "Deletion cancelled.",
		"view_data":          "Your data:\nMessages: %d\nInteractions: %d\nImages: %d\n\nLanguage: %s\nNotifications: %s\nTheme: %s",
		"recent_messages":    "\n\nRecent messages:",
		"no_messages":        "\n\nNo stored messages.",
		"processing":         "Processing the image…",
		"data_saved":         "Data recorded:\n%s",
		"forwarded":          "Sent to: %s",
		"forward_failed":     "Could not deliver to every destination.",
		"unsupported":        "I can't handle this kind of message. Try /help.",
		"error_generic":      "Sorry, something went wrong. Please try again.",
		"error_external":     "Error: %s. Please try again later.",
		"action_unavailable": "This action is not available right now.",
		"btn_menu1":          "Menu 1",
		"btn_menu2":          "Menu 2 (preferences)",
		"btn_view_data":      "View my data",
		"btn_delete_data":    "Delete my data",
		"btn_back":           "⬅ Main menu",
		"btn_confirm_delete": "Yes, delete",
		"btn_cancel_delete":  "Cancel",
		"pref_language":      "Language",
		"pref_notifications": "Notifications",
		"pref_theme":         "Theme",
		"item_option_a":      "Option A",
		"item_option_b":      "Option B",
		"item_option_c":      "Option C",
	},
}

// text looks key up in lang, then in the default language.
func text(lang, key string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	if s, ok := messages[defaultLanguage][key]; ok {
		return s
	}
	return key
}

func textf(lang, key string, args ...interface{}) string {
	return fmt.Sprintf(text(lang, key), args...)
}
