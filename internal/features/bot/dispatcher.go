package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	apperrors "gemini-relay-bot/internal/common/errors"
	"gemini-relay-bot/internal/features/callback"
	historymodels "gemini-relay-bot/internal/features/history/models"
	sessionmodels "gemini-relay-bot/internal/features/session/models"
	sessionservice "gemini-relay-bot/internal/features/session/service"
	usermodels "gemini-relay-bot/internal/features/user/models"
	"gemini-relay-bot/internal/platform/telegram"
)

const (
	recentMessages  = 5
	previewRunesMax = 60
)

// target is the message a callback came from. messageID is zero when the
// message is unknown and a new one has to be sent.
type target struct {
	chatID    int64
	messageID int
}

func callbackTarget(q *tgbotapi.CallbackQuery) target {
	to := target{chatID: q.From.ID}
	if q.Message != nil {
		to.messageID = q.Message.MessageID
		if q.Message.Chat != nil {
			to.chatID = q.Message.Chat.ID
		}
	}
	return to
}

// acknowledger answers a callback query at most once.
type acknowledger struct {
	messenger telegram.Messenger
	id        string
	done      bool
	log       zerolog.Logger
}

func (a *acknowledger) answer(ctx context.Context, notice string) {
	if a.done {
		return
	}
	a.done = true
	if err := a.messenger.AnswerCallback(ctx, a.id, notice); err != nil {
		a.log.Warn().Err(err).Str("callback_id", a.id).Msg("Failed to answer callback")
	}
}

// Dispatch handles one callback query. The query is answered exactly once
// after its side effects, even when a handler fails or panics.
func (b *Bot) Dispatch(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if q == nil || q.From == nil {
		return
	}

	cb := callback.Parse(q.Data)
	to := callbackTarget(q)
	log := b.log.With().Int64("user_id", q.From.ID).Str("callback", q.Data).Logger()
	ack := &acknowledger{messenger: b.messenger, id: q.ID, log: log}
	lang := defaultLanguage

	defer ack.answer(ctx, "")
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("Callback handler panicked")
			b.reportFailure(ctx, to, lang)
		}
	}()

	user := userFromTelegram(q.From, to.chatID)
	if err := b.users.Register(ctx, user); err != nil {
		log.Warn().Err(err).Msg("Failed to register user")
	}

	s, err := b.session(ctx, user.ID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load session")
		b.reportFailure(ctx, to, lang)
		return
	}
	lang = s.Preferences.Language
	b.logInteraction(ctx, user.ID, historymodels.ActionButtonClick, map[string]string{"callback": q.Data})

	err = b.route(ctx, to, user.ID, cb, lang)
	switch {
	case err == nil:
	case apperrors.HasCode(err, apperrors.ErrCodeInvalidTransition):
		log.Debug().Err(err).Msg("Callback not allowed in current state")
		ack.answer(ctx, text(lang, "action_unavailable"))
	default:
		log.Error().Err(err).Str("kind", cb.Kind.String()).Msg("Callback handler failed")
		b.reportFailure(ctx, to, lang)
	}
}

func (b *Bot) route(ctx context.Context, to target, userID int64, cb callback.Callback, lang string) error {
	switch cb.Kind {
	case callback.KindMainMenu:
		if _, err := b.sessions.Fire(ctx, userID, sessionservice.EventMainMenu); err != nil {
			return err
		}
		return b.render(ctx, to, text(lang, "main_menu"), mainMenuKeyboard(lang))

	case callback.KindMenu1:
		s, err := b.sessions.Fire(ctx, userID, sessionservice.EventMenu1)
		if err != nil {
			return err
		}
		return b.render(ctx, to, menu1Text(lang, s), menu1Keyboard(lang, s.Data[sessionmodels.DataSelectedItem]))

	case callback.KindMenu2:
		s, err := b.sessions.Fire(ctx, userID, sessionservice.EventMenu2)
		if err != nil {
			return err
		}
		return b.render(ctx, to, text(lang, "menu2"), menu2Keyboard(lang, s.Preferences))

	case callback.KindViewData:
		s, err := b.sessions.Fire(ctx, userID, sessionservice.EventViewData)
		if err != nil {
			return err
		}
		summary, err := b.dataSummary(ctx, userID, lang, s.Preferences)
		if err != nil {
			return err
		}
		return b.render(ctx, to, summary, backKeyboard(lang))

	case callback.KindDeleteData:
		if _, err := b.sessions.Fire(ctx, userID, sessionservice.EventDeleteData); err != nil {
			return err
		}
		return b.render(ctx, to, text(lang, "delete_confirm"), deleteConfirmKeyboard(lang))

	case callback.KindConfirmDelete:
		if _, err := b.sessions.Fire(ctx, userID, sessionservice.EventConfirmDelete); err != nil {
			return err
		}
		if err := b.users.EraseUserData(ctx, userID); err != nil {
			return err
		}
		if err := b.sessions.Delete(ctx, userID); err != nil {
			b.log.Warn().Err(err).Int64("user_id", userID).Msg("Failed to drop session after erase")
		}
		return b.render(ctx, to, text(lang, "deleted")+"\n\n"+text(lang, "main_menu"), mainMenuKeyboard(lang))

	case callback.KindCancelDelete:
		if _, err := b.sessions.Fire(ctx, userID, sessionservice.EventCancelDelete); err != nil {
			return err
		}
		return b.render(ctx, to, text(lang, "delete_cancelled")+"\n\n"+text(lang, "main_menu"), mainMenuKeyboard(lang))

	case callback.KindSubmenuItem:
		return b.selectItem(ctx, to, userID, cb.Item, lang)

	case callback.KindUnknown:
		b.log.Debug().Str("data", cb.Raw).Int64("user_id", userID).Msg("Unknown callback acknowledged")
		return nil
	}

	return fmt.Errorf("unhandled callback kind %d", cb.Kind)
}

// selectItem handles "<name>_item" buttons. In the preferences submenu the
// item names a preference and cycles its value; in menu 1 it is remembered as
// the current selection.
func (b *Bot) selectItem(ctx context.Context, to target, userID int64, item, lang string) error {
	s, err := b.sessions.Fire(ctx, userID, sessionservice.EventSelectItem)
	if err != nil {
		return err
	}

	if s.State == sessionmodels.StateMenu2 {
		if !usermodels.IsKnownPreference(item) {
			return nil
		}
		value := s.Preferences.Next(item)
		prefs, err := b.users.UpdatePreference(ctx, userID, item, value)
		if err != nil {
			return err
		}
		if s, err = b.sessions.SetPreferences(ctx, userID, *prefs); err != nil {
			return err
		}
		b.logInteraction(ctx, userID, historymodels.ActionPreferenceSet, map[string]string{
			"preference": item,
			"value":      value,
		})
		lang = s.Preferences.Language
		return b.render(ctx, to, text(lang, "menu2"), menu2Keyboard(lang, s.Preferences))
	}

	if !isMenu1Item(item) {
		return nil
	}
	if s, err = b.sessions.SetData(ctx, userID, sessionmodels.DataSelectedItem, item); err != nil {
		return err
	}
	return b.render(ctx, to, menu1Text(lang, s), menu1Keyboard(lang, item))
}

func menu1Text(lang string, s sessionmodels.Session) string {
	if selected := s.Data[sessionmodels.DataSelectedItem]; selected != "" {
		return textf(lang, "menu1_selected", text(lang, "item_"+selected))
	}
	return text(lang, "menu1")
}

func (b *Bot) dataSummary(ctx context.Context, userID int64, lang string, prefs usermodels.Preferences) (string, error) {
	counts, err := b.history.Counts(ctx, userID)
	if err != nil {
		return "", err
	}
	msgs, err := b.history.Messages(ctx, userID, recentMessages)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(textf(lang, "view_data",
		counts.Messages, counts.Interactions, counts.Images,
		prefs.Language, prefs.Notifications, prefs.Theme))

	if len(msgs) == 0 {
		sb.WriteString(text(lang, "no_messages"))
		return sb.String(), nil
	}
	sb.WriteString(text(lang, "recent_messages"))
	for _, m := range msgs {
		preview := ""
		if m.Text != nil {
			preview = *m.Text
		}
		if utf8.RuneCountInString(preview) > previewRunesMax {
			preview = string([]rune(preview)[:previewRunesMax]) + "…"
		}
		fmt.Fprintf(&sb, "\n• [%s] %s", m.Type, preview)
	}
	return sb.String(), nil
}

// render edits the target message in place and falls back to sending a new
// one when the edit is refused.
func (b *Bot) render(ctx context.Context, to target, body string, markup *tgbotapi.InlineKeyboardMarkup) error {
	body = clip(body)
	if to.messageID != 0 {
		err := b.editMessage(ctx, to.chatID, to.messageID, body, markup)
		if err == nil || telegram.IsNotModified(err) {
			return nil
		}
		b.log.Warn().
			Err(err).
			Int64("chat_id", to.chatID).
			Int("message_id", to.messageID).
			Msg("Edit failed, sending a new message")
	}
	if _, err := b.sendMessage(ctx, to.chatID, body, markup); err != nil {
		return apperrors.NewTelegramAPIError("send message", err)
	}
	return nil
}

// reportFailure shows the generic apology with the main menu. Its own
// failures are logged and dropped.
func (b *Bot) reportFailure(ctx context.Context, to target, lang string) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Int64("chat_id", to.chatID).Msg("Failure report panicked")
		}
	}()
	if _, err := b.sendMessage(ctx, to.chatID, text(lang, "error_generic"), mainMenuKeyboard(lang)); err != nil {
		b.log.Error().Err(err).Int64("chat_id", to.chatID).Msg("Failed to report failure to user")
	}
}
