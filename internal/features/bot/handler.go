// Package bot turns Telegram updates into menu navigation, AI relay calls and
// replies.
package bot

import (
	"context"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	apperrors "gemini-relay-bot/internal/common/errors"
	"gemini-relay-bot/internal/common/keylock"
	"gemini-relay-bot/internal/common/logger"
	"gemini-relay-bot/internal/features/dataentry"
	historymodels "gemini-relay-bot/internal/features/history/models"
	historyservice "gemini-relay-bot/internal/features/history/service"
	relayservice "gemini-relay-bot/internal/features/relay/service"
	sessionmodels "gemini-relay-bot/internal/features/session/models"
	sessionservice "gemini-relay-bot/internal/features/session/service"
	usermodels "gemini-relay-bot/internal/features/user/models"
	userservice "gemini-relay-bot/internal/features/user/service"
	"gemini-relay-bot/internal/platform/telegram"
)

// maxMessageLength is Telegram's limit for a text message.
const maxMessageLength = 4096

type Relay interface {
	ProcessPhoto(ctx context.Context, in relayservice.PhotoInput) (*relayservice.Outcome, error)
	ProcessDataEntry(ctx context.Context, in relayservice.TextInput) (*relayservice.Outcome, error)
	Chat(ctx context.Context, in relayservice.TextInput) (string, error)
}

var _ Relay = (*relayservice.RelayService)(nil)

type Bot struct {
	messenger telegram.Messenger
	users     userservice.UserService
	history   historyservice.HistoryService
	sessions  *sessionservice.Tracker
	relay     Relay
	locks     keylock.Map
	log       zerolog.Logger
}

func New(
	messenger telegram.Messenger,
	users userservice.UserService,
	history historyservice.HistoryService,
	sessions *sessionservice.Tracker,
	relay Relay,
) *Bot {
	return &Bot{
		messenger: messenger,
		users:     users,
		history:   history,
		sessions:  sessions,
		relay:     relay,
		log:       logger.With("bot"),
	}
}

// HandleUpdate processes one update. Updates from the same user never run
// concurrently; a panic is logged and does not escape.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	userID := senderID(update)
	if userID == 0 {
		b.log.Debug().Int("update_id", update.UpdateID).Msg("Update without sender ignored")
		return
	}

	unlock := b.locks.Lock(userID)
	defer unlock()
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Int("update_id", update.UpdateID).
				Int64("user_id", userID).
				Msg("Update handler panicked")
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.Dispatch(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	default:
		b.log.Debug().Int("update_id", update.UpdateID).Msg("Unsupported update type")
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.From.ID
	if msg.Chat != nil {
		chatID = msg.Chat.ID
	}
	user := userFromTelegram(msg.From, chatID)
	if err := b.users.Register(ctx, user); err != nil {
		b.log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to register user")
	}
	lang := b.language(ctx, user.ID)

	switch {
	case msg.IsCommand():
		b.handleCommand(ctx, msg, user, lang)
	case len(msg.Photo) > 0:
		b.handlePhoto(ctx, msg, user, lang)
	case strings.TrimSpace(msg.Text) != "":
		b.handleText(ctx, msg, user, lang)
	default:
		b.send(ctx, chatID, text(lang, "unsupported"), nil)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *usermodels.User, lang string) {
	command := msg.Command()
	if _, err := b.history.SaveMessage(ctx, &historymodels.Message{
		UserID:    user.ID,
		ChatID:    user.ChatID,
		MessageID: msg.MessageID,
		Text:      historymodels.StringPtr(msg.Text),
		Type:      historymodels.MessageTypeCommand,
	}); err != nil {
		b.log.Warn().Err(err).Int64("user_id", user.ID).Msg("Failed to store command")
	}
	b.logInteraction(ctx, user.ID, historymodels.ActionCommand, map[string]string{"command": command})

	switch command {
	case "start":
		b.resetMenu(ctx, user.ID)
		b.send(ctx, user.ChatID, textf(lang, "welcome", user.DisplayName()), nil)
		b.send(ctx, user.ChatID, text(lang, "main_menu"), mainMenuKeyboard(lang))
	case "menu":
		b.resetMenu(ctx, user.ID)
		b.send(ctx, user.ChatID, text(lang, "main_menu"), mainMenuKeyboard(lang))
	default:
		b.send(ctx, user.ChatID, text(lang, "help"), nil)
	}
}

func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, user *usermodels.User, lang string) {
	photo := largestPhoto(msg.Photo)
	to := target{chatID: user.ChatID}

	id, err := b.sendMessage(ctx, user.ChatID, text(lang, "processing"), nil)
	if err != nil {
		b.log.Warn().Err(err).Int64("user_id", user.ID).Msg("Failed to send processing notice")
	} else {
		to.messageID = id
	}

	outcome, err := b.relay.ProcessPhoto(ctx, relayservice.PhotoInput{
		User:      user,
		ChatID:    user.ChatID,
		MessageID: msg.MessageID,
		FileID:    photo.FileID,
		Caption:   msg.Caption,
	})

	var reply string
	if err != nil {
		b.log.Error().Err(err).Int64("user_id", user.ID).Msg("Photo processing failed")
		reply = userErrorText(lang, err)
	} else {
		reply = withForwarding(lang, outcome.Text, outcome)
	}
	if err := b.render(ctx, to, reply, nil); err != nil {
		b.log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to deliver photo result")
	}
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message, user *usermodels.User, lang string) {
	in := relayservice.TextInput{
		User:      user,
		ChatID:    user.ChatID,
		MessageID: msg.MessageID,
		Text:      msg.Text,
		Language:  lang,
	}

	if ok, content := dataentry.Match(msg.Text); ok {
		in.Text = content
		outcome, err := b.relay.ProcessDataEntry(ctx, in)
		if err != nil {
			b.log.Error().Err(err).Int64("user_id", user.ID).Msg("Data entry failed")
			b.send(ctx, user.ChatID, userErrorText(lang, err), nil)
			return
		}
		b.send(ctx, user.ChatID, withForwarding(lang, textf(lang, "data_saved", outcome.Text), outcome), nil)
		return
	}

	reply, err := b.relay.Chat(ctx, in)
	if err != nil {
		b.log.Error().Err(err).Int64("user_id", user.ID).Msg("Chat failed")
		reply = userErrorText(lang, err)
	}
	b.send(ctx, user.ChatID, reply, nil)
}

// session returns the user's session, seeding a new one with the stored
// preferences.
func (b *Bot) session(ctx context.Context, userID int64) (sessionmodels.Session, error) {
	s, ok, err := b.sessions.Get(ctx, userID)
	if err != nil {
		return sessionmodels.Session{}, err
	}
	if ok {
		return s, nil
	}

	prefs := usermodels.DefaultPreferences(userID)
	stored, err := b.users.GetPreferences(ctx, userID)
	if err != nil {
		b.log.Warn().Err(err).Int64("user_id", userID).Msg("Using default preferences")
	} else {
		prefs = *stored
	}
	return b.sessions.GetOrCreate(ctx, userID, prefs)
}

func (b *Bot) language(ctx context.Context, userID int64) string {
	s, err := b.session(ctx, userID)
	if err != nil {
		b.log.Warn().Err(err).Int64("user_id", userID).Msg("Session unavailable")
		return defaultLanguage
	}
	return s.Preferences.Language
}

func (b *Bot) resetMenu(ctx context.Context, userID int64) {
	if _, err := b.sessions.Fire(ctx, userID, sessionservice.EventMainMenu); err != nil {
		b.log.Warn().Err(err).Int64("user_id", userID).Msg("Failed to reset session")
	}
}

func (b *Bot) send(ctx context.Context, chatID int64, body string, markup *tgbotapi.InlineKeyboardMarkup) {
	if _, err := b.sendMessage(ctx, chatID, clip(body), markup); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

func (b *Bot) logInteraction(ctx context.Context, userID int64, action string, data interface{}) {
	if err := b.history.LogInteraction(ctx, userID, action, data); err != nil {
		b.log.Warn().Err(err).Int64("user_id", userID).Str("action", action).Msg("Failed to log interaction")
	}
}

// userErrorText shows the failing service for external errors and a generic
// apology for everything else.
func userErrorText(lang string, err error) string {
	if appErr, ok := apperrors.AsAppError(err); ok && appErr.IsExternal() {
		return textf(lang, "error_external", appErr.Message)
	}
	return text(lang, "error_generic")
}

func withForwarding(lang, body string, o *relayservice.Outcome) string {
	if len(o.Forwarded) > 0 {
		body += "\n\n" + textf(lang, "forwarded", strings.Join(o.Forwarded, ", "))
	}
	if o.ForwardError != nil {
		body += "\n" + text(lang, "forward_failed")
	}
	return body
}

func senderID(update tgbotapi.Update) int64 {
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		return update.CallbackQuery.From.ID
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID
	}
	return 0
}

func userFromTelegram(u *tgbotapi.User, chatID int64) *usermodels.User {
	return &usermodels.User{
		ID:           u.ID,
		Username:     u.UserName,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		LanguageCode: u.LanguageCode,
		IsBot:        u.IsBot,
		ChatID:       chatID,
	}
}

// largestPhoto picks the biggest rendition Telegram offers.
func largestPhoto(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := sizes[len(sizes)-1]
	for _, p := range sizes {
		if p.Width*p.Height > best.Width*best.Height {
			best = p
		}
	}
	return best
}

func clip(s string) string {
	if utf8.RuneCountInString(s) <= maxMessageLength {
		return s
	}
	r := []rune(s)
	return string(r[:maxMessageLength-1]) + "…"
}
