package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gemini-relay-bot/internal/common/logger"
)

// Messenger is what the bot needs from Telegram.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) (int, error)
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

const maxFileSize = 20 << 20

type Client struct {
	api        *tgbotapi.BotAPI
	httpClient *http.Client
}

var _ Messenger = (*Client)(nil)

func NewClient(token string, debug bool) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return newClient(api, debug), nil
}

// NewClientWithEndpoint targets a non-default Bot API server. The endpoint
// uses the tgbotapi format, e.g. "http://host/bot%s/%s".
func NewClientWithEndpoint(token, endpoint string, httpClient *http.Client) (*Client, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return newClient(api, false), nil
}

func newClient(api *tgbotapi.BotAPI, debug bool) *Client {
	api.Debug = debug
	logger.Info().Str("username", api.Self.UserName).Msg("Telegram bot authorized")
	return &Client{
		api:        api,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) Self() tgbotapi.User {
	return c.api.Self
}

func (c *Client) SendMessage(_ context.Context, chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = *markup
	}

	sent, err := c.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	return sent.MessageID, nil
}

func (c *Client) EditMessage(_ context.Context, chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	var edit tgbotapi.Chattable
	if markup != nil {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *markup)
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, messageID, text)
	}

	if _, err := c.api.Request(edit); err != nil {
		return fmt.Errorf("failed to edit message %d in chat %d: %w", messageID, chatID, err)
	}
	return nil
}

func (c *Client) AnswerCallback(_ context.Context, callbackID, text string) error {
	if _, err := c.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("failed to answer callback %s: %w", callbackID, err)
	}
	return nil
}

// DownloadFile fetches a file previously sent to the bot.
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := c.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file %s: %w", fileID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file %s: status %d", fileID, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fileID, err)
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("file %s exceeds %d bytes", fileID, maxFileSize)
	}
	return data, nil
}

// SetWebhook registers url with Telegram. A non-empty certFile is uploaded so
// Telegram accepts a self-signed certificate.
func (c *Client) SetWebhook(url, certFile string) error {
	var (
		wh  tgbotapi.WebhookConfig
		err error
	)
	if certFile != "" {
		wh, err = tgbotapi.NewWebhookWithCert(url, tgbotapi.FilePath(certFile))
	} else {
		wh, err = tgbotapi.NewWebhook(url)
	}
	if err != nil {
		return fmt.Errorf("failed to build webhook config: %w", err)
	}

	if _, err := c.api.Request(wh); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}

	info, err := c.api.GetWebhookInfo()
	if err != nil {
		return fmt.Errorf("failed to get webhook info: %w", err)
	}
	if info.LastErrorDate != 0 {
		logger.Warn().Str("error", info.LastErrorMessage).Msg("Telegram reports a webhook delivery error")
	}

	logger.Info().Str("url", redactToken(url, c.api.Token)).Msg("Webhook registered")
	return nil
}

func (c *Client) RemoveWebhook() error {
	if _, err := c.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	return nil
}

// Updates starts long polling. Stop with StopUpdates.
func (c *Client) Updates(timeout int) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeout
	return c.api.GetUpdatesChan(u)
}

func (c *Client) StopUpdates() {
	c.api.StopReceivingUpdates()
}

// IsNotModified reports Telegram's refusal to apply an edit that changes nothing.
func IsNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}

// RetryAfter returns the flood-control delay Telegram asked for, if any.
func RetryAfter(err error) (time.Duration, bool) {
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) && tgErr.RetryAfter > 0 {
		return time.Duration(tgErr.RetryAfter) * time.Second, true
	}
	return 0, false
}

func redactToken(s, token string) string {
	if token == "" {
		return s
	}
	return strings.ReplaceAll(s, token, "<token>")
}
