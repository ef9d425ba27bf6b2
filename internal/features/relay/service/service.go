package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	apperrors "gemini-relay-bot/internal/common/errors"
	"gemini-relay-bot/internal/common/logger"
	"gemini-relay-bot/internal/features/dataentry"
	"gemini-relay-bot/internal/features/extraction"
	historymodels "gemini-relay-bot/internal/features/history/models"
	historyservice "gemini-relay-bot/internal/features/history/service"
	usermodels "gemini-relay-bot/internal/features/user/models"
	"gemini-relay-bot/internal/platform/google"
)

const DefaultImagePrompt = "Analiza la imagen y extrae todos los datos relevantes que contenga. " +
	"Responde únicamente con pares clave=valor separados por |, sin texto adicional. " +
	"Ejemplo: nombre=Ana|fecha=2024-01-31|total=12.50"

type AIClient interface {
	AnalyzeImage(ctx context.Context, image []byte, mimeType, prompt string) (json.RawMessage, error)
	GenerateText(ctx context.Context, prompt string) (json.RawMessage, error)
}

type FileDownloader interface {
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

type FormSubmitter interface {
	Enabled() bool
	Submit(ctx context.Context, values map[string]string) (int, error)
}

type SheetAppender interface {
	Enabled() bool
	Append(ctx context.Context, row google.Row) error
}

// Destinations reported in Outcome.Forwarded.
const (
	DestinationForms      = "forms"
	DestinationAppsScript = "apps_script"
)

// Outcome describes a processed photo or data entry. Text is what the user
// sees: the extracted data, or a fixed message when nothing was extracted.
type Outcome struct {
	Text         string
	Kind         extraction.Kind
	Fields       []dataentry.Pair
	Forwarded    []string
	ForwardError error
}

type PhotoInput struct {
	User      *usermodels.User
	ChatID    int64
	MessageID int
	FileID    string
	Caption   string
}

type TextInput struct {
	User      *usermodels.User
	ChatID    int64
	MessageID int
	Text      string
	Language  string
}

type RelayService struct {
	ai          AIClient
	files       FileDownloader
	forms       FormSubmitter
	sheet       SheetAppender
	history     historyservice.HistoryService
	imagePrompt string
}

func NewRelayService(ai AIClient, files FileDownloader, forms FormSubmitter, sheet SheetAppender, history historyservice.HistoryService) *RelayService {
	return &RelayService{
		ai:          ai,
		files:       files,
		forms:       forms,
		sheet:       sheet,
		history:     history,
		imagePrompt: DefaultImagePrompt,
	}
}

// ProcessPhoto runs a photo through Gemini and forwards the extracted data.
// Errors are AppErrors whose message can be shown to the user.
func (s *RelayService) ProcessPhoto(ctx context.Context, in PhotoInput) (*Outcome, error) {
	userID := in.User.ID
	log := logger.With("relay").With().Int64("user_id", userID).Str("file_id", in.FileID).Logger()

	photo := &historymodels.Message{
		UserID:    userID,
		ChatID:    in.ChatID,
		MessageID: in.MessageID,
		Type:      historymodels.MessageTypePhoto,
		HasMedia:  true,
		MediaType: historymodels.StringPtr("photo"),
	}
	if in.Caption != "" {
		photo.Text = historymodels.StringPtr(in.Caption)
	}
	if _, err := s.history.SaveMessage(ctx, photo); err != nil {
		log.Warn().Err(err).Msg("Failed to store photo message")
	}

	image, err := s.files.DownloadFile(ctx, in.FileID)
	if err != nil {
		s.logFailure(ctx, userID, "telegram_download", err)
		return nil, apperrors.NewTelegramAPIError("download photo", err).WithUserID(userID)
	}

	start := time.Now()
	raw, err := s.ai.AnalyzeImage(ctx, image, "", s.imagePrompt)
	if err != nil {
		s.logFailure(ctx, userID, "gemini_image", err)
		return nil, err
	}

	res := extraction.Extract([]byte(raw))
	log.Info().
		Str("kind", res.Kind.String()).
		Bool("key_value_shape", extraction.LooksLikeKeyValue(res.Text)).
		Dur("duration", time.Since(start)).
		Msg("Image analyzed")

	if _, err := s.history.SaveImageResult(ctx, &historymodels.ImageResult{
		UserID:         userID,
		MessageID:      in.MessageID,
		FileID:         in.FileID,
		GeminiResponse: historymodels.StringPtr(string(raw)),
	}); err != nil {
		log.Warn().Err(err).Msg("Failed to store image result")
	}

	outcome := &Outcome{Text: res.String(), Kind: res.Kind}
	if res.OK() {
		outcome.Fields = dataentry.ParsePairs(res.Text)
		if _, err := s.history.SaveMessage(ctx, &historymodels.Message{
			UserID:    userID,
			ChatID:    in.ChatID,
			MessageID: in.MessageID,
			Text:      historymodels.StringPtr(storedText(res.Text, outcome.Fields)),
			Type:      historymodels.MessageTypeProcessedImage,
		}); err != nil {
			log.Warn().Err(err).Msg("Failed to store processed image")
		}
		outcome.Forwarded, outcome.ForwardError = s.forward(ctx, in.User, "image", res.Text, outcome.Fields)
	}

	if err := s.history.LogInteraction(ctx, userID, historymodels.ActionImageProcessed, map[string]interface{}{
		"file_id":   in.FileID,
		"result":    res.Kind.String(),
		"forwarded": outcome.Forwarded,
	}); err != nil {
		log.Warn().Err(err).Msg("Failed to log interaction")
	}

	return outcome, nil
}

// ProcessDataEntry stores and forwards text the user labelled as data.
func (s *RelayService) ProcessDataEntry(ctx context.Context, in TextInput) (*Outcome, error) {
	userID := in.User.ID
	log := logger.With("relay").With().Int64("user_id", userID).Logger()

	fields := dataentry.ParsePairs(in.Text)
	if _, err := s.history.SaveMessage(ctx, &historymodels.Message{
		UserID:    userID,
		ChatID:    in.ChatID,
		MessageID: in.MessageID,
		Text:      historymodels.StringPtr(storedText(in.Text, fields)),
		Type:      historymodels.MessageTypeDataEntry,
	}); err != nil {
		return nil, err
	}

	outcome := &Outcome{Text: in.Text, Kind: extraction.KindText, Fields: fields}
	outcome.Forwarded, outcome.ForwardError = s.forward(ctx, in.User, "data_entry", in.Text, outcome.Fields)

	if err := s.history.LogInteraction(ctx, userID, historymodels.ActionDataEntry, map[string]interface{}{
		"fields":    len(outcome.Fields),
		"forwarded": outcome.Forwarded,
	}); err != nil {
		log.Warn().Err(err).Msg("Failed to log interaction")
	}

	return outcome, nil
}

// Chat answers conversational text with Gemini.
func (s *RelayService) Chat(ctx context.Context, in TextInput) (string, error) {
	userID := in.User.ID
	log := logger.With("relay").With().Int64("user_id", userID).Logger()

	if _, err := s.history.SaveMessage(ctx, &historymodels.Message{
		UserID:    userID,
		ChatID:    in.ChatID,
		MessageID: in.MessageID,
		Text:      historymodels.StringPtr(in.Text),
		Type:      historymodels.MessageTypeText,
	}); err != nil {
		log.Warn().Err(err).Msg("Failed to store text message")
	}

	raw, err := s.ai.GenerateText(ctx, chatPrompt(in.Text, in.Language))
	if err != nil {
		s.logFailure(ctx, userID, "gemini_text", err)
		return "", err
	}

	reply := extraction.ExtractText([]byte(raw))
	if _, err := s.history.SaveMessage(ctx, &historymodels.Message{
		UserID:    userID,
		ChatID:    in.ChatID,
		MessageID: in.MessageID,
		Text:      historymodels.StringPtr(reply),
		Type:      historymodels.MessageTypeAIResponse,
	}); err != nil {
		log.Warn().Err(err).Msg("Failed to store AI response")
	}
	if err := s.history.LogInteraction(ctx, userID, historymodels.ActionAIChat, nil); err != nil {
		log.Warn().Err(err).Msg("Failed to log interaction")
	}

	return reply, nil
}

// forward sends extracted data to every enabled destination concurrently.
// One destination failing does not stop the others.
func (s *RelayService) forward(ctx context.Context, user *usermodels.User, source, raw string, fields []dataentry.Pair) ([]string, error) {
	var (
		g          errgroup.Group
		formsErr   error
		sheetErr   error
		formsSent  bool
		sheetSaved bool
	)

	values := dataentry.ToMap(fields)

	if s.forms != nil && s.forms.Enabled() && len(values) > 0 {
		g.Go(func() error {
			n, err := s.forms.Submit(ctx, values)
			formsErr = err
			formsSent = err == nil && n > 0
			return nil
		})
	}
	if s.sheet != nil && s.sheet.Enabled() {
		g.Go(func() error {
			sheetErr = s.sheet.Append(ctx, google.Row{
				UserID:    user.ID,
				Username:  user.Username,
				Source:    source,
				Fields:    values,
				Raw:       raw,
				Timestamp: time.Now().UTC(),
			})
			sheetSaved = sheetErr == nil
			return nil
		})
	}
	_ = g.Wait()

	var forwarded []string
	if formsSent {
		forwarded = append(forwarded, DestinationForms)
	}
	if sheetSaved {
		forwarded = append(forwarded, DestinationAppsScript)
	}

	err := multierr.Combine(formsErr, sheetErr)
	if err != nil {
		s.logFailure(ctx, user.ID, "forward", err)
	}
	return forwarded, err
}

func (s *RelayService) logFailure(ctx context.Context, userID int64, stage string, err error) {
	logger.Error().Err(err).Int64("user_id", userID).Str("stage", stage).Msg("External call failed")
	if logErr := s.history.LogInteraction(ctx, userID, historymodels.ActionExternalFailure, map[string]string{
		"stage": stage,
		"error": err.Error(),
	}); logErr != nil {
		logger.Warn().Err(logErr).Int64("user_id", userID).Msg("Failed to log interaction")
	}
}

// storedText keeps key=value rows in canonical form so the edit page and
// later parses see the same pairs. Free text is stored as written.
func storedText(text string, fields []dataentry.Pair) string {
	if len(fields) == 0 {
		return text
	}
	return dataentry.FormatPairs(fields)
}

func chatPrompt(text, language string) string {
	if language == "en" {
		return "Answer briefly in English.\n\n" + text
	}
	return "Responde brevemente en español.\n\n" + text
}
