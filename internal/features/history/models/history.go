package models

import "time"

// Message types stored in messages.message_type.
const (
	MessageTypeText           = "text"
	MessageTypePhoto          = "photo"
	MessageTypeProcessedImage = "processed_image"
	MessageTypeDataEntry      = "data_entry"
	MessageTypeAIResponse     = "ai_response"
	MessageTypeCommand        = "command"
)

// Interaction action types.
const (
	ActionButtonClick     = "button_click"
	ActionCommand         = "command"
	ActionImageProcessed  = "image_processed"
	ActionDataEntry       = "data_entry"
	ActionAIChat          = "ai_chat"
	ActionPreferenceSet   = "preference_updated"
	ActionMessagesEdited  = "messages_edited"
	ActionExternalFailure = "external_failure"
)

type Interaction struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	ActionType string    `db:"action_type" json:"action_type"`
	ActionData *string   `db:"action_data" json:"action_data"`
	Timestamp  time.Time `db:"timestamp" json:"timestamp"`
}

// Message is a log row. Text holds either the raw user text or, for
// processed images and data entries, the extracted key=value string.
type Message struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ChatID    int64     `db:"chat_id" json:"chat_id"`
	MessageID int       `db:"message_id" json:"message_id"`
	Text      *string   `db:"message_text" json:"message_text"`
	Type      string    `db:"message_type" json:"message_type"`
	HasMedia  bool      `db:"has_media" json:"has_media"`
	MediaType *string   `db:"media_type" json:"media_type"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

type ImageResult struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	MessageID      int       `db:"message_id" json:"message_id"`
	FileID         string    `db:"file_id" json:"file_id"`
	GeminiResponse *string   `db:"gemini_response" json:"gemini_response"`
	ProcessedAt    time.Time `db:"processed_at" json:"processed_at"`
}

// ActivityCounts aggregates a single user's rows.
type ActivityCounts struct {
	Messages     int `db:"messages" json:"messages"`
	Interactions int `db:"interactions" json:"interactions"`
	Images       int `db:"images" json:"images"`
}

// MessageEdit is one change submitted from the message editor web app.
type MessageEdit struct {
	ID   int64  `json:"id" binding:"required"`
	Text string `json:"message_text"`
}

func StringPtr(s string) *string {
	return &s
}
