package models

import "time"

// User is a Telegram account that has written to the bot.
type User struct {
	ID           int64     `db:"user_id" json:"user_id"`
	Username     string    `db:"username" json:"username"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	LanguageCode string    `db:"language_code" json:"language_code"`
	IsBot        bool      `db:"is_bot" json:"is_bot"`
	ChatID       int64     `db:"chat_id" json:"chat_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	LastActivity time.Time `db:"last_activity" json:"last_activity"`
}

// DisplayName prefers the first name and falls back to the username.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "user"
}
