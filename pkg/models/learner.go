package models

import "time"

// Learner is an account that owns a word list.
type Learner struct {
	ID             int64     `json:"id" db:"id"`
	Username       string    `json:"username" db:"username"` // email address
	PasswordHash   string    `json:"-" db:"password_hash"`
	WantsUpdates   bool      `json:"wants_updates" db:"wants_updates"`
	TelegramChatID *int64    `json:"telegram_chat_id,omitempty" db:"telegram_chat_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
