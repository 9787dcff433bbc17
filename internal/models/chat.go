package models

import "time"

// ChatMessage — одно сообщение диалога, хранится упорядоченно по пользователю.
// Записи только добавляются и вытесняются из окна, никогда не изменяются.
type ChatMessage struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"` // user, assistant
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
