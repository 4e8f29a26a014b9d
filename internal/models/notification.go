package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Notification — сохранённое уведомление пользователя. Данные события
// хранятся как JSON, чтобы клиент мог восстановить контекст после
// переподключения.
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Event     string          `db:"event" json:"event"`
	Data      json.RawMessage `db:"data" json:"data"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
