package notify

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the persisted row in notifications.
type Record struct {
	bun.BaseModel `bun:"table:notifications"`

	ID               uuid.UUID      `bun:"id,pk,type:uuid"`
	UserID           uuid.UUID      `bun:"user_id,notnull,type:uuid"`
	Title            string         `bun:"title,notnull"`
	Body             string         `bun:"body"`
	NotificationType string         `bun:"notification_type,notnull"`
	Data             map[string]any `bun:"data,type:jsonb"`
	CreatedAt        time.Time      `bun:"created_at"`
}
