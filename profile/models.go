package profile

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the user_profiles row. Username is stored case-preserving;
// uniqueness is enforced case-insensitively by the schema.
type Record struct {
	bun.BaseModel `bun:"table:user_profiles"`

	UserID    uuid.UUID `bun:"user_id,pk,type:uuid"`
	Username  string    `bun:"username,notnull"`
	AvatarURL string    `bun:"avatar_url"`
	CreatedAt time.Time `bun:"created_at"`
	UpdatedAt time.Time `bun:"updated_at"`
}
