package invites

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the persisted room_invites row.
type Record struct {
	bun.BaseModel `bun:"table:room_invites"`

	ID        uuid.UUID  `bun:"id,pk,type:uuid"`
	RoomID    uuid.UUID  `bun:"room_id,notnull,type:uuid"`
	IssuerID  uuid.UUID  `bun:"issuer_id,notnull,type:uuid"`
	JTI       string     `bun:"jti,notnull"`
	Status    string     `bun:"status,notnull"`
	IssuedAt  *time.Time `bun:"issued_at,nullzero"`
	ExpiresAt *time.Time `bun:"expires_at,nullzero"`
	UsedAt    *time.Time `bun:"used_at,nullzero"`
	CreatedAt time.Time  `bun:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at"`
}
