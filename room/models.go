package room

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RoomRecord models the audio_rooms row.
type RoomRecord struct {
	bun.BaseModel `bun:"table:audio_rooms"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	Title     string    `bun:"title,notnull"`
	HostID    uuid.UUID `bun:"host_id,notnull,type:uuid"`
	CreatedAt time.Time `bun:"created_at"`
	UpdatedAt time.Time `bun:"updated_at"`
}

// ParticipantRecord models the audio_room_participants join row. The schema
// enforces at most one row per (room_id, user_id) pair.
type ParticipantRecord struct {
	bun.BaseModel `bun:"table:audio_room_participants"`

	ID       uuid.UUID `bun:"id,pk,type:uuid"`
	RoomID   uuid.UUID `bun:"room_id,notnull,type:uuid"`
	UserID   uuid.UUID `bun:"user_id,notnull,type:uuid"`
	JoinedAt time.Time `bun:"joined_at"`
}
