package types

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Identity is the read-only view of a user record owned by the external auth
// subsystem. Provisioning never writes to it; it only reads the identifier
// and the metadata map (username, avatar_url).
type Identity struct {
	ID        uuid.UUID
	Email     string
	Metadata  map[string]any
	CreatedAt *time.Time
	Raw       any
}

// IdentityRepository exposes the external identity records provisioning
// consumes.
type IdentityRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Identity, error)
}
