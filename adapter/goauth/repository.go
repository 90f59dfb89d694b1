package goauth

import (
	"context"

	auth "github.com/goliatone/go-auth"
	"github.com/goliatone/go-rooms/pkg/types"
	"github.com/google/uuid"
)

// IdentityAdapter wraps go-auth Users repositories so the host's auth users
// table can seed provisioning without go-rooms owning those rows.
type IdentityAdapter struct {
	repo auth.Users
}

// NewIdentityAdapter builds an IdentityAdapter around the upstream repository.
func NewIdentityAdapter(repo auth.Users) *IdentityAdapter {
	return &IdentityAdapter{repo: repo}
}

var _ types.IdentityRepository = (*IdentityAdapter)(nil)

// GetByID loads the identity record by UUID.
func (a *IdentityAdapter) GetByID(ctx context.Context, id uuid.UUID) (*types.Identity, error) {
	record, err := a.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, err
	}
	return toIdentity(record), nil
}

func toIdentity(user *auth.User) *types.Identity {
	if user == nil {
		return nil
	}
	return &types.Identity{
		ID:        user.ID,
		Email:     user.Email,
		Metadata:  copyMetadata(user.Metadata),
		CreatedAt: user.CreatedAt,
		Raw:       user,
	}
}

func copyMetadata(origin map[string]any) map[string]any {
	if len(origin) == 0 {
		return nil
	}
	out := make(map[string]any, len(origin))
	for k, v := range origin {
		out[k] = v
	}
	return out
}
