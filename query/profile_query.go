package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-rooms/access"
	"github.com/goliatone/go-rooms/pkg/types"
	"github.com/google/uuid"
)

// ProfileQueryInput scopes profile lookups.
type ProfileQueryInput struct {
	UserID uuid.UUID
	Actor  types.ActorRef
}

// ProfileQuery fetches user profile records.
type ProfileQuery struct {
	repo  types.ProfileRepository
	guard access.Guard
}

// NewProfileQuery constructs the profile query helper.
func NewProfileQuery(repo types.ProfileRepository, guard access.Guard) *ProfileQuery {
	return &ProfileQuery{
		repo:  repo,
		guard: safeGuard(guard),
	}
}

var _ gocommand.Querier[ProfileQueryInput, *types.UserProfile] = (*ProfileQuery)(nil)

// Query returns the profile for the supplied user.
func (q *ProfileQuery) Query(ctx context.Context, input ProfileQueryInput) (*types.UserProfile, error) {
	if q.repo == nil {
		return nil, types.ErrMissingProfileRepository
	}
	if input.UserID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	if err := q.guard.Enforce(ctx, input.Actor, types.PolicyActionProfilesRead, input.UserID); err != nil {
		return nil, err
	}
	return q.repo.GetProfile(ctx, input.UserID)
}
