package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-rooms/access"
	"github.com/goliatone/go-rooms/pkg/types"
	"github.com/google/uuid"
)

// RoomQueryInput scopes single room lookups.
type RoomQueryInput struct {
	RoomID uuid.UUID
	Actor  types.ActorRef
}

// RoomQuery fetches room records.
type RoomQuery struct {
	repo  types.RoomRepository
	guard access.Guard
}

// NewRoomQuery constructs the room query helper.
func NewRoomQuery(repo types.RoomRepository, guard access.Guard) *RoomQuery {
	return &RoomQuery{
		repo:  repo,
		guard: safeGuard(guard),
	}
}

var _ gocommand.Querier[RoomQueryInput, *types.Room] = (*RoomQuery)(nil)

// Query returns the room for the supplied identifier, or nil when absent.
func (q *RoomQuery) Query(ctx context.Context, input RoomQueryInput) (*types.Room, error) {
	if q.repo == nil {
		return nil, types.ErrMissingRoomRepository
	}
	if input.RoomID == uuid.Nil {
		return nil, types.ErrRoomIDRequired
	}
	if err := q.guard.Enforce(ctx, input.Actor, types.PolicyActionRoomsRead, uuid.Nil); err != nil {
		return nil, err
	}
	return q.repo.GetRoom(ctx, input.RoomID)
}

// RoomParticipantsInput scopes the participant roster listing.
type RoomParticipantsInput struct {
	RoomID uuid.UUID
	Actor  types.ActorRef
}

// RoomParticipantsQuery lists the users currently seated in a room along with
// their display data, ordered by join time.
type RoomParticipantsQuery struct {
	repo  types.RoomRepository
	guard access.Guard
}

// NewRoomParticipantsQuery constructs the participant roster helper.
func NewRoomParticipantsQuery(repo types.RoomRepository, guard access.Guard) *RoomParticipantsQuery {
	return &RoomParticipantsQuery{
		repo:  repo,
		guard: safeGuard(guard),
	}
}

var _ gocommand.Querier[RoomParticipantsInput, []types.ParticipantInfo] = (*RoomParticipantsQuery)(nil)

// Query returns the (user id, username, avatar) tuples for the room.
func (q *RoomParticipantsQuery) Query(ctx context.Context, input RoomParticipantsInput) ([]types.ParticipantInfo, error) {
	if q.repo == nil {
		return nil, types.ErrMissingRoomRepository
	}
	if input.RoomID == uuid.Nil {
		return nil, types.ErrRoomIDRequired
	}
	if err := q.guard.Enforce(ctx, input.Actor, types.PolicyActionParticipantsRead, uuid.Nil); err != nil {
		return nil, err
	}
	return q.repo.ListParticipants(ctx, input.RoomID)
}
