package command

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-rooms/access"
	"github.com/goliatone/go-rooms/pkg/types"
	"github.com/google/uuid"
)

// RoomLeaveInput removes a user from a room. Users remove themselves; hosts
// and admins may remove anyone.
type RoomLeaveInput struct {
	RoomID uuid.UUID
	UserID uuid.UUID
	Actor  types.ActorRef
}

// Type implements gocommand.Message.
func (RoomLeaveInput) Type() string {
	return "command.room.leave"
}

// Validate implements gocommand.Message.
func (input RoomLeaveInput) Validate() error {
	switch {
	case input.RoomID == uuid.Nil:
		return ErrRoomIDRequired
	case input.UserID == uuid.Nil:
		return ErrUserIDRequired
	case input.Actor.ID == uuid.Nil:
		return ErrActorRequired
	default:
		return nil
	}
}

// RoomLeaveCommand removes participant rows.
type RoomLeaveCommand struct {
	rooms  types.RoomRepository
	clock  types.Clock
	hooks  types.Hooks
	logger types.Logger
	guard  access.Guard
}

// RoomLeaveCommandConfig wires dependencies for the leave flow.
type RoomLeaveCommandConfig struct {
	Rooms  types.RoomRepository
	Clock  types.Clock
	Hooks  types.Hooks
	Logger types.Logger
	Guard  access.Guard
}

// NewRoomLeaveCommand constructs the leave handler.
func NewRoomLeaveCommand(cfg RoomLeaveCommandConfig) *RoomLeaveCommand {
	return &RoomLeaveCommand{
		rooms:  cfg.Rooms,
		clock:  safeClock(cfg.Clock),
		hooks:  safeHooks(cfg.Hooks),
		logger: safeLogger(cfg.Logger),
		guard:  safeGuard(cfg.Guard),
	}
}

var _ gocommand.Commander[RoomLeaveInput] = (*RoomLeaveCommand)(nil)

// Execute removes the participant row. A self-leave is owned by the leaving
// user; an eviction targets someone else's row and is only legitimate when the
// actor owns the room, so the guard is enforced against the host instead.
func (c *RoomLeaveCommand) Execute(ctx context.Context, input RoomLeaveInput) error {
	if c.rooms == nil {
		return types.ErrMissingRoomRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}

	room, err := c.rooms.GetRoom(ctx, input.RoomID)
	if err != nil {
		return err
	}
	if room == nil {
		return ErrRoomNotFound
	}

	owner := input.UserID
	if input.UserID != input.Actor.ID {
		// Eviction: the host controls membership of their room.
		owner = room.HostID
	}
	if err := c.guard.Enforce(ctx, input.Actor, types.PolicyActionParticipantsWrite, owner); err != nil {
		return err
	}

	if err := c.rooms.RemoveParticipant(ctx, input.RoomID, input.UserID); err != nil {
		return err
	}

	emitRoomHook(ctx, c.hooks, types.RoomEvent{
		RoomID:     room.ID,
		HostID:     room.HostID,
		UserID:     input.UserID,
		Action:     "room.left",
		ActorID:    input.Actor.ID,
		OccurredAt: now(c.clock),
	})
	return nil
}
