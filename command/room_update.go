package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-rooms/access"
	"github.com/goliatone/go-rooms/pkg/types"
	"github.com/google/uuid"
)

// RoomUpdateInput renames an existing room. Only the host may update it.
type RoomUpdateInput struct {
	RoomID uuid.UUID
	Title  string
	Actor  types.ActorRef
	Result *types.Room
}

// Type implements gocommand.Message.
func (RoomUpdateInput) Type() string {
	return "command.room.update"
}

// Validate implements gocommand.Message.
func (input RoomUpdateInput) Validate() error {
	switch {
	case input.RoomID == uuid.Nil:
		return ErrRoomIDRequired
	case strings.TrimSpace(input.Title) == "":
		return ErrRoomTitleRequired
	case input.Actor.ID == uuid.Nil:
		return ErrActorRequired
	default:
		return nil
	}
}

// RoomUpdateCommand applies host edits to a room.
type RoomUpdateCommand struct {
	rooms  types.RoomRepository
	clock  types.Clock
	hooks  types.Hooks
	logger types.Logger
	guard  access.Guard
}

// RoomUpdateCommandConfig wires dependencies for room updates.
type RoomUpdateCommandConfig struct {
	Rooms  types.RoomRepository
	Clock  types.Clock
	Hooks  types.Hooks
	Logger types.Logger
	Guard  access.Guard
}

// NewRoomUpdateCommand constructs the room update handler.
func NewRoomUpdateCommand(cfg RoomUpdateCommandConfig) *RoomUpdateCommand {
	return &RoomUpdateCommand{
		rooms:  cfg.Rooms,
		clock:  safeClock(cfg.Clock),
		hooks:  safeHooks(cfg.Hooks),
		logger: safeLogger(cfg.Logger),
		guard:  safeGuard(cfg.Guard),
	}
}

var _ gocommand.Commander[RoomUpdateInput] = (*RoomUpdateCommand)(nil)

// Execute renames the room after verifying the actor hosts it.
func (c *RoomUpdateCommand) Execute(ctx context.Context, input RoomUpdateInput) error {
	if c.rooms == nil {
		return types.ErrMissingRoomRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}

	existing, err := c.rooms.GetRoom(ctx, input.RoomID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrRoomNotFound
	}
	if err := c.guard.Enforce(ctx, input.Actor, types.PolicyActionRoomsWrite, existing.HostID); err != nil {
		return err
	}

	existing.Title = strings.TrimSpace(input.Title)
	updated, err := c.rooms.UpdateRoom(ctx, *existing)
	if err != nil {
		return err
	}

	emitRoomHook(ctx, c.hooks, types.RoomEvent{
		RoomID:     updated.ID,
		HostID:     updated.HostID,
		Action:     "room.updated",
		ActorID:    input.Actor.ID,
		OccurredAt: now(c.clock),
	})

	if input.Result != nil {
		*input.Result = *updated
	}
	return nil
}

// RoomEndInput closes a room, removing it and its participant rows.
type RoomEndInput struct {
	RoomID uuid.UUID
	Actor  types.ActorRef
}

// Type implements gocommand.Message.
func (RoomEndInput) Type() string {
	return "command.room.end"
}

// Validate implements gocommand.Message.
func (input RoomEndInput) Validate() error {
	switch {
	case input.RoomID == uuid.Nil:
		return ErrRoomIDRequired
	case input.Actor.ID == uuid.Nil:
		return ErrActorRequired
	default:
		return nil
	}
}

// RoomEndCommand deletes rooms on behalf of their host.
type RoomEndCommand struct {
	rooms  types.RoomRepository
	clock  types.Clock
	hooks  types.Hooks
	logger types.Logger
	guard  access.Guard
}

// RoomEndCommandConfig wires dependencies for ending rooms.
type RoomEndCommandConfig struct {
	Rooms  types.RoomRepository
	Clock  types.Clock
	Hooks  types.Hooks
	Logger types.Logger
	Guard  access.Guard
}

// NewRoomEndCommand constructs the room end handler.
func NewRoomEndCommand(cfg RoomEndCommandConfig) *RoomEndCommand {
	return &RoomEndCommand{
		rooms:  cfg.Rooms,
		clock:  safeClock(cfg.Clock),
		hooks:  safeHooks(cfg.Hooks),
		logger: safeLogger(cfg.Logger),
		guard:  safeGuard(cfg.Guard),
	}
}

var _ gocommand.Commander[RoomEndInput] = (*RoomEndCommand)(nil)

// Execute deletes the room after verifying the actor hosts it.
func (c *RoomEndCommand) Execute(ctx context.Context, input RoomEndInput) error {
	if c.rooms == nil {
		return types.ErrMissingRoomRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}

	existing, err := c.rooms.GetRoom(ctx, input.RoomID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrRoomNotFound
	}
	if err := c.guard.Enforce(ctx, input.Actor, types.PolicyActionRoomsWrite, existing.HostID); err != nil {
		return err
	}

	if err := c.rooms.DeleteRoom(ctx, input.RoomID); err != nil {
		return err
	}

	emitRoomHook(ctx, c.hooks, types.RoomEvent{
		RoomID:     existing.ID,
		HostID:     existing.HostID,
		Action:     "room.ended",
		ActorID:    input.Actor.ID,
		OccurredAt: now(c.clock),
	})
	return nil
}
