package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-rooms/access"
	"github.com/goliatone/go-rooms/pkg/types"
	"github.com/google/uuid"
)

// RoomCreateInput captures the payload for opening a new audio room.
type RoomCreateInput struct {
	Title  string
	HostID uuid.UUID
	Actor  types.ActorRef
	Result *types.Room
}

// Type implements gocommand.Message.
func (RoomCreateInput) Type() string {
	return "command.room.create"
}

// Validate implements gocommand.Message.
func (input RoomCreateInput) Validate() error {
	switch {
	case strings.TrimSpace(input.Title) == "":
		return ErrRoomTitleRequired
	case input.HostID == uuid.Nil:
		return ErrUserIDRequired
	case input.Actor.ID == uuid.Nil:
		return ErrActorRequired
	default:
		return nil
	}
}

// RoomCreateCommand opens rooms and seats the host as the first participant.
type RoomCreateCommand struct {
	rooms       types.RoomRepository
	clock       types.Clock
	hooks       types.Hooks
	logger      types.Logger
	guard       access.Guard
	featureGate featuregate.FeatureGate
}

// RoomCreateCommandConfig wires dependencies for room creation.
type RoomCreateCommandConfig struct {
	Rooms       types.RoomRepository
	Clock       types.Clock
	Hooks       types.Hooks
	Logger      types.Logger
	Guard       access.Guard
	FeatureGate featuregate.FeatureGate
}

// NewRoomCreateCommand constructs the room create handler.
func NewRoomCreateCommand(cfg RoomCreateCommandConfig) *RoomCreateCommand {
	return &RoomCreateCommand{
		rooms:       cfg.Rooms,
		clock:       safeClock(cfg.Clock),
		hooks:       safeHooks(cfg.Hooks),
		logger:      safeLogger(cfg.Logger),
		guard:       safeGuard(cfg.Guard),
		featureGate: cfg.FeatureGate,
	}
}

var _ gocommand.Commander[RoomCreateInput] = (*RoomCreateCommand)(nil)

// Execute creates the room and adds the host to the participant list.
func (c *RoomCreateCommand) Execute(ctx context.Context, input RoomCreateInput) error {
	if c.rooms == nil {
		return types.ErrMissingRoomRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}
	if err := c.guard.Enforce(ctx, input.Actor, types.PolicyActionRoomsWrite, input.HostID); err != nil {
		return err
	}
	if enabled, err := featureEnabled(ctx, c.featureGate, featureRoomsCreate, input.HostID); err != nil {
		return err
	} else if !enabled {
		return ErrRoomCreateDisabled
	}

	created, err := c.rooms.CreateRoom(ctx, types.Room{
		Title:  strings.TrimSpace(input.Title),
		HostID: input.HostID,
	})
	if err != nil {
		return err
	}

	if _, err := c.rooms.AddParticipant(ctx, created.ID, input.HostID); err != nil {
		c.logger.Error("failed to seat host in new room", err,
			"room_id", created.ID.String(),
			"host_id", input.HostID.String(),
		)
	}

	emitRoomHook(ctx, c.hooks, types.RoomEvent{
		RoomID:     created.ID,
		HostID:     created.HostID,
		UserID:     input.HostID,
		Action:     "room.created",
		ActorID:    input.Actor.ID,
		OccurredAt: now(c.clock),
	})

	if input.Result != nil {
		*input.Result = *created
	}
	return nil
}
