package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-rooms/access"
	"github.com/goliatone/go-rooms/pkg/types"
	"github.com/google/uuid"
)

// RoomJoinInput seats a user in a room. InviteToken is optional; when set the
// signed invite is validated and consumed as part of the join.
type RoomJoinInput struct {
	RoomID      uuid.UUID
	UserID      uuid.UUID
	InviteToken string
	Actor       types.ActorRef
	Result      *types.RoomParticipant
}

// Type implements gocommand.Message.
func (RoomJoinInput) Type() string {
	return "command.room.join"
}

// Validate implements gocommand.Message.
func (input RoomJoinInput) Validate() error {
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

// RoomJoinCommand adds participants to rooms, optionally redeeming an invite.
type RoomJoinCommand struct {
	rooms   types.RoomRepository
	invites types.InviteRepository
	manager types.SecureLinkManager
	clock   types.Clock
	hooks   types.Hooks
	logger  types.Logger
	guard   access.Guard
}

// RoomJoinCommandConfig wires dependencies for the join flow. Invites and
// SecureLinks are only required when invite tokens will be presented.
type RoomJoinCommandConfig struct {
	Rooms       types.RoomRepository
	Invites     types.InviteRepository
	SecureLinks types.SecureLinkManager
	Clock       types.Clock
	Hooks       types.Hooks
	Logger      types.Logger
	Guard       access.Guard
}

// NewRoomJoinCommand constructs the join handler.
func NewRoomJoinCommand(cfg RoomJoinCommandConfig) *RoomJoinCommand {
	return &RoomJoinCommand{
		rooms:   cfg.Rooms,
		invites: cfg.Invites,
		manager: cfg.SecureLinks,
		clock:   safeClock(cfg.Clock),
		hooks:   safeHooks(cfg.Hooks),
		logger:  safeLogger(cfg.Logger),
		guard:   safeGuard(cfg.Guard),
	}
}

var _ gocommand.Commander[RoomJoinInput] = (*RoomJoinCommand)(nil)

// Execute seats the user, first redeeming the invite token when one is given.
func (c *RoomJoinCommand) Execute(ctx context.Context, input RoomJoinInput) error {
	if c.rooms == nil {
		return types.ErrMissingRoomRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}
	if err := c.guard.Enforce(ctx, input.Actor, types.PolicyActionParticipantsWrite, input.UserID); err != nil {
		return err
	}

	room, err := c.rooms.GetRoom(ctx, input.RoomID)
	if err != nil {
		return err
	}
	if room == nil {
		return ErrRoomNotFound
	}

	if token := strings.TrimSpace(input.InviteToken); token != "" {
		if err := c.redeemInvite(ctx, input.RoomID, token); err != nil {
			return err
		}
	}

	participant, err := c.rooms.AddParticipant(ctx, input.RoomID, input.UserID)
	if err != nil {
		return err
	}

	emitRoomHook(ctx, c.hooks, types.RoomEvent{
		RoomID:     room.ID,
		HostID:     room.HostID,
		UserID:     input.UserID,
		Action:     "room.joined",
		ActorID:    input.Actor.ID,
		OccurredAt: now(c.clock),
	})

	if input.Result != nil && participant != nil {
		*input.Result = *participant
	}
	return nil
}

func (c *RoomJoinCommand) redeemInvite(ctx context.Context, roomID uuid.UUID, token string) error {
	if c.manager == nil {
		return types.ErrMissingSecureLinkManager
	}
	if c.invites == nil {
		return types.ErrMissingInviteRepository
	}

	claims, err := c.manager.Validate(token)
	if err != nil {
		return ErrInviteExpired
	}
	jti, _ := claims["jti"].(string)
	if strings.TrimSpace(jti) == "" {
		return ErrInviteNotFound
	}

	invite, err := c.invites.GetInviteByJTI(ctx, jti)
	if err != nil {
		return err
	}
	if invite == nil {
		return ErrInviteNotFound
	}
	if invite.RoomID != roomID {
		return ErrInviteRoomMismatch
	}
	if invite.Status != types.InviteStatusIssued {
		return ErrInviteAlreadyUsed
	}
	if invite.ExpiresAt != nil && now(c.clock).After(*invite.ExpiresAt) {
		return ErrInviteExpired
	}

	return c.invites.ConsumeInvite(ctx, jti, now(c.clock))
}
