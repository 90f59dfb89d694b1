package command

import (
	"context"
	"time"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-rooms/access"
	"github.com/goliatone/go-rooms/pkg/types"
	"github.com/google/uuid"
)

const defaultInviteTTL = 72 * time.Hour

// SecureLinkRouteRoomJoin is the route key invite links are generated for.
const SecureLinkRouteRoomJoin = "room-join"

// RoomInviteInput issues a signed invite link for a room.
type RoomInviteInput struct {
	RoomID uuid.UUID
	Actor  types.ActorRef
	Result *RoomInviteResult
}

// Type implements gocommand.Message.
func (RoomInviteInput) Type() string {
	return "command.room.invite"
}

// Validate implements gocommand.Message.
func (input RoomInviteInput) Validate() error {
	switch {
	case input.RoomID == uuid.Nil:
		return ErrRoomIDRequired
	case input.Actor.ID == uuid.Nil:
		return ErrActorRequired
	default:
		return nil
	}
}

// RoomInviteResult exposes the generated link and token metadata.
type RoomInviteResult struct {
	Invite    *types.RoomInvite
	Token     string
	ExpiresAt time.Time
}

// RoomInviteCommand issues single-use invite links signed by the securelink
// manager and tracked in the invite repository.
type RoomInviteCommand struct {
	rooms    types.RoomRepository
	invites  types.InviteRepository
	manager  types.SecureLinkManager
	clock    types.Clock
	idGen    types.IDGenerator
	hooks    types.Hooks
	logger   types.Logger
	guard    access.Guard
	tokenTTL time.Duration
	route    string
}

// RoomInviteCommandConfig wires dependencies for the invite flow.
type RoomInviteCommandConfig struct {
	Rooms       types.RoomRepository
	Invites     types.InviteRepository
	SecureLinks types.SecureLinkManager
	Clock       types.Clock
	IDGen       types.IDGenerator
	Hooks       types.Hooks
	Logger      types.Logger
	Guard       access.Guard
	TokenTTL    time.Duration
	Route       string
}

// NewRoomInviteCommand constructs the invite handler.
func NewRoomInviteCommand(cfg RoomInviteCommandConfig) *RoomInviteCommand {
	ttl := cfg.TokenTTL
	if ttl == 0 && cfg.SecureLinks != nil {
		ttl = cfg.SecureLinks.GetExpiration()
	}
	if ttl == 0 {
		ttl = defaultInviteTTL
	}
	route := cfg.Route
	if route == "" {
		route = SecureLinkRouteRoomJoin
	}
	return &RoomInviteCommand{
		rooms:    cfg.Rooms,
		invites:  cfg.Invites,
		manager:  cfg.SecureLinks,
		clock:    safeClock(cfg.Clock),
		idGen:    safeIDGen(cfg.IDGen),
		hooks:    safeHooks(cfg.Hooks),
		logger:   safeLogger(cfg.Logger),
		guard:    safeGuard(cfg.Guard),
		tokenTTL: ttl,
		route:    route,
	}
}

var _ gocommand.Commander[RoomInviteInput] = (*RoomInviteCommand)(nil)

// Execute signs and records a new invite for the room.
func (c *RoomInviteCommand) Execute(ctx context.Context, input RoomInviteInput) error {
	if c.rooms == nil {
		return types.ErrMissingRoomRepository
	}
	if c.invites == nil {
		return types.ErrMissingInviteRepository
	}
	if c.manager == nil {
		return types.ErrMissingSecureLinkManager
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
	if err := c.guard.Enforce(ctx, input.Actor, types.PolicyActionRoomsWrite, room.HostID); err != nil {
		return err
	}

	issuedAt := now(c.clock)
	expiresAt := issuedAt.Add(c.tokenTTL)
	jti := c.idGen.UUID().String()

	token, err := c.manager.Generate(c.route, types.SecureLinkPayload{
		"jti":        jti,
		"room_id":    room.ID.String(),
		"issuer_id":  input.Actor.ID.String(),
		"issued_at":  issuedAt.Unix(),
		"expires_at": expiresAt.Unix(),
	})
	if err != nil {
		return err
	}

	invite, err := c.invites.CreateInvite(ctx, types.RoomInvite{
		RoomID:    room.ID,
		IssuerID:  input.Actor.ID,
		JTI:       jti,
		Status:    types.InviteStatusIssued,
		IssuedAt:  &issuedAt,
		ExpiresAt: &expiresAt,
	})
	if err != nil {
		return err
	}

	if input.Result != nil {
		*input.Result = RoomInviteResult{
			Invite:    invite,
			Token:     token,
			ExpiresAt: expiresAt,
		}
	}
	return nil
}
