package command

import (
	"errors"

	"github.com/goliatone/go-rooms/pkg/types"
)

var (
	// ErrActorRequired indicates an actor reference was not supplied.
	ErrActorRequired = types.ErrActorRequired
	// ErrUserIDRequired occurs when a command omits the target user.
	ErrUserIDRequired = types.ErrUserIDRequired
	// ErrRoomIDRequired occurs when a room command omits the room id.
	ErrRoomIDRequired = types.ErrRoomIDRequired
	// ErrUsernameRequired indicates provisioning was invoked without a username.
	ErrUsernameRequired = errors.New("go-rooms: username required")
	// ErrUsernameInvalid indicates the username fails the format rules.
	ErrUsernameInvalid = errors.New("go-rooms: username must be 3-20 characters of letters, digits, underscore, or hyphen")
	// ErrUsernameTaken indicates another user already holds the username.
	ErrUsernameTaken = errors.New("go-rooms: username already taken")
	// ErrUserAlreadyProvisioned indicates the user already has a profile row.
	ErrUserAlreadyProvisioned = errors.New("go-rooms: user already provisioned")
	// ErrProvisioningExhausted indicates every retry attempt hit a uniqueness race.
	ErrProvisioningExhausted = errors.New("go-rooms: provisioning retries exhausted")
	// ErrRoomTitleRequired occurs when a room is created without a title.
	ErrRoomTitleRequired = errors.New("go-rooms: room title required")
	// ErrRoomNotFound indicates the requested room does not exist.
	ErrRoomNotFound = errors.New("go-rooms: room not found")
	// ErrRoomCreateDisabled indicates room creation is disabled via feature gate.
	ErrRoomCreateDisabled = errors.New("go-rooms: room creation disabled")
	// ErrProfileNotFound indicates the target profile does not exist.
	ErrProfileNotFound = errors.New("go-rooms: profile not found")
	// ErrInviteTokenRequired indicates a join was attempted with an empty token.
	ErrInviteTokenRequired = errors.New("go-rooms: invite token required")
	// ErrInviteNotFound indicates no invite matches the presented token.
	ErrInviteNotFound = errors.New("go-rooms: invite not found")
	// ErrInviteExpired indicates the invite token expired.
	ErrInviteExpired = errors.New("go-rooms: invite expired")
	// ErrInviteAlreadyUsed indicates the invite token was already consumed.
	ErrInviteAlreadyUsed = types.ErrInviteAlreadyUsed
	// ErrInviteRoomMismatch indicates the invite was issued for a different room.
	ErrInviteRoomMismatch = errors.New("go-rooms: invite room mismatch")
)
