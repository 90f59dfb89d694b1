package goauth

import (
	auth "github.com/goliatone/go-auth"
	"github.com/goliatone/go-rooms/command"
	"github.com/goliatone/go-rooms/pkg/types"
)

// IdentityToDomain converts the go-auth user model into a go-rooms identity.
func IdentityToDomain(user *auth.User) *types.Identity {
	return toIdentity(user)
}

// ProvisionInputFromIdentity seeds a provisioning command from an identity
// record. Username and avatar fall back to the identity metadata keys when
// they are present.
func ProvisionInputFromIdentity(identity *types.Identity, actor types.ActorRef) command.ProvisionUserInput {
	input := command.ProvisionUserInput{Actor: actor}
	if identity == nil {
		return input
	}
	input.UserID = identity.ID
	if username, ok := identity.Metadata[types.MetadataKeyUsername].(string); ok {
		input.Username = username
	}
	if avatar, ok := identity.Metadata[types.MetadataKeyAvatarURL].(string); ok {
		input.AvatarURL = avatar
	}
	return input
}
