package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-rooms/access"
	"github.com/goliatone/go-rooms/pkg/types"
	"github.com/google/uuid"
)

// ProfileUpdateInput applies a partial update to a user profile. Username
// changes go through the same format and uniqueness rules as provisioning.
type ProfileUpdateInput struct {
	UserID uuid.UUID
	Patch  types.ProfilePatch
	Actor  types.ActorRef
	Result *types.UserProfile
}

// Type implements gocommand.Message.
func (ProfileUpdateInput) Type() string {
	return "command.profile.update"
}

// Validate implements gocommand.Message.
func (input ProfileUpdateInput) Validate() error {
	switch {
	case input.UserID == uuid.Nil:
		return ErrUserIDRequired
	case input.Actor.ID == uuid.Nil:
		return ErrActorRequired
	}
	if input.Patch.Username != nil && !usernamePattern.MatchString(strings.TrimSpace(*input.Patch.Username)) {
		return ErrUsernameInvalid
	}
	return nil
}

// ProfileUpdateCommand mutates profile rows on behalf of their owner.
type ProfileUpdateCommand struct {
	profiles types.ProfileRepository
	clock    types.Clock
	hooks    types.Hooks
	logger   types.Logger
	guard    access.Guard
}

// ProfileUpdateCommandConfig wires dependencies for profile updates.
type ProfileUpdateCommandConfig struct {
	Profiles types.ProfileRepository
	Clock    types.Clock
	Hooks    types.Hooks
	Logger   types.Logger
	Guard    access.Guard
}

// NewProfileUpdateCommand constructs the profile update handler.
func NewProfileUpdateCommand(cfg ProfileUpdateCommandConfig) *ProfileUpdateCommand {
	return &ProfileUpdateCommand{
		profiles: cfg.Profiles,
		clock:    safeClock(cfg.Clock),
		hooks:    safeHooks(cfg.Hooks),
		logger:   safeLogger(cfg.Logger),
		guard:    safeGuard(cfg.Guard),
	}
}

var _ gocommand.Commander[ProfileUpdateInput] = (*ProfileUpdateCommand)(nil)

// Execute applies the patch to the stored profile.
func (c *ProfileUpdateCommand) Execute(ctx context.Context, input ProfileUpdateInput) error {
	if c.profiles == nil {
		return types.ErrMissingProfileRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}
	if err := c.guard.Enforce(ctx, input.Actor, types.PolicyActionProfilesWrite, input.UserID); err != nil {
		return err
	}

	existing, err := c.profiles.GetProfile(ctx, input.UserID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrProfileNotFound
	}

	if input.Patch.Username != nil {
		desired := strings.TrimSpace(*input.Patch.Username)
		if !strings.EqualFold(desired, existing.Username) {
			holder, err := c.profiles.GetProfileByUsername(ctx, desired)
			if err != nil {
				return err
			}
			if holder != nil && holder.UserID != input.UserID {
				return ErrUsernameTaken
			}
		}
		existing.Username = desired
	}
	if input.Patch.AvatarURL != nil {
		existing.AvatarURL = strings.TrimSpace(*input.Patch.AvatarURL)
	}

	updated, err := c.profiles.UpdateProfile(ctx, *existing)
	if err != nil {
		return err
	}

	emitProfileHook(ctx, c.hooks, types.ProfileEvent{
		UserID:     updated.UserID,
		ActorID:    input.Actor.ID,
		OccurredAt: now(c.clock),
		Profile:    *updated,
	})

	if input.Result != nil {
		*input.Result = *updated
	}
	return nil
}
