package validation

import (
	"context"
	"errors"

	"github.com/goliatone/go-auth/middleware/jwtware"
	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-rooms/command"
	"github.com/goliatone/go-rooms/pkg/authctx"
	"github.com/goliatone/go-rooms/pkg/schema"
	"github.com/goliatone/go-rooms/pkg/types"
	"github.com/google/uuid"
)

// ListenerOptions customize the validation listener behaviour. SchemaNotifier
// is typically a schema.Notifier shared with the schema registry so admin
// consumers learn about validated actors.
type ListenerOptions struct {
	Profiles       types.ProfileRepository
	Identities     types.IdentityRepository
	Provision      gocommand.Commander[command.ProvisionUserInput]
	Logger         types.Logger
	SchemaNotifier schema.ChangePublisher
}

// NewListener returns a jwtware.ValidationListener that lazily provisions
// first-time users and notifies schema observers whenever a token validates.
// Provisioning failures are logged, never surfaced, so a slow or failing
// onboarding path cannot block authentication.
func NewListener(opts ListenerOptions) jwtware.ValidationListener {
	logger := opts.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return func(ctx router.Context, claims jwtware.AuthClaims) error {
		actorCtx, err := authctx.ResolveActorContextFromRouter(ctx)
		if err != nil {
			logger.Error("validation listener failed to resolve actor", err)
			return nil
		}
		actorID := parseUUID(actorCtx.ActorID)

		if opts.Provision != nil && opts.Profiles != nil && actorID != uuid.Nil {
			if err := provisionIfMissing(ctx.Context(), opts, actorID, actorCtx.Role); err != nil {
				logger.Error("lazy provisioning failed", err, "user_id", actorID.String())
			}
		}

		if opts.SchemaNotifier != nil {
			opts.SchemaNotifier.Notify(ctx.Context(), actorID, actorCtx.Metadata)
		}
		return nil
	}
}

func provisionIfMissing(ctx context.Context, opts ListenerOptions, userID uuid.UUID, role string) error {
	profile, err := opts.Profiles.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if profile != nil {
		return nil
	}

	input := command.ProvisionUserInput{
		UserID: userID,
		Actor:  types.ActorRef{ID: userID, Type: role},
	}
	if opts.Identities != nil {
		identity, err := opts.Identities.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if identity != nil {
			if username, ok := identity.Metadata[types.MetadataKeyUsername].(string); ok {
				input.Username = username
			}
			if avatar, ok := identity.Metadata[types.MetadataKeyAvatarURL].(string); ok {
				input.AvatarURL = avatar
			}
		}
	}
	if input.Username == "" {
		// Nothing to claim yet; the user picks a username during signup.
		return nil
	}

	err = opts.Provision.Execute(ctx, input)
	if errors.Is(err, command.ErrUserAlreadyProvisioned) {
		return nil
	}
	return err
}

func parseUUID(value string) uuid.UUID {
	if value == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil
	}
	return id
}
