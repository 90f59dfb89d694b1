package command

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	gocommand "github.com/goliatone/go-command"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-rooms/access"
	"github.com/goliatone/go-rooms/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

const (
	defaultProvisionAttempts = 3
	defaultBackoffBase       = time.Second
	defaultAvatarBaseURL     = "https://avatars.dicebear.com/api/initials"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)

// ProvisionUserInput carries the payload for the onboarding workflow.
type ProvisionUserInput struct {
	UserID    uuid.UUID
	Username  string
	AvatarURL string
	Actor     types.ActorRef
	Result    *types.UserProfile
}

// Type implements gocommand.Message.
func (ProvisionUserInput) Type() string {
	return "command.user.provision"
}

// Validate implements gocommand.Message.
func (input ProvisionUserInput) Validate() error {
	switch {
	case input.UserID == uuid.Nil:
		return ErrUserIDRequired
	case strings.TrimSpace(input.Username) == "":
		return ErrUsernameRequired
	case !usernamePattern.MatchString(strings.TrimSpace(input.Username)):
		return ErrUsernameInvalid
	case input.Actor.ID == uuid.Nil && !input.Actor.IsService():
		return ErrActorRequired
	default:
		return nil
	}
}

// ProvisionUserCommand runs the full onboarding workflow: it claims the
// username, writes the profile, balance, and welcome bonus rows atomically,
// and retries with exponential backoff when a concurrent signup races the
// same username. Partial rows from a failed attempt are purged best-effort
// before each retry and before returning an error.
type ProvisionUserCommand struct {
	store       types.ProvisioningStore
	profiles    types.ProfileRepository
	clock       types.Clock
	idGen       types.IDGenerator
	hooks       types.Hooks
	logger      types.Logger
	guard       access.Guard
	featureGate featuregate.FeatureGate
	attempts    int
	backoffBase time.Duration
	sleep       func(context.Context, time.Duration) error
	avatarBase  string
}

// ProvisionCommandConfig wires dependencies for the provisioning workflow.
type ProvisionCommandConfig struct {
	Store       types.ProvisioningStore
	Profiles    types.ProfileRepository
	Clock       types.Clock
	IDGen       types.IDGenerator
	Hooks       types.Hooks
	Logger      types.Logger
	Guard       access.Guard
	FeatureGate featuregate.FeatureGate
	// MaxAttempts bounds the uniqueness-race retry loop. Defaults to 3.
	MaxAttempts int
	// BackoffBase is the first retry delay; each retry doubles it. Defaults
	// to one second.
	BackoffBase time.Duration
	// Sleep overrides the backoff wait, letting tests skip real delays.
	Sleep func(context.Context, time.Duration) error
	// AvatarBaseURL overrides the placeholder avatar service used when no
	// avatar is supplied.
	AvatarBaseURL string
}

// NewProvisionUserCommand constructs the provisioning handler.
func NewProvisionUserCommand(cfg ProvisionCommandConfig) *ProvisionUserCommand {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultProvisionAttempts
	}
	backoff := cfg.BackoffBase
	if backoff <= 0 {
		backoff = defaultBackoffBase
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	avatarBase := strings.TrimSpace(cfg.AvatarBaseURL)
	if avatarBase == "" {
		avatarBase = defaultAvatarBaseURL
	}
	return &ProvisionUserCommand{
		store:       cfg.Store,
		profiles:    cfg.Profiles,
		clock:       safeClock(cfg.Clock),
		idGen:       safeIDGen(cfg.IDGen),
		hooks:       safeHooks(cfg.Hooks),
		logger:      safeLogger(cfg.Logger),
		guard:       safeGuard(cfg.Guard),
		featureGate: cfg.FeatureGate,
		attempts:    attempts,
		backoffBase: backoff,
		sleep:       sleep,
		avatarBase:  avatarBase,
	}
}

var _ gocommand.Commander[ProvisionUserInput] = (*ProvisionUserCommand)(nil)

// Execute provisions the user. Validation and username conflicts fail fast;
// only uniqueness races detected at insert time are retried.
func (c *ProvisionUserCommand) Execute(ctx context.Context, input ProvisionUserInput) error {
	if c.store == nil {
		return types.ErrMissingProvisioningStore
	}
	if err := input.Validate(); err != nil {
		return err
	}
	if err := c.guard.Enforce(ctx, input.Actor, types.PolicyActionProvision, input.UserID); err != nil {
		return err
	}

	username := strings.TrimSpace(input.Username)

	if c.profiles != nil {
		existing, err := c.profiles.GetProfile(ctx, input.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrUserAlreadyProvisioned
		}
	}

	taken, err := c.store.UsernameExists(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return ErrUsernameTaken
	}

	bonus, err := featureEnabled(ctx, c.featureGate, featureWelcomeBonus, input.UserID)
	if err != nil {
		return err
	}

	avatarURL := strings.TrimSpace(input.AvatarURL)
	if avatarURL == "" {
		avatarURL = c.placeholderAvatar(username)
	}

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		records := c.buildRecords(input.UserID, username, avatarURL, bonus)
		err := c.store.CreateOnboardingRecords(ctx, records)
		if err == nil {
			c.finish(ctx, records, bonus, attempt)
			if input.Result != nil {
				*input.Result = records.Profile
			}
			return nil
		}

		c.cleanup(ctx, input.UserID)

		if !repository.IsDuplicatedKey(err) {
			return fmt.Errorf("go-rooms: provisioning failed: %w", err)
		}
		lastErr = err

		// The insert raced another claim. If the name is now visibly held
		// this is a straight conflict, otherwise the losing transaction may
		// still roll back, so wait and try again.
		taken, checkErr := c.store.UsernameExists(ctx, username)
		if checkErr == nil && taken {
			return ErrUsernameTaken
		}

		if attempt < c.attempts {
			delay := c.backoffBase << (attempt - 1)
			c.logger.Debug("provisioning retry scheduled",
				"user_id", input.UserID.String(),
				"attempt", attempt,
				"delay", delay.String(),
			)
			if err := c.sleep(ctx, delay); err != nil {
				return err
			}
		}
	}

	return fmt.Errorf("%w: %v", ErrProvisioningExhausted, lastErr)
}

func (c *ProvisionUserCommand) buildRecords(userID uuid.UUID, username, avatarURL string, bonus bool) types.OnboardingRecords {
	createdAt := now(c.clock)
	records := types.OnboardingRecords{
		Profile: types.UserProfile{
			UserID:    userID,
			Username:  username,
			AvatarURL: avatarURL,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		},
		Balance: types.Balance{
			UserID:    userID,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		},
	}
	if bonus {
		records.Balance.Balance = types.WelcomeBonusAmount
		records.Ledger = &types.LedgerEntry{
			ID:          c.idGen.UUID(),
			UserID:      userID,
			Amount:      types.WelcomeBonusAmount,
			EntryType:   types.EntryTypeWelcomeBonus,
			Description: "Welcome bonus credit",
			CreatedAt:   createdAt,
		}
		records.Notification = &types.Notification{
			ID:               c.idGen.UUID(),
			UserID:           userID,
			Title:            "Welcome!",
			Body:             fmt.Sprintf("You received a %.0f credit welcome bonus.", types.WelcomeBonusAmount),
			NotificationType: types.NotificationTypeWelcomeBonus,
			Data: map[string]any{
				"amount": types.WelcomeBonusAmount,
			},
			CreatedAt: createdAt,
		}
	}
	return records
}

func (c *ProvisionUserCommand) finish(ctx context.Context, records types.OnboardingRecords, bonus bool, attempts int) {
	emitProvisionHook(ctx, c.hooks, types.ProvisionEvent{
		UserID:       records.Profile.UserID,
		Username:     records.Profile.Username,
		AvatarURL:    records.Profile.AvatarURL,
		BonusGranted: bonus,
		Attempts:     attempts,
		OccurredAt:   now(c.clock),
	})
	if records.Notification != nil {
		emitNotificationHook(ctx, c.hooks, *records.Notification)
	}
}

// cleanup purges partial rows. Failures are logged and swallowed so cleanup
// never masks the original provisioning error.
func (c *ProvisionUserCommand) cleanup(ctx context.Context, userID uuid.UUID) {
	if err := c.store.PurgeOnboardingRecords(ctx, userID); err != nil {
		c.logger.Error("provisioning cleanup failed", err, "user_id", userID.String())
	}
}

func (c *ProvisionUserCommand) placeholderAvatar(username string) string {
	return fmt.Sprintf("%s/%s.svg", c.avatarBase, url.QueryEscape(username))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
