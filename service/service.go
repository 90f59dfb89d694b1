package service

import (
	"context"
	"time"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-rooms/access"
	"github.com/goliatone/go-rooms/command"
	"github.com/goliatone/go-rooms/pkg/types"
	"github.com/goliatone/go-rooms/query"
)

// Service is the entry point for go-rooms. It wires repositories, hooks, and
// command/query facades supplied by the host application.
type Service struct {
	cfg      Config
	commands Commands
	queries  Queries
	guard    access.Guard
}

// Commands exposes the service command handlers.
type Commands struct {
	ProvisionUser *command.ProvisionUserCommand
	RoomCreate    *command.RoomCreateCommand
	RoomUpdate    *command.RoomUpdateCommand
	RoomEnd       *command.RoomEndCommand
	RoomJoin      *command.RoomJoinCommand
	RoomLeave     *command.RoomLeaveCommand
	RoomInvite    *command.RoomInviteCommand
	ProfileUpdate *command.ProfileUpdateCommand
}

// Queries exposes read-model helpers.
type Queries struct {
	RoomDetail       *query.RoomQuery
	RoomParticipants *query.RoomParticipantsQuery
	ProfileDetail    *query.ProfileQuery
	Notifications    *query.NotificationFeedQuery
	Balance          *query.BalanceQuery
	Ledger           *query.LedgerQuery
}

// Config captures all required dependencies so callers can provide their own
// instances (bun.DB repositories, cached stores, hooks, etc.).
type Config struct {
	ProvisioningStore      types.ProvisioningStore
	ProfileRepository      types.ProfileRepository
	WalletRepository       types.WalletRepository
	NotificationRepository types.NotificationRepository
	RoomRepository         types.RoomRepository
	InviteRepository       types.InviteRepository
	SecureLinks            types.SecureLinkManager
	FeatureGate            featuregate.FeatureGate
	Hooks                  types.Hooks
	Clock                  types.Clock
	IDGenerator            types.IDGenerator
	Logger                 types.Logger
	AuthorizationPolicy    types.AuthorizationPolicy
	InviteTokenTTL         time.Duration
	ProvisionMaxAttempts   int
	ProvisionBackoffBase   time.Duration
}

// New constructs a Service from the supplied configuration.
func New(cfg Config) *Service {
	norm := normalizeConfig(cfg)

	policy := norm.AuthorizationPolicy
	if policy == nil {
		policy = types.OwnershipPolicy{}
	}
	guard := access.Ensure(access.NewGuard(policy))

	s := &Service{
		cfg:   norm,
		guard: guard,
	}
	s.commands = s.buildCommands()
	s.queries = s.buildQueries()
	return s
}

func normalizeConfig(cfg Config) Config {
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = types.UUIDGenerator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	return cfg
}

// Commands returns the command facade.
func (s *Service) Commands() Commands {
	return s.commands
}

// Queries returns the query facade.
func (s *Service) Queries() Queries {
	return s.queries
}

// Ready reports whether the service has the required dependencies wired in.
func (s *Service) Ready() bool {
	return s != nil &&
		s.cfg.ProvisioningStore != nil &&
		s.cfg.ProfileRepository != nil &&
		s.cfg.WalletRepository != nil &&
		s.cfg.NotificationRepository != nil &&
		s.cfg.RoomRepository != nil
}

// HealthCheck surfaces missing configuration so upstream transports can fail
// fast before serving traffic.
func (s *Service) HealthCheck(ctx context.Context) error {
	if !s.Ready() {
		return types.ErrServiceNotReady
	}
	if s.cfg.ProvisioningStore == nil {
		return types.ErrMissingProvisioningStore
	}
	if s.cfg.ProfileRepository == nil {
		return types.ErrMissingProfileRepository
	}
	if s.cfg.WalletRepository == nil {
		return types.ErrMissingWalletRepository
	}
	if s.cfg.NotificationRepository == nil {
		return types.ErrMissingNotificationRepository
	}
	if s.cfg.RoomRepository == nil {
		return types.ErrMissingRoomRepository
	}
	return nil
}

// Guard exposes the guard instance used internally so transports can reuse
// the same ownership policy for HTTP adapters.
func (s *Service) Guard() access.Guard {
	if s == nil {
		return access.NopGuard()
	}
	return access.Ensure(s.guard)
}

func (s *Service) buildCommands() Commands {
	return Commands{
		ProvisionUser: command.NewProvisionUserCommand(command.ProvisionCommandConfig{
			Store:       s.cfg.ProvisioningStore,
			Profiles:    s.cfg.ProfileRepository,
			Clock:       s.cfg.Clock,
			IDGen:       s.cfg.IDGenerator,
			Hooks:       s.cfg.Hooks,
			Logger:      s.cfg.Logger,
			Guard:       s.guard,
			FeatureGate: s.cfg.FeatureGate,
			MaxAttempts: s.cfg.ProvisionMaxAttempts,
			BackoffBase: s.cfg.ProvisionBackoffBase,
		}),
		RoomCreate: command.NewRoomCreateCommand(command.RoomCreateCommandConfig{
			Rooms:       s.cfg.RoomRepository,
			Clock:       s.cfg.Clock,
			Hooks:       s.cfg.Hooks,
			Logger:      s.cfg.Logger,
			Guard:       s.guard,
			FeatureGate: s.cfg.FeatureGate,
		}),
		RoomUpdate: command.NewRoomUpdateCommand(command.RoomUpdateCommandConfig{
			Rooms:  s.cfg.RoomRepository,
			Clock:  s.cfg.Clock,
			Hooks:  s.cfg.Hooks,
			Logger: s.cfg.Logger,
			Guard:  s.guard,
		}),
		RoomEnd: command.NewRoomEndCommand(command.RoomEndCommandConfig{
			Rooms:  s.cfg.RoomRepository,
			Clock:  s.cfg.Clock,
			Hooks:  s.cfg.Hooks,
			Logger: s.cfg.Logger,
			Guard:  s.guard,
		}),
		RoomJoin: command.NewRoomJoinCommand(command.RoomJoinCommandConfig{
			Rooms:       s.cfg.RoomRepository,
			Invites:     s.cfg.InviteRepository,
			SecureLinks: s.cfg.SecureLinks,
			Clock:       s.cfg.Clock,
			Hooks:       s.cfg.Hooks,
			Logger:      s.cfg.Logger,
			Guard:       s.guard,
		}),
		RoomLeave: command.NewRoomLeaveCommand(command.RoomLeaveCommandConfig{
			Rooms:  s.cfg.RoomRepository,
			Clock:  s.cfg.Clock,
			Hooks:  s.cfg.Hooks,
			Logger: s.cfg.Logger,
			Guard:  s.guard,
		}),
		RoomInvite: command.NewRoomInviteCommand(command.RoomInviteCommandConfig{
			Rooms:       s.cfg.RoomRepository,
			Invites:     s.cfg.InviteRepository,
			SecureLinks: s.cfg.SecureLinks,
			Clock:       s.cfg.Clock,
			IDGen:       s.cfg.IDGenerator,
			Hooks:       s.cfg.Hooks,
			Logger:      s.cfg.Logger,
			Guard:       s.guard,
			TokenTTL:    s.cfg.InviteTokenTTL,
		}),
		ProfileUpdate: command.NewProfileUpdateCommand(command.ProfileUpdateCommandConfig{
			Profiles: s.cfg.ProfileRepository,
			Clock:    s.cfg.Clock,
			Hooks:    s.cfg.Hooks,
			Logger:   s.cfg.Logger,
			Guard:    s.guard,
		}),
	}
}

func (s *Service) buildQueries() Queries {
	return Queries{
		RoomDetail:       query.NewRoomQuery(s.cfg.RoomRepository, s.guard),
		RoomParticipants: query.NewRoomParticipantsQuery(s.cfg.RoomRepository, s.guard),
		ProfileDetail:    query.NewProfileQuery(s.cfg.ProfileRepository, s.guard),
		Notifications:    query.NewNotificationFeedQuery(s.cfg.NotificationRepository, s.guard),
		Balance:          query.NewBalanceQuery(s.cfg.WalletRepository, s.guard),
		Ledger:           query.NewLedgerQuery(s.cfg.WalletRepository, s.guard),
	}
}
