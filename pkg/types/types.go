package types

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Metadata keys recognized on identity records supplied by the host's auth
// subsystem. Provisioning reads these to seed the profile row.
const (
	MetadataKeyUsername  = "username"
	MetadataKeyAvatarURL = "avatar_url"
)

const (
	// WelcomeBonusAmount is the fixed credit granted once per new user.
	WelcomeBonusAmount = 5.0
	// EntryTypeWelcomeBonus tags the ledger entry written during onboarding.
	EntryTypeWelcomeBonus = "welcome_bonus"
	// NotificationTypeWelcomeBonus tags the onboarding notification.
	NotificationTypeWelcomeBonus = "welcome_bonus"
)

// UserProfile is the user-facing identity record (username, avatar). Exactly
// one exists per provisioned user.
type UserProfile struct {
	UserID    uuid.UUID
	Username  string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfilePatch represents partial updates applied to a user profile.
type ProfilePatch struct {
	Username  *string
	AvatarURL *string
}

// Balance holds the current credit balance for a user (1:1 with profiles).
type Balance struct {
	UserID    uuid.UUID
	Balance   float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LedgerEntry is an append-only record describing a balance mutation. Entries
// are never updated or deleted after creation.
type LedgerEntry struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Amount      float64
	EntryType   string
	Description string
	CreatedAt   time.Time
}

// Notification is an append-only per-user message.
type Notification struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Title            string
	Body             string
	NotificationType string
	Data             map[string]any
	CreatedAt        time.Time
}

// Room models a live audio room. Rooms are removed when their host is deleted.
type Room struct {
	ID        uuid.UUID
	Title     string
	HostID    uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomParticipant links a user to a room. At most one row exists per
// (room, user) pair.
type RoomParticipant struct {
	ID       uuid.UUID
	RoomID   uuid.UUID
	UserID   uuid.UUID
	JoinedAt time.Time
}

// ParticipantInfo is the read-model tuple returned by the participants query.
type ParticipantInfo struct {
	UserID    uuid.UUID
	Username  string
	AvatarURL string
}

// InviteStatus tracks the lifecycle of an issued room invite token.
type InviteStatus string

const (
	InviteStatusIssued InviteStatus = "issued"
	InviteStatusUsed   InviteStatus = "used"
	InviteStatusVoided InviteStatus = "voided"
)

// RoomInvite records a signed invite link issued for a room so tokens can be
// consumed at most once.
type RoomInvite struct {
	ID        uuid.UUID
	RoomID    uuid.UUID
	IssuerID  uuid.UUID
	JTI       string
	Status    InviteStatus
	IssuedAt  *time.Time
	ExpiresAt *time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OnboardingRecords bundles the rows written atomically when a user is
// provisioned. Ledger and Notification are nil when the welcome bonus is
// gated off; Profile and Balance are always present.
type OnboardingRecords struct {
	Profile      UserProfile
	Balance      Balance
	Ledger       *LedgerEntry
	Notification *Notification
}

// ProvisionEvent is emitted after a user has been fully provisioned.
type ProvisionEvent struct {
	UserID       uuid.UUID
	Username     string
	AvatarURL    string
	BonusGranted bool
	Attempts     int
	OccurredAt   time.Time
}

// RoomEvent signals room lifecycle and membership changes.
type RoomEvent struct {
	RoomID     uuid.UUID
	HostID     uuid.UUID
	UserID     uuid.UUID
	Action     string
	ActorID    uuid.UUID
	OccurredAt time.Time
}

// ProfileEvent signals that a profile mutation occurred.
type ProfileEvent struct {
	UserID     uuid.UUID
	ActorID    uuid.UUID
	OccurredAt time.Time
	Profile    UserProfile
}

// Hooks groups optional callbacks invoked after key workflows complete.
type Hooks struct {
	AfterProvision     func(context.Context, ProvisionEvent)
	AfterRoomChange    func(context.Context, RoomEvent)
	AfterProfileChange func(context.Context, ProfileEvent)
	AfterNotification  func(context.Context, Notification)
}

// Pagination supports offset pagination across feed queries.
type Pagination struct {
	Limit  int
	Offset int
}

// ProfileRepository persists and retrieves profile records.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserProfile, error)
	GetProfileByUsername(ctx context.Context, username string) (*UserProfile, error)
	UpdateProfile(ctx context.Context, profile UserProfile) (*UserProfile, error)
	DeleteProfile(ctx context.Context, userID uuid.UUID) error
}

// WalletRepository exposes read access to balances and the ledger.
type WalletRepository interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (*Balance, error)
	ListLedger(ctx context.Context, filter LedgerFilter) (LedgerPage, error)
}

// NotificationSink is the minimal DI contract for emitting notifications.
// Keep it stable and limited to Notify so hosts can swap sinks without
// breaking changes.
type NotificationSink interface {
	Notify(ctx context.Context, notification Notification) error
}

// NotificationRepository exposes read-side access to notification feeds.
type NotificationRepository interface {
	ListNotifications(ctx context.Context, filter NotificationFilter) (NotificationPage, error)
}

// RoomRepository persists rooms and their participant rows.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) (*Room, error)
	GetRoom(ctx context.Context, id uuid.UUID) (*Room, error)
	UpdateRoom(ctx context.Context, room Room) (*Room, error)
	DeleteRoom(ctx context.Context, id uuid.UUID) error
	ListRooms(ctx context.Context, pagination Pagination) ([]Room, int, error)
	AddParticipant(ctx context.Context, roomID, userID uuid.UUID) (*RoomParticipant, error)
	RemoveParticipant(ctx context.Context, roomID, userID uuid.UUID) error
	ListParticipants(ctx context.Context, roomID uuid.UUID) ([]ParticipantInfo, error)
}

// InviteRepository tracks issued room invite tokens.
type InviteRepository interface {
	CreateInvite(ctx context.Context, invite RoomInvite) (*RoomInvite, error)
	GetInviteByJTI(ctx context.Context, jti string) (*RoomInvite, error)
	ConsumeInvite(ctx context.Context, jti string, usedAt time.Time) error
}

// ProvisioningStore is the transactional surface the provisioning workflow
// runs against. CreateOnboardingRecords must write all rows in one
// transaction; PurgeOnboardingRecords is the best-effort compensation path.
type ProvisioningStore interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
	CreateOnboardingRecords(ctx context.Context, records OnboardingRecords) error
	PurgeOnboardingRecords(ctx context.Context, userID uuid.UUID) error
}

// Clock abstracts time retrieval for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID creation.
type IDGenerator interface {
	UUID() uuid.UUID
}

// Logger captures basic logging hooks used by the service.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// LedgerFilter narrows ledger listings for a user.
type LedgerFilter struct {
	Actor      ActorRef
	UserID     uuid.UUID
	EntryTypes []string
	Pagination Pagination
}

// Type implements gocommand.Message for query inputs.
func (LedgerFilter) Type() string {
	return "query.wallet.ledger"
}

// Validate implements gocommand.Message.
func (filter LedgerFilter) Validate() error {
	if filter.UserID == uuid.Nil {
		return ErrUserIDRequired
	}
	return nil
}

// LedgerPage represents a paginated ledger response.
type LedgerPage struct {
	Entries    []LedgerEntry
	Total      int
	NextOffset int
	HasMore    bool
}

// NotificationFilter narrows notification feed queries.
type NotificationFilter struct {
	Actor      ActorRef
	UserID     uuid.UUID
	Types      []string
	Pagination Pagination
}

// Type implements gocommand.Message for query inputs.
func (NotificationFilter) Type() string {
	return "query.notifications.feed"
}

// Validate implements gocommand.Message.
func (filter NotificationFilter) Validate() error {
	if filter.UserID == uuid.Nil {
		return ErrUserIDRequired
	}
	return nil
}

// NotificationPage represents a paginated feed response.
type NotificationPage struct {
	Notifications []Notification
	Total         int
	NextOffset    int
	HasMore       bool
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator produces UUIDv4 identifiers.
type UUIDGenerator struct{}

// UUID returns a randomly generated UUID.
func (UUIDGenerator) UUID() uuid.UUID { return uuid.New() }

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}

var (
	// ErrActorRequired indicates an actor reference was not supplied.
	ErrActorRequired = errors.New("go-rooms: actor reference required")
	// ErrUserIDRequired indicates a user identifier was omitted.
	ErrUserIDRequired = errors.New("go-rooms: user id required")
	// ErrRoomIDRequired indicates a room identifier was omitted.
	ErrRoomIDRequired = errors.New("go-rooms: room id required")
	// ErrServiceNotReady indicates the service has not been properly configured.
	ErrServiceNotReady = errors.New("go-rooms: service not ready")
	// ErrMissingProfileRepository occurs when profile commands lack a storage backend.
	ErrMissingProfileRepository = errors.New("go-rooms: missing profile repository")
	// ErrMissingWalletRepository occurs when balance queries lack storage.
	ErrMissingWalletRepository = errors.New("go-rooms: missing wallet repository")
	// ErrMissingNotificationRepository occurs when feed queries lack storage.
	ErrMissingNotificationRepository = errors.New("go-rooms: missing notification repository")
	// ErrMissingNotificationSink occurs when no notification sink was supplied.
	ErrMissingNotificationSink = errors.New("go-rooms: missing notification sink")
	// ErrMissingRoomRepository occurs when room commands lack storage.
	ErrMissingRoomRepository = errors.New("go-rooms: missing room repository")
	// ErrMissingInviteRepository occurs when invite commands lack storage.
	ErrMissingInviteRepository = errors.New("go-rooms: missing invite repository")
	// ErrMissingProvisioningStore occurs when the provisioning workflow has no store.
	ErrMissingProvisioningStore = errors.New("go-rooms: missing provisioning store")
	// ErrMissingSecureLinkManager occurs when invite links are requested without a manager.
	ErrMissingSecureLinkManager = errors.New("go-rooms: missing securelink manager")
	// ErrInviteAlreadyUsed indicates the invite token was already consumed.
	ErrInviteAlreadyUsed = errors.New("go-rooms: invite already used")
)
