package notify

import (
	"context"
	"errors"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-rooms/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed notification repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
	IDGen      types.IDGenerator
	Sanitizer  SanitizerConfig
}

type notificationStore interface {
	repository.Repository[*Record]
}

// Repository persists notifications and exposes feed helpers. It implements
// both NotificationSink and NotificationRepository.
type Repository struct {
	notificationStore
	clock     types.Clock
	idGen     types.IDGenerator
	sanitizer SanitizerConfig
}

// NewRepository constructs the default notification repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("notify: db or repository required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*Record]{
			NewRecord: func() *Record { return &Record{} },
			GetID: func(rec *Record) uuid.UUID {
				if rec == nil {
					return uuid.Nil
				}
				return rec.ID
			},
			SetID: func(rec *Record, id uuid.UUID) {
				if rec != nil {
					rec.ID = id
				}
			},
		})
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}
	return &Repository{
		notificationStore: repo,
		clock:             clock,
		idGen:             idGen,
		sanitizer:         cfg.Sanitizer,
	}, nil
}

var (
	_ repository.Repository[*Record] = (*Repository)(nil)
	_ types.NotificationSink         = (*Repository)(nil)
	_ types.NotificationRepository   = (*Repository)(nil)
)

// Notify persists a notification row. The data payload is masked before it
// hits storage so PII handed over by callers never lands in the table.
func (r *Repository) Notify(ctx context.Context, notification types.Notification) error {
	notification = SanitizeNotification(r.sanitizer.Masker, notification)
	rec := fromDomain(notification)
	if rec.ID == uuid.Nil {
		rec.ID = r.idGen.UUID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.clock.Now()
	}
	_, err := r.Create(ctx, rec)
	return err
}

// ListNotifications returns a paginated feed for the user, newest first.
func (r *Repository) ListNotifications(ctx context.Context, filter types.NotificationFilter) (types.NotificationPage, error) {
	if filter.UserID == uuid.Nil {
		return types.NotificationPage{}, types.ErrUserIDRequired
	}
	pagination := normalizePagination(filter.Pagination, 50, 200)
	criteria := []repository.SelectCriteria{
		func(q *bun.SelectQuery) *bun.SelectQuery {
			q = q.Where("user_id = ?", filter.UserID).
				OrderExpr("created_at DESC").
				Limit(pagination.Limit).
				Offset(pagination.Offset)
			if len(filter.Types) > 0 {
				kinds := make([]string, 0, len(filter.Types))
				for _, kind := range filter.Types {
					kind = strings.TrimSpace(kind)
					if kind != "" {
						kinds = append(kinds, kind)
					}
				}
				if len(kinds) > 0 {
					q = q.Where("notification_type IN (?)", bun.In(kinds))
				}
			}
			return q
		},
	}
	rows, total, err := r.List(ctx, criteria...)
	if err != nil {
		return types.NotificationPage{}, err
	}
	notifications := make([]types.Notification, 0, len(rows))
	for _, row := range rows {
		notifications = append(notifications, toDomain(row))
	}
	return types.NotificationPage{
		Notifications: notifications,
		Total:         total,
		NextOffset:    pagination.Offset + pagination.Limit,
		HasMore:       pagination.Offset+pagination.Limit < total,
	}, nil
}

func fromDomain(notification types.Notification) *Record {
	return &Record{
		ID:               notification.ID,
		UserID:           notification.UserID,
		Title:            notification.Title,
		Body:             notification.Body,
		NotificationType: notification.NotificationType,
		Data:             cloneStringMap(notification.Data),
		CreatedAt:        notification.CreatedAt,
	}
}

func toDomain(rec *Record) types.Notification {
	return types.Notification{
		ID:               rec.ID,
		UserID:           rec.UserID,
		Title:            rec.Title,
		Body:             rec.Body,
		NotificationType: rec.NotificationType,
		Data:             cloneStringMap(rec.Data),
		CreatedAt:        rec.CreatedAt,
	}
}

func normalizePagination(p types.Pagination, fallback, max int) types.Pagination {
	if p.Limit <= 0 {
		p.Limit = fallback
	}
	if p.Limit > max {
		p.Limit = max
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
