package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-rooms/access"
	"github.com/goliatone/go-rooms/pkg/types"
)

// NotificationFeedQuery lists a user's notifications, newest first. Feeds are
// owner-only: the guard rejects actors reading another user's feed.
type NotificationFeedQuery struct {
	repo  types.NotificationRepository
	guard access.Guard
}

// NewNotificationFeedQuery constructs the feed query helper.
func NewNotificationFeedQuery(repo types.NotificationRepository, guard access.Guard) *NotificationFeedQuery {
	return &NotificationFeedQuery{
		repo:  repo,
		guard: safeGuard(guard),
	}
}

var _ gocommand.Querier[types.NotificationFilter, types.NotificationPage] = (*NotificationFeedQuery)(nil)

// Query returns the notification page matching the filter.
func (q *NotificationFeedQuery) Query(ctx context.Context, filter types.NotificationFilter) (types.NotificationPage, error) {
	if q.repo == nil {
		return types.NotificationPage{}, types.ErrMissingNotificationRepository
	}
	if err := filter.Validate(); err != nil {
		return types.NotificationPage{}, err
	}
	if err := q.guard.Enforce(ctx, filter.Actor, types.PolicyActionNotificationsRead, filter.UserID); err != nil {
		return types.NotificationPage{}, err
	}
	return q.repo.ListNotifications(ctx, filter)
}
