package command

import (
	"context"
	"time"

	"github.com/goliatone/go-rooms/access"
	"github.com/goliatone/go-rooms/pkg/types"
)

func safeClock(clock types.Clock) types.Clock {
	if clock != nil {
		return clock
	}
	return types.SystemClock{}
}

func safeLogger(logger types.Logger) types.Logger {
	if logger != nil {
		return logger
	}
	return types.NopLogger{}
}

func safeHooks(hooks types.Hooks) types.Hooks {
	return hooks
}

func safeGuard(g access.Guard) access.Guard {
	return access.Ensure(g)
}

func safeIDGen(idGen types.IDGenerator) types.IDGenerator {
	if idGen != nil {
		return idGen
	}
	return types.UUIDGenerator{}
}

func now(clock types.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now()
}

func emitProvisionHook(ctx context.Context, hooks types.Hooks, event types.ProvisionEvent) {
	if hooks.AfterProvision == nil {
		return
	}
	hooks.AfterProvision(ctx, event)
}

func emitRoomHook(ctx context.Context, hooks types.Hooks, event types.RoomEvent) {
	if hooks.AfterRoomChange == nil {
		return
	}
	hooks.AfterRoomChange(ctx, event)
}

func emitProfileHook(ctx context.Context, hooks types.Hooks, event types.ProfileEvent) {
	if hooks.AfterProfileChange == nil {
		return
	}
	hooks.AfterProfileChange(ctx, event)
}

func emitNotificationHook(ctx context.Context, hooks types.Hooks, notification types.Notification) {
	if hooks.AfterNotification == nil {
		return
	}
	hooks.AfterNotification(ctx, notification)
}
