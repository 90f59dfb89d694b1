package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-rooms/access"
	"github.com/goliatone/go-rooms/pkg/types"
	"github.com/google/uuid"
)

// BalanceQueryInput scopes balance lookups.
type BalanceQueryInput struct {
	UserID uuid.UUID
	Actor  types.ActorRef
}

// BalanceQuery returns the current credit balance for a user. Balances are
// owner-only reads.
type BalanceQuery struct {
	repo  types.WalletRepository
	guard access.Guard
}

// NewBalanceQuery constructs the balance query helper.
func NewBalanceQuery(repo types.WalletRepository, guard access.Guard) *BalanceQuery {
	return &BalanceQuery{
		repo:  repo,
		guard: safeGuard(guard),
	}
}

var _ gocommand.Querier[BalanceQueryInput, *types.Balance] = (*BalanceQuery)(nil)

// Query returns the balance row for the supplied user.
func (q *BalanceQuery) Query(ctx context.Context, input BalanceQueryInput) (*types.Balance, error) {
	if q.repo == nil {
		return nil, types.ErrMissingWalletRepository
	}
	if input.UserID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	if err := q.guard.Enforce(ctx, input.Actor, types.PolicyActionLedgerRead, input.UserID); err != nil {
		return nil, err
	}
	return q.repo.GetBalance(ctx, input.UserID)
}

// LedgerQuery lists the append-only balance ledger for a user, newest first.
type LedgerQuery struct {
	repo  types.WalletRepository
	guard access.Guard
}

// NewLedgerQuery constructs the ledger query helper.
func NewLedgerQuery(repo types.WalletRepository, guard access.Guard) *LedgerQuery {
	return &LedgerQuery{
		repo:  repo,
		guard: safeGuard(guard),
	}
}

var _ gocommand.Querier[types.LedgerFilter, types.LedgerPage] = (*LedgerQuery)(nil)

// Query returns the ledger page matching the filter.
func (q *LedgerQuery) Query(ctx context.Context, filter types.LedgerFilter) (types.LedgerPage, error) {
	if q.repo == nil {
		return types.LedgerPage{}, types.ErrMissingWalletRepository
	}
	if err := filter.Validate(); err != nil {
		return types.LedgerPage{}, err
	}
	if err := q.guard.Enforce(ctx, filter.Actor, types.PolicyActionLedgerRead, filter.UserID); err != nil {
		return types.LedgerPage{}, err
	}
	return q.repo.ListLedger(ctx, filter)
}
