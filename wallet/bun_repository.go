package wallet

import (
	"context"
	"errors"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-rooms/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed wallet repository.
type RepositoryConfig struct {
	DB       *bun.DB
	Balances repository.Repository[*BalanceRecord]
	Ledger   repository.Repository[*LedgerRecord]
	Clock    types.Clock
}

// Repository implements types.WalletRepository using Bun. All writes happen
// through the provisioning store; this repository is the read side.
type Repository struct {
	balances repository.Repository[*BalanceRecord]
	ledger   repository.Repository[*LedgerRecord]
	clock    types.Clock
}

// NewRepository constructs the default wallet repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.DB == nil && (cfg.Balances == nil || cfg.Ledger == nil) {
		return nil, errors.New("wallet: db or repositories required")
	}
	balances := cfg.Balances
	if balances == nil {
		balances = repository.NewRepository(cfg.DB, repository.ModelHandlers[*BalanceRecord]{
			NewRecord: func() *BalanceRecord { return &BalanceRecord{} },
			GetID: func(rec *BalanceRecord) uuid.UUID {
				if rec == nil {
					return uuid.Nil
				}
				return rec.UserID
			},
			SetID: func(rec *BalanceRecord, id uuid.UUID) {
				if rec != nil {
					rec.UserID = id
				}
			},
		})
	}
	ledger := cfg.Ledger
	if ledger == nil {
		ledger = repository.NewRepository(cfg.DB, repository.ModelHandlers[*LedgerRecord]{
			NewRecord: func() *LedgerRecord { return &LedgerRecord{} },
			GetID: func(rec *LedgerRecord) uuid.UUID {
				if rec == nil {
					return uuid.Nil
				}
				return rec.ID
			},
			SetID: func(rec *LedgerRecord, id uuid.UUID) {
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
	return &Repository{
		balances: balances,
		ledger:   ledger,
		clock:    clock,
	}, nil
}

var _ types.WalletRepository = (*Repository)(nil)

// GetBalance returns the balance row for the user, or nil when the user has
// not been provisioned.
func (r *Repository) GetBalance(ctx context.Context, userID uuid.UUID) (*types.Balance, error) {
	if userID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	rec, err := r.balances.Get(ctx, repository.SelectBy("user_id", "=", userID.String()))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return balanceToDomain(rec), nil
}

// ListLedger returns a paginated slice of ledger entries, newest first.
func (r *Repository) ListLedger(ctx context.Context, filter types.LedgerFilter) (types.LedgerPage, error) {
	if filter.UserID == uuid.Nil {
		return types.LedgerPage{}, types.ErrUserIDRequired
	}
	pagination := normalizePagination(filter.Pagination, 50, 200)
	criteria := []repository.SelectCriteria{
		func(q *bun.SelectQuery) *bun.SelectQuery {
			q = q.Where("user_id = ?", filter.UserID).
				OrderExpr("created_at DESC").
				Limit(pagination.Limit).
				Offset(pagination.Offset)
			if len(filter.EntryTypes) > 0 {
				entryTypes := make([]string, 0, len(filter.EntryTypes))
				for _, entryType := range filter.EntryTypes {
					entryType = strings.TrimSpace(entryType)
					if entryType != "" {
						entryTypes = append(entryTypes, entryType)
					}
				}
				if len(entryTypes) > 0 {
					q = q.Where("entry_type IN (?)", bun.In(entryTypes))
				}
			}
			return q
		},
	}
	rows, total, err := r.ledger.List(ctx, criteria...)
	if err != nil {
		return types.LedgerPage{}, err
	}
	entries := make([]types.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, ledgerToDomain(row))
	}
	return types.LedgerPage{
		Entries:    entries,
		Total:      total,
		NextOffset: pagination.Offset + pagination.Limit,
		HasMore:    pagination.Offset+pagination.Limit < total,
	}, nil
}

func balanceToDomain(rec *BalanceRecord) *types.Balance {
	if rec == nil {
		return nil
	}
	return &types.Balance{
		UserID:    rec.UserID,
		Balance:   rec.Balance,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func ledgerToDomain(rec *LedgerRecord) types.LedgerEntry {
	return types.LedgerEntry{
		ID:          rec.ID,
		UserID:      rec.UserID,
		Amount:      rec.Amount,
		EntryType:   rec.EntryType,
		Description: rec.Description,
		CreatedAt:   rec.CreatedAt,
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
