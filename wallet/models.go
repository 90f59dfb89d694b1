package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BalanceRecord models the user_balances row (one per provisioned user).
type BalanceRecord struct {
	bun.BaseModel `bun:"table:user_balances"`

	UserID    uuid.UUID `bun:"user_id,pk,type:uuid"`
	Balance   float64   `bun:"balance,notnull"`
	CreatedAt time.Time `bun:"created_at"`
	UpdatedAt time.Time `bun:"updated_at"`
}

// LedgerRecord models the append-only balance_ledger row.
type LedgerRecord struct {
	bun.BaseModel `bun:"table:balance_ledger"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	UserID      uuid.UUID `bun:"user_id,notnull,type:uuid"`
	Amount      float64   `bun:"amount,notnull"`
	EntryType   string    `bun:"entry_type,notnull"`
	Description string    `bun:"description"`
	CreatedAt   time.Time `bun:"created_at"`
}
