package onboarding

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-rooms/notify"
	"github.com/goliatone/go-rooms/pkg/types"
	"github.com/goliatone/go-rooms/profile"
	"github.com/goliatone/go-rooms/wallet"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// StoreConfig wires the Bun-backed provisioning store.
type StoreConfig struct {
	DB     *bun.DB
	Clock  types.Clock
	Logger types.Logger
}

// Store implements types.ProvisioningStore on top of a Bun connection. The
// workflow needs multi-table writes in a single transaction, so this store
// talks to bun.DB directly instead of going through per-table repositories.
type Store struct {
	db     *bun.DB
	clock  types.Clock
	logger types.Logger
}

// NewStore constructs the provisioning store.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.DB == nil {
		return nil, errors.New("onboarding: db required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Store{db: cfg.DB, clock: clock, logger: logger}, nil
}

var _ types.ProvisioningStore = (*Store)(nil)

// UsernameExists reports whether any profile already claims the username,
// compared case-insensitively. On Postgres the check locks matching rows with
// FOR UPDATE SKIP LOCKED so two concurrent claims of the same name serialize
// at the row level; other dialects fall back to a plain read and rely on the
// unique index at insert time.
func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	q := s.db.NewSelect().
		Model((*profile.Record)(nil)).
		Column("user_id").
		Where("lower(username) = lower(?)", strings.TrimSpace(username))

	if s.db.Dialect().Name() == dialect.PG {
		q = q.For("UPDATE SKIP LOCKED")
	}

	exists, err := q.Exists(ctx)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// CreateOnboardingRecords writes the profile, balance, and optional welcome
// bonus rows in one transaction. Either every row lands or none do.
func (s *Store) CreateOnboardingRecords(ctx context.Context, records types.OnboardingRecords) error {
	if records.Profile.UserID == uuid.Nil {
		return types.ErrUserIDRequired
	}

	now := s.clock.Now()

	profileRec := &profile.Record{
		UserID:    records.Profile.UserID,
		Username:  records.Profile.Username,
		AvatarURL: records.Profile.AvatarURL,
		CreatedAt: defaultTime(records.Profile.CreatedAt, now),
		UpdatedAt: defaultTime(records.Profile.UpdatedAt, now),
	}
	balanceRec := &wallet.BalanceRecord{
		UserID:    records.Profile.UserID,
		Balance:   records.Balance.Balance,
		CreatedAt: defaultTime(records.Balance.CreatedAt, now),
		UpdatedAt: defaultTime(records.Balance.UpdatedAt, now),
	}

	var ledgerRec *wallet.LedgerRecord
	if records.Ledger != nil {
		ledgerRec = &wallet.LedgerRecord{
			ID:          defaultID(records.Ledger.ID),
			UserID:      records.Profile.UserID,
			Amount:      records.Ledger.Amount,
			EntryType:   records.Ledger.EntryType,
			Description: records.Ledger.Description,
			CreatedAt:   defaultTime(records.Ledger.CreatedAt, now),
		}
	}

	var notificationRec *notify.Record
	if records.Notification != nil {
		// Mask sensitive payload values before the row is written, the same
		// scrub the read-side Notify path applies.
		sanitized := notify.SanitizeNotification(nil, *records.Notification)
		notificationRec = &notify.Record{
			ID:               defaultID(sanitized.ID),
			UserID:           records.Profile.UserID,
			Title:            sanitized.Title,
			Body:             sanitized.Body,
			NotificationType: sanitized.NotificationType,
			Data:             sanitized.Data,
			CreatedAt:        defaultTime(sanitized.CreatedAt, now),
		}
	}

	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(profileRec).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(balanceRec).Exec(ctx); err != nil {
			return err
		}
		if ledgerRec != nil {
			if _, err := tx.NewInsert().Model(ledgerRec).Exec(ctx); err != nil {
				return err
			}
		}
		if notificationRec != nil {
			if _, err := tx.NewInsert().Model(notificationRec).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// PurgeOnboardingRecords removes any rows a failed provisioning attempt may
// have left behind. Each delete runs independently so one missing table does
// not block the rest; the first error is reported after all deletes run.
func (s *Store) PurgeOnboardingRecords(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return types.ErrUserIDRequired
	}

	var firstErr error
	record := func(label string, err error) {
		if err == nil {
			return
		}
		s.logger.Error("onboarding cleanup delete failed", err, "table", label, "user_id", userID.String())
		if firstErr == nil {
			firstErr = err
		}
	}

	_, err := s.db.NewDelete().Model((*notify.Record)(nil)).
		Where("user_id = ?", userID).Exec(ctx)
	record("notifications", err)

	_, err = s.db.NewDelete().Model((*wallet.LedgerRecord)(nil)).
		Where("user_id = ?", userID).Exec(ctx)
	record("balance_ledger", err)

	_, err = s.db.NewDelete().Model((*wallet.BalanceRecord)(nil)).
		Where("user_id = ?", userID).Exec(ctx)
	record("user_balances", err)

	_, err = s.db.NewDelete().Model((*profile.Record)(nil)).
		Where("user_id = ?", userID).Exec(ctx)
	record("user_profiles", err)

	return firstErr
}

func defaultTime(t, fallback time.Time) time.Time {
	if t.IsZero() {
		return fallback
	}
	return t
}

func defaultID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}
