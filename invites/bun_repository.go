package invites

import (
	"context"
	"errors"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-rooms/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed invite repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
}

// Repository implements types.InviteRepository using Bun.
type Repository struct {
	db    *bun.DB
	store repository.Repository[*Record]
	clock types.Clock
}

// NewRepository constructs the default invite repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("invites: db or repository required")
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
	return &Repository{db: cfg.DB, store: repo, clock: clock}, nil
}

var _ types.InviteRepository = (*Repository)(nil)

// CreateInvite persists an invite record.
func (r *Repository) CreateInvite(ctx context.Context, invite types.RoomInvite) (*types.RoomInvite, error) {
	if invite.RoomID == uuid.Nil {
		return nil, types.ErrRoomIDRequired
	}
	if strings.TrimSpace(invite.JTI) == "" {
		return nil, errors.New("invites: jti required")
	}
	rec := fromDomain(invite)
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	now := r.clock.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}
	if rec.IssuedAt == nil {
		rec.IssuedAt = timePtr(now)
	}
	if strings.TrimSpace(rec.Status) == "" {
		rec.Status = string(types.InviteStatusIssued)
	}
	created, err := r.store.Create(ctx, rec)
	if err != nil {
		return nil, err
	}
	return toDomain(created), nil
}

// GetInviteByJTI returns the invite record matching the JTI, or nil.
func (r *Repository) GetInviteByJTI(ctx context.Context, jti string) (*types.RoomInvite, error) {
	rec, err := r.store.Get(ctx, selectJTI(jti))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return toDomain(rec), nil
}

// ConsumeInvite flips the invite from issued to used in a single conditional
// update. The status predicate makes the transition atomic: of two racing
// joins presenting the same token, exactly one update matches a row and the
// other sees zero rows affected.
func (r *Repository) ConsumeInvite(ctx context.Context, jti string, usedAt time.Time) error {
	if r.db == nil {
		return errors.New("invites: db required to consume invites")
	}
	res, err := r.db.NewUpdate().
		Model((*Record)(nil)).
		Set("status = ?", string(types.InviteStatusUsed)).
		Set("used_at = ?", usedAt).
		Set("updated_at = ?", r.clock.Now()).
		Where("jti = ?", strings.TrimSpace(jti)).
		Where("status = ?", string(types.InviteStatusIssued)).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return types.ErrInviteAlreadyUsed
	}
	return nil
}

func selectJTI(jti string) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("jti = ?", strings.TrimSpace(jti))
	}
}

func fromDomain(invite types.RoomInvite) *Record {
	return &Record{
		ID:        invite.ID,
		RoomID:    invite.RoomID,
		IssuerID:  invite.IssuerID,
		JTI:       strings.TrimSpace(invite.JTI),
		Status:    string(invite.Status),
		IssuedAt:  invite.IssuedAt,
		ExpiresAt: invite.ExpiresAt,
		UsedAt:    invite.UsedAt,
		CreatedAt: invite.CreatedAt,
		UpdatedAt: invite.UpdatedAt,
	}
}

func toDomain(rec *Record) *types.RoomInvite {
	if rec == nil {
		return nil
	}
	return &types.RoomInvite{
		ID:        rec.ID,
		RoomID:    rec.RoomID,
		IssuerID:  rec.IssuerID,
		JTI:       rec.JTI,
		Status:    types.InviteStatus(rec.Status),
		IssuedAt:  rec.IssuedAt,
		ExpiresAt: rec.ExpiresAt,
		UsedAt:    rec.UsedAt,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
