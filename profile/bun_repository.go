package profile

import (
	"context"
	"errors"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-rooms/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed profile repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
}

type profileStore interface {
	repository.Repository[*Record]
}

// Repository implements types.ProfileRepository using Bun.
type Repository struct {
	profileStore
	clock types.Clock
}

// NewRepository constructs the default profile repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("profile: db or repository required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*Record]{
			NewRecord: func() *Record { return &Record{} },
			GetID: func(rec *Record) uuid.UUID {
				if rec == nil {
					return uuid.Nil
				}
				return rec.UserID
			},
			SetID: func(rec *Record, id uuid.UUID) {
				if rec != nil {
					rec.UserID = id
				}
			},
		})
	}

	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}

	return &Repository{
		profileStore: repo,
		clock:        clock,
	}, nil
}

var (
	_ repository.Repository[*Record] = (*Repository)(nil)
	_ types.ProfileRepository        = (*Repository)(nil)
)

// GetProfile returns the profile for the supplied user.
func (r *Repository) GetProfile(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error) {
	if userID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	rec, err := r.Get(ctx, selectUserID(userID))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return toDomain(rec), nil
}

// GetProfileByUsername returns the profile whose username matches the
// supplied value under case-insensitive comparison.
func (r *Repository) GetProfileByUsername(ctx context.Context, username string) (*types.UserProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil
	}
	rec, err := r.Get(ctx, selectUsernameFold(username))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return toDomain(rec), nil
}

// UpdateProfile persists mutations to an existing profile row.
func (r *Repository) UpdateProfile(ctx context.Context, profile types.UserProfile) (*types.UserProfile, error) {
	if profile.UserID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	existing, err := r.Get(ctx, selectUserID(profile.UserID))
	if err != nil {
		return nil, err
	}
	rec := fromDomain(profile)
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = r.clock.Now()
	updated, err := r.Update(ctx, rec)
	if err != nil {
		return nil, err
	}
	return toDomain(updated), nil
}

// DeleteProfile removes the profile row for the user, if present.
func (r *Repository) DeleteProfile(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return types.ErrUserIDRequired
	}
	return r.DeleteWhere(ctx, func(q *bun.DeleteQuery) *bun.DeleteQuery {
		return q.Where("user_id = ?", userID)
	})
}

func selectUserID(userID uuid.UUID) repository.SelectCriteria {
	return repository.SelectBy("user_id", "=", userID.String())
}

func selectUsernameFold(username string) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("lower(username) = lower(?)", username)
	}
}

func fromDomain(profile types.UserProfile) *Record {
	return &Record{
		UserID:    profile.UserID,
		Username:  profile.Username,
		AvatarURL: profile.AvatarURL,
		CreatedAt: profile.CreatedAt,
		UpdatedAt: profile.UpdatedAt,
	}
}

func toDomain(rec *Record) *types.UserProfile {
	if rec == nil {
		return nil
	}
	return &types.UserProfile{
		UserID:    rec.UserID,
		Username:  rec.Username,
		AvatarURL: rec.AvatarURL,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}
