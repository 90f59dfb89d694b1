package room

import (
	"context"
	"errors"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/goliatone/go-rooms/pkg/types"
	"github.com/goliatone/go-rooms/profile"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed room repository.
type RepositoryConfig struct {
	DB           *bun.DB
	Rooms        repository.Repository[*RoomRecord]
	Participants repository.Repository[*ParticipantRecord]
	Profiles     repository.Repository[*profile.Record]
	Clock        types.Clock
	IDGen        types.IDGenerator
}

// Repository implements types.RoomRepository using Bun.
type Repository struct {
	rooms        repository.Repository[*RoomRecord]
	participants repository.Repository[*ParticipantRecord]
	profiles     repository.Repository[*profile.Record]
	clock        types.Clock
	idGen        types.IDGenerator
}

// NewRepository constructs the default room repository. Enable WithCache to
// decorate the participant store with go-repository-cache.
func NewRepository(cfg RepositoryConfig, options ...RepositoryOption) (*Repository, error) {
	if cfg.DB == nil && (cfg.Rooms == nil || cfg.Participants == nil || cfg.Profiles == nil) {
		return nil, errors.New("room: db or repositories required")
	}
	rooms := cfg.Rooms
	if rooms == nil {
		rooms = repository.NewRepository(cfg.DB, repository.ModelHandlers[*RoomRecord]{
			NewRecord: func() *RoomRecord { return &RoomRecord{} },
			GetID: func(rec *RoomRecord) uuid.UUID {
				if rec == nil {
					return uuid.Nil
				}
				return rec.ID
			},
			SetID: func(rec *RoomRecord, id uuid.UUID) {
				if rec != nil {
					rec.ID = id
				}
			},
		})
	}
	participants := cfg.Participants
	if participants == nil {
		participants = repository.NewRepository(cfg.DB, repository.ModelHandlers[*ParticipantRecord]{
			NewRecord: func() *ParticipantRecord { return &ParticipantRecord{} },
			GetID: func(rec *ParticipantRecord) uuid.UUID {
				if rec == nil {
					return uuid.Nil
				}
				return rec.ID
			},
			SetID: func(rec *ParticipantRecord, id uuid.UUID) {
				if rec != nil {
					rec.ID = id
				}
			},
		})
	}
	profiles := cfg.Profiles
	if profiles == nil {
		profiles = repository.NewRepository(cfg.DB, repository.ModelHandlers[*profile.Record]{
			NewRecord: func() *profile.Record { return &profile.Record{} },
			GetID: func(rec *profile.Record) uuid.UUID {
				if rec == nil {
					return uuid.Nil
				}
				return rec.UserID
			},
			SetID: func(rec *profile.Record, id uuid.UUID) {
				if rec != nil {
					rec.UserID = id
				}
			},
		})
	}

	opts := applyRepositoryOptions(options)
	if opts.CacheEnabled {
		var err error
		participants, err = decorateWithCache(participants, opts.CacheConfig)
		if err != nil {
			return nil, err
		}
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
		rooms:        rooms,
		participants: participants,
		profiles:     profiles,
		clock:        clock,
		idGen:        idGen,
	}, nil
}

func decorateWithCache(base repository.Repository[*ParticipantRecord], cfg *cache.Config) (repository.Repository[*ParticipantRecord], error) {
	if _, ok := base.(*repositorycache.CachedRepository[*ParticipantRecord]); ok {
		return base, nil
	}
	config := cache.DefaultConfig()
	if cfg != nil {
		config = *cfg
	}
	service, err := cache.NewCacheService(config)
	if err != nil {
		return nil, err
	}
	return repositorycache.New(base, service, cache.NewDefaultKeySerializer()), nil
}

var _ types.RoomRepository = (*Repository)(nil)

// CreateRoom persists a new room.
func (r *Repository) CreateRoom(ctx context.Context, room types.Room) (*types.Room, error) {
	if room.HostID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	rec := fromDomain(room)
	if rec.ID == uuid.Nil {
		rec.ID = r.idGen.UUID()
	}
	now := r.clock.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}
	created, err := r.rooms.Create(ctx, rec)
	if err != nil {
		return nil, err
	}
	return toDomain(created), nil
}

// GetRoom returns the room or nil when it does not exist.
func (r *Repository) GetRoom(ctx context.Context, id uuid.UUID) (*types.Room, error) {
	if id == uuid.Nil {
		return nil, types.ErrRoomIDRequired
	}
	rec, err := r.rooms.GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return toDomain(rec), nil
}

// UpdateRoom persists title changes to an existing room.
func (r *Repository) UpdateRoom(ctx context.Context, room types.Room) (*types.Room, error) {
	if room.ID == uuid.Nil {
		return nil, types.ErrRoomIDRequired
	}
	existing, err := r.rooms.GetByID(ctx, room.ID.String())
	if err != nil {
		return nil, err
	}
	rec := fromDomain(room)
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = r.clock.Now()
	updated, err := r.rooms.Update(ctx, rec)
	if err != nil {
		return nil, err
	}
	return toDomain(updated), nil
}

// ListRooms returns rooms ordered by creation time, newest first.
func (r *Repository) ListRooms(ctx context.Context, pagination types.Pagination) ([]types.Room, int, error) {
	limit := pagination.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := pagination.Offset
	if offset < 0 {
		offset = 0
	}
	rows, total, err := r.rooms.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("created_at DESC").Limit(limit).Offset(offset)
	})
	if err != nil {
		return nil, 0, err
	}
	out := make([]types.Room, 0, len(rows))
	for _, rec := range rows {
		out = append(out, *toDomain(rec))
	}
	return out, total, nil
}

// DeleteRoom removes the room and, via schema cascade, its participant rows.
func (r *Repository) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return types.ErrRoomIDRequired
	}
	if err := r.participants.DeleteWhere(ctx, func(q *bun.DeleteQuery) *bun.DeleteQuery {
		return q.Where("room_id = ?", id)
	}); err != nil {
		return err
	}
	return r.rooms.DeleteWhere(ctx, func(q *bun.DeleteQuery) *bun.DeleteQuery {
		return q.Where("id = ?", id)
	})
}

// AddParticipant inserts the (room, user) join row. Re-joining an occupied
// seat surfaces the existing row instead of erroring.
func (r *Repository) AddParticipant(ctx context.Context, roomID, userID uuid.UUID) (*types.RoomParticipant, error) {
	if roomID == uuid.Nil {
		return nil, types.ErrRoomIDRequired
	}
	if userID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	rec := &ParticipantRecord{
		ID:       r.idGen.UUID(),
		RoomID:   roomID,
		UserID:   userID,
		JoinedAt: r.clock.Now(),
	}
	created, err := r.participants.Create(ctx, rec)
	if err != nil {
		if repository.IsDuplicatedKey(err) {
			return r.getParticipant(ctx, roomID, userID)
		}
		return nil, err
	}
	return participantToDomain(created), nil
}

// RemoveParticipant deletes the (room, user) join row if present.
func (r *Repository) RemoveParticipant(ctx context.Context, roomID, userID uuid.UUID) error {
	if roomID == uuid.Nil {
		return types.ErrRoomIDRequired
	}
	if userID == uuid.Nil {
		return types.ErrUserIDRequired
	}
	return r.participants.DeleteWhere(ctx, func(q *bun.DeleteQuery) *bun.DeleteQuery {
		return q.Where("room_id = ? AND user_id = ?", roomID, userID)
	})
}

// ListParticipants returns the (user id, username, avatar) tuples for every
// current participant, ordered by join time.
func (r *Repository) ListParticipants(ctx context.Context, roomID uuid.UUID) ([]types.ParticipantInfo, error) {
	if roomID == uuid.Nil {
		return nil, types.ErrRoomIDRequired
	}
	rows, _, err := r.participants.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("room_id = ?", roomID).OrderExpr("joined_at ASC")
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []types.ParticipantInfo{}, nil
	}

	userIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		userIDs = append(userIDs, row.UserID)
	}
	profiles, _, err := r.profiles.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("user_id IN (?)", bun.In(userIDs))
	})
	if err != nil {
		return nil, err
	}
	byUser := make(map[uuid.UUID]*profile.Record, len(profiles))
	for _, rec := range profiles {
		byUser[rec.UserID] = rec
	}

	out := make([]types.ParticipantInfo, 0, len(rows))
	for _, row := range rows {
		info := types.ParticipantInfo{UserID: row.UserID}
		if rec, ok := byUser[row.UserID]; ok {
			info.Username = rec.Username
			info.AvatarURL = rec.AvatarURL
		}
		out = append(out, info)
	}
	return out, nil
}

func (r *Repository) getParticipant(ctx context.Context, roomID, userID uuid.UUID) (*types.RoomParticipant, error) {
	rec, err := r.participants.Get(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("room_id = ? AND user_id = ?", roomID, userID)
	})
	if err != nil {
		return nil, err
	}
	return participantToDomain(rec), nil
}

func fromDomain(room types.Room) *RoomRecord {
	return &RoomRecord{
		ID:        room.ID,
		Title:     room.Title,
		HostID:    room.HostID,
		CreatedAt: room.CreatedAt,
		UpdatedAt: room.UpdatedAt,
	}
}

func toDomain(rec *RoomRecord) *types.Room {
	if rec == nil {
		return nil
	}
	return &types.Room{
		ID:        rec.ID,
		Title:     rec.Title,
		HostID:    rec.HostID,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func participantToDomain(rec *ParticipantRecord) *types.RoomParticipant {
	if rec == nil {
		return nil
	}
	return &types.RoomParticipant{
		ID:       rec.ID,
		RoomID:   rec.RoomID,
		UserID:   rec.UserID,
		JoinedAt: rec.JoinedAt,
	}
}
