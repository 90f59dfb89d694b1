package room

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-rooms/pkg/types"
	"github.com/goliatone/go-rooms/profile"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func TestRepository_CreateGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	repo, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	hostID := uuid.New()
	created, err := repo.CreateRoom(ctx, types.Room{
		Title:  "Morning Standup",
		HostID: hostID,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)
	require.NotZero(t, created.CreatedAt)

	fetched, err := repo.GetRoom(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	require.Equal(t, "Morning Standup", fetched.Title)
	require.Equal(t, hostID, fetched.HostID)

	fetched.Title = "Evening Wind Down"
	updated, err := repo.UpdateRoom(ctx, *fetched)
	require.NoError(t, err)
	require.Equal(t, "Evening Wind Down", updated.Title)
	require.Equal(t, created.CreatedAt.Unix(), updated.CreatedAt.Unix())

	require.NoError(t, repo.DeleteRoom(ctx, created.ID))
	gone, err := repo.GetRoom(ctx, created.ID)
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestRepository_ListRoomsNewestFirst(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	repo, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		_, err := repo.CreateRoom(ctx, types.Room{
			Title:     "Room",
			HostID:    uuid.New(),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	rooms, total, err := repo.ListRooms(ctx, types.Pagination{Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, rooms, 2)
	require.True(t, rooms[0].CreatedAt.After(rooms[1].CreatedAt))
}

func TestRepository_AddParticipantIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	repo, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	room, err := repo.CreateRoom(ctx, types.Room{Title: "Jam", HostID: uuid.New()})
	require.NoError(t, err)

	userID := uuid.New()
	first, err := repo.AddParticipant(ctx, room.ID, userID)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := repo.AddParticipant(ctx, room.ID, userID)
	require.NoError(t, err)
	require.NotNil(t, second)
	require.Equal(t, first.ID, second.ID)

	participants, err := repo.ListParticipants(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
}

func TestRepository_ListParticipantsMergesProfiles(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	repo, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	room, err := repo.CreateRoom(ctx, types.Room{Title: "Jam", HostID: uuid.New()})
	require.NoError(t, err)

	userID := uuid.New()
	_, err = db.NewInsert().Model(&profile.Record{
		UserID:    userID,
		Username:  "the_host",
		AvatarURL: "https://cdn.example.com/host.png",
	}).Exec(ctx)
	require.NoError(t, err)

	_, err = repo.AddParticipant(ctx, room.ID, userID)
	require.NoError(t, err)

	anonID := uuid.New()
	_, err = repo.AddParticipant(ctx, room.ID, anonID)
	require.NoError(t, err)

	participants, err := repo.ListParticipants(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, participants, 2)
	require.Equal(t, "the_host", participants[0].Username)
	require.Equal(t, "https://cdn.example.com/host.png", participants[0].AvatarURL)
	require.Equal(t, anonID, participants[1].UserID)
	require.Empty(t, participants[1].Username)
}

func TestRepository_RemoveParticipant(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	repo, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	room, err := repo.CreateRoom(ctx, types.Room{Title: "Jam", HostID: uuid.New()})
	require.NoError(t, err)

	userID := uuid.New()
	_, err = repo.AddParticipant(ctx, room.ID, userID)
	require.NoError(t, err)

	require.NoError(t, repo.RemoveParticipant(ctx, room.ID, userID))

	participants, err := repo.ListParticipants(ctx, room.ID)
	require.NoError(t, err)
	require.Empty(t, participants)
}

func TestRepository_WithCacheDecoratesParticipants(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	repo, err := NewRepository(RepositoryConfig{DB: db}, WithCache(true))
	require.NoError(t, err)

	room, err := repo.CreateRoom(ctx, types.Room{Title: "Cached", HostID: uuid.New()})
	require.NoError(t, err)

	userID := uuid.New()
	_, err = repo.AddParticipant(ctx, room.ID, userID)
	require.NoError(t, err)

	participants, err := repo.ListParticipants(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	require.Equal(t, userID, participants[0].UserID)
}

func newTestDB(t *testing.T) *bun.DB {
	sqldb, err := sql.Open("sqlite3", ":memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
		_ = sqldb.Close()
	})
	return db
}

func applyDDL(t *testing.T, db *bun.DB) {
	content, err := os.ReadFile("../data/sql/migrations/sqlite/20250301000000_create_rooms_schema.sql")
	require.NoError(t, err)
	for _, stmt := range splitStatements(string(content)) {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
}

func splitStatements(sql string) []string {
	lines := strings.Split(sql, "\n")
	var builder strings.Builder
	var statements []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		builder.WriteString(line)
		if strings.HasSuffix(line, ";") {
			statements = append(statements, strings.TrimSuffix(builder.String(), ";"))
			builder.Reset()
		} else {
			builder.WriteString(" ")
		}
	}
	if builder.Len() > 0 {
		statements = append(statements, builder.String())
	}
	return statements
}
