package invites

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-rooms/pkg/types"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func TestRepository_CreateAndGetByJTI(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	repo, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	roomID := seedRoom(t, db)
	jti := uuid.NewString()
	expiresAt := time.Now().UTC().Add(time.Hour)

	created, err := repo.CreateInvite(ctx, types.RoomInvite{
		RoomID:    roomID,
		IssuerID:  uuid.New(),
		JTI:       jti,
		ExpiresAt: &expiresAt,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)
	require.Equal(t, types.InviteStatusIssued, created.Status)
	require.NotNil(t, created.IssuedAt)

	fetched, err := repo.GetInviteByJTI(ctx, jti)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	require.Equal(t, roomID, fetched.RoomID)
	require.Equal(t, jti, fetched.JTI)

	missing, err := repo.GetInviteByJTI(ctx, uuid.NewString())
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestRepository_CreateInviteRequiresJTI(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	repo, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	_, err = repo.CreateInvite(ctx, types.RoomInvite{RoomID: uuid.New()})
	require.Error(t, err)
}

func TestRepository_ConsumeInviteMarksUsed(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	repo, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	roomID := seedRoom(t, db)
	jti := uuid.NewString()
	_, err = repo.CreateInvite(ctx, types.RoomInvite{
		RoomID:   roomID,
		IssuerID: uuid.New(),
		JTI:      jti,
	})
	require.NoError(t, err)

	usedAt := time.Now().UTC()
	require.NoError(t, repo.ConsumeInvite(ctx, jti, usedAt))

	fetched, err := repo.GetInviteByJTI(ctx, jti)
	require.NoError(t, err)
	require.Equal(t, types.InviteStatusUsed, fetched.Status)
	require.NotNil(t, fetched.UsedAt)
}

func TestRepository_ConsumeInviteIsSingleUse(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	repo, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	roomID := seedRoom(t, db)
	jti := uuid.NewString()
	_, err = repo.CreateInvite(ctx, types.RoomInvite{
		RoomID:   roomID,
		IssuerID: uuid.New(),
		JTI:      jti,
	})
	require.NoError(t, err)

	// The first consume wins; every replay of the same token loses because
	// the status predicate no longer matches any row.
	require.NoError(t, repo.ConsumeInvite(ctx, jti, time.Now().UTC()))
	err = repo.ConsumeInvite(ctx, jti, time.Now().UTC())
	require.ErrorIs(t, err, types.ErrInviteAlreadyUsed)

	err = repo.ConsumeInvite(ctx, uuid.NewString(), time.Now().UTC())
	require.ErrorIs(t, err, types.ErrInviteAlreadyUsed)
}

func seedRoom(t *testing.T, db *bun.DB) uuid.UUID {
	t.Helper()
	roomID := uuid.New()
	_, err := db.Exec(
		"INSERT INTO audio_rooms (id, title, host_id) VALUES (?, ?, ?)",
		roomID.String(), "Invite Test Room", uuid.NewString(),
	)
	require.NoError(t, err)
	return roomID
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
