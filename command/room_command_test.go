package command

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-rooms/access"
	"github.com/goliatone/go-rooms/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRoomCreateCommand_SeatsHostAndEmitsHook(t *testing.T) {
	repo := newFakeRoomRepo()
	hostID := uuid.New()

	var event types.RoomEvent
	cmd := NewRoomCreateCommand(RoomCreateCommandConfig{
		Rooms: repo,
		Hooks: types.Hooks{
			AfterRoomChange: func(_ context.Context, e types.RoomEvent) { event = e },
		},
	})

	result := &types.Room{}
	err := cmd.Execute(context.Background(), RoomCreateInput{
		Title:  "  Friday Jam  ",
		HostID: hostID,
		Actor:  types.ActorRef{ID: hostID, Type: "user"},
		Result: result,
	})
	require.NoError(t, err)
	require.Equal(t, "Friday Jam", result.Title)
	require.Equal(t, hostID, result.HostID)

	participants := repo.participants[result.ID]
	require.Len(t, participants, 1)
	require.Equal(t, hostID, participants[0].UserID)

	require.Equal(t, "room.created", event.Action)
	require.Equal(t, result.ID, event.RoomID)
}

func TestRoomCreateCommand_FeatureGateDisabled(t *testing.T) {
	repo := newFakeRoomRepo()
	gate := &stubFeatureGate{enabled: false}
	cmd := NewRoomCreateCommand(RoomCreateCommandConfig{
		Rooms:       repo,
		FeatureGate: gate,
	})

	hostID := uuid.New()
	err := cmd.Execute(context.Background(), RoomCreateInput{
		Title:  "Blocked",
		HostID: hostID,
		Actor:  types.ActorRef{ID: hostID, Type: "user"},
	})
	require.ErrorIs(t, err, ErrRoomCreateDisabled)
	require.Contains(t, gate.keys, featureRoomsCreate)
	require.Empty(t, repo.rooms)
}

func TestRoomCreateCommand_GuardBlocksImpersonation(t *testing.T) {
	repo := newFakeRoomRepo()
	cmd := NewRoomCreateCommand(RoomCreateCommandConfig{
		Rooms: repo,
		Guard: access.Default(),
	})

	err := cmd.Execute(context.Background(), RoomCreateInput{
		Title:  "Not Yours",
		HostID: uuid.New(),
		Actor:  types.ActorRef{ID: uuid.New(), Type: "user"},
	})
	require.ErrorIs(t, err, types.ErrNotRowOwner)
	require.Empty(t, repo.rooms)
}

func TestRoomUpdateCommand_HostRenamesRoom(t *testing.T) {
	repo := newFakeRoomRepo()
	hostID := uuid.New()
	room := repo.seed(types.Room{Title: "Before", HostID: hostID})

	cmd := NewRoomUpdateCommand(RoomUpdateCommandConfig{
		Rooms: repo,
		Guard: access.Default(),
	})

	result := &types.Room{}
	err := cmd.Execute(context.Background(), RoomUpdateInput{
		RoomID: room.ID,
		Title:  "After",
		Actor:  types.ActorRef{ID: hostID, Type: "user"},
		Result: result,
	})
	require.NoError(t, err)
	require.Equal(t, "After", result.Title)
	require.Equal(t, "After", repo.rooms[room.ID].Title)
}

func TestRoomUpdateCommand_NonHostRejected(t *testing.T) {
	repo := newFakeRoomRepo()
	room := repo.seed(types.Room{Title: "Mine", HostID: uuid.New()})

	cmd := NewRoomUpdateCommand(RoomUpdateCommandConfig{
		Rooms: repo,
		Guard: access.Default(),
	})

	err := cmd.Execute(context.Background(), RoomUpdateInput{
		RoomID: room.ID,
		Title:  "Hijacked",
		Actor:  types.ActorRef{ID: uuid.New(), Type: "user"},
	})
	require.ErrorIs(t, err, types.ErrNotRowOwner)
	require.Equal(t, "Mine", repo.rooms[room.ID].Title)
}

func TestRoomEndCommand_DeletesRoom(t *testing.T) {
	repo := newFakeRoomRepo()
	hostID := uuid.New()
	room := repo.seed(types.Room{Title: "Ending", HostID: hostID})
	repo.participants[room.ID] = []types.RoomParticipant{{RoomID: room.ID, UserID: hostID}}

	var event types.RoomEvent
	cmd := NewRoomEndCommand(RoomEndCommandConfig{
		Rooms: repo,
		Guard: access.Default(),
		Hooks: types.Hooks{
			AfterRoomChange: func(_ context.Context, e types.RoomEvent) { event = e },
		},
	})

	err := cmd.Execute(context.Background(), RoomEndInput{
		RoomID: room.ID,
		Actor:  types.ActorRef{ID: hostID, Type: "user"},
	})
	require.NoError(t, err)
	require.NotContains(t, repo.rooms, room.ID)
	require.Empty(t, repo.participants[room.ID])
	require.Equal(t, "room.ended", event.Action)
}

func TestRoomEndCommand_MissingRoom(t *testing.T) {
	cmd := NewRoomEndCommand(RoomEndCommandConfig{Rooms: newFakeRoomRepo()})

	err := cmd.Execute(context.Background(), RoomEndInput{
		RoomID: uuid.New(),
		Actor:  types.ActorRef{ID: uuid.New(), Type: "user"},
	})
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRoomJoinCommand_OpenJoin(t *testing.T) {
	repo := newFakeRoomRepo()
	room := repo.seed(types.Room{Title: "Open", HostID: uuid.New()})
	userID := uuid.New()

	var event types.RoomEvent
	cmd := NewRoomJoinCommand(RoomJoinCommandConfig{
		Rooms: repo,
		Guard: access.Default(),
		Hooks: types.Hooks{
			AfterRoomChange: func(_ context.Context, e types.RoomEvent) { event = e },
		},
	})

	result := &types.RoomParticipant{}
	err := cmd.Execute(context.Background(), RoomJoinInput{
		RoomID: room.ID,
		UserID: userID,
		Actor:  types.ActorRef{ID: userID, Type: "user"},
		Result: result,
	})
	require.NoError(t, err)
	require.Equal(t, userID, result.UserID)
	require.Equal(t, "room.joined", event.Action)
}

func TestRoomJoinCommand_RedeemsInviteOnce(t *testing.T) {
	repo := newFakeRoomRepo()
	hostID := uuid.New()
	room := repo.seed(types.Room{Title: "Invite Only", HostID: hostID})
	invites := newFakeInviteRepo()
	clock := &fakeClock{now: time.Now().UTC()}

	jti := uuid.NewString()
	expiresAt := clock.now.Add(time.Hour)
	invites.invites[jti] = &types.RoomInvite{
		RoomID:    room.ID,
		IssuerID:  hostID,
		JTI:       jti,
		Status:    types.InviteStatusIssued,
		ExpiresAt: &expiresAt,
	}
	manager := &stubSecureLinkManager{
		validatePayload: types.SecureLinkPayload{"jti": jti},
	}

	cmd := NewRoomJoinCommand(RoomJoinCommandConfig{
		Rooms:       repo,
		Invites:     invites,
		SecureLinks: manager,
		Clock:       clock,
	})

	userID := uuid.New()
	err := cmd.Execute(context.Background(), RoomJoinInput{
		RoomID:      room.ID,
		UserID:      userID,
		InviteToken: "signed-token",
		Actor:       types.ActorRef{ID: userID, Type: "user"},
	})
	require.NoError(t, err)
	require.Equal(t, types.InviteStatusUsed, invites.invites[jti].Status)

	// A second redemption of the same token must fail.
	err = cmd.Execute(context.Background(), RoomJoinInput{
		RoomID:      room.ID,
		UserID:      uuid.New(),
		InviteToken: "signed-token",
		Actor:       types.ActorRef{ID: userID, Type: types.ActorRoleService},
	})
	require.ErrorIs(t, err, ErrInviteAlreadyUsed)
}

func TestRoomJoinCommand_ExpiredInvite(t *testing.T) {
	repo := newFakeRoomRepo()
	room := repo.seed(types.Room{Title: "Expired", HostID: uuid.New()})
	invites := newFakeInviteRepo()
	clock := &fakeClock{now: time.Now().UTC()}

	jti := uuid.NewString()
	expiresAt := clock.now.Add(-time.Minute)
	invites.invites[jti] = &types.RoomInvite{
		RoomID:    room.ID,
		JTI:       jti,
		Status:    types.InviteStatusIssued,
		ExpiresAt: &expiresAt,
	}
	manager := &stubSecureLinkManager{
		validatePayload: types.SecureLinkPayload{"jti": jti},
	}

	cmd := NewRoomJoinCommand(RoomJoinCommandConfig{
		Rooms:       repo,
		Invites:     invites,
		SecureLinks: manager,
		Clock:       clock,
	})

	userID := uuid.New()
	err := cmd.Execute(context.Background(), RoomJoinInput{
		RoomID:      room.ID,
		UserID:      userID,
		InviteToken: "signed-token",
		Actor:       types.ActorRef{ID: userID, Type: "user"},
	})
	require.ErrorIs(t, err, ErrInviteExpired)
}

func TestRoomJoinCommand_InviteRoomMismatch(t *testing.T) {
	repo := newFakeRoomRepo()
	room := repo.seed(types.Room{Title: "A", HostID: uuid.New()})
	otherRoom := repo.seed(types.Room{Title: "B", HostID: uuid.New()})
	invites := newFakeInviteRepo()

	jti := uuid.NewString()
	invites.invites[jti] = &types.RoomInvite{
		RoomID: otherRoom.ID,
		JTI:    jti,
		Status: types.InviteStatusIssued,
	}
	manager := &stubSecureLinkManager{
		validatePayload: types.SecureLinkPayload{"jti": jti},
	}

	cmd := NewRoomJoinCommand(RoomJoinCommandConfig{
		Rooms:       repo,
		Invites:     invites,
		SecureLinks: manager,
	})

	userID := uuid.New()
	err := cmd.Execute(context.Background(), RoomJoinInput{
		RoomID:      room.ID,
		UserID:      userID,
		InviteToken: "signed-token",
		Actor:       types.ActorRef{ID: userID, Type: "user"},
	})
	require.ErrorIs(t, err, ErrInviteRoomMismatch)
}

func TestRoomLeaveCommand_SelfAndHostEviction(t *testing.T) {
	repo := newFakeRoomRepo()
	hostID := uuid.New()
	room := repo.seed(types.Room{Title: "Leaving", HostID: hostID})
	memberID := uuid.New()
	otherID := uuid.New()
	repo.participants[room.ID] = []types.RoomParticipant{
		{RoomID: room.ID, UserID: memberID},
		{RoomID: room.ID, UserID: otherID},
	}

	cmd := NewRoomLeaveCommand(RoomLeaveCommandConfig{
		Rooms: repo,
		Guard: access.Default(),
	})

	// Members leave themselves.
	err := cmd.Execute(context.Background(), RoomLeaveInput{
		RoomID: room.ID,
		UserID: memberID,
		Actor:  types.ActorRef{ID: memberID, Type: "user"},
	})
	require.NoError(t, err)
	require.Len(t, repo.participants[room.ID], 1)

	// A stranger cannot evict someone else.
	err = cmd.Execute(context.Background(), RoomLeaveInput{
		RoomID: room.ID,
		UserID: otherID,
		Actor:  types.ActorRef{ID: uuid.New(), Type: "user"},
	})
	require.ErrorIs(t, err, types.ErrNotRowOwner)

	// The host can.
	err = cmd.Execute(context.Background(), RoomLeaveInput{
		RoomID: room.ID,
		UserID: otherID,
		Actor:  types.ActorRef{ID: hostID, Type: "user"},
	})
	require.NoError(t, err)
	require.Empty(t, repo.participants[room.ID])

	// A host stepping out of their own room is a plain self-leave.
	repo.participants[room.ID] = []types.RoomParticipant{
		{RoomID: room.ID, UserID: hostID},
	}
	err = cmd.Execute(context.Background(), RoomLeaveInput{
		RoomID: room.ID,
		UserID: hostID,
		Actor:  types.ActorRef{ID: hostID, Type: "user"},
	})
	require.NoError(t, err)
	require.Empty(t, repo.participants[room.ID])
}

func TestRoomInviteCommand_IssuesTrackedToken(t *testing.T) {
	repo := newFakeRoomRepo()
	hostID := uuid.New()
	room := repo.seed(types.Room{Title: "Invites", HostID: hostID})
	invites := newFakeInviteRepo()
	manager := &stubSecureLinkManager{token: "signed-token"}
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	cmd := NewRoomInviteCommand(RoomInviteCommandConfig{
		Rooms:       repo,
		Invites:     invites,
		SecureLinks: manager,
		Clock:       clock,
		Guard:       access.Default(),
		TokenTTL:    time.Hour,
	})

	result := &RoomInviteResult{}
	err := cmd.Execute(context.Background(), RoomInviteInput{
		RoomID: room.ID,
		Actor:  types.ActorRef{ID: hostID, Type: "user"},
		Result: result,
	})
	require.NoError(t, err)
	require.Equal(t, "signed-token", result.Token)
	require.Equal(t, clock.now.Add(time.Hour), result.ExpiresAt)
	require.NotNil(t, result.Invite)
	require.Equal(t, types.InviteStatusIssued, result.Invite.Status)

	require.Equal(t, SecureLinkRouteRoomJoin, manager.generateRoute)
	require.Len(t, invites.invites, 1)
	stored := invites.invites[result.Invite.JTI]
	require.NotNil(t, stored)
	require.Equal(t, room.ID, stored.RoomID)
	require.Equal(t, hostID, stored.IssuerID)
}

func TestRoomInviteCommand_NonHostRejected(t *testing.T) {
	repo := newFakeRoomRepo()
	room := repo.seed(types.Room{Title: "Private", HostID: uuid.New()})

	cmd := NewRoomInviteCommand(RoomInviteCommandConfig{
		Rooms:       repo,
		Invites:     newFakeInviteRepo(),
		SecureLinks: &stubSecureLinkManager{},
		Guard:       access.Default(),
	})

	err := cmd.Execute(context.Background(), RoomInviteInput{
		RoomID: room.ID,
		Actor:  types.ActorRef{ID: uuid.New(), Type: "user"},
	})
	require.ErrorIs(t, err, types.ErrNotRowOwner)
}

func TestProfileUpdateCommand_AppliesPatch(t *testing.T) {
	userID := uuid.New()
	profiles := &fakeProfileRepo{profiles: map[uuid.UUID]*types.UserProfile{
		userID: {UserID: userID, Username: "old_name"},
	}}

	var event types.ProfileEvent
	cmd := NewProfileUpdateCommand(ProfileUpdateCommandConfig{
		Profiles: profiles,
		Guard:    access.Default(),
		Hooks: types.Hooks{
			AfterProfileChange: func(_ context.Context, e types.ProfileEvent) { event = e },
		},
	})

	newName := "new_name"
	avatar := "https://cdn.example.com/new.png"
	result := &types.UserProfile{}
	err := cmd.Execute(context.Background(), ProfileUpdateInput{
		UserID: userID,
		Patch:  types.ProfilePatch{Username: &newName, AvatarURL: &avatar},
		Actor:  types.ActorRef{ID: userID, Type: "user"},
		Result: result,
	})
	require.NoError(t, err)
	require.Equal(t, "new_name", result.Username)
	require.Equal(t, avatar, result.AvatarURL)
	require.Equal(t, userID, event.UserID)
}

func TestProfileUpdateCommand_UsernameConflict(t *testing.T) {
	userID := uuid.New()
	otherID := uuid.New()
	profiles := &fakeProfileRepo{profiles: map[uuid.UUID]*types.UserProfile{
		userID:  {UserID: userID, Username: "me"},
		otherID: {UserID: otherID, Username: "Wanted_Name"},
	}}

	cmd := NewProfileUpdateCommand(ProfileUpdateCommandConfig{Profiles: profiles})

	wanted := "wanted_name"
	err := cmd.Execute(context.Background(), ProfileUpdateInput{
		UserID: userID,
		Patch:  types.ProfilePatch{Username: &wanted},
		Actor:  types.ActorRef{ID: userID, Type: "user"},
	})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestProfileUpdateCommand_CaseOnlyRenameAllowed(t *testing.T) {
	userID := uuid.New()
	profiles := &fakeProfileRepo{profiles: map[uuid.UUID]*types.UserProfile{
		userID: {UserID: userID, Username: "night_owl"},
	}}

	cmd := NewProfileUpdateCommand(ProfileUpdateCommandConfig{Profiles: profiles})

	rename := "Night_Owl"
	result := &types.UserProfile{}
	err := cmd.Execute(context.Background(), ProfileUpdateInput{
		UserID: userID,
		Patch:  types.ProfilePatch{Username: &rename},
		Actor:  types.ActorRef{ID: userID, Type: "user"},
		Result: result,
	})
	require.NoError(t, err)
	require.Equal(t, "Night_Owl", result.Username)
}

func TestProfileUpdateCommand_MissingProfile(t *testing.T) {
	cmd := NewProfileUpdateCommand(ProfileUpdateCommandConfig{
		Profiles: &fakeProfileRepo{},
	})

	userID := uuid.New()
	err := cmd.Execute(context.Background(), ProfileUpdateInput{
		UserID: userID,
		Actor:  types.ActorRef{ID: userID, Type: "user"},
	})
	require.ErrorIs(t, err, ErrProfileNotFound)
}

// fakeRoomRepo is a map-backed types.RoomRepository for command tests.
type fakeRoomRepo struct {
	rooms        map[uuid.UUID]*types.Room
	participants map[uuid.UUID][]types.RoomParticipant
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{
		rooms:        map[uuid.UUID]*types.Room{},
		participants: map[uuid.UUID][]types.RoomParticipant{},
	}
}

func (f *fakeRoomRepo) seed(room types.Room) *types.Room {
	if room.ID == uuid.Nil {
		room.ID = uuid.New()
	}
	f.rooms[room.ID] = &room
	return &room
}

func (f *fakeRoomRepo) CreateRoom(_ context.Context, room types.Room) (*types.Room, error) {
	room.ID = uuid.New()
	room.CreatedAt = time.Now().UTC()
	room.UpdatedAt = room.CreatedAt
	f.rooms[room.ID] = &room
	return &room, nil
}

func (f *fakeRoomRepo) GetRoom(_ context.Context, id uuid.UUID) (*types.Room, error) {
	room, ok := f.rooms[id]
	if !ok {
		return nil, nil
	}
	clone := *room
	return &clone, nil
}

func (f *fakeRoomRepo) UpdateRoom(_ context.Context, room types.Room) (*types.Room, error) {
	room.UpdatedAt = time.Now().UTC()
	f.rooms[room.ID] = &room
	return &room, nil
}

func (f *fakeRoomRepo) DeleteRoom(_ context.Context, id uuid.UUID) error {
	delete(f.rooms, id)
	delete(f.participants, id)
	return nil
}

func (f *fakeRoomRepo) ListRooms(_ context.Context, _ types.Pagination) ([]types.Room, int, error) {
	out := make([]types.Room, 0, len(f.rooms))
	for _, room := range f.rooms {
		out = append(out, *room)
	}
	return out, len(out), nil
}

func (f *fakeRoomRepo) AddParticipant(_ context.Context, roomID, userID uuid.UUID) (*types.RoomParticipant, error) {
	for _, participant := range f.participants[roomID] {
		if participant.UserID == userID {
			clone := participant
			return &clone, nil
		}
	}
	participant := types.RoomParticipant{
		ID:       uuid.New(),
		RoomID:   roomID,
		UserID:   userID,
		JoinedAt: time.Now().UTC(),
	}
	f.participants[roomID] = append(f.participants[roomID], participant)
	return &participant, nil
}

func (f *fakeRoomRepo) RemoveParticipant(_ context.Context, roomID, userID uuid.UUID) error {
	rows := f.participants[roomID]
	out := rows[:0]
	for _, participant := range rows {
		if participant.UserID != userID {
			out = append(out, participant)
		}
	}
	f.participants[roomID] = out
	return nil
}

func (f *fakeRoomRepo) ListParticipants(_ context.Context, roomID uuid.UUID) ([]types.ParticipantInfo, error) {
	rows := f.participants[roomID]
	out := make([]types.ParticipantInfo, 0, len(rows))
	for _, participant := range rows {
		out = append(out, types.ParticipantInfo{UserID: participant.UserID})
	}
	return out, nil
}

type fakeInviteRepo struct {
	invites map[string]*types.RoomInvite
}

func newFakeInviteRepo() *fakeInviteRepo {
	return &fakeInviteRepo{invites: map[string]*types.RoomInvite{}}
}

func (f *fakeInviteRepo) CreateInvite(_ context.Context, invite types.RoomInvite) (*types.RoomInvite, error) {
	if invite.ID == uuid.Nil {
		invite.ID = uuid.New()
	}
	f.invites[invite.JTI] = &invite
	return &invite, nil
}

func (f *fakeInviteRepo) GetInviteByJTI(_ context.Context, jti string) (*types.RoomInvite, error) {
	invite, ok := f.invites[jti]
	if !ok {
		return nil, nil
	}
	clone := *invite
	return &clone, nil
}

func (f *fakeInviteRepo) ConsumeInvite(_ context.Context, jti string, usedAt time.Time) error {
	invite, ok := f.invites[jti]
	if !ok || invite.Status != types.InviteStatusIssued {
		return types.ErrInviteAlreadyUsed
	}
	invite.Status = types.InviteStatusUsed
	invite.UsedAt = &usedAt
	return nil
}

type stubSecureLinkManager struct {
	token           string
	generateRoute   string
	validatePayload types.SecureLinkPayload
	validateErr     error
	expiration      time.Duration
}

func (s *stubSecureLinkManager) Generate(route string, _ ...types.SecureLinkPayload) (string, error) {
	s.generateRoute = route
	if s.token == "" {
		return "stub-token", nil
	}
	return s.token, nil
}

func (s *stubSecureLinkManager) Validate(string) (map[string]any, error) {
	if s.validateErr != nil {
		return nil, s.validateErr
	}
	return map[string]any(s.validatePayload), nil
}

func (s *stubSecureLinkManager) GetExpiration() time.Duration {
	return s.expiration
}

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }
