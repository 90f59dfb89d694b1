package crudsvc

import (
	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-crud"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-rooms/command"
	"github.com/goliatone/go-rooms/crudguard"
	"github.com/goliatone/go-rooms/pkg/types"
	"github.com/google/uuid"
)

// RoomServiceConfig wires dependencies for the room controller.
type RoomServiceConfig struct {
	Guard  GuardAdapter
	Rooms  types.RoomRepository
	Create gocommand.Commander[command.RoomCreateInput]
	Update gocommand.Commander[command.RoomUpdateInput]
	End    gocommand.Commander[command.RoomEndInput]
}

// RoomService exposes rooms through the go-crud service interface. Writes
// delegate to the command layer so ownership rules and hooks fire exactly as
// they do for direct API consumers.
type RoomService struct {
	guard  GuardAdapter
	rooms  types.RoomRepository
	create gocommand.Commander[command.RoomCreateInput]
	update gocommand.Commander[command.RoomUpdateInput]
	end    gocommand.Commander[command.RoomEndInput]
	logger types.Logger
}

// NewRoomService constructs the adapter.
func NewRoomService(cfg RoomServiceConfig, opts ...ServiceOption) *RoomService {
	options := applyOptions(opts)
	return &RoomService{
		guard:  cfg.Guard,
		rooms:  cfg.Rooms,
		create: cfg.Create,
		update: cfg.Update,
		end:    cfg.End,
		logger: options.logger,
	}
}

func (s *RoomService) Create(ctx crud.Context, record *types.Room) (*types.Room, error) {
	if s.create == nil {
		return nil, goerrors.New("room create command missing", goerrors.CategoryInternal).WithCode(goerrors.CodeInternal)
	}
	if record == nil {
		return nil, goerrors.New("room payload required", goerrors.CategoryValidation).WithCode(goerrors.CodeBadRequest)
	}
	res, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpCreate,
		OwnerID:   record.HostID,
	})
	if err != nil {
		return nil, err
	}

	hostID := record.HostID
	if hostID == uuid.Nil {
		hostID = res.Actor.ID
	}
	var created types.Room
	input := command.RoomCreateInput{
		Title:  record.Title,
		HostID: hostID,
		Actor:  res.Actor,
		Result: &created,
	}
	if err := s.create.Execute(ctx.UserContext(), input); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *RoomService) CreateBatch(crud.Context, []*types.Room) ([]*types.Room, error) {
	return nil, notSupported(crud.OpCreateBatch)
}

func (s *RoomService) Update(ctx crud.Context, record *types.Room) (*types.Room, error) {
	if s.update == nil {
		return nil, goerrors.New("room update command missing", goerrors.CategoryInternal).WithCode(goerrors.CodeInternal)
	}
	if record == nil || record.ID == uuid.Nil {
		return nil, goerrors.New("room id required", goerrors.CategoryValidation).WithCode(goerrors.CodeBadRequest)
	}
	res, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpUpdate,
		TargetID:  record.ID,
	})
	if err != nil {
		return nil, err
	}

	var updated types.Room
	input := command.RoomUpdateInput{
		RoomID: record.ID,
		Title:  record.Title,
		Actor:  res.Actor,
		Result: &updated,
	}
	if err := s.update.Execute(ctx.UserContext(), input); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *RoomService) UpdateBatch(crud.Context, []*types.Room) ([]*types.Room, error) {
	return nil, notSupported(crud.OpUpdateBatch)
}

func (s *RoomService) Delete(ctx crud.Context, record *types.Room) error {
	if s.end == nil {
		return goerrors.New("room end command missing", goerrors.CategoryInternal).WithCode(goerrors.CodeInternal)
	}
	if record == nil || record.ID == uuid.Nil {
		return goerrors.New("room id required", goerrors.CategoryValidation).WithCode(goerrors.CodeBadRequest)
	}
	res, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpDelete,
		TargetID:  record.ID,
	})
	if err != nil {
		return err
	}
	return s.end.Execute(ctx.UserContext(), command.RoomEndInput{
		RoomID: record.ID,
		Actor:  res.Actor,
	})
}

func (s *RoomService) DeleteBatch(crud.Context, []*types.Room) error {
	return notSupported(crud.OpDeleteBatch)
}

func (s *RoomService) Index(ctx crud.Context, _ []repository.SelectCriteria) ([]*types.Room, int, error) {
	if s.rooms == nil {
		return nil, 0, types.ErrMissingRoomRepository
	}
	if _, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpList,
	}); err != nil {
		return nil, 0, err
	}
	rooms, total, err := s.rooms.ListRooms(ctx.UserContext(), types.Pagination{
		Limit:  queryInt(ctx, "limit", 50),
		Offset: queryInt(ctx, "offset", 0),
	})
	if err != nil {
		return nil, 0, err
	}
	records := make([]*types.Room, 0, len(rooms))
	for i := range rooms {
		records = append(records, &rooms[i])
	}
	return records, total, nil
}

func (s *RoomService) Show(ctx crud.Context, id string, _ []repository.SelectCriteria) (*types.Room, error) {
	if s.rooms == nil {
		return nil, types.ErrMissingRoomRepository
	}
	roomID, err := uuid.Parse(id)
	if err != nil {
		return nil, goerrors.New("invalid room id", goerrors.CategoryValidation).WithCode(goerrors.CodeBadRequest)
	}
	if _, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpRead,
		TargetID:  roomID,
	}); err != nil {
		return nil, err
	}
	room, err := s.rooms.GetRoom(ctx.UserContext(), roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, goerrors.New("room not found", goerrors.CategoryNotFound).WithCode(goerrors.CodeNotFound)
	}
	return room, nil
}
