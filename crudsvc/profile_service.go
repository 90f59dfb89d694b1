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

// ProfileServiceConfig wires dependencies for the profile controller.
type ProfileServiceConfig struct {
	Guard    GuardAdapter
	Profiles types.ProfileRepository
	Update   gocommand.Commander[command.ProfileUpdateInput]
}

// ProfileService exposes user profiles through the go-crud service interface.
// Profiles are created by provisioning and removed with the auth user, so
// create and delete are disabled here.
type ProfileService struct {
	guard    GuardAdapter
	profiles types.ProfileRepository
	update   gocommand.Commander[command.ProfileUpdateInput]
	logger   types.Logger
}

// NewProfileService constructs the adapter.
func NewProfileService(cfg ProfileServiceConfig, opts ...ServiceOption) *ProfileService {
	options := applyOptions(opts)
	return &ProfileService{
		guard:    cfg.Guard,
		profiles: cfg.Profiles,
		update:   cfg.Update,
		logger:   options.logger,
	}
}

func (s *ProfileService) Create(crud.Context, *types.UserProfile) (*types.UserProfile, error) {
	return nil, notSupported(crud.OpCreate)
}

func (s *ProfileService) CreateBatch(crud.Context, []*types.UserProfile) ([]*types.UserProfile, error) {
	return nil, notSupported(crud.OpCreateBatch)
}

func (s *ProfileService) Update(ctx crud.Context, record *types.UserProfile) (*types.UserProfile, error) {
	if s.update == nil {
		return nil, goerrors.New("profile update command missing", goerrors.CategoryInternal).WithCode(goerrors.CodeInternal)
	}
	if record == nil || record.UserID == uuid.Nil {
		return nil, goerrors.New("profile user id required", goerrors.CategoryValidation).WithCode(goerrors.CodeBadRequest)
	}
	res, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpUpdate,
		TargetID:  record.UserID,
		OwnerID:   record.UserID,
	})
	if err != nil {
		return nil, err
	}

	patch := types.ProfilePatch{}
	if record.Username != "" {
		patch.Username = &record.Username
	}
	if record.AvatarURL != "" {
		patch.AvatarURL = &record.AvatarURL
	}

	var updated types.UserProfile
	input := command.ProfileUpdateInput{
		UserID: record.UserID,
		Patch:  patch,
		Actor:  res.Actor,
		Result: &updated,
	}
	if err := s.update.Execute(ctx.UserContext(), input); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *ProfileService) UpdateBatch(crud.Context, []*types.UserProfile) ([]*types.UserProfile, error) {
	return nil, notSupported(crud.OpUpdateBatch)
}

func (s *ProfileService) Delete(crud.Context, *types.UserProfile) error {
	return notSupported(crud.OpDelete)
}

func (s *ProfileService) DeleteBatch(crud.Context, []*types.UserProfile) error {
	return notSupported(crud.OpDeleteBatch)
}

// Index supports username lookups via the ?username= query parameter. Open
// listing of every profile is not exposed.
func (s *ProfileService) Index(ctx crud.Context, _ []repository.SelectCriteria) ([]*types.UserProfile, int, error) {
	if s.profiles == nil {
		return nil, 0, types.ErrMissingProfileRepository
	}
	username := ctx.Query("username")
	if username == "" {
		return nil, 0, notSupported(crud.OpList)
	}
	if _, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpList,
	}); err != nil {
		return nil, 0, err
	}
	profile, err := s.profiles.GetProfileByUsername(ctx.UserContext(), username)
	if err != nil {
		return nil, 0, err
	}
	if profile == nil {
		return []*types.UserProfile{}, 0, nil
	}
	return []*types.UserProfile{profile}, 1, nil
}

func (s *ProfileService) Show(ctx crud.Context, id string, _ []repository.SelectCriteria) (*types.UserProfile, error) {
	if s.profiles == nil {
		return nil, types.ErrMissingProfileRepository
	}
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, goerrors.New("invalid user id", goerrors.CategoryValidation).WithCode(goerrors.CodeBadRequest)
	}
	if _, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpRead,
		TargetID:  userID,
	}); err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetProfile(ctx.UserContext(), userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, goerrors.New("profile not found", goerrors.CategoryNotFound).WithCode(goerrors.CodeNotFound)
	}
	return profile, nil
}
