package types

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestOwnershipPolicy_ReadsAreOpen(t *testing.T) {
	policy := OwnershipPolicy{}
	anonymous := ActorRef{}

	for _, action := range []PolicyAction{
		PolicyActionRoomsRead,
		PolicyActionParticipantsRead,
		PolicyActionProfilesRead,
	} {
		err := policy.Authorize(context.Background(), PolicyCheck{
			Actor:   anonymous,
			Action:  action,
			OwnerID: uuid.New(),
		})
		require.NoError(t, err, "read action %s should be open", action)
	}
}

func TestOwnershipPolicy_WritesRequireOwnership(t *testing.T) {
	policy := OwnershipPolicy{}
	owner := uuid.New()

	err := policy.Authorize(context.Background(), PolicyCheck{
		Actor:   ActorRef{ID: owner, Type: ActorRoleMember},
		Action:  PolicyActionRoomsWrite,
		OwnerID: owner,
	})
	require.NoError(t, err)

	err = policy.Authorize(context.Background(), PolicyCheck{
		Actor:   ActorRef{ID: uuid.New(), Type: ActorRoleMember},
		Action:  PolicyActionRoomsWrite,
		OwnerID: owner,
	})
	require.ErrorIs(t, err, ErrNotRowOwner)
}

func TestOwnershipPolicy_OwnerOnlyFeeds(t *testing.T) {
	policy := OwnershipPolicy{}
	owner := uuid.New()

	err := policy.Authorize(context.Background(), PolicyCheck{
		Actor:   ActorRef{ID: uuid.New(), Type: ActorRoleMember},
		Action:  PolicyActionNotificationsRead,
		OwnerID: owner,
	})
	require.ErrorIs(t, err, ErrNotRowOwner)

	err = policy.Authorize(context.Background(), PolicyCheck{
		Actor:   ActorRef{ID: owner, Type: ActorRoleMember},
		Action:  PolicyActionLedgerRead,
		OwnerID: owner,
	})
	require.NoError(t, err)
}

func TestOwnershipPolicy_ElevatedActorsBypass(t *testing.T) {
	policy := OwnershipPolicy{}

	for _, role := range []string{ActorRoleSystemAdmin, ActorRoleService} {
		err := policy.Authorize(context.Background(), PolicyCheck{
			Actor:   ActorRef{ID: uuid.New(), Type: role},
			Action:  PolicyActionProvision,
			OwnerID: uuid.New(),
		})
		require.NoError(t, err, "role %s should bypass ownership", role)
	}
}

func TestOwnershipPolicy_MissingActor(t *testing.T) {
	policy := OwnershipPolicy{}

	err := policy.Authorize(context.Background(), PolicyCheck{
		Action:  PolicyActionProfilesWrite,
		OwnerID: uuid.New(),
	})
	require.ErrorIs(t, err, ErrActorRequired)
}
