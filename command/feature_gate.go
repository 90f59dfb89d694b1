package command

import (
	"context"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/google/uuid"
)

const (
	featureRoomsCreate  = "rooms.create"
	featureWelcomeBonus = "users.welcome_bonus"
)

func featureEnabled(ctx context.Context, gate featuregate.FeatureGate, key string, userID uuid.UUID) (bool, error) {
	if gate == nil {
		return true, nil
	}
	if userID == uuid.Nil {
		return gate.Enabled(ctx, key)
	}
	return gate.Enabled(ctx, key, featuregate.WithScopeChain(featuregate.ScopeChain{
		{Kind: featuregate.ScopeUser, ID: userID.String()},
		{Kind: featuregate.ScopeSystem},
	}))
}
