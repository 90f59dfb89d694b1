package crudguard

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-crud"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-rooms/access"
	"github.com/goliatone/go-rooms/pkg/authctx"
	"github.com/goliatone/go-rooms/pkg/types"
	"github.com/google/uuid"
)

const (
	textCodeOwnershipDenied = "OWNERSHIP_DENIED"
	textCodeEnforcementFail = "OWNERSHIP_ENFORCEMENT_FAILED"
	textCodeMissingPolicy   = "OWNERSHIP_POLICY_MISSING"
	textCodeMissingContext  = "CONTEXT_MISSING"
)

// OwnerResolver derives the row owner for the request so the guard can apply
// ownership checks. Implementations typically look up the target record and
// return the owning user id; returning uuid.Nil skips the ownership compare.
type OwnerResolver func(ctx crud.Context, op crud.CrudOperation, targetID uuid.UUID) (uuid.UUID, error)

// Config drives Adapter construction.
type Config struct {
	Guard          access.Guard
	Logger         types.Logger
	PolicyMap      map[crud.CrudOperation]types.PolicyAction
	OwnerResolver  OwnerResolver
	FallbackAction types.PolicyAction
}

// Adapter turns go-crud operations into ownership guard enforcement calls.
type Adapter struct {
	guard          access.Guard
	logger         types.Logger
	ownerResolver  OwnerResolver
	policyMap      map[crud.CrudOperation]types.PolicyAction
	fallbackAction types.PolicyAction
}

// GuardInput captures per-request parameters supplied by transports.
type GuardInput struct {
	Context   crud.Context
	Operation crud.CrudOperation
	TargetID  uuid.UUID
	OwnerID   uuid.UUID
	Bypass    *BypassConfig
}

// GuardResult reports the resolved actor metadata returned by the adapter.
type GuardResult struct {
	Actor        types.ActorRef
	Operation    crud.CrudOperation
	OwnerID      uuid.UUID
	Bypassed     bool
	BypassReason string
}

// BypassConfig explicitly allows guard skips for whitelisted routes (e.g.
// schema exports). It must never be enabled by default.
type BypassConfig struct {
	Enabled bool
	Reason  string
}

// NewAdapter constructs a Guard adapter and validates the supplied config.
func NewAdapter(cfg Config) (*Adapter, error) {
	if cfg.Guard == nil {
		return nil, goerrors.New("go-rooms: access guard is required", goerrors.CategoryInternal).
			WithCode(goerrors.CodeInternal).
			WithTextCode(textCodeEnforcementFail)
	}
	if len(cfg.PolicyMap) == 0 && cfg.FallbackAction == "" {
		return nil, goerrors.New("go-rooms: policy map or fallback action must be provided", goerrors.CategoryInternal).
			WithCode(goerrors.CodeInternal).
			WithTextCode(textCodeMissingPolicy)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}

	return &Adapter{
		guard:          access.Ensure(cfg.Guard),
		logger:         logger,
		ownerResolver:  cfg.OwnerResolver,
		policyMap:      clonePolicyMap(cfg.PolicyMap),
		fallbackAction: cfg.FallbackAction,
	}, nil
}

// Enforce resolves the actor, derives the row owner, optionally bypasses, and
// finally enforces the ownership guard with the mapped PolicyAction.
func (a *Adapter) Enforce(in GuardInput) (GuardResult, error) {
	if in.Context == nil {
		return GuardResult{}, goerrors.New("go-rooms: crudguard requires a context", goerrors.CategoryInternal).
			WithCode(goerrors.CodeInternal).
			WithTextCode(textCodeMissingContext)
	}

	ctx := in.Context.UserContext()
	actorRef, _, err := authctx.ResolveActor(ctx)
	if err != nil {
		return GuardResult{}, err
	}

	if in.Bypass != nil && in.Bypass.Enabled {
		a.logger.Info("crudguard: bypassing guard enforcement", "operation", string(in.Operation), "reason", in.Bypass.Reason)
		return GuardResult{
			Actor:        actorRef,
			Operation:    in.Operation,
			OwnerID:      in.OwnerID,
			Bypassed:     true,
			BypassReason: in.Bypass.Reason,
		}, nil
	}

	owner := in.OwnerID
	if owner == uuid.Nil && a.ownerResolver != nil {
		owner, err = a.ownerResolver(in.Context, in.Operation, in.TargetID)
		if err != nil {
			return GuardResult{}, err
		}
	}

	action, err := a.actionForOperation(in.Operation)
	if err != nil {
		return GuardResult{}, err
	}

	if err := a.guard.Enforce(ctx, actorRef, action, owner); err != nil {
		return GuardResult{}, wrapGuardError(err, action)
	}

	return GuardResult{
		Actor:     actorRef,
		Operation: in.Operation,
		OwnerID:   owner,
	}, nil
}

func (a *Adapter) actionForOperation(op crud.CrudOperation) (types.PolicyAction, error) {
	if act, ok := a.policyMap[op]; ok && act != "" {
		return act, nil
	}
	if a.fallbackAction != "" {
		return a.fallbackAction, nil
	}
	return "", goerrors.New(fmt.Sprintf("go-rooms: no policy action configured for %s", op), goerrors.CategoryInternal).
		WithCode(goerrors.CodeInternal).
		WithTextCode(textCodeMissingPolicy)
}

func wrapGuardError(err error, action types.PolicyAction) error {
	if errors.Is(err, types.ErrNotRowOwner) || errors.Is(err, types.ErrActorRequired) {
		return goerrors.Wrap(err, goerrors.CategoryAuthz, "go-rooms: ownership guard rejected the request").
			WithCode(goerrors.CodeForbidden).
			WithTextCode(textCodeOwnershipDenied)
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, fmt.Sprintf("go-rooms: ownership guard failed for action %s", action)).
		WithCode(goerrors.CodeInternal).
		WithTextCode(textCodeEnforcementFail)
}
