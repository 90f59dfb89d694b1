package securelink

import (
	"errors"
	"time"

	urlkit "github.com/goliatone/go-urlkit/securelink"
	"github.com/goliatone/go-rooms/pkg/types"
)

// Manager adapts go-urlkit securelink managers to the go-rooms interfaces so
// invite links are signed and validated by the shared urlkit implementation.
type Manager struct {
	inner urlkit.Manager
}

// NewManager builds a securelink adapter using the configurator interface.
func NewManager(cfg types.SecureLinkConfigurator) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("securelink configurator required")
	}
	inner, err := urlkit.NewManagerFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Manager{inner: inner}, nil
}

// WrapManager wraps an existing go-urlkit manager.
func WrapManager(inner urlkit.Manager) *Manager {
	if inner == nil {
		return nil
	}
	return &Manager{inner: inner}
}

var _ types.SecureLinkManager = (*Manager)(nil)

// Generate produces a signed invite link using the configured manager.
func (m *Manager) Generate(route string, payloads ...types.SecureLinkPayload) (string, error) {
	if m == nil || m.inner == nil {
		return "", errors.New("securelink manager not configured")
	}
	return m.inner.Generate(route, toPayloads(payloads)...)
}

// Validate checks a secure link token and returns the decoded payload.
func (m *Manager) Validate(token string) (map[string]any, error) {
	if m == nil || m.inner == nil {
		return nil, errors.New("securelink manager not configured")
	}
	return m.inner.Validate(token)
}

// GetExpiration exposes the manager's expiration duration.
func (m *Manager) GetExpiration() time.Duration {
	if m == nil || m.inner == nil {
		return 0
	}
	return m.inner.GetExpiration()
}

func toPayloads(payloads []types.SecureLinkPayload) []urlkit.Payload {
	if len(payloads) == 0 {
		return nil
	}
	out := make([]urlkit.Payload, 0, len(payloads))
	for _, payload := range payloads {
		out = append(out, urlkit.Payload(payload))
	}
	return out
}
