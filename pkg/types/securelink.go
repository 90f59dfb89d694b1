package types

import "time"

// SecureLinkManager mirrors the external securelink manager interface used to
// sign and validate room invite links.
type SecureLinkManager interface {
	Generate(route string, payloads ...SecureLinkPayload) (string, error)
	Validate(token string) (map[string]any, error)
	GetExpiration() time.Duration
}

// SecureLinkPayload carries data to embed in a secure link token.
type SecureLinkPayload map[string]any

// SecureLinkConfigurator mirrors the external securelink configurator interface.
type SecureLinkConfigurator interface {
	GetSigningKey() string
	GetExpiration() time.Duration
	GetBaseURL() string
	GetQueryKey() string
	GetRoutes() map[string]string
	GetAsQuery() bool
}
