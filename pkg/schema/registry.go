package schema

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// ChangePublisher fans schema change events out to external consumers
// (websocket hubs, admin UIs, webhook relays).
type ChangePublisher interface {
	Notify(ctx context.Context, actorID uuid.UUID, metadata map[string]any)
}

// Listener receives a registry snapshot whenever the set of exported
// resources changes.
type Listener func(context.Context, Snapshot)

// Snapshot is a moment-in-time export of the registered resource schemas.
type Snapshot struct {
	GeneratedAt   time.Time
	ResourceNames []string
	Document      map[string]any
}

// Registry aggregates the resource metadata exposed by the rooms CRUD
// controllers (rooms, profiles, notifications) into a single OpenAPI
// document hosts can serve and diff.
type Registry struct {
	mu sync.RWMutex

	providers map[string]router.MetadataProvider
	listeners []Listener
	publisher ChangePublisher

	info router.OpenAPIInfo
	tags []string
}

// Option customizes registry behaviour.
type Option func(*Registry)

// NewRegistry constructs an empty registry.
func NewRegistry(opts ...Option) *Registry {
	reg := &Registry{
		providers: make(map[string]router.MetadataProvider),
		info: router.OpenAPIInfo{
			Title:   "go-rooms API",
			Version: "1.0.0",
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(reg)
		}
	}
	return reg
}

// WithInfo overrides the OpenAPI document info block.
func WithInfo(info router.OpenAPIInfo) Option {
	return func(r *Registry) {
		if info.Title != "" {
			r.info.Title = info.Title
		}
		if info.Version != "" {
			r.info.Version = info.Version
		}
		if info.Description != "" {
			r.info.Description = info.Description
		}
	}
}

// WithTags sets global tags applied to every generated document.
func WithTags(tags ...string) Option {
	return func(r *Registry) {
		if len(tags) > 0 {
			r.tags = append([]string(nil), tags...)
		}
	}
}

// WithPublisher wires an out-of-process publisher notified on every schema
// change.
func WithPublisher(publisher ChangePublisher) Option {
	return func(r *Registry) {
		r.publisher = publisher
	}
}

// Register adds a resource to the registry and notifies subscribers.
// Registering the same resource name again replaces the earlier metadata.
func (r *Registry) Register(provider router.MetadataProvider) {
	if provider == nil {
		return
	}
	metadata := provider.GetMetadata()
	if metadata.Name == "" {
		return
	}

	r.mu.Lock()
	r.providers[metadata.Name] = StaticProvider(metadata)
	snap := r.snapshotLocked()
	listeners := append([]Listener(nil), r.listeners...)
	publisher := r.publisher
	r.mu.Unlock()

	r.dispatch(context.Background(), snap, listeners, publisher)
}

// RegisterAll registers every provider in order.
func (r *Registry) RegisterAll(providers ...router.MetadataProvider) {
	for _, provider := range providers {
		r.Register(provider)
	}
}

// Subscribe attaches a listener invoked on every registration.
func (r *Registry) Subscribe(listener Listener) {
	if listener == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, listener)
}

// Resources returns the registered resource names, sorted.
func (r *Registry) Resources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Document compiles the registered resources into one OpenAPI document.
// Nil is returned while the registry is empty.
func (r *Registry) Document() map[string]any {
	r.mu.RLock()
	snap := r.snapshotLocked()
	r.mu.RUnlock()
	return compile(snap)
}

// Handler serves the aggregated document on whatever route the host mounts
// it under; 204 while nothing is registered.
func (r *Registry) Handler() router.HandlerFunc {
	return func(ctx router.Context) error {
		doc := r.Document()
		if len(doc) == 0 {
			return ctx.NoContent(http.StatusNoContent)
		}
		return ctx.JSON(http.StatusOK, doc)
	}
}

func (r *Registry) dispatch(ctx context.Context, snap snapshot, listeners []Listener, publisher ChangePublisher) {
	if len(listeners) == 0 && publisher == nil {
		return
	}
	doc := compile(snap)
	if len(doc) == 0 {
		return
	}
	event := Snapshot{
		GeneratedAt:   time.Now().UTC(),
		ResourceNames: append([]string(nil), snap.names...),
		Document:      doc,
	}
	for _, listener := range listeners {
		listener(ctx, event)
	}
	if publisher != nil {
		publisher.Notify(ctx, uuid.Nil, map[string]any{
			"event":     "schemas.registry.updated",
			"version":   snap.info.Version,
			"resources": event.ResourceNames,
		})
	}
}

type snapshot struct {
	providers []router.MetadataProvider
	names     []string
	info      router.OpenAPIInfo
	tags      []string
}

// snapshotLocked captures providers in name order; callers hold r.mu.
func (r *Registry) snapshotLocked() snapshot {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	providers := make([]router.MetadataProvider, 0, len(names))
	for _, name := range names {
		providers = append(providers, r.providers[name])
	}
	return snapshot{
		providers: providers,
		names:     names,
		info:      r.info,
		tags:      append([]string(nil), r.tags...),
	}
}

func compile(snap snapshot) map[string]any {
	if len(snap.providers) == 0 {
		return nil
	}
	aggregator := router.NewMetadataAggregator()
	if len(snap.tags) > 0 {
		aggregator.SetTags(snap.tags)
	}
	if snap.info.Title != "" {
		aggregator.SetInfo(snap.info)
	}
	aggregator.AddProviders(snap.providers...)
	aggregator.Compile()
	return aggregator.GenerateOpenAPI()
}

type staticProvider struct {
	metadata router.ResourceMetadata
}

func (s staticProvider) GetMetadata() router.ResourceMetadata {
	return s.metadata
}

// StaticProvider wraps fixed resource metadata as a MetadataProvider, which
// is how the built-in room and profile resources register themselves.
func StaticProvider(metadata router.ResourceMetadata) router.MetadataProvider {
	return staticProvider{metadata: metadata}
}
