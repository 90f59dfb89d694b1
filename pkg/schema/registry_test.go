package schema

import (
	"context"
	"net/http"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegistryDocumentCompilesRoomResources(t *testing.T) {
	reg := NewRegistry(WithInfo(router.OpenAPIInfo{
		Title:       "Rooms Admin",
		Version:     "v1",
		Description: "Room and profile schema export",
	}))

	reg.RegisterAll(RoomResource(), ProfileResource())

	require.Equal(t, []string{"profile", "room"}, reg.Resources())

	doc := reg.Document()
	require.NotNil(t, doc)
	assert.Equal(t, "Rooms Admin", doc["info"].(map[string]any)["title"])

	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	_, ok = paths["/rooms"]
	assert.True(t, ok, "expected /rooms path to be present")
	_, ok = paths["/profiles"]
	assert.True(t, ok, "expected /profiles path to be present")
}

func TestRegistryHandlerEmitsNoContentWhenEmpty(t *testing.T) {
	reg := NewRegistry()
	ctx := router.NewMockContext()
	ctx.On("NoContent", http.StatusNoContent).Return(nil)

	require.NoError(t, reg.Handler()(ctx))
	ctx.AssertCalled(t, "NoContent", http.StatusNoContent)
}

func TestRegistryHandlerReturnsJSONPayload(t *testing.T) {
	reg := NewRegistry()
	reg.Register(RoomResource())

	ctx := router.NewMockContext()
	ctx.On("JSON", http.StatusOK, mock.Anything).Return(nil)

	require.NoError(t, reg.Handler()(ctx))
	ctx.AssertCalled(t, "JSON", http.StatusOK, mock.Anything)
}

func TestRegistryListenerReceivesSnapshot(t *testing.T) {
	reg := NewRegistry()
	called := false
	reg.Subscribe(func(_ context.Context, snap Snapshot) {
		called = true
		require.Equal(t, []string{"room"}, snap.ResourceNames)
		require.NotNil(t, snap.Document)
	})

	reg.Register(RoomResource())
	assert.True(t, called, "expected listener to be invoked")
}

func TestRegistryPublisherSeesResourceNames(t *testing.T) {
	notifier := NewNotifier()
	var published map[string]any
	notifier.Register(func(_ context.Context, _ uuid.UUID, metadata map[string]any) {
		published = metadata
	})

	reg := NewRegistry(WithPublisher(notifier))
	reg.Register(ProfileResource())

	require.NotNil(t, published)
	assert.Equal(t, "schemas.registry.updated", published["event"])
	assert.Equal(t, []string{"profile"}, published["resources"])
}
