package schema

import "github.com/goliatone/go-router"

// RoomResource describes the audio room resource served by the room CRUD
// controller.
func RoomResource() router.MetadataProvider {
	return StaticProvider(router.ResourceMetadata{
		Name:       "room",
		PluralName: "rooms",
		Schema: router.SchemaMetadata{
			Name: "room",
			Properties: map[string]router.PropertyInfo{
				"id":         {Type: "string", OriginalName: "id"},
				"title":      {Type: "string", OriginalName: "title"},
				"host_id":    {Type: "string", OriginalName: "host_id"},
				"created_at": {Type: "string", OriginalName: "created_at"},
				"updated_at": {Type: "string", OriginalName: "updated_at"},
			},
		},
		Routes: []router.RouteDefinition{
			{Method: router.GET, Path: "/rooms", Name: "room:list"},
			{Method: router.GET, Path: "/rooms/:id", Name: "room:show"},
		},
	})
}

// ProfileResource describes the user profile resource. Only the read routes
// are exported: profile writes go through the command layer and rows come and
// go with provisioning.
func ProfileResource() router.MetadataProvider {
	return StaticProvider(router.ResourceMetadata{
		Name:       "profile",
		PluralName: "profiles",
		Schema: router.SchemaMetadata{
			Name: "profile",
			Properties: map[string]router.PropertyInfo{
				"user_id":    {Type: "string", OriginalName: "user_id"},
				"username":   {Type: "string", OriginalName: "username"},
				"avatar_url": {Type: "string", OriginalName: "avatar_url"},
				"created_at": {Type: "string", OriginalName: "created_at"},
				"updated_at": {Type: "string", OriginalName: "updated_at"},
			},
		},
		Routes: []router.RouteDefinition{
			{Method: router.GET, Path: "/profiles", Name: "profile:lookup"},
			{Method: router.GET, Path: "/profiles/:id", Name: "profile:show"},
		},
	})
}
