package api

import (
	"github.com/mirrorboxapp/mirrorbox-server/internal/service"
)

// Services groups the business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Browse      *service.BrowseService
	Restriction *service.RestrictionService
	Overlay     *service.OverlayService
	User        *service.UserService
	Search      *service.SearchService
	Sync        *service.SyncService
}
