// Package di provides dependency injection configuration for the MirrorBox server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/mirrorboxapp/mirrorbox-server/internal/config"
	"github.com/mirrorboxapp/mirrorbox-server/internal/di/providers"
	"github.com/mirrorboxapp/mirrorbox-server/internal/filter"
	"github.com/mirrorboxapp/mirrorbox-server/internal/logger"
	"github.com/mirrorboxapp/mirrorbox-server/internal/ratelimit"
	"github.com/mirrorboxapp/mirrorbox-server/internal/restriction"
	"github.com/mirrorboxapp/mirrorbox-server/internal/service"
	"github.com/mirrorboxapp/mirrorbox-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Persistence layer
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Filtering layer
	do.Provide(injector, providers.ProvideExpander)
	do.Provide(injector, providers.ProvideRestrictionFilter)
	do.Provide(injector, providers.ProvideEmptyFilter)
	do.Provide(injector, providers.ProvideRemoteLimiter)

	// Business services
	do.Provide(injector, providers.ProvideBrowseService)
	do.Provide(injector, providers.ProvideRestrictionService)
	do.Provide(injector, providers.ProvideOverlayService)
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideSyncService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*filter.Expander](injector)
	_ = do.MustInvoke[*restriction.Service](injector)
	_ = do.MustInvoke[*restriction.EmptyFilter](injector)
	_ = do.MustInvoke[*ratelimit.KeyedRateLimiter](injector)
	_ = do.MustInvoke[*service.BrowseService](injector)
	_ = do.MustInvoke[*service.RestrictionService](injector)
	_ = do.MustInvoke[*service.OverlayService](injector)
	_ = do.MustInvoke[*service.UserService](injector)
	_ = do.MustInvoke[*service.SyncService](injector)

	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
