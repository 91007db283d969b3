package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/mirrorboxapp/mirrorbox-server/internal/config"
	"github.com/mirrorboxapp/mirrorbox-server/internal/filter"
	"github.com/mirrorboxapp/mirrorbox-server/internal/logger"
	"github.com/mirrorboxapp/mirrorbox-server/internal/ratelimit"
	"github.com/mirrorboxapp/mirrorbox-server/internal/restriction"
	"github.com/mirrorboxapp/mirrorbox-server/internal/service"
	"github.com/mirrorboxapp/mirrorbox-server/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideExpander provides the tag/studio hierarchy expander.
func ProvideExpander(i do.Injector) (*filter.Expander, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return filter.NewExpander(storeHandle.Store), nil
}

// ProvideRestrictionFilter provides the restriction rule evaluator.
func ProvideRestrictionFilter(i do.Injector) (*restriction.Service, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return restriction.NewService(storeHandle.Store, log.Logger), nil
}

// ProvideEmptyFilter provides the empty-entity pruner.
func ProvideEmptyFilter(i do.Injector) (*restriction.EmptyFilter, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return restriction.NewEmptyFilter(log.Logger), nil
}

// ProvideRemoteLimiter provides the per-instance rate limiter for sync
// ingest.
func ProvideRemoteLimiter(i do.Injector) (*ratelimit.KeyedRateLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return ratelimit.New(cfg.Catalog.RemoteRPS, cfg.Catalog.RemoteBurst), nil
}

// ProvideBrowseService provides the entity browse service.
func ProvideBrowseService(i do.Injector) (*service.BrowseService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	expander := do.MustInvoke[*filter.Expander](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBrowseService(storeHandle.Store, expander, log.Logger), nil
}

// ProvideRestrictionService provides the content restriction service.
func ProvideRestrictionService(i do.Injector) (*service.RestrictionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	ruleFilter := do.MustInvoke[*restriction.Service](i)
	pruner := do.MustInvoke[*restriction.EmptyFilter](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRestrictionService(
		storeHandle.Store, storeHandle.Store, ruleFilter, pruner, validator, log.Logger,
	), nil
}

// ProvideOverlayService provides the per-user overlay service.
func ProvideOverlayService(i do.Injector) (*service.OverlayService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewOverlayService(storeHandle.Store, validator, log.Logger), nil
}

// ProvideUserService provides the user account service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, validator, log.Logger), nil
}

// ProvideSyncService provides the catalog sync ingest service.
func ProvideSyncService(i do.Injector) (*service.SyncService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	limiter := do.MustInvoke[*ratelimit.KeyedRateLimiter](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSyncService(
		storeHandle.Store, storeHandle.Store, indexHandle.Index, limiter, log.Logger,
	), nil
}

// TriggerSearchReindexIfNeeded rebuilds the index from the mirror when the
// index is empty but the mirror is not. This recovers from index loss or a
// mapping version bump without waiting for the next sync run.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	syncService := do.MustInvoke[*service.SyncService](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	scenes, err := storeHandle.ListAllScenes(ctx)
	if err != nil || len(scenes) == 0 {
		return
	}

	log.Info("Search index is empty but the mirror is not, triggering reindex",
		"scene_count", len(scenes),
	)

	go func() {
		if err := syncService.Reindex(context.Background()); err != nil {
			log.Error("Initial search reindex failed", "error", err)
		} else {
			count, _ := indexHandle.DocumentCount()
			log.Info("Initial search reindex completed", "documents", count)
		}
	}()
}
